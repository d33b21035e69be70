// Package idgen generates decision references, queue message ids and
// temporary file suffixes.
package idgen

import (
	"strings"

	"github.com/google/uuid"
)

// NewFunc returns a new unique identifier; tests may replace it.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new unique identifier.
func New() string { return NewFunc() }

// Short returns the first eight hex digits of a new identifier, enough to
// keep concurrently written temporary files apart.
func Short() string {
	id := strings.ReplaceAll(New(), "-", "")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
