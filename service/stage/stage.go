// Package stage models the vault's lifecycle stages as directories of record
// files. A Directory lists, reads and relocates records; a Layout resolves the
// Directory holding a given stage and kind. Implementations translate storage
// errors into the sentinel errors of this package.
package stage

import (
	"context"
	"time"

	"github.com/viant/vaultflow/model"
)

// Location identifies the physical home of a stage directory.
type Location struct {
	Stage model.Stage
	Kind  model.Kind // empty for stages without kind sub-directories
	URL   string
}

// Entry is one record file read from a directory.
type Entry struct {
	Name    string
	URL     string
	Data    []byte
	ModTime time.Time
}

// Directory is one stage location.
type Directory interface {
	Location() Location

	// List returns every record in the directory in no particular order.
	// ErrDirectoryUnavailable signals the directory does not exist yet.
	List(ctx context.Context) ([]*Entry, error)

	// Read loads a single record by file name.
	Read(ctx context.Context, name string) (*Entry, error)

	// MoveTo relocates a record to target without ever overwriting.
	MoveTo(ctx context.Context, name string, target Directory) error

	// Write publishes a new record; the file appears complete or not at all.
	Write(ctx context.Context, name string, data []byte) error

	// Count returns the number of records, zero for a missing directory.
	Count(ctx context.Context) (int, error)
}

// Layout resolves stage directories of a vault.
type Layout interface {
	Directory(stage model.Stage, kind model.Kind) Directory
	// Kinds returns the kinds scanned for stages with kind sub-directories.
	Kinds() []model.Kind
	// Directories returns every directory of a stage.
	Directories(stage model.Stage) []Directory
}
