package model

import (
	"errors"
	"fmt"
	"strings"
)

// IDSeparator joins kind and file base name into an item ID.
const IDSeparator = "-"

// RecordExt is the file extension of every vault record.
const RecordExt = ".md"

// ErrInvalidID is returned when an identifier has no kind or no base name.
var ErrInvalidID = errors.New("invalid item id")

// FormatID builds the composite identifier "<kind>-<base>".
func FormatID(kind Kind, base string) string {
	return string(kind) + IDSeparator + base
}

// ParseID splits an identifier at the first separator only, so base names
// may themselves contain the separator. The kind must be a plain name and the
// base a single path element.
func ParseID(id string) (Kind, string, error) {
	value, base, ok := strings.Cut(id, IDSeparator)
	if !ok || value == "" || base == "" {
		return "", "", ErrInvalidID
	}
	kind := Kind(strings.ToLower(value))
	if !kind.IsValid() {
		return "", "", fmt.Errorf("%w: kind %q", ErrInvalidID, value)
	}
	if base == "." || base == ".." || strings.ContainsAny(base, `/\`) {
		return "", "", fmt.Errorf("%w: name %q", ErrInvalidID, base)
	}
	return kind, base, nil
}

// BaseName strips the record extension from a file name.
func BaseName(name string) string {
	return strings.TrimSuffix(name, RecordExt)
}

// FileName appends the record extension to a base name.
func FileName(base string) string {
	return base + RecordExt
}
