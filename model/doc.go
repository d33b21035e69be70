// Package model contains the in-memory representation of vault items: the
// stage an item sits in, its kind, the composite identifier exposed to the
// dashboard and the typed details decoded from the record header.
//
// The directory holding a record defines its stage. Nothing in this package
// stores status separately from location.
package model
