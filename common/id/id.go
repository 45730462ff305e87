// Package id generates the opaque 128-bit identifiers used for every entity
// in the data model.
package id

import "github.com/google/uuid"

// New returns a fresh random identifier.
func New() uuid.UUID {
	return uuid.New()
}

// Parse validates and parses a string identifier.
func Parse(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}
