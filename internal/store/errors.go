// internal/store/errors.go
package store

import "errors"

var (
	// ErrNotFound is returned by point lookups when no row matches.
	ErrNotFound = errors.New("record not found")

	// ErrSessionExists is returned by InsertSession when a row with the
	// same ID already exists. This is the signal the resolve-or-create
	// retry protocol recovers from; it must never reach the user.
	ErrSessionExists = errors.New("session already exists")

	// ErrDuplicateTag is returned by InsertSessionTag when the
	// association is already present.
	ErrDuplicateTag = errors.New("session tag already exists")
)
