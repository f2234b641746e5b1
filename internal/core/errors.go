package core

import "errors"

var (
	// ErrNotFound covers missing records and expired share tokens alike; the
	// two cases are deliberately indistinguishable to callers.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned on any ownership mismatch. Requests failing
	// this check are rejected before any side effect.
	ErrForbidden = errors.New("forbidden")

	// ErrAlreadyEmbedded is returned by CreateEmbedding when the file already
	// has an embedding row. The pipeline treats it as a normal outcome.
	ErrAlreadyEmbedded = errors.New("file already embedded")

	// ErrConflict is returned when a name is already taken in a given
	// folder/parent for the same owner.
	ErrConflict = errors.New("name already exists here")
)
