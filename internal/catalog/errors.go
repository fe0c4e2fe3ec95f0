package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested movie doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate indicates a unique constraint violation.
	ErrDuplicate = errors.New("duplicate entry")

	// ErrDuplicateTMDB is a duplicate on the TMDB id index.
	ErrDuplicateTMDB = fmt.Errorf("%w: tmdb id already in collection", ErrDuplicate)

	// ErrDuplicateManual is a duplicate on the (title, year, format) index.
	ErrDuplicateManual = fmt.Errorf("%w: same title, year and format already in collection", ErrDuplicate)

	// ErrConstraint indicates a check constraint violation (empty title or format).
	ErrConstraint = errors.New("constraint violation")
)
