package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidIdentifier    = errors.New("invalid identifier")
	ErrWorkerNotFound       = errors.New("worker not found")
	ErrJobNotFound          = errors.New("job not found")
	ErrPartitionUnavailable = errors.New("partition unavailable")
	ErrStoreTimeout         = errors.New("store timeout")

	ErrApplicationNotFound = errors.New("application not found")
	ErrApplicationExists   = errors.New("application already exists")
)

// ErrPostingYearFixed rejects writing a posting id into a year other than
// the one it was first stored under.
var ErrPostingYearFixed = fmt.Errorf("%w: posting year is fixed", ErrInvalidIdentifier)
