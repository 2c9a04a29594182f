package usecase

import "errors"

// ErrInvalidInput covers request shapes the use cases refuse before touching
// the store. Identifier and partition problems use domain.ErrInvalidIdentifier.
var ErrInvalidInput = errors.New("invalid input")
