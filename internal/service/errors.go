package service

import "errors"

var (
	// ErrForbidden means the caller is neither the bill's creator nor one
	// of its participants, or lacks the role the operation requires.
	ErrForbidden = errors.New("forbidden")

	// ErrBillLocked means the bill is settled and rejects mutation.
	ErrBillLocked = errors.New("bill is settled and locked")

	// ErrValidation wraps bad request input.
	ErrValidation = errors.New("validation failed")
)
