package domain

import "errors"

// Sentinel errors for the domain layer.
var (
	ErrNotFound     = errors.New("domain: not found")
	ErrDuplicateKey = errors.New("domain: duplicate key")
	ErrInvalidState = errors.New("domain: invalid state")
	ErrValidation   = errors.New("domain: validation failed")
	ErrStorage      = errors.New("domain: storage failure")
)
