package services

import "errors"

var (
	ErrForbidden         = errors.New("forbidden")
	ErrIllegalTransition = errors.New("illegal transition")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUpstream          = errors.New("upstream failure")
	ErrInvalidCredential = errors.New("invalid email or password")
	ErrEmailTaken        = errors.New("email already registered")
)
