package domain

import "errors"

var (
	ErrUnauthorized   = errors.New("resource does not belong to the user")
	ErrInvalidUserID  = errors.New("invalid user id")
	ErrInvalidRange   = errors.New("invalid date range")
	ErrRangeTooLarge  = errors.New("date range too large")
	ErrVersionMissing = errors.New("version is required")
)
