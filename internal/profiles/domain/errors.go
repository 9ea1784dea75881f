package domain

import "errors"

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrUsernameRequired = errors.New("username is required")
	ErrUsernameTaken    = errors.New("username is already taken")
	ErrInvalidUsername  = errors.New("username must be 3-30 characters of a-z, 0-9, '_', '.' or '-'")
	ErrFullnameRequired = errors.New("full name is required")
	ErrInvalidIdentity  = errors.New("identity uid is required")

	ErrStoreRead  = errors.New("profile store read failed")
	ErrStoreWrite = errors.New("profile store write failed")

	ErrReadOnlyField = errors.New("field is read-only")
	ErrUnknownField  = errors.New("unknown field")
	ErrInvalidRole   = errors.New("role is not one of the offered roles")
	ErrProjectIndex  = errors.New("project index out of range")
	ErrInvalidLink   = errors.New("project link must be an absolute http(s) URL")
)
