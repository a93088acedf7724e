package services

import "errors"

// ErrUnauthorized is returned when credentials are missing or invalid, or
// when a caller lacks the role a procedure demands.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned when an otherwise-valid caller attempts a
// disallowed operation, such as an admin changing their own role.
var ErrForbidden = errors.New("forbidden")

// ErrInvalid is returned when an argument fails a domain check, such as an
// unknown role or priority value.
var ErrInvalid = errors.New("invalid argument")
