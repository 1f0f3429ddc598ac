package errors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalid      = errors.New("invalid")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
