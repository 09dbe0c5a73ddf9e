package domain

import "errors"

var (
	ErrUnsupportedToken = errors.New("unsupported token")
	ErrInvalidPrice     = errors.New("invalid price")
)
