package domain

import "errors"

var (
	ErrInvalidOwner = errors.New("invalid_owner")
	ErrInvalidName  = errors.New("invalid_name")
	ErrNotFound     = errors.New("not_found")
)
