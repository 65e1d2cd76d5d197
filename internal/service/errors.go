package service

import "errors"

var (
	ErrInvalidOperation  = errors.New("invalid operation type")
	ErrInvalidEntityType = errors.New("invalid entity type")
	ErrEmptyEntityID     = errors.New("empty entity id")
)
