package store

import "errors"

var (
	ErrNotFound   = errors.New("store: record not found")
	ErrValidation = errors.New("store: validation failed")
	ErrConflict   = errors.New("store: record changed during write")
	ErrInUse      = errors.New("store: record is still referenced")
)
