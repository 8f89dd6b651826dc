package repository

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrTripFull   = errors.New("trip is at capacity")
	ErrTripClosed = errors.New("trip is not in progress")
)
