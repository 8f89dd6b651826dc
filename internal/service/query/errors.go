package query

import "errors"

var (
	ErrNoActiveTrip   = errors.New("no active trip for driver")
	ErrTripNotFound   = errors.New("trip not found")
	ErrTicketNotFound = errors.New("ticket not found")
)
