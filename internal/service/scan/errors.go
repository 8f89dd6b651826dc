package scan

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEmptyTicketCode = errors.New("ticket code is empty")
	ErrNoActiveTrip    = errors.New("no active trip for driver")
	ErrTicketNotFound  = errors.New("ticket not found")
)

// AlreadyScannedError carries full attribution of the consuming scan so staff
// can resolve double-use disputes. Repeated submissions of the same ticket
// yield the same attribution.
type AlreadyScannedError struct {
	TicketNumber   string
	ScannedAt      time.Time
	TripID         int64
	TripNumber     string
	DriverName     string
	DriverEmployee string
}

func (e *AlreadyScannedError) Error() string {
	return fmt.Sprintf(
		"ticket %s already scanned by %s (%s) on trip %s at %s",
		e.TicketNumber, e.DriverName, e.DriverEmployee, e.TripNumber,
		e.ScannedAt.Format(time.RFC3339),
	)
}

// CapacityExceededError reports the exact arithmetic that failed the capacity
// check.
type CapacityExceededError struct {
	Current   int
	Requested int
	Capacity  int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf(
		"vehicle would overflow: %d current + %d requested = %d exceeds capacity %d",
		e.Current, e.Requested, e.Current+e.Requested, e.Capacity,
	)
}

// RateLimitedError is returned when a driver scans faster than the configured
// window allows.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry in %s", e.RetryAfter)
}
