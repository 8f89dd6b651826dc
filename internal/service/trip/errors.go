package trip

import "errors"

var (
	ErrActiveTripExists = errors.New("driver already has an active trip")
	ErrNoActiveTrip     = errors.New("no active trip for driver")
	ErrDriverNotFound   = errors.New("driver not found")
	ErrVehicleNotFound  = errors.New("vehicle not found")
)
