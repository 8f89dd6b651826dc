package domain

import (
	"time"

	"github.com/google/uuid"
)

type TicketKind string

const (
	TicketIndividual TicketKind = "individual"
	TicketGroup      TicketKind = "group"
)

type TripStatus string

const (
	TripInProgress TripStatus = "in_progress"
	TripClosed     TripStatus = "closed"
)

// Ticket is immutable once issued; this service only reads it.
type Ticket struct {
	ID             int64
	Number         string
	Kind           TicketKind
	PassengerCount int
	PricePerPerson int64
	Price          int64
	IssuedAt       time.Time
}

// Trip is one vehicle's dispatch run for a service day. At most one
// in_progress trip exists per (driver, service date).
type Trip struct {
	ID                 int64
	TripNumber         string
	VehicleID          int64
	DriverID           int64
	ServiceDate        time.Time
	Status             TripStatus
	Capacity           int
	RequiredPassengers int
	CurrentPassengers  int
	ThresholdReached   bool
	StartedAt          time.Time
	ClosedAt           *time.Time
}

// ScanRecord is the redemption of one ticket against one trip.
// A ticket appears in at most one ScanRecord system-wide, ever.
type ScanRecord struct {
	ID             uuid.UUID
	TripID         int64
	TicketID       int64
	ScannedAt      time.Time
	PassengerOrder int
}

type Driver struct {
	ID         int64
	Name       string
	EmployeeID string
}

type Vehicle struct {
	ID       int64
	Plate    string
	Capacity int
}

// TicketAttribution says which trip and driver consumed a ticket, and when.
type TicketAttribution struct {
	Scan   ScanRecord
	Trip   Trip
	Driver Driver
}

type ScanWithTicket struct {
	Scan   ScanRecord
	Ticket Ticket
}
