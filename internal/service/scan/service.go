// Package scan implements the ticket-scan coordination protocol: resolving
// the driver's active trip, enforcing system-wide single use of tickets and
// per-trip capacity, and committing the scan atomically.
package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/1t0t0/dispatch-go/internal/domain"
	"github.com/1t0t0/dispatch-go/internal/repository"
	redisrepo "github.com/1t0t0/dispatch-go/internal/repository/redis"
	"github.com/1t0t0/dispatch-go/internal/threshold"
)

// TicketStore resolves tickets by their human-facing number.
type TicketStore interface {
	GetByNumber(ctx context.Context, number string) (*domain.Ticket, error)
}

// TripRegistry is the mutation boundary for trips. CommitScan must be atomic:
// either the scan record and the counter update both land, or neither does,
// and of two concurrent commits for the same ticket at most one may succeed
// (the other observes repository.ErrConflict).
type TripRegistry interface {
	FindActiveTrip(ctx context.Context, driverID int64, serviceDate time.Time) (*domain.Trip, error)
	FindScanByTicket(ctx context.Context, ticketID int64) (*domain.TicketAttribution, error)
	CommitScan(ctx context.Context, tripID, ticketID int64, passengersToAdd int) (*domain.Trip, *domain.ScanRecord, error)
}

type Config struct {
	// Now supplies the clock used to derive the service date. Defaults to
	// time.Now.
	Now func() time.Time
}

type Service struct {
	tickets TicketStore
	trips   TripRegistry
	cache   *redisrepo.Cache
	pubsub  *redisrepo.TripsPubSub
	limiter *redisrepo.SlidingWindowLimiter
	cfg     Config
}

func New(
	tickets TicketStore,
	trips TripRegistry,
	cache *redisrepo.Cache,
	pubsub *redisrepo.TripsPubSub,
	limiter *redisrepo.SlidingWindowLimiter,
	cfg Config,
) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Service{
		tickets: tickets,
		trips:   trips,
		cache:   cache,
		pubsub:  pubsub,
		limiter: limiter,
		cfg:     cfg,
	}
}

// Result is the outcome of a committed scan.
type Result struct {
	Trip            domain.Trip
	Ticket          domain.Ticket
	Scan            domain.ScanRecord
	PassengersAdded int
	Progress        threshold.Progress
	Message         string
}

// Scan runs the full scan protocol for a driver presenting a ticket code.
//
// The checks run in a fixed order so the caller always gets the most specific
// error: active trip, ticket existence, system-wide duplicate, capacity. Only
// the final commit mutates state, and the registry re-validates duplicates
// and capacity inside the commit, so a race lost between the prechecks and
// the commit still surfaces as AlreadyScannedError or CapacityExceededError.
//
// Returns:
//   - ErrEmptyTicketCode: nothing resolvable was presented.
//   - ErrNoActiveTrip: the driver has not started a trip today (or it just closed).
//   - ErrTicketNotFound: the number matches no issued ticket.
//   - *AlreadyScannedError: the ticket is consumed, with attribution.
//   - *CapacityExceededError: the passengers do not fit.
//   - *RateLimitedError: the driver is scanning too fast.
func (s *Service) Scan(
	ctx context.Context,
	driverID int64,
	ticketCode, rawPayload string,
	rlKey string,
) (*Result, error) {
	const op = "service.scan.Scan"

	code := ParseTicketCode(ticketCode, rawPayload)
	if code.Number == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyTicketCode)
	}

	if s.limiter != nil && rlKey != "" {
		ok, _, retry, err := s.limiter.Allow(ctx, rlKey)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !ok {
			return nil, fmt.Errorf("%s: %w", op, &RateLimitedError{RetryAfter: retry})
		}
	}

	trip, err := s.trips.FindActiveTrip(ctx, driverID, serviceDate(s.cfg.Now()))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNoActiveTrip)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ticket, err := s.tickets.GetByNumber(ctx, code.Number)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrTicketNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if used, err := s.trips.FindScanByTicket(ctx, ticket.ID); err == nil {
		return nil, fmt.Errorf("%s: %w", op, alreadyScanned(ticket, used))
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	passengersToAdd := 1
	if ticket.Kind == domain.TicketGroup {
		passengersToAdd = ticket.PassengerCount
	}

	if trip.CurrentPassengers+passengersToAdd > trip.Capacity {
		return nil, fmt.Errorf("%s: %w", op, &CapacityExceededError{
			Current:   trip.CurrentPassengers,
			Requested: passengersToAdd,
			Capacity:  trip.Capacity,
		})
	}

	updated, rec, err := s.trips.CommitScan(ctx, trip.ID, ticket.ID, passengersToAdd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, s.commitErr(ctx, err, trip, ticket, passengersToAdd))
	}

	res := &Result{
		Trip:            *updated,
		Ticket:          *ticket,
		Scan:            *rec,
		PassengersAdded: passengersToAdd,
		Progress: threshold.Evaluate(
			updated.CurrentPassengers,
			updated.Capacity,
			updated.RequiredPassengers,
		),
	}

	if ticket.Kind == domain.TicketGroup {
		res.Message = fmt.Sprintf(
			"group ticket accepted: +%d passengers (%d/%d)",
			passengersToAdd, updated.CurrentPassengers, updated.Capacity,
		)
	} else {
		res.Message = fmt.Sprintf(
			"scan recorded: %d/%d passengers",
			updated.CurrentPassengers, updated.Capacity,
		)
	}

	if s.cache != nil {
		_ = s.cache.InvalidateTrip(ctx, updated.DriverID, updated.ID)
	}
	if s.pubsub != nil {
		_ = s.pubsub.PublishTripChanged(ctx, updated.ID, updated.DriverID)
	}

	return res, nil
}

// commitErr maps a failed commit to the protocol's error taxonomy. A lost
// duplicate race is resolved back into full attribution; a lost capacity race
// reports the counter the winning commit left behind.
func (s *Service) commitErr(
	ctx context.Context,
	err error,
	trip *domain.Trip,
	ticket *domain.Ticket,
	passengersToAdd int,
) error {
	switch {
	case errors.Is(err, repository.ErrConflict):
		if used, lookupErr := s.trips.FindScanByTicket(ctx, ticket.ID); lookupErr == nil {
			return alreadyScanned(ticket, used)
		}
		return &AlreadyScannedError{TicketNumber: ticket.Number}

	case errors.Is(err, repository.ErrTripFull):
		current := trip.CurrentPassengers
		if fresh, freshErr := s.trips.FindActiveTrip(ctx, trip.DriverID, trip.ServiceDate); freshErr == nil {
			current = fresh.CurrentPassengers
		}
		return &CapacityExceededError{
			Current:   current,
			Requested: passengersToAdd,
			Capacity:  trip.Capacity,
		}

	case errors.Is(err, repository.ErrTripClosed), errors.Is(err, repository.ErrNotFound):
		// The trip closed between the lookup and the commit.
		return ErrNoActiveTrip
	}

	return err
}

func alreadyScanned(ticket *domain.Ticket, used *domain.TicketAttribution) *AlreadyScannedError {
	return &AlreadyScannedError{
		TicketNumber:   ticket.Number,
		ScannedAt:      used.Scan.ScannedAt,
		TripID:         used.Trip.ID,
		TripNumber:     used.Trip.TripNumber,
		DriverName:     used.Driver.Name,
		DriverEmployee: used.Driver.EmployeeID,
	}
}

// serviceDate truncates the clock to the UTC calendar day trips are keyed by.
func serviceDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
