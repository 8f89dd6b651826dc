// Package query serves the read side: trip progress snapshots and scan
// listings, cached with short TTLs and invalidated on every commit.
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/1t0t0/dispatch-go/internal/domain"
	"github.com/1t0t0/dispatch-go/internal/repository"
	postgresrepo "github.com/1t0t0/dispatch-go/internal/repository/postgres"
	redisrepo "github.com/1t0t0/dispatch-go/internal/repository/redis"
	"github.com/1t0t0/dispatch-go/internal/threshold"
)

type Config struct {
	ActiveTripTTL time.Duration
	ScansTTL      time.Duration

	// Now supplies the clock used to derive the service date. Defaults to
	// time.Now.
	Now func() time.Time
}

type Service struct {
	store *postgresrepo.Store
	cache *redisrepo.Cache
	cfg   Config
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.ActiveTripTTL <= 0 {
		cfg.ActiveTripTTL = 5 * time.Second
	}

	if cfg.ScansTTL <= 0 {
		cfg.ScansTTL = 15 * time.Second
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Service{
		store: store,
		cache: cache,
		cfg:   cfg,
	}
}

// TripProgress is a read-only snapshot of the driver's active trip. The
// percentages and status message come from the same evaluator the scan
// commit uses.
type TripProgress struct {
	Trip     domain.Trip
	Progress threshold.Progress
}

// ActiveTripProgress returns the progress snapshot for the driver's active
// trip, or query.ErrNoActiveTrip.
func (s *Service) ActiveTripProgress(ctx context.Context, driverID int64) (*TripProgress, error) {
	const op = "service.query.ActiveTripProgress"

	key := redisrepo.KeyDriverActiveTrip(driverID)

	trip, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		key,
		s.cfg.ActiveTripTTL,
		func(ctx context.Context) (domain.Trip, error) {
			t, err := s.store.Trips().FindActiveTrip(ctx, driverID, serviceDate(s.cfg.Now()))
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return domain.Trip{}, ErrNoActiveTrip
				}

				return domain.Trip{}, err
			}

			return *t, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &TripProgress{
		Trip: trip,
		Progress: threshold.Evaluate(
			trip.CurrentPassengers,
			trip.Capacity,
			trip.RequiredPassengers,
		),
	}, nil
}

// ListScans returns a trip's scan records in passenger order.
func (s *Service) ListScans(ctx context.Context, tripID int64) ([]domain.ScanWithTicket, error) {
	const op = "service.query.ListScans"

	if _, err := s.store.Trips().GetTrip(ctx, tripID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrTripNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	key := redisrepo.KeyTripScans(tripID)

	scans, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		key,
		s.cfg.ScansTTL,
		func(ctx context.Context) ([]domain.ScanWithTicket, error) {
			return s.store.Scans().ListByTrip(ctx, tripID)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return scans, nil
}

// TicketByNumber resolves an issued ticket, e.g. to re-render its code.
func (s *Service) TicketByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	const op = "service.query.TicketByNumber"

	t, err := s.store.Tickets().GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrTicketNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return t, nil
}

func serviceDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
