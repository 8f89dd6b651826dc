// Package trip owns the trip lifecycle: opening the day's trip for a driver
// and closing it. Scanning is the scan package's job; closing a trip takes
// the same row-level trip guard as a scan commit, so the two serialize.
package trip

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/1t0t0/dispatch-go/internal/domain"
	"github.com/1t0t0/dispatch-go/internal/repository"
	postgresrepo "github.com/1t0t0/dispatch-go/internal/repository/postgres"
	redisrepo "github.com/1t0t0/dispatch-go/internal/repository/redis"
	"github.com/1t0t0/dispatch-go/internal/uow"
)

type Config struct {
	// Now supplies the clock used to derive the service date. Defaults to
	// time.Now.
	Now func() time.Time
}

type Service struct {
	store  *postgresrepo.Store
	cache  *redisrepo.Cache
	pubsub *redisrepo.TripsPubSub
	uow    *uow.UoW
	cfg    Config
}

func New(
	store *postgresrepo.Store,
	cache *redisrepo.Cache,
	pubsub *redisrepo.TripsPubSub,
	cfg Config,
) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Service{
		store:  store,
		cache:  cache,
		pubsub: pubsub,
		uow:    uow.NewUoW(store),
		cfg:    cfg,
	}
}

// StartTrip opens today's trip for the driver on the given vehicle. Capacity
// is fixed from the vehicle's configuration at this moment and the required
// passenger target is 80% of it, rounded up; both stay constant for the
// trip's lifetime.
//
// Returns:
//   - trip.ErrDriverNotFound / trip.ErrVehicleNotFound for unknown references.
//   - trip.ErrActiveTripExists when the driver already has an open trip today.
func (s *Service) StartTrip(ctx context.Context, driverID, vehicleID int64) (*domain.Trip, error) {
	const op = "service.trip.StartTrip"

	var created *domain.Trip

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		if _, err := s.store.Fleet().With(tx).DriverByID(ctx, driverID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, ErrDriverNotFound)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		vehicle, err := s.store.Fleet().With(tx).VehicleByID(ctx, vehicleID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, ErrVehicleNotFound)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		created, err = s.store.Trips().With(tx).CreateTrip(
			ctx,
			driverID,
			vehicleID,
			serviceDate(s.cfg.Now()),
			vehicle.Capacity,
			requiredFor(vehicle.Capacity),
		)
		if err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s: %w", op, ErrActiveTripExists)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateTrip(ctx, created.DriverID, created.ID)
			_ = s.pubsub.PublishTripChanged(ctx, created.ID, created.DriverID)
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// CloseTrip closes the driver's active trip. Closing is always an explicit
// driver action; a trip reaching full capacity stays open until this is
// called.
//
// Returns trip.ErrNoActiveTrip when there is nothing to close.
func (s *Service) CloseTrip(ctx context.Context, driverID int64) (*domain.Trip, error) {
	const op = "service.trip.CloseTrip"

	var closed *domain.Trip

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		active, err := s.store.Trips().With(tx).FindActiveTrip(ctx, driverID, serviceDate(s.cfg.Now()))
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, ErrNoActiveTrip)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		closed, err = s.store.Trips().With(tx).CloseTrip(ctx, active.ID)
		if err != nil {
			if errors.Is(err, repository.ErrTripClosed) || errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, ErrNoActiveTrip)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateTrip(ctx, closed.DriverID, closed.ID)
			_ = s.pubsub.PublishTripChanged(ctx, closed.ID, closed.DriverID)
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return closed, nil
}

// requiredFor is the trip-readiness target: 80% of capacity, rounded up.
func requiredFor(capacity int) int {
	return (capacity*4 + 4) / 5
}

func serviceDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
