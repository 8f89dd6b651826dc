package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/1t0t0/dispatch-go/internal/domain"
	"github.com/1t0t0/dispatch-go/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TripRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *TripRepo) With(db DB) *TripRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *TripRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const tripColumns = `id, trip_number, vehicle_id, driver_id, service_date, status,
	capacity, required_passengers, current_passengers, threshold_reached,
	started_at, closed_at`

func scanTrip(row pgx.Row) (*domain.Trip, error) {
	var t domain.Trip
	err := row.Scan(
		&t.ID, &t.TripNumber, &t.VehicleID, &t.DriverID, &t.ServiceDate, &t.Status,
		&t.Capacity, &t.RequiredPassengers, &t.CurrentPassengers, &t.ThresholdReached,
		&t.StartedAt, &t.ClosedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FindActiveTrip returns the single in_progress trip for a driver on a service
// date, or repository.ErrNotFound. A partial unique index guarantees there is
// at most one.
func (r *TripRepo) FindActiveTrip(ctx context.Context, driverID int64, serviceDate time.Time) (*domain.Trip, error) {
	const op = "postgres.TripRepo.FindActiveTrip"

	db := r.handle()

	t, err := scanTrip(db.QueryRow(ctx,
		`SELECT `+tripColumns+`
       	 FROM trips
      	 WHERE driver_id = $1 AND service_date = $2 AND status = 'in_progress'`,
		driverID, serviceDate,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return t, nil
}

func (r *TripRepo) GetTrip(ctx context.Context, id int64) (*domain.Trip, error) {
	const op = "postgres.TripRepo.GetTrip"

	db := r.handle()

	t, err := scanTrip(db.QueryRow(ctx,
		`SELECT `+tripColumns+` FROM trips WHERE id = $1`, id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return t, nil
}

// FindScanByTicket is the system-wide reverse lookup over the ticket -> trip
// index. It spans all trips, drivers and days: a ticket scanned yesterday by
// another driver still resolves here. The consuming driver's identity is
// joined in so callers can surface attribution to staff.
//
// Returns repository.ErrNotFound when the ticket has never been scanned.
func (r *TripRepo) FindScanByTicket(ctx context.Context, ticketID int64) (*domain.TicketAttribution, error) {
	const op = "postgres.TripRepo.FindScanByTicket"

	db := r.handle()

	var a domain.TicketAttribution
	err := db.QueryRow(ctx,
		`SELECT s.id, s.trip_id, s.ticket_id, s.scanned_at, s.passenger_order,
		        t.id, t.trip_number, t.vehicle_id, t.driver_id, t.service_date, t.status,
		        t.capacity, t.required_passengers, t.current_passengers, t.threshold_reached,
		        t.started_at, t.closed_at,
		        d.id, d.name, d.employee_id
       	 FROM trip_scans s
       	 JOIN trips t ON t.id = s.trip_id
       	 JOIN drivers d ON d.id = t.driver_id
      	 WHERE s.ticket_id = $1`,
		ticketID,
	).Scan(
		&a.Scan.ID, &a.Scan.TripID, &a.Scan.TicketID, &a.Scan.ScannedAt, &a.Scan.PassengerOrder,
		&a.Trip.ID, &a.Trip.TripNumber, &a.Trip.VehicleID, &a.Trip.DriverID, &a.Trip.ServiceDate, &a.Trip.Status,
		&a.Trip.Capacity, &a.Trip.RequiredPassengers, &a.Trip.CurrentPassengers, &a.Trip.ThresholdReached,
		&a.Trip.StartedAt, &a.Trip.ClosedAt,
		&a.Driver.ID, &a.Driver.Name, &a.Driver.EmployeeID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &a, nil
}

// CommitScan atomically redeems a ticket against a trip: it appends the scan
// record and advances the passenger counter, or changes nothing at all.
//
// The trip row is locked for the duration, which serializes concurrent scans
// and a concurrent close on the same trip. The unique index on
// trip_scans.ticket_id is the system-wide insert-if-absent point: of two
// concurrent commits for one ticket, exactly one inserts and the other
// receives repository.ErrConflict.
//
// Returns:
//   - repository.ErrNotFound: the trip does not exist.
//   - repository.ErrTripClosed: the trip is no longer in progress.
//   - repository.ErrConflict: the ticket is already scanned somewhere.
//   - repository.ErrTripFull: the passengers would exceed capacity.
func (r *TripRepo) CommitScan(
	ctx context.Context,
	tripID int64,
	ticketID int64,
	passengersToAdd int,
) (*domain.Trip, *domain.ScanRecord, error) {
	const op = "postgres.TripRepo.CommitScan"

	if r.db != nil {
		trip, rec, err := r.commitScanCore(ctx, r.db, tripID, ticketID, passengersToAdd)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, translateDBErr(err))
		}
		return trip, rec, nil
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		trip, rec, err := r.commitScanTx(ctx, tripID, ticketID, passengersToAdd)
		if err == nil {
			return trip, rec, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			break
		}
	}

	return nil, nil, fmt.Errorf("%s: %w", op, translateDBErr(lastErr))
}

func (r *TripRepo) commitScanTx(
	ctx context.Context,
	tripID int64,
	ticketID int64,
	passengersToAdd int,
) (*domain.Trip, *domain.ScanRecord, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return nil, nil, err
	}

	defer tx.Rollback(ctx)

	trip, rec, err := r.commitScanCore(ctx, tx, tripID, ticketID, passengersToAdd)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	return trip, rec, nil
}

func (r *TripRepo) commitScanCore(
	ctx context.Context,
	db DB,
	tripID int64,
	ticketID int64,
	passengersToAdd int,
) (*domain.Trip, *domain.ScanRecord, error) {
	trip, err := scanTrip(db.QueryRow(ctx,
		`SELECT `+tripColumns+` FROM trips WHERE id = $1 FOR UPDATE`, tripID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, repository.ErrNotFound
		}
		return nil, nil, err
	}

	if trip.Status != domain.TripInProgress {
		return nil, nil, repository.ErrTripClosed
	}

	// Duplicate use is detected before the capacity guard so the caller sees
	// AlreadyScanned rather than CapacityExceeded when both apply.
	rec := domain.ScanRecord{
		ID:             uuid.New(),
		TripID:         tripID,
		TicketID:       ticketID,
		PassengerOrder: trip.CurrentPassengers + 1,
	}

	if err := db.QueryRow(ctx,
		`INSERT INTO trip_scans(id, trip_id, ticket_id, passenger_order)
       	 VALUES ($1, $2, $3, $4)
     	 RETURNING scanned_at`,
		rec.ID, rec.TripID, rec.TicketID, rec.PassengerOrder,
	).Scan(&rec.ScannedAt); err != nil {
		return nil, nil, err
	}

	newCount := trip.CurrentPassengers + passengersToAdd
	if newCount > trip.Capacity {
		// Rolling back the transaction discards the scan insert.
		return nil, nil, repository.ErrTripFull
	}

	reached := newCount >= trip.RequiredPassengers

	if _, err := db.Exec(ctx,
		`UPDATE trips
        	SET current_passengers = $2, threshold_reached = $3
      	 WHERE id = $1`,
		tripID, newCount, reached,
	); err != nil {
		return nil, nil, err
	}

	trip.CurrentPassengers = newCount
	trip.ThresholdReached = reached

	return trip, &rec, nil
}

// CreateTrip opens the day's trip for a driver. The trip number is sequential
// per service date (T-YYYYMMDD-NNN). Returns repository.ErrConflict when the
// driver already has an in_progress trip for that date.
func (r *TripRepo) CreateTrip(
	ctx context.Context,
	driverID int64,
	vehicleID int64,
	serviceDate time.Time,
	capacity int,
	requiredPassengers int,
) (*domain.Trip, error) {
	const op = "postgres.TripRepo.CreateTrip"

	db := r.handle()

	t, err := scanTrip(db.QueryRow(ctx,
		`INSERT INTO trips(trip_number, vehicle_id, driver_id, service_date,
		                   capacity, required_passengers)
       	 VALUES (
			'T-' || to_char($3::date, 'YYYYMMDD') || '-' ||
			lpad((coalesce((SELECT count(*) FROM trips WHERE service_date = $3), 0) + 1)::text, 3, '0'),
			$2, $1, $3, $4, $5
		 )
     	 RETURNING `+tripColumns,
		driverID, vehicleID, serviceDate, capacity, requiredPassengers,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return t, nil
}

// CloseTrip transitions an in_progress trip to closed. The guarded update
// takes the same row lock as CommitScan, so a scan never lands on a trip that
// closes mid-operation.
//
// Returns repository.ErrTripClosed when it was already closed and
// repository.ErrNotFound when the trip does not exist.
func (r *TripRepo) CloseTrip(ctx context.Context, tripID int64) (*domain.Trip, error) {
	const op = "postgres.TripRepo.CloseTrip"

	db := r.handle()

	t, err := scanTrip(db.QueryRow(ctx,
		`UPDATE trips
        	SET status = 'closed', closed_at = now()
      	 WHERE id = $1 AND status = 'in_progress'
     	 RETURNING `+tripColumns,
		tripID,
	))
	if err == nil {
		return t, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, wrapDBErr(op, err)
	}

	var status domain.TripStatus
	if err := db.QueryRow(ctx,
		`SELECT status FROM trips WHERE id = $1`, tripID,
	).Scan(&status); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return nil, fmt.Errorf("%s: %w", op, repository.ErrTripClosed)
}
