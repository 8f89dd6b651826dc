package scan_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/1t0t0/dispatch-go/internal/domain"
	"github.com/1t0t0/dispatch-go/internal/repository"
	"github.com/1t0t0/dispatch-go/internal/service/scan"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// fakeTicketStore serves issued tickets by number.
type fakeTicketStore struct {
	mu      sync.Mutex
	tickets map[string]domain.Ticket
}

func (f *fakeTicketStore) GetByNumber(_ context.Context, number string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[number]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

// fakeRegistry mimics the storage contract: one active trip per driver per
// day, scan commit is atomic under a mutex, a ticket inserts at most once
// system-wide, and the capacity guard runs after the duplicate check.
type fakeRegistry struct {
	mu     sync.Mutex
	trips  map[int64]*domain.Trip
	driver domain.Driver
	scans  map[int64]*domain.ScanRecord // keyed by ticket ID
}

func newFakeRegistry(trip *domain.Trip, driver domain.Driver) *fakeRegistry {
	return &fakeRegistry{
		trips:  map[int64]*domain.Trip{trip.ID: trip},
		driver: driver,
		scans:  map[int64]*domain.ScanRecord{},
	}
}

func (f *fakeRegistry) FindActiveTrip(_ context.Context, driverID int64, _ time.Time) (*domain.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.trips {
		if t.DriverID == driverID && t.Status == domain.TripInProgress {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRegistry) FindScanByTicket(_ context.Context, ticketID int64) (*domain.TicketAttribution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.scans[ticketID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &domain.TicketAttribution{
		Scan:   *rec,
		Trip:   *f.trips[rec.TripID],
		Driver: f.driver,
	}, nil
}

func (f *fakeRegistry) CommitScan(_ context.Context, tripID, ticketID int64, passengersToAdd int) (*domain.Trip, *domain.ScanRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.trips[tripID]
	if !ok {
		return nil, nil, repository.ErrNotFound
	}
	if t.Status != domain.TripInProgress {
		return nil, nil, repository.ErrTripClosed
	}
	if _, used := f.scans[ticketID]; used {
		return nil, nil, repository.ErrConflict
	}
	if t.CurrentPassengers+passengersToAdd > t.Capacity {
		return nil, nil, repository.ErrTripFull
	}

	rec := &domain.ScanRecord{
		ID:             uuid.New(),
		TripID:         tripID,
		TicketID:       ticketID,
		ScannedAt:      time.Now(),
		PassengerOrder: t.CurrentPassengers + 1,
	}
	f.scans[ticketID] = rec
	t.CurrentPassengers += passengersToAdd
	t.ThresholdReached = t.CurrentPassengers >= t.RequiredPassengers

	cp := *t
	rc := *rec
	return &cp, &rc, nil
}

func newTrip(capacity, required, current int) *domain.Trip {
	return &domain.Trip{
		ID:                 1,
		TripNumber:         "T-20260901-001",
		VehicleID:          7,
		DriverID:           42,
		ServiceDate:        time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Status:             domain.TripInProgress,
		Capacity:           capacity,
		RequiredPassengers: required,
		CurrentPassengers:  current,
	}
}

func newService(reg *fakeRegistry, tickets map[string]domain.Ticket) *scan.Service {
	return scan.New(&fakeTicketStore{tickets: tickets}, reg, nil, nil, nil, scan.Config{})
}

func individual(id int64, number string) domain.Ticket {
	return domain.Ticket{ID: id, Number: number, Kind: domain.TicketIndividual, PassengerCount: 1}
}

func TestScan_individualTicket(t *testing.T) {
	reg := newFakeRegistry(newTrip(10, 8, 0), domain.Driver{ID: 42, Name: "Khamphay", EmployeeID: "EMP-042"})
	svc := newService(reg, map[string]domain.Ticket{"T-001": individual(1, "T-001")})

	res, err := svc.Scan(context.Background(), 42, "T-001", "", "")

	require.NoError(t, err)
	require.Equal(t, 1, res.PassengersAdded)
	require.Equal(t, 1, res.Trip.CurrentPassengers)
	require.Equal(t, 1, res.Scan.PassengerOrder)
	require.False(t, res.Progress.ThresholdReached)
	require.Equal(t, "scan recorded: 1/10 passengers", res.Message)
}

func TestScan_groupTicketAddsAllPassengers(t *testing.T) {
	reg := newFakeRegistry(newTrip(10, 8, 0), domain.Driver{ID: 42})
	svc := newService(reg, map[string]domain.Ticket{
		"G-001": {ID: 5, Number: "G-001", Kind: domain.TicketGroup, PassengerCount: 4},
	})

	res, err := svc.Scan(context.Background(), 42, "", `{"ticketType":"group","ticketNumber":"G-001","passengerCount":4}`, "")

	require.NoError(t, err)
	require.Equal(t, 4, res.PassengersAdded)
	require.Equal(t, 4, res.Trip.CurrentPassengers)
	require.Equal(t, "group ticket accepted: +4 passengers (4/10)", res.Message)
}

func TestScan_emptyCode(t *testing.T) {
	reg := newFakeRegistry(newTrip(10, 8, 0), domain.Driver{ID: 42})
	svc := newService(reg, nil)

	_, err := svc.Scan(context.Background(), 42, "   ", "", "")

	require.ErrorIs(t, err, scan.ErrEmptyTicketCode)
}

func TestScan_noActiveTrip(t *testing.T) {
	closed := newTrip(10, 8, 0)
	closed.Status = domain.TripClosed
	reg := newFakeRegistry(closed, domain.Driver{ID: 42})
	svc := newService(reg, map[string]domain.Ticket{"T-001": individual(1, "T-001")})

	_, err := svc.Scan(context.Background(), 42, "T-001", "", "")

	require.ErrorIs(t, err, scan.ErrNoActiveTrip)
}

func TestScan_ticketNotFound(t *testing.T) {
	reg := newFakeRegistry(newTrip(10, 8, 0), domain.Driver{ID: 42})
	svc := newService(reg, map[string]domain.Ticket{})

	_, err := svc.Scan(context.Background(), 42, "T-404", "", "")

	require.ErrorIs(t, err, scan.ErrTicketNotFound)
}

// A consumed ticket is rejected with full attribution, and stays rejected
// with the same attribution on every retry.
func TestScan_alreadyScannedAttribution(t *testing.T) {
	driver := domain.Driver{ID: 42, Name: "Khamphay", EmployeeID: "EMP-042"}
	reg := newFakeRegistry(newTrip(10, 8, 0), driver)
	svc := newService(reg, map[string]domain.Ticket{"T-001": individual(1, "T-001")})

	_, err := svc.Scan(context.Background(), 42, "T-001", "", "")
	require.NoError(t, err)

	var first *scan.AlreadyScannedError
	_, err = svc.Scan(context.Background(), 42, "T-001", "", "")
	require.ErrorAs(t, err, &first)
	require.Equal(t, "T-001", first.TicketNumber)
	require.Equal(t, "T-20260901-001", first.TripNumber)
	require.Equal(t, "Khamphay", first.DriverName)
	require.Equal(t, "EMP-042", first.DriverEmployee)
	require.False(t, first.ScannedAt.IsZero())

	var second *scan.AlreadyScannedError
	_, err = svc.Scan(context.Background(), 42, "T-001", "", "")
	require.ErrorAs(t, err, &second)
	require.Equal(t, first.ScannedAt, second.ScannedAt)
	require.Equal(t, first.TripID, second.TripID)
}

func TestScan_groupTicketOverCapacity(t *testing.T) {
	reg := newFakeRegistry(newTrip(10, 8, 8), domain.Driver{ID: 42})
	svc := newService(reg, map[string]domain.Ticket{
		"G-001": {ID: 5, Number: "G-001", Kind: domain.TicketGroup, PassengerCount: 3},
	})

	var full *scan.CapacityExceededError
	_, err := svc.Scan(context.Background(), 42, "", `{"ticketType":"group","ticketNumber":"G-001","passengerCount":3}`, "")
	require.ErrorAs(t, err, &full)
	require.Equal(t, 8, full.Current)
	require.Equal(t, 3, full.Requested)
	require.Equal(t, 10, full.Capacity)
	require.Equal(t, "vehicle would overflow: 8 current + 3 requested = 11 exceeds capacity 10", full.Error())

	// the rejected scan must not consume the ticket or move the counter
	trip, err := reg.FindActiveTrip(context.Background(), 42, time.Time{})
	require.NoError(t, err)
	require.Equal(t, 8, trip.CurrentPassengers)
	_, err = reg.FindScanByTicket(context.Background(), 5)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

// Two drivers racing on the same ticket: exactly one scan commits, the loser
// gets the duplicate rejection with attribution to the winner.
func TestScan_sameTicketRace(t *testing.T) {
	for i := 0; i < 50; i++ {
		reg := newFakeRegistry(newTrip(10, 8, 0), domain.Driver{ID: 42, Name: "A"})
		tripB := newTrip(10, 8, 0)
		tripB.ID = 2
		tripB.TripNumber = "T-20260901-002"
		tripB.DriverID = 43
		reg.trips[tripB.ID] = tripB

		svc := newService(reg, map[string]domain.Ticket{"T-001": individual(1, "T-001")})

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for j, driverID := range []int64{42, 43} {
			wg.Add(1)
			go func(slot int, id int64) {
				defer wg.Done()
				_, errs[slot] = svc.Scan(context.Background(), id, "T-001", "", "")
			}(j, driverID)
		}
		wg.Wait()

		var okCount, dupCount int
		for _, err := range errs {
			if err == nil {
				okCount++
				continue
			}
			var dup *scan.AlreadyScannedError
			require.ErrorAs(t, err, &dup)
			require.Equal(t, "T-001", dup.TicketNumber)
			dupCount++
		}
		require.Equal(t, 1, okCount)
		require.Equal(t, 1, dupCount)
	}
}

// Two scans racing for the last seat: one commits, the other reports the
// post-commit counter in its capacity error.
func TestScan_lastSeatRace(t *testing.T) {
	for i := 0; i < 50; i++ {
		reg := newFakeRegistry(newTrip(5, 4, 4), domain.Driver{ID: 42})
		svc := newService(reg, map[string]domain.Ticket{
			"T-001": individual(1, "T-001"),
			"T-002": individual(2, "T-002"),
		})

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for j, number := range []string{"T-001", "T-002"} {
			wg.Add(1)
			go func(slot int, code string) {
				defer wg.Done()
				_, errs[slot] = svc.Scan(context.Background(), 42, code, "", "")
			}(j, number)
		}
		wg.Wait()

		var okCount, fullCount int
		for _, err := range errs {
			if err == nil {
				okCount++
				continue
			}
			var full *scan.CapacityExceededError
			require.ErrorAs(t, err, &full)
			require.Equal(t, 5, full.Current)
			require.Equal(t, 1, full.Requested)
			fullCount++
		}
		require.Equal(t, 1, okCount)
		require.Equal(t, 1, fullCount)

		trip, err := reg.FindActiveTrip(context.Background(), 42, time.Time{})
		require.NoError(t, err)
		require.Equal(t, 5, trip.CurrentPassengers)
	}
}

// Scanning one at a time, readiness flips exactly at the required count and
// the full-vehicle message appears at capacity.
func TestScan_thresholdProgression(t *testing.T) {
	reg := newFakeRegistry(newTrip(10, 8, 0), domain.Driver{ID: 42})
	tickets := map[string]domain.Ticket{}
	numbers := make([]string, 10)
	for i := 0; i < 10; i++ {
		n := string(rune('A'+i)) + "-1"
		numbers[i] = n
		tickets[n] = individual(int64(i+1), n)
	}
	svc := newService(reg, tickets)

	for i, n := range numbers {
		res, err := svc.Scan(context.Background(), 42, n, "", "")
		require.NoError(t, err)

		count := i + 1
		require.Equal(t, count, res.Trip.CurrentPassengers)
		require.Equal(t, count, res.Scan.PassengerOrder)
		require.Equal(t, count >= 8, res.Progress.ThresholdReached)
		if count == 7 {
			require.Equal(t, 70, res.Progress.OccupancyPct)
			require.Equal(t, "1 more passengers needed to reach the target", res.Progress.StatusMessage)
		}
		if count == 8 {
			require.Equal(t, 80, res.Progress.OccupancyPct)
			require.Equal(t, "target of 8 passengers reached, continue scanning or close the trip", res.Progress.StatusMessage)
		}
		if count == 10 {
			require.Equal(t, "vehicle full, please close the trip", res.Progress.StatusMessage)
		}
	}
}

// The capacity error taxonomy takes a back seat to the duplicate error: a
// ticket that lost the insert race reports already-scanned even when the trip
// is also full.
func TestScan_duplicateBeatsCapacity(t *testing.T) {
	reg := newFakeRegistry(newTrip(1, 1, 0), domain.Driver{ID: 42})
	svc := newService(reg, map[string]domain.Ticket{"T-001": individual(1, "T-001")})

	_, err := svc.Scan(context.Background(), 42, "T-001", "", "")
	require.NoError(t, err)

	var dup *scan.AlreadyScannedError
	_, err = svc.Scan(context.Background(), 42, "T-001", "", "")
	require.ErrorAs(t, err, &dup)

	var full *scan.CapacityExceededError
	require.False(t, errors.As(err, &full))
}
