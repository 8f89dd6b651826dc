package postgres

import (
	"context"

	"github.com/1t0t0/dispatch-go/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FleetRepo reads the driver and vehicle records owned by the out-of-scope
// administration side. This service never writes them.
type FleetRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *FleetRepo) With(db DB) *FleetRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *FleetRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func (r *FleetRepo) DriverByID(ctx context.Context, id int64) (*domain.Driver, error) {
	const op = "postgres.FleetRepo.DriverByID"

	db := r.handle()

	var d domain.Driver
	err := db.QueryRow(ctx,
		`SELECT id, name, employee_id FROM drivers WHERE id = $1`, id,
	).Scan(&d.ID, &d.Name, &d.EmployeeID)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &d, nil
}

func (r *FleetRepo) VehicleByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	const op = "postgres.FleetRepo.VehicleByID"

	db := r.handle()

	var v domain.Vehicle
	err := db.QueryRow(ctx,
		`SELECT id, plate, capacity FROM vehicles WHERE id = $1`, id,
	).Scan(&v.ID, &v.Plate, &v.Capacity)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &v, nil
}
