package postgres

import (
	"context"
	"strings"

	"github.com/1t0t0/dispatch-go/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *TicketRepo) With(db DB) *TicketRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *TicketRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// GetByNumber resolves a ticket by its human-facing number. The lookup is a
// case-sensitive exact match after trimming surrounding whitespace.
//
// Returns repository.ErrNotFound when no ticket carries that number.
func (r *TicketRepo) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	const op = "postgres.TicketRepo.GetByNumber"

	db := r.handle()

	var t domain.Ticket
	err := db.QueryRow(ctx,
		`SELECT id, number, kind, passenger_count, price_per_person, price, issued_at
       	 FROM tickets WHERE number = $1`,
		strings.TrimSpace(number),
	).Scan(&t.ID, &t.Number, &t.Kind, &t.PassengerCount, &t.PricePerPerson, &t.Price, &t.IssuedAt)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &t, nil
}
