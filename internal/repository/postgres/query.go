package postgres

import (
	"context"

	"github.com/1t0t0/dispatch-go/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ScanRepo serves the read side of the scan ledger.
type ScanRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *ScanRepo) With(db DB) *ScanRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *ScanRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// ListByTrip returns a trip's scan records in passenger order, joined with the
// redeemed ticket.
func (r *ScanRepo) ListByTrip(ctx context.Context, tripID int64) ([]domain.ScanWithTicket, error) {
	const op = "postgres.ScanRepo.ListByTrip"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT s.id, s.trip_id, s.ticket_id, s.scanned_at, s.passenger_order,
		        t.id, t.number, t.kind, t.passenger_count, t.price_per_person, t.price, t.issued_at
       	 FROM trip_scans s
       	 JOIN tickets t ON t.id = s.ticket_id
      	 WHERE s.trip_id = $1
      	 ORDER BY s.passenger_order`,
		tripID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.ScanWithTicket
	for rows.Next() {
		var sw domain.ScanWithTicket
		if err := rows.Scan(
			&sw.Scan.ID, &sw.Scan.TripID, &sw.Scan.TicketID, &sw.Scan.ScannedAt, &sw.Scan.PassengerOrder,
			&sw.Ticket.ID, &sw.Ticket.Number, &sw.Ticket.Kind, &sw.Ticket.PassengerCount,
			&sw.Ticket.PricePerPerson, &sw.Ticket.Price, &sw.Ticket.IssuedAt,
		); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, sw)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}
