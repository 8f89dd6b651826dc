package httpgin

import (
	"time"

	"github.com/1t0t0/dispatch-go/internal/domain"
	"github.com/1t0t0/dispatch-go/internal/service/query"
	"github.com/1t0t0/dispatch-go/internal/service/scan"
)

type ScanRequest struct {
	// TicketCode is the bare ticket number typed or scanned by the driver.
	TicketCode string `json:"ticket_code"`
	// RawPayload optionally carries the structured code payload; it wins over
	// TicketCode when present and falls back to a literal number when it
	// cannot be parsed.
	RawPayload string `json:"raw_payload"`
}

type StartTripRequest struct {
	VehicleID int64 `json:"vehicle_id" binding:"required"`
}

type TicketInfo struct {
	Number          string `json:"number"`
	Kind            string `json:"kind"`
	PassengerCount  int    `json:"passenger_count"`
	Price           int64  `json:"price"`
	PricePerPerson  int64  `json:"price_per_person"`
	PassengerOrder  int    `json:"passenger_order"`
	PassengersAdded int    `json:"passengers_added"`
}

type ScanResponse struct {
	Success            bool       `json:"success"`
	TripNumber         string     `json:"trip_number"`
	CurrentPassengers  int        `json:"current_passengers"`
	RequiredPassengers int        `json:"required_passengers"`
	Capacity           int        `json:"capacity"`
	OccupancyPct       int        `json:"occupancy_pct"`
	ProgressPct        int        `json:"progress_pct"`
	ThresholdReached   bool       `json:"threshold_reached"`
	CanCloseTrip       bool       `json:"can_close_trip"`
	Message            string     `json:"message"`
	StatusMessage      string     `json:"status_message"`
	TicketInfo         TicketInfo `json:"ticket_info"`
}

func newScanResponse(res *scan.Result) ScanResponse {
	return ScanResponse{
		Success:            true,
		TripNumber:         res.Trip.TripNumber,
		CurrentPassengers:  res.Trip.CurrentPassengers,
		RequiredPassengers: res.Trip.RequiredPassengers,
		Capacity:           res.Trip.Capacity,
		OccupancyPct:       res.Progress.OccupancyPct,
		ProgressPct:        res.Progress.ProgressPct,
		ThresholdReached:   res.Progress.ThresholdReached,
		CanCloseTrip:       true,
		Message:            res.Message,
		StatusMessage:      res.Progress.StatusMessage,
		TicketInfo: TicketInfo{
			Number:          res.Ticket.Number,
			Kind:            string(res.Ticket.Kind),
			PassengerCount:  res.Ticket.PassengerCount,
			Price:           res.Ticket.Price,
			PricePerPerson:  res.Ticket.PricePerPerson,
			PassengerOrder:  res.Scan.PassengerOrder,
			PassengersAdded: res.PassengersAdded,
		},
	}
}

type TripResponse struct {
	TripID             int64  `json:"trip_id"`
	TripNumber         string `json:"trip_number"`
	VehicleID          int64  `json:"vehicle_id"`
	DriverID           int64  `json:"driver_id"`
	ServiceDate        string `json:"service_date"`
	Status             string `json:"status"`
	Capacity           int    `json:"capacity"`
	RequiredPassengers int    `json:"required_passengers"`
	CurrentPassengers  int    `json:"current_passengers"`
	ThresholdReached   bool   `json:"threshold_reached"`
}

func newTripResponse(t *domain.Trip) TripResponse {
	return TripResponse{
		TripID:             t.ID,
		TripNumber:         t.TripNumber,
		VehicleID:          t.VehicleID,
		DriverID:           t.DriverID,
		ServiceDate:        t.ServiceDate.Format("2006-01-02"),
		Status:             string(t.Status),
		Capacity:           t.Capacity,
		RequiredPassengers: t.RequiredPassengers,
		CurrentPassengers:  t.CurrentPassengers,
		ThresholdReached:   t.ThresholdReached,
	}
}

type ProgressResponse struct {
	TripResponse
	OccupancyPct  int    `json:"occupancy_pct"`
	ProgressPct   int    `json:"progress_pct"`
	StatusMessage string `json:"status_message"`
}

func newProgressResponse(p *query.TripProgress) ProgressResponse {
	return ProgressResponse{
		TripResponse:  newTripResponse(&p.Trip),
		OccupancyPct:  p.Progress.OccupancyPct,
		ProgressPct:   p.Progress.ProgressPct,
		StatusMessage: p.Progress.StatusMessage,
	}
}

type ScanEntry struct {
	PassengerOrder int       `json:"passenger_order"`
	ScannedAt      time.Time `json:"scanned_at"`
	TicketNumber   string    `json:"ticket_number"`
	TicketKind     string    `json:"ticket_kind"`
	PassengerCount int       `json:"passenger_count"`
	Price          int64     `json:"price"`
}

func newScanEntries(scans []domain.ScanWithTicket) []ScanEntry {
	out := make([]ScanEntry, 0, len(scans))
	for _, s := range scans {
		out = append(out, ScanEntry{
			PassengerOrder: s.Scan.PassengerOrder,
			ScannedAt:      s.Scan.ScannedAt,
			TicketNumber:   s.Ticket.Number,
			TicketKind:     string(s.Ticket.Kind),
			PassengerCount: s.Ticket.PassengerCount,
			Price:          s.Ticket.Price,
		})
	}
	return out
}

type DriverInfo struct {
	Name       string `json:"name"`
	EmployeeID string `json:"employee_id"`
}

// ScanConflict is the AlreadyScanned attribution block staff use to resolve
// double-use disputes.
type ScanConflict struct {
	ScannedAt       time.Time  `json:"scanned_at"`
	ConsumingTrip   string     `json:"consuming_trip"`
	ConsumingDriver DriverInfo `json:"consuming_driver"`
}

type ErrorResponse struct {
	ErrorKind string        `json:"error_kind"`
	Message   string        `json:"message"`
	Details   *ScanConflict `json:"details,omitempty"`
}
