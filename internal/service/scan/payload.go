package scan

import (
	"encoding/json"
	"strings"

	"github.com/1t0t0/dispatch-go/internal/domain"
)

// CodeKind says which form the presented ticket code arrived in.
type CodeKind string

const (
	CodePlain      CodeKind = "plain"
	CodeIndividual CodeKind = "individual"
	CodeGroup      CodeKind = "group"
)

// TicketCode is the resolved form of whatever the driver's scanner produced:
// a bare ticket number, or a structured payload for individual or group
// tickets.
type TicketCode struct {
	Kind           CodeKind
	Number         string
	PassengerCount int
	PricePerPerson int64
	TotalPrice     int64
}

// codePayload mirrors the structured payload embedded in printed codes.
type codePayload struct {
	TicketType     string `json:"ticketType"`
	TicketNumber   string `json:"ticketNumber"`
	PassengerCount int    `json:"passengerCount"`
	PricePerPerson int64  `json:"pricePerPerson"`
	TotalPrice     int64  `json:"totalPrice"`
}

// ParseTicketCode resolves the ticket number from the request. rawPayload
// wins over ticketCode when present: it is parsed as the structured payload,
// and anything unparseable or missing a ticket number falls back to treating
// the raw string as a literal ticket number. The result's Number may still be
// empty; the coordinator rejects that as a validation error.
func ParseTicketCode(ticketCode, rawPayload string) TicketCode {
	if raw := strings.TrimSpace(rawPayload); raw != "" {
		var p codePayload
		if err := json.Unmarshal([]byte(raw), &p); err == nil && strings.TrimSpace(p.TicketNumber) != "" {
			tc := TicketCode{
				Kind:           CodeIndividual,
				Number:         strings.TrimSpace(p.TicketNumber),
				PassengerCount: p.PassengerCount,
				PricePerPerson: p.PricePerPerson,
				TotalPrice:     p.TotalPrice,
			}
			if p.TicketType == string(domain.TicketGroup) {
				tc.Kind = CodeGroup
			}
			return tc
		}

		return TicketCode{Kind: CodePlain, Number: raw}
	}

	return TicketCode{Kind: CodePlain, Number: strings.TrimSpace(ticketCode)}
}

// EncodeTicketPayload renders the structured payload printed into a ticket's
// code, the inverse of ParseTicketCode. Individual tickets encode as the bare
// ticket number.
func EncodeTicketPayload(t *domain.Ticket) ([]byte, error) {
	if t.Kind != domain.TicketGroup {
		return []byte(t.Number), nil
	}

	return json.Marshal(codePayload{
		TicketType:     string(t.Kind),
		TicketNumber:   t.Number,
		PassengerCount: t.PassengerCount,
		PricePerPerson: t.PricePerPerson,
		TotalPrice:     t.Price,
	})
}
