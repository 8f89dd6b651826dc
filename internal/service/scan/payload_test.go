package scan

import (
	"testing"

	"github.com/1t0t0/dispatch-go/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestParseTicketCode_groupPayload(t *testing.T) {
	raw := `{"ticketType":"group","ticketNumber":"G-0042","passengerCount":4,"pricePerPerson":45000,"totalPrice":180000}`

	tc := ParseTicketCode("", raw)

	require.Equal(t, CodeGroup, tc.Kind)
	require.Equal(t, "G-0042", tc.Number)
	require.Equal(t, 4, tc.PassengerCount)
	require.Equal(t, int64(45000), tc.PricePerPerson)
	require.Equal(t, int64(180000), tc.TotalPrice)
}

func TestParseTicketCode_individualPayload(t *testing.T) {
	raw := `{"ticketType":"individual","ticketNumber":" T-0007 ","passengerCount":1}`

	tc := ParseTicketCode("ignored", raw)

	require.Equal(t, CodeIndividual, tc.Kind)
	require.Equal(t, "T-0007", tc.Number)
}

// Unparseable raw payloads are treated as a literal ticket number rather than
// rejected, so plain printed numbers keep working through the same field.
func TestParseTicketCode_malformedPayloadFallsBackToPlain(t *testing.T) {
	tc := ParseTicketCode("", "T-001")
	require.Equal(t, CodePlain, tc.Kind)
	require.Equal(t, "T-001", tc.Number)

	tc = ParseTicketCode("", "{")
	require.Equal(t, CodePlain, tc.Kind)
	require.Equal(t, "{", tc.Number)

	// valid JSON without a ticket number is still not a structured payload
	tc = ParseTicketCode("", `{"passengerCount":2}`)
	require.Equal(t, CodePlain, tc.Kind)
	require.Equal(t, `{"passengerCount":2}`, tc.Number)
}

func TestParseTicketCode_rawPayloadWinsOverTicketCode(t *testing.T) {
	tc := ParseTicketCode("T-111", `{"ticketNumber":"T-222"}`)
	require.Equal(t, "T-222", tc.Number)
}

func TestParseTicketCode_ticketCodeOnly(t *testing.T) {
	tc := ParseTicketCode("  T-123  ", "")
	require.Equal(t, CodePlain, tc.Kind)
	require.Equal(t, "T-123", tc.Number)

	tc = ParseTicketCode("   ", "")
	require.Empty(t, tc.Number)
}

func TestEncodeTicketPayload_roundTrip(t *testing.T) {
	group := &domain.Ticket{
		Number:         "G-0042",
		Kind:           domain.TicketGroup,
		PassengerCount: 4,
		PricePerPerson: 45000,
		Price:          180000,
	}

	b, err := EncodeTicketPayload(group)
	require.NoError(t, err)

	tc := ParseTicketCode("", string(b))
	require.Equal(t, CodeGroup, tc.Kind)
	require.Equal(t, "G-0042", tc.Number)
	require.Equal(t, 4, tc.PassengerCount)

	individual := &domain.Ticket{Number: "T-0007", Kind: domain.TicketIndividual}
	b, err = EncodeTicketPayload(individual)
	require.NoError(t, err)
	require.Equal(t, "T-0007", string(b))
}
