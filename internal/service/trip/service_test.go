package trip

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestRequiredFor: the readiness target is 80% of capacity, rounded up.
func TestRequiredFor(t *testing.T) {
	tests := []struct {
		capacity int
		want     int
	}{
		{1, 1},
		{2, 2},
		{3, 3},
		{4, 4},
		{5, 4},
		{7, 6},
		{10, 8},
		{11, 9},
		{12, 10},
		{14, 12},
		{15, 12},
		{45, 36},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, requiredFor(tt.capacity), "capacity=%d", tt.capacity)
	}
}

func TestServiceDate(t *testing.T) {
	// 05:30 in UTC+7 is still the previous UTC day; trips key on UTC.
	loc := time.FixedZone("ICT", 7*3600)
	at := time.Date(2026, 9, 1, 5, 30, 0, 0, loc) // 2026-08-31 22:30 UTC

	require.Equal(t,
		time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		serviceDate(at),
	)

	require.Equal(t,
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		serviceDate(time.Date(2026, 9, 1, 23, 59, 59, 0, time.UTC)),
	)
}
