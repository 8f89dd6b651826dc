package threshold_test

import (
	"fmt"
	"testing"

	"github.com/1t0t0/dispatch-go/internal/threshold"
	"github.com/stretchr/testify/require"
)

// TestEvaluate_belowThreshold: 7 of 8 required on a 10-seat vehicle is still
// not ready and asks for one more passenger.
func TestEvaluate_belowThreshold(t *testing.T) {
	p := threshold.Evaluate(7, 10, 8)

	require.Equal(t, 70, p.OccupancyPct)
	require.Equal(t, 88, p.ProgressPct)
	require.False(t, p.ThresholdReached)
	require.Equal(t, "1 more passengers needed to reach the target", p.StatusMessage)
}

// TestEvaluate_thresholdReached: the 8th passenger flips readiness while seats
// remain free.
func TestEvaluate_thresholdReached(t *testing.T) {
	p := threshold.Evaluate(8, 10, 8)

	require.Equal(t, 80, p.OccupancyPct)
	require.Equal(t, 100, p.ProgressPct)
	require.True(t, p.ThresholdReached)
	require.Equal(t,
		"target of 8 passengers reached, continue scanning or close the trip",
		p.StatusMessage,
	)
}

// TestEvaluate_vehicleFull: a full vehicle reports the full message even though
// the threshold message would also apply.
func TestEvaluate_vehicleFull(t *testing.T) {
	p := threshold.Evaluate(10, 10, 8)

	require.Equal(t, 100, p.OccupancyPct)
	require.True(t, p.ThresholdReached)
	require.Equal(t, "vehicle full, please close the trip", p.StatusMessage)
}

func TestEvaluate_emptyTrip(t *testing.T) {
	p := threshold.Evaluate(0, 10, 8)

	require.Equal(t, 0, p.OccupancyPct)
	require.Equal(t, 0, p.ProgressPct)
	require.False(t, p.ThresholdReached)
	require.Equal(t, "8 more passengers needed to reach the target", p.StatusMessage)
}

// TestEvaluate_rounding checks half-up rounding on awkward capacities.
func TestEvaluate_rounding(t *testing.T) {
	tests := []struct {
		current, capacity, required int
		wantOccupancy               int
		wantProgress                int
	}{
		{1, 3, 3, 33, 33},
		{2, 3, 3, 67, 67},
		{1, 7, 6, 14, 17},
		{5, 7, 6, 71, 83},
		{1, 8, 7, 13, 14},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_of_%d", tt.current, tt.capacity), func(t *testing.T) {
			p := threshold.Evaluate(tt.current, tt.capacity, tt.required)
			require.Equal(t, tt.wantOccupancy, p.OccupancyPct)
			require.Equal(t, tt.wantProgress, p.ProgressPct)
		})
	}
}

// TestEvaluate_monotonic: readiness never flips back as passengers accumulate.
func TestEvaluate_monotonic(t *testing.T) {
	reached := false
	for current := 0; current <= 10; current++ {
		p := threshold.Evaluate(current, 10, 8)
		if reached {
			require.True(t, p.ThresholdReached, "current=%d", current)
		}
		reached = reached || p.ThresholdReached
	}
	require.True(t, reached)
}
