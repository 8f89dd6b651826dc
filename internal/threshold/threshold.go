// Package threshold computes trip occupancy and readiness from passenger
// counts. It has no dependencies and no side effects; the scan service uses it
// after every commit and the query service uses it for read-only snapshots.
package threshold

import (
	"fmt"
	"math"
)

type Progress struct {
	OccupancyPct     int    `json:"occupancy_pct"`
	ProgressPct      int    `json:"progress_pct"`
	ThresholdReached bool   `json:"threshold_reached"`
	StatusMessage    string `json:"status_message"`
}

// Evaluate computes the progress snapshot for a trip. capacity must be
// positive; trip creation enforces that. The status message decision table is
// evaluated top to bottom, first match wins:
//
//  1. vehicle full
//  2. required threshold reached, seats still free
//  3. N more passengers needed
//  4. no message
func Evaluate(currentPassengers, capacity, requiredPassengers int) Progress {
	p := Progress{
		OccupancyPct:     pct(currentPassengers, capacity),
		ProgressPct:      pct(currentPassengers, requiredPassengers),
		ThresholdReached: currentPassengers >= requiredPassengers,
	}

	switch {
	case currentPassengers == capacity:
		p.StatusMessage = "vehicle full, please close the trip"
	case p.ThresholdReached:
		p.StatusMessage = fmt.Sprintf(
			"target of %d passengers reached, continue scanning or close the trip",
			requiredPassengers,
		)
	case requiredPassengers-currentPassengers > 0:
		p.StatusMessage = fmt.Sprintf(
			"%d more passengers needed to reach the target",
			requiredPassengers-currentPassengers,
		)
	}

	return p
}

// pct rounds the ratio half-up on the real value, e.g. 7/10 -> 70, 1/3 -> 33.
func pct(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
