package domain

import "time"

// Status is the lifecycle state of a sprint. Transitions are one-directional:
// Planned -> Active -> one of the Completed variants. The classification
// policy for finished sprints is the three-way ratio split: a sprint that
// completed at least SuccessRatioThreshold of its planned points is
// Completed-Success, anything less is Completed-Partial.
type Status string

const (
	StatusPlanned          Status = "Planned"
	StatusActive           Status = "Active"
	StatusCompletedSuccess Status = "Completed-Success"
	StatusCompletedPartial Status = "Completed-Partial"
)

// SuccessRatioThreshold is the completion fraction at or above which a
// finished sprint counts as fully successful.
const SuccessRatioThreshold = 0.8

// Terminal reports whether a status is one of the Completed variants.
// Terminal statuses are never re-evaluated.
func (s Status) Terminal() bool {
	return s == StatusCompletedSuccess || s == StatusCompletedPartial
}

func (s Status) rank() int {
	switch s {
	case StatusPlanned:
		return 0
	case StatusActive:
		return 1
	case StatusCompletedSuccess, StatusCompletedPartial:
		return 2
	}
	return 0
}

// Before reports whether s precedes other in the one-directional lifecycle.
func (s Status) Before(other Status) bool {
	return s.rank() < other.rank()
}

// Midnight normalizes a time to the start of its day in UTC. All sprint date
// comparisons run at day granularity with inclusive boundaries.
func Midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ComputeStatus derives a sprint's status from its date window and point
// totals, evaluated at the given day. It is pure: no side effects, no error
// conditions.
//
//   - today before the start date: Planned
//   - start <= today <= end (inclusive day boundaries): Active
//   - after the end date: completed_points / max(planned_total_points, 1)
//     at or above SuccessRatioThreshold is Completed-Success, below it is
//     Completed-Partial. A zero planned total uses denominator 1, so any
//     nonzero completed total on such a sprint counts as success.
func ComputeStatus(s *Sprint, today time.Time) Status {
	day := Midnight(today)
	start := Midnight(s.StartDate)
	end := Midnight(s.EndDate)

	if day.Before(start) {
		return StatusPlanned
	}
	if !day.After(end) {
		return StatusActive
	}

	planned := s.PlannedTotalPoints
	if planned <= 0 {
		planned = 1
	}
	if s.CompletedPoints/planned >= SuccessRatioThreshold {
		return StatusCompletedSuccess
	}
	return StatusCompletedPartial
}

// AllowedPointValues is the Fibonacci-like whitelist of story point values
// accepted on sprint plans and registry entries. Part of the external schema
// contract.
var AllowedPointValues = []float64{0.5, 1, 2, 3, 5, 8, 13, 21, 34}

func IsAllowedPointValue(v float64) bool {
	for _, a := range AllowedPointValues {
		if v == a {
			return true
		}
	}
	return false
}
