package leave

import (
	"errors"
	"time"
)

// CalculateDays returns the inclusive day count between start and end.
func CalculateDays(start, end time.Time) (float64, error) {
	if end.Before(start) {
		return 0, errors.New("end date before start date")
	}
	return end.Sub(start).Hours()/24 + 1, nil
}

// canTransition reports whether a request may move from one status to
// another. Approved and Rejected are final; repeating the current status is
// always allowed.
func canTransition(from, to string) bool {
	if from == to {
		return true
	}
	switch from {
	case "", StatusPending:
		return true
	default:
		return false
	}
}
