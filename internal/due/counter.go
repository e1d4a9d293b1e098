package due

import "math"

// NextCounter computes the counter reading at which a counter-family
// task comes due again.
func NextCounter(last, interval float64) float64 {
	return last + interval
}

// CounterDue reports whether a live counter reading has reached the due
// point. ok is false when no reading is available; unavailable or
// non-finite readings never mark a task due.
func CounterDue(next, current float64, ok bool) bool {
	if !ok || math.IsNaN(current) || math.IsInf(current, 0) {
		return false
	}
	return current >= next
}
