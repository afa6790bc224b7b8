package metrics

import "math"

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// successRate returns the percentage of successful outcomes among
// completed check-ins, rounded to one decimal. Active check-ins never
// appear in the denominator, and a zero denominator yields 0.
func successRate(successful, completed int) float64 {
	if completed == 0 {
		return 0
	}
	return round1(float64(successful) / float64(completed) * 100)
}
