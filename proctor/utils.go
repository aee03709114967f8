package proctor

import "math"

func maxFloat64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// direction maps sign of the delta onto a label pair
func direction(delta float64, positive, negative string) string {
	switch {
	case delta > 0:
		return positive
	case delta < 0:
		return negative
	default:
		return directionNone
	}
}
