package utils

import "golang.org/x/exp/constraints"

func BoolToString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Clamp limits value to the inclusive range [min, max].
func Clamp[T constraints.Integer | constraints.Float](min, value, max T) T {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
