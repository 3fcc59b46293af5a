package main

import (
	"cmp"
	"math"
)

func clamp[T cmp.Ordered](val, min, max T) T {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

func sin(x float32) float32 {
	return float32(math.Sin(float64(x)))
}
