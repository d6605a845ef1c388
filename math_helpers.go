package main

import "math"

// Round rounds val to the given number of decimal places.
func Round(val float64, precision int) float64 {
	p := math.Pow10(precision)
	return math.Round(val*p) / p
}
