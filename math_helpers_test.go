package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound(t *testing.T) {
	testCases := []struct {
		name      string
		val       float64
		precision int
		expected  float64
	}{
		{"One decimal", 32.04, 1, 32.0},
		{"One decimal rounds up", 32.05, 1, 32.1},
		{"Two decimals", 2.6666666, 2, 2.67},
		{"Zero precision", 59.5, 0, 60},
		{"Negative value rounds away from zero", -1.25, 1, -1.3},
		{"Already exact", 12.5, 1, 12.5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Round(tc.val, tc.precision))
		})
	}
}
