package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	testCases := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"integer", 24, 24},
		{"already two places", 12.34, 12.34},
		{"rounds down", 12.344, 12.34},
		{"rounds half up", 12.345, 12.35},
		{"negative half away from zero", -12.345, -12.35},
		{"float noise", 0.1 + 0.2, 0.3},
		{"sum of products", 3*33.33 + 0.01, 100},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Round2(tc.input))
		})
	}
}

func TestRound2_NonFinitePassThrough(t *testing.T) {
	assert.True(t, math.IsNaN(Round2(math.NaN())))
	assert.True(t, math.IsInf(Round2(math.Inf(1)), 1))
	assert.True(t, math.IsInf(Round2(math.Inf(-1)), -1))
}
