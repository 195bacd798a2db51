package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  float64
	}{
		{"whole number", 110000, 110000},
		{"two decimals kept", 99.99, 99.99},
		{"rounds up", 10.456, 10.46},
		{"rounds down", 10.454, 10.45},
		{"float artifact collapses", 0.1 + 0.2, 0.3},
		{"negative value", -10.456, -10.46},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Round2(tt.input), 1e-9)
		})
	}
}

func TestAmountsEqual(t *testing.T) {
	assert.True(t, AmountsEqual(110000, 110000))
	assert.True(t, AmountsEqual(110000, 110000.005))
	assert.True(t, AmountsEqual(110000.005, 110000))
	assert.False(t, AmountsEqual(110000, 110000.02))
	assert.False(t, AmountsEqual(110000, 110001))
	assert.False(t, AmountsEqual(110000, 1))
}
