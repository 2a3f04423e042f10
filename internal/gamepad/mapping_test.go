package gamepad

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAxis(t *testing.T) {
	assert.Equal(t, 0.0, NormalizeAxis(0))
	assert.Equal(t, 1.0, NormalizeAxis(math.MaxInt16))
	assert.Equal(t, -1.0, NormalizeAxis(math.MinInt16))
	assert.InDelta(t, 0.5, NormalizeAxis(math.MaxInt16/2), 0.001)
}

func TestNormalizeTrigger(t *testing.T) {
	tests := []struct {
		name     string
		raw      int16
		min, max int16
		expected float64
	}{
		{"full range rest", -32768, -32768, 32767, 0},
		{"full range pressed", 32767, -32768, 32767, 1},
		{"half range rest", 0, 0, 32767, 0},
		{"half range pressed", 32767, 0, 32767, 1},
		{"degenerate range", 100, 50, 50, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, NormalizeTrigger(tt.raw, tt.min, tt.max), 0.001)
		})
	}
}

func TestApplyDeadzone(t *testing.T) {
	assert.Equal(t, 0.0, ApplyDeadzone(0.03, 0.05))
	assert.Equal(t, 0.0, ApplyDeadzone(-0.03, 0.05))
	assert.Equal(t, 0.5, ApplyDeadzone(0.5, 0.05))
	assert.Equal(t, -0.5, ApplyDeadzone(-0.5, 0.05))
}

func TestGetMapping(t *testing.T) {
	assert.Equal(t, "xbox", GetMapping(0x045E, 0x028E).Name)
	assert.Equal(t, "playstation", GetMapping(0x054C, 0x0CE6).Name)
	assert.Equal(t, "switch_pro", GetMapping(0x057E, 0x2009).Name)
	assert.Equal(t, "generic", GetMapping(0xBEEF, 0xCAFE).Name)
}
