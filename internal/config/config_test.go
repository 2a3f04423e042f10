package config

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	assert.Equal(t, 5.0, d.Sensitivity)
	assert.Equal(t, -1.0, d.InvertX)
	assert.Equal(t, 1.0, d.InvertY)
	assert.Equal(t, AxisY, d.GravityAxis)
	assert.Equal(t, 9.81, d.GravityAmount)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		expected Tunables
	}{
		{
			name:     "empty input keeps defaults",
			contents: "",
			expected: Defaults(),
		},
		{
			name:     "single key overrides only that key",
			contents: "sensitivity=10.0",
			expected: Tunables{Sensitivity: 10.0, InvertX: -1, InvertY: 1, GravityAxis: AxisY, GravityAmount: 9.81},
		},
		{
			name:     "all keys",
			contents: "sensitivity=2.5\ninvert_x=1\ninvert_y=-1\ngravity_axis=2\ngravity_amount=1.62",
			expected: Tunables{Sensitivity: 2.5, InvertX: 1, InvertY: -1, GravityAxis: AxisZ, GravityAmount: 1.62},
		},
		{
			name:     "whitespace around keys and values",
			contents: "  sensitivity = 7.5  \n gravity_amount =  3.71",
			expected: Tunables{Sensitivity: 7.5, InvertX: -1, InvertY: 1, GravityAxis: AxisY, GravityAmount: 3.71},
		},
		{
			name:     "unparsable value counts as zero",
			contents: "sensitivity=fast\ngravity_amount=9.81",
			expected: Tunables{Sensitivity: 0.0, InvertX: -1, InvertY: 1, GravityAxis: AxisY, GravityAmount: 9.81},
		},
		{
			name:     "unknown keys ignored",
			contents: "smoothing=0.5\nsensitivity=4",
			expected: Tunables{Sensitivity: 4.0, InvertX: -1, InvertY: 1, GravityAxis: AxisY, GravityAmount: 9.81},
		},
		{
			name:     "lines without equals ignored",
			contents: "this is not a pair\nsensitivity=4",
			expected: Tunables{Sensitivity: 4.0, InvertX: -1, InvertY: 1, GravityAxis: AxisY, GravityAmount: 9.81},
		},
		{
			name:     "invert maps positive to plus one",
			contents: "invert_x=0.25\ninvert_y=2",
			expected: Tunables{Sensitivity: 5.0, InvertX: 1, InvertY: 1, GravityAxis: AxisY, GravityAmount: 9.81},
		},
		{
			name:     "invert maps zero and negative to minus one",
			contents: "invert_x=0\ninvert_y=-3",
			expected: Tunables{Sensitivity: 5.0, InvertX: -1, InvertY: -1, GravityAxis: AxisY, GravityAmount: 9.81},
		},
		{
			name:     "unparsable invert counts as zero, so minus one",
			contents: "invert_y=yes",
			expected: Tunables{Sensitivity: 5.0, InvertX: -1, InvertY: -1, GravityAxis: AxisY, GravityAmount: 9.81},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Parse(tt.contents))
		})
	}
}

func TestParseGravityAxis(t *testing.T) {
	tests := []struct {
		value    string
		expected Axis
	}{
		{"0", AxisX},
		{"1", AxisY},
		{"2", AxisZ},
		{"0.9", AxisX}, // truncated, not rounded
		{"1.9", AxisY},
		{"7", AxisZ}, // anything else lands on Z
		{"-1", AxisZ},
		{"up", AxisX}, // unparsable counts as 0.0, and 0 selects X
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got := Parse("gravity_axis=" + tt.value)
			assert.Equal(t, tt.expected, got.GravityAxis)
		})
	}
}

func TestStoreReplaceSnapshot(t *testing.T) {
	s := NewStore()
	assert.Equal(t, Defaults(), s.Snapshot())

	want := Tunables{Sensitivity: 1, InvertX: 1, InvertY: -1, GravityAxis: AxisZ, GravityAmount: 2}
	s.Replace(want)
	assert.Equal(t, want, s.Snapshot())
}

// TestStoreConcurrentAccess hammers the store from a writer and several
// readers. Run with -race; the assertion is that every snapshot is one of the
// two complete values, never a mix.
func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore()
	a := Defaults()
	b := Tunables{Sensitivity: 100, InvertX: 1, InvertY: 1, GravityAxis: AxisX, GravityAmount: 42}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			if i%2 == 0 {
				s.Replace(a)
			} else {
				s.Replace(b)
			}
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				got := s.Snapshot()
				if got != a && got != b {
					t.Errorf("torn snapshot: %+v", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}
