package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "abc electronics", "abc electronics", 100},
		{"both empty", "", "", 100},
		{"one empty", "abc", "", 0},
		{"disjoint", "abcd", "wxyz", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Ratio(tt.a, tt.b))
		})
	}
}

func TestRatioPartialOverlap(t *testing.T) {
	// Insert/delete distance 5 over combined length 13.
	assert.InDelta(t, 61.54, Ratio("kitten", "sitting"), 0.01)
}

func TestRatioSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"laptop computer", "laptop"},
		{"abc electronics", "abc electronic"},
		{"office chair", "office supplies co"},
	}
	for _, p := range pairs {
		assert.Equal(t, Ratio(p[0], p[1]), Ratio(p[1], p[0]))
	}
}

func TestRatioBounds(t *testing.T) {
	pairs := [][2]string{
		{"a", "b"}, {"short", "a much longer string entirely"}, {"same", "same"},
	}
	for _, p := range pairs {
		r := Ratio(p[0], p[1])
		assert.GreaterOrEqual(t, r, 0.0)
		assert.LessOrEqual(t, r, 100.0)
	}
}
