package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "Hi Sarah, following up.", "Hi Sarah, following up.", 0},
		{"case and punctuation only", "Hi Sarah, following up.", "hi sarah following up", 0},
		{"both empty", "", "  ", 0},
		{"one empty", "", "hello", 1},
		{"disjoint", "Hi Sarah, following up.", "Quarterly budget numbers attached", 1},
		{"half shared", "a b", "a c", 1 - 1.0/3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DiffRatio(tt.a, tt.b), 1e-9)
		})
	}
}

func TestDiffRatioSymmetricAndBounded(t *testing.T) {
	texts := []string{
		"",
		"Hi Sarah, following up.",
		"Dear Sarah, I am following up on the Q3 report.",
		"Totally unrelated text about a picnic",
		"report report report",
	}
	for _, a := range texts {
		for _, b := range texts {
			d := DiffRatio(a, b)
			assert.GreaterOrEqual(t, d, 0.0)
			assert.LessOrEqual(t, d, 1.0)
			assert.Equal(t, d, DiffRatio(b, a))
		}
	}
}
