package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenSetRatio(t *testing.T) {
	tests := []struct {
		name    string
		a, b    string
		atLeast int
		below   int
	}{
		{name: "initials expand to full names", a: "петров п. п.", b: "петров петро петрович", atLeast: 90},
		{name: "reordered", a: "іванов іван", b: "Іван, Іванов", atLeast: 100},
		{name: "different people", a: "петров петро", b: "сидоренко олена", below: 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ratio := TokenSetRatio(tt.a, tt.b)
			if tt.atLeast > 0 {
				assert.GreaterOrEqual(t, ratio, tt.atLeast)
			}
			if tt.below > 0 {
				assert.Less(t, ratio, tt.below)
			}
		})
	}
}

func TestTokenSetRatio_Empty(t *testing.T) {
	assert.Zero(t, TokenSetRatio("", "петров"))
	assert.Zero(t, TokenSetRatio("...", "петров"))
}

func TestIndelRatio(t *testing.T) {
	assert.Equal(t, 100, indelRatio("abc", "abc"))
	assert.Equal(t, 0, indelRatio("abc", "xyz"))
	assert.Equal(t, 80, indelRatio("abcd", "abcdef"))
}
