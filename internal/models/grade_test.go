package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradePointScale(t *testing.T) {
	cases := map[string]float64{
		"A+": 4.00,
		"A":  4.00,
		"A-": 3.70,
		"B+": 3.30,
		"B":  3.00,
		"B-": 2.70,
		"C+": 2.30,
		"C":  2.00,
		"C-": 1.70,
		"D":  1.00,
		"F":  0.00,
	}
	for letter, want := range cases {
		assert.Equal(t, want, GradePoint(letter), "letter %s", letter)
	}
}

func TestGradePointUnknownLetter(t *testing.T) {
	assert.Equal(t, 0.00, GradePoint("X"))
	assert.Equal(t, 0.00, GradePoint(""))
	assert.Equal(t, 0.00, GradePoint("a"))
}

func TestKnownGradeLetter(t *testing.T) {
	assert.True(t, KnownGradeLetter("A+"))
	assert.True(t, KnownGradeLetter("F"))
	assert.False(t, KnownGradeLetter("E"))
	assert.False(t, KnownGradeLetter(""))
}
