package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFloat(t *testing.T) {
	assert.Equal(t, 12.5, ParseFloat("12.5", 0))
	assert.Equal(t, 7.0, ParseFloat(" 7 ", 0))
	assert.Equal(t, 0.0, ParseFloat("abc", 0))
	assert.Equal(t, 0.0, ParseFloat("", 0))

	for _, in := range []string{"NaN", "nan", "Inf", "+Inf", "-Infinity", "1e400"} {
		assert.Equal(t, 9.5, ParseFloat(in, 9.5), in)
	}
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 3, ParseInt("3", 0))
	assert.Equal(t, 0, ParseInt("three", 0))
	assert.Equal(t, 1, ParseInt("", 1))
	assert.Equal(t, 0, ParseInt("2.5", 0))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ann@example.com", NormalizeEmail("  Ann@Example.COM "))
}

func TestStringPtr(t *testing.T) {
	assert.Nil(t, StringPtr("x", false))
	p := StringPtr("", true)
	if assert.NotNil(t, p) {
		assert.Equal(t, "", *p)
	}
}
