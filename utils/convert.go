package utils

import (
	"math"
	"strconv"
	"strings"
)

// ParseFloat reads a form value as a float, falling back to def when the value
// is empty, malformed or not finite. NaN and Inf cannot be encoded as JSON.
func ParseFloat(s string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// ParseInt reads a form value as an int, falling back to def.
func ParseInt(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}

// NormalizeEmail trims and lower-cases an address before lookup or storage.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// StringPtr returns nil for an absent form field so partial updates can tell
// "not sent" from "sent empty".
func StringPtr(s string, present bool) *string {
	if !present {
		return nil
	}
	return &s
}
