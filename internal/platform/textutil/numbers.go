package textutil

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var moneyPattern = regexp.MustCompile(`(?i)^\$?\s*([0-9][0-9,]*(?:\.[0-9]+)?)\s*(k|m|mil|million|thousand)?$`)

// ParseMoney parses "$1,200", "1.5k", "$30K" or "2m" into a dollar amount.
func ParseMoney(value string) (float64, bool) {
	v := strings.TrimSpace(value)
	v = strings.TrimSuffix(strings.TrimSuffix(v, "."), ",")
	m := moneyPattern.FindStringSubmatch(v)
	if m == nil {
		return 0, false
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil || !IsFinite(amount) {
		return 0, false
	}
	switch strings.ToLower(m[2]) {
	case "k", "thousand":
		amount *= 1000
	case "m", "mil", "million":
		amount *= 1000000
	}
	return amount, true
}

// ParseInt parses an integer that may carry thousands separators.
func ParseInt(value string) (int, bool) {
	v := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsFinite reports whether f is neither NaN nor ±Inf.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// FinitePtr returns nil for non-finite values so they never reach persistence.
func FinitePtr(f float64) *float64 {
	if !IsFinite(f) {
		return nil
	}
	return &f
}

// SanitizePtr drops a non-finite pointed-to value.
func SanitizePtr(f *float64) *float64 {
	if f == nil || !IsFinite(*f) {
		return nil
	}
	return f
}

// Round2 rounds to cents.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}
