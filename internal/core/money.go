// Package core provides the expense model and input parsing.
//
// This file contains the amount parsing and display helpers used by the
// add flow and the table renderer.
package core

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount converts the amount field to a float64.
//
// Surrounding whitespace is ignored. Any sign and magnitude is accepted;
// NaN and infinities are rejected since the amount column cannot hold them.
//
// Examples:
//
//	ParseAmount("4.5")   -> 4.5, nil
//	ParseAmount(" 1200") -> 1200, nil
//	ParseAmount("-3")    -> -3, nil
//	ParseAmount("abc")   -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatAmount renders an amount for the table. Whole values keep one
// decimal place so 1200 shows as "1200.0".
func FormatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
