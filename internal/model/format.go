package model

import (
	"strconv"
	"strings"
)

// FormatFixed renders v with exactly decimals fractional digits, truncating the
// shortest decimal representation instead of rounding it.
func FormatFixed(v float64, decimals int) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	intPart, frac, _ := strings.Cut(s, ".")
	if decimals <= 0 {
		return intPart
	}
	if len(frac) > decimals {
		frac = frac[:decimals]
	} else {
		frac += strings.Repeat("0", decimals-len(frac))
	}
	return intPart + "." + frac
}
