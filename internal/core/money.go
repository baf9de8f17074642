package core

import (
	"strconv"
	"strings"
)

// ARS amounts are whole pesos, no decimals. Formatting follows the es-AR
// convention of dots as thousands separators.

// FormatARS renders n with thousands separators, e.g. 1234567 -> "1.234.567".
func FormatARS(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, d := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FormatARSWithPrefix renders n as "$ 1.234.567".
func FormatARSWithPrefix(n int64) string {
	return "$ " + FormatARS(n)
}

// ParseARS extracts a whole-peso amount from free-form input, tolerating
// dots, spaces and currency symbols. Unparseable input yields 0.
func ParseARS(input string) int64 {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0
	}
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' || r == '-' {
			b.WriteRune(r)
		}
	}
	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// ClampInt bounds n into [min, max].
func ClampInt(n, min, max int64) int64 {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
