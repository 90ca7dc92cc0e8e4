package core

// convert.go parses normalized amount strings into numbers.
//
// Accepted decimal syntax:
//   - optional sign, digits with an optional fraction: "10.5", "-3", ".5", "5."
//   - an exponent: "1e3", "2.5E-2"
//   - underscores between digits: "1_000.5"
//   - decimal digits from any script: "٣" reads as 3
//
// Hexadecimal floats, NaN and infinities are rejected: they are not
// amounts, and a total holding one could not be exported.

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// parseDecimal converts an already normalized amount to a float64.
func parseDecimal(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}

	unsigned := strings.TrimLeft(s, "+-")
	if len(s)-len(unsigned) > 1 {
		return 0, false
	}
	if strings.HasPrefix(unsigned, "0x") || strings.HasPrefix(unsigned, "0X") {
		return 0, false
	}

	if strings.Contains(s, "_") {
		cleaned, ok := stripDigitSeparators(s)
		if !ok {
			return 0, false
		}
		s = cleaned
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// stripDigitSeparators removes underscores that sit between two digits.
// Any other underscore makes the string invalid.
func stripDigitSeparators(s string) (string, bool) {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			b.WriteByte(s[i])
			continue
		}
		if i == 0 || i == len(s)-1 || !isDigit(s[i-1]) || !isDigit(s[i+1]) {
			return "", false
		}
	}
	return b.String(), true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// foldDigits rewrites every Unicode decimal digit (category Nd) as its
// ASCII counterpart. Nd digits come in contiguous runs of ten starting at
// zero, so a digit's value is its distance from the start of its run.
func foldDigits(s string) string {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= utf8.RuneSelf && unicode.IsDigit(r) {
			b.WriteByte(byte('0' + digitValue(r)))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func digitValue(r rune) int {
	start := r
	for unicode.IsDigit(start - 1) {
		start--
	}
	return int(r-start) % 10
}
