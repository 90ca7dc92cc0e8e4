package core

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Total is a running sum that stays an exact integer until the first
// decimal contribution, after which it is a float64.
type Total struct {
	exact   big.Int
	float   float64
	isFloat bool
}

// NewIntegerTotal parses an optionally signed base-10 integer.
func NewIntegerTotal(s string) (*Total, error) {
	t := &Total{}
	if _, ok := t.exact.SetString(s, 10); !ok {
		return nil, fmt.Errorf("invalid integer total %q", s)
	}
	return t, nil
}

// NewFloatTotal returns a floating total holding f.
func NewFloatTotal(f float64) *Total {
	return &Total{float: f, isFloat: true}
}

// AddDigits adds a string of ASCII digits exactly. It reports false if
// digits is not such a string.
func (t *Total) AddDigits(digits string) bool {
	var n big.Int
	if !isASCIIDigits(digits) {
		return false
	}
	if _, ok := n.SetString(digits, 10); !ok {
		return false
	}

	if t.isFloat {
		f, _ := new(big.Float).SetInt(&n).Float64()
		t.float += f
		return true
	}
	t.exact.Add(&t.exact, &n)
	return true
}

// AddFloat adds f, converting the total to floating point if needed.
func (t *Total) AddFloat(f float64) {
	if !t.isFloat {
		t.float, _ = new(big.Float).SetInt(&t.exact).Float64()
		t.isFloat = true
	}
	t.float += f
}

// IsInteger reports whether every contribution so far was an integer.
func (t *Total) IsInteger() bool { return !t.isFloat }

// Float64 returns the total as a float64.
func (t *Total) Float64() float64 {
	if t.isFloat {
		return t.float
	}
	f, _ := new(big.Float).SetInt(&t.exact).Float64()
	return f
}

// Decimal formats the total without an exponent, as databases and
// spreadsheets expect.
func (t *Total) Decimal() string {
	if !t.isFloat {
		return t.exact.String()
	}
	return strconv.FormatFloat(t.float, 'f', -1, 64)
}

// String formats integers as plain digits and floats in shortest
// round-trip form, keeping a ".0" on integral values (50100.0) and using
// an exponent outside [1e-4, 1e16).
func (t *Total) String() string {
	if !t.isFloat {
		return t.exact.String()
	}
	return formatFloat(t.float)
}

// MarshalJSON writes the total as a bare JSON number.
func (t *Total) MarshalJSON() ([]byte, error) {
	if t.isFloat && (math.IsNaN(t.float) || math.IsInf(t.float, 0)) {
		return nil, fmt.Errorf("total %v is not representable in JSON", t.float)
	}
	return []byte(t.String()), nil
}

func formatFloat(f float64) string {
	if f == 0 {
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}

	abs := math.Abs(f)
	if abs < 1e-4 || abs >= 1e16 {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

func isASCIIDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
