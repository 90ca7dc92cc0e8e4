package core

import (
	"testing"
)

// ----------------------------------------------------------------------------
// parseDecimal Tests
// ----------------------------------------------------------------------------

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantOK bool
		want   float64
	}{
		// Valid: plain decimals
		{name: "decimal number", input: "10.5", wantOK: true, want: 10.5},
		{name: "negative decimal", input: "-3.25", wantOK: true, want: -3.25},
		{name: "explicit plus", input: "+7.5", wantOK: true, want: 7.5},
		{name: "leading decimal point", input: ".5", wantOK: true, want: 0.5},
		{name: "trailing decimal point", input: "5.", wantOK: true, want: 5},
		{name: "signed integer", input: "-40", wantOK: true, want: -40},

		// Valid: exponents and separators
		{name: "exponent", input: "1e3", wantOK: true, want: 1000},
		{name: "negative exponent", input: "2.5E-2", wantOK: true, want: 0.025},
		{name: "digit separators", input: "1_000.5", wantOK: true, want: 1000.5},

		// Invalid
		{name: "empty", input: "", wantOK: false},
		{name: "letters", input: "abc", wantOK: false},
		{name: "n/a sentinel", input: "N/A", wantOK: false},
		{name: "double sign", input: "--5", wantOK: false},
		{name: "hex float", input: "0x1p-2", wantOK: false},
		{name: "nan", input: "nan", wantOK: false},
		{name: "infinity", input: "inf", wantOK: false},
		{name: "overflow", input: "1e400", wantOK: false},
		{name: "leading underscore", input: "_5", wantOK: false},
		{name: "double underscore", input: "1__0", wantOK: false},
		{name: "underscore before point", input: "1_.5", wantOK: false},
		{name: "embedded space", input: "1 000", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseDecimal(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("parseDecimal(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("parseDecimal(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// NormalizeAmount Tests
// ----------------------------------------------------------------------------

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"100", "100"},
		{"$50,000", "50000"},
		{`"1,234.50"`, "1234.50"},
		{"  $ 7 ", "7"},
		{"N/A", "N/A"},
		{"", ""},
		{"€10", "€10"},
	}

	for _, tt := range tests {
		if got := NormalizeAmount(tt.input); got != tt.want {
			t.Errorf("NormalizeAmount(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFoldDigits(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "123", want: "123"},
		{input: "٣", want: "3"},
		{input: "٠١٢٣٤٥٦٧٨٩", want: "0123456789"},
		{input: "۴۲", want: "42"},
		{input: "१०.५", want: "10.5"},
		{input: "１０", want: "10"},
		{input: "𝟗𝟘", want: "90"},
		{input: "Año", want: "Año"},
		{input: "²", want: "²"},
	}

	for _, tt := range tests {
		if got := foldDigits(tt.input); got != tt.want {
			t.Errorf("foldDigits(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
