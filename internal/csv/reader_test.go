package csv

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func TestBOMReader(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "file with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("Mes,Cantidad")...),
			expected: "Mes,Cantidad",
		},
		{
			name:     "file without BOM",
			input:    []byte("Mes,Cantidad"),
			expected: "Mes,Cantidad",
		},
		{
			name:     "empty file",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "partial BOM kept",
			input:    []byte{0xEF, 0xBB, 'a', 'b', 'c'},
			expected: string([]byte{0xEF, 0xBB, 'a', 'b', 'c'}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := io.ReadAll(newBOMReader(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestUTF8Sanitizer(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{name: "valid ASCII", input: []byte("Jan,100"), expected: "Jan,100"},
		{name: "valid multibyte", input: []byte("Año,Categoría"), expected: "Año,Categoría"},
		{name: "invalid byte replaced", input: []byte{'J', 'a', 0x80, 'n'}, expected: "Ja?n"},
		{name: "truncated sequence at EOF", input: []byte{'a', 0xC3}, expected: "a?"},
		{name: "empty input", input: []byte{}, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := io.ReadAll(newUTF8Sanitizer(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestUTF8Sanitizer_SplitAcrossReads(t *testing.T) {
	// OneByteReader forces every multi-byte rune to arrive in pieces.
	input := "Categoría,Año\nMes,Señal\n"
	r := newUTF8Sanitizer(iotest.OneByteReader(strings.NewReader(input)))

	result, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(result) != input {
		t.Errorf("got %q, want %q", string(result), input)
	}
}

func TestUTF8Sanitizer_SmallCallerBuffer(t *testing.T) {
	input := "Año,Categoría\nñ,€,\xff\n"
	r := newUTF8Sanitizer(strings.NewReader(input))

	var got []byte
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		got = append(got, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if want := "Año,Categoría\nñ,€,?\n"; string(got) != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestParseReader_MultibyteAtBufferBoundaries(t *testing.T) {
	// io.ReadAll grows its buffer in steps; a rune straddling the end of
	// any step must still come through whole.
	for _, offset := range []int{505, 510, 511, 512, 515, 895, 896, 1407, 1408, 2303, 2304, 3583, 4095} {
		header := "Mes,Cantidad\n"
		pad := strings.Repeat("x", offset-len(header))
		input := header + pad + "ñ,1\n"

		tree, err := ParseReader(strings.NewReader(input))
		if err != nil {
			t.Fatalf("offset %d: unexpected error: %v", offset, err)
		}
		if len(tree.Rows) != 1 {
			t.Fatalf("offset %d: got %d rows, want 1", offset, len(tree.Rows))
		}
	}
}

func TestParseReader_MultibyteRuneEveryOffset(t *testing.T) {
	header := "Mes,Cantidad\n"
	for offset := len(header); offset < 1100; offset++ {
		input := header + strings.Repeat("a", offset-len(header)) + "ñá,1\n"
		tree, err := ParseReader(strings.NewReader(input))
		if err != nil {
			t.Fatalf("offset %d: unexpected error: %v", offset, err)
		}
		if len(tree.Rows) != 1 {
			t.Fatalf("offset %d: got %d rows, want 1", offset, len(tree.Rows))
		}
	}
}

func TestCountingReader(t *testing.T) {
	c := NewCountingReader(strings.NewReader("Mes,Cantidad\n"))
	if _, err := io.ReadAll(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.N != 13 {
		t.Errorf("N = %d, want 13", c.N)
	}
}
