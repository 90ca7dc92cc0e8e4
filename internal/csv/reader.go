package csv

// reader.go holds the io.Reader wrappers applied to raw input before lexing:
//
//   - bomReader drops a leading UTF-8 byte order mark (0xEF 0xBB 0xBF),
//     which spreadsheet exports on Windows add to the first header name.
//   - utf8Sanitizer replaces invalid UTF-8 bytes with '?'.
//   - CountingReader records how many bytes were consumed.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// NewCleanReader strips a BOM and sanitizes UTF-8. The BOM must be removed
// first; the sanitizer would otherwise pass it through as a valid rune.
func NewCleanReader(r io.Reader) io.Reader {
	return newUTF8Sanitizer(newBOMReader(r))
}

type bomReader struct {
	br      *bufio.Reader
	checked bool
}

func newBOMReader(r io.Reader) *bomReader {
	return &bomReader{br: bufio.NewReader(r)}
}

func (r *bomReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		if head, err := r.br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
			if _, err := r.br.Discard(len(utf8BOM)); err != nil {
				return 0, err
			}
		}
	}
	return r.br.Read(p)
}

// utf8Sanitizer never expands its input: each invalid byte becomes a
// single '?'. A multi-byte sequence split across source reads is held in
// pending until the rest arrives. Sanitized bytes that do not fit in the
// caller's buffer wait in ready for the next Read, so a rune may be
// handed out in pieces.
type utf8Sanitizer struct {
	r       io.Reader
	buf     []byte
	pending []byte
	out     []byte
	ready   []byte
	err     error
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{r: r}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	for len(s.ready) == 0 {
		if s.err != nil {
			return 0, s.err
		}
		s.fill(len(p))
	}

	n := copy(p, s.ready)
	s.ready = s.ready[n:]
	return n, nil
}

// fill reads up to size source bytes and sanitizes everything in pending
// that forms complete runes into ready.
func (s *utf8Sanitizer) fill(size int) {
	if size < utf8.UTFMax {
		size = utf8.UTFMax
	}
	if cap(s.buf) < size {
		s.buf = make([]byte, size)
	}
	n, err := s.r.Read(s.buf[:size])
	s.pending = append(s.pending, s.buf[:n]...)
	s.err = err

	out, used := s.out[:0], 0
	for used < len(s.pending) {
		c := s.pending[used]
		if c < utf8.RuneSelf {
			out = append(out, c)
			used++
			continue
		}
		if s.err == nil && !utf8.FullRune(s.pending[used:]) {
			break
		}

		r, width := utf8.DecodeRune(s.pending[used:])
		if r == utf8.RuneError && width == 1 {
			out = append(out, '?')
			used++
			continue
		}
		out = append(out, s.pending[used:used+width]...)
		used += width
	}
	s.pending = append(s.pending[:0], s.pending[used:]...)
	s.out = out
	s.ready = out
}

// CountingReader tracks bytes read through it.
type CountingReader struct {
	r io.Reader
	N int64
}

// NewCountingReader wraps r.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{r: r}
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.N += int64(n)
	return n, err
}
