package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/JonMunkholm/csvaudit/internal/core"
)

// EncodeTotals writes totals as an indented JSON object in first-seen
// category order. Non-ASCII text and HTML characters are written as is
// and the document has no trailing newline.
func EncodeTotals(w io.Writer, totals *core.Totals) error {
	if totals == nil {
		totals = core.NewOrderedMap[*core.Total](0)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(totals); err != nil {
		return fmt.Errorf("encode totals: %w", err)
	}

	_, err := w.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	return err
}

// DecodeTotals reads a document written by EncodeTotals. Numbers are
// returned as json.Number so integer totals keep every digit.
func DecodeTotals(r io.Reader) (map[string]json.Number, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	out := make(map[string]json.Number)
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode totals: %w", err)
	}
	return out, nil
}
