package core

// records.go turns a parsed CSV tree into the ordered record sequence the
// analyzers consume.
//
// The walk is a pure function of the tree: the header row is captured
// before any data row is built, header rows never become records, and
// rows are emitted in source order.

import (
	"fmt"
	"io"
	"strconv"

	"github.com/JonMunkholm/csvaudit/internal/csv"
)

// EmptyField is the value stored for an empty cell.
const EmptyField = ""

// Header is the ordered list of column names from the first row.
type Header []string

// Key returns the record key for column i. Columns past the end of the
// header get a positional key such as "col_3".
func (h Header) Key(i int) string {
	if i < len(h) {
		return h[i]
	}
	return "col_" + strconv.Itoa(i)
}

// Columns returns the first width record keys in record order. Repeated
// header names collapse to one key, so a row of n fields yields at most n
// keys and the positional keys past the header fill in the rest.
func (h Header) Columns(width int) []string {
	cols := make([]string, 0, width)
	seen := make(map[string]bool, width)
	for i := 0; len(cols) < width; i++ {
		k := h.Key(i)
		if seen[k] {
			continue
		}
		seen[k] = true
		cols = append(cols, k)
	}
	return cols
}

// Record maps column keys to field values for one data row, in column order.
// Duplicate header names share one key: the key stays at its first
// position and holds the value of the last such column.
type Record = OrderedMap[string]

// RecordOf builds a record from alternating key/value arguments.
// A trailing key without a value is ignored.
func RecordOf(kv ...string) Record {
	rec := NewOrderedMap[string](len(kv) / 2)
	for i := 0; i+1 < len(kv); i += 2 {
		rec.Set(kv[i], kv[i+1])
	}
	return *rec
}

// BuildRecords walks tree and returns its header and one record per data row.
func BuildRecords(tree *csv.Tree) (Header, []Record) {
	var header Header
	records := make([]Record, 0, len(tree.Rows))

	for _, row := range tree.Nodes() {
		values := rowValues(row)

		switch row.Kind {
		case csv.HeaderRow:
			header = values
		case csv.DataRow:
			records = append(records, buildRecord(header, values))
		}
	}

	return header, records
}

// ParseRecords parses CSV text and builds its records.
func ParseRecords(text string) (Header, []Record, error) {
	tree, err := csv.Parse(text)
	if err != nil {
		return nil, nil, err
	}
	header, records := BuildRecords(tree)
	return header, records, nil
}

// ReadRecords is ParseRecords over a reader; see csv.ParseReader for the
// byte-level cleanup applied first.
func ReadRecords(r io.Reader) (Header, []Record, error) {
	tree, err := csv.ParseReader(r)
	if err != nil {
		return nil, nil, err
	}
	header, records := BuildRecords(tree)
	return header, records, nil
}

func buildRecord(header Header, values []string) Record {
	rec := NewOrderedMap[string](len(values))
	for i, v := range values {
		rec.Set(header.Key(i), v)
	}
	return *rec
}

func rowValues(row *csv.Row) []string {
	values := make([]string, len(row.Fields))
	for i, f := range row.Fields {
		values[i] = fieldValue(f)
	}
	return values
}

// fieldValue extracts a cell's value. Quoted strings lose their outer
// delimiters only; doubled quotes inside are kept as written.
func fieldValue(f csv.Field) string {
	switch f.Kind {
	case csv.FieldText:
		return f.Text
	case csv.FieldString:
		if len(f.Text) >= 2 {
			return f.Text[1 : len(f.Text)-1]
		}
		return EmptyField
	case csv.FieldEmpty:
		return EmptyField
	default:
		panic(fmt.Sprintf("core: unhandled field kind %v", f.Kind))
	}
}
