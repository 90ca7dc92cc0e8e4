// Package templates holds the HTML components for the web pages. The
// components live in .templ files; run `templ generate` after editing them.
package templates

import (
	"strconv"

	"github.com/JonMunkholm/csvaudit/internal/core"
)

// duplicateWidth is the widest duplicate tuple. Tuples differ in width
// when rows carry extra fields or the header repeats a name.
func duplicateWidth(tuples []core.Tuple) int {
	width := 0
	for _, t := range tuples {
		width = max(width, len(t))
	}
	return width
}

// duplicateColumns names the columns of the duplicates table.
func duplicateColumns(r *core.Report) []string {
	return r.Header.Columns(duplicateWidth(r.Duplicates))
}

// duplicateRows pads every tuple with empty cells to the table width.
func duplicateRows(r *core.Report) [][]string {
	width := duplicateWidth(r.Duplicates)
	rows := make([][]string, len(r.Duplicates))
	for i, t := range r.Duplicates {
		rows[i] = make([]string, width)
		copy(rows[i], t)
	}
	return rows
}

func countOf(counts *core.Counts, category string) string {
	n, _ := counts.Get(category)
	return strconv.Itoa(n)
}

func totalOf(totals *core.Totals, category string) string {
	t, ok := totals.Get(category)
	if !ok || t == nil {
		return ""
	}
	return t.String()
}
