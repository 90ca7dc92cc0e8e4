// Package report prints analysis results and run history to a terminal.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/JonMunkholm/csvaudit/internal/core"
	"github.com/JonMunkholm/csvaudit/internal/store"
	"github.com/buger/goterm"
)

// Printer writes human-readable reports. Color adds ANSI styling and
// should be off when the output is not a terminal.
type Printer struct {
	w     io.Writer
	color bool
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer, color bool) *Printer {
	return &Printer{w: w, color: color}
}

func (p *Printer) heading(text string, color int) string {
	if !p.color {
		return text
	}
	return goterm.Color(goterm.Bold(text), color)
}

// Report prints the four analyses in order: duplicates, category counts,
// invalid amounts, totals.
func (p *Printer) Report(r *core.Report) error {
	var b strings.Builder

	if len(r.Duplicates) > 0 {
		fmt.Fprintf(&b, "\n%s\n", p.heading("Duplicate rows:", goterm.YELLOW))
		for _, tuple := range r.Duplicates {
			fmt.Fprintf(&b, "• %s\n", formatTuple(tuple))
		}
	} else {
		fmt.Fprintf(&b, "\n%s\n", p.heading("No duplicate rows.", goterm.GREEN))
	}

	fmt.Fprintf(&b, "\n%s\n", p.heading(fmt.Sprintf("Occurrences per %s:", r.Keys.Category), goterm.CYAN))
	for _, category := range r.Categories.Keys() {
		n, _ := r.Categories.Get(category)
		fmt.Fprintf(&b, "• %s: %d %s\n", category, n, plural(n, "time", "times"))
	}

	if len(r.InvalidAmounts) > 0 {
		fmt.Fprintf(&b, "\n%s\n", p.heading(fmt.Sprintf("Rows with a missing or invalid %s:", r.Keys.Amount), goterm.YELLOW))
		for i := range r.InvalidAmounts {
			line, err := json.Marshal(r.InvalidAmounts[i])
			if err != nil {
				return fmt.Errorf("format row: %w", err)
			}
			fmt.Fprintf(&b, "• %s\n", line)
		}
	}

	fmt.Fprintf(&b, "\n%s\n", p.heading(fmt.Sprintf("Totals per %s:", r.Keys.Category), goterm.CYAN))
	for _, category := range r.Totals.Keys() {
		total, _ := r.Totals.Get(category)
		fmt.Fprintf(&b, "• %s: %s\n", category, total)
	}

	_, err := io.WriteString(p.w, b.String())
	return err
}

// Runs prints run history as a table.
func (p *Printer) Runs(runs []store.RunSummary) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(p.w, "No runs recorded.")
		return err
	}

	table := goterm.NewTable(0, 8, 2, ' ', 0)
	fmt.Fprintf(table, "RUN\tCREATED\tSOURCE\tRECORDS\tDUPLICATES\tCATEGORIES\tINVALID\n")
	for _, run := range runs {
		fmt.Fprintf(table, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			run.ID,
			run.CreatedAt.Format("2006-01-02 15:04:05"),
			run.Source,
			run.RecordCount,
			run.DuplicateCount,
			run.CategoryCount,
			run.InvalidCount,
		)
	}

	_, err := io.WriteString(p.w, table.String())
	return err
}

// Totals prints one stored run's categories as a table.
func (p *Printer) Totals(totals []store.CategoryTotal) error {
	table := goterm.NewTable(0, 8, 2, ' ', 0)
	fmt.Fprintf(table, "CATEGORY\tOCCURRENCES\tTOTAL\n")
	for _, t := range totals {
		total := t.Total.String()
		if total == "" {
			total = "-"
		}
		fmt.Fprintf(table, "%s\t%d\t%s\n", t.Category, t.Occurrences, total)
	}

	_, err := io.WriteString(p.w, table.String())
	return err
}

func formatTuple(t core.Tuple) string {
	quoted := make([]string, len(t))
	for i, v := range t {
		quoted[i] = strconv.Quote(v)
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
