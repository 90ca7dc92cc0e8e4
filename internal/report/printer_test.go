package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/csvaudit/internal/core"
	"github.com/JonMunkholm/csvaudit/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, text string) *core.Report {
	t.Helper()
	header, records, err := core.ParseRecords(text)
	require.NoError(t, err)
	return core.Analyze(header, records, core.DefaultKeys())
}

func TestPrinter_ReportSectionsInOrder(t *testing.T) {
	r := analyze(t, "Mes,Cantidad\nEnero,100\nEnero,100\nFebrero,N/A\nFebrero,10.5\n")

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, false).Report(r))
	out := buf.String()

	sections := []string{"Duplicate rows:", "Occurrences per Mes:", "Rows with a missing or invalid Cantidad:", "Totals per Mes:"}
	last := -1
	for _, s := range sections {
		idx := strings.Index(out, s)
		require.GreaterOrEqual(t, idx, 0, "missing section %q in:\n%s", s, out)
		assert.Greater(t, idx, last, "section %q out of order", s)
		last = idx
	}

	assert.Contains(t, out, `• ("Enero", "100")`)
	assert.Contains(t, out, "• Enero: 2 times")
	assert.Contains(t, out, "• Febrero: 2 times")
	assert.Contains(t, out, `• {"Mes":"Febrero","Cantidad":"N/A"}`)
	assert.Contains(t, out, "• Enero: 200\n")
	assert.Contains(t, out, "• Febrero: 10.5\n")
	assert.NotContains(t, out, "\x1b[", "no ANSI codes without color")
}

func TestPrinter_ReportNoDuplicatesNoInvalid(t *testing.T) {
	r := analyze(t, "Mes,Cantidad\nEnero,1\n")

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, false).Report(r))
	out := buf.String()

	assert.Contains(t, out, "No duplicate rows.")
	assert.Contains(t, out, "• Enero: 1 time\n")
	assert.NotContains(t, out, "missing or invalid")
}

func TestPrinter_Color(t *testing.T) {
	r := analyze(t, "Mes,Cantidad\n")

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, true).Report(r))
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestPrinter_Runs(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	require.NoError(t, p.Runs(nil))
	assert.Equal(t, "No runs recorded.\n", buf.String())

	buf.Reset()
	id := uuid.MustParse("6f1c2b7e-0c1a-4d57-9a53-2f0c6c1b9e11")
	require.NoError(t, p.Runs([]store.RunSummary{{
		ID:          id,
		Source:      "ventas.csv",
		CreatedAt:   time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
		RecordCount: 5,
	}}))
	out := buf.String()
	assert.Contains(t, out, "RUN")
	assert.Contains(t, out, id.String())
	assert.Contains(t, out, "2024-03-01 12:30:00")
	assert.Contains(t, out, "ventas.csv")
}

func TestPrinter_Totals(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, false).Totals([]store.CategoryTotal{
		{Category: "Enero", Occurrences: 3, Total: "50200"},
		{Category: "Marzo", Occurrences: 1},
	}))
	out := buf.String()
	assert.Contains(t, out, "Enero")
	assert.Contains(t, out, "50200")
	assert.Regexp(t, `Marzo\s+1\s+-`, out)
}
