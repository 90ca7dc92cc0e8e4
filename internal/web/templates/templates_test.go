package templates

import (
	"context"
	"strings"
	"testing"

	"github.com/JonMunkholm/csvaudit/internal/core"
)

func TestReportPage_Sections(t *testing.T) {
	header, records, err := core.ParseRecords("Mes,Cantidad\nEnero,1\nEnero,1\nFebrero,\n")
	if err != nil {
		t.Fatal(err)
	}
	report := core.Analyze(header, records, core.DefaultKeys())
	report.Source = "a&b.csv"

	var b strings.Builder
	if err := Layout("Report", ReportPage(report)).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := b.String()

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<h1>a&amp;b.csv</h1>",
		`<section id="duplicates">`,
		"<thead><tr><th>Mes</th><th>Cantidad</th></tr></thead>",
		"<td>Enero</td><td>1</td>",
		`<td>Enero</td><td class="num">2</td>`,
		"Rows with a missing or invalid Cantidad",
		`<td>Febrero</td><td class="num">0</td>`,
		"</main></body></html>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestReportPage_DuplicateColumnsFollowTupleWidth(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "extra fields",
			text: "Mes,Cantidad\nEnero,1,x\nEnero,1,x\n",
			want: []string{
				"<tr><th>Mes</th><th>Cantidad</th><th>col_2</th></tr>",
				"<tr><td>Enero</td><td>1</td><td>x</td></tr>",
			},
		},
		{
			name: "repeated header name",
			text: "Mes,Mes,Cantidad\nEnero,Feb,1\nEnero,Feb,1\n",
			want: []string{
				"<tr><th>Mes</th><th>Cantidad</th></tr>",
				"<tr><td>Feb</td><td>1</td></tr>",
			},
		},
		{
			name: "mixed widths padded",
			text: "Mes,Cantidad\nEnero,1\nEnero,1\nFeb,2,z\nFeb,2,z\n",
			want: []string{
				"<tr><th>Mes</th><th>Cantidad</th><th>col_2</th></tr>",
				"<tr><td>Enero</td><td>1</td><td></td></tr>",
				"<tr><td>Feb</td><td>2</td><td>z</td></tr>",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, records, err := core.ParseRecords(tt.text)
			if err != nil {
				t.Fatal(err)
			}
			report := core.Analyze(header, records, core.DefaultKeys())

			var b strings.Builder
			if err := ReportPage(report).Render(context.Background(), &b); err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(b.String(), want) {
					t.Errorf("output missing %q:\n%s", want, b.String())
				}
			}
		})
	}
}

func TestUploadForm_EscapesPlaceholders(t *testing.T) {
	var b strings.Builder
	keys := core.Keys{Category: `"><script>`, Amount: "Cantidad"}
	if err := UploadForm(keys).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := b.String()
	if strings.Contains(out, "<script>") {
		t.Errorf("placeholder not escaped: %s", out)
	}
	if !strings.Contains(out, `placeholder="Cantidad"`) {
		t.Errorf("amount placeholder missing: %s", out)
	}
}

func TestErrorAlert(t *testing.T) {
	var b strings.Builder
	if err := ErrorAlert("Bad <input>", "", "CSV002").Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := b.String()

	if !strings.Contains(out, "Bad &lt;input&gt;") || !strings.Contains(out, "(CSV002)") {
		t.Errorf("unexpected alert: %s", out)
	}
	if strings.Count(out, "<p>") != 2 {
		t.Errorf("empty action should not render a paragraph: %s", out)
	}
}
