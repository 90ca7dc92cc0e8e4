// Package export persists analysis results: per-category totals as JSON or
// XLSX, and missing-amount rows as a "<input> - failed.csv" file.
package export

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/JonMunkholm/csvaudit/internal/core"
)

// Format selects the totals file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "json" or "xlsx" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", s)
	}
}

// WriteTotalsFile writes totals to path in the given format, replacing any
// existing file. The file is closed on every path; a close error is
// reported alongside any earlier failure.
func WriteTotalsFile(path string, format Format, totals *core.Totals) error {
	switch format {
	case FormatJSON:
		return writeJSONFile(path, totals)
	case FormatXLSX:
		return writeXLSXFile(path, totals)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func writeJSONFile(path string, totals *core.Totals) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("write output %s: close: %w", path, cerr))
		}
	}()

	if err := EncodeTotals(f, totals); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}
