package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/csvaudit/internal/core"
)

// StatusColumn is prepended to every failed row with the reason it failed.
const StatusColumn = "Status"

// FailedRowsName returns "<base> - failed.csv" for an input file name.
func FailedRowsName(source string) string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "input"
	}
	return fmt.Sprintf("%s - failed.csv", base)
}

// WriteFailedRows writes records as CSV under a Status column explaining
// the missing amount. The remaining columns are every key seen across the
// records, in first-seen order.
func WriteFailedRows(w io.Writer, records []core.Record, amountKey string) error {
	columns := failedColumns(records)

	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{StatusColumn}, columns...)); err != nil {
		return err
	}

	for i := range records {
		rec := records[i]
		row := make([]string, 0, len(columns)+1)
		row = append(row, failedReason(rec, amountKey))
		for _, col := range columns {
			v, _ := rec.Get(col)
			row = append(row, v)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFailedRowsFile writes the failed rows for source into dir and
// returns the path written. It writes nothing when records is empty.
func WriteFailedRowsFile(dir, source string, records []core.Record, amountKey string) (path string, err error) {
	if len(records) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("write output %s: %w", dir, err)
	}

	path = filepath.Join(dir, FailedRowsName(source))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("write output %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("write output %s: close: %w", path, cerr))
		}
	}()

	if err := WriteFailedRows(f, records, amountKey); err != nil {
		return "", fmt.Errorf("write output %s: %w", path, err)
	}
	return path, nil
}

func failedColumns(records []core.Record) []string {
	seen := make(map[string]struct{})
	var columns []string
	for i := range records {
		for _, k := range records[i].Keys() {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			columns = append(columns, k)
		}
	}
	return columns
}

func failedReason(rec core.Record, amountKey string) string {
	raw, ok := rec.Get(amountKey)
	switch {
	case !ok:
		return fmt.Sprintf("missing column %s", amountKey)
	case core.NormalizeAmount(raw) == "":
		return fmt.Sprintf("%s is empty", amountKey)
	default:
		return fmt.Sprintf("%s is %q", amountKey, raw)
	}
}
