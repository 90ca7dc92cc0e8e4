package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/csvaudit/internal/core"
	"github.com/JonMunkholm/csvaudit/internal/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ventas = "Mes,Cantidad\n" +
	"Enero,100\n" +
	"Enero,\"$50,000\"\n" +
	"Febrero,10.5\n" +
	"Marzo,N/A\n" +
	"Enero,100\n"

// setupEnv isolates the command from the caller's environment and
// returns a scratch directory holding ventas.csv.
func setupEnv(t *testing.T) string {
	t.Helper()
	for _, name := range []string{
		"DATABASE_URL", "DB_URL", "CATEGORY_KEY", "AMOUNT_KEY", "OUTPUT_PATH",
		"OUTPUT_FORMAT", "FAILED_ROWS_DIR", "LOG_LEVEL", "LOG_FORMAT", "NO_COLOR",
	} {
		t.Setenv(name, "")
	}
	t.Setenv("LOG_LEVEL", "error")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ventas.csv"), []byte(ventas), 0o644))
	return dir
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func TestRun_AnalyzeExportsJSON(t *testing.T) {
	dir := setupEnv(t)
	out := filepath.Join(dir, "montos_por_mes.json")

	stdout, err := runCmd(t, "-out", out, "-no-color", filepath.Join(dir, "ventas.csv"))
	require.NoError(t, err)

	assert.Contains(t, stdout, `• ("Enero", "100")`)
	assert.Contains(t, stdout, "• Enero: 3 times")
	assert.Contains(t, stdout, "• Enero: 50200")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"Enero\": 50200,\n  \"Febrero\": 10.5,\n  \"Marzo\": 0\n}", string(data))
}

func TestRun_AnalyzeXLSXAndFailedRows(t *testing.T) {
	dir := setupEnv(t)
	out := filepath.Join(dir, "totals.xlsx")
	failed := filepath.Join(dir, "failed")

	_, err := runCmd(t, "analyze", "-format", "xlsx", "-out", out, "-failed-dir", failed, filepath.Join(dir, "ventas.csv"))
	require.NoError(t, err)

	rows, err := export.ReadTotalsXLSX(out)
	require.NoError(t, err)
	assert.Contains(t, rows, [2]string{"Enero", "50200"})

	f, err := os.Open(filepath.Join(failed, "ventas - failed.csv"))
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Status", "Mes", "Cantidad"}, {`Cantidad is "N/A"`, "Marzo", "N/A"}}, records)
}

func TestRun_AnalyzeRecordsHistory(t *testing.T) {
	dir := setupEnv(t)
	t.Setenv("DATABASE_URL", "sqlite://"+filepath.Join(dir, "history.db"))

	_, err := runCmd(t, "-out", "", filepath.Join(dir, "ventas.csv"))
	require.NoError(t, err)

	stdout, err := runCmd(t, "history", "-no-color")
	require.NoError(t, err)
	assert.Contains(t, stdout, "ventas.csv")

	stdout, err = runCmd(t, "reset", "-yes")
	require.NoError(t, err)
	assert.Equal(t, "Run history cleared.\n", stdout)

	stdout, err = runCmd(t, "history")
	require.NoError(t, err)
	assert.Equal(t, "No runs recorded.\n", stdout)
}

func TestRun_Errors(t *testing.T) {
	dir := setupEnv(t)

	tests := []struct {
		name string
		args []string
		is   error
		code string
	}{
		{name: "no file", args: nil, is: errUsage},
		{name: "help", args: []string{"--help"}, is: errUsage},
		{name: "reset without confirmation", args: []string{"reset"}, is: errUsage},
		{name: "missing file", args: []string{filepath.Join(dir, "nope.csv")}, code: "FILE003"},
		{name: "bad format", args: []string{"-format", "yaml", filepath.Join(dir, "ventas.csv")}, code: "EXP002"},
		{name: "history disabled", args: []string{"history"}, is: core.ErrHistoryDisabled, code: "DB007"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCmd(t, tt.args...)
			require.Error(t, err)
			if tt.is != nil {
				assert.True(t, errors.Is(err, tt.is), "error %v is not %v", err, tt.is)
			}
			if tt.code != "" {
				assert.Equal(t, tt.code, core.MapError(err).Code, err.Error())
			}
		})
	}
}

func TestRun_ParseErrorFailsWithoutExport(t *testing.T) {
	dir := setupEnv(t)
	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("Mes,Cantidad\nEnero,\"100\n"), 0o644))
	out := filepath.Join(dir, "out.json")

	stdout, err := runCmd(t, "-out", out, bad)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(core.MapError(err).Code, "CSV"))
	assert.Empty(t, stdout)
	assert.NoFileExists(t, out)
}
