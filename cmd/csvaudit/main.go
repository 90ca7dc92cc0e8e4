// Command csvaudit checks a CSV file for repeated rows, counts rows per
// category, lists rows with a missing amount and totals amounts per
// category. It can also serve the same analysis over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/JonMunkholm/csvaudit/internal/admin"
	"github.com/JonMunkholm/csvaudit/internal/config"
	"github.com/JonMunkholm/csvaudit/internal/core"
	"github.com/JonMunkholm/csvaudit/internal/export"
	"github.com/JonMunkholm/csvaudit/internal/logging"
	"github.com/JonMunkholm/csvaudit/internal/report"
	"github.com/JonMunkholm/csvaudit/internal/store"
	"github.com/JonMunkholm/csvaudit/internal/web"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
)

const usage = `usage:
  csvaudit [analyze] [flags] <file.csv>   analyze a file and export totals
  csvaudit serve                          run the HTTP server
  csvaudit history [-limit n] [-run id]   list recorded runs or one run's totals
  csvaudit reset -yes                     delete all recorded runs
`

// errUsage marks a command line that could not be parsed.
var errUsage = errors.New("invalid usage")

func main() {
	// Overload lets a local .env win over the shell environment.
	if err := godotenv.Overload(); err == nil {
		slog.Debug("loaded .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, "error:", core.FormatUserError(err))
		os.Exit(1)
	}
}

// run dispatches a subcommand. Logs go to stderr so stdout carries only
// the report.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logging.Setup(stderr, cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())

	cmd := "analyze"
	if len(args) > 0 {
		switch args[0] {
		case "analyze", "serve", "history", "reset":
			cmd, args = args[0], args[1:]
		case "help", "-h", "-help", "--help":
			return errUsage
		}
	}

	switch cmd {
	case "serve":
		return runServe(ctx, cfg)
	case "history":
		return runHistory(ctx, cfg, args, stdout, stderr)
	case "reset":
		return runReset(ctx, cfg, args, stdout, stderr)
	default:
		return runAnalyze(ctx, cfg, args, stdout, stderr)
	}
}

func runAnalyze(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("out", cfg.Analysis.OutputPath, "totals output path; empty skips the export")
	format := fs.String("format", cfg.Analysis.OutputFormat, "totals output format: json or xlsx")
	category := fs.String("category", "", "category column (default "+cfg.Analysis.CategoryKey+")")
	amount := fs.String("amount", "", "amount column (default "+cfg.Analysis.AmountKey+")")
	failedDir := fs.String("failed-dir", cfg.Analysis.FailedRowsDir, "directory for the failed-rows CSV; empty skips it")
	noColor := fs.Bool("no-color", false, "disable colored output")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return errUsage
	}
	path := fs.Arg(0)

	outFormat, err := export.ParseFormat(*format)
	if err != nil {
		return err
	}

	history, err := store.Open(ctx, cfg.Database)
	if err != nil {
		// History is optional for a one-off analysis.
		slog.Warn("run history unavailable", "error", err)
		history = nil
	}
	if history != nil {
		defer history.Close()
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	svc := core.NewService(cfg, history)
	result, err := svc.Analyze(ctx, filepath.Base(path), f, core.Keys{Category: *category, Amount: *amount})
	if err != nil {
		return err
	}

	printer := report.NewPrinter(stdout, useColor(stdout, *noColor))
	if err := printer.Report(result); err != nil {
		return err
	}

	if *out != "" {
		if err := export.WriteTotalsFile(*out, outFormat, result.Totals); err != nil {
			return err
		}
		slog.Info("totals exported", "path", *out, "format", outFormat)
	}

	if *failedDir != "" {
		written, err := export.WriteFailedRowsFile(*failedDir, path, result.InvalidAmounts, result.Keys.Amount)
		if err != nil {
			return err
		}
		if written != "" {
			slog.Info("failed rows exported", "path", written, "rows", len(result.InvalidAmounts))
		}
	}
	return nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	history, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	if history != nil {
		defer history.Close()
	}

	slog.Info("configuration loaded",
		"addr", cfg.Server.Addr(),
		"history", history != nil,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	service := core.NewService(cfg, history)
	server := web.NewServer(service, history, cfg)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if status := service.LimiterStatus(); status.Active > 0 {
		slog.Info("waiting for analyses to complete", "active", status.Active)
		if err := service.WaitForAnalyses(shutdownCtx); err != nil {
			slog.Warn("analyses did not complete in time", "error", err)
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

func runHistory(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(stderr)
	limit := fs.Int("limit", store.DefaultListLimit, "number of runs to list")
	runID := fs.String("run", "", "show the totals of one run")
	noColor := fs.Bool("no-color", false, "disable colored output")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return errUsage
	}

	history, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	if history == nil {
		return core.ErrHistoryDisabled
	}
	defer history.Close()

	printer := report.NewPrinter(stdout, useColor(stdout, *noColor))
	if *runID == "" {
		runs, err := history.ListRuns(ctx, *limit)
		if err != nil {
			return err
		}
		return printer.Runs(runs)
	}

	id, err := uuid.Parse(*runID)
	if err != nil {
		return fmt.Errorf("%w: %s", core.ErrRunNotFound, *runID)
	}
	totals, err := history.RunTotals(ctx, id)
	if err != nil {
		return err
	}
	return printer.Totals(totals)
}

func runReset(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	fs.SetOutput(stderr)
	yes := fs.Bool("yes", false, "confirm deleting all recorded runs")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 || !*yes {
		return errUsage
	}

	history, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	if history == nil {
		return core.ErrHistoryDisabled
	}
	defer history.Close()

	resetter := &admin.Resetter{Store: history}
	if err := resetter.ResetAll(ctx); err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, "Run history cleared.")
	return err
}

// useColor reports whether w is a terminal that should get ANSI styling.
func useColor(w io.Writer, disabled bool) bool {
	if disabled || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
