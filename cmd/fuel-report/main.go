package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joseph-ayodele/fuel-tracker/internal/common"
	"github.com/joseph-ayodele/fuel-tracker/internal/export"
	"github.com/joseph-ayodele/fuel-tracker/internal/receipts"
	"github.com/joseph-ayodele/fuel-tracker/internal/report"
	repo "github.com/joseph-ayodele/fuel-tracker/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		format  = flag.String("format", "text", "output format: text, pdf or xlsx")
		yearStr = flag.String("year", "", "restrict the report to one calendar year")
		out     = flag.String("out", "", "output file (defaults to stdout for text, fuel_report[_year].<ext> otherwise)")
	)
	flag.Parse()

	year, err := common.ParseYear(*yearStr)
	if err != nil {
		printError("Error: invalid --year: %v\n", err)
		os.Exit(1)
	}

	cfg, err := common.LoadConfig()
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(2)
	}
	logger := common.NewLogger(cfg.Log, os.Stderr)

	ctx := context.Background()
	store, closeStore, err := repo.Open(ctx, cfg.Store, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	svc := receipts.NewService(nil, store, nil, logger)
	rep, err := svc.Report(ctx, year)
	if err != nil {
		logger.Error("failed to build report", "error", err)
		os.Exit(1)
	}

	var renderer report.DocumentRenderer
	switch strings.ToLower(*format) {
	case "text":
		text := report.FormatSummary(rep) + "\n"
		if *out == "" {
			fmt.Print(text)
			return
		}
		writeFile(*out, []byte(text), logger)
		return
	case "pdf":
		renderer = report.NewPDFRenderer(logger)
	case "xlsx":
		renderer = export.NewXLSXRenderer(logger)
	default:
		printError("Error: unknown --format %q (text, pdf, xlsx)\n", *format)
		os.Exit(1)
	}

	data, err := renderer.Render(rep)
	if err != nil {
		logger.Error("failed to render report", "format", *format, "error", err)
		os.Exit(1)
	}
	path := *out
	if path == "" {
		path = renderer.Filename(year)
	}
	writeFile(path, data, logger)
}

func writeFile(path string, data []byte, logger *slog.Logger) {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logger.Error("failed to write report", "path", path, "error", err)
		os.Exit(1)
	}
	logger.Info("report written", "path", path, "bytes", len(data))
}
