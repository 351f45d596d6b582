package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joseph-ayodele/fuel-tracker/internal/common"
	"github.com/joseph-ayodele/fuel-tracker/internal/ingest"
	"github.com/joseph-ayodele/fuel-tracker/internal/llm"
	"github.com/joseph-ayodele/fuel-tracker/internal/llm/provider"
	"github.com/joseph-ayodele/fuel-tracker/internal/receipts"
	repo "github.com/joseph-ayodele/fuel-tracker/internal/repository"
)

func main() {
	var (
		imagePath = flag.String("image", "", "receipt photo to extract")
		store     = flag.Bool("store", false, "append the extracted receipt to the configured store")
		times     = flag.Int("n", 1, "number of extraction runs on the same image")
		dir       = flag.String("dir", "", "ingest every receipt photo under this directory into the store")
		watch     = flag.Bool("watch", false, "with -dir, keep watching the directory for new photos")
		debounce  = flag.Duration("debounce", 2*time.Second, "with -watch, wait this long after the last write before ingesting")
	)
	flag.Parse()

	if *imagePath == "" && *dir == "" {
		fmt.Fprintln(os.Stderr, "usage: extract -image <file> [-store] [-n times] | extract -dir <path> [-watch]")
		os.Exit(2)
	}

	cfg, err := common.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	logger := common.NewLogger(cfg.Log, os.Stderr)
	if err := cfg.ValidateExtraction(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	extractor, err := provider.NewExtractor(cfg.LLM, logger)
	if err != nil {
		logger.Error("build extractor", "error", err)
		os.Exit(1)
	}

	if *dir != "" {
		if err := runInbox(cfg, extractor, *dir, *watch, *debounce, logger); err != nil {
			logger.Error("extract.inbox.error", "error", err)
			os.Exit(1)
		}
		return
	}

	image, err := os.ReadFile(*imagePath)
	if err != nil {
		logger.Error("read image", "path", *imagePath, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if *store {
		s, closeStore, err := repo.Open(ctx, cfg.Store, logger)
		if err != nil {
			logger.Error("open store", "error", err)
			os.Exit(1)
		}
		defer closeStore()

		rec, err := receipts.NewService(extractor, s, nil, logger).Ingest(ctx, image)
		if err != nil {
			logger.Error("extract.store.error", "error", err)
			os.Exit(1)
		}
		printJSON(rec)
		return
	}

	failures := 0
	for i := 1; i <= *times; i++ {
		start := time.Now()
		fields, err := extractor.ExtractFields(ctx, image)
		if err != nil {
			failures++
			logger.Error("extract.run.error", "iter", i, "error", err)
			continue
		}
		logger.Info("extract.run.ok", "iter", i, "elapsed_ms", time.Since(start).Milliseconds())
		printJSON(fields)
	}

	logger.Info("done", "image", *imagePath, "times", *times, "failures", failures)
	if failures == *times {
		os.Exit(1)
	}
}

// runInbox ingests the photos under dir, then optionally keeps watching it.
func runInbox(cfg *common.Config, extractor llm.FieldExtractor, dir string, watch bool, debounce time.Duration, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, closeStore, err := repo.Open(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	inbox := ingest.NewInbox(receipts.NewService(extractor, s, nil, logger), logger)
	_, stats, err := inbox.IngestDirectory(ctx, dir, true)
	if err != nil {
		return err
	}
	printJSON(stats)

	if !watch {
		return nil
	}
	return inbox.Watch(ctx, ingest.WatchConfig{Roots: []string{dir}, Debounce: debounce})
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
	}
}
