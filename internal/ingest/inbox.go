package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Inbox feeds receipt photos from the filesystem to an Ingestor. Files whose
// content was already ingested by this Inbox are skipped.
type Inbox struct {
	ingestor Ingestor
	logger   *slog.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

func NewInbox(ingestor Ingestor, logger *slog.Logger) *Inbox {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inbox{ingestor: ingestor, logger: logger, seen: make(map[string]struct{})}
}

// IngestPath ingests a single photo.
func (i *Inbox) IngestPath(ctx context.Context, path string) (FileResult, error) {
	out := FileResult{Path: path}
	if !allowedPath(path) {
		return out, fmt.Errorf("unsupported or missing extension: %s", filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return out, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return out, fmt.Errorf("%s is empty", path)
	}
	sum := sha256.Sum256(data)
	out.HashHex = hex.EncodeToString(sum[:])

	i.mu.Lock()
	_, dup := i.seen[out.HashHex]
	i.mu.Unlock()
	if dup {
		out.Deduplicated = true
		i.logger.InfoContext(ctx, "ingest.file.duplicate", "path", path, "sha256", out.HashHex)
		return out, nil
	}

	rec, err := i.ingestor.Ingest(ctx, data)
	if err != nil {
		return out, err
	}

	i.mu.Lock()
	i.seen[out.HashHex] = struct{}{}
	i.mu.Unlock()

	out.ReceiptID = rec.ID
	i.logger.InfoContext(ctx, "ingest.file.ok", "path", path, "id", rec.ID)
	return out, nil
}

// IngestDirectory walks root, skips hidden entries if requested, and calls
// IngestPath for each photo. Returns per-file results + aggregate stats.
func (i *Inbox) IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]FileResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var results []FileResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, FileResult{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if rel, _ := filepath.Rel(root, path); skipHidden && IsHidden(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !allowedPath(path) {
			return nil
		}
		stats.Matched++

		r, err := i.IngestPath(ctx, path)
		if err != nil {
			i.logger.WarnContext(ctx, "ingest.file.error", "path", path, "error", err)
			r.Err = err.Error()
			results = append(results, r)
			stats.Failed++
			return nil
		}

		results = append(results, r)
		stats.Succeeded++
		if r.Deduplicated {
			stats.Deduplicated++
		}
		return nil
	})

	i.logger.InfoContext(ctx, "ingest.dir.done",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed,
	)
	return results, stats, err
}

// Watch ingests photos as they appear under cfg.Roots until ctx is
// cancelled. Files are handled one at a time.
func (i *Inbox) Watch(ctx context.Context, cfg WatchConfig) error {
	paths, errs, err := StartWatcher(ctx, cfg, i.logger)
	if err != nil {
		return err
	}
	i.logger.InfoContext(ctx, "ingest.watch.start", "roots", cfg.Roots)

	for {
		select {
		case <-ctx.Done():
			i.logger.InfoContext(ctx, "ingest.watch.stop", "reason", ctx.Err())
			return nil
		case p, ok := <-paths:
			if !ok {
				return nil
			}
			if _, err := i.IngestPath(ctx, p); err != nil {
				i.logger.WarnContext(ctx, "ingest.file.error", "path", p, "error", err)
			}
		case err, ok := <-errs:
			if ok && err != nil {
				i.logger.WarnContext(ctx, "ingest.watch.error", "error", err)
			}
		}
	}
}
