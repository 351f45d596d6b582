package ingest

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/fuel-tracker/constants"
	"github.com/joseph-ayodele/fuel-tracker/internal/entity"
)

// Ingestor stores the receipt found in one photo.
type Ingestor interface {
	Ingest(ctx context.Context, image []byte) (*entity.Receipt, error)
}

// FileResult is the per-file ingest outcome.
type FileResult struct {
	Path         string
	HashHex      string
	ReceiptID    int
	Deduplicated bool
	Err          string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// AllowedExt reports whether ext (lowercase, no dot) is a receipt photo.
func AllowedExt(ext string) bool {
	_, ok := constants.ImageMediaTypes[ext]
	return ok
}

func allowedPath(path string) bool {
	return AllowedExt(constants.NormalizeExt(filepath.Ext(path)))
}

// IsHidden reports whether any element of path starts with a dot.
func IsHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && strings.HasPrefix(part, ".") && part != ".." {
			return true
		}
	}
	return false
}
