package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joseph-ayodele/fuel-tracker/internal/common"
	"github.com/joseph-ayodele/fuel-tracker/internal/entity"
)

// JSONStore keeps every record in a single indented JSON array file. Each
// write rewrites the whole file through a temp file and rename.
type JSONStore struct {
	path   string
	now    Clock
	logger *slog.Logger
	mu     sync.Mutex
}

var _ ReceiptRepository = (*JSONStore)(nil)

func NewJSONStore(path string, now Clock, logger *slog.Logger) *JSONStore {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &JSONStore{path: path, now: now, logger: logger}
}

func (s *JSONStore) Load(ctx context.Context) ([]*entity.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *JSONStore) Append(ctx context.Context, fields entity.ReceiptFields) (*entity.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}

	rec := entity.NewReceipt(len(records)+1, fields, s.now())
	records = append(records, rec)

	if err := s.write(records); err != nil {
		return nil, err
	}
	s.logger.Info("store.append.ok", "backend", common.BackendJSON, "id", rec.ID, "count", len(records))
	return rec, nil
}

func (s *JSONStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write([]*entity.Receipt{}); err != nil {
		return err
	}
	s.logger.Info("store.reset.ok", "backend", common.BackendJSON)
	return nil
}

func (s *JSONStore) load() ([]*entity.Receipt, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*entity.Receipt{}, nil
		}
		s.logger.Error("store.load.error", "path", s.path, "error", err)
		return nil, common.NewPersistenceError("read store file", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []*entity.Receipt{}, nil
	}

	var records []*entity.Receipt
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Error("store.load.decode_error", "path", s.path, "error", err)
		return nil, common.NewPersistenceError("decode store file", err)
	}
	if records == nil {
		records = []*entity.Receipt{}
	}
	return records, nil
}

func (s *JSONStore) write(records []*entity.Receipt) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return common.NewPersistenceError("encode records", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return common.NewPersistenceError("create store directory", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		s.logger.Error("store.write.error", "path", s.path, "error", err)
		return common.NewPersistenceError("create temp file", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		cleanup()
		return common.NewPersistenceError("write temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return common.NewPersistenceError("sync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return common.NewPersistenceError("close temp file", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		s.logger.Error("store.write.error", "path", s.path, "error", err)
		return common.NewPersistenceError(fmt.Sprintf("replace %s", s.path), err)
	}
	return nil
}
