package receipts

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/fuel-tracker/internal/common"
	"github.com/joseph-ayodele/fuel-tracker/internal/entity"
	"github.com/joseph-ayodele/fuel-tracker/internal/events"
	"github.com/joseph-ayodele/fuel-tracker/internal/llm"
	"github.com/joseph-ayodele/fuel-tracker/internal/report"
	"github.com/joseph-ayodele/fuel-tracker/internal/repository"
)

// Service ties extraction, storage and reporting together for one chat.
type Service struct {
	extractor llm.FieldExtractor
	repo      repository.ReceiptRepository
	publisher events.Publisher
	logger    *slog.Logger
}

// NewService creates a new receipt service. A nil publisher disables events.
func NewService(extractor llm.FieldExtractor, repo repository.ReceiptRepository, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		extractor: extractor,
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Ingest extracts fields from a receipt photo and stores them. Nothing is
// written when extraction fails.
func (s *Service) Ingest(ctx context.Context, image []byte) (*entity.Receipt, error) {
	start := time.Now()

	fields, err := s.extractor.ExtractFields(ctx, image)
	if err != nil {
		if !common.IsExtraction(err) {
			err = common.NewExtractionError("extract fields", "", err)
		}
		return nil, err
	}

	rec, err := s.repo.Append(ctx, fields)
	if err != nil {
		if !common.IsPersistence(err) {
			err = common.NewPersistenceError("append receipt", err)
		}
		s.logger.ErrorContext(ctx, "receipts.ingest.store_error", "error", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "receipts.ingest.ok",
		"id", rec.ID,
		"date", rec.Date.String(),
		"fuel_type", rec.FuelType,
		"total_price", rec.TotalPrice,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	s.publisher.PublishReceiptStored(ctx, rec)
	return rec, nil
}

// List returns every stored receipt, newest first.
func (s *Service) List(ctx context.Context) ([]*entity.Receipt, error) {
	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return report.SortByDateDesc(records), nil
}

// Report aggregates stored receipts by month, optionally restricted to year.
func (s *Service) Report(ctx context.Context, year *int) (report.Report, error) {
	records, err := s.load(ctx)
	if err != nil {
		return report.Report{}, err
	}
	rep := report.Aggregate(records, year)
	s.logger.DebugContext(ctx, "receipts.report.ok",
		"records", len(records),
		"months", len(rep.Months),
		"count", rep.Totals.Count,
	)
	return rep, nil
}

// Reset deletes every stored receipt.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.repo.Reset(ctx); err != nil {
		if !common.IsPersistence(err) {
			err = common.NewPersistenceError("reset receipts", err)
		}
		s.logger.ErrorContext(ctx, "receipts.reset.error", "error", err)
		return err
	}
	s.logger.InfoContext(ctx, "receipts.reset.ok")
	s.publisher.PublishReset(ctx)
	return nil
}

func (s *Service) load(ctx context.Context) ([]*entity.Receipt, error) {
	records, err := s.repo.Load(ctx)
	if err != nil {
		if !common.IsPersistence(err) {
			err = common.NewPersistenceError("load receipts", err)
		}
		s.logger.ErrorContext(ctx, "receipts.load.error", "error", err)
		return nil, err
	}
	return records, nil
}
