package repository

import (
	"context"
	"time"

	"github.com/joseph-ayodele/fuel-tracker/internal/entity"
)

// ReceiptRepository is the record store. Every backend keeps records in append
// order and assigns id = count+1 at append time.
type ReceiptRepository interface {
	// Load returns every record in append order, empty when nothing is stored.
	Load(ctx context.Context) ([]*entity.Receipt, error)
	// Append stores the fields as a new record and returns it.
	Append(ctx context.Context, fields entity.ReceiptFields) (*entity.Receipt, error)
	// Reset removes every record.
	Reset(ctx context.Context) error
}

// Clock returns the current instant; swapped in tests.
type Clock func() time.Time
