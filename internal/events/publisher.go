package events

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/fuel-tracker/internal/common"
	"github.com/joseph-ayodele/fuel-tracker/internal/entity"
)

// Publisher announces store changes to interested consumers. Implementations
// log failures and never return them to the caller.
type Publisher interface {
	PublishReceiptStored(ctx context.Context, r *entity.Receipt)
	PublishReset(ctx context.Context)
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) PublishReceiptStored(context.Context, *entity.Receipt) {}
func (Nop) PublishReset(context.Context)                          {}
func (Nop) Close() error                                          { return nil }

// New returns an AMQP publisher when cfg.AMQPURL is set, otherwise Nop.
func New(cfg common.EventsConfig, logger *slog.Logger) (Publisher, error) {
	if cfg.AMQPURL == "" {
		return Nop{}, nil
	}
	return Dial(cfg.AMQPURL, cfg.Exchange, cfg.RoutingKey, logger)
}
