package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/joseph-ayodele/fuel-tracker/internal/bot"
)

const (
	sendAttempts = 3
	sendDelay    = 500 * time.Millisecond
)

// sender is the part of *tgbotapi.BotAPI the responder needs.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// chatResponder replies to a single chat. Transient send failures are retried.
type chatResponder struct {
	api    sender
	chatID int64
	delay  time.Duration
	logger *slog.Logger
}

var _ bot.Responder = (*chatResponder)(nil)

func newChatResponder(api sender, chatID int64, logger *slog.Logger) *chatResponder {
	return &chatResponder{api: api, chatID: chatID, delay: sendDelay, logger: logger}
}

func (c *chatResponder) SendText(ctx context.Context, text string) error {
	return c.send(ctx, "text", tgbotapi.NewMessage(c.chatID, text))
}

func (c *chatResponder) SendDocument(ctx context.Context, data []byte, filename, caption string) error {
	doc := tgbotapi.NewDocument(c.chatID, tgbotapi.FileBytes{Name: filename, Bytes: data})
	doc.Caption = caption
	return c.send(ctx, "document", doc)
}

func (c *chatResponder) send(ctx context.Context, kind string, msg tgbotapi.Chattable) error {
	err := retry.Do(
		func() error {
			_, err := c.api.Send(msg)
			return err
		},
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			c.logger.WarnContext(ctx, "telegram.send.retry", "kind", kind, "attempt", n+1, "error", err)
		}),
		retry.Attempts(sendAttempts),
		retry.Delay(c.delay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err != nil {
		return fmt.Errorf("send %s to chat %d: %w", kind, c.chatID, err)
	}
	return nil
}

// retryable reports whether a Bot API failure may succeed on a second try.
// Client errors other than rate limiting are final.
func retryable(err error) bool {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests {
			return true
		}
		return apiErr.Code >= http.StatusInternalServerError
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
