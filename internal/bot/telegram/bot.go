package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/fuel-tracker/internal/bot"
	"github.com/joseph-ayodele/fuel-tracker/internal/common"
)

// maxDownloadBytes matches the Bot API file download limit.
const maxDownloadBytes = 20 << 20

// Handler receives decoded chat events.
type Handler interface {
	HandlePhoto(ctx context.Context, r bot.Responder, image []byte)
	HandleCommand(ctx context.Context, r bot.Responder, cmd, args string)
	HandleText(ctx context.Context, r bot.Responder)
}

// Bot long-polls the Bot API and feeds updates to a Handler one at a time.
type Bot struct {
	api         *tgbotapi.BotAPI
	handler     Handler
	http        *http.Client
	pollTimeout int
	logger      *slog.Logger
}

func New(cfg common.TelegramConfig, handler Handler, logger *slog.Logger) (*Bot, error) {
	if logger == nil {
		logger = slog.Default()
	}
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	api.Debug = cfg.Debug

	logger.Info("telegram.connected", "username", api.Self.UserName)
	return &Bot{
		api:         api,
		handler:     handler,
		http:        &http.Client{Timeout: 60 * time.Second},
		pollTimeout: cfg.PollTimeout,
		logger:      logger,
	}, nil
}

// Run consumes updates until ctx is cancelled. Updates are handled
// sequentially, so each event completes before the next one starts.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("telegram.polling", "timeout_s", b.pollTimeout)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("telegram.stopped", "reason", ctx.Err())
			return nil
		case upd, ok := <-updates:
			if !ok {
				return fmt.Errorf("telegram update channel closed")
			}
			b.handle(ctx, upd)
		}
	}
}

func (b *Bot) handle(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.Chat == nil {
		return
	}

	ctx = common.WithRequestID(ctx, uuid.NewString())
	ctx = common.WithChatID(ctx, msg.Chat.ID)
	r := newChatResponder(b.api, msg.Chat.ID, b.logger)

	route(ctx, b.handler, r, msg, func(fileID string) ([]byte, error) {
		return b.download(ctx, fileID)
	}, b.logger)
}

// route decides which handler method an inbound message maps to.
func route(ctx context.Context, h Handler, r bot.Responder, msg *tgbotapi.Message, fetch func(fileID string) ([]byte, error), logger *slog.Logger) {
	switch {
	case msg.IsCommand():
		h.HandleCommand(ctx, r, msg.Command(), msg.CommandArguments())
	case len(msg.Photo) > 0 || isImageDocument(msg.Document):
		fileID := imageFileID(msg)
		image, err := fetch(fileID)
		if err != nil {
			logger.ErrorContext(ctx, "telegram.download.error",
				"req_id", common.RequestIDFromContext(ctx),
				"file_id", fileID,
				"error", err,
			)
			_ = r.SendText(ctx, "⚠️ I could not download this photo. Please send it again.")
			return
		}
		h.HandlePhoto(ctx, r, image)
	case strings.TrimSpace(msg.Text) != "":
		h.HandleText(ctx, r)
	}
}

// imageFileID picks the largest photo size, or the document itself.
func imageFileID(msg *tgbotapi.Message) string {
	if len(msg.Photo) == 0 {
		return msg.Document.FileID
	}
	best := msg.Photo[0]
	for _, p := range msg.Photo[1:] {
		if p.Width*p.Height > best.Width*best.Height {
			best = p
		}
	}
	return best.FileID
}

func isImageDocument(doc *tgbotapi.Document) bool {
	return doc != nil && strings.HasPrefix(doc.MimeType, "image/")
}

func (b *Bot) download(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(data) > maxDownloadBytes {
		return nil, fmt.Errorf("file exceeds %d bytes", maxDownloadBytes)
	}
	return data, nil
}
