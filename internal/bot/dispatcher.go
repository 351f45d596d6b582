package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/fuel-tracker/internal/common"
	"github.com/joseph-ayodele/fuel-tracker/internal/entity"
	"github.com/joseph-ayodele/fuel-tracker/internal/report"
)

// Responder delivers replies to the chat an event came from.
type Responder interface {
	SendText(ctx context.Context, text string) error
	SendDocument(ctx context.Context, data []byte, filename, caption string) error
}

// ReceiptService is the core the dispatcher drives.
type ReceiptService interface {
	Ingest(ctx context.Context, image []byte) (*entity.Receipt, error)
	List(ctx context.Context) ([]*entity.Receipt, error)
	Report(ctx context.Context, year *int) (report.Report, error)
	Reset(ctx context.Context) error
}

// Dispatcher maps chat events onto receipt operations. Every handler
// recovers from panics so one failing event never stops the update loop.
type Dispatcher struct {
	svc    ReceiptService
	pdf    report.DocumentRenderer
	xlsx   report.DocumentRenderer
	logger *slog.Logger
}

func NewDispatcher(svc ReceiptService, pdf, xlsx report.DocumentRenderer, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{svc: svc, pdf: pdf, xlsx: xlsx, logger: logger}
}

// HandlePhoto extracts and stores the receipt in image.
func (d *Dispatcher) HandlePhoto(ctx context.Context, r Responder, image []byte) {
	d.run(ctx, r, "photo", func(ctx context.Context) error {
		d.send(ctx, r, analysingMessage)

		rec, err := d.svc.Ingest(ctx, image)
		if err != nil {
			return err
		}
		d.send(ctx, r, report.FormatReceipt(rec))
		return nil
	})
}

// HandleCommand runs a slash command. cmd is the command name without the
// leading slash; args is the rest of the message.
func (d *Dispatcher) HandleCommand(ctx context.Context, r Responder, cmd, args string) {
	cmd = strings.ToLower(strings.TrimSpace(cmd))
	d.run(ctx, r, "command."+cmd, func(ctx context.Context) error {
		switch cmd {
		case "start", "help":
			d.send(ctx, r, welcomeMessage)
			return nil
		case "total":
			return d.withYear(ctx, r, cmd, args, d.total)
		case "list", "liste":
			return d.list(ctx, r)
		case "pdf":
			return d.withYear(ctx, r, cmd, args, func(ctx context.Context, r Responder, year *int) error {
				return d.document(ctx, r, d.pdf, year)
			})
		case "export":
			return d.withYear(ctx, r, cmd, args, func(ctx context.Context, r Responder, year *int) error {
				return d.document(ctx, r, d.xlsx, year)
			})
		case "reset":
			if err := d.svc.Reset(ctx); err != nil {
				return err
			}
			d.send(ctx, r, resetDoneMessage)
			return nil
		default:
			d.send(ctx, r, unknownCommandMessage)
			return nil
		}
	})
}

// HandleText answers plain text that is neither a command nor a photo.
func (d *Dispatcher) HandleText(ctx context.Context, r Responder) {
	d.run(ctx, r, "text", func(ctx context.Context) error {
		d.send(ctx, r, unknownCommandMessage)
		return nil
	})
}

func (d *Dispatcher) withYear(ctx context.Context, r Responder, cmd, args string, fn func(context.Context, Responder, *int) error) error {
	year, err := common.ParseYear(args)
	if err != nil {
		d.logger.InfoContext(ctx, "bot.command.bad_year", "command", cmd, "args", args, "error", err)
		d.send(ctx, r, fmt.Sprintf(yearUsageFormat, cmd, cmd))
		return nil
	}
	return fn(ctx, r, year)
}

func (d *Dispatcher) total(ctx context.Context, r Responder, year *int) error {
	rep, err := d.svc.Report(ctx, year)
	if err != nil {
		return err
	}
	d.send(ctx, r, report.FormatSummary(rep))
	return nil
}

func (d *Dispatcher) list(ctx context.Context, r Responder) error {
	records, err := d.svc.List(ctx)
	if err != nil {
		return err
	}
	d.send(ctx, r, report.FormatList(records))
	return nil
}

func (d *Dispatcher) document(ctx context.Context, r Responder, renderer report.DocumentRenderer, year *int) error {
	rep, err := d.svc.Report(ctx, year)
	if err != nil {
		return err
	}
	data, err := renderer.Render(rep)
	if err != nil {
		return err
	}
	if err := r.SendDocument(ctx, data, renderer.Filename(year), report.Title(year)); err != nil {
		d.logger.ErrorContext(ctx, "bot.send_document.error", "error", err)
		return common.WrapError(err, "send document")
	}
	return nil
}

// run tags ctx with a request id, executes fn and turns failures and panics
// into a single user-facing reply.
func (d *Dispatcher) run(ctx context.Context, r Responder, event string, fn func(context.Context) error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.NewString()
		ctx = common.WithRequestID(ctx, rid)
	}
	logger := d.logger.With("req_id", rid, "event", event)
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			logger.ErrorContext(ctx, "bot.event.panic", "panic", p, "stack", string(debug.Stack()))
			d.send(ctx, r, genericFailureMessage)
		}
	}()

	err := fn(ctx)
	elapsed := time.Since(start).Milliseconds()
	if err == nil {
		logger.InfoContext(ctx, "bot.event.ok", "elapsed_ms", elapsed)
		return
	}

	var appErr *common.AppError
	code := "UNKNOWN"
	if errors.As(err, &appErr) {
		code = appErr.Code
	}
	logger.ErrorContext(ctx, "bot.event.error", "code", code, "error", err, "elapsed_ms", elapsed)

	switch {
	case common.IsExtraction(err):
		d.send(ctx, r, extractionFailedMessage)
	case common.IsPersistence(err):
		d.send(ctx, r, storageFailedMessage)
	default:
		d.send(ctx, r, genericFailureMessage)
	}
}

// send delivers text in chunks that fit a single chat message.
func (d *Dispatcher) send(ctx context.Context, r Responder, text string) {
	for _, part := range report.Chunk(text, report.MaxMessageLen) {
		if err := r.SendText(ctx, part); err != nil {
			d.logger.ErrorContext(ctx, "bot.send_text.error", "error", err)
			return
		}
	}
}
