package llm

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/joseph-ayodele/fuel-tracker/constants"
	"github.com/joseph-ayodele/fuel-tracker/internal/common"
	"github.com/joseph-ayodele/fuel-tracker/internal/entity"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// TotalMismatchTolerance is the gap between liters*price_per_liter and
// total_price above which a warning is logged.
const TotalMismatchTolerance = 0.05

// Extractor implements FieldExtractor on top of a ModelCaller.
type Extractor struct {
	caller      ModelCaller
	schema      *jsonschema.Schema
	instruction string
	logger      *slog.Logger
}

// NewExtractor builds an extractor using the standard receipt instruction.
func NewExtractor(caller ModelCaller, logger *slog.Logger) (*Extractor, error) {
	if caller == nil {
		return nil, errors.New("model caller is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	schema, err := CompileSchema(BuildReceiptJSONSchema())
	if err != nil {
		return nil, err
	}
	return &Extractor{
		caller:      caller,
		schema:      schema,
		instruction: ReceiptInstruction,
		logger:      logger,
	}, nil
}

type replyFields struct {
	Date          string  `json:"date"`
	Liters        float64 `json:"liters"`
	PricePerLiter float64 `json:"price_per_liter"`
	VAT           float64 `json:"vat"`
	TotalPrice    float64 `json:"total_price"`
	FuelType      string  `json:"fuel_type"`
}

// ExtractFields sends the image to the model once and converts the reply into
// receipt fields. Every failure is an EXTRACTION_ERROR AppError.
func (e *Extractor) ExtractFields(ctx context.Context, image []byte) (entity.ReceiptFields, error) {
	rid := common.RequestIDFromContext(ctx)
	start := time.Now()

	if len(image) == 0 {
		return entity.ReceiptFields{}, common.NewExtractionError("empty image", "", nil)
	}

	mediaType := DetectMediaType(image)
	e.logger.Info("llm.extract.start",
		"req_id", rid,
		"image_bytes", len(image),
		"media_type", mediaType,
	)

	reply, err := e.caller.Call(ctx, ModelRequest{
		Image:       image,
		MediaType:   mediaType,
		Instruction: e.instruction,
	})
	if err != nil {
		e.logger.Error("llm.extract.call_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.ReceiptFields{}, common.NewExtractionError("model call failed", "", err)
	}

	fields, err := e.parseReply(reply)
	if err != nil {
		e.logger.Error("llm.extract.parse_error",
			"req_id", rid, "error", err, "content", reply,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.ReceiptFields{}, common.NewExtractionError("unusable model reply", reply, err)
	}

	e.softChecks(rid, fields)

	e.logger.Info("llm.extract.ok",
		"req_id", rid,
		"date", fields.Date.String(),
		"liters", fields.Liters,
		"total_price", fields.TotalPrice,
		"fuel_type", fields.FuelType,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return fields, nil
}

// parseReply runs the normalize, sanitize, validate and decode steps on a raw
// model reply.
func (e *Extractor) parseReply(reply string) (entity.ReceiptFields, error) {
	normalized := NormalizeReply(reply)
	if normalized == "" {
		return entity.ReceiptFields{}, errors.New("empty reply")
	}

	doc, _, err := SanitizeReply(normalized, e.logger)
	if err != nil {
		return entity.ReceiptFields{}, err
	}

	if err := validateDoc(e.schema, doc); err != nil {
		return entity.ReceiptFields{}, err
	}

	var rf replyFields
	if err := json.Unmarshal(doc, &rf); err != nil {
		return entity.ReceiptFields{}, err
	}

	date, err := entity.ParseDate(rf.Date)
	if err != nil {
		return entity.ReceiptFields{}, err
	}

	return entity.ReceiptFields{
		Date:          date,
		Liters:        rf.Liters,
		PricePerLiter: rf.PricePerLiter,
		VAT:           rf.VAT,
		TotalPrice:    rf.TotalPrice,
		FuelType:      rf.FuelType,
	}, nil
}

func (e *Extractor) softChecks(rid string, f entity.ReceiptFields) {
	if f.FuelType != string(constants.FuelUnknown) {
		if _, ok := constants.Canonicalize(f.FuelType); !ok {
			e.logger.Warn("llm.extract.unknown_fuel_type", "req_id", rid, "fuel_type", f.FuelType)
		}
	}
	if f.Liters > 0 && f.PricePerLiter > 0 && f.TotalPrice > 0 {
		expected := f.Liters * f.PricePerLiter
		if math.Abs(expected-f.TotalPrice) > TotalMismatchTolerance {
			e.logger.Warn("llm.extract.total_mismatch",
				"req_id", rid,
				"expected", math.Round(expected*100)/100,
				"total_price", f.TotalPrice,
			)
		}
	}
}
