package llm

import (
	"context"

	"github.com/joseph-ayodele/fuel-tracker/internal/entity"
)

// ModelRequest is a single image-plus-instruction call to a vision model.
type ModelRequest struct {
	Image       []byte
	MediaType   string
	Instruction string
}

// ModelCaller sends one request to a vision model and returns its text reply.
// Implementations must not retry.
type ModelCaller interface {
	Call(ctx context.Context, req ModelRequest) (string, error)
}

// ModelCallerFunc adapts a function to ModelCaller.
type ModelCallerFunc func(ctx context.Context, req ModelRequest) (string, error)

func (f ModelCallerFunc) Call(ctx context.Context, req ModelRequest) (string, error) {
	return f(ctx, req)
}

// FieldExtractor turns a receipt image into extracted fields.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, image []byte) (entity.ReceiptFields, error)
}
