package events

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/joseph-ayodele/fuel-tracker/internal/common"
	"github.com/joseph-ayodele/fuel-tracker/internal/entity"
)

func TestReceiptStoredMessage_JSON(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	r := &entity.Receipt{
		ID:            7,
		Date:          entity.NewDate(2025, time.February, 28),
		Liters:        42.5,
		PricePerLiter: 1.799,
		VAT:           12.74,
		TotalPrice:    76.46,
		FuelType:      "SP95-E10",
		Timestamp:     entity.Timestamp{Time: at},
	}
	msg := NewReceiptStoredMessage(r, at)
	msg.ChatID = 99

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	for _, want := range []string{`"type":"receipt.stored"`, `"date":"2025-02-28"`, `"chat_id":99`} {
		if !strings.Contains(string(body), want) {
			t.Errorf("body %s missing %s", body, want)
		}
	}

	got, err := MessageFromJSON(body)
	if err != nil {
		t.Fatalf("MessageFromJSON: %v", err)
	}
	if got.Receipt == nil || got.Receipt.ID != 7 || got.Receipt.FuelType != "SP95-E10" {
		t.Errorf("receipt = %+v", got.Receipt)
	}
	if !got.OccurredAt.Equal(at) {
		t.Errorf("occurred_at = %v", got.OccurredAt)
	}
}

func TestResetMessage_OmitsReceipt(t *testing.T) {
	body, err := NewResetMessage(time.Now()).ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if strings.Contains(string(body), `"receipt":`) {
		t.Errorf("reset body should not carry a receipt: %s", body)
	}
	if !strings.Contains(string(body), `"type":"receipts.reset"`) {
		t.Errorf("body = %s", body)
	}
}

func TestNew_WithoutURLIsNop(t *testing.T) {
	p, err := New(common.EventsConfig{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := p.(Nop); !ok {
		t.Fatalf("publisher = %T, want Nop", p)
	}
	p.PublishReceiptStored(context.Background(), &entity.Receipt{ID: 1})
	p.PublishReset(context.Background())
	if err := p.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
