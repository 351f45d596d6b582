package events

import (
	"encoding/json"
	"time"

	"github.com/joseph-ayodele/fuel-tracker/internal/entity"
)

const (
	TypeReceiptStored = "receipt.stored"
	TypeReset         = "receipts.reset"
)

// Message is the JSON body of every published event.
type Message struct {
	Type       string          `json:"type"`
	RequestID  string          `json:"request_id,omitempty"`
	ChatID     int64           `json:"chat_id,omitempty"`
	Receipt    *entity.Receipt `json:"receipt,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func NewReceiptStoredMessage(r *entity.Receipt, at time.Time) *Message {
	return &Message{Type: TypeReceiptStored, Receipt: r, OccurredAt: at.UTC()}
}

func NewResetMessage(at time.Time) *Message {
	return &Message{Type: TypeReset, OccurredAt: at.UTC()}
}

func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MessageFromJSON(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
