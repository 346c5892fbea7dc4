package amqp

import (
	"encoding/json"
	"time"
)

// InvoiceUpsertMessage announces that an invoice entered the ledger. It is
// deliberately lightweight: the worker re-reads the ledger from storage, so
// only the reference and client id travel over the wire.
type InvoiceUpsertMessage struct {
	Ref       string    `json:"ref"`
	ClientID  string    `json:"clientId"`
	Timestamp time.Time `json:"timestamp"`
}

// NewInvoiceUpsertMessage creates a new upsert message.
func NewInvoiceUpsertMessage(ref, clientID string) *InvoiceUpsertMessage {
	return &InvoiceUpsertMessage{
		Ref:       ref,
		ClientID:  clientID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *InvoiceUpsertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// InvoiceUpsertMessageFromJSON creates a message from JSON bytes.
func InvoiceUpsertMessageFromJSON(data []byte) (*InvoiceUpsertMessage, error) {
	var msg InvoiceUpsertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
