package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"kakeibo/internal/core"
)

// TransactionSettledMessage announces that a card transaction has been debited
// from its funding account. Consumers look the full record up by id.
type TransactionSettledMessage struct {
	TransactionID   string               `json:"transactionId"`
	PaymentMethodID string               `json:"paymentMethodId"`
	Type            core.TransactionType `json:"type"`
	Amount          core.Yen             `json:"amount"`
	PaymentDate     core.Date            `json:"paymentDate"`
	SettledAt       time.Time            `json:"settledAt"`
	Timestamp       time.Time            `json:"timestamp"`
}

// NewTransactionSettledMessage builds the event for a settled transaction.
func NewTransactionSettledMessage(tx core.Transaction, paymentDate core.Date) (*TransactionSettledMessage, error) {
	if tx.SettledAt == nil {
		return nil, fmt.Errorf("transaction %s is not settled", tx.ID)
	}
	return &TransactionSettledMessage{
		TransactionID:   tx.ID,
		PaymentMethodID: tx.PaymentMethodID,
		Type:            tx.Type,
		Amount:          tx.Amount,
		PaymentDate:     paymentDate,
		SettledAt:       *tx.SettledAt,
		Timestamp:       time.Now(),
	}, nil
}

// ToJSON converts the message to JSON bytes
func (m *TransactionSettledMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionSettledMessageFromJSON decodes a message body.
func TransactionSettledMessageFromJSON(data []byte) (*TransactionSettledMessage, error) {
	var msg TransactionSettledMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
