package events

import (
	"encoding/json"
	"time"
)

// Record kinds carried in change messages.
const (
	KindTransaction        = "transaction"
	KindCategory           = "category"
	KindCard               = "card"
	KindRecurring          = "recurring"
	KindSavingsGoal        = "savings_goal"
	KindSavingsTransaction = "savings_transaction"
)

// Operations carried in change messages.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// RecordChangeMessage is a lightweight notification that a record changed.
// It carries only identifiers, the worker fetches the full record from the
// store before exporting it.
type RecordChangeMessage struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordChangeMessage(kind, id, ownerID, op string) *RecordChangeMessage {
	return &RecordChangeMessage{
		Kind:      kind,
		ID:        id,
		OwnerID:   ownerID,
		Op:        op,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecordChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates a message from JSON bytes
func RecordChangeMessageFromJSON(data []byte) (*RecordChangeMessage, error) {
	var msg RecordChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
