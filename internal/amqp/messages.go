package amqp

import (
	"encoding/json"
	"time"
)

// RecordChangedMessage announces that a persisted collection changed.
// It carries only the collection key and record id; consumers fetch the
// current state from the store themselves.
type RecordChangedMessage struct {
	Collection string    `json:"collection"`
	RecordID   string    `json:"record_id"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewRecordChangedMessage(collection, recordID string) *RecordChangedMessage {
	return &RecordChangedMessage{
		Collection: collection,
		RecordID:   recordID,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *RecordChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangedMessageFromJSON creates a message from JSON bytes.
func RecordChangedMessageFromJSON(data []byte) (*RecordChangedMessage, error) {
	var msg RecordChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
