package amqp

import (
	"testing"
	"time"
)

func TestNewRecordChangedMessage(t *testing.T) {
	msg := NewRecordChangedMessage("financial-transactions", "abc-123")

	if msg.Collection != "financial-transactions" {
		t.Errorf("Collection = %v, want financial-transactions", msg.Collection)
	}
	if msg.RecordID != "abc-123" {
		t.Errorf("RecordID = %v, want abc-123", msg.RecordID)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestRecordChangedMessage_JSON(t *testing.T) {
	timestamp := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	msg := &RecordChangedMessage{
		Collection: "financial-goals",
		RecordID:   "g-1",
		Timestamp:  timestamp,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := RecordChangedMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("RecordChangedMessageFromJSON() error = %v", err)
	}

	if parsed.Collection != msg.Collection {
		t.Errorf("Parsed Collection = %v, want %v", parsed.Collection, msg.Collection)
	}
	if parsed.RecordID != msg.RecordID {
		t.Errorf("Parsed RecordID = %v, want %v", parsed.RecordID, msg.RecordID)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestRecordChangedMessage_InvalidJSON(t *testing.T) {
	if _, err := RecordChangedMessageFromJSON([]byte(`{"collection": 5`)); err == nil {
		t.Error("RecordChangedMessageFromJSON() should fail with invalid JSON")
	}
}
