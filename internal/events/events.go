package events

import "context"

// Streams
const (
	StreamLedger = "events:ledger"
)

// Event types
const (
	EventLedgerOutcome      = "ledger_outcome"
	EventMissionCompleted   = "mission_completed"
	EventMissionUnlocked    = "mission_unlocked"
	EventInstallmentDue     = "installment_due"
	EventInstallmentOverdue = "installment_overdue"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// UserID returns the payload's user_id, empty for broadcast events.
func (e Event) UserID() string {
	id, _ := e.Payload["user_id"].(string)
	return id
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
