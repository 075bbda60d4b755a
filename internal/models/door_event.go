package models

import "time"

// Event types written to the audit log.
const (
	EventCommand     = "COMMAND"
	EventStateChange = "STATE_CHANGE"
	EventRelayError  = "RELAY_ERROR"
	EventAutoClose   = "AUTO_CLOSE"
)

// DoorEvent is a single audit log entry.
type DoorEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // COMMAND | STATE_CHANGE | RELAY_ERROR | AUTO_CLOSE
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
