package events

import (
	"encoding/json"
	"time"
)

// EventData is the interface that all event data types must implement
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// SnapshotsRefreshedData contains data for SnapshotsRefreshed events
type SnapshotsRefreshedData struct {
	Keys       []string `json:"keys"`
	DurationMs int64    `json:"durationMs"`
}

// EventType returns the event type for SnapshotsRefreshedData
func (d *SnapshotsRefreshedData) EventType() EventType {
	return SnapshotsRefreshed
}

// RefreshFailedData contains data for RefreshFailed events.
// Refreshed lists the snapshots that did succeed.
type RefreshFailedData struct {
	Error     string   `json:"error"`
	Refreshed []string `json:"refreshed,omitempty"`
}

// EventType returns the event type for RefreshFailedData
func (d *RefreshFailedData) EventType() EventType {
	return RefreshFailed
}

// ArchiveCompletedData contains data for ArchiveCompleted events
type ArchiveCompletedData struct {
	Key       string `json:"key"`
	SizeBytes int64  `json:"sizeBytes"`
	Rotated   int    `json:"rotated"`
}

// EventType returns the event type for ArchiveCompletedData
func (d *ArchiveCompletedData) EventType() EventType {
	return ArchiveCompleted
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}

// Event is a published event
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Module    string    `json:"module"`
	Data      EventData `json:"data"`
}

// UnmarshalJSON decodes Data into the concrete type for the event type
func (e *Event) UnmarshalJSON(data []byte) error {
	type Alias Event
	aux := &struct {
		Data json.RawMessage `json:"data"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	if len(aux.Data) == 0 || string(aux.Data) == "null" {
		e.Data = nil
		return nil
	}

	var eventData EventData
	switch aux.Type {
	case SnapshotsRefreshed:
		eventData = &SnapshotsRefreshedData{}
	case RefreshFailed:
		eventData = &RefreshFailedData{}
	case ArchiveCompleted:
		eventData = &ArchiveCompletedData{}
	default:
		eventData = &ErrorEventData{}
	}

	if err := json.Unmarshal(aux.Data, eventData); err != nil {
		return err
	}
	e.Data = eventData
	return nil
}
