// Package events provides the in-process event bus used to push cache and job activity to clients.
package events

// EventType represents different event types
type EventType string

const (
	SnapshotsRefreshed EventType = "SNAPSHOTS_REFRESHED"
	RefreshFailed      EventType = "REFRESH_FAILED"
	ArchiveCompleted   EventType = "ARCHIVE_COMPLETED"
	ErrorOccurred      EventType = "ERROR_OCCURRED"
)

// AllEventTypes lists every event type the bus carries
var AllEventTypes = []EventType{
	SnapshotsRefreshed,
	RefreshFailed,
	ArchiveCompleted,
	ErrorOccurred,
}

// ParseEventTypes parses a comma separated list of event types.
// Unknown names are ignored; an empty result means "all types".
func ParseEventTypes(names []string) []EventType {
	out := make([]EventType, 0, len(names))
	for _, name := range names {
		for _, t := range AllEventTypes {
			if string(t) == name {
				out = append(out, t)
				break
			}
		}
	}
	return out
}
