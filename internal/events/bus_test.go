package events

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishDeliversToInterestedSubscribers(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	all, cancelAll := bus.Subscribe(4)
	defer cancelAll()
	archives, cancelArchives := bus.Subscribe(4, ArchiveCompleted)
	defer cancelArchives()

	published := bus.Publish("scheduler", &SnapshotsRefreshedData{Keys: []string{"news"}})

	got := <-all
	assert.Equal(t, published, got)
	assert.Equal(t, SnapshotsRefreshed, got.Type)
	assert.Equal(t, "scheduler", got.Module)
	_, err := uuid.Parse(got.ID)
	assert.NoError(t, err)
	assert.False(t, got.Timestamp.IsZero())

	select {
	case e := <-archives:
		t.Fatalf("unexpected event %s", e.Type)
	default:
	}

	bus.Publish("archive", &ArchiveCompletedData{Key: "k"})
	assert.Equal(t, ArchiveCompleted, (<-archives).Type)
	assert.Equal(t, ArchiveCompleted, (<-all).Type)
}

func TestBus_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	_, cancel := bus.Subscribe(1)
	defer cancel()

	bus.Publish("test", &ErrorEventData{Error: "one"})
	bus.Publish("test", &ErrorEventData{Error: "two"})
	bus.Publish("test", &ErrorEventData{Error: "three"})

	assert.Equal(t, uint64(2), bus.Dropped())
}

func TestBus_CancelClosesChannelAndIsIdempotent(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	ch, cancel := bus.Subscribe(1)
	assert.Equal(t, 1, bus.Subscribers())

	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, bus.Subscribers())

	require.NotPanics(t, func() {
		bus.Publish("test", &ErrorEventData{Error: "after cancel"})
	})
}

func TestEvent_JSONRoundTripKeepsConcreteData(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	event := bus.Publish("scheduler", &RefreshFailedData{Error: "boom", Refreshed: []string{"news"}})

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded Event
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, event.ID, decoded.ID)
	assert.Equal(t, RefreshFailed, decoded.Type)

	failed, ok := decoded.Data.(*RefreshFailedData)
	require.True(t, ok)
	assert.Equal(t, "boom", failed.Error)
	assert.Equal(t, []string{"news"}, failed.Refreshed)
}

func TestParseEventTypes(t *testing.T) {
	assert.Equal(t,
		[]EventType{ArchiveCompleted, RefreshFailed},
		ParseEventTypes([]string{"ARCHIVE_COMPLETED", "bogus", "REFRESH_FAILED"}),
	)
	assert.Empty(t, ParseEventTypes(nil))
}
