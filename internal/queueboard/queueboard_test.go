package queueboard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turnero/internal/events"
	"turnero/internal/model"
)

func newTestPublisher(t *testing.T) (*Publisher, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := zerolog.Nop()
	return New(client, time.Minute, &logger), mr
}

func TestPublishOnQueueChange(t *testing.T) {
	pub, _ := newTestPublisher(t)
	bus := events.NewBus()
	pub.Attach(bus)

	bus.Publish(events.Event{
		Type: events.TypeQueueChanged,
		Payload: events.QueueChange{
			Reason: "join",
			Waiting: []model.QueueEntry{
				{ClientID: "c1", Position: 1, EstimatedWaitMinutes: 0},
				{ClientID: "c2", Position: 2, EstimatedWaitMinutes: 45},
			},
		},
		CreatedAt: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
	})

	snap, err := pub.Snapshot(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "join", snap.Reason)
	require.Len(t, snap.Entries, 2)
	assert.Equal(t, "c1", snap.Entries[0].ClientID)
	assert.Equal(t, 2, snap.Entries[1].Position)
	assert.Equal(t, 45, snap.Entries[1].EstimatedWaitMinutes)
}

func TestSnapshotMissing(t *testing.T) {
	pub, _ := newTestPublisher(t)

	snap, err := pub.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSnapshotExpires(t *testing.T) {
	pub, mr := newTestPublisher(t)
	bus := events.NewBus()
	pub.Attach(bus)

	bus.Publish(events.Event{
		Type:    events.TypeQueueChanged,
		Payload: events.QueueChange{Reason: "join"},
	})

	mr.FastForward(2 * time.Minute)

	snap, err := pub.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestEmptyQueuePublishesEmptyBoard(t *testing.T) {
	pub, _ := newTestPublisher(t)
	bus := events.NewBus()
	pub.Attach(bus)

	bus.Publish(events.Event{
		Type:    events.TypeQueueChanged,
		Payload: events.QueueChange{Reason: "finish"},
	})

	snap, err := pub.Snapshot(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "finish", snap.Reason)
	assert.Empty(t, snap.Entries)
}
