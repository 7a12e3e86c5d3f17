// Package queueboard mirrors the walk-in queue into Redis so waiting-room
// displays can poll it without touching the database.
package queueboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"turnero/internal/events"
)

const (
	snapshotKey = "queueboard:waiting"
	writeWindow = 2 * time.Second
)

// BoardEntry is one row on the waiting-room display.
type BoardEntry struct {
	ClientID             string `json:"client_id"`
	Position             int    `json:"position"`
	EstimatedWaitMinutes int    `json:"estimated_wait_minutes"`
}

// Snapshot is the queue state as published to Redis.
type Snapshot struct {
	UpdatedAt time.Time    `json:"updated_at"`
	Reason    string       `json:"reason"`
	Entries   []BoardEntry `json:"entries"`
}

// Publisher writes queue snapshots to Redis on every queue change.
type Publisher struct {
	client *redis.Client
	ttl    time.Duration
	logger *zerolog.Logger
}

// New creates a Publisher. Snapshots expire after ttl so a dead publisher
// leaves a stale board rather than a wrong one.
func New(client *redis.Client, ttl time.Duration, logger *zerolog.Logger) *Publisher {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Publisher{client: client, ttl: ttl, logger: logger}
}

// Attach subscribes the publisher to queue change events.
func (p *Publisher) Attach(bus *events.Bus) {
	bus.Subscribe(events.TypeQueueChanged, func(e events.Event) {
		change, ok := e.Payload.(events.QueueChange)
		if !ok {
			return
		}
		if err := p.publish(change, e.CreatedAt); err != nil {
			p.logger.Error().Err(err).Msg("queue board publish")
		}
	})
}

func (p *Publisher) publish(change events.QueueChange, at time.Time) error {
	snap := Snapshot{
		UpdatedAt: at,
		Reason:    change.Reason,
		Entries:   make([]BoardEntry, 0, len(change.Waiting)),
	}
	for _, entry := range change.Waiting {
		snap.Entries = append(snap.Entries, BoardEntry{
			ClientID:             entry.ClientID,
			Position:             entry.Position,
			EstimatedWaitMinutes: entry.EstimatedWaitMinutes,
		})
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeWindow)
	defer cancel()
	if err := p.client.Set(ctx, snapshotKey, data, p.ttl).Err(); err != nil {
		return fmt.Errorf("set snapshot: %w", err)
	}
	return nil
}

// Snapshot reads the current board state. Returns nil when no snapshot has
// been published or the last one expired.
func (p *Publisher) Snapshot(ctx context.Context) (*Snapshot, error) {
	data, err := p.client.Get(ctx, snapshotKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}
