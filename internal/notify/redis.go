package notify

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	changesChannel   = "agenda.changes"
	conflictsChannel = "agenda.conflicts"
)

// RedisNotifier publishes change events to Redis channels so other staff
// sessions (separate processes) see mutations without polling. Events are
// also delivered to the local hub, so single-process deployments behave
// identically.
type RedisNotifier struct {
	client *redis.Client
	hub    *Hub
	logger *zap.Logger
	// instanceID marks this process's own publications; Listen drops them
	// because the hub already delivered the event locally.
	instanceID string
}

func NewRedisNotifier(addr string, hub *Hub, logger *zap.Logger) *RedisNotifier {
	client := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisNotifier{
		client:     client,
		hub:        hub,
		logger:     logger,
		instanceID: uuid.NewString(),
	}
}

// SlotsChanged implements Notifier.
func (n *RedisNotifier) SlotsChanged(ctx context.Context, professionalID, date string) {
	n.hub.SlotsChanged(ctx, professionalID, date)
	n.publish(ctx, changesChannel, Change{
		Entity:         "slots",
		ProfessionalID: professionalID,
		Date:           date,
		Origin:         n.instanceID,
	})
}

// BookingsChanged implements Notifier.
func (n *RedisNotifier) BookingsChanged(ctx context.Context, professionalID, date string) {
	n.hub.BookingsChanged(ctx, professionalID, date)
	n.publish(ctx, changesChannel, Change{
		Entity:         "bookings",
		ProfessionalID: professionalID,
		Date:           date,
		Origin:         n.instanceID,
	})
}

// ConflictRejected implements Notifier.
func (n *RedisNotifier) ConflictRejected(ctx context.Context, c Conflict) {
	n.hub.ConflictRejected(ctx, c)
	c.Origin = n.instanceID
	n.publish(ctx, conflictsChannel, c)
}

func (n *RedisNotifier) publish(ctx context.Context, channel string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		n.logger.Error("marshal notify payload", zap.Error(err))
		return
	}
	// Notification delivery is best effort; a failed publish never blocks
	// or rolls back the mutation that triggered it.
	if err := n.client.Publish(ctx, channel, data).Err(); err != nil {
		n.logger.Warn("publish notify event",
			zap.String("channel", channel),
			zap.Error(err),
		)
	}
}

// Listen subscribes to the change channels and feeds remote events into
// the local hub until ctx is cancelled. Run it in its own goroutine.
func (n *RedisNotifier) Listen(ctx context.Context) {
	sub := n.client.Subscribe(ctx, changesChannel, conflictsChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			n.handleMessage(ctx, msg.Channel, msg.Payload)
		}
	}
}

// handleMessage applies one received event to the local hub. Messages the
// process published itself are dropped; the hub saw them at publish time.
func (n *RedisNotifier) handleMessage(ctx context.Context, channel, payload string) {
	switch channel {
	case changesChannel:
		var c Change
		if err := json.Unmarshal([]byte(payload), &c); err != nil {
			n.logger.Warn("decode change event", zap.Error(err))
			return
		}
		if c.Origin == n.instanceID {
			return
		}
		n.hub.publish(c)
	case conflictsChannel:
		var c Conflict
		if err := json.Unmarshal([]byte(payload), &c); err != nil {
			n.logger.Warn("decode conflict event", zap.Error(err))
			return
		}
		if c.Origin == n.instanceID {
			return
		}
		n.hub.ConflictRejected(ctx, c)
	}
}

// Close releases the Redis connection.
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
