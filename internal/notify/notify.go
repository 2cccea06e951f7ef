// Package notify delivers change events to interested calendar sessions.
// The engine publishes after every committed mutation; UI processes
// subscribe instead of refetching on a timer.
package notify

import (
	"context"
	"sync"
)

// Change identifies the day whose slot or booking set changed.
type Change struct {
	Entity         string `json:"entity"` // "slots" or "bookings"
	ProfessionalID string `json:"professional_id"`
	Date           string `json:"date"`
	// Origin identifies the publishing process on cross-process transports
	// so a subscriber can drop its own messages. Empty for local events.
	Origin string `json:"origin,omitempty"`
}

// Conflict carries the structured detail of a rejected mutation so the UI
// can explain which entities blocked it.
type Conflict struct {
	Operation           string   `json:"operation"`
	ProfessionalID      string   `json:"professional_id"`
	Date                string   `json:"date"`
	CollidingSlotIDs    []string `json:"colliding_slot_ids,omitempty"`
	CollidingBookingIDs []string `json:"colliding_booking_ids,omitempty"`
	Origin              string   `json:"origin,omitempty"`
}

// Notifier is the push interface consumed by the scheduling services.
type Notifier interface {
	SlotsChanged(ctx context.Context, professionalID, date string)
	BookingsChanged(ctx context.Context, professionalID, date string)
	ConflictRejected(ctx context.Context, c Conflict)
}

// Hub is an in-process Notifier that fans events out to registered
// callbacks. It is the default backend when no Redis address is
// configured, and the local delivery path in front of the Redis one.
type Hub struct {
	mu         sync.RWMutex
	onChange   []func(Change)
	onConflict []func(Conflict)
}

func NewHub() *Hub {
	return &Hub{}
}

// OnChange registers a callback for slot/booking change events.
func (h *Hub) OnChange(fn func(Change)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = append(h.onChange, fn)
}

// OnConflict registers a callback for conflict rejections.
func (h *Hub) OnConflict(fn func(Conflict)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onConflict = append(h.onConflict, fn)
}

func (h *Hub) publish(c Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onChange {
		fn(c)
	}
}

// SlotsChanged implements Notifier.
func (h *Hub) SlotsChanged(_ context.Context, professionalID, date string) {
	h.publish(Change{Entity: "slots", ProfessionalID: professionalID, Date: date})
}

// BookingsChanged implements Notifier.
func (h *Hub) BookingsChanged(_ context.Context, professionalID, date string) {
	h.publish(Change{Entity: "bookings", ProfessionalID: professionalID, Date: date})
}

// ConflictRejected implements Notifier.
func (h *Hub) ConflictRejected(_ context.Context, c Conflict) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onConflict {
		fn(c)
	}
}
