package notify

import (
	"context"
	"testing"
)

func TestHubFanout(t *testing.T) {
	hub := NewHub()

	var changes []Change
	hub.OnChange(func(c Change) { changes = append(changes, c) })

	var conflicts []Conflict
	hub.OnConflict(func(c Conflict) { conflicts = append(conflicts, c) })

	ctx := context.Background()
	hub.SlotsChanged(ctx, "prof-1", "2024-01-10")
	hub.BookingsChanged(ctx, "prof-1", "2024-01-10")
	hub.ConflictRejected(ctx, Conflict{Operation: "move_slot", CollidingSlotIDs: []string{"s2"}})

	if len(changes) != 2 {
		t.Fatalf("expected 2 change events, got %d", len(changes))
	}
	if changes[0].Entity != "slots" || changes[1].Entity != "bookings" {
		t.Errorf("unexpected entities: %s, %s", changes[0].Entity, changes[1].Entity)
	}
	if len(conflicts) != 1 || conflicts[0].CollidingSlotIDs[0] != "s2" {
		t.Fatalf("conflict not delivered: %+v", conflicts)
	}
}
