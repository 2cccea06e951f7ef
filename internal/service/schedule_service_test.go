package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/agendamed/agenda/internal/model"
	"github.com/agendamed/agenda/internal/notify"
)

func newTestEngine() (*ScheduleService, *mockSlotRepo, *mockBookingRepo, *notify.Hub) {
	slots := newMockSlotRepo()
	bookings := newMockBookingRepo()
	hub := notify.NewHub()
	svc := NewScheduleService(slots, bookings, hub, zap.NewNop())
	return svc, slots, bookings, hub
}

func testSlot(date, start, end string) *model.Slot {
	return &model.Slot{
		ProfessionalID: "prof-1",
		Date:           date,
		StartTime:      start,
		EndTime:        end,
		Type:           "Control",
		Color:          "#3498db",
		Profession:     "Kinesiología",
	}
}

func TestCreateSlotNormalizesInterval(t *testing.T) {
	svc, _, _, _ := newTestEngine()
	ctx := context.Background()

	created, err := svc.CreateSlot(ctx, testSlot("2024-01-10", "09:02", "09:48"))
	if err != nil {
		t.Fatalf("CreateSlot: %v", err)
	}
	if created.StartTime != "09:00" || created.EndTime != "09:50" {
		t.Errorf("interval not normalized: %s-%s", created.StartTime, created.EndTime)
	}
	if created.DurationMinutes != 50 {
		t.Errorf("duration = %d, want 50", created.DurationMinutes)
	}

	// Outside the working window: clamped, not rejected.
	clamped, err := svc.CreateSlot(ctx, testSlot("2024-01-11", "07:00", "08:30"))
	if err != nil {
		t.Fatalf("CreateSlot clamped: %v", err)
	}
	if clamped.StartTime != "08:00" || clamped.EndTime != "08:30" {
		t.Errorf("interval not clamped: %s-%s", clamped.StartTime, clamped.EndTime)
	}
}

func TestCreateSlotValidation(t *testing.T) {
	svc, _, _, _ := newTestEngine()
	ctx := context.Background()

	var verr *ValidationError
	if _, err := svc.CreateSlot(ctx, testSlot("2024-01-14", "09:00", "10:00")); !errors.As(err, &verr) {
		t.Errorf("Sunday slot: got %v, want ValidationError", err)
	}
	if _, err := svc.CreateSlot(ctx, testSlot("2024-01-10", "10:00", "09:00")); !errors.As(err, &verr) {
		t.Errorf("inverted interval: got %v, want ValidationError", err)
	}
	if _, err := svc.CreateSlot(ctx, testSlot("not-a-date", "09:00", "10:00")); !errors.As(err, &verr) {
		t.Errorf("bad date: got %v, want ValidationError", err)
	}
	slot := testSlot("2024-01-10", "09:00", "10:00")
	slot.ProfessionalID = ""
	if _, err := svc.CreateSlot(ctx, slot); !errors.As(err, &verr) {
		t.Errorf("missing professional: got %v, want ValidationError", err)
	}
}

func TestCreateSlotConflict(t *testing.T) {
	svc, _, _, hub := newTestEngine()
	ctx := context.Background()

	var conflicts []notify.Conflict
	hub.OnConflict(func(c notify.Conflict) { conflicts = append(conflicts, c) })

	first, err := svc.CreateSlot(ctx, testSlot("2024-01-10", "09:00", "10:00"))
	if err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err = svc.CreateSlot(ctx, testSlot("2024-01-10", "09:30", "10:30"))
	var cerr *ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("got %v, want ConflictError", err)
	}
	if !cerr.CollidesWithSlot || len(cerr.CollidingSlotIDs) != 1 || cerr.CollidingSlotIDs[0] != first.ID {
		t.Errorf("conflict detail wrong: %+v", cerr)
	}
	if len(conflicts) != 1 {
		t.Errorf("expected 1 conflict notification, got %d", len(conflicts))
	}
}

func TestCreateSlotTouchingIntervals(t *testing.T) {
	svc, _, _, _ := newTestEngine()
	ctx := context.Background()

	if _, err := svc.CreateSlot(ctx, testSlot("2024-01-10", "09:00", "10:00")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	// Half-open semantics: a slot starting exactly where another ends is fine.
	if _, err := svc.CreateSlot(ctx, testSlot("2024-01-10", "10:00", "11:00")); err != nil {
		t.Fatalf("touching slot rejected: %v", err)
	}
}

func TestCreateSlotDifferentProfessionalsDoNotCollide(t *testing.T) {
	svc, _, _, _ := newTestEngine()
	ctx := context.Background()

	if _, err := svc.CreateSlot(ctx, testSlot("2024-01-10", "09:00", "10:00")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	other := testSlot("2024-01-10", "09:00", "10:00")
	other.ProfessionalID = "prof-2"
	if _, err := svc.CreateSlot(ctx, other); err != nil {
		t.Fatalf("other professional's slot rejected: %v", err)
	}
}

func TestMoveSlotConflictLeavesStateUnchanged(t *testing.T) {
	svc, slots, _, _ := newTestEngine()
	ctx := context.Background()

	a, err := svc.CreateSlot(ctx, testSlot("2024-01-10", "09:00", "09:45"))
	if err != nil {
		t.Fatalf("create A: %v", err)
	}
	b, err := svc.CreateSlot(ctx, testSlot("2024-01-10", "10:00", "10:45"))
	if err != nil {
		t.Fatalf("create B: %v", err)
	}

	_, err = svc.MoveOrResizeSlot(ctx, a.ID, "2024-01-10", "10:00", "10:45")
	var cerr *ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("got %v, want ConflictError", err)
	}
	if !cerr.CollidesWithSlot || cerr.CollidingSlotIDs[0] != b.ID {
		t.Errorf("conflict should name B: %+v", cerr)
	}

	stored, _ := slots.GetByID(ctx, a.ID)
	if stored.StartTime != "09:00" || stored.EndTime != "09:45" || stored.Date != "2024-01-10" {
		t.Errorf("A changed despite rejected move: %+v", stored)
	}
}

func TestMoveSlotExcludesItself(t *testing.T) {
	svc, _, _, _ := newTestEngine()
	ctx := context.Background()

	a, err := svc.CreateSlot(ctx, testSlot("2024-01-10", "09:00", "09:45"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// Resizing within its own prior footprint must not self-collide.
	moved, err := svc.MoveOrResizeSlot(ctx, a.ID, "2024-01-10", "09:00", "09:30")
	if err != nil {
		t.Fatalf("resize: %v", err)
	}
	if moved.EndTime != "09:30" || moved.DurationMinutes != 30 {
		t.Errorf("resize not applied: %+v", moved)
	}
}

func TestMoveSlotNotFound(t *testing.T) {
	svc, _, _, _ := newTestEngine()
	var nerr *NotFoundError
	if _, err := svc.MoveOrResizeSlot(context.Background(), "missing", "2024-01-10", "09:00", "10:00"); !errors.As(err, &nerr) {
		t.Errorf("got %v, want NotFoundError", err)
	}
}

func TestMoveSlotCarriesBooking(t *testing.T) {
	svc, _, bookings, _ := newTestEngine()
	ctx := context.Background()

	a, err := svc.CreateSlot(ctx, testSlot("2024-01-10", "09:00", "09:45"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	booking := &model.Booking{
		SlotID:         a.ID,
		ProfessionalID: a.ProfessionalID,
		PatientID:      "pat-1",
		Date:           a.Date,
		StartTime:      "09:00",
		EndTime:        "09:45",
		Status:         model.BookingStatusConfirmed,
	}
	if err := bookings.Create(ctx, booking); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	if _, err := svc.MoveOrResizeSlot(ctx, a.ID, "2024-01-11", "11:00", "11:45"); err != nil {
		t.Fatalf("move: %v", err)
	}

	carried, _ := bookings.GetByID(ctx, booking.ID)
	if carried.Date != "2024-01-11" {
		t.Errorf("booking date = %s, want 2024-01-11", carried.Date)
	}
	if carried.StartTime != "11:00" || carried.EndTime != "11:45" {
		t.Errorf("booking interval = %s-%s, want inside the moved slot", carried.StartTime, carried.EndTime)
	}
}

func TestCreateSlotsBatchAllOrNothing(t *testing.T) {
	svc, slots, _, _ := newTestEngine()
	ctx := context.Background()

	payloads := []*model.Slot{
		testSlot("2024-01-10", "09:00", "09:30"),
		testSlot("2024-01-14", "09:00", "09:30"), // Sunday
		testSlot("2024-01-10", "09:30", "10:00"),
	}
	_, err := svc.CreateSlotsBatch(ctx, payloads)
	var berr *BatchValidationError
	if !errors.As(err, &berr) {
		t.Fatalf("got %v, want BatchValidationError", err)
	}
	if len(berr.Failures) != 1 || berr.Failures[0].Index != 1 {
		t.Errorf("failures = %+v, want index 1 only", berr.Failures)
	}
	if len(slots.slots) != 0 {
		t.Errorf("batch partially applied: %d slots written", len(slots.slots))
	}
}

func TestCreateSlotsBatchRejectsInternalOverlap(t *testing.T) {
	svc, slots, _, _ := newTestEngine()
	ctx := context.Background()

	payloads := []*model.Slot{
		testSlot("2024-01-10", "09:00", "10:00"),
		testSlot("2024-01-10", "09:30", "10:30"),
	}
	_, err := svc.CreateSlotsBatch(ctx, payloads)
	var berr *BatchValidationError
	if !errors.As(err, &berr) {
		t.Fatalf("got %v, want BatchValidationError", err)
	}
	if len(slots.slots) != 0 {
		t.Errorf("self-colliding batch written: %d slots", len(slots.slots))
	}
}

func TestCreateSlotsBatchSuccess(t *testing.T) {
	svc, slots, _, _ := newTestEngine()
	ctx := context.Background()

	created, err := svc.CreateSlotsBatch(ctx, []*model.Slot{
		testSlot("2024-01-10", "09:00", "09:30"),
		testSlot("2024-01-10", "09:30", "10:00"),
		testSlot("2024-01-11", "09:00", "09:30"),
	})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(created) != 3 || len(slots.slots) != 3 {
		t.Errorf("created %d, stored %d, want 3", len(created), len(slots.slots))
	}
	for _, s := range created {
		if s.ID == "" {
			t.Error("created slot without id")
		}
	}
}
