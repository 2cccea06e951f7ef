package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/agendamed/agenda/internal/metrics"
	"github.com/agendamed/agenda/internal/model"
	"github.com/agendamed/agenda/internal/notify"
	"github.com/agendamed/agenda/internal/timeutil"
)

// DeletionService resolves bulk slot deletions into a safe plan: slots
// with an active booking are never deleted, and the caller sees the plan
// before anything is removed.
type DeletionService struct {
	slots    SlotRepository
	bookings BookingRepository
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewDeletionService(slots SlotRepository, bookings BookingRepository, notifier notify.Notifier, logger *zap.Logger) *DeletionService {
	return &DeletionService{
		slots:    slots,
		bookings: bookings,
		notifier: notifier,
		logger:   logger,
	}
}

// ExcludedSlot is a slot kept out of a deletion plan, with enough
// metadata for the UI to show why it was skipped.
type ExcludedSlot struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	Reason    string `json:"reason"`
}

// DeletionPlan is the preview returned before any deletion happens.
type DeletionPlan struct {
	ProfessionalID string         `json:"professional_id"`
	Deletable      []string       `json:"deletable"`
	Excluded       []ExcludedSlot `json:"excluded"`
	DroppedIDs     []string       `json:"dropped_ids,omitempty"` // malformed ids filtered out
}

// PlanWeekDeletion builds the plan for "delete every slot in the week of
// monday". The load goes straight to the repository, so slots outside the
// locally cached calendar range are included.
func (s *DeletionService) PlanWeekDeletion(ctx context.Context, professionalID, monday string) (*DeletionPlan, error) {
	if professionalID == "" {
		return nil, &ValidationError{Field: "professional_id", Reason: "required"}
	}
	monday = timeutil.MondayOf(monday)

	slots, err := s.slots.ListByProfessional(ctx, professionalID, monday, timeutil.AddDays(monday, 6))
	if err != nil {
		return nil, fmt.Errorf("list week slots: %w", err)
	}
	return s.buildPlan(ctx, professionalID, slots, nil)
}

// PlanDeletion builds the plan for an explicit id set (multi-select).
func (s *DeletionService) PlanDeletion(ctx context.Context, professionalID string, ids []string) (*DeletionPlan, error) {
	valid, dropped := FilterIDs(ids)
	if len(dropped) > 0 {
		s.logger.Warn("invalid slot ids filtered from deletion request",
			zap.Strings("dropped", dropped),
		)
	}
	if len(valid) == 0 {
		return &DeletionPlan{ProfessionalID: professionalID, DroppedIDs: dropped}, nil
	}

	slots, err := s.slots.ListByIDs(ctx, valid)
	if err != nil {
		return nil, fmt.Errorf("list slots by ids: %w", err)
	}
	return s.buildPlan(ctx, professionalID, slots, dropped)
}

func (s *DeletionService) buildPlan(ctx context.Context, professionalID string, slots []*model.Slot, dropped []string) (*DeletionPlan, error) {
	plan := &DeletionPlan{ProfessionalID: professionalID, DroppedIDs: dropped}
	if len(slots) == 0 {
		return plan, nil
	}

	ids := make([]string, 0, len(slots))
	for _, slot := range slots {
		ids = append(ids, slot.ID)
	}
	bookings, err := s.bookings.ListBySlotIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list slot bookings: %w", err)
	}
	booked := make(map[string]bool, len(bookings))
	for _, b := range bookings {
		if b.Active() {
			booked[b.SlotID] = true
		}
	}

	for _, slot := range slots {
		if booked[slot.ID] {
			plan.Excluded = append(plan.Excluded, ExcludedSlot{
				ID:        slot.ID,
				Type:      slot.BaseType(),
				Date:      slot.Date,
				StartTime: slot.StartTime,
				Reason:    "has an active booking",
			})
			continue
		}
		plan.Deletable = append(plan.Deletable, slot.ID)
	}
	return plan, nil
}

// Execute deletes the plan's deletable slots only. The ids are filtered
// again right before the repository call; excluded entries are never
// touched regardless of what the caller passes back.
func (s *DeletionService) Execute(ctx context.Context, plan *DeletionPlan) (int, error) {
	if plan == nil {
		return 0, &ValidationError{Field: "plan", Reason: "required"}
	}
	ids, dropped := FilterIDs(plan.Deletable)
	if len(dropped) > 0 {
		s.logger.Warn("invalid slot ids filtered at deletion time",
			zap.Strings("dropped", dropped),
		)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	// Re-check bookings at execution time: a booking may have landed
	// between planning and confirmation.
	bookings, err := s.bookings.ListBySlotIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("recheck slot bookings: %w", err)
	}
	booked := make(map[string]bool)
	for _, b := range bookings {
		if b.Active() {
			booked[b.SlotID] = true
		}
	}
	final := ids[:0]
	for _, id := range ids {
		if !booked[id] {
			final = append(final, id)
		}
	}
	if len(final) == 0 {
		return 0, nil
	}

	if err := s.slots.Delete(ctx, final); err != nil {
		return 0, fmt.Errorf("delete slots: %w", err)
	}

	for range final {
		metrics.SlotsDeleted.Inc()
	}
	s.notifier.SlotsChanged(ctx, plan.ProfessionalID, "")
	s.logger.Info("slots deleted",
		zap.String("professional_id", plan.ProfessionalID),
		zap.Int("count", len(final)),
		zap.Int("excluded", len(plan.Excluded)),
	)
	return len(final), nil
}
