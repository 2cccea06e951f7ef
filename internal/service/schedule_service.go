package service

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/agendamed/agenda/internal/metrics"
	"github.com/agendamed/agenda/internal/model"
	"github.com/agendamed/agenda/internal/notify"
	"github.com/agendamed/agenda/internal/timeutil"
)

// ScheduleService is the single authority for placing and re-placing
// slots. Every mutation normalizes its interval to the 5-minute grid,
// validates it against the working window and runs the overlap check
// before anything is persisted.
type ScheduleService struct {
	slots    SlotRepository
	bookings BookingRepository
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewScheduleService(slots SlotRepository, bookings BookingRepository, notifier notify.Notifier, logger *zap.Logger) *ScheduleService {
	return &ScheduleService{
		slots:    slots,
		bookings: bookings,
		notifier: notifier,
		logger:   logger,
	}
}

// normalizeInterval rounds both ends to the grid and clamps them into the
// 08:00-20:00 window.
func normalizeInterval(start, end string) (startMin, endMin int) {
	startMin = timeutil.ClampToDay(timeutil.RoundToStep(timeutil.ToMinutes(start), timeutil.Step))
	endMin = timeutil.ClampToDay(timeutil.RoundToStep(timeutil.ToMinutes(end), timeutil.Step))
	return startMin, endMin
}

// validatePlacement checks the structural invariants of a slot position.
func validatePlacement(professionalID, date string, startMin, endMin int) error {
	if professionalID == "" {
		return &ValidationError{Field: "professional_id", Reason: "required"}
	}
	if _, err := timeutil.ParseDate(date); err != nil {
		return &ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	if timeutil.IsSunday(date) {
		return &ValidationError{Field: "date", Reason: "Sundays are closed"}
	}
	if startMin >= endMin {
		return &ValidationError{Field: "end_time", Reason: "must be after start_time"}
	}
	return nil
}

// loadDay fetches the slot and booking sets for one professional/day.
func (s *ScheduleService) loadDay(ctx context.Context, professionalID, date string) ([]*model.Slot, []*model.Booking, error) {
	slots, err := s.slots.ListByProfessional(ctx, professionalID, date, date)
	if err != nil {
		return nil, nil, fmt.Errorf("list slots: %w", err)
	}
	bookings, err := s.bookings.ListByProfessional(ctx, professionalID, date, date)
	if err != nil {
		return nil, nil, fmt.Errorf("list bookings: %w", err)
	}
	return slots, bookings, nil
}

func (s *ScheduleService) rejectConflict(ctx context.Context, op, professionalID, date string, res OverlapResult) *ConflictError {
	metrics.ConflictsRejected.WithLabelValues(op).Inc()
	s.notifier.ConflictRejected(ctx, notify.Conflict{
		Operation:           op,
		ProfessionalID:      professionalID,
		Date:                date,
		CollidingSlotIDs:    res.CollidingSlotIDs,
		CollidingBookingIDs: res.CollidingBookingIDs,
	})
	return &ConflictError{
		Operation:           op,
		CollidesWithSlot:    res.CollidesWithSlot,
		CollidesWithBooking: res.CollidesWithBooking,
		CollidingSlotIDs:    res.CollidingSlotIDs,
		CollidingBookingIDs: res.CollidingBookingIDs,
	}
}

// CreateSlot validates, collision-checks and persists a single slot. The
// returned slot carries the normalized interval so callers can reconcile
// optimistic UI state.
func (s *ScheduleService) CreateSlot(ctx context.Context, slot *model.Slot) (*model.Slot, error) {
	timer := prometheus.NewTimer(metrics.OperationDuration.WithLabelValues("create_slot"))
	defer timer.ObserveDuration()

	startMin, endMin := normalizeInterval(slot.StartTime, slot.EndTime)
	if err := validatePlacement(slot.ProfessionalID, slot.Date, startMin, endMin); err != nil {
		return nil, err
	}

	daySlots, dayBookings, err := s.loadDay(ctx, slot.ProfessionalID, slot.Date)
	if err != nil {
		return nil, err
	}
	res := DetectOverlap(Candidate{
		ProfessionalID: slot.ProfessionalID,
		Date:           slot.Date,
		StartMin:       startMin,
		EndMin:         endMin,
	}, daySlots, dayBookings)
	if res.Blocked() {
		return nil, s.rejectConflict(ctx, "create_slot", slot.ProfessionalID, slot.Date, res)
	}

	slot.StartTime = timeutil.FormatMinutes(startMin)
	slot.EndTime = timeutil.FormatMinutes(endMin)
	slot.DurationMinutes = endMin - startMin

	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, fmt.Errorf("create slot: %w", err)
	}

	metrics.SlotsCreated.Inc()
	s.notifier.SlotsChanged(ctx, slot.ProfessionalID, slot.Date)
	s.logger.Info("slot created",
		zap.String("slot_id", slot.ID),
		zap.String("professional_id", slot.ProfessionalID),
		zap.String("date", slot.Date),
		zap.String("interval", slot.StartTime+"-"+slot.EndTime),
	)
	return slot, nil
}

// CreateSlotsBatch validates every payload before writing anything:
// either the whole batch passes or it is rejected with the list of
// failing payloads. Payloads are also checked against each other, so
// generator output that would self-collide is caught here.
func (s *ScheduleService) CreateSlotsBatch(ctx context.Context, payloads []*model.Slot) ([]*model.Slot, error) {
	timer := prometheus.NewTimer(metrics.OperationDuration.WithLabelValues("create_slots_batch"))
	defer timer.ObserveDuration()

	if len(payloads) == 0 {
		return nil, nil
	}

	type dayKey struct{ professionalID, date string }
	daySlots := make(map[dayKey][]*model.Slot)
	dayBookings := make(map[dayKey][]*model.Booking)

	var failures []BatchFailure
	for i, p := range payloads {
		startMin, endMin := normalizeInterval(p.StartTime, p.EndTime)
		if err := validatePlacement(p.ProfessionalID, p.Date, startMin, endMin); err != nil {
			failures = append(failures, BatchFailure{Index: i, Err: err})
			continue
		}

		key := dayKey{p.ProfessionalID, p.Date}
		if _, loaded := daySlots[key]; !loaded {
			slots, bookings, err := s.loadDay(ctx, p.ProfessionalID, p.Date)
			if err != nil {
				return nil, err
			}
			daySlots[key] = slots
			dayBookings[key] = bookings
		}

		res := DetectOverlap(Candidate{
			ProfessionalID: p.ProfessionalID,
			Date:           p.Date,
			StartMin:       startMin,
			EndMin:         endMin,
		}, daySlots[key], dayBookings[key])
		if res.Blocked() {
			failures = append(failures, BatchFailure{Index: i, Err: &ConflictError{
				Operation:           "create_slots_batch",
				CollidesWithSlot:    res.CollidesWithSlot,
				CollidesWithBooking: res.CollidesWithBooking,
				CollidingSlotIDs:    res.CollidingSlotIDs,
				CollidingBookingIDs: res.CollidingBookingIDs,
			}})
			continue
		}

		p.StartTime = timeutil.FormatMinutes(startMin)
		p.EndTime = timeutil.FormatMinutes(endMin)
		p.DurationMinutes = endMin - startMin
		// Accepted payloads join the day view so later batch items
		// cannot collide with them unnoticed.
		daySlots[key] = append(daySlots[key], p)
	}

	if len(failures) > 0 {
		metrics.ConflictsRejected.WithLabelValues("create_slots_batch").Inc()
		return nil, &BatchValidationError{Failures: failures}
	}

	if err := s.slots.CreateBatch(ctx, payloads); err != nil {
		return nil, fmt.Errorf("create slots batch: %w", err)
	}

	seen := make(map[dayKey]bool)
	for _, p := range payloads {
		metrics.SlotsCreated.Inc()
		key := dayKey{p.ProfessionalID, p.Date}
		if !seen[key] {
			seen[key] = true
			s.notifier.SlotsChanged(ctx, p.ProfessionalID, p.Date)
		}
	}

	s.logger.Info("slot batch created", zap.Int("count", len(payloads)))
	return payloads, nil
}

// MoveOrResizeSlot re-places an existing slot. On conflict nothing is
// persisted and the caller reverts its optimistic state; on success the
// applied (normalized) interval is returned. An active booking riding on
// the slot follows it, clamped into the new bounds.
func (s *ScheduleService) MoveOrResizeSlot(ctx context.Context, id, newDate, newStart, newEnd string) (*model.Slot, error) {
	timer := prometheus.NewTimer(metrics.OperationDuration.WithLabelValues("move_slot"))
	defer timer.ObserveDuration()

	slot, err := s.slots.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}
	if slot == nil {
		return nil, &NotFoundError{Entity: "slot", ID: id}
	}

	startMin, endMin := normalizeInterval(newStart, newEnd)
	if err := validatePlacement(slot.ProfessionalID, newDate, startMin, endMin); err != nil {
		return nil, err
	}

	daySlots, dayBookings, err := s.loadDay(ctx, slot.ProfessionalID, newDate)
	if err != nil {
		return nil, err
	}
	res := DetectOverlap(Candidate{
		ProfessionalID: slot.ProfessionalID,
		Date:           newDate,
		StartMin:       startMin,
		EndMin:         endMin,
		ExcludeSlotID:  id,
	}, daySlots, dayBookings)
	if res.Blocked() {
		return nil, s.rejectConflict(ctx, "move_slot", slot.ProfessionalID, newDate, res)
	}

	oldDate := slot.Date
	slot.Date = newDate
	slot.StartTime = timeutil.FormatMinutes(startMin)
	slot.EndTime = timeutil.FormatMinutes(endMin)
	slot.DurationMinutes = endMin - startMin

	if err := s.slots.Update(ctx, slot); err != nil {
		return nil, fmt.Errorf("update slot: %w", err)
	}

	if err := s.carryBookings(ctx, slot, startMin, endMin); err != nil {
		return nil, err
	}

	metrics.SlotsMoved.Inc()
	s.notifier.SlotsChanged(ctx, slot.ProfessionalID, oldDate)
	if newDate != oldDate {
		s.notifier.SlotsChanged(ctx, slot.ProfessionalID, newDate)
	}
	s.logger.Info("slot moved",
		zap.String("slot_id", slot.ID),
		zap.String("date", slot.Date),
		zap.String("interval", slot.StartTime+"-"+slot.EndTime),
	)
	return slot, nil
}

// carryBookings drags the slot's active bookings to its new position,
// keeping each booking's interval inside the slot bounds.
func (s *ScheduleService) carryBookings(ctx context.Context, slot *model.Slot, slotStart, slotEnd int) error {
	bookings, err := s.bookings.ListBySlotIDs(ctx, []string{slot.ID})
	if err != nil {
		return fmt.Errorf("list slot bookings: %w", err)
	}
	for _, b := range bookings {
		if !b.Active() {
			continue
		}
		b.Date = slot.Date
		if b.StartTime != "" && b.EndTime != "" {
			start := timeutil.Clamp(timeutil.ToMinutes(b.StartTime), slotStart, slotEnd)
			end := timeutil.Clamp(timeutil.ToMinutes(b.EndTime), slotStart, slotEnd)
			if start >= end {
				start, end = slotStart, slotEnd
			}
			b.StartTime = timeutil.FormatMinutes(start)
			b.EndTime = timeutil.FormatMinutes(end)
		}
		if err := s.bookings.Update(ctx, b); err != nil {
			return fmt.Errorf("carry booking: %w", err)
		}
		s.notifier.BookingsChanged(ctx, b.ProfessionalID, b.Date)
	}
	return nil
}

// ListWeek returns the slots and bookings of the week starting at monday,
// the wholesale load used by the calendar view and the batch managers.
func (s *ScheduleService) ListWeek(ctx context.Context, professionalID, monday string) ([]*model.Slot, []*model.Booking, error) {
	weekEnd := timeutil.AddDays(monday, 6)
	slots, err := s.slots.ListByProfessional(ctx, professionalID, monday, weekEnd)
	if err != nil {
		return nil, nil, fmt.Errorf("list week slots: %w", err)
	}
	bookings, err := s.bookings.ListByProfessional(ctx, professionalID, monday, weekEnd)
	if err != nil {
		return nil, nil, fmt.Errorf("list week bookings: %w", err)
	}
	return slots, bookings, nil
}
