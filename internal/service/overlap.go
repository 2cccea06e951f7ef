package service

import (
	"github.com/agendamed/agenda/internal/model"
	"github.com/agendamed/agenda/internal/timeutil"
)

// Candidate is an interval being placed on a professional's day.
type Candidate struct {
	ProfessionalID string
	Date           string
	StartMin       int
	EndMin         int
	// ExcludeSlotID ignores a slot's own prior position (and the booking
	// riding on it) during a move or resize.
	ExcludeSlotID string
}

// OverlapResult names every entity that blocks a candidate interval.
// Callers need the ids for user feedback, never just a boolean.
type OverlapResult struct {
	CollidesWithSlot    bool
	CollidesWithBooking bool
	CollidingSlotIDs    []string
	CollidingBookingIDs []string
}

// Blocked reports whether anything collided.
func (r OverlapResult) Blocked() bool {
	return r.CollidesWithSlot || r.CollidesWithBooking
}

// DetectOverlap scans the given same-day slots and bookings for
// collisions with the candidate. Bookings without explicit times fall
// back to their parent slot's interval; a booking whose interval cannot
// be resolved is skipped rather than treated as blocking.
func DetectOverlap(cand Candidate, slots []*model.Slot, bookings []*model.Booking) OverlapResult {
	var res OverlapResult

	slotsByID := make(map[string]*model.Slot, len(slots))
	for _, s := range slots {
		slotsByID[s.ID] = s
	}

	for _, s := range slots {
		if s.ID != "" && s.ID == cand.ExcludeSlotID {
			continue
		}
		if s.ProfessionalID != cand.ProfessionalID || s.Date != cand.Date {
			continue
		}
		start := timeutil.ToMinutes(s.StartTime)
		end := timeutil.ToMinutes(s.EndTime)
		if timeutil.Overlaps(cand.StartMin, cand.EndMin, start, end) {
			res.CollidesWithSlot = true
			res.CollidingSlotIDs = append(res.CollidingSlotIDs, s.ID)
		}
	}

	for _, b := range bookings {
		if !b.Active() {
			continue
		}
		if b.SlotID != "" && b.SlotID == cand.ExcludeSlotID {
			continue
		}
		if b.ProfessionalID != cand.ProfessionalID || b.Date != cand.Date {
			continue
		}
		start, end, ok := bookingInterval(b, slotsByID)
		if !ok {
			continue
		}
		if timeutil.Overlaps(cand.StartMin, cand.EndMin, start, end) {
			res.CollidesWithBooking = true
			res.CollidingBookingIDs = append(res.CollidingBookingIDs, b.ID)
		}
	}

	return res
}

// bookingInterval resolves a booking's interval, preferring its own times
// and falling back to the parent slot.
func bookingInterval(b *model.Booking, slotsByID map[string]*model.Slot) (start, end int, ok bool) {
	if b.StartTime != "" && b.EndTime != "" {
		return timeutil.ToMinutes(b.StartTime), timeutil.ToMinutes(b.EndTime), true
	}
	parent, found := slotsByID[b.SlotID]
	if !found {
		return 0, 0, false
	}
	return timeutil.ToMinutes(parent.StartTime), timeutil.ToMinutes(parent.EndTime), true
}
