package service

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed input on a mutating call. It is
// resolved at the call site and never persisted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// ConflictError reports an overlap against existing slots or bookings.
// It always names the blocking entities so the caller can explain the
// rejection; the triggering operation is fully aborted.
type ConflictError struct {
	Operation           string
	CollidesWithSlot    bool
	CollidesWithBooking bool
	CollidingSlotIDs    []string
	CollidingBookingIDs []string
}

func (e *ConflictError) Error() string {
	var parts []string
	if e.CollidesWithSlot {
		parts = append(parts, fmt.Sprintf("slots %v", e.CollidingSlotIDs))
	}
	if e.CollidesWithBooking {
		parts = append(parts, fmt.Sprintf("bookings %v", e.CollidingBookingIDs))
	}
	return fmt.Sprintf("%s conflicts with %s", e.Operation, strings.Join(parts, " and "))
}

// NotFoundError reports an unresolvable entity reference, e.g. booking a
// slot another session already deleted.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// BatchFailure records one rejected payload of a batch create.
type BatchFailure struct {
	Index int
	Err   error
}

// BatchValidationError rejects a whole batch: either every payload passes
// pre-validation or nothing is written. Callers may retry items
// individually.
type BatchValidationError struct {
	Failures []BatchFailure
}

func (e *BatchValidationError) Error() string {
	return fmt.Sprintf("batch rejected: %d of the payloads failed pre-validation", len(e.Failures))
}

// FilterIDs drops ids that cannot reference anything: empty strings and
// the literal "null"/"undefined" that malformed upstream payloads
// sometimes carry. The dropped set is returned so callers can report the
// filtering.
func FilterIDs(ids []string) (valid, dropped []string) {
	for _, id := range ids {
		trimmed := strings.TrimSpace(id)
		if trimmed == "" || trimmed == "null" || trimmed == "undefined" {
			dropped = append(dropped, id)
			continue
		}
		valid = append(valid, trimmed)
	}
	return valid, dropped
}
