package model

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking is a patient appointment ("cita") occupying a slot.
type Booking struct {
	ID             string        `json:"id"`
	SlotID         string        `json:"slot_id"`
	ProfessionalID string        `json:"professional_id"`
	PatientID      string        `json:"patient_id"`
	PatientName    string        `json:"patient_name"` // denormalized for display
	Date           string        `json:"date"`
	StartTime      string        `json:"start_time"` // may be empty; falls back to the slot interval
	EndTime        string        `json:"end_time"`
	Type           string        `json:"type"` // frozen copy of the slot type at booking time
	Status         BookingStatus `json:"status"`
	IsOverbooking  bool          `json:"is_overbooking"` // sobrecupo
	Notes          string        `json:"notes"`
	// OriginalSlotColor is the slot color before this booking recolored it,
	// restored when the booking is deleted.
	OriginalSlotColor string    `json:"original_slot_color,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Active reports whether the booking still occupies its slot.
func (b *Booking) Active() bool {
	return b.Status != BookingStatusCancelled
}
