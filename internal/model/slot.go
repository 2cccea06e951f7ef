package model

import (
	"strings"
	"time"
)

// Slot is a placed, bookable time unit ("módulo") on a professional's
// calendar for a specific date. Times are local HH:MM on a 5-minute grid.
type Slot struct {
	ID              string    `json:"id"`
	ProfessionalID  string    `json:"professional_id"`
	Date            string    `json:"date"`       // YYYY-MM-DD, never a Sunday
	StartTime       string    `json:"start_time"` // HH:MM
	EndTime         string    `json:"end_time"`   // HH:MM, strictly after StartTime
	DurationMinutes int       `json:"duration_minutes"`
	Type            string    `json:"type"` // category label, e.g. "Control"
	Color           string    `json:"color"`
	Profession      string    `json:"profession"`
	Notes           string    `json:"notes"`
	TemplateID      string    `json:"template_id,omitempty"` // set when materialized from a template
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BaseType returns the slot type without a legacy " - " display suffix.
// Older data encoded patient info into the type field; new writes never do.
func (s *Slot) BaseType() string {
	base, _, _ := strings.Cut(s.Type, " - ")
	return strings.TrimSpace(base)
}

// DisplayLabel composes the calendar label for this slot. The patient name
// comes from the active booking and is never written back into Type.
func (s *Slot) DisplayLabel(patientName string) string {
	if patientName == "" {
		return s.BaseType()
	}
	return s.BaseType() + " - " + patientName
}
