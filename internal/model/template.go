package model

import "time"

// SlotTemplate ("plantilla de módulo") is a reusable slot definition used
// to batch-generate slots across a time range. It is not itself placed on
// a date.
type SlotTemplate struct {
	ID              string    `json:"id"`
	ProfessionalID  string    `json:"professional_id"`
	Type            string    `json:"type"`
	DurationMinutes int       `json:"duration_minutes"`
	Profession      string    `json:"profession"`
	Color           string    `json:"color"`
	Notes           string    `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TemplateAttrs is the subset of template fields that cascades to
// materialized slots when an edit is propagated.
type TemplateAttrs struct {
	Type            string `json:"type"`
	DurationMinutes int    `json:"duration_minutes"`
	Profession      string `json:"profession"`
	Color           string `json:"color"`
	Notes           string `json:"notes"`
}

// Attrs extracts the cascading attributes of the template.
func (t *SlotTemplate) Attrs() TemplateAttrs {
	return TemplateAttrs{
		Type:            t.Type,
		DurationMinutes: t.DurationMinutes,
		Profession:      t.Profession,
		Color:           t.Color,
		Notes:           t.Notes,
	}
}
