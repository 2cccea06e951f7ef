package service

import (
	"testing"

	"github.com/agendamed/agenda/internal/model"
)

func TestGenerateInstancesExactFit(t *testing.T) {
	attrs := model.TemplateAttrs{Type: "Control", DurationMinutes: 30, Color: "#3498db"}
	out := GenerateInstances("prof-1", "tpl-1", "2024-01-10", "09:00", "10:00", attrs)

	if len(out) != 2 {
		t.Fatalf("got %d instances, want 2", len(out))
	}
	if out[0].StartTime != "09:00" || out[0].EndTime != "09:30" {
		t.Errorf("first instance %s-%s", out[0].StartTime, out[0].EndTime)
	}
	if out[1].StartTime != "09:30" || out[1].EndTime != "10:00" {
		t.Errorf("second instance %s-%s", out[1].StartTime, out[1].EndTime)
	}
	for _, s := range out {
		if s.Type != "Control" || s.Color != "#3498db" || s.DurationMinutes != 30 {
			t.Errorf("attrs not carried: %+v", s)
		}
		if s.TemplateID != "tpl-1" || s.ProfessionalID != "prof-1" || s.Date != "2024-01-10" {
			t.Errorf("placement not carried: %+v", s)
		}
	}
}

func TestGenerateInstancesDiscardsPartialTail(t *testing.T) {
	attrs := model.TemplateAttrs{Type: "Control", DurationMinutes: 30}
	out := GenerateInstances("prof-1", "tpl-1", "2024-01-10", "09:00", "10:10", attrs)

	// The trailing 10 minutes do not fit a full instance and are dropped.
	if len(out) != 2 {
		t.Fatalf("got %d instances, want 2", len(out))
	}
	if out[1].EndTime != "10:00" {
		t.Errorf("last instance ends %s, want 10:00", out[1].EndTime)
	}
}

func TestGenerateInstancesDegenerateInputs(t *testing.T) {
	if out := GenerateInstances("p", "t", "2024-01-10", "09:00", "10:00", model.TemplateAttrs{DurationMinutes: 0}); out != nil {
		t.Errorf("zero duration produced %d instances", len(out))
	}
	if out := GenerateInstances("p", "t", "2024-01-10", "10:00", "09:00", model.TemplateAttrs{DurationMinutes: 30}); out != nil {
		t.Errorf("inverted range produced %d instances", len(out))
	}
	if out := GenerateInstances("p", "t", "2024-01-10", "09:00", "09:20", model.TemplateAttrs{DurationMinutes: 30}); out != nil {
		t.Errorf("too-short range produced %d instances", len(out))
	}
}

func TestGenerateInstancesRestartable(t *testing.T) {
	attrs := model.TemplateAttrs{Type: "Control", DurationMinutes: 20}
	a := GenerateInstances("p", "t", "2024-01-10", "09:00", "10:00", attrs)
	b := GenerateInstances("p", "t", "2024-01-10", "09:00", "10:00", attrs)
	if len(a) != 3 || len(b) != 3 {
		t.Fatalf("got %d and %d instances, want 3 each", len(a), len(b))
	}
	for i := range a {
		if a[i].StartTime != b[i].StartTime || a[i].EndTime != b[i].EndTime {
			t.Errorf("run %d differs: %s-%s vs %s-%s", i, a[i].StartTime, a[i].EndTime, b[i].StartTime, b[i].EndTime)
		}
	}
}
