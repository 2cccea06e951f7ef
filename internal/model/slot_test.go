package model

import "testing"

func TestSlotBaseType(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Control", "Control"},
		{"Control - Juan Pérez", "Control"},
		{"Control - Juan - extra", "Control"},
		{"", ""},
	}
	for _, c := range cases {
		s := &Slot{Type: c.in}
		if got := s.BaseType(); got != c.want {
			t.Errorf("BaseType(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSlotDisplayLabel(t *testing.T) {
	s := &Slot{Type: "Control"}
	if got := s.DisplayLabel("Ana Rojas"); got != "Control - Ana Rojas" {
		t.Errorf("DisplayLabel = %q", got)
	}
	if got := s.DisplayLabel(""); got != "Control" {
		t.Errorf("DisplayLabel without patient = %q", got)
	}
	// A legacy suffixed type never doubles up.
	s.Type = "Control - viejo"
	if got := s.DisplayLabel("Ana Rojas"); got != "Control - Ana Rojas" {
		t.Errorf("DisplayLabel over legacy type = %q", got)
	}
}

func TestBookingActive(t *testing.T) {
	if (&Booking{Status: BookingStatusCancelled}).Active() {
		t.Error("cancelled booking must not be active")
	}
	if !(&Booking{Status: BookingStatusPending}).Active() {
		t.Error("pending booking must be active")
	}
	if !(&Booking{Status: BookingStatusConfirmed}).Active() {
		t.Error("confirmed booking must be active")
	}
}
