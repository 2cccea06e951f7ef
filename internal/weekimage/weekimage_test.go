package weekimage

import (
	"bytes"
	"image/color"
	"testing"
	"time"

	"github.com/agendamed/agenda/internal/model"
)

func TestRenderProducesPNG(t *testing.T) {
	monday := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	slots := []*model.Slot{
		{ID: "s1", ProfessionalID: "prof-1", Date: "2024-01-08", StartTime: "09:00", EndTime: "09:45", Type: "Control", Color: "#3498db"},
		{ID: "s2", ProfessionalID: "prof-1", Date: "2024-01-10", StartTime: "11:00", EndTime: "12:00", Type: "Evaluación", Color: "#2ecc71"},
	}
	bookings := []*model.Booking{
		{ID: "b1", SlotID: "s1", PatientName: "Ana Rojas", Status: model.BookingStatusConfirmed},
	}

	png, err := Render(monday, slots, bookings)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(png) == 0 {
		t.Fatal("empty image")
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Errorf("output is not a PNG, starts with %q", png[:4])
	}
}

func TestRenderEmptyWeek(t *testing.T) {
	png, err := Render(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), nil, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(png) == 0 {
		t.Fatal("empty image")
	}
}

func TestParseHexColor(t *testing.T) {
	fallback := color.RGBA{1, 2, 3, 255}

	got := parseHexColor("#3498db", fallback)
	want := color.RGBA{0x34, 0x98, 0xdb, 255}
	if got != want {
		t.Errorf("parseHexColor = %v, want %v", got, want)
	}

	for _, bad := range []string{"", "3498db", "#34", "#zzzzzz"} {
		if got := parseHexColor(bad, fallback); got != fallback {
			t.Errorf("parseHexColor(%q) = %v, want fallback", bad, got)
		}
	}
}

func TestActivePatientNamesSkipsCancelled(t *testing.T) {
	names := activePatientNames([]*model.Booking{
		{SlotID: "s1", PatientName: "Ana", Status: model.BookingStatusConfirmed},
		{SlotID: "s2", PatientName: "Luis", Status: model.BookingStatusCancelled},
	})
	if names["s1"] != "Ana" {
		t.Errorf("s1 name = %q", names["s1"])
	}
	if _, ok := names["s2"]; ok {
		t.Error("cancelled booking leaked into the name map")
	}
}
