package service

import (
	"context"
	"fmt"
	"time"

	"github.com/agendamed/agenda/internal/model"
	"github.com/agendamed/agenda/internal/timeutil"
)

// -- Mock repositories (in-memory, deterministic ids) --

type mockSlotRepo struct {
	seq   int
	slots map[string]*model.Slot
	// deleteCalls records the exact id sets handed to Delete, for
	// asserting the defensive id filtering.
	deleteCalls [][]string
}

func newMockSlotRepo() *mockSlotRepo {
	return &mockSlotRepo{slots: make(map[string]*model.Slot)}
}

func (m *mockSlotRepo) ListByProfessional(_ context.Context, professionalID, dateFrom, dateTo string) ([]*model.Slot, error) {
	var out []*model.Slot
	for _, s := range m.slots {
		if s.ProfessionalID == professionalID && s.Date >= dateFrom && s.Date <= dateTo {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSlotRepo) ListByIDs(_ context.Context, ids []string) ([]*model.Slot, error) {
	var out []*model.Slot
	for _, id := range ids {
		if s, ok := m.slots[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSlotRepo) GetByID(_ context.Context, id string) (*model.Slot, error) {
	s, ok := m.slots[id]
	if !ok {
		return nil, nil
	}
	return s, nil
}

func (m *mockSlotRepo) Create(_ context.Context, slot *model.Slot) error {
	m.seq++
	if slot.ID == "" {
		slot.ID = fmt.Sprintf("slot-%d", m.seq)
	}
	slot.CreatedAt = time.Now()
	slot.UpdatedAt = slot.CreatedAt
	m.slots[slot.ID] = slot
	return nil
}

func (m *mockSlotRepo) CreateBatch(ctx context.Context, slots []*model.Slot) error {
	for _, s := range slots {
		if err := m.Create(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockSlotRepo) Update(_ context.Context, slot *model.Slot) error {
	if _, ok := m.slots[slot.ID]; !ok {
		return fmt.Errorf("slot %s not found", slot.ID)
	}
	slot.UpdatedAt = time.Now()
	m.slots[slot.ID] = slot
	return nil
}

func (m *mockSlotRepo) UpdateByTemplate(_ context.Context, templateID string, attrs model.TemplateAttrs) (int64, error) {
	var n int64
	for _, s := range m.slots {
		if s.TemplateID != templateID {
			continue
		}
		s.Type = attrs.Type
		s.Profession = attrs.Profession
		s.Color = attrs.Color
		s.Notes = attrs.Notes
		s.DurationMinutes = attrs.DurationMinutes
		s.EndTime = timeutil.FormatMinutes(timeutil.ToMinutes(s.StartTime) + attrs.DurationMinutes)
		n++
	}
	return n, nil
}

func (m *mockSlotRepo) CountByTemplate(_ context.Context, templateID string) (int, error) {
	n := 0
	for _, s := range m.slots {
		if s.TemplateID == templateID {
			n++
		}
	}
	return n, nil
}

func (m *mockSlotRepo) Delete(_ context.Context, ids []string) error {
	m.deleteCalls = append(m.deleteCalls, ids)
	for _, id := range ids {
		delete(m.slots, id)
	}
	return nil
}

type mockBookingRepo struct {
	seq      int
	bookings map[string]*model.Booking
}

func newMockBookingRepo() *mockBookingRepo {
	return &mockBookingRepo{bookings: make(map[string]*model.Booking)}
}

func (m *mockBookingRepo) ListByProfessional(_ context.Context, professionalID, dateFrom, dateTo string) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, b := range m.bookings {
		if b.ProfessionalID == professionalID && b.Date >= dateFrom && b.Date <= dateTo {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBookingRepo) ListBySlotIDs(_ context.Context, slotIDs []string) ([]*model.Booking, error) {
	want := make(map[string]bool, len(slotIDs))
	for _, id := range slotIDs {
		want[id] = true
	}
	var out []*model.Booking
	for _, b := range m.bookings {
		if want[b.SlotID] {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBookingRepo) GetByID(_ context.Context, id string) (*model.Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, nil
	}
	return b, nil
}

func (m *mockBookingRepo) Create(_ context.Context, booking *model.Booking) error {
	m.seq++
	if booking.ID == "" {
		booking.ID = fmt.Sprintf("booking-%d", m.seq)
	}
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	m.bookings[booking.ID] = booking
	return nil
}

func (m *mockBookingRepo) Update(_ context.Context, booking *model.Booking) error {
	if _, ok := m.bookings[booking.ID]; !ok {
		return fmt.Errorf("booking %s not found", booking.ID)
	}
	booking.UpdatedAt = time.Now()
	m.bookings[booking.ID] = booking
	return nil
}

func (m *mockBookingRepo) Delete(_ context.Context, id string) error {
	delete(m.bookings, id)
	return nil
}

type mockTemplateRepo struct {
	seq       int
	templates map[string]*model.SlotTemplate
}

func newMockTemplateRepo() *mockTemplateRepo {
	return &mockTemplateRepo{templates: make(map[string]*model.SlotTemplate)}
}

func (m *mockTemplateRepo) ListByProfessional(_ context.Context, professionalID string) ([]*model.SlotTemplate, error) {
	var out []*model.SlotTemplate
	for _, t := range m.templates {
		if t.ProfessionalID == professionalID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTemplateRepo) GetByID(_ context.Context, id string) (*model.SlotTemplate, error) {
	t, ok := m.templates[id]
	if !ok {
		return nil, nil
	}
	return t, nil
}

func (m *mockTemplateRepo) Create(_ context.Context, tpl *model.SlotTemplate) error {
	m.seq++
	if tpl.ID == "" {
		tpl.ID = fmt.Sprintf("template-%d", m.seq)
	}
	tpl.CreatedAt = time.Now()
	tpl.UpdatedAt = tpl.CreatedAt
	m.templates[tpl.ID] = tpl
	return nil
}

func (m *mockTemplateRepo) Update(_ context.Context, tpl *model.SlotTemplate) error {
	if _, ok := m.templates[tpl.ID]; !ok {
		return fmt.Errorf("template %s not found", tpl.ID)
	}
	tpl.UpdatedAt = time.Now()
	m.templates[tpl.ID] = tpl
	return nil
}

func (m *mockTemplateRepo) Delete(_ context.Context, id string) error {
	delete(m.templates, id)
	return nil
}
