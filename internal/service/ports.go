package service

import (
	"context"

	"github.com/agendamed/agenda/internal/model"
)

// SlotRepository is the durable-storage contract for slots. The pgx
// implementation lives in internal/repository; tests use in-memory mocks.
type SlotRepository interface {
	ListByProfessional(ctx context.Context, professionalID, dateFrom, dateTo string) ([]*model.Slot, error)
	ListByIDs(ctx context.Context, ids []string) ([]*model.Slot, error)
	GetByID(ctx context.Context, id string) (*model.Slot, error)
	Create(ctx context.Context, slot *model.Slot) error
	CreateBatch(ctx context.Context, slots []*model.Slot) error
	Update(ctx context.Context, slot *model.Slot) error
	UpdateByTemplate(ctx context.Context, templateID string, attrs model.TemplateAttrs) (int64, error)
	CountByTemplate(ctx context.Context, templateID string) (int, error)
	Delete(ctx context.Context, ids []string) error
}

// BookingRepository is the durable-storage contract for bookings.
type BookingRepository interface {
	ListByProfessional(ctx context.Context, professionalID, dateFrom, dateTo string) ([]*model.Booking, error)
	ListBySlotIDs(ctx context.Context, slotIDs []string) ([]*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	Create(ctx context.Context, booking *model.Booking) error
	Update(ctx context.Context, booking *model.Booking) error
	Delete(ctx context.Context, id string) error
}

// TemplateRepository is the durable-storage contract for slot templates.
type TemplateRepository interface {
	ListByProfessional(ctx context.Context, professionalID string) ([]*model.SlotTemplate, error)
	GetByID(ctx context.Context, id string) (*model.SlotTemplate, error)
	Create(ctx context.Context, tpl *model.SlotTemplate) error
	Update(ctx context.Context, tpl *model.SlotTemplate) error
	Delete(ctx context.Context, id string) error
}
