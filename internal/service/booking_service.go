package service

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/agendamed/agenda/internal/metrics"
	"github.com/agendamed/agenda/internal/model"
	"github.com/agendamed/agenda/internal/notify"
	"github.com/agendamed/agenda/internal/timeutil"
)

// Slot display color while a booking is pending. The slot's own color is
// recorded on the booking and restored on deletion.
const pendingSlotColor = "#f39c12"

// BookingService assigns patients to slots and manages booking lifecycle.
type BookingService struct {
	slots    SlotRepository
	bookings BookingRepository
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewBookingService(slots SlotRepository, bookings BookingRepository, notifier notify.Notifier, logger *zap.Logger) *BookingService {
	return &BookingService{
		slots:    slots,
		bookings: bookings,
		notifier: notifier,
		logger:   logger,
	}
}

// BookingRequest is the patient payload for creating a booking.
type BookingRequest struct {
	PatientID     string `json:"patient_id"`
	PatientName   string `json:"patient_name"`
	StartTime     string `json:"start_time,omitempty"` // optional; clamped into the slot
	EndTime       string `json:"end_time,omitempty"`
	IsOverbooking bool   `json:"is_overbooking"`
	Notes         string `json:"notes"`
}

// CreateBooking places a patient into a slot. The booking starts pending,
// freezes the slot's current type, and recolors the slot after recording
// its original color. A slot with an active booking rejects a second one
// unless the request is flagged as overbooking (sobrecupo).
func (s *BookingService) CreateBooking(ctx context.Context, slotID string, req BookingRequest) (*model.Booking, error) {
	timer := prometheus.NewTimer(metrics.OperationDuration.WithLabelValues("create_booking"))
	defer timer.ObserveDuration()

	if req.PatientID == "" {
		return nil, &ValidationError{Field: "patient_id", Reason: "required"}
	}

	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}
	if slot == nil {
		return nil, &NotFoundError{Entity: "slot", ID: slotID}
	}

	existing, err := s.bookings.ListBySlotIDs(ctx, []string{slotID})
	if err != nil {
		return nil, fmt.Errorf("list slot bookings: %w", err)
	}
	for _, b := range existing {
		if b.Active() && !req.IsOverbooking {
			metrics.ConflictsRejected.WithLabelValues("create_booking").Inc()
			return nil, &ConflictError{
				Operation:           "create_booking",
				CollidesWithBooking: true,
				CollidingBookingIDs: []string{b.ID},
			}
		}
	}

	slotStart := timeutil.ToMinutes(slot.StartTime)
	slotEnd := timeutil.ToMinutes(slot.EndTime)
	start, end := slotStart, slotEnd
	if req.StartTime != "" && req.EndTime != "" {
		start = timeutil.Clamp(timeutil.ToMinutes(req.StartTime), slotStart, slotEnd)
		end = timeutil.Clamp(timeutil.ToMinutes(req.EndTime), slotStart, slotEnd)
		if start >= end {
			start, end = slotStart, slotEnd
		}
	}

	booking := &model.Booking{
		SlotID:            slot.ID,
		ProfessionalID:    slot.ProfessionalID,
		PatientID:         req.PatientID,
		PatientName:       req.PatientName,
		Date:              slot.Date,
		StartTime:         timeutil.FormatMinutes(start),
		EndTime:           timeutil.FormatMinutes(end),
		Type:              slot.Type, // frozen; later slot edits never touch it
		Status:            model.BookingStatusPending,
		IsOverbooking:     req.IsOverbooking,
		Notes:             req.Notes,
		OriginalSlotColor: slot.Color,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	slot.Color = pendingSlotColor
	if err := s.slots.Update(ctx, slot); err != nil {
		return nil, fmt.Errorf("recolor slot: %w", err)
	}

	metrics.BookingsCreated.Inc()
	s.notifier.BookingsChanged(ctx, booking.ProfessionalID, booking.Date)
	s.notifier.SlotsChanged(ctx, slot.ProfessionalID, slot.Date)
	s.logger.Info("booking created",
		zap.String("booking_id", booking.ID),
		zap.String("slot_id", slot.ID),
		zap.String("patient_id", req.PatientID),
		zap.Bool("overbooking", req.IsOverbooking),
	)
	return booking, nil
}

// DeleteBooking removes a booking, restores the slot's original color and
// strips any legacy " - " display suffix the type field may still carry.
func (s *BookingService) DeleteBooking(ctx context.Context, id string) error {
	timer := prometheus.NewTimer(metrics.OperationDuration.WithLabelValues("delete_booking"))
	defer timer.ObserveDuration()

	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return &NotFoundError{Entity: "booking", ID: id}
	}

	if err := s.bookings.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}

	slot, err := s.slots.GetByID(ctx, booking.SlotID)
	if err != nil {
		return fmt.Errorf("get slot: %w", err)
	}
	if slot != nil {
		if booking.OriginalSlotColor != "" {
			slot.Color = booking.OriginalSlotColor
		}
		slot.Type = slot.BaseType()
		if err := s.slots.Update(ctx, slot); err != nil {
			return fmt.Errorf("restore slot: %w", err)
		}
		s.notifier.SlotsChanged(ctx, slot.ProfessionalID, slot.Date)
	}

	metrics.BookingsDeleted.Inc()
	s.notifier.BookingsChanged(ctx, booking.ProfessionalID, booking.Date)
	s.logger.Info("booking deleted",
		zap.String("booking_id", id),
		zap.String("slot_id", booking.SlotID),
	)
	return nil
}

// SetBookingStatus toggles between pending and confirmed.
func (s *BookingService) SetBookingStatus(ctx context.Context, id string, status model.BookingStatus) (*model.Booking, error) {
	if status != model.BookingStatusPending && status != model.BookingStatusConfirmed {
		return nil, &ValidationError{Field: "status", Reason: "must be pending or confirmed"}
	}

	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, &NotFoundError{Entity: "booking", ID: id}
	}

	booking.Status = status
	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("update booking status: %w", err)
	}

	s.notifier.BookingsChanged(ctx, booking.ProfessionalID, booking.Date)
	s.logger.Info("booking status updated",
		zap.String("booking_id", id),
		zap.String("status", string(status)),
	)
	return booking, nil
}
