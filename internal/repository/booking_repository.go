package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agendamed/agenda/internal/model"
)

const bookingColumns = `id, slot_id, professional_id, patient_id, patient_name,
	to_char(date, 'YYYY-MM-DD'),
	coalesce(to_char(start_time, 'HH24:MI'), ''), coalesce(to_char(end_time, 'HH24:MI'), ''),
	type, status, is_overbooking, notes, coalesce(original_slot_color, ''),
	created_at, updated_at`

type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(
		&b.ID,
		&b.SlotID,
		&b.ProfessionalID,
		&b.PatientID,
		&b.PatientName,
		&b.Date,
		&b.StartTime,
		&b.EndTime,
		&b.Type,
		&b.Status,
		&b.IsOverbooking,
		&b.Notes,
		&b.OriginalSlotColor,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) collect(rows pgx.Rows) ([]*model.Booking, error) {
	defer rows.Close()
	var bookings []*model.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

// ListByProfessional returns the professional's bookings with date in
// [dateFrom, dateTo].
func (r *BookingRepository) ListByProfessional(ctx context.Context, professionalID, dateFrom, dateTo string) ([]*model.Booking, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM bookings
		WHERE professional_id = $1
		  AND date >= $2::date
		  AND date <= $3::date
		ORDER BY date, start_time
	`, bookingColumns)

	rows, err := r.pool.Query(ctx, query, professionalID, dateFrom, dateTo)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return r.collect(rows)
}

// ListBySlotIDs returns every booking referencing one of the given slots,
// regardless of date range.
func (r *BookingRepository) ListBySlotIDs(ctx context.Context, slotIDs []string) ([]*model.Booking, error) {
	if len(slotIDs) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE slot_id = ANY($1)`, bookingColumns)

	rows, err := r.pool.Query(ctx, query, slotIDs)
	if err != nil {
		return nil, fmt.Errorf("list bookings by slots: %w", err)
	}
	return r.collect(rows)
}

// GetByID returns the booking or nil when it does not exist.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE id = $1`, bookingColumns)

	booking, err := scanBooking(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}
	return booking, nil
}

// Create inserts a booking, assigning an id when the payload has none.
func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	query := `
		INSERT INTO bookings (id, slot_id, professional_id, patient_id, patient_name,
			date, start_time, end_time, type, status, is_overbooking, notes, original_slot_color)
		VALUES ($1, $2, $3, $4, $5, $6::date, nullif($7, '')::time, nullif($8, '')::time,
			$9, $10, $11, $12, nullif($13, ''))
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		booking.ID,
		booking.SlotID,
		booking.ProfessionalID,
		booking.PatientID,
		booking.PatientName,
		booking.Date,
		booking.StartTime,
		booking.EndTime,
		booking.Type,
		booking.Status,
		booking.IsOverbooking,
		booking.Notes,
		booking.OriginalSlotColor,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

// Update rewrites a booking's placement and status.
func (r *BookingRepository) Update(ctx context.Context, booking *model.Booking) error {
	query := `
		UPDATE bookings
		SET date = $2::date, start_time = nullif($3, '')::time, end_time = nullif($4, '')::time,
			status = $5, notes = $6, updated_at = now()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		booking.ID,
		booking.Date,
		booking.StartTime,
		booking.EndTime,
		booking.Status,
		booking.Notes,
	)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("booking not found")
	}
	return nil
}

// Delete removes a booking.
func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("booking not found")
	}
	return nil
}
