package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agendamed/agenda/internal/model"
)

const slotColumns = `id, professional_id, to_char(date, 'YYYY-MM-DD'),
	to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
	duration_minutes, type, color, profession, notes,
	coalesce(template_id, ''), created_at, updated_at`

type SlotRepository struct {
	pool *pgxpool.Pool
}

func NewSlotRepository(pool *pgxpool.Pool) *SlotRepository {
	return &SlotRepository{pool: pool}
}

func scanSlot(row pgx.Row) (*model.Slot, error) {
	var s model.Slot
	err := row.Scan(
		&s.ID,
		&s.ProfessionalID,
		&s.Date,
		&s.StartTime,
		&s.EndTime,
		&s.DurationMinutes,
		&s.Type,
		&s.Color,
		&s.Profession,
		&s.Notes,
		&s.TemplateID,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SlotRepository) collect(rows pgx.Rows) ([]*model.Slot, error) {
	defer rows.Close()
	var slots []*model.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

// ListByProfessional returns the professional's slots with date in
// [dateFrom, dateTo], ordered by placement.
func (r *SlotRepository) ListByProfessional(ctx context.Context, professionalID, dateFrom, dateTo string) ([]*model.Slot, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM slots
		WHERE professional_id = $1
		  AND date >= $2::date
		  AND date <= $3::date
		ORDER BY date, start_time
	`, slotColumns)

	rows, err := r.pool.Query(ctx, query, professionalID, dateFrom, dateTo)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return r.collect(rows)
}

// ListByIDs returns the slots matching the given ids; unknown ids are
// simply absent from the result.
func (r *SlotRepository) ListByIDs(ctx context.Context, ids []string) ([]*model.Slot, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM slots WHERE id = ANY($1)`, slotColumns)

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("list slots by ids: %w", err)
	}
	return r.collect(rows)
}

// GetByID returns the slot or nil when it does not exist.
func (r *SlotRepository) GetByID(ctx context.Context, id string) (*model.Slot, error) {
	query := fmt.Sprintf(`SELECT %s FROM slots WHERE id = $1`, slotColumns)

	slot, err := scanSlot(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}
	return slot, nil
}

// Create inserts a slot, assigning an id when the payload has none.
func (r *SlotRepository) Create(ctx context.Context, slot *model.Slot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	query := `
		INSERT INTO slots (id, professional_id, date, start_time, end_time,
			duration_minutes, type, color, profession, notes, template_id)
		VALUES ($1, $2, $3::date, $4::time, $5::time, $6, $7, $8, $9, $10, nullif($11, ''))
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		slot.ID,
		slot.ProfessionalID,
		slot.Date,
		slot.StartTime,
		slot.EndTime,
		slot.DurationMinutes,
		slot.Type,
		slot.Color,
		slot.Profession,
		slot.Notes,
		slot.TemplateID,
	).Scan(&slot.CreatedAt, &slot.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}
	return nil
}

// CreateBatch inserts the payloads inside one transaction so a batch is
// never half-written.
func (r *SlotRepository) CreateBatch(ctx context.Context, slots []*model.Slot) error {
	if len(slots) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	query := `
		INSERT INTO slots (id, professional_id, date, start_time, end_time,
			duration_minutes, type, color, profession, notes, template_id)
		VALUES ($1, $2, $3::date, $4::time, $5::time, $6, $7, $8, $9, $10, nullif($11, ''))
	`
	for _, slot := range slots {
		if slot.ID == "" {
			slot.ID = uuid.NewString()
		}
		batch.Queue(query,
			slot.ID,
			slot.ProfessionalID,
			slot.Date,
			slot.StartTime,
			slot.EndTime,
			slot.DurationMinutes,
			slot.Type,
			slot.Color,
			slot.Profession,
			slot.Notes,
			slot.TemplateID,
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert slot batch: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit slot batch: %w", err)
	}
	return nil
}

// Update rewrites a slot's placement and attributes.
func (r *SlotRepository) Update(ctx context.Context, slot *model.Slot) error {
	query := `
		UPDATE slots
		SET date = $2::date, start_time = $3::time, end_time = $4::time,
			duration_minutes = $5, type = $6, color = $7, profession = $8,
			notes = $9, updated_at = now()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		slot.ID,
		slot.Date,
		slot.StartTime,
		slot.EndTime,
		slot.DurationMinutes,
		slot.Type,
		slot.Color,
		slot.Profession,
		slot.Notes,
	)
	if err != nil {
		return fmt.Errorf("update slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("slot not found")
	}
	return nil
}

// UpdateByTemplate cascades template attributes to every materialized
// slot. End times follow the new duration; start times stay put.
func (r *SlotRepository) UpdateByTemplate(ctx context.Context, templateID string, attrs model.TemplateAttrs) (int64, error) {
	query := `
		UPDATE slots
		SET type = $2, profession = $3, color = $4, notes = $5,
			duration_minutes = $6,
			end_time = start_time + make_interval(mins => $6),
			updated_at = now()
		WHERE template_id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		templateID,
		attrs.Type,
		attrs.Profession,
		attrs.Color,
		attrs.Notes,
		attrs.DurationMinutes,
	)
	if err != nil {
		return 0, fmt.Errorf("update slots by template: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CountByTemplate counts the materialized slots of a template.
func (r *SlotRepository) CountByTemplate(ctx context.Context, templateID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM slots WHERE template_id = $1`, templateID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count slots by template: %w", err)
	}
	return count, nil
}

// Delete removes the given slots. Missing ids are not an error.
func (r *SlotRepository) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.pool.Exec(ctx, `DELETE FROM slots WHERE id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("delete slots: %w", err)
	}
	return nil
}
