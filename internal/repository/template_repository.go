package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agendamed/agenda/internal/model"
)

const templateColumns = `id, professional_id, type, duration_minutes,
	profession, color, notes, created_at, updated_at`

type TemplateRepository struct {
	pool *pgxpool.Pool
}

func NewTemplateRepository(pool *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{pool: pool}
}

func scanTemplate(row pgx.Row) (*model.SlotTemplate, error) {
	var t model.SlotTemplate
	err := row.Scan(
		&t.ID,
		&t.ProfessionalID,
		&t.Type,
		&t.DurationMinutes,
		&t.Profession,
		&t.Color,
		&t.Notes,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByProfessional returns the professional's templates ordered by type.
func (r *TemplateRepository) ListByProfessional(ctx context.Context, professionalID string) ([]*model.SlotTemplate, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM slot_templates
		WHERE professional_id = $1
		ORDER BY type
	`, templateColumns)

	rows, err := r.pool.Query(ctx, query, professionalID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []*model.SlotTemplate
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, tpl)
	}
	return templates, rows.Err()
}

// GetByID returns the template or nil when it does not exist.
func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*model.SlotTemplate, error) {
	query := fmt.Sprintf(`SELECT %s FROM slot_templates WHERE id = $1`, templateColumns)

	tpl, err := scanTemplate(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get template by id: %w", err)
	}
	return tpl, nil
}

// Create inserts a template, assigning an id when the payload has none.
func (r *TemplateRepository) Create(ctx context.Context, template *model.SlotTemplate) error {
	if template.ID == "" {
		template.ID = uuid.NewString()
	}
	query := `
		INSERT INTO slot_templates (id, professional_id, type, duration_minutes, profession, color, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		template.ID,
		template.ProfessionalID,
		template.Type,
		template.DurationMinutes,
		template.Profession,
		template.Color,
		template.Notes,
	).Scan(&template.CreatedAt, &template.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}

// Update rewrites a template's attributes.
func (r *TemplateRepository) Update(ctx context.Context, template *model.SlotTemplate) error {
	query := `
		UPDATE slot_templates
		SET type = $2, duration_minutes = $3, profession = $4, color = $5,
			notes = $6, updated_at = now()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		template.ID,
		template.Type,
		template.DurationMinutes,
		template.Profession,
		template.Color,
		template.Notes,
	)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("template not found")
	}
	return nil
}

// Delete removes a template. Materialized slots keep their attributes;
// the foreign key only clears their back-reference.
func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM slot_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("template not found")
	}
	return nil
}
