package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/agendamed/agenda/internal/model"
	"github.com/agendamed/agenda/internal/notify"
)

// PropagationDecision is the caller's answer to the confirmation step
// when a template with materialized slots is edited.
type PropagationDecision string

const (
	// DecisionUnspecified means the caller has not been asked yet.
	DecisionUnspecified PropagationDecision = ""
	// DecisionPropagate cascades the edit to every materialized slot.
	DecisionPropagate PropagationDecision = "propagate"
	// DecisionTemplateOnly updates the definition without touching slots.
	DecisionTemplateOnly PropagationDecision = "template-only"
)

// PropagationState is the outcome of a template save.
type PropagationState string

const (
	// StateConfirming: the template has materialized slots and the caller
	// must choose a decision before anything is written.
	StateConfirming PropagationState = "confirming"
	// StateApplied: template and all materialized slots were updated.
	StateApplied PropagationState = "applied"
	// StateTemplateOnly: only the template definition was updated.
	StateTemplateOnly PropagationState = "template-only-updated"
)

// PropagationResult reports what a template save did.
type PropagationResult struct {
	State         PropagationState `json:"state"`
	InstanceCount int              `json:"instance_count"`
	UpdatedSlots  int64            `json:"updated_slots"`
}

// TemplateService manages slot templates and the propagation of template
// edits to their materialized slots.
type TemplateService struct {
	templates TemplateRepository
	slots     SlotRepository
	schedule  *ScheduleService
	notifier  notify.Notifier
	logger    *zap.Logger
}

func NewTemplateService(templates TemplateRepository, slots SlotRepository, schedule *ScheduleService, notifier notify.Notifier, logger *zap.Logger) *TemplateService {
	return &TemplateService{
		templates: templates,
		slots:     slots,
		schedule:  schedule,
		notifier:  notifier,
		logger:    logger,
	}
}

// CreateTemplate validates and stores a new template definition.
func (s *TemplateService) CreateTemplate(ctx context.Context, tpl *model.SlotTemplate) (*model.SlotTemplate, error) {
	if tpl.ProfessionalID == "" {
		return nil, &ValidationError{Field: "professional_id", Reason: "required"}
	}
	if tpl.DurationMinutes <= 0 {
		return nil, &ValidationError{Field: "duration_minutes", Reason: "must be positive"}
	}
	if tpl.Type == "" {
		return nil, &ValidationError{Field: "type", Reason: "required"}
	}
	if err := s.templates.Create(ctx, tpl); err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	s.logger.Info("template created",
		zap.String("template_id", tpl.ID),
		zap.String("type", tpl.Type),
		zap.Int("duration", tpl.DurationMinutes),
	)
	return tpl, nil
}

// ListTemplates returns a professional's template definitions.
func (s *TemplateService) ListTemplates(ctx context.Context, professionalID string) ([]*model.SlotTemplate, error) {
	return s.templates.ListByProfessional(ctx, professionalID)
}

// SaveEdits persists edits to an existing template.
//
// With zero materialized slots the update is applied directly. With one
// or more, the first call (decision unspecified) writes nothing and
// returns StateConfirming with the instance count; the caller re-submits
// with DecisionPropagate or DecisionTemplateOnly.
func (s *TemplateService) SaveEdits(ctx context.Context, tpl *model.SlotTemplate, decision PropagationDecision) (*PropagationResult, error) {
	if tpl.DurationMinutes <= 0 {
		return nil, &ValidationError{Field: "duration_minutes", Reason: "must be positive"}
	}

	current, err := s.templates.GetByID(ctx, tpl.ID)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	if current == nil {
		return nil, &NotFoundError{Entity: "template", ID: tpl.ID}
	}

	count, err := s.slots.CountByTemplate(ctx, tpl.ID)
	if err != nil {
		return nil, fmt.Errorf("count template slots: %w", err)
	}

	if count > 0 && decision == DecisionUnspecified {
		return &PropagationResult{State: StateConfirming, InstanceCount: count}, nil
	}

	if err := s.templates.Update(ctx, tpl); err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}

	if count == 0 || decision == DecisionTemplateOnly {
		s.logger.Info("template updated",
			zap.String("template_id", tpl.ID),
			zap.Int("instance_count", count),
		)
		return &PropagationResult{State: StateTemplateOnly, InstanceCount: count}, nil
	}

	updated, err := s.slots.UpdateByTemplate(ctx, tpl.ID, tpl.Attrs())
	if err != nil {
		return nil, fmt.Errorf("propagate template: %w", err)
	}

	// The cascade can touch many dates; signal a wholesale refresh.
	s.notifier.SlotsChanged(ctx, tpl.ProfessionalID, "")
	s.logger.Info("template propagated",
		zap.String("template_id", tpl.ID),
		zap.Int64("updated_slots", updated),
	)
	return &PropagationResult{State: StateApplied, InstanceCount: count, UpdatedSlots: updated}, nil
}

// GenerateSlots materializes a template across [rangeStart, rangeEnd) on
// the given date, submitting the instances through the engine's batch
// path so the usual validation and collision rules apply.
func (s *TemplateService) GenerateSlots(ctx context.Context, templateID, date, rangeStart, rangeEnd string) ([]*model.Slot, error) {
	tpl, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	if tpl == nil {
		return nil, &NotFoundError{Entity: "template", ID: templateID}
	}

	payloads := GenerateInstances(tpl.ProfessionalID, tpl.ID, date, rangeStart, rangeEnd, tpl.Attrs())
	if len(payloads) == 0 {
		return nil, &ValidationError{Field: "range", Reason: "no full instance fits the range"}
	}
	return s.schedule.CreateSlotsBatch(ctx, payloads)
}

// DeleteTemplate removes a template definition. Materialized slots keep
// their attributes; only the back-reference goes stale, which the
// repository clears.
func (s *TemplateService) DeleteTemplate(ctx context.Context, id string) error {
	tpl, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get template: %w", err)
	}
	if tpl == nil {
		return &NotFoundError{Entity: "template", ID: id}
	}
	if err := s.templates.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	s.logger.Info("template deleted", zap.String("template_id", id))
	return nil
}
