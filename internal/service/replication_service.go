package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/agendamed/agenda/internal/metrics"
	"github.com/agendamed/agenda/internal/model"
	"github.com/agendamed/agenda/internal/timeutil"
)

// ReplicationService copies the slot structure of one calendar week to
// other weeks, preserving day-of-week alignment.
type ReplicationService struct {
	slots    SlotRepository
	schedule *ScheduleService
	logger   *zap.Logger
}

func NewReplicationService(slots SlotRepository, schedule *ScheduleService, logger *zap.Logger) *ReplicationService {
	return &ReplicationService{slots: slots, schedule: schedule, logger: logger}
}

// WeekCopyResult reports the outcome for one target week.
type WeekCopyResult struct {
	TargetMonday string `json:"target_monday"`
	Created      int    `json:"created"`
	Duplicates   int    `json:"duplicates"`
	Rejected     int    `json:"rejected"` // blocked by overlaps in the target week
}

// CopyWeek replicates every slot of the professional's source week into
// each target week. Sundays are skipped, as are targets that already hold
// a slot with the same date, interval and base type. Zero eligible copies
// is a normal outcome, not an error.
func (s *ReplicationService) CopyWeek(ctx context.Context, professionalID, sourceMonday string, targetMondays []string) ([]WeekCopyResult, error) {
	if professionalID == "" {
		return nil, &ValidationError{Field: "professional_id", Reason: "required"}
	}
	sourceMonday = timeutil.MondayOf(sourceMonday)

	sourceSlots, err := s.slots.ListByProfessional(ctx, professionalID, sourceMonday, timeutil.AddDays(sourceMonday, 6))
	if err != nil {
		return nil, fmt.Errorf("list source week: %w", err)
	}

	results := make([]WeekCopyResult, 0, len(targetMondays))
	for _, target := range targetMondays {
		target = timeutil.MondayOf(target)
		res, err := s.copyIntoWeek(ctx, professionalID, sourceMonday, target, sourceSlots)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
		if res.Created > 0 {
			metrics.WeeksCopied.Inc()
		}
	}
	return results, nil
}

func (s *ReplicationService) copyIntoWeek(ctx context.Context, professionalID, sourceMonday, targetMonday string, sourceSlots []*model.Slot) (WeekCopyResult, error) {
	res := WeekCopyResult{TargetMonday: targetMonday}

	existing, err := s.slots.ListByProfessional(ctx, professionalID, targetMonday, timeutil.AddDays(targetMonday, 6))
	if err != nil {
		return res, fmt.Errorf("list target week: %w", err)
	}
	occupied := make(map[string]bool, len(existing))
	for _, e := range existing {
		occupied[duplicateKey(e.Date, e.StartTime, e.EndTime, e.BaseType())] = true
	}

	var payloads []*model.Slot
	for _, src := range sourceSlots {
		offset := timeutil.DaysBetween(sourceMonday, src.Date)
		if offset < 0 || offset > 6 {
			continue
		}
		date := timeutil.AddDays(targetMonday, offset)
		if timeutil.IsSunday(date) {
			continue
		}
		if occupied[duplicateKey(date, src.StartTime, src.EndTime, src.BaseType())] {
			res.Duplicates++
			continue
		}
		payloads = append(payloads, &model.Slot{
			ProfessionalID:  professionalID,
			TemplateID:      src.TemplateID,
			Date:            date,
			StartTime:       src.StartTime,
			EndTime:         src.EndTime,
			DurationMinutes: src.DurationMinutes,
			Type:            src.BaseType(), // copies never inherit display suffixes
			Color:           src.Color,
			Profession:      src.Profession,
			Notes:           src.Notes,
		})
	}
	if len(payloads) == 0 {
		return res, nil
	}

	created, err := s.schedule.CreateSlotsBatch(ctx, payloads)
	if err == nil {
		res.Created = len(created)
		s.logger.Info("week copied",
			zap.String("professional_id", professionalID),
			zap.String("target_monday", targetMonday),
			zap.Int("created", res.Created),
			zap.Int("duplicates", res.Duplicates),
		)
		return res, nil
	}

	// The batch path is all-or-nothing; when some copies collide with
	// target-week content, fall back to placing the rest one by one and
	// accumulate per-item outcomes.
	var batchErr *BatchValidationError
	if !errors.As(err, &batchErr) {
		return res, err
	}
	for _, p := range payloads {
		if _, err := s.schedule.CreateSlot(ctx, p); err != nil {
			var conflict *ConflictError
			var invalid *ValidationError
			if errors.As(err, &conflict) || errors.As(err, &invalid) {
				res.Rejected++
				continue
			}
			return res, err
		}
		res.Created++
	}

	s.logger.Info("week copied with rejections",
		zap.String("professional_id", professionalID),
		zap.String("target_monday", targetMonday),
		zap.Int("created", res.Created),
		zap.Int("duplicates", res.Duplicates),
		zap.Int("rejected", res.Rejected),
	)
	return res, nil
}

func duplicateKey(date, start, end, baseType string) string {
	return date + "|" + start + "|" + end + "|" + baseType
}
