package service

import (
	"github.com/agendamed/agenda/internal/model"
	"github.com/agendamed/agenda/internal/timeutil"
)

// GenerateInstances partitions [rangeStart, rangeEnd) on the given date
// into consecutive payloads of durationMinutes each, carrying the
// template's attributes. A partial trailing instance is discarded, not
// truncated. The generator performs no collision checks; callers validate
// through the scheduling engine before committing.
func GenerateInstances(professionalID, templateID, date, rangeStart, rangeEnd string, attrs model.TemplateAttrs) []*model.Slot {
	duration := attrs.DurationMinutes
	if duration <= 0 {
		return nil
	}

	start := timeutil.ToMinutes(rangeStart)
	end := timeutil.ToMinutes(rangeEnd)

	var out []*model.Slot
	for cur := start; cur+duration <= end; cur += duration {
		out = append(out, &model.Slot{
			ProfessionalID:  professionalID,
			TemplateID:      templateID,
			Date:            date,
			StartTime:       timeutil.FormatMinutes(cur),
			EndTime:         timeutil.FormatMinutes(cur + duration),
			DurationMinutes: duration,
			Type:            attrs.Type,
			Color:           attrs.Color,
			Profession:      attrs.Profession,
			Notes:           attrs.Notes,
		})
	}
	return out
}
