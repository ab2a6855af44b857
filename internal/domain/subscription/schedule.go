package subscription

import (
	"fmt"

	"github.com/tastyaana/tiffin/internal/shared/biztime"
	vo "github.com/tastyaana/tiffin/internal/domain/subscription/valueobjects"
)

// Occurrence is one nominal delivery slot in a subscription's schedule.
// Occurrences are immutable after generation and strictly ordered by
// (date, shift); their count equals the subscription's total meal count.
type Occurrence struct {
	SequenceNumber  int               `json:"sequence_number"`
	Date            biztime.CivilDate `json:"date"`
	Shift           vo.Shift          `json:"shift"`
	IsSundaySpecial bool              `json:"is_sunday_special"`
}

// GenerateSchedule produces the ordered delivery occurrences for a plan of
// total meals starting at the given date and shift.
//
// Rules:
//   - every non-Sunday day contributes a morning and an evening occurrence
//   - Sundays contribute a single morning occurrence flagged IsSundaySpecial
//   - the first day honors the requested start shift; a requested Sunday
//     evening start skips the entire first day, since Sunday evening does
//     not exist in the plan
//   - emission stops the instant the count is exhausted, even mid-day
func GenerateSchedule(start biztime.CivilDate, startShift vo.Shift, total int) ([]Occurrence, error) {
	if total <= 0 {
		return nil, fmt.Errorf("%w: total meal count must be positive, got %d", ErrInvalidStartState, total)
	}
	if !startShift.Valid() {
		return nil, fmt.Errorf("%w: unknown start shift %q", ErrInvalidStartState, startShift)
	}
	if start.IsZero() {
		return nil, fmt.Errorf("%w: start date is required", ErrInvalidStartState)
	}

	occurrences := make([]Occurrence, 0, total)
	remaining := total
	seq := 0
	day := start

	appendOccurrence := func(date biztime.CivilDate, shift vo.Shift, sunday bool) {
		seq++
		occurrences = append(occurrences, Occurrence{
			SequenceNumber:  seq,
			Date:            date,
			Shift:           shift,
			IsSundaySpecial: sunday,
		})
		remaining--
	}

	firstDay := true
	for remaining > 0 {
		var shifts []vo.Shift
		switch {
		case day.IsSunday():
			// Single lunch slot; an evening start on a Sunday skips the day.
			if firstDay && startShift == vo.ShiftEvening {
				shifts = nil
			} else {
				shifts = []vo.Shift{vo.ShiftMorning}
			}
		case firstDay && startShift == vo.ShiftEvening:
			shifts = []vo.Shift{vo.ShiftEvening}
		default:
			shifts = vo.AllShifts
		}

		for _, shift := range shifts {
			if remaining == 0 {
				break
			}
			appendOccurrence(day, shift, day.IsSunday())
		}

		firstDay = false
		day = day.AddDays(1)
	}

	return occurrences, nil
}

// ScheduleSpanDays returns the inclusive calendar span the schedule covers.
func ScheduleSpanDays(schedule []Occurrence) int {
	if len(schedule) == 0 {
		return 0
	}
	return biztime.SpanDaysInclusive(schedule[0].Date, schedule[len(schedule)-1].Date)
}

// FindOccurrence locates the occurrence at (date, shift), or nil if the
// schedule has no slot there.
func FindOccurrence(schedule []Occurrence, date biztime.CivilDate, shift vo.Shift) *Occurrence {
	for i := range schedule {
		if schedule[i].Date.Equal(date) && schedule[i].Shift == shift {
			return &schedule[i]
		}
	}
	return nil
}
