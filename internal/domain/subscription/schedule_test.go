package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/tastyaana/tiffin/internal/domain/subscription/valueobjects"
	"github.com/tastyaana/tiffin/internal/shared/biztime"
)

// 2025-01-15 is a Wednesday, 2025-01-19 a Sunday, 2025-01-20 a Monday.
func wednesday(t *testing.T) biztime.CivilDate {
	t.Helper()
	d, err := biztime.ParseCivilDate("2025-01-15")
	require.NoError(t, err)
	require.Equal(t, time.Wednesday, d.Weekday())
	return d
}

func monday(t *testing.T) biztime.CivilDate {
	t.Helper()
	d, err := biztime.ParseCivilDate("2025-01-20")
	require.NoError(t, err)
	require.Equal(t, time.Monday, d.Weekday())
	return d
}

func TestGenerateSchedule_CountAlwaysExact(t *testing.T) {
	for _, total := range []int{1, 2, 7, 10, 56, 113} {
		schedule, err := GenerateSchedule(wednesday(t), vo.ShiftMorning, total)
		require.NoError(t, err)
		assert.Len(t, schedule, total, "total=%d", total)
	}
}

func TestGenerateSchedule_SequenceNumbersMonotonic(t *testing.T) {
	schedule, err := GenerateSchedule(wednesday(t), vo.ShiftMorning, 56)
	require.NoError(t, err)

	for i, occ := range schedule {
		assert.Equal(t, i+1, occ.SequenceNumber)
		if i > 0 {
			prev := schedule[i-1]
			ordered := prev.Date.Before(occ.Date) ||
				(prev.Date.Equal(occ.Date) && prev.Shift == vo.ShiftMorning && occ.Shift == vo.ShiftEvening)
			assert.True(t, ordered, "occurrence %d out of order", i)
		}
	}
}

func TestGenerateSchedule_WednesdayMorningTen(t *testing.T) {
	// Wed AM, Wed PM, Thu AM, Thu PM, Fri AM, Fri PM, Sat AM, Sat PM,
	// Sun (single special), Mon AM. The 10th occurrence stops the sequence
	// even though Monday evening would normally follow.
	schedule, err := GenerateSchedule(wednesday(t), vo.ShiftMorning, 10)
	require.NoError(t, err)
	require.Len(t, schedule, 10)

	type slot struct {
		date   string
		shift  vo.Shift
		sunday bool
	}
	want := []slot{
		{"2025-01-15", vo.ShiftMorning, false},
		{"2025-01-15", vo.ShiftEvening, false},
		{"2025-01-16", vo.ShiftMorning, false},
		{"2025-01-16", vo.ShiftEvening, false},
		{"2025-01-17", vo.ShiftMorning, false},
		{"2025-01-17", vo.ShiftEvening, false},
		{"2025-01-18", vo.ShiftMorning, false},
		{"2025-01-18", vo.ShiftEvening, false},
		{"2025-01-19", vo.ShiftMorning, true},
		{"2025-01-20", vo.ShiftMorning, false},
	}
	for i, w := range want {
		assert.Equal(t, w.date, schedule[i].Date.String(), "occurrence %d date", i)
		assert.Equal(t, w.shift, schedule[i].Shift, "occurrence %d shift", i)
		assert.Equal(t, w.sunday, schedule[i].IsSundaySpecial, "occurrence %d sunday flag", i)
	}
}

func TestGenerateSchedule_SundaysSingleAndFlagged(t *testing.T) {
	schedule, err := GenerateSchedule(wednesday(t), vo.ShiftMorning, 56)
	require.NoError(t, err)

	perDate := map[string][]Occurrence{}
	for _, occ := range schedule {
		perDate[occ.Date.String()] = append(perDate[occ.Date.String()], occ)
	}

	last := schedule[len(schedule)-1].Date
	for dateStr, occs := range perDate {
		d, err := biztime.ParseCivilDate(dateStr)
		require.NoError(t, err)
		if d.IsSunday() {
			require.Len(t, occs, 1, "Sunday %s must have a single occurrence", dateStr)
			assert.True(t, occs[0].IsSundaySpecial)
			assert.Equal(t, vo.ShiftMorning, occs[0].Shift)
		} else if !d.Equal(last) {
			// Non-Sunday days fully inside the span carry both shifts.
			assert.Len(t, occs, 2, "weekday %s must have both shifts", dateStr)
		}
	}
}

func TestGenerateSchedule_EveningStart(t *testing.T) {
	schedule, err := GenerateSchedule(wednesday(t), vo.ShiftEvening, 4)
	require.NoError(t, err)
	require.Len(t, schedule, 4)

	assert.Equal(t, vo.ShiftEvening, schedule[0].Shift)
	assert.Equal(t, "2025-01-15", schedule[0].Date.String())
	// The next day resumes the normal two-shift pattern.
	assert.Equal(t, vo.ShiftMorning, schedule[1].Shift)
	assert.Equal(t, "2025-01-16", schedule[1].Date.String())
}

func TestGenerateSchedule_SundayEveningStartSkipsFirstDay(t *testing.T) {
	sunday, err := biztime.ParseCivilDate("2025-01-19")
	require.NoError(t, err)
	require.True(t, sunday.IsSunday())

	schedule, err := GenerateSchedule(sunday, vo.ShiftEvening, 3)
	require.NoError(t, err)
	require.Len(t, schedule, 3)

	// Sunday evening does not exist; the schedule begins Monday morning.
	assert.Equal(t, "2025-01-20", schedule[0].Date.String())
	assert.Equal(t, vo.ShiftMorning, schedule[0].Shift)
}

func TestGenerateSchedule_SundayMorningStart(t *testing.T) {
	sunday, err := biztime.ParseCivilDate("2025-01-19")
	require.NoError(t, err)

	schedule, err := GenerateSchedule(sunday, vo.ShiftMorning, 3)
	require.NoError(t, err)
	require.Len(t, schedule, 3)

	assert.Equal(t, "2025-01-19", schedule[0].Date.String())
	assert.True(t, schedule[0].IsSundaySpecial)
	assert.Equal(t, "2025-01-20", schedule[1].Date.String())
	assert.Equal(t, vo.ShiftMorning, schedule[1].Shift)
	assert.Equal(t, vo.ShiftEvening, schedule[2].Shift)
}

func TestGenerateSchedule_MondayMorning56RoundTrip(t *testing.T) {
	schedule, err := GenerateSchedule(monday(t), vo.ShiftMorning, 56)
	require.NoError(t, err)
	require.Len(t, schedule, 56)

	// Summing weekday pairs and Sunday singles across the covered span must
	// reproduce the meal count.
	span := ScheduleSpanDays(schedule)
	first := schedule[0].Date
	counted := 0
	for i := 0; i < span; i++ {
		day := first.AddDays(i)
		var dayOccs int
		for _, occ := range schedule {
			if occ.Date.Equal(day) {
				dayOccs++
			}
		}
		if day.IsSunday() {
			assert.LessOrEqual(t, dayOccs, 1, "Sunday %s", day)
		} else {
			assert.LessOrEqual(t, dayOccs, 2, "weekday %s", day)
		}
		counted += dayOccs
	}
	assert.Equal(t, 56, counted)
}

func TestGenerateSchedule_InvalidInput(t *testing.T) {
	_, err := GenerateSchedule(wednesday(t), vo.ShiftMorning, 0)
	assert.ErrorIs(t, err, ErrInvalidStartState)

	_, err = GenerateSchedule(wednesday(t), vo.ShiftMorning, -5)
	assert.ErrorIs(t, err, ErrInvalidStartState)

	_, err = GenerateSchedule(wednesday(t), vo.Shift("brunch"), 10)
	assert.ErrorIs(t, err, ErrInvalidStartState)

	_, err = GenerateSchedule(biztime.CivilDate{}, vo.ShiftMorning, 10)
	assert.ErrorIs(t, err, ErrInvalidStartState)
}

func TestScheduleSpanDays(t *testing.T) {
	assert.Equal(t, 0, ScheduleSpanDays(nil))

	schedule, err := GenerateSchedule(wednesday(t), vo.ShiftMorning, 10)
	require.NoError(t, err)
	// Wed through Mon inclusive.
	assert.Equal(t, 6, ScheduleSpanDays(schedule))
}

func TestFindOccurrence(t *testing.T) {
	schedule, err := GenerateSchedule(wednesday(t), vo.ShiftMorning, 10)
	require.NoError(t, err)

	occ := FindOccurrence(schedule, wednesday(t), vo.ShiftEvening)
	require.NotNil(t, occ)
	assert.Equal(t, 2, occ.SequenceNumber)

	// Monday evening was truncated by exhaustion.
	assert.Nil(t, FindOccurrence(schedule, monday(t), vo.ShiftEvening))
}
