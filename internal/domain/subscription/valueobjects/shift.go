package valueobjects

import "fmt"

// Shift is a delivery slot within a day. Sundays run only the morning shift.
type Shift string

const (
	ShiftMorning Shift = "morning"
	ShiftEvening Shift = "evening"
)

func (s Shift) String() string {
	return string(s)
}

func (s Shift) Valid() bool {
	return s == ShiftMorning || s == ShiftEvening
}

// ParseShift parses a shift name, rejecting anything but morning/evening.
func ParseShift(value string) (Shift, error) {
	s := Shift(value)
	if !s.Valid() {
		return "", fmt.Errorf("unknown shift: %q", value)
	}
	return s, nil
}

// AllShifts is the canonical morning-then-evening ordering used everywhere
// shifts are iterated. Output ordering of delivery views depends on it.
var AllShifts = []Shift{ShiftMorning, ShiftEvening}
