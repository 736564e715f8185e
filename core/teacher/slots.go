package teacher

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Weekday is one of the 5 working days an office-hours grid spans.
type Weekday uint8

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday

	NumWeekdays = 5
)

var weekdayCodes = [NumWeekdays]string{"Mon", "Tue", "Wed", "Thu", "Fri"}

func (d Weekday) String() string { return weekdayCodes[d] }

func ParseWeekday(code string) (Weekday, error) {
	for i, c := range weekdayCodes {
		if c == code {
			return Weekday(i), nil
		}
	}
	return 0, errors.Errorf("unknown weekday code %q", code)
}

// Weekdays returns all days in grid order.
func Weekdays() [NumWeekdays]Weekday {
	return [NumWeekdays]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}
}

// TimeSlot is one of the 9 fixed one-hour consultation slots of a day.
type TimeSlot uint8

const NumTimeSlots = 9

var slotLabels = [NumTimeSlots]string{"9-10", "10-11", "11-12", "12-1", "1-2", "2-3", "3-4", "4-5", "5-6"}

func (s TimeSlot) String() string { return slotLabels[s] }

func ParseTimeSlot(label string) (TimeSlot, error) {
	for i, l := range slotLabels {
		if l == label {
			return TimeSlot(i), nil
		}
	}
	return 0, errors.Errorf("unknown time slot label %q", label)
}

// TimeSlots returns all slots in grid order.
func TimeSlots() [NumTimeSlots]TimeSlot {
	var slots [NumTimeSlots]TimeSlot
	for i := range slots {
		slots[i] = TimeSlot(i)
	}
	return slots
}

// SlotSet holds the selected time slots of a single day as a bit set.
// Membership only; slot order within a day carries no meaning.
type SlotSet uint16

func (ss SlotSet) Has(s TimeSlot) bool { return ss&(1<<s) != 0 }
func (ss *SlotSet) Add(s TimeSlot)     { *ss |= 1 << s }
func (ss *SlotSet) Remove(s TimeSlot)  { *ss &^= 1 << s }
func (ss SlotSet) IsEmpty() bool       { return ss == 0 }

func (ss SlotSet) Labels() []string {
	labels := make([]string, 0, NumTimeSlots)
	for _, s := range TimeSlots() {
		if ss.Has(s) {
			labels = append(labels, s.String())
		}
	}
	return labels
}

// WeekGrid is the weekly availability grid: 5 days of 9 toggleable slots.
// The zero value is a fully empty grid.
type WeekGrid [NumWeekdays]SlotSet

// Toggle adds the slot to the day if absent and removes it if present.
func (g *WeekGrid) Toggle(d Weekday, s TimeSlot) {
	if g[d].Has(s) {
		g[d].Remove(s)
	} else {
		g[d].Add(s)
	}
}

func (g WeekGrid) Has(d Weekday, s TimeSlot) bool { return g[d].Has(s) }

func (g WeekGrid) IsEmpty() bool {
	for _, ss := range g {
		if !ss.IsEmpty() {
			return false
		}
	}
	return true
}

// Matrix renders the grid as the 5×9 boolean matrix the profile pages draw.
func (g WeekGrid) Matrix() [NumWeekdays][NumTimeSlots]bool {
	var m [NumWeekdays][NumTimeSlots]bool
	for _, d := range Weekdays() {
		for _, s := range TimeSlots() {
			m[d][s] = g.Has(d, s)
		}
	}
	return m
}

// MarshalJSON serializes the grid as {"Mon":["9-10",...],...}.
// Days without any selected slot are omitted; an absent day and an empty
// day are the same state.
func (g WeekGrid) MarshalJSON() ([]byte, error) {
	m := make(map[string][]string, NumWeekdays)
	for _, d := range Weekdays() {
		if !g[d].IsEmpty() {
			m[d.String()] = g[d].Labels()
		}
	}
	return json.Marshal(m)
}

// UnmarshalJSON parses the same shape back, restricted to the fixed
// vocabulary: unknown day keys and slot labels are dropped. Duplicate
// labels within a day collapse into one membership.
func (g *WeekGrid) UnmarshalJSON(data []byte) error {
	var m map[string][]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	var grid WeekGrid
	for code, labels := range m {
		d, err := ParseWeekday(code)
		if err != nil {
			continue
		}
		for _, label := range labels {
			s, err := ParseTimeSlot(label)
			if err != nil {
				continue
			}
			grid[d].Add(s)
		}
	}
	*g = grid
	return nil
}
