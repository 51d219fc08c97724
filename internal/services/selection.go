package services

// DaySelection is the calendar screen's selected-day state.
// The zero value is Idle.
type DaySelection struct {
	date     Date
	selected bool
}

// Toggle selects d, or returns to Idle when d is already selected.
func (s DaySelection) Toggle(d Date) DaySelection {
	if s.selected && s.date == d {
		return DaySelection{}
	}
	return DaySelection{date: d, selected: true}
}

func (s DaySelection) Idle() bool { return !s.selected }

// Selected returns the selected date, if any.
func (s DaySelection) Selected() (Date, bool) { return s.date, s.selected }

// Detail returns the selected day's entry. It is nil when Idle or when
// the selected day has no entry.
func (s DaySelection) Detail(log MoodLog) *DailyLogEntry {
	if !s.selected {
		return nil
	}
	e, ok := Lookup(log, s.date)
	if !ok {
		return nil
	}
	return &e
}
