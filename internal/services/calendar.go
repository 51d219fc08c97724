package services

// BuildMonthView projects log onto the days of (year, month).
// Cells start with one nil padding cell per weekday before day 1 (Sunday first)
// and end on the last day of the month; days without a sample carry a nil Entry.
func BuildMonthView(log MoodLog, year, month int) (MonthView, error) {
	if year <= 0 || month < 1 || month > 12 {
		return MonthView{}, &InvalidCalendarError{Year: year, Month: month}
	}
	first := NewDate(year, month, 1)
	lead := first.Weekday()
	days := DaysInMonth(year, month)

	cells := make([]*MonthCell, lead, lead+days)
	for day := 1; day <= days; day++ {
		d := NewDate(year, month, day)
		cell := &MonthCell{Day: day, Date: d}
		if e, ok := log[d]; ok {
			entry := e
			cell.Entry = &entry
		}
		cells = append(cells, cell)
	}
	return MonthView{Year: year, Month: month, LeadingBlanks: lead, Cells: cells}, nil
}
