package services

import (
	"errors"
	"reflect"
	"testing"
)

func entry(y, m, d int, mood MoodCategory, stress, energy int, sleep float64) DailyLogEntry {
	return DailyLogEntry{Date: NewDate(y, m, d), Mood: mood, StressPercent: stress, EnergyPercent: energy, SleepHours: sleep}
}

func TestSummarizeEmptyLog(t *testing.T) {
	if got := Summarize(nil); got != (SummaryStats{}) {
		t.Fatalf("Summarize(nil) = %+v, want zero", got)
	}
	if got := Summarize(MoodLog{}); got != (SummaryStats{}) {
		t.Fatalf("Summarize(empty) = %+v, want zero", got)
	}
}

func TestSummarizeTwoEntries(t *testing.T) {
	a := entry(2024, 3, 1, MoodGood, 40, 60, 8)
	b := entry(2024, 3, 2, MoodLow, 60, 80, 6)
	got := Summarize(MoodLog{a.Date: a, b.Date: b})
	want := SummaryStats{TotalDaysLogged: 2, AverageStress: 50, AverageEnergy: 70, AverageSleep: 7.0}
	if got != want {
		t.Fatalf("Summarize = %+v, want %+v", got, want)
	}
}

func TestSummarizeRounding(t *testing.T) {
	a := entry(2024, 3, 1, MoodGood, 33, 10, 7)
	b := entry(2024, 3, 2, MoodGood, 34, 11, 6.5)
	c := entry(2024, 3, 3, MoodGood, 34, 11, 6.6)
	got := Summarize(MoodLog{a.Date: a, b.Date: b, c.Date: c})
	// stress 33.67 -> 34, energy 10.67 -> 11, sleep 6.7
	if got.AverageStress != 34 || got.AverageEnergy != 11 || got.AverageSleep != 6.7 {
		t.Fatalf("unexpected rounding %+v", got)
	}
}

func TestUpsertEntryOverwritesOnlyThatDate(t *testing.T) {
	a := entry(2024, 3, 1, MoodGood, 40, 60, 8)
	b := entry(2024, 3, 2, MoodLow, 60, 80, 6)
	c := entry(2024, 3, 3, MoodOkay, 50, 50, 7)
	log := MoodLog{a.Date: a, b.Date: b, c.Date: c}

	replacement := entry(2024, 3, 2, MoodExcellent, 10, 90, 9)
	next, err := UpsertEntry(log, replacement)
	if err != nil {
		t.Fatalf("UpsertEntry: %v", err)
	}
	if len(next) != 3 {
		t.Fatalf("entries = %d, want 3", len(next))
	}
	if next[b.Date] != replacement {
		t.Fatalf("date not overwritten: %+v", next[b.Date])
	}
	if next[a.Date] != a || next[c.Date] != c {
		t.Fatalf("other entries changed")
	}
	if log[b.Date] != b {
		t.Fatalf("input log was mutated")
	}

	added, err := UpsertEntry(next, entry(2024, 3, 4, MoodStressed, 95, 5, 3))
	if err != nil {
		t.Fatalf("UpsertEntry add: %v", err)
	}
	if len(added) != 4 {
		t.Fatalf("entries = %d, want 4", len(added))
	}
}

func TestUpsertEntryValidates(t *testing.T) {
	bad := []DailyLogEntry{
		entry(2024, 3, 1, "ecstatic", 40, 60, 8),
		entry(2024, 3, 1, MoodGood, 101, 60, 8),
		entry(2024, 3, 1, MoodGood, 40, -1, 8),
		entry(2024, 3, 1, MoodGood, 40, 60, 0),
		entry(2024, 3, 1, MoodGood, 40, 60, 24.5),
		entry(2024, 3, 1, MoodGood, 40, 60, 1e9),
		entry(2023, 2, 29, MoodGood, 40, 60, 8),
		{Mood: MoodGood, StressPercent: 1, EnergyPercent: 1, SleepHours: 1},
	}
	for _, e := range bad {
		if _, err := UpsertEntry(MoodLog{}, e); !errors.Is(err, ErrInvalidEntry) {
			t.Fatalf("entry %+v: expected invalid entry, got %v", e, err)
		}
	}
	if _, err := UpsertEntry(MoodLog{}, entry(2024, 3, 1, MoodGood, 40, 60, MaxSleepHours)); err != nil {
		t.Fatalf("a full day of sleep should be accepted: %v", err)
	}
}

func TestLookupAbsentIsNotAnError(t *testing.T) {
	a := entry(2024, 3, 1, MoodGood, 40, 60, 8)
	log := MoodLog{a.Date: a}
	if got, ok := Lookup(log, a.Date); !ok || got != a {
		t.Fatalf("Lookup present = (%+v,%v)", got, ok)
	}
	if _, ok := Lookup(log, NewDate(2024, 3, 2)); ok {
		t.Fatalf("expected absent entry")
	}
}

func TestMoodDistribution(t *testing.T) {
	a := entry(2024, 3, 1, MoodGood, 40, 60, 8)
	b := entry(2024, 3, 2, MoodGood, 60, 80, 6)
	c := entry(2024, 3, 3, MoodStressed, 90, 20, 4)
	got := MoodDistribution(MoodLog{a.Date: a, b.Date: b, c.Date: c})
	want := []MoodCount{
		{Mood: MoodExcellent, Count: 0},
		{Mood: MoodGood, Count: 2},
		{Mood: MoodOkay, Count: 0},
		{Mood: MoodLow, Count: 0},
		{Mood: MoodStressed, Count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("distribution = %+v", got)
	}
}

func TestSortedEntries(t *testing.T) {
	a := entry(2024, 3, 1, MoodGood, 40, 60, 8)
	b := entry(2023, 12, 31, MoodGood, 60, 80, 6)
	got := SortedEntries(MoodLog{a.Date: a, b.Date: b})
	if len(got) != 2 || got[0] != b || got[1] != a {
		t.Fatalf("unexpected order %+v", got)
	}
}

func TestDaySelectionToggle(t *testing.T) {
	a := entry(2024, 3, 1, MoodGood, 40, 60, 8)
	log := MoodLog{a.Date: a}

	var sel DaySelection
	if !sel.Idle() || sel.Detail(log) != nil {
		t.Fatalf("zero selection should be idle")
	}
	sel = sel.Toggle(a.Date)
	if d, ok := sel.Selected(); !ok || d != a.Date {
		t.Fatalf("expected %v selected", a.Date)
	}
	if got := sel.Detail(log); got == nil || *got != a {
		t.Fatalf("detail = %+v", got)
	}

	empty := NewDate(2024, 3, 9)
	sel = sel.Toggle(empty)
	if sel.Idle() {
		t.Fatalf("selecting another day should keep a selection")
	}
	if sel.Detail(log) != nil {
		t.Fatalf("day without entry should give nil detail")
	}

	sel = sel.Toggle(empty)
	if !sel.Idle() {
		t.Fatalf("toggling the same day should return to idle")
	}
}
