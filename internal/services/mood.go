package services

import (
	"fmt"
	"math"
	"sort"
)

// MaxSleepHours caps a single day's sleep sample.
const MaxSleepHours = 24

// ValidateEntry rejects samples outside the recorded ranges.
func ValidateEntry(e DailyLogEntry) error {
	switch {
	case !e.Date.Valid():
		return fmt.Errorf("%w: date %s", ErrInvalidEntry, e.Date)
	case !e.Mood.Valid():
		return fmt.Errorf("%w: unknown mood %q", ErrInvalidEntry, e.Mood)
	case e.StressPercent < 0 || e.StressPercent > 100:
		return fmt.Errorf("%w: stress %d outside 0..100", ErrInvalidEntry, e.StressPercent)
	case e.EnergyPercent < 0 || e.EnergyPercent > 100:
		return fmt.Errorf("%w: energy %d outside 0..100", ErrInvalidEntry, e.EnergyPercent)
	case !(e.SleepHours > 0 && e.SleepHours <= MaxSleepHours):
		return fmt.Errorf("%w: sleep hours %v outside (0, %d]", ErrInvalidEntry, e.SleepHours, MaxSleepHours)
	}
	return nil
}

// UpsertEntry returns a copy of log with entry stored under entry.Date.
// Every other day is carried over unchanged and log itself is not modified.
func UpsertEntry(log MoodLog, entry DailyLogEntry) (MoodLog, error) {
	if err := ValidateEntry(entry); err != nil {
		return nil, err
	}
	out := make(MoodLog, len(log)+1)
	for d, e := range log {
		out[d] = e
	}
	out[entry.Date] = entry
	return out, nil
}

// Lookup returns the entry for d. A missing day is reported with ok=false.
func Lookup(log MoodLog, d Date) (DailyLogEntry, bool) {
	e, ok := log[d]
	return e, ok
}

// Summarize averages every entry in the log; an empty log yields zero stats.
func Summarize(log MoodLog) SummaryStats {
	n := len(log)
	if n == 0 {
		return SummaryStats{}
	}
	var stress, energy, sleep float64
	for _, e := range log {
		stress += float64(e.StressPercent)
		energy += float64(e.EnergyPercent)
		sleep += e.SleepHours
	}
	fn := float64(n)
	return SummaryStats{
		TotalDaysLogged: n,
		AverageStress:   int(math.Round(stress / fn)),
		AverageEnergy:   int(math.Round(energy / fn)),
		AverageSleep:    math.Round(sleep/fn*10) / 10,
	}
}

// MoodDistribution counts entries per category in legend order, including zeros.
func MoodDistribution(log MoodLog) []MoodCount {
	counts := make(map[MoodCategory]int, len(MoodCategories))
	for _, e := range log {
		counts[e.Mood]++
	}
	out := make([]MoodCount, 0, len(MoodCategories))
	for _, c := range MoodCategories {
		out = append(out, MoodCount{Mood: c, Count: counts[c]})
	}
	return out
}

// SortedEntries returns the log's entries by ascending date.
func SortedEntries(log MoodLog) []DailyLogEntry {
	out := make([]DailyLogEntry, 0, len(log))
	for _, e := range log {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
