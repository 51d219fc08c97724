package services

import (
	"strings"
	"time"
)

// MoodStore abstracts the per-user sparse mood log.
type MoodStore interface {
	UpsertMoodEntry(userID string, entry DailyLogEntry) error
	GetMoodEntry(userID string, d Date) (*DailyLogEntry, error)
	ListMoodEntries(userID string) (MoodLog, error)
}

type MoodService struct {
	store MoodStore
	now   func() time.Time
}

func NewMoodService(store MoodStore) *MoodService {
	return &MoodService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return NewInvalidError("user required")
	}
	return nil
}

// Record stores entry for its date, replacing any earlier sample for that day.
func (s *MoodService) Record(userID string, entry DailyLogEntry) (*DailyLogEntry, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := ValidateEntry(entry); err != nil {
		return nil, wrapDomainError(err)
	}
	if err := s.store.UpsertMoodEntry(userID, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Entry returns nil without error when the day has no sample.
func (s *MoodService) Entry(userID string, d Date) (*DailyLogEntry, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.store.GetMoodEntry(userID, d)
}

func (s *MoodService) Log(userID string) (MoodLog, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.store.ListMoodEntries(userID)
}

func (s *MoodService) Month(userID string, year, month int) (MonthView, error) {
	log, err := s.Log(userID)
	if err != nil {
		return MonthView{}, err
	}
	view, err := BuildMonthView(log, year, month)
	if err != nil {
		return MonthView{}, wrapDomainError(err)
	}
	return view, nil
}

// CurrentMonth builds the view for the month containing today.
func (s *MoodService) CurrentMonth(userID string) (MonthView, error) {
	today := DateOf(s.now())
	return s.Month(userID, today.Year, today.Month)
}

type MoodSummary struct {
	Stats        SummaryStats `json:"stats"`
	Distribution []MoodCount  `json:"distribution"`
}

func (s *MoodService) Summary(userID string) (*MoodSummary, error) {
	log, err := s.Log(userID)
	if err != nil {
		return nil, err
	}
	return &MoodSummary{Stats: Summarize(log), Distribution: MoodDistribution(log)}, nil
}

// Navigate wraps ShiftMonth and rejects results before year 1.
// month may be out of range; it is normalized together with delta.
func (s *MoodService) Navigate(year, month, delta int) (int, int, error) {
	y, m := ShiftMonth(year, month, delta)
	if y <= 0 {
		return 0, 0, wrapDomainError(&InvalidCalendarError{Year: y, Month: m})
	}
	return y, m, nil
}
