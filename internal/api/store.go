package api

import (
	"sync"

	"github.com/rida027/stressfree/internal/services"
)

type memoryStore struct {
	mu          sync.RWMutex
	assessments []*services.AssessmentRecord
	moods       map[string]services.MoodLog
	audit       []services.AuditEntry
}

// NewMemoryStore returns a process-local Store. Contents are lost on restart.
func NewMemoryStore() Store {
	return newMemoryStore()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		assessments: []*services.AssessmentRecord{},
		moods:       map[string]services.MoodLog{},
		audit:       []services.AuditEntry{},
	}
}

func cloneRecord(rec *services.AssessmentRecord) *services.AssessmentRecord {
	cp := *rec
	cp.Responses = make(services.ResponseSet, len(rec.Responses))
	for id, v := range rec.Responses {
		cp.Responses[id] = v
	}
	return &cp
}

func (s *memoryStore) SaveAssessment(rec *services.AssessmentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assessments = append(s.assessments, cloneRecord(rec))
	return nil
}

func (s *memoryStore) ListAssessments(userID string) ([]*services.AssessmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*services.AssessmentRecord{}
	for _, r := range s.assessments {
		if r.UserID == userID {
			out = append(out, cloneRecord(r))
		}
	}
	return out, nil
}

func (s *memoryStore) ListAssessmentsByQuestionnaire(questionnaireID string) ([]*services.AssessmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*services.AssessmentRecord{}
	for _, r := range s.assessments {
		if r.QuestionnaireID == questionnaireID {
			out = append(out, cloneRecord(r))
		}
	}
	return out, nil
}

// mood log: one sparse map per user, replaced wholesale on upsert
func (s *memoryStore) UpsertMoodEntry(userID string, entry services.DailyLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := services.UpsertEntry(s.moods[userID], entry)
	if err != nil {
		return err
	}
	s.moods[userID] = next
	return nil
}

func (s *memoryStore) GetMoodEntry(userID string, d services.Date) (*services.DailyLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := services.Lookup(s.moods[userID], d); ok {
		return &e, nil
	}
	return nil, nil
}

func (s *memoryStore) ListMoodEntries(userID string) (services.MoodLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := s.moods[userID]
	out := make(services.MoodLog, len(log))
	for d, e := range log {
		out[d] = e
	}
	return out, nil
}

// audit log
func (s *memoryStore) AddAudit(e services.AuditEntry) {
	s.mu.Lock()
	s.audit = append(s.audit, e)
	s.mu.Unlock()
}

func (s *memoryStore) ListAudit() ([]services.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]services.AuditEntry, len(s.audit))
	copy(out, s.audit)
	return out, nil
}
