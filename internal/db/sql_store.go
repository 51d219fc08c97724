package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rida027/stressfree/internal/api"
	"github.com/rida027/stressfree/internal/services"
)

// SQLStore persists assessments, mood entries and the audit log through any supported dialect.
type SQLStore struct {
	db  *DB
	log *zap.Logger
}

var _ api.Store = (*SQLStore)(nil)

func NewSQLStore(db *DB, log *zap.Logger) (*SQLStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SQLStore{db: db, log: log}, nil
}

// Driver reports the dialect name, e.g. "sqlite".
func (s *SQLStore) Driver() string { return s.db.Dialect.Name() }

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) logErr(prefix string, err error) {
	if err != nil {
		s.log.Error("sql store", zap.String("op", prefix), zap.Error(err))
	}
}

func boolToInt64(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

func int64ToBool(v int64) bool { return v != 0 }

// timeLayout is fixed width so stored timestamps sort chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

// parseTime accepts any RFC 3339 timestamp; an unparsable value is logged and read as the zero time.
func (s *SQLStore) parseTime(op, value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		s.logErr(op+": parse time", err)
		return time.Time{}
	}
	return t
}

// --- Assessments ---

func (s *SQLStore) SaveAssessment(rec *services.AssessmentRecord) error {
	if rec == nil {
		return errors.New("nil assessment")
	}
	responses, err := json.Marshal(rec.Responses)
	if err != nil {
		return fmt.Errorf("encode responses: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO assessments (id, user_id, questionnaire_id, responses_json, total_score, max_score, band, elevated_risk, recommend_support, submitted_at)
      VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.QuestionnaireID, string(responses),
		rec.Result.TotalScore, rec.Result.MaxScore, string(rec.Result.Band),
		boolToInt64(rec.Result.ElevatedRiskFlag), boolToInt64(rec.Result.RecommendSupport),
		formatTime(rec.SubmittedAt))
	if err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

const assessmentColumns = `id, user_id, questionnaire_id, responses_json, total_score, max_score, band, elevated_risk, recommend_support, submitted_at`

func (s *SQLStore) ListAssessments(userID string) ([]*services.AssessmentRecord, error) {
	return s.queryAssessments(`SELECT `+assessmentColumns+` FROM assessments WHERE user_id = ? ORDER BY submitted_at ASC`, userID)
}

func (s *SQLStore) ListAssessmentsByQuestionnaire(questionnaireID string) ([]*services.AssessmentRecord, error) {
	return s.queryAssessments(`SELECT `+assessmentColumns+` FROM assessments WHERE questionnaire_id = ? ORDER BY submitted_at ASC`, questionnaireID)
}

func (s *SQLStore) queryAssessments(query string, arg string) ([]*services.AssessmentRecord, error) {
	rows, err := s.db.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.logErr("queryAssessments: rows.Close", cerr)
		}
	}()
	out := []*services.AssessmentRecord{}
	for rows.Next() {
		var (
			rec                 services.AssessmentRecord
			responses, band, at string
			elevated, support   int64
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.QuestionnaireID, &responses,
			&rec.Result.TotalScore, &rec.Result.MaxScore, &band, &elevated, &support, &at); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		if err := json.Unmarshal([]byte(responses), &rec.Responses); err != nil {
			return nil, fmt.Errorf("decode responses of %s: %w", rec.ID, err)
		}
		rec.Result.Band = services.Band(band)
		rec.Result.ElevatedRiskFlag = int64ToBool(elevated)
		rec.Result.RecommendSupport = int64ToBool(support)
		rec.SubmittedAt = s.parseTime("queryAssessments", at)
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assessments: %w", err)
	}
	return out, nil
}

// --- Mood log ---

// UpsertMoodEntry replaces any earlier row for the same user and day.
func (s *SQLStore) UpsertMoodEntry(userID string, e services.DailyLogEntry) error {
	if err := services.ValidateEntry(e); err != nil {
		return err
	}
	_, err := s.db.Exec(s.db.Dialect.UpsertMoodQuery(),
		userID, e.Date.String(), string(e.Mood), e.StressPercent, e.EnergyPercent, e.SleepHours,
		formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("upsert mood entry: %w", err)
	}
	return nil
}

func scanMood(scan func(dest ...any) error) (services.DailyLogEntry, error) {
	var (
		e         services.DailyLogEntry
		day, mood string
	)
	if err := scan(&day, &mood, &e.StressPercent, &e.EnergyPercent, &e.SleepHours); err != nil {
		return e, err
	}
	d, err := services.ParseDate(day)
	if err != nil {
		return e, err
	}
	e.Date = d
	e.Mood = services.MoodCategory(mood)
	return e, nil
}

func (s *SQLStore) GetMoodEntry(userID string, d services.Date) (*services.DailyLogEntry, error) {
	row := s.db.QueryRow(`SELECT day, mood, stress_percent, energy_percent, sleep_hours FROM mood_entries WHERE user_id = ? AND day = ?`, userID, d.String())
	e, err := scanMood(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get mood entry: %w", err)
	}
	return &e, nil
}

func (s *SQLStore) ListMoodEntries(userID string) (services.MoodLog, error) {
	rows, err := s.db.Query(`SELECT day, mood, stress_percent, energy_percent, sleep_hours FROM mood_entries WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("query mood entries: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.logErr("ListMoodEntries: rows.Close", cerr)
		}
	}()
	out := services.MoodLog{}
	for rows.Next() {
		e, err := scanMood(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan mood entry: %w", err)
		}
		out[e.Date] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mood entries: %w", err)
	}
	return out, nil
}

// --- Audit ---

func (s *SQLStore) AddAudit(e services.AuditEntry) {
	_, err := s.db.Exec(`INSERT INTO audit_log (logged_at, actor, action, target, note) VALUES (?, ?, ?, ?, ?)`,
		formatTime(e.Time), e.Actor, e.Action, e.Target, e.Note)
	s.logErr("AddAudit", err)
}

func (s *SQLStore) ListAudit() ([]services.AuditEntry, error) {
	rows, err := s.db.Query(`SELECT logged_at, actor, action, target, COALESCE(note, '') FROM audit_log ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query audit: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.logErr("ListAudit: rows.Close", cerr)
		}
	}()
	out := []services.AuditEntry{}
	for rows.Next() {
		var e services.AuditEntry
		var at string
		if err := rows.Scan(&at, &e.Actor, &e.Action, &e.Target, &e.Note); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		e.Time = s.parseTime("ListAudit", at)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit: %w", err)
	}
	return out, nil
}
