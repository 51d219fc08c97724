package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/rida027/stressfree/internal/api"
	dbstore "github.com/rida027/stressfree/internal/db"
	"github.com/rida027/stressfree/internal/services"
)

// Snapshot is the JSON layout accepted for a one-time import.
type Snapshot struct {
	Mood        map[string][]services.DailyLogEntry `json:"mood"`
	Assessments []*services.AssessmentRecord       `json:"assessments"`
	Audit       []services.AuditEntry              `json:"audit"`
}

// ImportSnapshotIfNeeded seeds a new sqlite database from snapshotPath. It
// does nothing when the database file already exists or no snapshot is given.
// Assessments are re-scored against questionnaires; with none, PHQ-9 is used.
func ImportSnapshotIfNeeded(snapshotPath, sqlitePath, migrationsDir string, log *zap.Logger, questionnaires ...services.Questionnaire) error {
	if snapshotPath == "" {
		return nil
	}
	if sqlitePath == "" {
		return errors.New("sqlite path is required")
	}
	if _, err := os.Stat(sqlitePath); err == nil {
		return nil // already imported
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("check sqlite file: %w", err)
	}

	raw, err := os.ReadFile(snapshotPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	log.Info("first run detected, importing snapshot", zap.String("snapshot", snapshotPath))

	sqliteDB, err := dbstore.OpenSQLite(sqlitePath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sqliteDB.Close(); cerr != nil {
			log.Warn("failed to close sqlite db", zap.Error(cerr))
		}
	}()

	if _, err := dbstore.RunMigrations(sqliteDB, migrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	dst, err := dbstore.NewSQLStore(sqliteDB, log)
	if err != nil {
		return fmt.Errorf("init sqlite store: %w", err)
	}
	if len(questionnaires) == 0 {
		questionnaires = []services.Questionnaire{services.PHQ9()}
	}
	stats, err := copySnapshotToStore(&snap, dst, questionnaires)
	if err != nil {
		return fmt.Errorf("copy data: %w", err)
	}
	log.Info("snapshot import completed",
		zap.Int("assessments", stats.assessments),
		zap.Int("skipped_assessments", stats.skippedAssessments),
		zap.Int("skipped_mood_entries", stats.skippedMood),
	)
	return nil
}

type importStats struct {
	assessments        int
	skippedAssessments int
	skippedMood        int
}

// copySnapshotToStore writes every record. Mood entries failing validation are
// skipped. Each assessment's result is recomputed from its responses; records
// for unknown questionnaires or with responses that do not score are skipped.
func copySnapshotToStore(snap *Snapshot, dst api.Store, questionnaires []services.Questionnaire) (importStats, error) {
	var stats importStats
	for user, entries := range snap.Mood {
		for _, e := range entries {
			if err := services.ValidateEntry(e); err != nil {
				stats.skippedMood++
				continue
			}
			if err := dst.UpsertMoodEntry(user, e); err != nil {
				return stats, err
			}
		}
	}

	byID := make(map[string]services.Questionnaire, len(questionnaires))
	for _, q := range questionnaires {
		byID[q.ID] = q
	}
	var scorer services.Scorer
	for _, rec := range snap.Assessments {
		if rec == nil {
			continue
		}
		q, ok := byID[rec.QuestionnaireID]
		if !ok {
			stats.skippedAssessments++
			continue
		}
		result, err := scorer.Score(rec.Responses, q)
		if err != nil {
			stats.skippedAssessments++
			continue
		}
		rec.Result = result
		if err := dst.SaveAssessment(rec); err != nil {
			return stats, err
		}
		stats.assessments++
	}
	for _, entry := range snap.Audit {
		dst.AddAudit(entry)
	}
	return stats, nil
}
