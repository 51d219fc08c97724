package services

import (
	"bytes"
	"encoding/csv"
	"sort"
	"strconv"
	"time"
)

// ExportMoodCSV renders the log one row per day in date order.
func ExportMoodCSV(log MoodLog) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"date", "mood", "stress_percent", "energy_percent", "sleep_hours"})
	for _, e := range SortedEntries(log) {
		rec := []string{
			e.Date.String(),
			string(e.Mood),
			strconv.Itoa(e.StressPercent),
			strconv.Itoa(e.EnergyPercent),
			strconv.FormatFloat(e.SleepHours, 'f', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportResultsCSV renders one row per submission with a column per question id.
// Question columns are the union of answered ids, sorted ascending.
func ExportResultsCSV(recs []*AssessmentRecord) ([]byte, error) {
	idSet := map[int]struct{}{}
	for _, r := range recs {
		for id := range r.Responses {
			idSet[id] = struct{}{}
		}
	}
	ids := make([]int, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"assessment_id", "user_id", "questionnaire_id", "submitted_at", "total_score", "band", "elevated_risk"}
	for _, id := range ids {
		header = append(header, "q"+strconv.Itoa(id))
	}
	_ = w.Write(header)
	for _, r := range recs {
		row := make([]string, 0, len(header))
		row = append(row,
			r.ID,
			r.UserID,
			r.QuestionnaireID,
			r.SubmittedAt.UTC().Format(time.RFC3339),
			strconv.Itoa(r.Result.TotalScore),
			string(r.Result.Band),
			strconv.FormatBool(r.Result.ElevatedRiskFlag),
		)
		for _, id := range ids {
			if v, ok := r.Responses[id]; ok {
				row = append(row, strconv.Itoa(v))
			} else {
				row = append(row, "")
			}
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
