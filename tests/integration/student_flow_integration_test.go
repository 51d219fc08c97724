//go:build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func baseURL() string {
	if v := os.Getenv("STRESSFREE_TEST_BASE_URL"); strings.TrimSpace(v) != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://127.0.0.1:18080"
}

func TestStudentJourneyIntegration(t *testing.T) {
	client := &http.Client{Timeout: 5 * time.Second}
	base := baseURL()
	user := fmt.Sprintf("integration_%d", time.Now().UnixNano())

	var health struct {
		OK bool `json:"ok"`
	}
	doJSON(t, client, http.MethodGet, base+"/health", nil, &health)
	if !health.OK {
		t.Fatalf("health not ok")
	}

	responses := map[string]int{"1": 1, "2": 1, "3": 1, "4": 1, "5": 1, "6": 0, "7": 0, "8": 0, "9": 1}
	var submitted struct {
		ID     string `json:"id"`
		Result struct {
			TotalScore int    `json:"total_score"`
			Band       string `json:"band"`
			Elevated   bool   `json:"elevated_risk_flag"`
		} `json:"result"`
	}
	doJSON(t, client, http.MethodPost, base+"/api/assessments", map[string]any{
		"user_id":          user,
		"questionnaire_id": "phq9",
		"responses":        responses,
	}, &submitted)
	if submitted.Result.TotalScore != 6 || submitted.Result.Band != "Mild" || !submitted.Result.Elevated {
		t.Fatalf("unexpected assessment result: %+v", submitted.Result)
	}

	var history struct {
		Assessments []struct {
			ID string `json:"id"`
		} `json:"assessments"`
	}
	doJSON(t, client, http.MethodGet, base+"/api/assessments?user_id="+user, nil, &history)
	if len(history.Assessments) != 1 || history.Assessments[0].ID != submitted.ID {
		t.Fatalf("unexpected history: %+v", history)
	}

	for _, day := range []string{"2024-02-28", "2024-02-29"} {
		doJSON(t, client, http.MethodPut, base+"/api/mood/"+user+"/entries/"+day, map[string]any{
			"mood":           "okay",
			"stress_percent": 50,
			"energy_percent": 40,
			"sleep_hours":    6.5,
		}, nil)
	}

	var summary struct {
		Stats struct {
			Total int     `json:"total_days_logged"`
			Sleep float64 `json:"average_sleep"`
		} `json:"stats"`
	}
	doJSON(t, client, http.MethodGet, base+"/api/mood/"+user+"/summary", nil, &summary)
	if summary.Stats.Total != 2 || summary.Stats.Sleep != 6.5 {
		t.Fatalf("unexpected summary: %+v", summary.Stats)
	}

	var month struct {
		LeadingBlanks int               `json:"leading_blanks"`
		Cells         []json.RawMessage `json:"cells"`
	}
	doJSON(t, client, http.MethodGet, base+"/api/mood/"+user+"/month?year=2024&month=2", nil, &month)
	if month.LeadingBlanks != 4 || len(month.Cells) != 33 {
		t.Fatalf("unexpected month view: blanks=%d cells=%d", month.LeadingBlanks, len(month.Cells))
	}
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, out any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("http %s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d for %s: %s", resp.StatusCode, url, string(bodyBytes))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			t.Fatalf("decode response from %s: %v", url, err)
		}
	}
}
