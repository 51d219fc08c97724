package api

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestServer() (*http.ServeMux, *memoryStore) {
	store := newMemoryStore()
	mux := http.NewServeMux()
	NewRouter(store, nil).Register(mux)
	return mux, store
}

func do(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

const completePHQ9 = `{"1":1,"2":1,"3":2,"4":2,"5":1,"6":1,"7":1,"8":1,"9":0}`

func TestSubmitAssessmentAndHistory(t *testing.T) {
	mux, store := newTestServer()

	rr := do(t, mux, http.MethodPost, "/api/assessments", `{"user_id":"u1","questionnaire_id":"phq9","responses":`+completePHQ9+`}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("submit status=%d body=%s", rr.Code, rr.Body.String())
	}
	var rec struct {
		ID     string `json:"id"`
		Result struct {
			TotalScore int    `json:"total_score"`
			Band       string `json:"band"`
			Elevated   bool   `json:"elevated_risk_flag"`
		} `json:"result"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Result.TotalScore != 10 || rec.Result.Band != "Moderate" || rec.Result.Elevated {
		t.Fatalf("unexpected result %+v", rec.Result)
	}

	rr = do(t, mux, http.MethodGet, "/api/assessments?user_id=u1", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), rec.ID) {
		t.Fatalf("history status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = do(t, mux, http.MethodGet, "/api/assessments/export?user_id=u1", "")
	if rr.Code != http.StatusOK || rr.Header().Get("Content-Type") != "text/csv" {
		t.Fatalf("export status=%d type=%s", rr.Code, rr.Header().Get("Content-Type"))
	}
	rows, err := csv.NewReader(strings.NewReader(rr.Body.String())).ReadAll()
	if err != nil || len(rows) != 2 {
		t.Fatalf("export rows=%d err=%v", len(rows), err)
	}

	audit, _ := store.ListAudit()
	if len(audit) != 1 || audit[0].Action != "submit_assessment" {
		t.Fatalf("unexpected audit %+v", audit)
	}
}

func TestSubmitIncompleteReturns422WithMissing(t *testing.T) {
	mux, _ := newTestServer()
	rr := do(t, mux, http.MethodPost, "/api/assessments", `{"user_id":"u1","responses":{"1":0,"2":0,"4":0,"5":0,"6":0,"7":0,"8":0}}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var body struct {
		Missing []int `json:"missing"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Missing) != 2 || body.Missing[0] != 3 || body.Missing[1] != 9 {
		t.Fatalf("missing = %v, want [3 9]", body.Missing)
	}
}

func TestSubmitErrors(t *testing.T) {
	mux, _ := newTestServer()
	cases := []struct {
		body string
		want int
	}{
		{`{"user_id":"u1","questionnaire_id":"nope","responses":` + completePHQ9 + `}`, http.StatusNotFound},
		{`{"user_id":"u1","responses":{"1":7,"2":0,"3":0,"4":0,"5":0,"6":0,"7":0,"8":0,"9":0}}`, http.StatusBadRequest},
		{`{"responses":` + completePHQ9 + `}`, http.StatusBadRequest},
		{`not json`, http.StatusBadRequest},
	}
	for _, c := range cases {
		if rr := do(t, mux, http.MethodPost, "/api/assessments", c.body); rr.Code != c.want {
			t.Fatalf("body %s: status=%d want %d", c.body, rr.Code, c.want)
		}
	}
}

func TestQuestionnaireAndProgress(t *testing.T) {
	mux, _ := newTestServer()
	rr := do(t, mux, http.MethodGet, "/api/questionnaires/phq9", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Over the last 2 weeks") {
		t.Fatalf("questionnaire status=%d body=%s", rr.Code, rr.Body.String())
	}
	if rr := do(t, mux, http.MethodGet, "/api/questionnaires/unknown", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown questionnaire status=%d", rr.Code)
	}
	rr = do(t, mux, http.MethodPost, "/api/questionnaires/phq9/progress", `{"responses":{"1":0,"2":3,"3":1}}`)
	var p struct {
		Answered int  `json:"answered"`
		Percent  int  `json:"percent"`
		Complete bool `json:"complete"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Answered != 3 || p.Percent != 33 || p.Complete {
		t.Fatalf("unexpected progress %+v", p)
	}
}

func TestMoodEntryLifecycle(t *testing.T) {
	mux, _ := newTestServer()

	rr := do(t, mux, http.MethodGet, "/api/mood/u1/entries/2024-02-29", "")
	if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != `{"entry":null}` {
		t.Fatalf("absent entry status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = do(t, mux, http.MethodPut, "/api/mood/u1/entries/2024-02-29", `{"mood":"good","stress_percent":40,"energy_percent":60,"sleep_hours":8}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("put status=%d body=%s", rr.Code, rr.Body.String())
	}
	rr = do(t, mux, http.MethodPut, "/api/mood/u1/entries/2024-02-28", `{"mood":"low","stress_percent":60,"energy_percent":80,"sleep_hours":6}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("put status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = do(t, mux, http.MethodGet, "/api/mood/u1/entries/2024-02-29", "")
	if !strings.Contains(rr.Body.String(), `"mood":"good"`) {
		t.Fatalf("stored entry not returned: %s", rr.Body.String())
	}

	rr = do(t, mux, http.MethodGet, "/api/mood/u1/summary", "")
	var sum struct {
		Stats struct {
			Total  int     `json:"total_days_logged"`
			Stress int     `json:"average_stress"`
			Energy int     `json:"average_energy"`
			Sleep  float64 `json:"average_sleep"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sum.Stats.Total != 2 || sum.Stats.Stress != 50 || sum.Stats.Energy != 70 || sum.Stats.Sleep != 7 {
		t.Fatalf("unexpected summary %+v", sum.Stats)
	}

	rr = do(t, mux, http.MethodGet, "/api/mood/u1/month?year=2024&month=2", "")
	var view struct {
		LeadingBlanks int `json:"leading_blanks"`
		Cells         []*struct {
			Day   int             `json:"day"`
			Entry json.RawMessage `json:"entry"`
		} `json:"cells"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.LeadingBlanks != 4 || len(view.Cells) != 33 || view.Cells[0] != nil {
		t.Fatalf("unexpected month view blanks=%d cells=%d", view.LeadingBlanks, len(view.Cells))
	}
	if last := view.Cells[32]; last.Day != 29 || string(last.Entry) == "null" {
		t.Fatalf("day 29 should carry its entry: %+v", last)
	}

	rr = do(t, mux, http.MethodGet, "/api/mood/u1/export", "")
	rows, err := csv.NewReader(strings.NewReader(rr.Body.String())).ReadAll()
	if err != nil || len(rows) != 3 || rows[1][0] != "2024-02-28" {
		t.Fatalf("unexpected export %v err=%v", rows, err)
	}
}

func TestMoodEntryValidation(t *testing.T) {
	mux, _ := newTestServer()
	cases := []struct {
		path, body string
	}{
		{"/api/mood/u1/entries/2023-02-29", `{"mood":"good","stress_percent":40,"energy_percent":60,"sleep_hours":8}`},
		{"/api/mood/u1/entries/2024-01-01", `{"mood":"great","stress_percent":40,"energy_percent":60,"sleep_hours":8}`},
		{"/api/mood/u1/entries/2024-01-01", `{"mood":"good","stress_percent":140,"energy_percent":60,"sleep_hours":8}`},
		{"/api/mood/u1/entries/2024-01-01", `{"mood":"good","stress_percent":40,"energy_percent":60,"sleep_hours":0}`},
	}
	for _, c := range cases {
		if rr := do(t, mux, http.MethodPut, c.path, c.body); rr.Code != http.StatusBadRequest {
			t.Fatalf("%s %s: status=%d", c.path, c.body, rr.Code)
		}
	}
	if rr := do(t, mux, http.MethodGet, "/api/mood/u1/month?year=2024&month=13", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid month status=%d", rr.Code)
	}
	if rr := do(t, mux, http.MethodGet, "/api/mood/u1/month?year=x&month=1", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("non-numeric year status=%d", rr.Code)
	}
}

func TestCalendarShift(t *testing.T) {
	mux, _ := newTestServer()
	rr := do(t, mux, http.MethodGet, "/api/calendar/shift?year=2024&month=1&delta=-1", "")
	if strings.TrimSpace(rr.Body.String()) != `{"month":12,"year":2023}` {
		t.Fatalf("shift body=%s", rr.Body.String())
	}
	if rr := do(t, mux, http.MethodGet, "/api/calendar/shift?year=1&month=1&delta=-1", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("shift before year 1 status=%d", rr.Code)
	}
}

func TestAnalyticsEndpoint(t *testing.T) {
	mux, _ := newTestServer()
	for _, user := range []string{"a", "b"} {
		if rr := do(t, mux, http.MethodPost, "/api/assessments", `{"user_id":"`+user+`","responses":`+completePHQ9+`}`); rr.Code != http.StatusCreated {
			t.Fatalf("submit status=%d", rr.Code)
		}
	}
	rr := do(t, mux, http.MethodGet, "/api/analytics?questionnaire_id=phq9", "")
	var summary struct {
		Submissions int     `json:"submissions"`
		MeanTotal   float64 `json:"mean_total"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.Submissions != 2 || summary.MeanTotal != 10 {
		t.Fatalf("unexpected analytics %+v", summary)
	}
}

func TestChartEndpoints(t *testing.T) {
	mux, _ := newTestServer()
	if rr := do(t, mux, http.MethodPut, "/api/mood/u1/entries/2024-02-10", `{"mood":"okay","stress_percent":55,"energy_percent":45,"sleep_hours":6.5}`); rr.Code != http.StatusOK {
		t.Fatalf("put status=%d", rr.Code)
	}
	if rr := do(t, mux, http.MethodPost, "/api/assessments", `{"user_id":"u1","responses":`+completePHQ9+`}`); rr.Code != http.StatusCreated {
		t.Fatalf("submit status=%d", rr.Code)
	}

	var chart struct {
		Series []struct {
			Name string            `json:"name"`
			Data []json.RawMessage `json:"data"`
		} `json:"series"`
	}
	rr := do(t, mux, http.MethodGet, "/api/mood/u1/chart?year=2024&month=2", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("mood chart status=%d body=%s", rr.Code, rr.Body.String())
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &chart); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(chart.Series) != 3 || len(chart.Series[0].Data) != 29 {
		t.Fatalf("unexpected mood chart %s", rr.Body.String())
	}

	rr = do(t, mux, http.MethodGet, "/api/analytics/chart", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("analytics chart status=%d", rr.Code)
	}
	chart.Series = nil
	if err := json.Unmarshal(rr.Body.Bytes(), &chart); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(chart.Series) != 1 || len(chart.Series[0].Data) != 5 {
		t.Fatalf("unexpected band chart %s", rr.Body.String())
	}

	if rr := do(t, mux, http.MethodGet, "/api/mood/u1/chart?year=2024&month=0", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid chart month status=%d", rr.Code)
	}
	if rr := do(t, mux, http.MethodGet, "/api/analytics/chart?questionnaire_id=nope", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown questionnaire status=%d", rr.Code)
	}
}
