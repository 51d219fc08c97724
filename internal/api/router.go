package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rida027/stressfree/internal/charts"
	"github.com/rida027/stressfree/internal/services"
	"go.uber.org/zap"
)

type Router struct {
	store       Store
	assessments *services.AssessmentService
	mood        *services.MoodService
	analytics   *services.AnalyticsService
	log         *zap.Logger
}

// NewRouter wires the services over store. With no questionnaires, PHQ-9 is served.
func NewRouter(store Store, log *zap.Logger, questionnaires ...services.Questionnaire) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	assessments := services.NewAssessmentService(store, log, questionnaires...)
	return &Router{
		store:       store,
		assessments: assessments,
		mood:        services.NewMoodService(store),
		analytics:   services.NewAnalyticsService(store, assessments),
		log:         log,
	}
}

func (rt *Router) Assessments() *services.AssessmentService { return rt.assessments }

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/questionnaires/{id}", rt.handleQuestionnaire)
	mux.HandleFunc("POST /api/questionnaires/{id}/progress", rt.handleProgress)
	mux.HandleFunc("POST /api/assessments", rt.handleSubmit)
	mux.HandleFunc("GET /api/assessments", rt.handleHistory)
	mux.HandleFunc("GET /api/assessments/export", rt.handleExportResults)
	mux.HandleFunc("GET /api/analytics", rt.handleAnalytics)
	mux.HandleFunc("GET /api/analytics/chart", rt.handleAnalyticsChart)
	mux.HandleFunc("PUT /api/mood/{user}/entries/{date}", rt.handlePutEntry)
	mux.HandleFunc("GET /api/mood/{user}/entries/{date}", rt.handleGetEntry)
	mux.HandleFunc("GET /api/mood/{user}/month", rt.handleMonth)
	mux.HandleFunc("GET /api/mood/{user}/chart", rt.handleMoodChart)
	mux.HandleFunc("GET /api/mood/{user}/summary", rt.handleSummary)
	mux.HandleFunc("GET /api/mood/{user}/export", rt.handleExportMood)
	mux.HandleFunc("GET /api/calendar/shift", rt.handleShift)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeCSV(w http.ResponseWriter, filename string, b []byte) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	_, _ = w.Write(b)
}

// writeError maps service errors to status codes; anything unclassified is a 500.
func (rt *Router) writeError(w http.ResponseWriter, err error) {
	se, ok := services.AsServiceError(err)
	if !ok {
		rt.log.Error("request failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	body := map[string]any{"error": se.Message, "code": se.Code}
	switch se.Code {
	case services.ErrorNotFound:
		writeJSON(w, http.StatusNotFound, body)
	case services.ErrorUnprocessable:
		var inc *services.IncompleteAssessmentError
		if errors.As(err, &inc) {
			body["missing"] = inc.Missing
		}
		writeJSON(w, http.StatusUnprocessableEntity, body)
	default:
		writeJSON(w, http.StatusBadRequest, body)
	}
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, services.NewInvalidError(key + " required")
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, services.NewInvalidError(key + " must be an integer")
	}
	return n, nil
}

// GET /api/questionnaires/{id}
func (rt *Router) handleQuestionnaire(w http.ResponseWriter, r *http.Request) {
	q, err := rt.assessments.Questionnaire(r.PathValue("id"))
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// POST /api/questionnaires/{id}/progress  {responses: {"1": 2}}
func (rt *Router) handleProgress(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Responses services.ResponseSet `json:"responses"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	p, err := rt.assessments.Progress(r.PathValue("id"), req.Responses)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// POST /api/assessments  {user_id, questionnaire_id, responses}
func (rt *Router) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID          string               `json:"user_id"`
		QuestionnaireID string               `json:"questionnaire_id"`
		Responses       services.ResponseSet `json:"responses"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.QuestionnaireID == "" {
		req.QuestionnaireID = services.PHQ9ID
	}
	rec, err := rt.assessments.Submit(req.UserID, req.QuestionnaireID, req.Responses)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// GET /api/assessments?user_id=
func (rt *Router) handleHistory(w http.ResponseWriter, r *http.Request) {
	recs, err := rt.assessments.History(r.URL.Query().Get("user_id"))
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"assessments": recs})
}

// GET /api/assessments/export?user_id=
func (rt *Router) handleExportResults(w http.ResponseWriter, r *http.Request) {
	recs, err := rt.assessments.History(r.URL.Query().Get("user_id"))
	if err != nil {
		rt.writeError(w, err)
		return
	}
	b, err := services.ExportResultsCSV(recs)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeCSV(w, "assessments.csv", b)
}

func (rt *Router) analyticsSummary(r *http.Request) (*services.AnalyticsSummary, error) {
	qid := r.URL.Query().Get("questionnaire_id")
	if qid == "" {
		qid = services.PHQ9ID
	}
	return rt.analytics.Summary(qid)
}

// GET /api/analytics?questionnaire_id=
func (rt *Router) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	summary, err := rt.analyticsSummary(r)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GET /api/analytics/chart?questionnaire_id=
func (rt *Router) handleAnalyticsChart(w http.ResponseWriter, r *http.Request) {
	summary, err := rt.analyticsSummary(r)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, charts.Options(charts.BandDistribution(summary)))
}

func pathDate(r *http.Request) (services.Date, error) {
	d, err := services.ParseDate(r.PathValue("date"))
	if err != nil {
		return services.Date{}, services.NewInvalidError(err.Error())
	}
	return d, nil
}

// PUT /api/mood/{user}/entries/{date}  {mood, stress_percent, energy_percent, sleep_hours}
func (rt *Router) handlePutEntry(w http.ResponseWriter, r *http.Request) {
	d, err := pathDate(r)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	var entry services.DailyLogEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	entry.Date = d
	saved, err := rt.mood.Record(r.PathValue("user"), entry)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entry": saved})
}

// GET /api/mood/{user}/entries/{date}
func (rt *Router) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	d, err := pathDate(r)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	e, err := rt.mood.Entry(r.PathValue("user"), d)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entry": e})
}

// monthView reads ?year=&month=; with both omitted it is the current month.
func (rt *Router) monthView(r *http.Request) (services.MonthView, error) {
	user := r.PathValue("user")
	q := r.URL.Query()
	if q.Get("year") == "" && q.Get("month") == "" {
		return rt.mood.CurrentMonth(user)
	}
	year, err := queryInt(r, "year")
	if err != nil {
		return services.MonthView{}, err
	}
	month, err := queryInt(r, "month")
	if err != nil {
		return services.MonthView{}, err
	}
	return rt.mood.Month(user, year, month)
}

// GET /api/mood/{user}/month?year=&month=
func (rt *Router) handleMonth(w http.ResponseWriter, r *http.Request) {
	view, err := rt.monthView(r)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GET /api/mood/{user}/chart?year=&month=
func (rt *Router) handleMoodChart(w http.ResponseWriter, r *http.Request) {
	view, err := rt.monthView(r)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, charts.Options(charts.MoodTrend(view)))
}

// GET /api/mood/{user}/summary
func (rt *Router) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := rt.mood.Summary(r.PathValue("user"))
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// GET /api/mood/{user}/export
func (rt *Router) handleExportMood(w http.ResponseWriter, r *http.Request) {
	log, err := rt.mood.Log(r.PathValue("user"))
	if err != nil {
		rt.writeError(w, err)
		return
	}
	b, err := services.ExportMoodCSV(log)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeCSV(w, "mood.csv", b)
}

// GET /api/calendar/shift?year=&month=&delta=
func (rt *Router) handleShift(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year")
	if err != nil {
		rt.writeError(w, err)
		return
	}
	month, err := queryInt(r, "month")
	if err != nil {
		rt.writeError(w, err)
		return
	}
	delta := 0
	if r.URL.Query().Get("delta") != "" {
		if delta, err = queryInt(r, "delta"); err != nil {
			rt.writeError(w, err)
			return
		}
	}
	y, m, err := rt.mood.Navigate(year, month, delta)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"year": y, "month": m})
}
