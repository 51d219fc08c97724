package services

import "math"

type AnalyticsStore interface {
	ListAssessmentsByQuestionnaire(questionnaireID string) ([]*AssessmentRecord, error)
}

type AnalyticsService struct {
	store       AnalyticsStore
	assessments *AssessmentService
}

type AnalyticsItem struct {
	QuestionID int    `json:"question_id"`
	Text       string `json:"text"`
	Histogram  []int  `json:"histogram"`
	Total      int    `json:"total"`
}

type BandCount struct {
	Band  Band `json:"band"`
	Count int  `json:"count"`
}

type AnalyticsSummary struct {
	QuestionnaireID string          `json:"questionnaire_id"`
	Submissions     int             `json:"submissions"`
	MeanTotal       float64         `json:"mean_total"`
	ElevatedRisk    int             `json:"elevated_risk"`
	Items           []AnalyticsItem `json:"items"`
	Bands           []BandCount     `json:"bands"`
	Alpha           float64         `json:"alpha"`
}

// NewAnalyticsService resolves questionnaire definitions through assessments.
func NewAnalyticsService(store AnalyticsStore, assessments *AssessmentService) *AnalyticsService {
	return &AnalyticsService{store: store, assessments: assessments}
}

func (s *AnalyticsService) Summary(questionnaireID string) (*AnalyticsSummary, error) {
	q, err := s.assessments.Questionnaire(questionnaireID)
	if err != nil {
		return nil, err
	}
	recs, err := s.store.ListAssessmentsByQuestionnaire(questionnaireID)
	if err != nil {
		return nil, err
	}

	items := make([]AnalyticsItem, 0, len(q.Questions))
	index := make(map[int]int, len(q.Questions))
	for i, question := range q.Questions {
		items = append(items, AnalyticsItem{
			QuestionID: question.ID,
			Text:       question.Text,
			Histogram:  make([]int, len(question.Options)),
		})
		index[question.ID] = i
	}
	bandIndex := make(map[Band]int, len(q.Bands))
	bands := make([]BandCount, 0, len(q.Bands))
	for i, b := range q.Bands {
		bands = append(bands, BandCount{Band: b.Band})
		bandIndex[b.Band] = i
	}

	summary := &AnalyticsSummary{QuestionnaireID: questionnaireID, Submissions: len(recs), Items: items, Bands: bands}
	matrix := make([][]float64, 0, len(recs))
	var totalSum int
	for _, rec := range recs {
		totalSum += rec.Result.TotalScore
		if rec.Result.ElevatedRiskFlag {
			summary.ElevatedRisk++
		}
		if i, ok := bandIndex[rec.Result.Band]; ok {
			bands[i].Count++
		}
		// Every answered item feeds its histogram; only complete records enter the alpha matrix.
		row := make([]float64, 0, len(q.Questions))
		complete := true
		for _, question := range q.Questions {
			v, ok := rec.Responses[question.ID]
			if !ok {
				complete = false
				continue
			}
			it := &items[index[question.ID]]
			if v >= 0 && v < len(it.Histogram) {
				it.Histogram[v]++
				it.Total++
			}
			row = append(row, float64(v))
		}
		if !complete {
			row = nil
		}
		if row != nil {
			matrix = append(matrix, row)
		}
	}
	if len(recs) > 0 {
		summary.MeanTotal = math.Round(float64(totalSum)/float64(len(recs))*10) / 10
	}
	summary.Alpha = CronbachAlpha(matrix)
	return summary, nil
}
