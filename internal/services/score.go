package services

import "fmt"

const (
	// DefaultRiskTag identifies self-harm ideation items.
	DefaultRiskTag       = "self_harm"
	DefaultRiskThreshold = 1
)

// Scorer turns a complete ResponseSet into an AssessmentResult.
// The zero value uses each questionnaire's own risk settings.
type Scorer struct {
	// RiskThreshold overrides Questionnaire.RiskThreshold when positive.
	RiskThreshold int
}

// Score sums the chosen option scores and classifies the total against q.Bands.
// It fails with *IncompleteAssessmentError when any question is unanswered and
// with *InvalidResponseError when a score is not declared by its question.
func (s Scorer) Score(responses ResponseSet, q Questionnaire) (AssessmentResult, error) {
	known := make(map[int]struct{}, len(q.Questions))
	var missing []int
	for _, question := range q.Questions {
		known[question.ID] = struct{}{}
		if _, ok := responses[question.ID]; !ok {
			missing = append(missing, question.ID)
		}
	}
	unknown, hasUnknown := 0, false
	for id := range responses {
		if _, ok := known[id]; !ok && (!hasUnknown || id < unknown) {
			unknown, hasUnknown = id, true
		}
	}
	// A response for a question the questionnaire does not have is reported
	// before any missing answers: the set belongs to a different instrument.
	if hasUnknown {
		return AssessmentResult{}, &InvalidResponseError{QuestionID: unknown, Score: responses[unknown], Reason: "unknown question"}
	}
	if len(missing) > 0 {
		return AssessmentResult{}, &IncompleteAssessmentError{Missing: missing}
	}

	riskTag := q.RiskTag
	if riskTag == "" {
		riskTag = DefaultRiskTag
	}
	riskThreshold := q.RiskThreshold
	if s.RiskThreshold > 0 {
		riskThreshold = s.RiskThreshold
	}
	if riskThreshold <= 0 {
		riskThreshold = DefaultRiskThreshold
	}

	var res AssessmentResult
	for _, question := range q.Questions {
		score := responses[question.ID]
		if !question.hasScore(score) {
			return AssessmentResult{}, &InvalidResponseError{QuestionID: question.ID, Score: score, Reason: "not a declared option"}
		}
		res.TotalScore += score
		res.MaxScore += question.maxScore()
		if question.HasTag(riskTag) && score >= riskThreshold {
			res.ElevatedRiskFlag = true
		}
	}
	band, err := q.Bands.Classify(res.TotalScore)
	if err != nil {
		return AssessmentResult{}, err
	}
	res.Band = band
	res.RecommendSupport = q.SupportThreshold > 0 && res.TotalScore > q.SupportThreshold
	return res, nil
}

// Classify returns the band whose inclusive range contains total.
func (t BandTable) Classify(total int) (Band, error) {
	for _, b := range t {
		if total >= b.Min && total <= b.Max {
			return b.Band, nil
		}
	}
	return "", fmt.Errorf("%w: no band covers total %d", ErrInvalidQuestionnaire, total)
}

// Progress reports how far a respondent is through a questionnaire.
type Progress struct {
	Answered int  `json:"answered"`
	Total    int  `json:"total"`
	Percent  int  `json:"percent"`
	Complete bool `json:"complete"`
}

// AssessmentProgress counts answered questions of q; responses for unknown ids are ignored.
func AssessmentProgress(responses ResponseSet, q Questionnaire) Progress {
	p := Progress{Total: len(q.Questions)}
	for _, question := range q.Questions {
		if _, ok := responses[question.ID]; ok {
			p.Answered++
		}
	}
	if p.Total > 0 {
		p.Percent = (p.Answered*100 + p.Total/2) / p.Total
	}
	p.Complete = p.Total > 0 && p.Answered == p.Total
	return p
}
