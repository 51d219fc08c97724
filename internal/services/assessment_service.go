package services

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AssessmentStore abstracts persistence of scored submissions.
type AssessmentStore interface {
	SaveAssessment(rec *AssessmentRecord) error
	ListAssessments(userID string) ([]*AssessmentRecord, error)
	AddAudit(entry AuditEntry)
}

// AssessmentService scores questionnaire submissions and keeps their history.
type AssessmentService struct {
	store          AssessmentStore
	scorer         Scorer
	questionnaires map[string]Questionnaire
	log            *zap.Logger
	now            func() time.Time
	idGenerator    func() string
}

// NewAssessmentService registers the given questionnaires; with none, PHQ-9 is used.
func NewAssessmentService(store AssessmentStore, log *zap.Logger, questionnaires ...Questionnaire) *AssessmentService {
	if log == nil {
		log = zap.NewNop()
	}
	if len(questionnaires) == 0 {
		questionnaires = []Questionnaire{PHQ9()}
	}
	byID := make(map[string]Questionnaire, len(questionnaires))
	for _, q := range questionnaires {
		byID[q.ID] = q
	}
	return &AssessmentService{
		store:          store,
		questionnaires: byID,
		log:            log,
		now:            func() time.Time { return time.Now().UTC() },
		idGenerator:    defaultAssessmentID,
	}
}

func defaultAssessmentID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// SetRiskThreshold overrides the risk threshold of every registered questionnaire.
func (s *AssessmentService) SetRiskThreshold(threshold int) {
	s.scorer.RiskThreshold = threshold
}

// Questionnaire returns a copy of the registered questionnaire.
func (s *AssessmentService) Questionnaire(id string) (*Questionnaire, error) {
	q, ok := s.questionnaires[id]
	if !ok {
		return nil, wrapDomainError(ErrQuestionnaireNotFound)
	}
	cp := q
	cp.Questions = append([]Question(nil), q.Questions...)
	cp.Bands = append(BandTable(nil), q.Bands...)
	return &cp, nil
}

func (s *AssessmentService) QuestionnaireIDs() []string {
	ids := make([]string, 0, len(s.questionnaires))
	for id := range s.questionnaires {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *AssessmentService) Progress(questionnaireID string, responses ResponseSet) (Progress, error) {
	q, ok := s.questionnaires[questionnaireID]
	if !ok {
		return Progress{}, wrapDomainError(ErrQuestionnaireNotFound)
	}
	return AssessmentProgress(responses, q), nil
}

// Submit scores responses and stores the result. Incomplete submissions are
// rejected with an unprocessable ServiceError wrapping *IncompleteAssessmentError.
func (s *AssessmentService) Submit(userID, questionnaireID string, responses ResponseSet) (*AssessmentRecord, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, NewInvalidError("user_id required")
	}
	q, ok := s.questionnaires[questionnaireID]
	if !ok {
		return nil, wrapDomainError(ErrQuestionnaireNotFound)
	}
	result, err := s.scorer.Score(responses, q)
	if err != nil {
		return nil, wrapDomainError(err)
	}
	stored := make(ResponseSet, len(responses))
	for id, v := range responses {
		stored[id] = v
	}
	rec := &AssessmentRecord{
		ID:              s.idGenerator(),
		UserID:          userID,
		QuestionnaireID: q.ID,
		Responses:       stored,
		Result:          result,
		SubmittedAt:     s.now(),
	}
	if err := s.store.SaveAssessment(rec); err != nil {
		return nil, err
	}
	s.store.AddAudit(AuditEntry{Time: rec.SubmittedAt, Actor: userID, Action: "submit_assessment", Target: rec.ID, Note: string(result.Band)})
	if result.ElevatedRiskFlag {
		s.store.AddAudit(AuditEntry{Time: rec.SubmittedAt, Actor: userID, Action: "elevated_risk", Target: rec.ID, Note: q.ID})
		s.log.Warn("elevated risk response",
			zap.String("assessment_id", rec.ID),
			zap.String("questionnaire", q.ID),
		)
	}
	return rec, nil
}

// History returns a user's submissions, newest first.
func (s *AssessmentService) History(userID string) ([]*AssessmentRecord, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, NewInvalidError("user_id required")
	}
	recs, err := s.store.ListAssessments(userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].SubmittedAt.After(recs[j].SubmittedAt) })
	return recs, nil
}
