package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type ErrorCode string

const (
	ErrorInvalid       ErrorCode = "invalid"
	ErrorNotFound      ErrorCode = "not_found"
	ErrorUnprocessable ErrorCode = "unprocessable"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *ServiceError) Error() string { return e.Message }

func (e *ServiceError) Unwrap() error { return e.Err }

func NewInvalidError(msg string) error  { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewNotFoundError(msg string) error { return &ServiceError{Code: ErrorNotFound, Message: msg} }

// wrapDomainError classifies core errors into the service taxonomy while
// keeping the wrapped error reachable through errors.Is / errors.As.
func wrapDomainError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsServiceError(err); ok {
		return err
	}
	code := ErrorInvalid
	switch {
	case errors.Is(err, ErrIncompleteAssessment):
		code = ErrorUnprocessable
	case errors.Is(err, ErrQuestionnaireNotFound):
		code = ErrorNotFound
	}
	return &ServiceError{Code: code, Message: err.Error(), Err: err}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

var (
	// ErrIncompleteAssessment is returned when scoring is attempted before every question is answered.
	ErrIncompleteAssessment = errors.New("incomplete assessment")
	// ErrInvalidResponseValue flags a response score that the question does not declare.
	ErrInvalidResponseValue = errors.New("invalid response value")
	// ErrInvalidCalendarRequest is returned for a non-positive year or a month outside 1..12.
	ErrInvalidCalendarRequest = errors.New("invalid calendar request")
	// ErrInvalidEntry rejects daily log entries with out-of-range measurements.
	ErrInvalidEntry = errors.New("invalid mood entry")
	// ErrInvalidQuestionnaire is returned by ValidateQuestionnaire.
	ErrInvalidQuestionnaire = errors.New("invalid questionnaire")
	// ErrQuestionnaireNotFound is returned for an unknown questionnaire id.
	ErrQuestionnaireNotFound = errors.New("questionnaire not found")
)

// IncompleteAssessmentError lists unanswered question ids in questionnaire order.
type IncompleteAssessmentError struct {
	Missing []int
}

func (e *IncompleteAssessmentError) Error() string {
	ids := make([]string, 0, len(e.Missing))
	for _, id := range e.Missing {
		ids = append(ids, strconv.Itoa(id))
	}
	return fmt.Sprintf("incomplete assessment: missing questions %s", strings.Join(ids, ","))
}

func (e *IncompleteAssessmentError) Is(target error) bool { return target == ErrIncompleteAssessment }

type InvalidResponseError struct {
	QuestionID int
	Score      int
	Reason     string
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid response value %d for question %d: %s", e.Score, e.QuestionID, e.Reason)
}

func (e *InvalidResponseError) Is(target error) bool { return target == ErrInvalidResponseValue }

type InvalidCalendarError struct {
	Year  int
	Month int
}

func (e *InvalidCalendarError) Error() string {
	return fmt.Sprintf("invalid calendar request: year=%d month=%d", e.Year, e.Month)
}

func (e *InvalidCalendarError) Is(target error) bool { return target == ErrInvalidCalendarRequest }
