package services

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const PHQ9ID = "phq9"

// PHQ9Bands is the standard severity table for the 0..27 PHQ-9 total.
var PHQ9Bands = BandTable{
	{Min: 0, Max: 4, Band: BandMinimal},
	{Min: 5, Max: 9, Band: BandMild},
	{Min: 10, Max: 14, Band: BandModerate},
	{Min: 15, Max: 19, Band: BandModeratelySevere},
	{Min: 20, Max: 27, Band: BandSevere},
}

var frequencyOptions = []Option{
	{Score: 0, Label: "Not at all"},
	{Score: 1, Label: "Several days"},
	{Score: 2, Label: "More than half the days"},
	{Score: 3, Label: "Nearly every day"},
}

var phq9Items = []string{
	"Little interest or pleasure in doing things",
	"Feeling down, depressed, or hopeless",
	"Trouble falling or staying asleep, or sleeping too much",
	"Feeling tired or having little energy",
	"Poor appetite or overeating",
	"Feeling bad about yourself or that you are a failure",
	"Trouble concentrating on things, such as reading or watching TV",
	"Moving or speaking so slowly that others could notice, or being fidgety or restless",
	"Thoughts that you would be better off dead or of hurting yourself",
}

// PHQ9 returns a fresh copy of the nine-item depression screener.
func PHQ9() Questionnaire {
	qs := make([]Question, 0, len(phq9Items))
	for i, text := range phq9Items {
		q := Question{ID: i + 1, Text: text, Options: append([]Option(nil), frequencyOptions...)}
		if i == len(phq9Items)-1 {
			q.Tags = []string{DefaultRiskTag}
		}
		qs = append(qs, q)
	}
	return Questionnaire{
		ID:               PHQ9ID,
		Title:            "PHQ-9 Depression Assessment",
		Prompt:           "Over the last 2 weeks, how often have you been bothered by:",
		Questions:        qs,
		Bands:            append(BandTable(nil), PHQ9Bands...),
		RiskTag:          DefaultRiskTag,
		RiskThreshold:    DefaultRiskThreshold,
		SupportThreshold: 9,
	}
}

// ValidateQuestionnaire checks question ids, option ladders and band coverage.
func ValidateQuestionnaire(q Questionnaire) error {
	if q.ID == "" {
		return fmt.Errorf("%w: id required", ErrInvalidQuestionnaire)
	}
	if len(q.Questions) == 0 {
		return fmt.Errorf("%w: %s has no questions", ErrInvalidQuestionnaire, q.ID)
	}
	seen := make(map[int]struct{}, len(q.Questions))
	maxTotal := 0
	for _, question := range q.Questions {
		if _, dup := seen[question.ID]; dup {
			return fmt.Errorf("%w: duplicate question id %d", ErrInvalidQuestionnaire, question.ID)
		}
		seen[question.ID] = struct{}{}
		if len(question.Options) == 0 {
			return fmt.Errorf("%w: question %d has no options", ErrInvalidQuestionnaire, question.ID)
		}
		for i, opt := range question.Options {
			if opt.Score != i {
				return fmt.Errorf("%w: question %d option %d has score %d, want %d", ErrInvalidQuestionnaire, question.ID, i, opt.Score, i)
			}
		}
		maxTotal += question.maxScore()
	}
	return validateBands(q.Bands, maxTotal)
}

func validateBands(bands BandTable, maxTotal int) error {
	if len(bands) == 0 {
		return fmt.Errorf("%w: band table is empty", ErrInvalidQuestionnaire)
	}
	next := 0
	for _, b := range bands {
		if b.Band == "" {
			return fmt.Errorf("%w: band %d-%d has no name", ErrInvalidQuestionnaire, b.Min, b.Max)
		}
		if b.Min != next || b.Max < b.Min {
			return fmt.Errorf("%w: band %q range %d-%d breaks coverage at %d", ErrInvalidQuestionnaire, b.Band, b.Min, b.Max, next)
		}
		next = b.Max + 1
	}
	if next-1 != maxTotal {
		return fmt.Errorf("%w: bands end at %d, max score is %d", ErrInvalidQuestionnaire, next-1, maxTotal)
	}
	return nil
}

// LoadQuestionnaire reads a YAML questionnaire definition and validates it.
func LoadQuestionnaire(path string) (*Questionnaire, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read questionnaire file: %w", err)
	}
	return ParseQuestionnaire(data)
}

func ParseQuestionnaire(data []byte) (*Questionnaire, error) {
	var q Questionnaire
	if err := yaml.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questionnaire YAML: %w", err)
	}
	if err := ValidateQuestionnaire(q); err != nil {
		return nil, err
	}
	return &q, nil
}
