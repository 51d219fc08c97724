package services

import "time"

// Option is one ordinal choice of a question.
type Option struct {
	Score int    `json:"score" yaml:"score"`
	Label string `json:"label" yaml:"label"`
}

// Question is an ordinal survey item. Options run 0..k by ascending score.
type Question struct {
	ID      int      `json:"id" yaml:"id"`
	Text    string   `json:"text" yaml:"text"`
	Options []Option `json:"options" yaml:"options"`
	Tags    []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

func (q Question) HasTag(tag string) bool {
	for _, t := range q.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (q Question) maxScore() int {
	if len(q.Options) == 0 {
		return 0
	}
	return q.Options[len(q.Options)-1].Score
}

func (q Question) hasScore(score int) bool {
	for _, o := range q.Options {
		if o.Score == score {
			return true
		}
	}
	return false
}

type Band string

const (
	BandMinimal          Band = "Minimal"
	BandMild             Band = "Mild"
	BandModerate         Band = "Moderate"
	BandModeratelySevere Band = "Moderately Severe"
	BandSevere           Band = "Severe"
)

// BandThreshold maps an inclusive total-score range to a band.
type BandThreshold struct {
	Min  int  `json:"min" yaml:"min"`
	Max  int  `json:"max" yaml:"max"`
	Band Band `json:"band" yaml:"band"`
}

// BandTable is ordered by Min and must cover 0..MaxScore without gaps.
type BandTable []BandThreshold

// Questionnaire is an ordered instrument together with its scoring rules.
type Questionnaire struct {
	ID        string     `json:"id" yaml:"id"`
	Title     string     `json:"title" yaml:"title"`
	Prompt    string     `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Questions []Question `json:"questions" yaml:"questions"`
	Bands     BandTable  `json:"bands" yaml:"bands"`
	// RiskTag marks questions whose answers raise ElevatedRiskFlag.
	RiskTag       string `json:"risk_tag,omitempty" yaml:"risk_tag,omitempty"`
	RiskThreshold int    `json:"risk_threshold,omitempty" yaml:"risk_threshold,omitempty"`
	// SupportThreshold: totals strictly above it recommend professional support.
	SupportThreshold int `json:"support_threshold,omitempty" yaml:"support_threshold,omitempty"`
}

// ResponseSet maps question id to the chosen option score.
type ResponseSet map[int]int

// AssessmentResult is immutable once computed; a retake produces a new one.
type AssessmentResult struct {
	TotalScore       int  `json:"total_score"`
	MaxScore         int  `json:"max_score"`
	Band             Band `json:"band"`
	ElevatedRiskFlag bool `json:"elevated_risk_flag"`
	RecommendSupport bool `json:"recommend_support"`
}

// AssessmentRecord is a stored submission.
type AssessmentRecord struct {
	ID              string           `json:"id"`
	UserID          string           `json:"user_id"`
	QuestionnaireID string           `json:"questionnaire_id"`
	Responses       ResponseSet      `json:"responses"`
	Result          AssessmentResult `json:"result"`
	SubmittedAt     time.Time        `json:"submitted_at"`
}

type MoodCategory string

const (
	MoodExcellent MoodCategory = "excellent"
	MoodGood      MoodCategory = "good"
	MoodOkay      MoodCategory = "okay"
	MoodLow       MoodCategory = "low"
	MoodStressed  MoodCategory = "stressed"
)

// MoodCategories lists categories in legend order.
var MoodCategories = []MoodCategory{MoodExcellent, MoodGood, MoodOkay, MoodLow, MoodStressed}

func (m MoodCategory) Valid() bool {
	for _, c := range MoodCategories {
		if c == m {
			return true
		}
	}
	return false
}

// DailyLogEntry is one day's wellness sample.
type DailyLogEntry struct {
	Date          Date         `json:"date"`
	Mood          MoodCategory `json:"mood"`
	StressPercent int          `json:"stress_percent"`
	EnergyPercent int          `json:"energy_percent"`
	SleepHours    float64      `json:"sleep_hours"`
}

// MoodLog is a sparse date-keyed log.
type MoodLog map[Date]DailyLogEntry

// MonthCell is nil for padding; Entry is nil when the day has no sample.
type MonthCell struct {
	Day   int            `json:"day"`
	Date  Date           `json:"date"`
	Entry *DailyLogEntry `json:"entry"`
}

type MonthView struct {
	Year          int          `json:"year"`
	Month         int          `json:"month"`
	LeadingBlanks int          `json:"leading_blanks"`
	Cells         []*MonthCell `json:"cells"`
}

// DayCells returns the non-padding cells.
func (v MonthView) DayCells() []*MonthCell {
	if v.LeadingBlanks >= len(v.Cells) {
		return nil
	}
	return v.Cells[v.LeadingBlanks:]
}

type SummaryStats struct {
	TotalDaysLogged int     `json:"total_days_logged"`
	AverageStress   int     `json:"average_stress"`
	AverageEnergy   int     `json:"average_energy"`
	AverageSleep    float64 `json:"average_sleep"`
}

type MoodCount struct {
	Mood  MoodCategory `json:"mood"`
	Count int          `json:"count"`
}

type AuditEntry struct {
	Time   time.Time `json:"time"`
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
	Target string    `json:"target"`
	Note   string    `json:"note,omitempty"`
}
