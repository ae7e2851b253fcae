package models

import (
	"time"

	"gorm.io/datatypes"
)

// EvaluationResult is the outcome of grading one question (or one scenario
// part). Score is in [0,1]; fractional values carry partial credit for the
// performance-based types.
type EvaluationResult struct {
	IsCorrect     bool         `json:"is_correct"`
	Score         float64      `json:"score"`
	CorrectAnswer any          `json:"correct_answer"`
	Feedback      string       `json:"feedback,omitempty"`
	PartResults   []PartResult `json:"part_results,omitempty"`
}

// PartResult pairs a scenario part id with its evaluation, preserving the
// part order of the question definition.
type PartResult struct {
	PartID string `json:"part_id"`
	EvaluationResult
}

// QuestionResult is one row of a scored session: the question identity plus
// its evaluation and the submitted answer, as persisted for review.
type QuestionResult struct {
	QuestionID    string       `json:"question_id"`
	QuestionType  QuestionType `json:"question_type"`
	Domain        string       `json:"domain"`
	Objective     string       `json:"objective,omitempty"`
	UserAnswer    any          `json:"user_answer"`
	CorrectAnswer any          `json:"correct_answer"`
	IsCorrect     bool         `json:"is_correct"`
	Score         float64      `json:"score"`
	Feedback      string       `json:"feedback,omitempty"`
	PartResults   []PartResult `json:"part_results,omitempty"`
}

// DomainResult is the per-domain slice of a ScoreSummary.
type DomainResult struct {
	Domain     string  `json:"domain"`
	Name       string  `json:"name"`
	Weight     float64 `json:"weight"`
	Total      int     `json:"total"`
	Correct    int     `json:"correct"`
	Earned     float64 `json:"earned"`
	Percentage float64 `json:"percentage"`
}

// ScoreSummary aggregates a full session's per-question results.
type ScoreSummary struct {
	TotalQuestions   int                     `json:"total_questions"`
	CorrectCount     int                     `json:"correct_count"`
	EarnedPoints     float64                 `json:"earned_points"`
	RawPercentage    float64                 `json:"raw_percentage"`
	ScaledScore      int                     `json:"scaled_score"`
	Passed           bool                    `json:"passed"`
	PassingScore     int                     `json:"passing_score"`
	TimeSpentSeconds int                     `json:"time_spent_seconds"`
	DomainBreakdown  map[string]DomainResult `json:"domain_breakdown"`
	Responses        []QuestionResult        `json:"responses"`
}

// SubmissionRecord is the persisted summary of one completed session,
// created exactly once per session. Responses and the domain breakdown are
// stored as JSON columns.
type SubmissionRecord struct {
	ID        string   `json:"id" gorm:"primaryKey;size:36"`
	SessionID string   `json:"session_id" gorm:"not null;uniqueIndex;size:36"`
	Mode      QuizMode `json:"mode" gorm:"not null;size:10;index"`

	BankIDs datatypes.JSON `json:"bank_ids" gorm:"type:jsonb"` // []string

	TotalQuestions   int     `json:"total_questions" gorm:"not null"`
	CorrectCount     int     `json:"correct_count"`
	RawPercentage    float64 `json:"raw_percentage"`
	ScaledScore      int     `json:"scaled_score"`
	Passed           bool    `json:"passed"`
	TimeSpentSeconds int     `json:"time_spent_seconds"`

	DomainBreakdown datatypes.JSON `json:"domain_breakdown" gorm:"type:jsonb"` // map[string]DomainResult
	Responses       datatypes.JSON `json:"responses" gorm:"type:jsonb"`        // []QuestionResult

	StartedAt   time.Time `json:"started_at"`
	SubmittedAt time.Time `json:"submitted_at" gorm:"index"`
}

func (SubmissionRecord) TableName() string {
	return "submission_records"
}

// OverallStats aggregates history across all persisted submissions.
type OverallStats struct {
	TotalAttempts  int           `json:"total_attempts"`
	ExamAttempts   int           `json:"exam_attempts"`
	StudyAttempts  int           `json:"study_attempts"`
	PassCount      int           `json:"pass_count"`
	AverageScore   float64       `json:"avg_score"`
	BestScore      float64       `json:"best_score"`
	TotalQuestions int           `json:"total_questions_answered"`
	RecentScores   []RecentScore `json:"recent_scores"`
}

// RecentScore is one point of the recent-results trend line.
type RecentScore struct {
	ScaledScore int       `json:"scaled_score"`
	Mode        QuizMode  `json:"mode"`
	SubmittedAt time.Time `json:"submitted_at"`
}
