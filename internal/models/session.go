package models

import (
	"encoding/json"
	"time"
)

type QuizMode string

const (
	ModeStudy QuizMode = "study"
	ModeExam  QuizMode = "exam"
)

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionSubmitted  SessionStatus = "submitted"
)

// QuestionView holds the per-session randomized presentation of a question:
// shuffled right column for matching, shuffled display order for ordering.
// It is generated once when the session is created and reused for the life
// of the session so the client always sees the same arrangement.
type QuestionView struct {
	QuestionID     string   `json:"question_id"`
	ShuffledRights []string `json:"shuffled_rights,omitempty"`
	DisplayItems   []string `json:"display_items,omitempty"`
}

// Session is one in-progress or completed quiz attempt. Mutable fields are
// owned exclusively by the session service; Questions are shared read-only
// bank data. Submitted transitions false -> true exactly once and never
// reverts.
type Session struct {
	ID               string        `json:"id"`
	Mode             QuizMode      `json:"mode"`
	Status           SessionStatus `json:"status"`
	TimeLimitMinutes int           `json:"time_limit_minutes"` // 0 = unlimited
	BankIDs          []string      `json:"bank_ids"`

	Questions []Question              `json:"questions"`
	Views     map[string]QuestionView `json:"views"`

	Answers map[string]json.RawMessage  `json:"answers"`
	Checked map[string]EvaluationResult `json:"checked"` // study mode only
	Flags   map[string]bool             `json:"flags"`

	StartedAt   time.Time  `json:"started_at"`
	Submitted   bool       `json:"submitted"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

// Question returns the session's question with the given id, or nil.
func (s *Session) Question(id string) *Question {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i]
		}
	}
	return nil
}
