package events

import (
	"time"

	"github.com/certprep/quiz-service/internal/models"
	"github.com/google/uuid"
)

// EventType represents the result events emitted by the quiz service
type EventType string

const (
	EventSessionStarted   EventType = "session.started"
	EventSessionSubmitted EventType = "session.submitted"
)

// ResultEvent is the envelope for all published events
type ResultEvent struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Data      interface{} `json:"data"`
}

// SessionStartedEvent is emitted when a quiz session is created
type SessionStartedEvent struct {
	SessionID      string          `json:"session_id"`
	Mode           models.QuizMode `json:"mode"`
	BankIDs        []string        `json:"bank_ids"`
	TotalQuestions int             `json:"total_questions"`
	TimeLimit      int             `json:"time_limit_minutes"`
	StartedAt      time.Time       `json:"started_at"`
}

// SessionSubmittedEvent is emitted after a session has been scored and its
// record persisted.
type SessionSubmittedEvent struct {
	SessionID        string          `json:"session_id"`
	RecordID         string          `json:"record_id"`
	Mode             models.QuizMode `json:"mode"`
	TotalQuestions   int             `json:"total_questions"`
	CorrectCount     int             `json:"correct_count"`
	RawPercentage    float64         `json:"raw_percentage"`
	ScaledScore      int             `json:"scaled_score"`
	Passed           bool            `json:"passed"`
	TimeSpentSeconds int             `json:"time_spent_seconds"`
	SubmittedAt      time.Time       `json:"submitted_at"`
}

// NewResultEvent wraps an event payload in the standard envelope
func NewResultEvent(eventType EventType, data interface{}) *ResultEvent {
	return &ResultEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    "quiz-service",
		Version:   "1.0",
		Data:      data,
	}
}
