package services

import (
	"encoding/json"
	"time"

	"github.com/certprep/quiz-service/internal/models"
)

// ===== REQUEST DTOs =====

// StartQuizRequest configures a new quiz session. BankFiles are file names
// inside the configured banks directory; filters narrow the question pool
// before it is shuffled and trimmed to QuestionCount.
type StartQuizRequest struct {
	Mode      models.QuizMode `json:"mode" validate:"required,quiz_mode"`
	BankFiles []string        `json:"bank_files" validate:"required,min=1"`

	QuestionCount    int  `json:"question_count" validate:"omitempty,min=1"`
	TimeLimitMinutes *int `json:"time_limit_minutes" validate:"omitempty,min=0"`

	Domains    []string               `json:"domains"`
	Types      []models.QuestionType  `json:"types" validate:"omitempty,dive,question_type"`
	Difficulty models.DifficultyLevel `json:"difficulty" validate:"omitempty,difficulty_level"`

	// Shuffle defaults to true; exam simulations may disable it to walk a
	// bank in authored order.
	Shuffle *bool `json:"shuffle"`
}

// AnswerRequest records or replaces the answer for one question. The
// payload shape depends on the question type and is validated at grading
// time, never on the way in.
type AnswerRequest struct {
	QuestionID string          `json:"question_id" validate:"required"`
	Answer     json.RawMessage `json:"answer"`
}

// SubmitQuizRequest finalizes a session. Answers may carry a last batch of
// responses merged over previously recorded ones; answers already locked by
// a study-mode check keep their recorded value.
type SubmitQuizRequest struct {
	Answers          map[string]json.RawMessage `json:"answers"`
	TimeSpentSeconds int                        `json:"time_spent_seconds" validate:"omitempty,min=0"`
}

// ===== RESPONSE DTOs =====

// ClientPart is the answer-stripped view of a scenario sub-question.
type ClientPart struct {
	ID          string              `json:"id"`
	Type        models.QuestionType `json:"type"`
	Prompt      string              `json:"question"`
	Options     []models.Option     `json:"options,omitempty"`
	SelectCount int                 `json:"select_count,omitempty"`
}

// ClientQuestion is what the student sees: the prompt and the material to
// answer with, never the answer key. Matching rights and ordering/drag
// items come from the session's stored view so the arrangement is stable
// across fetches.
type ClientQuestion struct {
	ID         string                 `json:"id"`
	Type       models.QuestionType    `json:"type"`
	Domain     string                 `json:"domain"`
	DomainName string                 `json:"domain_name,omitempty"`
	Objective  string                 `json:"objective,omitempty"`
	Difficulty models.DifficultyLevel `json:"difficulty,omitempty"`
	Prompt     string                 `json:"question"`

	Options     []models.Option `json:"options,omitempty"`
	SelectCount int             `json:"select_count,omitempty"`

	Lefts  []string `json:"lefts,omitempty"`
	Rights []string `json:"rights,omitempty"`

	Items      []string `json:"items,omitempty"`
	Categories []string `json:"categories,omitempty"`

	ScenarioText string       `json:"scenario,omitempty"`
	Parts        []ClientPart `json:"parts,omitempty"`

	Answered bool `json:"answered"`
	Flagged  bool `json:"flagged"`
	Checked  bool `json:"checked,omitempty"`
}

// BankDetail is the browse view of one bank: catalog metadata plus its
// questions with every answer key stripped, same as the in-session view.
type BankDetail struct {
	BankID      string           `json:"bank_id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Version     string           `json:"version,omitempty"`
	Questions   []ClientQuestion `json:"questions"`
}

// SessionResponse is the client view of a session.
type SessionResponse struct {
	SessionID        string               `json:"session_id"`
	Mode             models.QuizMode      `json:"mode"`
	Status           models.SessionStatus `json:"status"`
	TimeLimitMinutes int                  `json:"time_limit_minutes"`
	StartedAt        time.Time            `json:"started_at"`
	BankIDs          []string             `json:"bank_ids"`
	TotalQuestions   int                  `json:"total_questions"`
	Questions        []ClientQuestion     `json:"questions"`
}

// SubmitResponse carries the persisted record id alongside the summary, so
// a client that lost the response can recover the result from history.
type SubmitResponse struct {
	RecordID string               `json:"record_id"`
	Summary  *models.ScoreSummary `json:"summary"`
}

// clientQuestion builds the stripped view of q using the session's stored
// presentation. Study-mode state flags are filled in by the caller.
func clientQuestion(q *models.Question, view models.QuestionView) ClientQuestion {
	cq := ClientQuestion{
		ID:           q.ID,
		Type:         q.Type,
		Domain:       q.Domain,
		DomainName:   models.DomainName(q.Domain),
		Objective:    q.Objective,
		Difficulty:   q.Difficulty,
		Prompt:       q.Prompt,
		Options:      q.Options,
		SelectCount:  q.SelectCount,
		Categories:   q.Categories,
		ScenarioText: q.ScenarioText,
	}

	switch q.Type {
	case models.Matching:
		cq.Lefts = make([]string, 0, len(q.Pairs))
		for _, p := range q.Pairs {
			cq.Lefts = append(cq.Lefts, p.Left)
		}
		cq.Rights = view.ShuffledRights
	case models.Ordering, models.DragDrop:
		cq.Items = view.DisplayItems
	case models.Scenario:
		cq.Parts = make([]ClientPart, 0, len(q.Parts))
		for _, p := range q.Parts {
			cq.Parts = append(cq.Parts, ClientPart{
				ID:          p.ID,
				Type:        p.Type,
				Prompt:      p.Prompt,
				Options:     p.Options,
				SelectCount: p.SelectCount,
			})
		}
	}

	return cq
}
