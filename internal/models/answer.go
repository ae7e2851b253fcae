package models

import "encoding/json"

// SubmittedAnswer carries a candidate's answer for one question. The payload
// shape depends on the question type:
//
//	multiple_choice  string option key
//	multiple_select  []string option keys
//	matching         map[string]string left -> right
//	ordering         []string items in submitted order
//	drag_drop        map[string]string item text -> category
//	fill_in          string free text
//	scenario         map[string]json.RawMessage part id -> part answer
//
// A nil payload means the question was left unanswered, which is distinct
// from an answered-but-wrong (or empty) submission. Evaluators decode the
// payload themselves and treat any shape mismatch as an incorrect answer
// rather than an error.
type SubmittedAnswer struct {
	QuestionID string          `json:"question_id"`
	Payload    json.RawMessage `json:"payload"`
}

// IsAnswered reports whether any payload was submitted at all. JSON null is
// treated the same as absence.
func (a SubmittedAnswer) IsAnswered() bool {
	return len(a.Payload) > 0 && string(a.Payload) != "null"
}
