package models

import (
	"encoding/json"
	"fmt"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	MultipleSelect QuestionType = "multiple_select"
	Matching       QuestionType = "matching"
	Ordering       QuestionType = "ordering"
	DragDrop       QuestionType = "drag_drop"
	FillIn         QuestionType = "fill_in"
	Scenario       QuestionType = "scenario"
)

// QuestionTypeNames maps each type to its display label.
var QuestionTypeNames = map[QuestionType]string{
	MultipleChoice: "Multiple Choice",
	MultipleSelect: "Multiple Select",
	Matching:       "Matching",
	Ordering:       "Ordering / Sequencing",
	DragDrop:       "Drag and Drop",
	FillIn:         "Fill in the Blank",
	Scenario:       "Scenario-Based",
}

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

// Option is a single answer choice with a stable key.
type Option struct {
	Key  string `json:"key" validate:"required"`
	Text string `json:"text" validate:"required"`
}

// MatchPair is one left/right tuple of a matching question. The answer key
// is the implicit left -> right mapping over all pairs.
type MatchPair struct {
	Left  string `json:"left" validate:"required"`
	Right string `json:"right" validate:"required"`
}

// DragItem is a draggable item with the category it belongs to.
type DragItem struct {
	Text            string `json:"text" validate:"required"`
	CorrectCategory string `json:"correct_category" validate:"required"`
}

// Question is the tagged union over the seven supported variants. Common
// fields are always present; exactly one variant payload is populated,
// selected by Type. Questions are immutable after bank load and shared
// read-only across sessions.
type Question struct {
	ID          string          `json:"id"`
	Type        QuestionType    `json:"type"`
	Domain      string          `json:"domain"`
	Objective   string          `json:"objective,omitempty"`
	Difficulty  DifficultyLevel `json:"difficulty,omitempty"`
	Prompt      string          `json:"question"`
	Explanation string          `json:"explanation,omitempty"`
	Tags        []string        `json:"tags,omitempty"`

	// Bank provenance, filled by the loader.
	BankID string `json:"-"`

	// multiple_choice / multiple_select
	Options     []Option `json:"options,omitempty"`
	Correct     string   `json:"-"` // multiple_choice: single key
	CorrectSet  []string `json:"-"` // multiple_select: set of keys
	SelectCount int      `json:"select_count,omitempty"`

	// matching
	Pairs []MatchPair `json:"pairs,omitempty"`

	// ordering
	Items        []string `json:"-"` // display order
	CorrectOrder []string `json:"correct_order,omitempty"`

	// drag_drop
	Categories []string   `json:"categories,omitempty"`
	DragItems  []DragItem `json:"-"`

	// fill_in
	CorrectAnswers []string `json:"correct_answers,omitempty"`
	CaseSensitive  bool     `json:"case_sensitive,omitempty"`

	// scenario
	ScenarioText string `json:"scenario,omitempty"`
	Parts        []Part `json:"parts,omitempty"`
}

// Part is a sub-question of a scenario. Only multiple_choice,
// multiple_select and fill_in parts are permitted; nesting scenarios is not.
type Part struct {
	ID          string       `json:"id"`
	Type        QuestionType `json:"type"`
	Prompt      string       `json:"question"`
	Explanation string       `json:"explanation,omitempty"`

	Options     []Option `json:"options,omitempty"`
	Correct     string   `json:"-"`
	CorrectSet  []string `json:"-"`
	SelectCount int      `json:"select_count,omitempty"`

	CorrectAnswers []string `json:"correct_answers,omitempty"`
	CaseSensitive  bool     `json:"case_sensitive,omitempty"`
}

// questionJSON mirrors the bank file shape. The "correct" field is a string
// for multiple_choice and an array for multiple_select, and "items" is a
// string array for ordering but an object array for drag_drop, so both are
// decoded through RawMessage keyed off the declared type.
type questionJSON struct {
	ID          string          `json:"id"`
	Type        QuestionType    `json:"type"`
	Domain      string          `json:"domain"`
	Objective   string          `json:"objective"`
	Difficulty  DifficultyLevel `json:"difficulty"`
	Prompt      string          `json:"question"`
	Explanation string          `json:"explanation"`
	Tags        []string        `json:"tags"`

	Options     []Option        `json:"options"`
	Correct     json.RawMessage `json:"correct"`
	SelectCount int             `json:"select_count"`

	Pairs []MatchPair `json:"pairs"`

	Items        json.RawMessage `json:"items"`
	CorrectOrder []string        `json:"correct_order"`

	Categories []string `json:"categories"`

	CorrectAnswers []string `json:"correct_answers"`
	CaseSensitive  bool     `json:"case_sensitive"`

	ScenarioText string `json:"scenario"`
	Parts        []Part `json:"parts"`
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var raw questionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*q = Question{
		ID:             raw.ID,
		Type:           raw.Type,
		Domain:         raw.Domain,
		Objective:      raw.Objective,
		Difficulty:     raw.Difficulty,
		Prompt:         raw.Prompt,
		Explanation:    raw.Explanation,
		Tags:           raw.Tags,
		Options:        raw.Options,
		SelectCount:    raw.SelectCount,
		Pairs:          raw.Pairs,
		CorrectOrder:   raw.CorrectOrder,
		Categories:     raw.Categories,
		CorrectAnswers: raw.CorrectAnswers,
		CaseSensitive:  raw.CaseSensitive,
		ScenarioText:   raw.ScenarioText,
		Parts:          raw.Parts,
	}

	switch raw.Type {
	case MultipleChoice:
		if len(raw.Correct) > 0 {
			if err := json.Unmarshal(raw.Correct, &q.Correct); err != nil {
				return fmt.Errorf("question %s: correct key: %w", raw.ID, err)
			}
		}
	case MultipleSelect:
		if len(raw.Correct) > 0 {
			if err := json.Unmarshal(raw.Correct, &q.CorrectSet); err != nil {
				return fmt.Errorf("question %s: correct set: %w", raw.ID, err)
			}
		}
	case Ordering:
		if len(raw.Items) > 0 {
			if err := json.Unmarshal(raw.Items, &q.Items); err != nil {
				return fmt.Errorf("question %s: items: %w", raw.ID, err)
			}
		}
	case DragDrop:
		if len(raw.Items) > 0 {
			if err := json.Unmarshal(raw.Items, &q.DragItems); err != nil {
				return fmt.Errorf("question %s: items: %w", raw.ID, err)
			}
		}
	}

	return nil
}

func (q Question) MarshalJSON() ([]byte, error) {
	raw := questionJSON{
		ID:             q.ID,
		Type:           q.Type,
		Domain:         q.Domain,
		Objective:      q.Objective,
		Difficulty:     q.Difficulty,
		Prompt:         q.Prompt,
		Explanation:    q.Explanation,
		Tags:           q.Tags,
		Options:        q.Options,
		SelectCount:    q.SelectCount,
		Pairs:          q.Pairs,
		CorrectOrder:   q.CorrectOrder,
		Categories:     q.Categories,
		CorrectAnswers: q.CorrectAnswers,
		CaseSensitive:  q.CaseSensitive,
		ScenarioText:   q.ScenarioText,
		Parts:          q.Parts,
	}

	switch q.Type {
	case MultipleChoice:
		if q.Correct != "" {
			b, err := json.Marshal(q.Correct)
			if err != nil {
				return nil, err
			}
			raw.Correct = b
		}
	case MultipleSelect:
		if q.CorrectSet != nil {
			b, err := json.Marshal(q.CorrectSet)
			if err != nil {
				return nil, err
			}
			raw.Correct = b
		}
	case Ordering:
		if q.Items != nil {
			b, err := json.Marshal(q.Items)
			if err != nil {
				return nil, err
			}
			raw.Items = b
		}
	case DragDrop:
		if q.DragItems != nil {
			b, err := json.Marshal(q.DragItems)
			if err != nil {
				return nil, err
			}
			raw.Items = b
		}
	}

	return json.Marshal(raw)
}

// partJSON handles the same "correct" ambiguity for scenario parts.
type partJSON struct {
	ID          string       `json:"id"`
	Type        QuestionType `json:"type"`
	Prompt      string       `json:"question"`
	Explanation string       `json:"explanation"`

	Options     []Option        `json:"options"`
	Correct     json.RawMessage `json:"correct"`
	SelectCount int             `json:"select_count"`

	CorrectAnswers []string `json:"correct_answers"`
	CaseSensitive  bool     `json:"case_sensitive"`
}

func (p *Part) UnmarshalJSON(data []byte) error {
	var raw partJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = Part{
		ID:             raw.ID,
		Type:           raw.Type,
		Prompt:         raw.Prompt,
		Explanation:    raw.Explanation,
		Options:        raw.Options,
		SelectCount:    raw.SelectCount,
		CorrectAnswers: raw.CorrectAnswers,
		CaseSensitive:  raw.CaseSensitive,
	}

	switch raw.Type {
	case MultipleChoice:
		if len(raw.Correct) > 0 {
			if err := json.Unmarshal(raw.Correct, &p.Correct); err != nil {
				return fmt.Errorf("part %s: correct key: %w", raw.ID, err)
			}
		}
	case MultipleSelect:
		if len(raw.Correct) > 0 {
			if err := json.Unmarshal(raw.Correct, &p.CorrectSet); err != nil {
				return fmt.Errorf("part %s: correct set: %w", raw.ID, err)
			}
		}
	}

	return nil
}

func (p Part) MarshalJSON() ([]byte, error) {
	raw := partJSON{
		ID:             p.ID,
		Type:           p.Type,
		Prompt:         p.Prompt,
		Explanation:    p.Explanation,
		Options:        p.Options,
		SelectCount:    p.SelectCount,
		CorrectAnswers: p.CorrectAnswers,
		CaseSensitive:  p.CaseSensitive,
	}

	switch p.Type {
	case MultipleChoice:
		if p.Correct != "" {
			b, err := json.Marshal(p.Correct)
			if err != nil {
				return nil, err
			}
			raw.Correct = b
		}
	case MultipleSelect:
		if p.CorrectSet != nil {
			b, err := json.Marshal(p.CorrectSet)
			if err != nil {
				return nil, err
			}
			raw.Correct = b
		}
	}

	return json.Marshal(raw)
}
