package validator

import (
	"fmt"

	"github.com/certprep/quiz-service/internal/models"
)

// QuestionValidator enforces the structural invariants of each question
// variant at bank load time. The grading engine assumes validated questions;
// anything that slips through grades fail-closed instead of erroring.
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion validates a complete question definition.
func (v *QuestionValidator) ValidateQuestion(q *models.Question) error {
	if q.ID == "" {
		return fmt.Errorf("question id is required")
	}
	if q.Prompt == "" && q.Type != models.Scenario {
		return fmt.Errorf("question %s: text is required", q.ID)
	}

	switch q.Type {
	case models.MultipleChoice:
		return v.validateMultipleChoice(q)
	case models.MultipleSelect:
		return v.validateMultipleSelect(q)
	case models.Matching:
		return v.validateMatching(q)
	case models.Ordering:
		return v.validateOrdering(q)
	case models.DragDrop:
		return v.validateDragDrop(q)
	case models.FillIn:
		return v.validateFillIn(q)
	case models.Scenario:
		return v.validateScenario(q)
	default:
		return fmt.Errorf("question %s: unsupported question type: %s", q.ID, q.Type)
	}
}

// ValidateBank validates every question of a bank and the uniqueness of
// question ids (including scenario part ids) within it.
func (v *QuestionValidator) ValidateBank(bank *models.Bank) error {
	if bank.BankID == "" {
		return fmt.Errorf("bank id is required")
	}
	if len(bank.Questions) == 0 {
		return fmt.Errorf("bank %s: contains no questions", bank.BankID)
	}

	seen := make(map[string]bool)
	for i := range bank.Questions {
		q := &bank.Questions[i]
		if err := v.ValidateQuestion(q); err != nil {
			return fmt.Errorf("bank %s: %w", bank.BankID, err)
		}
		if seen[q.ID] {
			return fmt.Errorf("bank %s: duplicate question id %s", bank.BankID, q.ID)
		}
		seen[q.ID] = true
		for _, part := range q.Parts {
			if seen[part.ID] {
				return fmt.Errorf("bank %s: part id %s collides with another question id", bank.BankID, part.ID)
			}
			seen[part.ID] = true
		}
	}

	return nil
}

func (v *QuestionValidator) validateOptions(id string, options []models.Option) (map[string]bool, error) {
	if len(options) < 2 {
		return nil, fmt.Errorf("question %s: must have at least 2 options", id)
	}

	keys := make(map[string]bool, len(options))
	for _, option := range options {
		if option.Key == "" || option.Text == "" {
			return nil, fmt.Errorf("question %s: option key and text are required", id)
		}
		if keys[option.Key] {
			return nil, fmt.Errorf("question %s: duplicate option key %s", id, option.Key)
		}
		keys[option.Key] = true
	}
	return keys, nil
}

func (v *QuestionValidator) validateMultipleChoice(q *models.Question) error {
	keys, err := v.validateOptions(q.ID, q.Options)
	if err != nil {
		return err
	}
	if q.Correct == "" {
		return fmt.Errorf("question %s: correct answer key is required", q.ID)
	}
	if !keys[q.Correct] {
		return fmt.Errorf("question %s: correct key %s is not a declared option", q.ID, q.Correct)
	}
	return nil
}

func (v *QuestionValidator) validateMultipleSelect(q *models.Question) error {
	keys, err := v.validateOptions(q.ID, q.Options)
	if err != nil {
		return err
	}
	if q.SelectCount < 1 {
		return fmt.Errorf("question %s: select_count must be at least 1", q.ID)
	}
	if q.SelectCount > len(q.Options) {
		return fmt.Errorf("question %s: select_count %d exceeds option count %d", q.ID, q.SelectCount, len(q.Options))
	}
	if len(q.CorrectSet) != q.SelectCount {
		return fmt.Errorf("question %s: correct set size %d does not match select_count %d", q.ID, len(q.CorrectSet), q.SelectCount)
	}
	for _, key := range q.CorrectSet {
		if !keys[key] {
			return fmt.Errorf("question %s: correct key %s is not a declared option", q.ID, key)
		}
	}
	return nil
}

func (v *QuestionValidator) validateMatching(q *models.Question) error {
	if len(q.Pairs) == 0 {
		return fmt.Errorf("question %s: must have at least 1 pair", q.ID)
	}
	lefts := make(map[string]bool, len(q.Pairs))
	for _, pair := range q.Pairs {
		if pair.Left == "" || pair.Right == "" {
			return fmt.Errorf("question %s: pair left and right are required", q.ID)
		}
		if lefts[pair.Left] {
			return fmt.Errorf("question %s: duplicate left item %s", q.ID, pair.Left)
		}
		lefts[pair.Left] = true
	}
	return nil
}

func (v *QuestionValidator) validateOrdering(q *models.Question) error {
	if len(q.Items) == 0 {
		return fmt.Errorf("question %s: must have at least 1 item", q.ID)
	}
	if len(q.CorrectOrder) != len(q.Items) {
		return fmt.Errorf("question %s: correct_order length %d does not match items length %d", q.ID, len(q.CorrectOrder), len(q.Items))
	}

	// correct_order must be a permutation of items
	counts := make(map[string]int, len(q.Items))
	for _, item := range q.Items {
		counts[item]++
	}
	for _, item := range q.CorrectOrder {
		counts[item]--
		if counts[item] < 0 {
			return fmt.Errorf("question %s: correct_order is not a permutation of items (%s)", q.ID, item)
		}
	}
	return nil
}

func (v *QuestionValidator) validateDragDrop(q *models.Question) error {
	if len(q.Categories) < 2 {
		return fmt.Errorf("question %s: must have at least 2 categories", q.ID)
	}
	if len(q.DragItems) == 0 {
		return fmt.Errorf("question %s: must have at least 1 item", q.ID)
	}

	declared := make(map[string]bool, len(q.Categories))
	for _, category := range q.Categories {
		declared[category] = true
	}
	for _, item := range q.DragItems {
		if item.Text == "" {
			return fmt.Errorf("question %s: item text is required", q.ID)
		}
		if !declared[item.CorrectCategory] {
			return fmt.Errorf("question %s: item %q references undeclared category %q", q.ID, item.Text, item.CorrectCategory)
		}
	}
	return nil
}

func (v *QuestionValidator) validateFillIn(q *models.Question) error {
	if len(q.CorrectAnswers) == 0 {
		return fmt.Errorf("question %s: must have at least 1 accepted answer", q.ID)
	}
	for _, answer := range q.CorrectAnswers {
		if answer == "" {
			return fmt.Errorf("question %s: accepted answers cannot be empty", q.ID)
		}
	}
	return nil
}

func (v *QuestionValidator) validateScenario(q *models.Question) error {
	if q.ScenarioText == "" {
		return fmt.Errorf("question %s: scenario text is required", q.ID)
	}
	if len(q.Parts) == 0 {
		return fmt.Errorf("question %s: must have at least 1 part", q.ID)
	}

	seen := make(map[string]bool, len(q.Parts))
	for i := range q.Parts {
		part := &q.Parts[i]
		if part.ID == "" {
			return fmt.Errorf("question %s: part id is required", q.ID)
		}
		if seen[part.ID] {
			return fmt.Errorf("question %s: duplicate part id %s", q.ID, part.ID)
		}
		seen[part.ID] = true

		if err := v.validatePart(q.ID, part); err != nil {
			return err
		}
	}
	return nil
}

func (v *QuestionValidator) validatePart(questionID string, p *models.Part) error {
	// Parts reuse the top-level rules for their own type; scenarios cannot
	// nest.
	partQuestion := &models.Question{
		ID:             p.ID,
		Type:           p.Type,
		Prompt:         p.Prompt,
		Options:        p.Options,
		Correct:        p.Correct,
		CorrectSet:     p.CorrectSet,
		SelectCount:    p.SelectCount,
		CorrectAnswers: p.CorrectAnswers,
		CaseSensitive:  p.CaseSensitive,
	}

	switch p.Type {
	case models.MultipleChoice:
		return v.validateMultipleChoice(partQuestion)
	case models.MultipleSelect:
		return v.validateMultipleSelect(partQuestion)
	case models.FillIn:
		return v.validateFillIn(partQuestion)
	default:
		return fmt.Errorf("question %s: part %s has unsupported type %s", questionID, p.ID, p.Type)
	}
}
