package grading

import (
	"encoding/json"

	"github.com/certprep/quiz-service/internal/models"
)

// Evaluate grades a single question against the submitted answer payload and
// never fails: a missing, empty or shape-mismatched payload, or a question
// whose variant payload is somehow malformed, grades as incorrect with score
// 0 rather than returning an error, so a grading problem can not take down
// an in-progress session.
func Evaluate(q *models.Question, payload json.RawMessage) models.EvaluationResult {
	switch q.Type {
	case models.MultipleChoice:
		return evaluateMultipleChoice(q.Correct, q.Explanation, payload)
	case models.MultipleSelect:
		return evaluateMultipleSelect(q.CorrectSet, q.SelectCount, q.Explanation, payload)
	case models.Matching:
		return evaluateMatching(q, payload)
	case models.Ordering:
		return evaluateOrdering(q, payload)
	case models.DragDrop:
		return evaluateDragDrop(q, payload)
	case models.FillIn:
		return evaluateFillIn(q.CorrectAnswers, q.CaseSensitive, q.Explanation, payload)
	case models.Scenario:
		return evaluateScenario(q, payload)
	default:
		return incorrect(nil, q.Explanation)
	}
}

// EvaluatePart grades one scenario part with the rule for its own type.
// Nested scenario parts are not permitted and grade as incorrect.
func EvaluatePart(p *models.Part, payload json.RawMessage) models.EvaluationResult {
	switch p.Type {
	case models.MultipleChoice:
		return evaluateMultipleChoice(p.Correct, p.Explanation, payload)
	case models.MultipleSelect:
		return evaluateMultipleSelect(p.CorrectSet, p.SelectCount, p.Explanation, payload)
	case models.FillIn:
		return evaluateFillIn(p.CorrectAnswers, p.CaseSensitive, p.Explanation, payload)
	default:
		return incorrect(nil, p.Explanation)
	}
}

func incorrect(correctAnswer any, feedback string) models.EvaluationResult {
	return models.EvaluationResult{
		IsCorrect:     false,
		Score:         0,
		CorrectAnswer: correctAnswer,
		Feedback:      feedback,
	}
}

func answered(payload json.RawMessage) bool {
	return models.SubmittedAnswer{Payload: payload}.IsAnswered()
}

func evaluateMultipleChoice(correct, feedback string, payload json.RawMessage) models.EvaluationResult {
	if correct == "" {
		return incorrect(nil, feedback)
	}
	if !answered(payload) {
		return incorrect(correct, feedback)
	}

	var selected string
	if err := json.Unmarshal(payload, &selected); err != nil {
		return incorrect(correct, feedback)
	}

	if selected != correct {
		return incorrect(correct, feedback)
	}
	return models.EvaluationResult{
		IsCorrect:     true,
		Score:         1,
		CorrectAnswer: correct,
		Feedback:      feedback,
	}
}

func evaluateMultipleSelect(correctSet []string, selectCount int, feedback string, payload json.RawMessage) models.EvaluationResult {
	if len(correctSet) == 0 {
		return incorrect(nil, feedback)
	}
	if !answered(payload) {
		return incorrect(correctSet, feedback)
	}

	var selected []string
	if err := json.Unmarshal(payload, &selected); err != nil {
		return incorrect(correctSet, feedback)
	}

	selectedSet := toSet(selected)
	if selectCount > 0 && len(selectedSet) != selectCount {
		return incorrect(correctSet, feedback)
	}

	// Exact set equality, no credit for partial overlap.
	want := toSet(correctSet)
	if len(selectedSet) != len(want) {
		return incorrect(correctSet, feedback)
	}
	for key := range want {
		if !selectedSet[key] {
			return incorrect(correctSet, feedback)
		}
	}

	return models.EvaluationResult{
		IsCorrect:     true,
		Score:         1,
		CorrectAnswer: correctSet,
		Feedback:      feedback,
	}
}

func evaluateMatching(q *models.Question, payload json.RawMessage) models.EvaluationResult {
	correctMap := make(map[string]string, len(q.Pairs))
	for _, pair := range q.Pairs {
		correctMap[pair.Left] = pair.Right
	}
	if len(correctMap) == 0 {
		return incorrect(nil, q.Explanation)
	}
	if !answered(payload) {
		return incorrect(correctMap, q.Explanation)
	}

	var submitted map[string]string
	if err := json.Unmarshal(payload, &submitted); err != nil {
		return incorrect(correctMap, q.Explanation)
	}

	correctCount := 0
	for _, pair := range q.Pairs {
		if submitted[pair.Left] == pair.Right {
			correctCount++
		}
	}

	score := float64(correctCount) / float64(len(q.Pairs))
	return models.EvaluationResult{
		IsCorrect:     correctCount == len(q.Pairs),
		Score:         score,
		CorrectAnswer: correctMap,
		Feedback:      q.Explanation,
	}
}

func evaluateOrdering(q *models.Question, payload json.RawMessage) models.EvaluationResult {
	if len(q.CorrectOrder) == 0 {
		return incorrect(nil, q.Explanation)
	}
	if !answered(payload) {
		return incorrect(q.CorrectOrder, q.Explanation)
	}

	var submitted []string
	if err := json.Unmarshal(payload, &submitted); err != nil {
		return incorrect(q.CorrectOrder, q.Explanation)
	}

	// Position-wise comparison against the answer key; positions past the
	// end of a short submission count as incorrect, extra trailing items
	// earn nothing.
	correctPositions := 0
	for i, item := range q.CorrectOrder {
		if i < len(submitted) && submitted[i] == item {
			correctPositions++
		}
	}

	score := float64(correctPositions) / float64(len(q.CorrectOrder))
	return models.EvaluationResult{
		IsCorrect:     correctPositions == len(q.CorrectOrder) && len(submitted) == len(q.CorrectOrder),
		Score:         score,
		CorrectAnswer: q.CorrectOrder,
		Feedback:      q.Explanation,
	}
}

func evaluateDragDrop(q *models.Question, payload json.RawMessage) models.EvaluationResult {
	correctMap := make(map[string]string, len(q.DragItems))
	for _, item := range q.DragItems {
		correctMap[item.Text] = item.CorrectCategory
	}
	if len(correctMap) == 0 {
		return incorrect(nil, q.Explanation)
	}
	if !answered(payload) {
		return incorrect(correctMap, q.Explanation)
	}

	var submitted map[string]string
	if err := json.Unmarshal(payload, &submitted); err != nil {
		return incorrect(correctMap, q.Explanation)
	}

	// Unmapped items count as incorrect.
	correctCount := 0
	for _, item := range q.DragItems {
		if submitted[item.Text] == item.CorrectCategory {
			correctCount++
		}
	}

	score := float64(correctCount) / float64(len(q.DragItems))
	return models.EvaluationResult{
		IsCorrect:     correctCount == len(q.DragItems),
		Score:         score,
		CorrectAnswer: correctMap,
		Feedback:      q.Explanation,
	}
}

func evaluateFillIn(correctAnswers []string, caseSensitive bool, feedback string, payload json.RawMessage) models.EvaluationResult {
	if len(correctAnswers) == 0 {
		return incorrect(nil, feedback)
	}
	if !answered(payload) {
		return incorrect(correctAnswers, feedback)
	}

	var submitted string
	if err := json.Unmarshal(payload, &submitted); err != nil {
		return incorrect(correctAnswers, feedback)
	}

	normalized := Normalize(submitted, caseSensitive)
	if normalized == "" {
		return incorrect(correctAnswers, feedback)
	}
	for _, accepted := range correctAnswers {
		if normalized == Normalize(accepted, caseSensitive) {
			return models.EvaluationResult{
				IsCorrect:     true,
				Score:         1,
				CorrectAnswer: correctAnswers,
				Feedback:      feedback,
			}
		}
	}
	return incorrect(correctAnswers, feedback)
}

func evaluateScenario(q *models.Question, payload json.RawMessage) models.EvaluationResult {
	correctAnswer := make(map[string]any, len(q.Parts))
	for i := range q.Parts {
		part := &q.Parts[i]
		switch part.Type {
		case models.MultipleChoice:
			correctAnswer[part.ID] = part.Correct
		case models.MultipleSelect:
			correctAnswer[part.ID] = part.CorrectSet
		case models.FillIn:
			correctAnswer[part.ID] = part.CorrectAnswers
		}
	}
	if len(q.Parts) == 0 {
		return incorrect(nil, q.Explanation)
	}

	var submitted map[string]json.RawMessage
	if answered(payload) {
		// Shape mismatch degrades to all parts unanswered.
		_ = json.Unmarshal(payload, &submitted)
	}

	partResults := make([]models.PartResult, 0, len(q.Parts))
	totalScore := 0.0
	allCorrect := true
	for i := range q.Parts {
		part := &q.Parts[i]
		result := EvaluatePart(part, submitted[part.ID])
		partResults = append(partResults, models.PartResult{
			PartID:           part.ID,
			EvaluationResult: result,
		})
		totalScore += result.Score
		if !result.IsCorrect {
			allCorrect = false
		}
	}

	return models.EvaluationResult{
		IsCorrect:     allCorrect,
		Score:         totalScore / float64(len(q.Parts)),
		CorrectAnswer: correctAnswer,
		Feedback:      q.Explanation,
		PartResults:   partResults,
	}
}

func toSet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}
