package grading

import (
	"math"

	"github.com/certprep/quiz-service/internal/models"
)

// ScalePolicy maps a raw percentage onto the reported certification scale.
// The slope and intercept follow from the scale endpoints, so the mapping
// stays configurable without touching the aggregation code.
type ScalePolicy struct {
	ScaleMin     int
	ScaleMax     int
	PassingScore int
}

// DefaultScalePolicy is the CompTIA 100-900 scale with the 710 pass mark.
func DefaultScalePolicy() ScalePolicy {
	return ScalePolicy{ScaleMin: 100, ScaleMax: 900, PassingScore: 710}
}

// Scale maps a raw percentage in [0,100] onto the scale, rounded and
// clamped so 0% lands exactly on ScaleMin and 100% on ScaleMax.
func (p ScalePolicy) Scale(rawPercentage float64) int {
	scaled := int(math.Round(float64(p.ScaleMin) + rawPercentage/100*float64(p.ScaleMax-p.ScaleMin)))
	if scaled < p.ScaleMin {
		scaled = p.ScaleMin
	}
	if scaled > p.ScaleMax {
		scaled = p.ScaleMax
	}
	return scaled
}

// GradedQuestion pairs a question with its submitted answer and evaluation,
// in session order.
type GradedQuestion struct {
	Question *models.Question
	Answer   models.SubmittedAnswer
	Result   models.EvaluationResult
}

// Aggregate combines per-question results into the session summary: raw
// percentage, scaled score, pass/fail and the per-domain breakdown. Every
// question counts toward the denominator, so unanswered questions pull the
// percentage down, and domains present in the question set appear in the
// breakdown even when fully unanswered.
func Aggregate(graded []GradedQuestion, policy ScalePolicy, timeSpentSeconds int) *models.ScoreSummary {
	summary := &models.ScoreSummary{
		TotalQuestions:   len(graded),
		PassingScore:     policy.PassingScore,
		TimeSpentSeconds: timeSpentSeconds,
		DomainBreakdown:  make(map[string]models.DomainResult),
		Responses:        make([]models.QuestionResult, 0, len(graded)),
	}

	earned := 0.0
	for _, g := range graded {
		q, result := g.Question, g.Result
		earned += result.Score
		if result.IsCorrect {
			summary.CorrectCount++
		}

		var userAnswer any
		if g.Answer.IsAnswered() {
			userAnswer = g.Answer.Payload
		}
		summary.Responses = append(summary.Responses, models.QuestionResult{
			QuestionID:    q.ID,
			QuestionType:  q.Type,
			Domain:        q.Domain,
			Objective:     q.Objective,
			UserAnswer:    userAnswer,
			CorrectAnswer: result.CorrectAnswer,
			IsCorrect:     result.IsCorrect,
			Score:         result.Score,
			Feedback:      result.Feedback,
			PartResults:   result.PartResults,
		})

		dr := summary.DomainBreakdown[q.Domain]
		dr.Domain = q.Domain
		dr.Name = models.DomainName(q.Domain)
		dr.Weight = models.DomainWeight(q.Domain)
		dr.Total++
		dr.Earned += result.Score
		if result.IsCorrect {
			dr.Correct++
		}
		summary.DomainBreakdown[q.Domain] = dr
	}

	for domain, dr := range summary.DomainBreakdown {
		dr.Percentage = round1(dr.Earned / float64(dr.Total) * 100)
		summary.DomainBreakdown[domain] = dr
	}

	pct := 0.0
	if len(graded) > 0 {
		pct = earned / float64(len(graded)) * 100
	}
	summary.EarnedPoints = round2(earned)
	summary.RawPercentage = round1(pct)
	summary.ScaledScore = policy.Scale(pct)
	summary.Passed = summary.ScaledScore >= policy.PassingScore

	return summary
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
