package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/certprep/quiz-service/internal/models"
)

func TestScalePolicy_Scale(t *testing.T) {
	policy := DefaultScalePolicy()

	tests := []struct {
		pct      float64
		expected int
	}{
		{0, 100},
		{50, 500},
		{75, 700},
		{76.25, 710},
		{77, 716},
		{100, 900},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, policy.Scale(tt.pct), "scaling %.2f%%", tt.pct)
	}
}

func TestScalePolicy_ScaleClamps(t *testing.T) {
	policy := DefaultScalePolicy()
	assert.Equal(t, 100, policy.Scale(-5))
	assert.Equal(t, 900, policy.Scale(110))
}

func gradedQuestion(id, domain string, correct bool, score float64) GradedQuestion {
	return GradedQuestion{
		Question: &models.Question{ID: id, Type: models.MultipleChoice, Domain: domain, Correct: "a"},
		Result:   models.EvaluationResult{IsCorrect: correct, Score: score, CorrectAnswer: "a"},
	}
}

func TestAggregate_PassFailBoundary(t *testing.T) {
	policy := DefaultScalePolicy()

	t.Run("75 percent falls short of the pass mark", func(t *testing.T) {
		graded := make([]GradedQuestion, 0, 4)
		graded = append(graded,
			gradedQuestion("q1", "1", true, 1),
			gradedQuestion("q2", "1", true, 1),
			gradedQuestion("q3", "2", true, 1),
			gradedQuestion("q4", "2", false, 0),
		)

		summary := Aggregate(graded, policy, 600)
		assert.Equal(t, 75.0, summary.RawPercentage)
		assert.Equal(t, 700, summary.ScaledScore)
		assert.False(t, summary.Passed)
	})

	t.Run("77 percent clears the pass mark", func(t *testing.T) {
		graded := make([]GradedQuestion, 0, 100)
		for i := 0; i < 77; i++ {
			graded = append(graded, gradedQuestion("q", "1", true, 1))
		}
		for i := 0; i < 23; i++ {
			graded = append(graded, gradedQuestion("q", "2", false, 0))
		}

		summary := Aggregate(graded, policy, 600)
		assert.Equal(t, 77.0, summary.RawPercentage)
		assert.Equal(t, 716, summary.ScaledScore)
		assert.True(t, summary.Passed)
	})

	t.Run("perfect run scores the scale maximum", func(t *testing.T) {
		graded := []GradedQuestion{gradedQuestion("q1", "1", true, 1)}
		summary := Aggregate(graded, policy, 60)
		assert.Equal(t, 900, summary.ScaledScore)
		assert.True(t, summary.Passed)
	})

	t.Run("empty submission scores the scale minimum", func(t *testing.T) {
		graded := []GradedQuestion{gradedQuestion("q1", "1", false, 0)}
		summary := Aggregate(graded, policy, 0)
		assert.Equal(t, 0.0, summary.RawPercentage)
		assert.Equal(t, 100, summary.ScaledScore)
		assert.False(t, summary.Passed)
	})
}

func TestAggregate_DomainBreakdown(t *testing.T) {
	graded := []GradedQuestion{
		gradedQuestion("q1", "1", true, 1),
		gradedQuestion("q2", "1", false, 0),
		gradedQuestion("q3", "3", true, 1),
	}

	summary := Aggregate(graded, DefaultScalePolicy(), 300)

	assert.Len(t, summary.DomainBreakdown, 2)

	d1 := summary.DomainBreakdown["1"]
	assert.Equal(t, "Project Management Concepts", d1.Name)
	assert.Equal(t, 0.33, d1.Weight)
	assert.Equal(t, 2, d1.Total)
	assert.Equal(t, 1, d1.Correct)
	assert.Equal(t, 50.0, d1.Percentage)

	d3 := summary.DomainBreakdown["3"]
	assert.Equal(t, 1, d3.Total)
	assert.Equal(t, 100.0, d3.Percentage)
}

func TestAggregate_PartialCreditCounts(t *testing.T) {
	graded := []GradedQuestion{
		{
			Question: &models.Question{ID: "q1", Type: models.Matching, Domain: "2"},
			Result:   models.EvaluationResult{IsCorrect: false, Score: 2.0 / 3.0},
		},
		gradedQuestion("q2", "2", true, 1),
	}

	summary := Aggregate(graded, DefaultScalePolicy(), 120)

	assert.Equal(t, 1, summary.CorrectCount)
	assert.Equal(t, 1.67, summary.EarnedPoints)
	assert.Equal(t, 83.3, summary.RawPercentage)
}

func TestAggregate_ResponsesKeepSessionOrder(t *testing.T) {
	graded := []GradedQuestion{
		gradedQuestion("first", "1", true, 1),
		gradedQuestion("second", "2", false, 0),
		gradedQuestion("third", "4", true, 1),
	}

	summary := Aggregate(graded, DefaultScalePolicy(), 90)

	assert.Len(t, summary.Responses, 3)
	assert.Equal(t, "first", summary.Responses[0].QuestionID)
	assert.Equal(t, "second", summary.Responses[1].QuestionID)
	assert.Equal(t, "third", summary.Responses[2].QuestionID)
	assert.Equal(t, 90, summary.TimeSpentSeconds)
}
