package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/certprep/quiz-service/internal/events"
	"github.com/certprep/quiz-service/internal/grading"
	"github.com/certprep/quiz-service/internal/models"
	"github.com/certprep/quiz-service/internal/repositories"
	"github.com/certprep/quiz-service/internal/validator"
)

// MockSubmissionRepository is a mock implementation of SubmissionRepository
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) Save(ctx context.Context, record *models.SubmissionRecord) (string, error) {
	args := m.Called(ctx, record)
	return args.String(0), args.Error(1)
}

func (m *MockSubmissionRepository) GetByID(ctx context.Context, id string) (*models.SubmissionRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubmissionRecord), args.Error(1)
}

func (m *MockSubmissionRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.SubmissionRecord, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubmissionRecord), args.Error(1)
}

func (m *MockSubmissionRepository) List(ctx context.Context, filters repositories.HistoryFilters) ([]*models.SubmissionRecord, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.SubmissionRecord), args.Get(1).(int64), args.Error(2)
}

func (m *MockSubmissionRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSubmissionRepository) GetOverallStats(ctx context.Context) (*models.OverallStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(*models.OverallStats), args.Error(1)
}

// stubProvider serves a fixed question set without touching the filesystem
type stubProvider struct {
	questions []models.Question
}

func (p *stubProvider) ListBanks(ctx context.Context) ([]models.BankInfo, error) {
	return []models.BankInfo{{File: "test.json", BankID: "test"}}, nil
}

func (p *stubProvider) LoadBank(ctx context.Context, file string) (*models.Bank, error) {
	return &models.Bank{BankID: "test", Questions: p.questions}, nil
}

func (p *stubProvider) LoadQuestions(ctx context.Context, files []string) ([]models.Question, error) {
	out := make([]models.Question, len(p.questions))
	copy(out, p.questions)
	return out, nil
}

func testQuestions() []models.Question {
	return []models.Question{
		{
			ID:      "q1",
			Type:    models.MultipleChoice,
			Domain:  "1",
			Prompt:  "Which framework uses sprints?",
			Options: []models.Option{{Key: "a", Text: "Waterfall"}, {Key: "b", Text: "Scrum"}},
			Correct: "b",
		},
		{
			ID:             "q2",
			Type:           models.FillIn,
			Domain:         "2",
			Prompt:         "Name the hierarchical decomposition of scope.",
			CorrectAnswers: []string{"WBS", "work breakdown structure"},
		},
		{
			ID:     "q3",
			Type:   models.Matching,
			Domain: "3",
			Prompt: "Match phase to artifact.",
			Pairs: []models.MatchPair{
				{Left: "Initiation", Right: "Charter"},
				{Left: "Closing", Right: "Lessons learned"},
			},
		},
	}
}

func newTestSessionService(t *testing.T, repo repositories.SubmissionRepository) (SessionService, *events.MockEventPublisher) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	publisher := events.NewMockEventPublisher(logger)

	svc := NewSessionService(
		&stubProvider{questions: testQuestions()},
		repo,
		publisher,
		validator.New(),
		logger,
		grading.DefaultScalePolicy(),
		QuizDefaults{QuestionCount: 90, TimeLimitMinutes: 100},
	)
	return svc, publisher
}

func startSession(t *testing.T, svc SessionService, mode models.QuizMode) *SessionResponse {
	t.Helper()
	resp, err := svc.Start(context.Background(), &StartQuizRequest{
		Mode:      mode,
		BankFiles: []string{"test.json"},
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, resp.SessionID)
	return resp
}

func TestSessionService_Start(t *testing.T) {
	svc, publisher := newTestSessionService(t, &MockSubmissionRepository{})

	resp := startSession(t, svc, models.ModeStudy)

	assert.Equal(t, models.SessionInProgress, resp.Status)
	assert.Equal(t, 3, resp.TotalQuestions)
	assert.Equal(t, 100, resp.TimeLimitMinutes)

	// Client questions never carry the answer key.
	for _, q := range resp.Questions {
		if q.Type == models.Matching {
			assert.Len(t, q.Lefts, 2)
			assert.ElementsMatch(t, []string{"Charter", "Lessons learned"}, q.Rights)
		}
	}

	assert.Len(t, publisher.GetPublishedEvents(), 1)
	assert.Equal(t, events.EventSessionStarted, publisher.GetPublishedEvents()[0].Type)
}

func TestSessionService_Start_NoMatchingQuestions(t *testing.T) {
	svc, _ := newTestSessionService(t, &MockSubmissionRepository{})

	_, err := svc.Start(context.Background(), &StartQuizRequest{
		Mode:      models.ModeStudy,
		BankFiles: []string{"test.json"},
		Domains:   []string{"4"},
	})
	assert.ErrorIs(t, err, ErrNoQuestionsMatch)
}

func TestSessionService_Get_UnknownSession(t *testing.T) {
	svc, _ := newTestSessionService(t, &MockSubmissionRepository{})

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionService_RecordAnswer(t *testing.T) {
	svc, _ := newTestSessionService(t, &MockSubmissionRepository{})
	resp := startSession(t, svc, models.ModeStudy)
	ctx := context.Background()

	err := svc.RecordAnswer(ctx, resp.SessionID, &AnswerRequest{
		QuestionID: "q1",
		Answer:     json.RawMessage(`"b"`),
	})
	assert.NoError(t, err)

	t.Run("unknown question rejected", func(t *testing.T) {
		err := svc.RecordAnswer(ctx, resp.SessionID, &AnswerRequest{
			QuestionID: "nope",
			Answer:     json.RawMessage(`"b"`),
		})
		assert.ErrorIs(t, err, ErrQuestionNotInQuiz)
	})

	t.Run("null answer clears the stored one", func(t *testing.T) {
		err := svc.RecordAnswer(ctx, resp.SessionID, &AnswerRequest{
			QuestionID: "q1",
			Answer:     json.RawMessage("null"),
		})
		assert.NoError(t, err)

		state, err := svc.Get(ctx, resp.SessionID)
		assert.NoError(t, err)
		for _, q := range state.Questions {
			if q.ID == "q1" {
				assert.False(t, q.Answered)
			}
		}
	})
}

func TestSessionService_Check(t *testing.T) {
	svc, _ := newTestSessionService(t, &MockSubmissionRepository{})
	resp := startSession(t, svc, models.ModeStudy)
	ctx := context.Background()

	assert.NoError(t, svc.RecordAnswer(ctx, resp.SessionID, &AnswerRequest{
		QuestionID: "q1",
		Answer:     json.RawMessage(`"b"`),
	}))

	first, err := svc.Check(ctx, resp.SessionID, "q1")
	assert.NoError(t, err)
	assert.True(t, first.IsCorrect)

	t.Run("check is idempotent", func(t *testing.T) {
		// Changing the answer after a check is rejected, and a repeated
		// check returns the original outcome.
		err := svc.RecordAnswer(ctx, resp.SessionID, &AnswerRequest{
			QuestionID: "q1",
			Answer:     json.RawMessage(`"a"`),
		})
		assert.ErrorIs(t, err, ErrQuestionChecked)

		again, err := svc.Check(ctx, resp.SessionID, "q1")
		assert.NoError(t, err)
		assert.Equal(t, first, again)
	})

	t.Run("unanswered question checks as incorrect", func(t *testing.T) {
		result, err := svc.Check(ctx, resp.SessionID, "q2")
		assert.NoError(t, err)
		assert.False(t, result.IsCorrect)
		assert.Equal(t, 0.0, result.Score)
	})
}

func TestSessionService_Check_ExamModeRejected(t *testing.T) {
	svc, _ := newTestSessionService(t, &MockSubmissionRepository{})
	resp := startSession(t, svc, models.ModeExam)

	_, err := svc.Check(context.Background(), resp.SessionID, "q1")
	assert.ErrorIs(t, err, ErrCheckNotAllowed)
}

func TestSessionService_ToggleFlag(t *testing.T) {
	svc, _ := newTestSessionService(t, &MockSubmissionRepository{})
	resp := startSession(t, svc, models.ModeStudy)
	ctx := context.Background()

	flagged, err := svc.ToggleFlag(ctx, resp.SessionID, "q1")
	assert.NoError(t, err)
	assert.True(t, flagged)

	flagged, err = svc.ToggleFlag(ctx, resp.SessionID, "q1")
	assert.NoError(t, err)
	assert.False(t, flagged)
}

func TestSessionService_Submit(t *testing.T) {
	repo := &MockSubmissionRepository{}
	repo.On("Save", mock.Anything, mock.AnythingOfType("*models.SubmissionRecord")).
		Return("record-1", nil).Once()

	svc, publisher := newTestSessionService(t, repo)
	resp := startSession(t, svc, models.ModeExam)
	ctx := context.Background()

	result, err := svc.Submit(ctx, resp.SessionID, &SubmitQuizRequest{
		Answers: map[string]json.RawMessage{
			"q1": json.RawMessage(`"b"`),
			"q2": json.RawMessage(`"wbs"`),
			"q3": json.RawMessage(`{"Initiation":"Charter","Closing":"Lessons learned"}`),
		},
		TimeSpentSeconds: 120,
	})
	assert.NoError(t, err)
	assert.Equal(t, "record-1", result.RecordID)
	assert.Equal(t, 3, result.Summary.CorrectCount)
	assert.Equal(t, 100.0, result.Summary.RawPercentage)
	assert.Equal(t, 900, result.Summary.ScaledScore)
	assert.True(t, result.Summary.Passed)
	assert.Equal(t, 120, result.Summary.TimeSpentSeconds)

	t.Run("duplicate submit returns the original outcome", func(t *testing.T) {
		again, err := svc.Submit(ctx, resp.SessionID, &SubmitQuizRequest{})
		assert.NoError(t, err)
		assert.Equal(t, result.RecordID, again.RecordID)
		assert.Equal(t, result.Summary, again.Summary)
	})

	t.Run("answers are locked after submit", func(t *testing.T) {
		err := svc.RecordAnswer(ctx, resp.SessionID, &AnswerRequest{
			QuestionID: "q1",
			Answer:     json.RawMessage(`"a"`),
		})
		assert.ErrorIs(t, err, ErrSessionSubmitted)
	})

	// Exactly one Save and exactly one submitted event for two submits.
	repo.AssertNumberOfCalls(t, "Save", 1)
	submitted := 0
	for _, event := range publisher.GetPublishedEvents() {
		if event.Type == events.EventSessionSubmitted {
			submitted++
		}
	}
	assert.Equal(t, 1, submitted)
}

func TestSessionService_Submit_PersistenceFailureIsRetryable(t *testing.T) {
	repo := &MockSubmissionRepository{}
	repo.On("Save", mock.Anything, mock.AnythingOfType("*models.SubmissionRecord")).
		Return("", errors.New("connection refused")).Once()
	repo.On("Save", mock.Anything, mock.AnythingOfType("*models.SubmissionRecord")).
		Return("record-2", nil).Once()

	svc, _ := newTestSessionService(t, repo)
	resp := startSession(t, svc, models.ModeExam)
	ctx := context.Background()

	req := &SubmitQuizRequest{
		Answers:          map[string]json.RawMessage{"q1": json.RawMessage(`"b"`)},
		TimeSpentSeconds: 60,
	}

	_, err := svc.Submit(ctx, resp.SessionID, req)
	assert.ErrorIs(t, err, ErrPersistenceFailed)
	assert.True(t, IsRetryable(err))

	// The failed submit left the session open; the retry succeeds and the
	// session is only then marked submitted.
	result, err := svc.Submit(ctx, resp.SessionID, req)
	assert.NoError(t, err)
	assert.Equal(t, "record-2", result.RecordID)
	repo.AssertNumberOfCalls(t, "Save", 2)
}

func TestSessionService_Submit_ReusesCheckedResults(t *testing.T) {
	repo := &MockSubmissionRepository{}
	repo.On("Save", mock.Anything, mock.AnythingOfType("*models.SubmissionRecord")).
		Return("record-3", nil).Once()

	svc, _ := newTestSessionService(t, repo)
	resp := startSession(t, svc, models.ModeStudy)
	ctx := context.Background()

	assert.NoError(t, svc.RecordAnswer(ctx, resp.SessionID, &AnswerRequest{
		QuestionID: "q1",
		Answer:     json.RawMessage(`"b"`),
	}))
	checked, err := svc.Check(ctx, resp.SessionID, "q1")
	assert.NoError(t, err)
	assert.True(t, checked.IsCorrect)

	// A submit-time answer for the checked question must not override the
	// locked one.
	result, err := svc.Submit(ctx, resp.SessionID, &SubmitQuizRequest{
		Answers: map[string]json.RawMessage{"q1": json.RawMessage(`"a"`)},
	})
	assert.NoError(t, err)

	for _, r := range result.Summary.Responses {
		if r.QuestionID == "q1" {
			assert.True(t, r.IsCorrect)
		}
	}
}

func TestSessionService_Submit_RecoversFromPersistedRecord(t *testing.T) {
	breakdown, err := json.Marshal(map[string]models.DomainResult{
		"1": {Domain: "1", Total: 2, Correct: 2, Percentage: 100},
	})
	assert.NoError(t, err)

	record := &models.SubmissionRecord{
		ID:               "record-9",
		SessionID:        "evicted-session",
		Mode:             models.ModeExam,
		TotalQuestions:   2,
		CorrectCount:     2,
		RawPercentage:    100,
		ScaledScore:      900,
		Passed:           true,
		TimeSpentSeconds: 90,
		DomainBreakdown:  datatypes.JSON(breakdown),
	}

	repo := &MockSubmissionRepository{}
	repo.On("GetBySessionID", mock.Anything, "evicted-session").Return(record, nil)

	// The session is not in memory, as after a restart. The persisted
	// record answers the duplicate submit.
	svc, _ := newTestSessionService(t, repo)
	result, err := svc.Submit(context.Background(), "evicted-session", &SubmitQuizRequest{})
	assert.NoError(t, err)
	assert.Equal(t, "record-9", result.RecordID)
	assert.Equal(t, 900, result.Summary.ScaledScore)
	assert.True(t, result.Summary.Passed)
	assert.Equal(t, 2, result.Summary.DomainBreakdown["1"].Correct)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSessionService_Submit_UnknownSessionWithoutRecord(t *testing.T) {
	repo := &MockSubmissionRepository{}
	repo.On("GetBySessionID", mock.Anything, "missing").Return(nil, gorm.ErrRecordNotFound)

	svc, _ := newTestSessionService(t, repo)
	_, err := svc.Submit(context.Background(), "missing", &SubmitQuizRequest{})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
