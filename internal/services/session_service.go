package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/certprep/quiz-service/internal/banks"
	"github.com/certprep/quiz-service/internal/events"
	"github.com/certprep/quiz-service/internal/grading"
	"github.com/certprep/quiz-service/internal/models"
	"github.com/certprep/quiz-service/internal/repositories"
	"github.com/certprep/quiz-service/internal/validator"
)

// SessionService owns the lifecycle of quiz sessions: start, answer, check
// (study mode), flag and submit. Submit is exactly-once per session; the
// persisted record is created before the session is marked submitted, so a
// failed save leaves the session open for a retry.
type SessionService interface {
	Start(ctx context.Context, req *StartQuizRequest) (*SessionResponse, error)
	Get(ctx context.Context, sessionID string) (*SessionResponse, error)
	RecordAnswer(ctx context.Context, sessionID string, req *AnswerRequest) error
	ToggleFlag(ctx context.Context, sessionID, questionID string) (bool, error)
	Check(ctx context.Context, sessionID, questionID string) (*models.EvaluationResult, error)
	Submit(ctx context.Context, sessionID string, req *SubmitQuizRequest) (*SubmitResponse, error)
}

// QuizDefaults fills in the session parameters a start request leaves out.
type QuizDefaults struct {
	QuestionCount    int
	TimeLimitMinutes int
}

// sessionEntry is one live session plus its submit outcome. The entry
// mutex serializes every mutation of the session, including the whole of
// submit, so concurrent submits cannot both reach the repository.
type sessionEntry struct {
	mu       sync.Mutex
	session  *models.Session
	summary  *models.ScoreSummary
	recordID string
}

type sessionService struct {
	banks     banks.Provider
	repo      repositories.SubmissionRepository
	publisher events.EventPublisher
	validator *validator.Validator
	logger    *slog.Logger
	policy    grading.ScalePolicy
	defaults  QuizDefaults

	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

func NewSessionService(
	banks banks.Provider,
	repo repositories.SubmissionRepository,
	publisher events.EventPublisher,
	validator *validator.Validator,
	logger *slog.Logger,
	policy grading.ScalePolicy,
	defaults QuizDefaults,
) SessionService {
	return &sessionService{
		banks:     banks,
		repo:      repo,
		publisher: publisher,
		validator: validator,
		logger:    logger,
		policy:    policy,
		defaults:  defaults,
		sessions:  make(map[string]*sessionEntry),
	}
}

// ===== SESSION LIFECYCLE =====

func (s *sessionService) Start(ctx context.Context, req *StartQuizRequest) (*SessionResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if len(req.BankFiles) == 0 {
		return nil, ErrNoBanksSelected
	}

	questions, err := s.banks.LoadQuestions(ctx, req.BankFiles)
	if err != nil {
		return nil, err
	}

	pool := filterQuestions(questions, req)
	if len(pool) == 0 {
		return nil, ErrNoQuestionsMatch
	}

	shuffle := req.Shuffle == nil || *req.Shuffle
	if shuffle {
		rand.Shuffle(len(pool), func(i, j int) {
			pool[i], pool[j] = pool[j], pool[i]
		})
	}

	count := req.QuestionCount
	if count <= 0 {
		count = s.defaults.QuestionCount
	}
	if count > 0 && count < len(pool) {
		pool = pool[:count]
	}

	timeLimit := s.defaults.TimeLimitMinutes
	if req.TimeLimitMinutes != nil {
		timeLimit = *req.TimeLimitMinutes
	}

	session := &models.Session{
		ID:               uuid.NewString(),
		Mode:             req.Mode,
		Status:           models.SessionInProgress,
		TimeLimitMinutes: timeLimit,
		BankIDs:          bankIDs(pool),
		Questions:        pool,
		Views:            buildViews(pool),
		Answers:          make(map[string]json.RawMessage),
		Checked:          make(map[string]models.EvaluationResult),
		Flags:            make(map[string]bool),
		StartedAt:        time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = &sessionEntry{session: session}
	s.mu.Unlock()

	s.logger.Info("Quiz session started",
		"session_id", session.ID,
		"mode", session.Mode,
		"questions", len(session.Questions),
		"time_limit_minutes", session.TimeLimitMinutes)

	s.publishEvent(ctx, events.NewResultEvent(events.EventSessionStarted, events.SessionStartedEvent{
		SessionID:      session.ID,
		Mode:           session.Mode,
		BankIDs:        session.BankIDs,
		TotalQuestions: len(session.Questions),
		TimeLimit:      session.TimeLimitMinutes,
		StartedAt:      session.StartedAt,
	}))

	return sessionResponse(session), nil
}

func (s *sessionService) Get(ctx context.Context, sessionID string) (*SessionResponse, error) {
	entry, err := s.entry(sessionID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return sessionResponse(entry.session), nil
}

func (s *sessionService) RecordAnswer(ctx context.Context, sessionID string, req *AnswerRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	entry, err := s.entry(sessionID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	session := entry.session
	if session.Submitted {
		return ErrSessionSubmitted
	}
	if session.Question(req.QuestionID) == nil {
		return ErrQuestionNotInQuiz
	}
	if _, checked := session.Checked[req.QuestionID]; checked {
		return ErrQuestionChecked
	}

	submitted := models.SubmittedAnswer{QuestionID: req.QuestionID, Payload: req.Answer}
	if !submitted.IsAnswered() {
		delete(session.Answers, req.QuestionID)
		return nil
	}
	session.Answers[req.QuestionID] = req.Answer
	return nil
}

func (s *sessionService) ToggleFlag(ctx context.Context, sessionID, questionID string) (bool, error) {
	entry, err := s.entry(sessionID)
	if err != nil {
		return false, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	session := entry.session
	if session.Submitted {
		return false, ErrSessionSubmitted
	}
	if session.Question(questionID) == nil {
		return false, ErrQuestionNotInQuiz
	}

	session.Flags[questionID] = !session.Flags[questionID]
	return session.Flags[questionID], nil
}

// Check grades one question immediately. Study mode only. The first check
// locks the recorded answer and caches the result; repeated checks return
// the cached result without re-evaluating.
func (s *sessionService) Check(ctx context.Context, sessionID, questionID string) (*models.EvaluationResult, error) {
	entry, err := s.entry(sessionID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	session := entry.session
	if session.Mode != models.ModeStudy {
		return nil, ErrCheckNotAllowed
	}
	if session.Submitted {
		return nil, ErrSessionSubmitted
	}

	question := session.Question(questionID)
	if question == nil {
		return nil, ErrQuestionNotInQuiz
	}

	if result, ok := session.Checked[questionID]; ok {
		return &result, nil
	}

	result := grading.Evaluate(question, session.Answers[questionID])
	session.Checked[questionID] = result

	s.logger.Debug("Question checked",
		"session_id", sessionID,
		"question_id", questionID,
		"correct", result.IsCorrect)

	return &result, nil
}

// Submit grades the whole session, persists the record and marks the
// session submitted. A duplicate submit returns the original outcome. If
// persistence fails the session stays open and submit may be retried.
func (s *sessionService) Submit(ctx context.Context, sessionID string, req *SubmitQuizRequest) (*SubmitResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	entry, err := s.entry(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return s.recoverSubmission(ctx, sessionID)
		}
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	session := entry.session
	if session.Submitted {
		return &SubmitResponse{RecordID: entry.recordID, Summary: entry.summary}, nil
	}

	// Merge the final batch over recorded answers. Answers locked by a
	// study-mode check keep their recorded value.
	for questionID, payload := range req.Answers {
		if session.Question(questionID) == nil {
			continue
		}
		if _, checked := session.Checked[questionID]; checked {
			continue
		}
		if !(models.SubmittedAnswer{Payload: payload}).IsAnswered() {
			continue
		}
		session.Answers[questionID] = payload
	}

	timeSpent := s.timeSpent(session, req.TimeSpentSeconds)

	graded := make([]grading.GradedQuestion, 0, len(session.Questions))
	for i := range session.Questions {
		question := &session.Questions[i]
		answer := session.Answers[question.ID]

		var result models.EvaluationResult
		if cached, ok := session.Checked[question.ID]; ok {
			result = cached
		} else {
			result = grading.Evaluate(question, answer)
		}
		graded = append(graded, grading.GradedQuestion{
			Question: question,
			Answer:   models.SubmittedAnswer{QuestionID: question.ID, Payload: answer},
			Result:   result,
		})
	}

	summary := grading.Aggregate(graded, s.policy, timeSpent)

	record, err := buildRecord(session, summary)
	if err != nil {
		return nil, fmt.Errorf("failed to build submission record: %w", err)
	}

	recordID, err := s.repo.Save(ctx, record)
	if err != nil {
		s.logger.Error("Failed to persist submission, session left open",
			"session_id", sessionID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	now := time.Now().UTC()
	session.Submitted = true
	session.SubmittedAt = &now
	session.Status = models.SessionSubmitted
	entry.summary = summary
	entry.recordID = recordID

	s.logger.Info("Quiz session submitted",
		"session_id", sessionID,
		"record_id", recordID,
		"scaled_score", summary.ScaledScore,
		"passed", summary.Passed)

	s.publishEvent(ctx, events.NewResultEvent(events.EventSessionSubmitted, events.SessionSubmittedEvent{
		SessionID:        session.ID,
		RecordID:         recordID,
		Mode:             session.Mode,
		TotalQuestions:   summary.TotalQuestions,
		CorrectCount:     summary.CorrectCount,
		RawPercentage:    summary.RawPercentage,
		ScaledScore:      summary.ScaledScore,
		Passed:           summary.Passed,
		TimeSpentSeconds: summary.TimeSpentSeconds,
		SubmittedAt:      now,
	}))

	return &SubmitResponse{RecordID: recordID, Summary: summary}, nil
}

// ===== HELPERS =====

func (s *sessionService) entry(sessionID string) (*sessionEntry, error) {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return entry, nil
}

// recoverSubmission answers a duplicate submit for a session that is no
// longer held in memory, e.g. after a restart. The persisted record is the
// proof the session was already submitted; without one the session is
// simply unknown.
func (s *sessionService) recoverSubmission(ctx context.Context, sessionID string) (*SubmitResponse, error) {
	record, err := s.repo.GetBySessionID(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to look up submission for session %s: %w", sessionID, err)
	}

	summary, err := summaryFromRecord(record, s.policy)
	if err != nil {
		return nil, fmt.Errorf("failed to decode submission record %s: %w", record.ID, err)
	}

	s.logger.Info("Duplicate submit recovered from persisted record",
		"session_id", sessionID,
		"record_id", record.ID)

	return &SubmitResponse{RecordID: record.ID, Summary: summary}, nil
}

func summaryFromRecord(record *models.SubmissionRecord, policy grading.ScalePolicy) (*models.ScoreSummary, error) {
	summary := &models.ScoreSummary{
		TotalQuestions:   record.TotalQuestions,
		CorrectCount:     record.CorrectCount,
		RawPercentage:    record.RawPercentage,
		ScaledScore:      record.ScaledScore,
		Passed:           record.Passed,
		PassingScore:     policy.PassingScore,
		TimeSpentSeconds: record.TimeSpentSeconds,
	}
	if len(record.DomainBreakdown) > 0 {
		if err := json.Unmarshal(record.DomainBreakdown, &summary.DomainBreakdown); err != nil {
			return nil, err
		}
	}
	if len(record.Responses) > 0 {
		if err := json.Unmarshal(record.Responses, &summary.Responses); err != nil {
			return nil, err
		}
	}
	return summary, nil
}

// timeSpent prefers the client-reported duration, falls back to wall-clock
// time since start, and clamps to the session time limit.
func (s *sessionService) timeSpent(session *models.Session, reported int) int {
	spent := reported
	if spent <= 0 {
		spent = int(time.Since(session.StartedAt).Seconds())
	}
	if spent < 0 {
		spent = 0
	}
	if session.TimeLimitMinutes > 0 && spent > session.TimeLimitMinutes*60 {
		spent = session.TimeLimitMinutes * 60
	}
	return spent
}

func (s *sessionService) publishEvent(ctx context.Context, event *events.ResultEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishResultEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish result event", "type", event.Type, "error", err)
	}
}

func filterQuestions(questions []models.Question, req *StartQuizRequest) []models.Question {
	domains := make(map[string]bool, len(req.Domains))
	for _, d := range req.Domains {
		domains[d] = true
	}
	types := make(map[models.QuestionType]bool, len(req.Types))
	for _, t := range req.Types {
		types[t] = true
	}

	filtered := make([]models.Question, 0, len(questions))
	for _, q := range questions {
		if len(domains) > 0 && !domains[q.Domain] {
			continue
		}
		if len(types) > 0 && !types[q.Type] {
			continue
		}
		if req.Difficulty != "" && q.Difficulty != req.Difficulty {
			continue
		}
		filtered = append(filtered, q)
	}
	return filtered
}

func bankIDs(questions []models.Question) []string {
	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, q := range questions {
		if q.BankID != "" && !seen[q.BankID] {
			seen[q.BankID] = true
			ids = append(ids, q.BankID)
		}
	}
	return ids
}

// buildViews fixes the randomized presentation for the life of the session:
// matching rights, ordering items and drag items are shuffled once here.
func buildViews(questions []models.Question) map[string]models.QuestionView {
	views := make(map[string]models.QuestionView, len(questions))
	for i := range questions {
		q := &questions[i]
		view := models.QuestionView{QuestionID: q.ID}

		switch q.Type {
		case models.Matching:
			rights := make([]string, 0, len(q.Pairs))
			for _, p := range q.Pairs {
				rights = append(rights, p.Right)
			}
			rand.Shuffle(len(rights), func(a, b int) {
				rights[a], rights[b] = rights[b], rights[a]
			})
			view.ShuffledRights = rights
		case models.Ordering:
			items := make([]string, len(q.CorrectOrder))
			copy(items, q.CorrectOrder)
			rand.Shuffle(len(items), func(a, b int) {
				items[a], items[b] = items[b], items[a]
			})
			view.DisplayItems = items
		case models.DragDrop:
			items := make([]string, 0, len(q.DragItems))
			for _, it := range q.DragItems {
				items = append(items, it.Text)
			}
			rand.Shuffle(len(items), func(a, b int) {
				items[a], items[b] = items[b], items[a]
			})
			view.DisplayItems = items
		default:
			continue
		}
		views[q.ID] = view
	}
	return views
}

func sessionResponse(session *models.Session) *SessionResponse {
	questions := make([]ClientQuestion, 0, len(session.Questions))
	for i := range session.Questions {
		q := &session.Questions[i]
		cq := clientQuestion(q, session.Views[q.ID])
		cq.Answered = len(session.Answers[q.ID]) > 0
		cq.Flagged = session.Flags[q.ID]
		_, cq.Checked = session.Checked[q.ID]
		questions = append(questions, cq)
	}

	return &SessionResponse{
		SessionID:        session.ID,
		Mode:             session.Mode,
		Status:           session.Status,
		TimeLimitMinutes: session.TimeLimitMinutes,
		StartedAt:        session.StartedAt,
		BankIDs:          session.BankIDs,
		TotalQuestions:   len(session.Questions),
		Questions:        questions,
	}
}

func buildRecord(session *models.Session, summary *models.ScoreSummary) (*models.SubmissionRecord, error) {
	bankIDs, err := json.Marshal(session.BankIDs)
	if err != nil {
		return nil, err
	}
	breakdown, err := json.Marshal(summary.DomainBreakdown)
	if err != nil {
		return nil, err
	}
	responses, err := json.Marshal(summary.Responses)
	if err != nil {
		return nil, err
	}

	return &models.SubmissionRecord{
		SessionID:        session.ID,
		Mode:             session.Mode,
		BankIDs:          datatypes.JSON(bankIDs),
		TotalQuestions:   summary.TotalQuestions,
		CorrectCount:     summary.CorrectCount,
		RawPercentage:    summary.RawPercentage,
		ScaledScore:      summary.ScaledScore,
		Passed:           summary.Passed,
		TimeSpentSeconds: summary.TimeSpentSeconds,
		DomainBreakdown:  datatypes.JSON(breakdown),
		Responses:        datatypes.JSON(responses),
		StartedAt:        session.StartedAt,
		SubmittedAt:      time.Now().UTC(),
	}, nil
}
