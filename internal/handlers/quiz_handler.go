package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/certprep/quiz-service/internal/services"
	"github.com/certprep/quiz-service/internal/utils"
)

// QuizHandler exposes the quiz session lifecycle over HTTP.
type QuizHandler struct {
	BaseHandler
	sessions services.SessionService
}

func NewQuizHandler(sessions services.SessionService, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler: NewBaseHandler(logger),
		sessions:    sessions,
	}
}

// StartQuiz creates a new quiz session
// @Summary Start quiz
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body services.StartQuizRequest true "Session configuration"
// @Success 201 {object} services.SessionResponse
// @Failure 400 {object} ErrorResponse
// @Router /quiz [post]
func (h *QuizHandler) StartQuiz(c *gin.Context) {
	var req services.StartQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	session, err := h.sessions.Start(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// GetQuiz returns the client view of a session
// @Summary Get quiz session
// @Tags quiz
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.SessionResponse
// @Failure 404 {object} ErrorResponse
// @Router /quiz/{id} [get]
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	session, err := h.sessions.Get(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// RecordAnswer stores or replaces one answer
// @Summary Record answer
// @Tags quiz
// @Accept json
// @Param id path string true "Session ID"
// @Param request body services.AnswerRequest true "Answer payload"
// @Success 204
// @Failure 409 {object} ErrorResponse
// @Router /quiz/{id}/answer [post]
func (h *QuizHandler) RecordAnswer(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	var req services.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.sessions.RecordAnswer(c.Request.Context(), sessionID, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CheckAnswer grades one question immediately (study mode)
// @Summary Check answer
// @Tags quiz
// @Produce json
// @Param id path string true "Session ID"
// @Param question_id path string true "Question ID"
// @Success 200 {object} models.EvaluationResult
// @Failure 409 {object} ErrorResponse
// @Router /quiz/{id}/check/{question_id} [post]
func (h *QuizHandler) CheckAnswer(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}
	questionID := ParseStringIDParam(c, "question_id")
	if questionID == "" {
		return
	}

	result, err := h.sessions.Check(c.Request.Context(), sessionID, questionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ToggleFlag flips the review flag on a question
// @Summary Toggle question flag
// @Tags quiz
// @Produce json
// @Param id path string true "Session ID"
// @Param question_id path string true "Question ID"
// @Success 200 {object} map[string]bool
// @Router /quiz/{id}/flag/{question_id} [post]
func (h *QuizHandler) ToggleFlag(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}
	questionID := ParseStringIDParam(c, "question_id")
	if questionID == "" {
		return
	}

	flagged, err := h.sessions.ToggleFlag(c.Request.Context(), sessionID, questionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"flagged": flagged})
}

// SubmitQuiz finalizes and scores a session
// @Summary Submit quiz
// @Tags quiz
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body services.SubmitQuizRequest true "Final answers"
// @Success 200 {object} services.SubmitResponse
// @Failure 503 {object} ErrorResponse
// @Router /quiz/{id}/submit [post]
func (h *QuizHandler) SubmitQuiz(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	var req services.SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Submitting quiz session", "session_id", sessionID)

	result, err := h.sessions.Submit(c.Request.Context(), sessionID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
