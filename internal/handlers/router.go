package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/certprep/quiz-service/internal/services"
	"github.com/certprep/quiz-service/internal/utils"
)

type HandlerManager struct {
	quizHandler    *QuizHandler
	bankHandler    *BankHandler
	historyHandler *HistoryHandler
}

func NewHandlerManager(
	sessions services.SessionService,
	banks services.BankService,
	history services.HistoryService,
	export services.ExportService,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		quizHandler:    NewQuizHandler(sessions, logger),
		bankHandler:    NewBankHandler(banks, logger),
		historyHandler: NewHistoryHandler(history, export, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Bank catalog routes
		banks := v1.Group("/banks")
		{
			banks.GET("", hm.bankHandler.ListBanks)
			banks.GET("/:file", hm.bankHandler.GetBank)
		}
		v1.GET("/domains", hm.bankHandler.ListDomains)

		// Quiz session routes
		quiz := v1.Group("/quiz")
		{
			quiz.POST("", hm.quizHandler.StartQuiz)
			quiz.GET("/:id", hm.quizHandler.GetQuiz)
			quiz.POST("/:id/answer", hm.quizHandler.RecordAnswer)
			quiz.POST("/:id/check/:question_id", hm.quizHandler.CheckAnswer)
			quiz.POST("/:id/flag/:question_id", hm.quizHandler.ToggleFlag)
			quiz.POST("/:id/submit", hm.quizHandler.SubmitQuiz)
		}

		// History and statistics routes
		history := v1.Group("/history")
		{
			history.GET("", hm.historyHandler.ListHistory)
			history.GET("/export", hm.historyHandler.ExportHistory)
			history.GET("/:id", hm.historyHandler.GetSubmission)
			history.DELETE("/:id", hm.historyHandler.DeleteSubmission)
		}
		v1.GET("/stats", hm.historyHandler.GetStats)
	}
}
