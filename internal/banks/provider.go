package banks

import (
	"context"

	"github.com/certprep/quiz-service/internal/models"
)

// Provider supplies immutable, validated question banks. Implementations
// run every bank through the question validator before handing questions to
// the engine, so malformed definitions are rejected at load time and never
// reach grading.
type Provider interface {
	ListBanks(ctx context.Context) ([]models.BankInfo, error)
	LoadBank(ctx context.Context, file string) (*models.Bank, error)
	LoadQuestions(ctx context.Context, files []string) ([]models.Question, error)
}
