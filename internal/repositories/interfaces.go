package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/certprep/quiz-service/internal/models"
	"gorm.io/gorm"
)

// HistoryFilters narrows submission history queries.
type HistoryFilters struct {
	Mode     *models.QuizMode `json:"mode"`
	DateFrom *time.Time       `json:"date_from"`
	DateTo   *time.Time       `json:"date_to"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

// SubmissionRepository is the persistence contract the scoring engine
// depends on. Save must create exactly one record per session; the engine
// only marks a session submitted after Save succeeds.
type SubmissionRepository interface {
	Save(ctx context.Context, record *models.SubmissionRecord) (string, error)
	GetByID(ctx context.Context, id string) (*models.SubmissionRecord, error)
	GetBySessionID(ctx context.Context, sessionID string) (*models.SubmissionRecord, error)
	List(ctx context.Context, filters HistoryFilters) ([]*models.SubmissionRecord, int64, error)
	Delete(ctx context.Context, id string) error
	GetOverallStats(ctx context.Context) (*models.OverallStats, error)
}

// IsNotFoundError checks whether err is the storage layer's not-found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
