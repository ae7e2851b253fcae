package postgres

import (
	"context"

	"github.com/certprep/quiz-service/internal/models"
	"github.com/certprep/quiz-service/internal/repositories"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubmissionPostgreSQL struct {
	db *gorm.DB
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{db: db}
}

func (r *SubmissionPostgreSQL) Save(ctx context.Context, record *models.SubmissionRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return "", err
	}
	return record.ID, nil
}

func (r *SubmissionPostgreSQL) GetByID(ctx context.Context, id string) (*models.SubmissionRecord, error) {
	var record models.SubmissionRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *SubmissionPostgreSQL) GetBySessionID(ctx context.Context, sessionID string) (*models.SubmissionRecord, error) {
	var record models.SubmissionRecord
	if err := r.db.WithContext(ctx).First(&record, "session_id = ?", sessionID).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *SubmissionPostgreSQL) List(ctx context.Context, filters repositories.HistoryFilters) ([]*models.SubmissionRecord, int64, error) {
	var records []*models.SubmissionRecord
	var total int64

	query := r.db.WithContext(ctx).Model(&models.SubmissionRecord{})
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	if err := query.
		Order("submitted_at DESC").
		Limit(limit).
		Offset(filters.Offset).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *SubmissionPostgreSQL) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.SubmissionRecord{}, "id = ?", id).Error
}

func (r *SubmissionPostgreSQL) GetOverallStats(ctx context.Context) (*models.OverallStats, error) {
	var row struct {
		TotalAttempts  int
		ExamAttempts   int
		StudyAttempts  int
		PassCount      int
		AverageScore   float64
		BestScore      float64
		TotalQuestions int
	}

	err := r.db.WithContext(ctx).
		Model(&models.SubmissionRecord{}).
		Select(`COUNT(*) AS total_attempts,
			COUNT(*) FILTER (WHERE mode = 'exam') AS exam_attempts,
			COUNT(*) FILTER (WHERE mode = 'study') AS study_attempts,
			COUNT(*) FILTER (WHERE passed) AS pass_count,
			COALESCE(AVG(raw_percentage), 0) AS average_score,
			COALESCE(MAX(raw_percentage), 0) AS best_score,
			COALESCE(SUM(total_questions), 0) AS total_questions`).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	stats := &models.OverallStats{
		TotalAttempts:  row.TotalAttempts,
		ExamAttempts:   row.ExamAttempts,
		StudyAttempts:  row.StudyAttempts,
		PassCount:      row.PassCount,
		AverageScore:   row.AverageScore,
		BestScore:      row.BestScore,
		TotalQuestions: row.TotalQuestions,
	}

	var recent []models.SubmissionRecord
	if err := r.db.WithContext(ctx).
		Model(&models.SubmissionRecord{}).
		Select("scaled_score", "mode", "submitted_at").
		Order("submitted_at DESC").
		Limit(10).
		Find(&recent).Error; err != nil {
		return nil, err
	}
	for _, record := range recent {
		stats.RecentScores = append(stats.RecentScores, models.RecentScore{
			ScaledScore: record.ScaledScore,
			Mode:        record.Mode,
			SubmittedAt: record.SubmittedAt,
		})
	}

	return stats, nil
}

func (r *SubmissionPostgreSQL) applyFilters(query *gorm.DB, filters repositories.HistoryFilters) *gorm.DB {
	if filters.Mode != nil {
		query = query.Where("mode = ?", *filters.Mode)
	}
	if filters.DateFrom != nil {
		query = query.Where("submitted_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("submitted_at <= ?", *filters.DateTo)
	}
	return query
}
