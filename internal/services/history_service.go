package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/certprep/quiz-service/internal/cache"
	"github.com/certprep/quiz-service/internal/models"
	"github.com/certprep/quiz-service/internal/repositories"
)

const (
	statsCacheKey = "history:stats"
	statsCacheTTL = 2 * time.Minute
)

// HistoryService reads and prunes persisted submission records and serves
// the aggregate statistics view.
type HistoryService interface {
	List(ctx context.Context, filters repositories.HistoryFilters) (*HistoryPage, error)
	Get(ctx context.Context, id string) (*models.SubmissionRecord, error)
	Delete(ctx context.Context, id string) error
	OverallStats(ctx context.Context) (*models.OverallStats, error)
}

// HistoryPage is one page of submission records with the unfiltered total.
type HistoryPage struct {
	Records []*models.SubmissionRecord `json:"records"`
	Total   int64                      `json:"total"`
	Limit   int                        `json:"limit"`
	Offset  int                        `json:"offset"`
}

type historyService struct {
	repo   repositories.SubmissionRepository
	cache  cache.CacheService
	logger *slog.Logger
}

func NewHistoryService(repo repositories.SubmissionRepository, cacheService cache.CacheService, logger *slog.Logger) HistoryService {
	return &historyService{
		repo:   repo,
		cache:  cacheService,
		logger: logger,
	}
}

func (s *historyService) List(ctx context.Context, filters repositories.HistoryFilters) (*HistoryPage, error) {
	records, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return &HistoryPage{
		Records: records,
		Total:   total,
		Limit:   filters.Limit,
		Offset:  filters.Offset,
	}, nil
}

func (s *historyService) Get(ctx context.Context, id string) (*models.SubmissionRecord, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return record, nil
}

func (s *historyService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSubmissionNotFound
		}
		return fmt.Errorf("failed to delete submission: %w", err)
	}
	if err := s.cache.Delete(ctx, statsCacheKey); err != nil {
		s.logger.Warn("Stats cache invalidation failed", "error", err)
	}
	return nil
}

func (s *historyService) OverallStats(ctx context.Context) (*models.OverallStats, error) {
	var stats models.OverallStats
	if err := s.cache.Get(ctx, statsCacheKey, &stats); err == nil {
		return &stats, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Stats cache read failed", "error", err)
	}

	fresh, err := s.repo.GetOverallStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}

	if err := s.cache.Set(ctx, statsCacheKey, fresh, statsCacheTTL); err != nil {
		s.logger.Warn("Stats cache write failed", "error", err)
	}
	return fresh, nil
}
