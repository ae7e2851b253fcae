package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/certprep/quiz-service/internal/banks"
	"github.com/certprep/quiz-service/internal/cache"
	"github.com/certprep/quiz-service/internal/models"
)

const (
	bankCatalogCacheKey = "banks:catalog"
	bankCatalogCacheTTL = 5 * time.Minute
)

// BankService exposes the question bank catalog and per-bank detail.
type BankService interface {
	ListBanks(ctx context.Context) ([]models.BankInfo, error)
	GetBank(ctx context.Context, file string) (*BankDetail, error)
	ListDomains(ctx context.Context) map[string]models.DomainInfo
}

type bankService struct {
	provider banks.Provider
	cache    cache.CacheService
	logger   *slog.Logger
}

func NewBankService(provider banks.Provider, cacheService cache.CacheService, logger *slog.Logger) BankService {
	return &bankService{
		provider: provider,
		cache:    cacheService,
		logger:   logger,
	}
}

func (s *bankService) ListBanks(ctx context.Context) ([]models.BankInfo, error) {
	var catalog []models.BankInfo
	if err := s.cache.Get(ctx, bankCatalogCacheKey, &catalog); err == nil {
		return catalog, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Bank catalog cache read failed", "error", err)
	}

	catalog, err := s.provider.ListBanks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list question banks: %w", err)
	}

	if err := s.cache.Set(ctx, bankCatalogCacheKey, catalog, bankCatalogCacheTTL); err != nil {
		s.logger.Warn("Bank catalog cache write failed", "error", err)
	}
	return catalog, nil
}

// GetBank returns one bank for browsing. Answer keys never leave the
// service: questions go out through the same stripped view the quiz uses,
// with matching rights and ordering items reshuffled per request.
func (s *bankService) GetBank(ctx context.Context, file string) (*BankDetail, error) {
	bank, err := s.provider.LoadBank(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBankNotFound, file)
	}

	views := buildViews(bank.Questions)
	questions := make([]ClientQuestion, 0, len(bank.Questions))
	for i := range bank.Questions {
		q := &bank.Questions[i]
		questions = append(questions, clientQuestion(q, views[q.ID]))
	}

	return &BankDetail{
		BankID:      bank.BankID,
		Title:       bank.Title,
		Description: bank.Description,
		Version:     bank.Version,
		Questions:   questions,
	}, nil
}

func (s *bankService) ListDomains(ctx context.Context) map[string]models.DomainInfo {
	return models.ExamDomains
}
