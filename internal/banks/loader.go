package banks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/certprep/quiz-service/internal/models"
	"github.com/certprep/quiz-service/internal/utils"
	"github.com/certprep/quiz-service/internal/validator"
)

// FileProvider loads question banks from JSON files in a directory. Parsed
// banks are cached in memory; bank files are treated as immutable while the
// service runs.
type FileProvider struct {
	dir       string
	validator *validator.QuestionValidator
	logger    utils.Logger

	mu    sync.RWMutex
	banks map[string]*models.Bank // keyed by file name
}

func NewFileProvider(dir string, v *validator.QuestionValidator, logger utils.Logger) *FileProvider {
	return &FileProvider{
		dir:       dir,
		validator: v,
		logger:    logger,
		banks:     make(map[string]*models.Bank),
	}
}

// ListBanks returns catalog metadata for every readable bank in the
// directory, sorted by file name. Unreadable or invalid files are skipped
// with a warning so one bad bank does not hide the rest.
func (p *FileProvider) ListBanks(ctx context.Context) ([]models.BankInfo, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.BankInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read banks directory: %w", err)
	}

	infos := make([]models.BankInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		bank, err := p.LoadBank(ctx, entry.Name())
		if err != nil {
			p.logger.Warn("Skipping unreadable question bank", "file", entry.Name(), "error", err)
			continue
		}

		info := models.BankInfo{
			File:          entry.Name(),
			BankID:        bank.BankID,
			Title:         bank.Title,
			Description:   bank.Description,
			Version:       bank.Version,
			QuestionCount: len(bank.Questions),
			TypeCounts:    make(map[models.QuestionType]int),
			DomainCounts:  make(map[string]int),
		}
		for i := range bank.Questions {
			q := &bank.Questions[i]
			info.TypeCounts[q.Type]++
			info.DomainCounts[q.Domain]++
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].File < infos[j].File })
	return infos, nil
}

// LoadBank loads and validates a single bank file.
func (p *FileProvider) LoadBank(ctx context.Context, file string) (*models.Bank, error) {
	p.mu.RLock()
	if bank, ok := p.banks[file]; ok {
		p.mu.RUnlock()
		return bank, nil
	}
	p.mu.RUnlock()

	// Reject path traversal; banks live directly in the configured dir.
	if filepath.Base(file) != file {
		return nil, fmt.Errorf("invalid bank file name: %s", file)
	}

	data, err := os.ReadFile(filepath.Join(p.dir, file))
	if err != nil {
		return nil, fmt.Errorf("failed to read bank file %s: %w", file, err)
	}

	var bank models.Bank
	if err := json.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("failed to parse bank file %s: %w", file, err)
	}
	if bank.BankID == "" {
		bank.BankID = strings.TrimSuffix(file, ".json")
	}
	if bank.Title == "" {
		bank.Title = bank.BankID
	}

	if err := p.validator.ValidateBank(&bank); err != nil {
		return nil, err
	}

	for i := range bank.Questions {
		bank.Questions[i].BankID = bank.BankID
	}

	p.mu.Lock()
	p.banks[file] = &bank
	p.mu.Unlock()

	p.logger.Info("Loaded question bank",
		"file", file,
		"bank_id", bank.BankID,
		"questions", len(bank.Questions))

	return &bank, nil
}

// LoadQuestions merges the questions of one or more banks, enforcing
// question id uniqueness across the combined set.
func (p *FileProvider) LoadQuestions(ctx context.Context, files []string) ([]models.Question, error) {
	var questions []models.Question
	seen := make(map[string]string) // question id -> bank id

	for _, file := range files {
		bank, err := p.LoadBank(ctx, file)
		if err != nil {
			return nil, err
		}
		for i := range bank.Questions {
			q := bank.Questions[i]
			if other, dup := seen[q.ID]; dup {
				return nil, fmt.Errorf("question id %s appears in banks %s and %s", q.ID, other, bank.BankID)
			}
			seen[q.ID] = bank.BankID
			questions = append(questions, q)
		}
	}

	return questions, nil
}
