package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/certprep/quiz-service/internal/models"
	"github.com/certprep/quiz-service/internal/repositories"
)

// ExportService renders submission history as an Excel workbook.
type ExportService interface {
	ExportHistory(ctx context.Context, filters repositories.HistoryFilters) ([]byte, error)
}

type exportService struct {
	repo   repositories.SubmissionRepository
	logger *slog.Logger
}

func NewExportService(repo repositories.SubmissionRepository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

func (s *exportService) ExportHistory(ctx context.Context, filters repositories.HistoryFilters) ([]byte, error) {
	records, _, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to load submissions for export: %w", err)
	}

	f := excelize.NewFile()
	sheetName := "History"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"Record ID", "Session ID", "Mode", "Questions", "Correct",
		"Raw %", "Scaled Score", "Result", "Time Spent (minutes)", "Submitted At",
	}

	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, record := range records {
		row := recordToRow(record)
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("History exported", "records", len(records))
	return buf.Bytes(), nil
}

func recordToRow(record *models.SubmissionRecord) []interface{} {
	result := "FAIL"
	if record.Passed {
		result = "PASS"
	}

	return []interface{}{
		record.ID,
		record.SessionID,
		string(record.Mode),
		record.TotalQuestions,
		record.CorrectCount,
		record.RawPercentage,
		record.ScaledScore,
		result,
		fmt.Sprintf("%.1f", float64(record.TimeSpentSeconds)/60),
		record.SubmittedAt.Format("2006-01-02 15:04:05"),
	}
}
