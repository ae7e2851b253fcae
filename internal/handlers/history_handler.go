package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/certprep/quiz-service/internal/models"
	"github.com/certprep/quiz-service/internal/repositories"
	"github.com/certprep/quiz-service/internal/services"
	"github.com/certprep/quiz-service/internal/utils"
)

// HistoryHandler serves submission history, statistics and exports.
type HistoryHandler struct {
	BaseHandler
	history services.HistoryService
	export  services.ExportService
}

func NewHistoryHandler(history services.HistoryService, export services.ExportService, logger utils.Logger) *HistoryHandler {
	return &HistoryHandler{
		BaseHandler: NewBaseHandler(logger),
		history:     history,
		export:      export,
	}
}

// ListHistory returns a filtered page of submission records
// @Summary List submission history
// @Tags history
// @Produce json
// @Param mode query string false "Filter by mode (study|exam)"
// @Param date_from query string false "ISO date lower bound"
// @Param date_to query string false "ISO date upper bound"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} services.HistoryPage
// @Router /history [get]
func (h *HistoryHandler) ListHistory(c *gin.Context) {
	filters, ok := parseHistoryFilters(c)
	if !ok {
		return
	}

	page, err := h.history.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetSubmission returns one persisted submission record
// @Summary Get submission
// @Tags history
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} models.SubmissionRecord
// @Failure 404 {object} ErrorResponse
// @Router /history/{id} [get]
func (h *HistoryHandler) GetSubmission(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	record, err := h.history.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// DeleteSubmission removes one submission record
// @Summary Delete submission
// @Tags history
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /history/{id} [delete]
func (h *HistoryHandler) DeleteSubmission(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	if err := h.history.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "submission deleted"})
}

// GetStats returns aggregate statistics across all submissions
// @Summary Overall statistics
// @Tags history
// @Produce json
// @Success 200 {object} models.OverallStats
// @Router /stats [get]
func (h *HistoryHandler) GetStats(c *gin.Context) {
	stats, err := h.history.OverallStats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportHistory streams the history as an Excel workbook
// @Summary Export history
// @Tags history
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Router /history/export [get]
func (h *HistoryHandler) ExportHistory(c *gin.Context) {
	filters, ok := parseHistoryFilters(c)
	if !ok {
		return
	}
	if filters.Limit == 0 {
		filters.Limit = 1000
	}

	data, err := h.export.ExportHistory(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := "quiz-history-" + time.Now().Format("2006-01-02") + ".xlsx"
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func parseHistoryFilters(c *gin.Context) (repositories.HistoryFilters, bool) {
	var filters repositories.HistoryFilters

	if modeStr := c.Query("mode"); modeStr != "" {
		mode := models.QuizMode(modeStr)
		if mode != models.ModeStudy && mode != models.ModeExam {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid mode filter",
				Details: "mode must be study or exam",
			})
			return filters, false
		}
		filters.Mode = &mode
	}

	for param, dest := range map[string]**time.Time{
		"date_from": &filters.DateFrom,
		"date_to":   &filters.DateTo,
	} {
		value := c.Query(param)
		if value == "" {
			continue
		}
		parsed, err := parseDate(value)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid " + param,
				Details: "expected RFC3339 timestamp or YYYY-MM-DD date",
			})
			return filters, false
		}
		*dest = &parsed
	}

	filters.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "0"))
	filters.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	return filters, true
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
