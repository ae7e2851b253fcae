package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/certprep/quiz-service/internal/services"
	"github.com/certprep/quiz-service/internal/utils"
)

// BankHandler serves the question bank catalog.
type BankHandler struct {
	BaseHandler
	banks services.BankService
}

func NewBankHandler(banks services.BankService, logger utils.Logger) *BankHandler {
	return &BankHandler{
		BaseHandler: NewBaseHandler(logger),
		banks:       banks,
	}
}

// ListBanks returns catalog entries for every loadable bank
// @Summary List question banks
// @Tags banks
// @Produce json
// @Success 200 {array} models.BankInfo
// @Router /banks [get]
func (h *BankHandler) ListBanks(c *gin.Context) {
	catalog, err := h.banks.ListBanks(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, catalog)
}

// GetBank returns one bank with its questions, answer keys stripped
// @Summary Get question bank
// @Tags banks
// @Produce json
// @Param file path string true "Bank file name"
// @Success 200 {object} services.BankDetail
// @Failure 404 {object} ErrorResponse
// @Router /banks/{file} [get]
func (h *BankHandler) GetBank(c *gin.Context) {
	file := ParseStringIDParam(c, "file")
	if file == "" {
		return
	}

	bank, err := h.banks.GetBank(c.Request.Context(), file)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, bank)
}

// ListDomains returns the exam domains with their weightings
// @Summary List exam domains
// @Tags banks
// @Produce json
// @Success 200 {object} map[string]models.DomainInfo
// @Router /domains [get]
func (h *BankHandler) ListDomains(c *gin.Context) {
	c.JSON(http.StatusOK, h.banks.ListDomains(c.Request.Context()))
}
