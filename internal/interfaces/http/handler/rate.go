package handler

import (
	ledgerapp "github.com/bizconsole/ledger/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// RateHandler handles exchange rate API endpoints
type RateHandler struct {
	BaseHandler
	rateService *ledgerapp.RateService
}

// NewRateHandler creates a new RateHandler
func NewRateHandler(rateService *ledgerapp.RateService) *RateHandler {
	return &RateHandler{
		rateService: rateService,
	}
}

// List godoc
// @Summary      List exchange rates
// @Description  Retrieve the current per-currency CNY conversion rates
// @Tags         rates
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.Response
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/rates [get]
func (h *RateHandler) List(c *gin.Context) {
	rates, err := h.rateService.ListRates(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, rates)
}

// Upsert godoc
// @Summary      Set an exchange rate
// @Description  Insert or update one currency's CNY conversion rate
// @Tags         rates
// @Accept       json
// @Produce      json
// @Param        request body ledgerapp.UpsertRateRequest true "Rate upsert request"
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/rates [put]
func (h *RateHandler) Upsert(c *gin.Context) {
	var req ledgerapp.UpsertRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.rateService.UpsertRate(c.Request.Context(), req); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Delete godoc
// @Summary      Delete an exchange rate
// @Description  Remove one currency's conversion rate; summary rows for that currency fall back to unconverted reporting
// @Tags         rates
// @Accept       json
// @Produce      json
// @Param        currency path string true "Currency code" Enums(LAK, THB, USD)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/rates/{currency} [delete]
func (h *RateHandler) Delete(c *gin.Context) {
	currency := c.Param("currency")

	if err := h.rateService.DeleteRate(c.Request.Context(), currency); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
