package handler

import (
	ledgerapp "github.com/bizconsole/ledger/internal/application/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PayableHandler handles payable ledger API endpoints
type PayableHandler struct {
	BaseHandler
	reportingService      *ledgerapp.ReportingService
	reconciliationService *ledgerapp.ReconciliationService
}

// NewPayableHandler creates a new PayableHandler
func NewPayableHandler(reportingService *ledgerapp.ReportingService, reconciliationService *ledgerapp.ReconciliationService) *PayableHandler {
	return &PayableHandler{
		reportingService:      reportingService,
		reconciliationService: reconciliationService,
	}
}

// OverrideStatusRequest represents a request to manually pin a payable's status
// @Description Request body for overriding a payable's derived status
type OverrideStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending partial paid" example:"paid"`
	Reason string `json:"reason" binding:"max=500" example:"settled offline against statement 2025-04"`
}

// List godoc
// @Summary      List payables
// @Description  Retrieve a paginated list of payables with optional filtering
// @Tags         payables
// @Accept       json
// @Produce      json
// @Param        supplier_id query string false "Supplier ID" format(uuid)
// @Param        base_id query string false "Base ID" format(uuid)
// @Param        status query string false "Payable status" Enums(pending, partial, paid)
// @Param        currency query string false "Currency code" Enums(CNY, LAK, THB, USD)
// @Param        period_key query string false "Settlement period key" example("2025-04")
// @Param        overdue query bool false "Only overdue payables"
// @Param        from_date query string false "Booking date lower bound" format(date)
// @Param        to_date query string false "Booking date upper bound" format(date)
// @Param        search query string false "Search term (order number, reference)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/payables [get]
func (h *PayableHandler) List(c *gin.Context) {
	var filter ledgerapp.PayableListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}

	result, err := h.reportingService.ListPayables(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetByID godoc
// @Summary      Get payable by ID
// @Description  Retrieve a payable with its purchase links and payments
// @Tags         payables
// @Accept       json
// @Produce      json
// @Param        id path string true "Payable ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/payables/{id} [get]
func (h *PayableHandler) GetByID(c *gin.Context) {
	payableID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payable ID format")
		return
	}

	payable, err := h.reportingService.GetPayable(c.Request.Context(), payableID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payable)
}

// Timeline godoc
// @Summary      Get payable timeline
// @Description  Retrieve the chronological event history of a payable
// @Tags         payables
// @Accept       json
// @Produce      json
// @Param        id path string true "Payable ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/payables/{id}/timeline [get]
func (h *PayableHandler) Timeline(c *gin.Context) {
	payableID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payable ID format")
		return
	}

	events, err := h.reportingService.GetTimeline(c.Request.Context(), payableID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, events)
}

// Summary godoc
// @Summary      Get ledger summary
// @Description  Aggregate totals across payables, per currency and converted to CNY
// @Tags         payables
// @Accept       json
// @Produce      json
// @Param        supplier_id query string false "Supplier ID" format(uuid)
// @Param        status query string false "Payable status" Enums(pending, partial, paid)
// @Param        currency query string false "Currency code" Enums(CNY, LAK, THB, USD)
// @Param        from_date query string false "Booking date lower bound" format(date)
// @Param        to_date query string false "Booking date upper bound" format(date)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/payables/summary [get]
func (h *PayableHandler) Summary(c *gin.Context) {
	var filter ledgerapp.PayableListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	summary, err := h.reportingService.GetSummary(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, summary)
}

// BySupplier godoc
// @Summary      Get payables grouped by supplier
// @Description  Aggregate outstanding amounts per supplier
// @Tags         payables
// @Accept       json
// @Produce      json
// @Param        status query string false "Payable status" Enums(pending, partial, paid)
// @Param        currency query string false "Currency code" Enums(CNY, LAK, THB, USD)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/payables/by-supplier [get]
func (h *PayableHandler) BySupplier(c *gin.Context) {
	var filter ledgerapp.PayableListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	aggregates, err := h.reportingService.GetBySupplier(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, aggregates)
}

// Overdue godoc
// @Summary      Get overdue payables
// @Description  Retrieve unsettled payables whose due date has passed
// @Tags         payables
// @Accept       json
// @Produce      json
// @Param        supplier_id query string false "Supplier ID" format(uuid)
// @Param        currency query string false "Currency code" Enums(CNY, LAK, THB, USD)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/payables/overdue [get]
func (h *PayableHandler) Overdue(c *gin.Context) {
	var filter ledgerapp.PayableListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payables, err := h.reportingService.GetOverdue(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payables)
}

// OverrideStatus godoc
// @Summary      Override payable status
// @Description  Pin a payable's status manually; cleared again by the next amount-changing operation
// @Tags         payables
// @Accept       json
// @Produce      json
// @Param        X-Actor header string false "Acting user"
// @Param        id path string true "Payable ID" format(uuid)
// @Param        request body OverrideStatusRequest true "Status override request"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/payables/{id}/override-status [post]
func (h *PayableHandler) OverrideStatus(c *gin.Context) {
	payableID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payable ID format")
		return
	}

	var req OverrideStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payable, err := h.reconciliationService.OverrideStatus(c.Request.Context(), payableID, req.Status, getActor(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payable)
}

// Delete godoc
// @Summary      Delete a payable
// @Description  Delete a payable that carries no payments
// @Tags         payables
// @Accept       json
// @Produce      json
// @Param        id path string true "Payable ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/payables/{id} [delete]
func (h *PayableHandler) Delete(c *gin.Context) {
	payableID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payable ID format")
		return
	}

	if err := h.reconciliationService.DeletePayable(c.Request.Context(), payableID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
