package handler

import (
	"time"

	ledgerapp "github.com/bizconsole/ledger/internal/application/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentHandler handles payment recording API endpoints
type PaymentHandler struct {
	BaseHandler
	reconciliationService *ledgerapp.ReconciliationService
	reportingService      *ledgerapp.ReportingService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(reconciliationService *ledgerapp.ReconciliationService, reportingService *ledgerapp.ReportingService) *PaymentHandler {
	return &PaymentHandler{
		reconciliationService: reconciliationService,
		reportingService:      reportingService,
	}
}

// RecordPaymentRequest represents a request to apply a payment to a payable
// @Description Request body for recording a payment
type RecordPaymentRequest struct {
	Amount          decimal.Decimal `json:"amount" binding:"required" example:"500000"`
	PaymentDate     time.Time       `json:"payment_date" binding:"required" example:"2025-04-18T00:00:00Z"`
	Method          string          `json:"payment_method" binding:"required,payment_method" example:"bank_transfer"`
	ReferenceNumber string          `json:"reference_number" binding:"max=100" example:"TX-20250418-001"`
	Notes           string          `json:"notes" binding:"max=500"`
}

// ReversePaymentRequest represents a request to reverse a recorded payment
// @Description Request body for reversing a payment
type ReversePaymentRequest struct {
	Reason string `json:"reason" binding:"max=500" example:"duplicate entry"`
}

// List godoc
// @Summary      List payments of a payable
// @Description  Return the payment history of one payable, reversals included, in recording order
// @Tags         payments
// @Produce      json
// @Param        id path string true "Payable ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/payables/{id}/payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
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

	payments := payable.Payments
	if payments == nil {
		payments = []ledgerapp.PaymentRecordResponse{}
	}
	h.Success(c, payments)
}

// Record godoc
// @Summary      Record a payment
// @Description  Apply a payment against a payable's remaining amount; overpayment is rejected
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        X-Actor header string false "Acting user"
// @Param        id path string true "Payable ID" format(uuid)
// @Param        request body RecordPaymentRequest true "Payment request"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/payables/{id}/payments [post]
func (h *PaymentHandler) Record(c *gin.Context) {
	payableID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payable ID format")
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := ledgerapp.RecordPaymentRequest{
		PayableID:       payableID,
		Amount:          req.Amount,
		PaymentDate:     req.PaymentDate,
		Method:          req.Method,
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
	}

	payable, err := h.reconciliationService.RecordPayment(c.Request.Context(), appReq, getActor(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, payable)
}

// Reverse godoc
// @Summary      Reverse a payment
// @Description  Append a compensating entry that cancels a recorded payment; the original entry is never mutated
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        X-Actor header string false "Acting user"
// @Param        id path string true "Payable ID" format(uuid)
// @Param        paymentId path string true "Payment ID" format(uuid)
// @Param        request body ReversePaymentRequest false "Reversal request"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/payables/{id}/payments/{paymentId}/reverse [post]
func (h *PaymentHandler) Reverse(c *gin.Context) {
	payableID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payable ID format")
		return
	}

	paymentID, err := uuid.Parse(c.Param("paymentId"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	var req ReversePaymentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	payable, err := h.reconciliationService.ReversePayment(c.Request.Context(), payableID, paymentID, getActor(c), req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payable)
}
