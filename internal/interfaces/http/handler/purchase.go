package handler

import (
	ledgerapp "github.com/bizconsole/ledger/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// PurchaseHandler handles purchase booking API endpoints
type PurchaseHandler struct {
	BaseHandler
	reconciliationService *ledgerapp.ReconciliationService
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(reconciliationService *ledgerapp.ReconciliationService) *PurchaseHandler {
	return &PurchaseHandler{
		reconciliationService: reconciliationService,
	}
}

// Book godoc
// @Summary      Book a purchase onto the ledger
// @Description  Attach a purchase entry to the supplier's payable for the settlement period the purchase date falls into, opening the payable if needed
// @Tags         purchases
// @Accept       json
// @Produce      json
// @Param        request body ledgerapp.BookPurchaseRequest true "Purchase booking request"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/purchases/book [post]
func (h *PurchaseHandler) Book(c *gin.Context) {
	var req ledgerapp.BookPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payable, err := h.reconciliationService.BookPurchase(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payable)
}

// Relink godoc
// @Summary      Relink a purchase to another supplier
// @Description  Detach a purchase from its current payable and book it onto the correct supplier's bucket in one transaction
// @Tags         purchases
// @Accept       json
// @Produce      json
// @Param        request body ledgerapp.RelinkPurchaseRequest true "Purchase relink request"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ledger/purchases/relink [post]
func (h *PurchaseHandler) Relink(c *gin.Context) {
	var req ledgerapp.RelinkPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payable, err := h.reconciliationService.RelinkPurchase(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payable)
}
