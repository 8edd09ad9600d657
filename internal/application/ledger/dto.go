package ledger

import (
	"time"

	"github.com/bizconsole/ledger/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PayableResponse represents a payable record in API responses
type PayableResponse struct {
	ID              uuid.UUID               `json:"id"`
	SupplierID      uuid.UUID               `json:"supplier_id"`
	SupplierName    string                  `json:"supplier_name,omitempty"`
	BaseID          uuid.UUID               `json:"base_id"`
	Currency        string                  `json:"currency"`
	PeriodKey       string                  `json:"period_key"`
	TotalAmount     decimal.Decimal         `json:"total_amount"`
	PaidAmount      decimal.Decimal         `json:"paid_amount"`
	RemainingAmount decimal.Decimal         `json:"remaining_amount"`
	Status          string                  `json:"status"`
	StatusOverride  bool                    `json:"status_override"`
	DueDate         *time.Time              `json:"due_date,omitempty"`
	Overdue         bool                    `json:"overdue"`
	Links           []PurchaseLinkResponse  `json:"links,omitempty"`
	Payments        []PaymentRecordResponse `json:"payments,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
	Version         int                     `json:"version"`
}

// PurchaseLinkResponse represents a purchase link in API responses
type PurchaseLinkResponse struct {
	ID              uuid.UUID       `json:"id"`
	PurchaseEntryID uuid.UUID       `json:"purchase_entry_id"`
	OrderNumber     string          `json:"order_number,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	CreatedAt       time.Time       `json:"created_at"`
}

// PaymentRecordResponse represents a payment record in API responses
type PaymentRecordResponse struct {
	ID              uuid.UUID       `json:"id"`
	Kind            string          `json:"kind"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentDate     time.Time       `json:"payment_date"`
	Method          string          `json:"payment_method"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	ReversesID      *uuid.UUID      `json:"reverses_id,omitempty"`
	CreatedBy       string          `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
}

// TimelineEventResponse represents one step of a payable's history
type TimelineEventResponse struct {
	OccurredAt     time.Time       `json:"occurred_at"`
	Kind           string          `json:"kind"`
	RefID          uuid.UUID       `json:"ref_id"`
	Description    string          `json:"description,omitempty"`
	Delta          decimal.Decimal `json:"delta"`
	RunningBalance decimal.Decimal `json:"running_balance"`
}

// PayableListFilter defines filtering options for payable list queries
type PayableListFilter struct {
	SupplierID *uuid.UUID `form:"supplier_id"`
	BaseID     *uuid.UUID `form:"base_id"`
	Status     string     `form:"status"`
	Currency   string     `form:"currency"`
	PeriodKey  string     `form:"period_key"`
	Overdue    *bool      `form:"overdue"`
	FromDate   *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate     *time.Time `form:"to_date" time_format:"2006-01-02"`
	Search     string     `form:"search"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
}

func toPayableResponse(p *ledger.PayableRecord, now time.Time) *PayableResponse {
	resp := &PayableResponse{
		ID:              p.ID,
		SupplierID:      p.SupplierID,
		BaseID:          p.BaseID,
		Currency:        p.Currency.String(),
		PeriodKey:       p.PeriodKey,
		TotalAmount:     p.TotalAmount,
		PaidAmount:      p.PaidAmount,
		RemainingAmount: p.RemainingAmount,
		Status:          p.Status.String(),
		StatusOverride:  p.StatusOverride,
		DueDate:         p.DueDate,
		Overdue:         p.IsOverdue(now),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
		Version:         p.GetVersion(),
	}
	for _, l := range p.Links {
		resp.Links = append(resp.Links, PurchaseLinkResponse{
			ID:              l.ID,
			PurchaseEntryID: l.PurchaseEntryID,
			OrderNumber:     l.OrderNumber,
			Amount:          l.Amount,
			CreatedAt:       l.CreatedAt,
		})
	}
	for _, r := range p.Payments {
		resp.Payments = append(resp.Payments, toPaymentRecordResponse(&r))
	}
	return resp
}

func toPaymentRecordResponse(r *ledger.PaymentRecord) PaymentRecordResponse {
	return PaymentRecordResponse{
		ID:              r.ID,
		Kind:            string(r.Kind),
		Amount:          r.Amount,
		PaymentDate:     r.PaymentDate,
		Method:          string(r.Method),
		ReferenceNumber: r.ReferenceNumber,
		Notes:           r.Notes,
		ReversesID:      r.ReversesID,
		CreatedBy:       r.CreatedBy,
		CreatedAt:       r.CreatedAt,
	}
}

func toTimelineResponse(events []ledger.TimelineEvent) []TimelineEventResponse {
	out := make([]TimelineEventResponse, len(events))
	for i, e := range events {
		out[i] = TimelineEventResponse{
			OccurredAt:     e.OccurredAt,
			Kind:           string(e.Kind),
			RefID:          e.RefID,
			Description:    e.Description,
			Delta:          e.Delta,
			RunningBalance: e.RunningBalance,
		}
	}
	return out
}
