package ledger

import (
	"github.com/bizconsole/ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	EventTypePayableCreated   = "ledger.payable.created"
	EventTypePurchaseLinked   = "ledger.payable.purchase_linked"
	EventTypePurchaseUnlinked = "ledger.payable.purchase_unlinked"
	EventTypePaymentApplied   = "ledger.payable.payment_applied"
	EventTypePaymentReversed  = "ledger.payable.payment_reversed"
	EventTypePayablePaid      = "ledger.payable.paid"
	EventTypeStatusOverridden = "ledger.payable.status_overridden"
)

const aggregateTypePayable = "PayableRecord"

// PayableCreatedEvent is raised when a new payable bucket is opened
type PayableCreatedEvent struct {
	shared.BaseDomainEvent
	SupplierID string `json:"supplier_id"`
	PeriodKey  string `json:"period_key"`
	Currency   string `json:"currency"`
}

func NewPayableCreatedEvent(p *PayableRecord) *PayableCreatedEvent {
	return &PayableCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePayableCreated, aggregateTypePayable, p.ID),
		SupplierID:      p.SupplierID.String(),
		PeriodKey:       p.PeriodKey,
		Currency:        p.Currency.String(),
	}
}

// PurchaseLinkedEvent is raised when a purchase entry is booked onto a payable
type PurchaseLinkedEvent struct {
	shared.BaseDomainEvent
	PurchaseEntryID string          `json:"purchase_entry_id"`
	Amount          decimal.Decimal `json:"amount"`
	NewTotal        decimal.Decimal `json:"new_total"`
}

func NewPurchaseLinkedEvent(p *PayableRecord, l *PurchaseLink) *PurchaseLinkedEvent {
	return &PurchaseLinkedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseLinked, aggregateTypePayable, p.ID),
		PurchaseEntryID: l.PurchaseEntryID.String(),
		Amount:          l.Amount,
		NewTotal:        p.TotalAmount,
	}
}

// PurchaseUnlinkedEvent is raised when a purchase link is detached during relinking
type PurchaseUnlinkedEvent struct {
	shared.BaseDomainEvent
	PurchaseEntryID string          `json:"purchase_entry_id"`
	Amount          decimal.Decimal `json:"amount"`
	NewTotal        decimal.Decimal `json:"new_total"`
}

func NewPurchaseUnlinkedEvent(p *PayableRecord, l *PurchaseLink) *PurchaseUnlinkedEvent {
	return &PurchaseUnlinkedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseUnlinked, aggregateTypePayable, p.ID),
		PurchaseEntryID: l.PurchaseEntryID.String(),
		Amount:          l.Amount,
		NewTotal:        p.TotalAmount,
	}
}

// PaymentAppliedEvent is raised when a payment reduces the remaining amount
type PaymentAppliedEvent struct {
	shared.BaseDomainEvent
	PaymentID string          `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
	Remaining decimal.Decimal `json:"remaining"`
	Status    string          `json:"status"`
}

func NewPaymentAppliedEvent(p *PayableRecord, r *PaymentRecord) *PaymentAppliedEvent {
	return &PaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentApplied, aggregateTypePayable, p.ID),
		PaymentID:       r.ID.String(),
		Amount:          r.Amount,
		Remaining:       p.RemainingAmount,
		Status:          p.Status.String(),
	}
}

// PaymentReversedEvent is raised when a compensating reversal entry is appended
type PaymentReversedEvent struct {
	shared.BaseDomainEvent
	ReversalID string          `json:"reversal_id"`
	ReversesID string          `json:"reverses_id"`
	Amount     decimal.Decimal `json:"amount"`
	Remaining  decimal.Decimal `json:"remaining"`
}

func NewPaymentReversedEvent(p *PayableRecord, r *PaymentRecord) *PaymentReversedEvent {
	return &PaymentReversedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentReversed, aggregateTypePayable, p.ID),
		ReversalID:      r.ID.String(),
		ReversesID:      r.ReversesID.String(),
		Amount:          r.Amount,
		Remaining:       p.RemainingAmount,
	}
}

// PayablePaidEvent is raised the moment a payable reaches fully paid
type PayablePaidEvent struct {
	shared.BaseDomainEvent
	SupplierID string          `json:"supplier_id"`
	Total      decimal.Decimal `json:"total"`
}

func NewPayablePaidEvent(p *PayableRecord) *PayablePaidEvent {
	return &PayablePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePayablePaid, aggregateTypePayable, p.ID),
		SupplierID:      p.SupplierID.String(),
		Total:           p.TotalAmount,
	}
}

// StatusOverriddenEvent is raised when an operator manually forces a status
type StatusOverriddenEvent struct {
	shared.BaseDomainEvent
	NewStatus     string `json:"new_status"`
	DerivedStatus string `json:"derived_status"`
	Actor         string `json:"actor"`
}

func NewStatusOverriddenEvent(p *PayableRecord, derived PayableStatus, actor string) *StatusOverriddenEvent {
	return &StatusOverriddenEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStatusOverridden, aggregateTypePayable, p.ID),
		NewStatus:       p.Status.String(),
		DerivedStatus:   derived.String(),
		Actor:           actor,
	}
}
