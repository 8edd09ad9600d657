package ledger

import (
	"fmt"
	"time"

	"github.com/bizconsole/ledger/internal/domain/shared"
	"github.com/bizconsole/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PayableStatus represents the status of a payable record. It is always a
// pure function of (paid_amount, total_amount); the stored value is only a
// cache of DeriveStatus, except after an explicit manual override.
type PayableStatus string

const (
	PayableStatusPending PayableStatus = "pending" // no payment applied
	PayableStatusPartial PayableStatus = "partial" // 0 < paid < total
	PayableStatusPaid    PayableStatus = "paid"    // remaining = 0
)

// IsValid checks if the status is a valid PayableStatus
func (s PayableStatus) IsValid() bool {
	switch s {
	case PayableStatusPending, PayableStatusPartial, PayableStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of PayableStatus
func (s PayableStatus) String() string {
	return string(s)
}

// DeriveStatus computes the status implied by the amounts. Zero paid is
// pending even when total is zero (a freshly created, unlinked payable).
func DeriveStatus(paid, total decimal.Decimal) PayableStatus {
	if paid.IsZero() {
		return PayableStatusPending
	}
	if total.Sub(paid).Abs().LessThanOrEqual(valueobject.Epsilon) {
		return PayableStatusPaid
	}
	return PayableStatusPartial
}

// PaymentMethod is how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCheck        PaymentMethod = "check"
	PaymentMethodOther        PaymentMethod = "other"
)

// IsValid checks if the payment method is a known value
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCheck, PaymentMethodOther:
		return true
	}
	return false
}

// PaymentKind distinguishes ordinary payments from compensating reversals.
// Both live in the same append-only list; a reversal carries a negative
// amount and never mutates the record it reverses.
type PaymentKind string

const (
	PaymentKindPayment  PaymentKind = "payment"
	PaymentKindReversal PaymentKind = "reversal"
)

// PurchaseLink is the immutable edge recording that a purchase entry's amount
// was booked against this payable. Amount equals the purchase entry's total at
// the moment of linking; purchase edits never retroactively alter it.
type PurchaseLink struct {
	ID              uuid.UUID       `json:"id"`
	PayableID       uuid.UUID       `json:"payable_id"`
	PurchaseEntryID uuid.UUID       `json:"purchase_entry_id"`
	OrderNumber     string          `json:"order_number"`
	Amount          decimal.Decimal `json:"amount"`
	CreatedAt       time.Time       `json:"created_at"`
}

// PaymentRecord is an immutable payment (or reversal) applied to a payable.
// Corrections are modeled as reversing records, never edits.
type PaymentRecord struct {
	ID              uuid.UUID       `json:"id"`
	PayableID       uuid.UUID       `json:"payable_id"`
	Kind            PaymentKind     `json:"kind"`
	Amount          decimal.Decimal `json:"amount"` // negative for reversals
	PaymentDate     time.Time       `json:"payment_date"`
	Method          PaymentMethod   `json:"payment_method"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	ReversesID      *uuid.UUID      `json:"reverses_id,omitempty"`
	CreatedBy       string          `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
}

// PayableRecord is the root ledger aggregate: an obligation to pay a supplier,
// accumulated from one or more purchase links for one settlement period.
// All amounts are in Currency; cross-currency arithmetic is forbidden here.
type PayableRecord struct {
	shared.BaseAggregateRoot
	SupplierID      uuid.UUID               `json:"supplier_id"`
	BaseID          uuid.UUID               `json:"base_id"`
	Currency        valueobject.Currency    `json:"currency"`
	PeriodKey       string                  `json:"period_key"`
	TotalAmount     decimal.Decimal         `json:"total_amount"`
	PaidAmount      decimal.Decimal         `json:"paid_amount"`
	RemainingAmount decimal.Decimal         `json:"remaining_amount"`
	Status          PayableStatus           `json:"status"`
	DueDate         *time.Time              `json:"due_date,omitempty"`
	StatusOverride  bool                    `json:"status_override"`
	Links           []PurchaseLink          `json:"links"`
	Payments        []PaymentRecord         `json:"payments"`
}

// NewPayableRecord creates an empty payable bucket for one
// (supplier, base, settlement period) combination.
func NewPayableRecord(supplierID, baseID uuid.UUID, currency valueobject.Currency, periodKey string, dueDate *time.Time) (*PayableRecord, error) {
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "supplier_id is required")
	}
	if baseID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "base_id is required")
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("unsupported currency %q", currency))
	}
	if periodKey == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "period_key is required")
	}

	p := &PayableRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SupplierID:        supplierID,
		BaseID:            baseID,
		Currency:          currency,
		PeriodKey:         periodKey,
		TotalAmount:       decimal.Zero,
		PaidAmount:        decimal.Zero,
		RemainingAmount:   decimal.Zero,
		Status:            PayableStatusPending,
		DueDate:           dueDate,
		Links:             make([]PurchaseLink, 0),
		Payments:          make([]PaymentRecord, 0),
	}

	p.AddDomainEvent(NewPayableCreatedEvent(p))

	return p, nil
}

// AttachPurchaseLink books a purchase entry's amount against this payable,
// increasing total and remaining. The link amount is frozen at attach time.
func (p *PayableRecord) AttachPurchaseLink(purchaseEntryID uuid.UUID, orderNumber string, amount valueobject.Money) (*PurchaseLink, error) {
	if purchaseEntryID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "purchase_entry_id is required")
	}
	if amount.Currency() != p.Currency {
		return nil, shared.NewDomainError("CURRENCY_MISMATCH",
			fmt.Sprintf("link amount is %s but payable is %s", amount.Currency(), p.Currency))
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "link amount must be positive")
	}
	for _, l := range p.Links {
		if l.PurchaseEntryID == purchaseEntryID {
			return nil, shared.NewDomainError("ALREADY_EXISTS",
				fmt.Sprintf("purchase entry %s is already linked to this payable", purchaseEntryID))
		}
	}

	link := PurchaseLink{
		ID:              uuid.New(),
		PayableID:       p.ID,
		PurchaseEntryID: purchaseEntryID,
		OrderNumber:     orderNumber,
		Amount:          amount.Amount(),
		CreatedAt:       time.Now(),
	}
	p.Links = append(p.Links, link)

	p.TotalAmount = p.TotalAmount.Add(amount.Amount())
	p.recompute()
	p.touch()

	p.AddDomainEvent(NewPurchaseLinkedEvent(p, &link))

	if err := p.assertConsistent(); err != nil {
		return nil, err
	}
	return &link, nil
}

// DetachPurchaseLink removes a link as part of an explicit correction
// (re-link) flow. It refuses to shrink the total below what has already been
// paid, which would drive the remaining amount negative.
func (p *PayableRecord) DetachPurchaseLink(purchaseEntryID uuid.UUID) (*PurchaseLink, error) {
	idx := -1
	for i, l := range p.Links {
		if l.PurchaseEntryID == purchaseEntryID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, shared.NewDomainError("NOT_FOUND",
			fmt.Sprintf("purchase entry %s is not linked to this payable", purchaseEntryID))
	}

	link := p.Links[idx]
	newTotal := p.TotalAmount.Sub(link.Amount)
	if p.PaidAmount.GreaterThan(newTotal.Add(valueobject.Epsilon)) {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("cannot unlink %s: paid amount %s would exceed new total %s",
				purchaseEntryID, p.PaidAmount, newTotal))
	}

	p.Links = append(p.Links[:idx], p.Links[idx+1:]...)
	p.TotalAmount = newTotal
	p.recompute()
	p.touch()

	p.AddDomainEvent(NewPurchaseUnlinkedEvent(p, &link))

	if err := p.assertConsistent(); err != nil {
		return nil, err
	}
	return &link, nil
}

// ApplyPayment applies a payment against the remaining amount. A payment
// exceeding the remaining amount is rejected outright; the caller must reduce
// the requested amount or split across payables.
func (p *PayableRecord) ApplyPayment(amount valueobject.Money, paymentDate time.Time, method PaymentMethod, reference, notes, actor string) (*PaymentRecord, error) {
	if amount.Currency() != p.Currency {
		return nil, shared.NewDomainError("CURRENCY_MISMATCH",
			fmt.Sprintf("payment is %s but payable is %s", amount.Currency(), p.Currency))
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("unknown payment method %q", method))
	}
	if actor == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "created_by is required")
	}
	if amount.Amount().GreaterThan(p.RemainingAmount) {
		return nil, shared.NewDomainError("OVERPAYMENT",
			fmt.Sprintf("payment %s exceeds remaining amount %s %s", amount, p.RemainingAmount, p.Currency))
	}

	record := PaymentRecord{
		ID:              uuid.New(),
		PayableID:       p.ID,
		Kind:            PaymentKindPayment,
		Amount:          amount.Amount(),
		PaymentDate:     paymentDate,
		Method:          method,
		ReferenceNumber: reference,
		Notes:           notes,
		CreatedBy:       actor,
		CreatedAt:       time.Now(),
	}
	p.Payments = append(p.Payments, record)

	p.PaidAmount = p.PaidAmount.Add(amount.Amount())
	p.recompute()
	p.touch()

	if p.Status == PayableStatusPaid {
		p.AddDomainEvent(NewPayablePaidEvent(p))
	} else {
		p.AddDomainEvent(NewPaymentAppliedEvent(p, &record))
	}

	if err := p.assertConsistent(); err != nil {
		return nil, err
	}
	return &record, nil
}

// ReversePayment appends a compensating entry that undoes a prior payment's
// effect on the aggregate amounts. The original record is left untouched so
// the audit trail stays append-only.
func (p *PayableRecord) ReversePayment(paymentID uuid.UUID, actor, reason string) (*PaymentRecord, error) {
	if actor == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "created_by is required")
	}

	var original *PaymentRecord
	for i := range p.Payments {
		if p.Payments[i].ID == paymentID {
			original = &p.Payments[i]
			break
		}
	}
	if original == nil {
		return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("payment %s not found on this payable", paymentID))
	}
	if original.Kind != PaymentKindPayment {
		return nil, shared.NewDomainError("INVALID_STATE", "only ordinary payments can be reversed")
	}
	for _, r := range p.Payments {
		if r.Kind == PaymentKindReversal && r.ReversesID != nil && *r.ReversesID == paymentID {
			return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("payment %s is already reversed", paymentID))
		}
	}

	reversal := PaymentRecord{
		ID:          uuid.New(),
		PayableID:   p.ID,
		Kind:        PaymentKindReversal,
		Amount:      original.Amount.Neg(),
		PaymentDate: time.Now(),
		Method:      original.Method,
		Notes:       reason,
		ReversesID:  &original.ID,
		CreatedBy:   actor,
		CreatedAt:   time.Now(),
	}
	p.Payments = append(p.Payments, reversal)

	p.PaidAmount = p.PaidAmount.Sub(original.Amount)
	p.recompute()
	p.touch()

	p.AddDomainEvent(NewPaymentReversedEvent(p, &reversal))

	if err := p.assertConsistent(); err != nil {
		return nil, err
	}
	return &reversal, nil
}

// CanDelete reports whether the payable may be physically deleted. Deletion is
// allowed only while untouched: no payment has ever been applied.
func (p *PayableRecord) CanDelete() error {
	if p.PaidAmount.IsPositive() || len(p.Payments) > 0 {
		return shared.NewDomainError("HAS_PAYMENTS", "payable has payments applied and cannot be deleted")
	}
	return nil
}

// OverrideStatus applies a privileged manual status correction. The amount-
// derived status stays authoritative for invariant checks; the override is
// flagged on the record and the caller receives whether the manual value
// disagrees with the derived one so it can be logged.
func (p *PayableRecord) OverrideStatus(status PayableStatus, actor string) (diverged bool, err error) {
	if !status.IsValid() {
		return false, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("unknown status %q", status))
	}
	if actor == "" {
		return false, shared.NewDomainError("VALIDATION_ERROR", "actor is required")
	}

	derived := DeriveStatus(p.PaidAmount, p.TotalAmount)
	diverged = status != derived

	p.Status = status
	p.StatusOverride = diverged
	p.touch()

	p.AddDomainEvent(NewStatusOverriddenEvent(p, derived, actor))

	return diverged, nil
}

// SetDueDate updates the due date, used when the first link fixes the
// settlement reference date.
func (p *PayableRecord) SetDueDate(dueDate *time.Time) {
	p.DueDate = dueDate
	p.touch()
}

// IsOverdue reports whether the due date has passed and the payable is not
// fully paid. Payables without a due date (flexible settlement) are never
// overdue.
func (p *PayableRecord) IsOverdue(now time.Time) bool {
	if p.Status == PayableStatusPaid {
		return false
	}
	if p.DueDate == nil {
		return false
	}
	return p.DueDate.Before(now)
}

// recompute refreshes remaining and status after any amount change. Any
// manual override is discarded: amounts always win.
func (p *PayableRecord) recompute() {
	p.RemainingAmount = p.TotalAmount.Sub(p.PaidAmount)
	p.Status = DeriveStatus(p.PaidAmount, p.TotalAmount)
	p.StatusOverride = false
}

func (p *PayableRecord) touch() {
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// assertConsistent checks the conservation invariants. A violation is a
// programming error: the state is never coerced, the mutation must abort.
func (p *PayableRecord) assertConsistent() error {
	if !p.TotalAmount.Sub(p.PaidAmount.Add(p.RemainingAmount)).Abs().LessThanOrEqual(valueobject.Epsilon) {
		return inconsistency(p, "total != paid + remaining")
	}
	if p.PaidAmount.IsNegative() {
		return inconsistency(p, "paid amount is negative")
	}
	if p.RemainingAmount.IsNegative() {
		return inconsistency(p, "remaining amount is negative")
	}
	linkSum := decimal.Zero
	for _, l := range p.Links {
		linkSum = linkSum.Add(l.Amount)
	}
	if !p.TotalAmount.Sub(linkSum).Abs().LessThanOrEqual(valueobject.Epsilon) {
		return inconsistency(p, "total != sum of purchase links")
	}
	if !p.StatusOverride && p.Status != DeriveStatus(p.PaidAmount, p.TotalAmount) {
		return inconsistency(p, "status does not match amounts")
	}
	return nil
}

func inconsistency(p *PayableRecord, detail string) error {
	return shared.NewDomainError("INTERNAL_INCONSISTENCY",
		fmt.Sprintf("payable %s: %s (total=%s paid=%s remaining=%s status=%s links=%d)",
			p.ID, detail, p.TotalAmount, p.PaidAmount, p.RemainingAmount, p.Status, len(p.Links)))
}
