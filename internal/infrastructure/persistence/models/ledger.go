package models

import (
	"time"

	"github.com/bizconsole/ledger/internal/domain/ledger"
	"github.com/bizconsole/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PayableModel is the persistence model for the PayableRecord aggregate root.
// Links and payments are child rows loaded with the aggregate.
type PayableModel struct {
	AggregateModel
	SupplierID      uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_payable_bucket,priority:1"`
	BaseID          uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_payable_bucket,priority:2"`
	Currency        valueobject.Currency `gorm:"type:varchar(3);not null;uniqueIndex:idx_payable_bucket,priority:3"`
	PeriodKey       string               `gorm:"type:varchar(20);not null;uniqueIndex:idx_payable_bucket,priority:4"`
	TotalAmount     decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	PaidAmount      decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	RemainingAmount decimal.Decimal      `gorm:"type:decimal(18,2);not null;index"`
	Status          ledger.PayableStatus `gorm:"type:varchar(10);not null;default:'pending';index"`
	StatusOverride  bool                 `gorm:"not null;default:false"`
	DueDate         *time.Time           `gorm:"index"`
	Links           []PurchaseLinkModel  `gorm:"foreignKey:PayableID;references:ID"`
	Payments        []PaymentRecordModel `gorm:"foreignKey:PayableID;references:ID"`
}

// TableName returns the table name for GORM
func (PayableModel) TableName() string {
	return "payables"
}

// ToDomain converts the persistence model to a domain PayableRecord
func (m *PayableModel) ToDomain() *ledger.PayableRecord {
	p := &ledger.PayableRecord{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		SupplierID:        m.SupplierID,
		BaseID:            m.BaseID,
		Currency:          m.Currency,
		PeriodKey:         m.PeriodKey,
		TotalAmount:       m.TotalAmount,
		PaidAmount:        m.PaidAmount,
		RemainingAmount:   m.RemainingAmount,
		Status:            m.Status,
		StatusOverride:    m.StatusOverride,
		DueDate:           m.DueDate,
		Links:             make([]ledger.PurchaseLink, len(m.Links)),
		Payments:          make([]ledger.PaymentRecord, len(m.Payments)),
	}
	for i, l := range m.Links {
		p.Links[i] = l.ToDomain()
	}
	for i, r := range m.Payments {
		p.Payments[i] = r.ToDomain()
	}
	return p
}

// FromDomain populates the persistence model from a domain PayableRecord
func (m *PayableModel) FromDomain(p *ledger.PayableRecord) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.SupplierID = p.SupplierID
	m.BaseID = p.BaseID
	m.Currency = p.Currency
	m.PeriodKey = p.PeriodKey
	m.TotalAmount = p.TotalAmount
	m.PaidAmount = p.PaidAmount
	m.RemainingAmount = p.RemainingAmount
	m.Status = p.Status
	m.StatusOverride = p.StatusOverride
	m.DueDate = p.DueDate
	m.Links = make([]PurchaseLinkModel, len(p.Links))
	for i, l := range p.Links {
		m.Links[i] = PurchaseLinkModelFromDomain(l)
	}
	m.Payments = make([]PaymentRecordModel, len(p.Payments))
	for i, r := range p.Payments {
		m.Payments[i] = PaymentRecordModelFromDomain(r)
	}
}

// PayableModelFromDomain creates a new persistence model from a domain PayableRecord
func PayableModelFromDomain(p *ledger.PayableRecord) *PayableModel {
	m := &PayableModel{}
	m.FromDomain(p)
	return m
}

// PurchaseLinkModel is the persistence model for purchase links
type PurchaseLinkModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	PayableID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	PurchaseEntryID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	OrderNumber     string          `gorm:"type:varchar(50)"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseLinkModel) TableName() string {
	return "payable_purchase_links"
}

// ToDomain converts to a domain PurchaseLink
func (m *PurchaseLinkModel) ToDomain() ledger.PurchaseLink {
	return ledger.PurchaseLink{
		ID:              m.ID,
		PayableID:       m.PayableID,
		PurchaseEntryID: m.PurchaseEntryID,
		OrderNumber:     m.OrderNumber,
		Amount:          m.Amount,
		CreatedAt:       m.CreatedAt,
	}
}

// PurchaseLinkModelFromDomain creates a persistence model from a domain PurchaseLink
func PurchaseLinkModelFromDomain(l ledger.PurchaseLink) PurchaseLinkModel {
	return PurchaseLinkModel{
		ID:              l.ID,
		PayableID:       l.PayableID,
		PurchaseEntryID: l.PurchaseEntryID,
		OrderNumber:     l.OrderNumber,
		Amount:          l.Amount,
		CreatedAt:       l.CreatedAt,
	}
}

// PaymentRecordModel is the persistence model for payment records. Rows are
// append-only; reversals reference the record they compensate.
type PaymentRecordModel struct {
	ID              uuid.UUID            `gorm:"type:uuid;primary_key"`
	PayableID       uuid.UUID            `gorm:"type:uuid;not null;index"`
	Kind            ledger.PaymentKind   `gorm:"type:varchar(10);not null;default:'payment'"`
	Amount          decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	PaymentDate     time.Time            `gorm:"not null;index"`
	Method          ledger.PaymentMethod `gorm:"type:varchar(20);not null"`
	ReferenceNumber string               `gorm:"type:varchar(100)"`
	Notes           string               `gorm:"type:text"`
	ReversesID      *uuid.UUID           `gorm:"type:uuid;index"`
	CreatedBy       string               `gorm:"type:varchar(100);not null"`
	CreatedAt       time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentRecordModel) TableName() string {
	return "payable_payments"
}

// ToDomain converts to a domain PaymentRecord
func (m *PaymentRecordModel) ToDomain() ledger.PaymentRecord {
	return ledger.PaymentRecord{
		ID:              m.ID,
		PayableID:       m.PayableID,
		Kind:            m.Kind,
		Amount:          m.Amount,
		PaymentDate:     m.PaymentDate,
		Method:          m.Method,
		ReferenceNumber: m.ReferenceNumber,
		Notes:           m.Notes,
		ReversesID:      m.ReversesID,
		CreatedBy:       m.CreatedBy,
		CreatedAt:       m.CreatedAt,
	}
}

// PaymentRecordModelFromDomain creates a persistence model from a domain PaymentRecord
func PaymentRecordModelFromDomain(r ledger.PaymentRecord) PaymentRecordModel {
	return PaymentRecordModel{
		ID:              r.ID,
		PayableID:       r.PayableID,
		Kind:            r.Kind,
		Amount:          r.Amount,
		PaymentDate:     r.PaymentDate,
		Method:          r.Method,
		ReferenceNumber: r.ReferenceNumber,
		Notes:           r.Notes,
		ReversesID:      r.ReversesID,
		CreatedBy:       r.CreatedBy,
		CreatedAt:       r.CreatedAt,
	}
}

// ExchangeRateModel is the persistence model for the CNY rate table
type ExchangeRateModel struct {
	Currency  valueobject.Currency `gorm:"type:varchar(3);primary_key"`
	RateToCNY decimal.Decimal      `gorm:"type:decimal(18,8);not null"`
	UpdatedAt time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ExchangeRateModel) TableName() string {
	return "exchange_rates"
}

// ToDomain converts to a domain ExchangeRate
func (m *ExchangeRateModel) ToDomain() valueobject.ExchangeRate {
	return valueobject.ExchangeRate{
		Currency:  m.Currency,
		RateToCNY: m.RateToCNY,
		UpdatedAt: m.UpdatedAt,
	}
}

// ExchangeRateModelFromDomain creates a persistence model from a domain ExchangeRate
func ExchangeRateModelFromDomain(r valueobject.ExchangeRate) ExchangeRateModel {
	return ExchangeRateModel{
		Currency:  r.Currency,
		RateToCNY: r.RateToCNY,
		UpdatedAt: r.UpdatedAt,
	}
}
