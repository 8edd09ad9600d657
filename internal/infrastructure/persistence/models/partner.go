package models

import (
	"github.com/bizconsole/ledger/internal/domain/ledger"
	"github.com/bizconsole/ledger/internal/domain/partner"
	"github.com/bizconsole/ledger/internal/domain/shared/valueobject"
)

// SupplierModel is the persistence model for the Supplier aggregate root
type SupplierModel struct {
	AggregateModel
	Code           string                 `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name           string                 `gorm:"type:varchar(200);not null;index"`
	ContactName    string                 `gorm:"type:varchar(100)"`
	Phone          string                 `gorm:"type:varchar(50)"`
	Email          string                 `gorm:"type:varchar(200)"`
	Currency       valueobject.Currency   `gorm:"type:varchar(3);not null"`
	SettlementType ledger.SettlementType  `gorm:"type:varchar(10);not null;default:'flexible'"`
	SettlementDay  int                    `gorm:"not null;default:0"`
	Status         partner.SupplierStatus `gorm:"type:varchar(10);not null;default:'active';index"`
	Notes          string                 `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier
func (m *SupplierModel) ToDomain() *partner.Supplier {
	return &partner.Supplier{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		ContactName:       m.ContactName,
		Phone:             m.Phone,
		Email:             m.Email,
		Currency:          m.Currency,
		Settlement:        ledger.SettlementTerms{Type: m.SettlementType, Day: m.SettlementDay},
		Status:            m.Status,
		Notes:             m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Supplier
func (m *SupplierModel) FromDomain(s *partner.Supplier) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.Code = s.Code
	m.Name = s.Name
	m.ContactName = s.ContactName
	m.Phone = s.Phone
	m.Email = s.Email
	m.Currency = s.Currency
	m.SettlementType = s.Settlement.Type
	m.SettlementDay = s.Settlement.Day
	m.Status = s.Status
	m.Notes = s.Notes
}

// SupplierModelFromDomain creates a new persistence model from a domain Supplier
func SupplierModelFromDomain(s *partner.Supplier) *SupplierModel {
	m := &SupplierModel{}
	m.FromDomain(s)
	return m
}
