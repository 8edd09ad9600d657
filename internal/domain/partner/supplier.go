package partner

import (
	"fmt"

	"github.com/bizconsole/ledger/internal/domain/ledger"
	"github.com/bizconsole/ledger/internal/domain/shared"
	"github.com/bizconsole/ledger/internal/domain/shared/valueobject"
)

// SupplierStatus represents the status of a supplier
type SupplierStatus string

const (
	SupplierStatusActive   SupplierStatus = "active"
	SupplierStatusInactive SupplierStatus = "inactive"
)

// Supplier is the partner-context aggregate the ledger books payables
// against. Its settlement terms drive due-date computation; changing them
// affects future bookings only, existing payables keep their due dates.
type Supplier struct {
	shared.BaseAggregateRoot
	Code        string                 `json:"code"`
	Name        string                 `json:"name"`
	ContactName string                 `json:"contact_name"`
	Phone       string                 `json:"phone"`
	Email       string                 `json:"email"`
	Currency    valueobject.Currency   `json:"currency"`
	Settlement  ledger.SettlementTerms `json:"settlement"`
	Status      SupplierStatus         `json:"status"`
	Notes       string                 `json:"notes"`
}

// NewSupplier creates a new active supplier
func NewSupplier(code, name string, currency valueobject.Currency, settlement ledger.SettlementTerms) (*Supplier, error) {
	if code == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "supplier code is required")
	}
	if name == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "supplier name is required")
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("unsupported currency %q", currency))
	}
	if !settlement.Type.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "settlement terms are invalid")
	}

	s := &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Currency:          currency,
		Settlement:        settlement,
		Status:            SupplierStatusActive,
	}

	s.AddDomainEvent(NewSupplierCreatedEvent(s))

	return s, nil
}

// UpdateInfo updates display and contact fields
func (s *Supplier) UpdateInfo(name, contactName, phone, email, notes string) error {
	if name == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "supplier name is required")
	}

	s.Name = name
	s.ContactName = contactName
	s.Phone = phone
	s.Email = email
	s.Notes = notes
	s.IncrementVersion()

	s.AddDomainEvent(NewSupplierUpdatedEvent(s))

	return nil
}

// ChangeSettlementTerms replaces the settlement terms used for future
// bookings.
func (s *Supplier) ChangeSettlementTerms(terms ledger.SettlementTerms) error {
	if !terms.Type.IsValid() {
		return shared.NewDomainError("VALIDATION_ERROR", "settlement terms are invalid")
	}
	if terms.Type == ledger.SettlementMonthly && (terms.Day < 1 || terms.Day > 31) {
		return shared.NewDomainError("VALIDATION_ERROR", "settlement day must be between 1 and 31")
	}

	old := s.Settlement
	s.Settlement = terms
	s.IncrementVersion()

	s.AddDomainEvent(NewSupplierSettlementChangedEvent(s, old))

	return nil
}

// Deactivate marks the supplier inactive. Inactive suppliers keep their
// payables but cannot receive new bookings.
func (s *Supplier) Deactivate() error {
	if s.Status == SupplierStatusInactive {
		return shared.NewDomainError("INVALID_STATE", "supplier is already inactive")
	}
	s.Status = SupplierStatusInactive
	s.IncrementVersion()
	return nil
}

// Activate marks the supplier active again
func (s *Supplier) Activate() error {
	if s.Status == SupplierStatusActive {
		return shared.NewDomainError("INVALID_STATE", "supplier is already active")
	}
	s.Status = SupplierStatusActive
	s.IncrementVersion()
	return nil
}

// IsActive reports whether the supplier can receive new bookings
func (s *Supplier) IsActive() bool {
	return s.Status == SupplierStatusActive
}
