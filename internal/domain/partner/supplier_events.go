package partner

import (
	"github.com/bizconsole/ledger/internal/domain/ledger"
	"github.com/bizconsole/ledger/internal/domain/shared"
)

const (
	EventTypeSupplierCreated           = "partner.supplier.created"
	EventTypeSupplierUpdated           = "partner.supplier.updated"
	EventTypeSupplierSettlementChanged = "partner.supplier.settlement_changed"
)

const aggregateTypeSupplier = "Supplier"

// SupplierCreatedEvent is raised when a supplier is registered
type SupplierCreatedEvent struct {
	shared.BaseDomainEvent
	Code     string `json:"code"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

func NewSupplierCreatedEvent(s *Supplier) *SupplierCreatedEvent {
	return &SupplierCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSupplierCreated, aggregateTypeSupplier, s.ID),
		Code:            s.Code,
		Name:            s.Name,
		Currency:        s.Currency.String(),
	}
}

// SupplierUpdatedEvent is raised when supplier contact details change
type SupplierUpdatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

func NewSupplierUpdatedEvent(s *Supplier) *SupplierUpdatedEvent {
	return &SupplierUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSupplierUpdated, aggregateTypeSupplier, s.ID),
		Code:            s.Code,
		Name:            s.Name,
	}
}

// SupplierSettlementChangedEvent is raised when settlement terms change.
// Consumers use it to audit due-date policy changes; existing payables are
// never retrofitted.
type SupplierSettlementChangedEvent struct {
	shared.BaseDomainEvent
	OldType string `json:"old_type"`
	OldDay  int    `json:"old_day"`
	NewType string `json:"new_type"`
	NewDay  int    `json:"new_day"`
}

func NewSupplierSettlementChangedEvent(s *Supplier, old ledger.SettlementTerms) *SupplierSettlementChangedEvent {
	return &SupplierSettlementChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSupplierSettlementChanged, aggregateTypeSupplier, s.ID),
		OldType:         old.Type.String(),
		OldDay:          old.Day,
		NewType:         s.Settlement.Type.String(),
		NewDay:          s.Settlement.Day,
	}
}
