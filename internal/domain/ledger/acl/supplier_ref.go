// Package acl provides the Anti-Corruption Layer for the ledger bounded
// context. The ledger needs supplier identity and settlement terms when
// booking purchases, but it must not depend on the partner context's Supplier
// aggregate directly. SupplierReference is the ledger's local, denormalized
// view of a supplier, and SupplierQueryService is the port through which it
// is fetched.
package acl

import (
	"context"

	"github.com/bizconsole/ledger/internal/domain/ledger"
	"github.com/bizconsole/ledger/internal/domain/shared"
	"github.com/bizconsole/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// SupplierID is a value object wrapping a supplier identifier. It keeps
// supplier IDs from being mixed up with the other UUID-based IDs the ledger
// handles.
type SupplierID struct {
	value uuid.UUID
}

// NewSupplierID creates a SupplierID, rejecting the nil UUID
func NewSupplierID(id uuid.UUID) (SupplierID, error) {
	if id == uuid.Nil {
		return SupplierID{}, shared.NewDomainError("INVALID_SUPPLIER_ID", "supplier ID cannot be empty")
	}
	return SupplierID{value: id}, nil
}

// ParseSupplierID parses a string into a SupplierID
func ParseSupplierID(s string) (SupplierID, error) {
	if s == "" {
		return SupplierID{}, shared.NewDomainError("INVALID_SUPPLIER_ID", "supplier ID cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return SupplierID{}, shared.NewDomainError("INVALID_SUPPLIER_ID", "supplier ID is not a valid UUID")
	}
	return NewSupplierID(id)
}

// UUID returns the underlying UUID value
func (s SupplierID) UUID() uuid.UUID {
	return s.value
}

// String returns the string representation
func (s SupplierID) String() string {
	return s.value.String()
}

// IsEmpty returns true if the SupplierID is the nil UUID
func (s SupplierID) IsEmpty() bool {
	return s.value == uuid.Nil
}

// Equals checks if two SupplierIDs are equal
func (s SupplierID) Equals(other SupplierID) bool {
	return s.value == other.value
}

// SupplierReference is the ledger's local view of a supplier: identity for
// display plus the settlement terms and currency that drive due-date and
// bucketing decisions. It is a snapshot taken at booking time.
type SupplierReference struct {
	id       SupplierID
	name     string
	code     string
	currency valueobject.Currency
	terms    ledger.SettlementTerms
}

// NewSupplierReference creates a SupplierReference
func NewSupplierReference(id SupplierID, name, code string, currency valueobject.Currency, terms ledger.SettlementTerms) (SupplierReference, error) {
	if id.IsEmpty() {
		return SupplierReference{}, shared.NewDomainError("INVALID_SUPPLIER_ID", "supplier ID cannot be empty")
	}
	if name == "" {
		return SupplierReference{}, shared.NewDomainError("INVALID_SUPPLIER_NAME", "supplier name cannot be empty")
	}
	if !currency.IsValid() {
		return SupplierReference{}, shared.NewDomainError("VALIDATION_ERROR", "supplier currency is not supported")
	}
	if !terms.Type.IsValid() {
		return SupplierReference{}, shared.NewDomainError("VALIDATION_ERROR", "supplier settlement terms are invalid")
	}
	return SupplierReference{id: id, name: name, code: code, currency: currency, terms: terms}, nil
}

// NewSupplierReferenceFromUUID is a convenience constructor for building a
// reference from persisted partner data.
func NewSupplierReferenceFromUUID(id uuid.UUID, name, code string, currency valueobject.Currency, terms ledger.SettlementTerms) (SupplierReference, error) {
	supplierID, err := NewSupplierID(id)
	if err != nil {
		return SupplierReference{}, err
	}
	return NewSupplierReference(supplierID, name, code, currency, terms)
}

// ID returns the SupplierID
func (r SupplierReference) ID() SupplierID {
	return r.id
}

// UUID returns the underlying supplier UUID
func (r SupplierReference) UUID() uuid.UUID {
	return r.id.UUID()
}

// Name returns the supplier name
func (r SupplierReference) Name() string {
	return r.name
}

// Code returns the supplier code
func (r SupplierReference) Code() string {
	return r.code
}

// Currency returns the currency the supplier settles in
func (r SupplierReference) Currency() valueobject.Currency {
	return r.currency
}

// SettlementTerms returns the supplier's settlement terms
func (r SupplierReference) SettlementTerms() ledger.SettlementTerms {
	return r.terms
}

// DisplayName returns code and name when a code exists
func (r SupplierReference) DisplayName() string {
	if r.code != "" {
		return r.code + " - " + r.name
	}
	return r.name
}

// IsEmpty returns true if the reference is empty
func (r SupplierReference) IsEmpty() bool {
	return r.id.IsEmpty()
}

// SupplierQueryService is the ledger's port for resolving supplier
// references from the partner context. Implemented in the infrastructure
// layer against the partner repository.
type SupplierQueryService interface {
	// GetSupplierReference resolves one supplier, returning NOT_FOUND when
	// the supplier does not exist or is deactivated.
	GetSupplierReference(ctx context.Context, supplierID uuid.UUID) (SupplierReference, error)

	// GetSupplierReferences resolves suppliers in batch. Missing suppliers
	// are absent from the result map rather than an error.
	GetSupplierReferences(ctx context.Context, supplierIDs []uuid.UUID) (map[uuid.UUID]SupplierReference, error)
}
