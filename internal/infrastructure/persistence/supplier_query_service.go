package persistence

import (
	"context"

	"github.com/bizconsole/ledger/internal/domain/ledger/acl"
	"github.com/bizconsole/ledger/internal/domain/partner"
	"github.com/bizconsole/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// SupplierQueryServiceImpl implements acl.SupplierQueryService against the
// partner repository. The ledger only ever sees SupplierReference snapshots,
// never the Supplier aggregate itself.
type SupplierQueryServiceImpl struct {
	supplierRepo partner.SupplierRepository
}

// NewSupplierQueryService creates a new SupplierQueryServiceImpl
func NewSupplierQueryService(supplierRepo partner.SupplierRepository) *SupplierQueryServiceImpl {
	return &SupplierQueryServiceImpl{supplierRepo: supplierRepo}
}

// GetSupplierReference resolves one supplier. Inactive suppliers resolve to
// NOT_FOUND because they must not receive new bookings.
func (s *SupplierQueryServiceImpl) GetSupplierReference(ctx context.Context, supplierID uuid.UUID) (acl.SupplierReference, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, supplierID)
	if err != nil {
		return acl.SupplierReference{}, err
	}
	if !supplier.IsActive() {
		return acl.SupplierReference{}, shared.NewDomainError("NOT_FOUND", "supplier is deactivated")
	}
	return toSupplierReference(supplier)
}

// GetSupplierReferences resolves suppliers in batch, skipping missing or
// inactive ones.
func (s *SupplierQueryServiceImpl) GetSupplierReferences(ctx context.Context, supplierIDs []uuid.UUID) (map[uuid.UUID]acl.SupplierReference, error) {
	suppliers, err := s.supplierRepo.FindByIDs(ctx, supplierIDs)
	if err != nil {
		return nil, err
	}
	refs := make(map[uuid.UUID]acl.SupplierReference, len(suppliers))
	for _, supplier := range suppliers {
		ref, err := toSupplierReference(supplier)
		if err != nil {
			continue
		}
		refs[supplier.ID] = ref
	}
	return refs, nil
}

func toSupplierReference(s *partner.Supplier) (acl.SupplierReference, error) {
	return acl.NewSupplierReferenceFromUUID(s.ID, s.Name, s.Code, s.Currency, s.Settlement)
}

var _ acl.SupplierQueryService = (*SupplierQueryServiceImpl)(nil)
