package partner

import (
	"context"

	"github.com/bizconsole/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// SupplierFilter narrows supplier queries
type SupplierFilter struct {
	shared.Filter
	Status *SupplierStatus
	Search string // matches code or name
}

// SupplierRepository is the persistence port for suppliers
type SupplierRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)
	FindByCode(ctx context.Context, code string) (*Supplier, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Supplier, error)
	FindAll(ctx context.Context, filter SupplierFilter) (shared.Paginated[*Supplier], error)
	Save(ctx context.Context, supplier *Supplier) error
	Delete(ctx context.Context, id uuid.UUID) error
}
