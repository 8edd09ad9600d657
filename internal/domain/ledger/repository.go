package ledger

import (
	"context"
	"time"

	"github.com/bizconsole/ledger/internal/domain/shared"
	"github.com/bizconsole/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// PayableFilter narrows payable queries. Zero values mean "no constraint".
type PayableFilter struct {
	shared.Filter
	SupplierID *uuid.UUID
	BaseID     *uuid.UUID
	Status     *PayableStatus
	Currency   *valueobject.Currency
	PeriodKey  string
	OverdueAt  *time.Time
	FromDate   *time.Time
	ToDate     *time.Time
}

// PayableRepository is the persistence port for payable records. Save and
// SaveWithLock persist the aggregate together with its links and payments.
type PayableRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PayableRecord, error)

	// FindByIDForUpdate loads the aggregate under a row lock. It must be
	// called inside a transaction; concurrent callers for the same payable
	// block until the first transaction finishes.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PayableRecord, error)

	// FindBucketForUpdate locates the payable for one
	// (supplier, base, currency, period) bucket under a row lock, returning
	// NOT_FOUND when the bucket has not been opened yet.
	FindBucketForUpdate(ctx context.Context, supplierID, baseID uuid.UUID, currency valueobject.Currency, periodKey string) (*PayableRecord, error)

	FindAll(ctx context.Context, filter PayableFilter) (shared.Paginated[*PayableRecord], error)
	FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter PayableFilter) ([]*PayableRecord, error)
	FindOverdue(ctx context.Context, asOf time.Time, filter PayableFilter) ([]*PayableRecord, error)

	Save(ctx context.Context, payable *PayableRecord) error

	// SaveWithLock persists with an optimistic version check and returns
	// CONCURRENCY_CONFLICT when another writer got there first.
	SaveWithLock(ctx context.Context, payable *PayableRecord, expectedVersion int) error

	Delete(ctx context.Context, id uuid.UUID) error
}

// ExchangeRateRepository is the persistence port for the CNY rate table
type ExchangeRateRepository interface {
	GetRateTable(ctx context.Context) (valueobject.RateTable, error)
	UpsertRate(ctx context.Context, rate valueobject.ExchangeRate) error
	DeleteRate(ctx context.Context, currency valueobject.Currency) error
}
