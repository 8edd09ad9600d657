package ledger

import (
	"context"
	"time"

	"github.com/bizconsole/ledger/internal/domain/ledger"
	"github.com/bizconsole/ledger/internal/domain/ledger/acl"
	"github.com/bizconsole/ledger/internal/domain/shared"
	"github.com/bizconsole/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockPayableRepository is a mock implementation of ledger.PayableRepository
type MockPayableRepository struct {
	mock.Mock
}

func (m *MockPayableRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.PayableRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.PayableRecord), args.Error(1)
}

func (m *MockPayableRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ledger.PayableRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.PayableRecord), args.Error(1)
}

func (m *MockPayableRepository) FindBucketForUpdate(ctx context.Context, supplierID, baseID uuid.UUID, currency valueobject.Currency, periodKey string) (*ledger.PayableRecord, error) {
	args := m.Called(ctx, supplierID, baseID, currency, periodKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.PayableRecord), args.Error(1)
}

func (m *MockPayableRepository) FindAll(ctx context.Context, filter ledger.PayableFilter) (shared.Paginated[*ledger.PayableRecord], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[*ledger.PayableRecord]), args.Error(1)
}

func (m *MockPayableRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter ledger.PayableFilter) ([]*ledger.PayableRecord, error) {
	args := m.Called(ctx, supplierID, filter)
	return args.Get(0).([]*ledger.PayableRecord), args.Error(1)
}

func (m *MockPayableRepository) FindOverdue(ctx context.Context, asOf time.Time, filter ledger.PayableFilter) ([]*ledger.PayableRecord, error) {
	args := m.Called(ctx, asOf, filter)
	return args.Get(0).([]*ledger.PayableRecord), args.Error(1)
}

func (m *MockPayableRepository) Save(ctx context.Context, payable *ledger.PayableRecord) error {
	args := m.Called(ctx, payable)
	return args.Error(0)
}

func (m *MockPayableRepository) SaveWithLock(ctx context.Context, payable *ledger.PayableRecord, expectedVersion int) error {
	args := m.Called(ctx, payable, expectedVersion)
	return args.Error(0)
}

func (m *MockPayableRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockExchangeRateRepository is a mock implementation of ledger.ExchangeRateRepository
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) GetRateTable(ctx context.Context) (valueobject.RateTable, error) {
	args := m.Called(ctx)
	return args.Get(0).(valueobject.RateTable), args.Error(1)
}

func (m *MockExchangeRateRepository) UpsertRate(ctx context.Context, rate valueobject.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockExchangeRateRepository) DeleteRate(ctx context.Context, currency valueobject.Currency) error {
	args := m.Called(ctx, currency)
	return args.Error(0)
}

// MockSupplierQueryService is a mock implementation of acl.SupplierQueryService
type MockSupplierQueryService struct {
	mock.Mock
}

func (m *MockSupplierQueryService) GetSupplierReference(ctx context.Context, supplierID uuid.UUID) (acl.SupplierReference, error) {
	args := m.Called(ctx, supplierID)
	return args.Get(0).(acl.SupplierReference), args.Error(1)
}

func (m *MockSupplierQueryService) GetSupplierReferences(ctx context.Context, supplierIDs []uuid.UUID) (map[uuid.UUID]acl.SupplierReference, error) {
	args := m.Called(ctx, supplierIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]acl.SupplierReference), args.Error(1)
}
