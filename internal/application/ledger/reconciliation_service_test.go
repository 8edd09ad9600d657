package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/bizconsole/ledger/internal/domain/ledger"
	"github.com/bizconsole/ledger/internal/domain/ledger/acl"
	"github.com/bizconsole/ledger/internal/domain/shared"
	"github.com/bizconsole/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func supplierRef(t *testing.T, id uuid.UUID, settlementType ledger.SettlementType, day int) acl.SupplierReference {
	t.Helper()
	terms, err := ledger.NewSettlementTerms(settlementType, day)
	require.NoError(t, err)
	ref, err := acl.NewSupplierReferenceFromUUID(id, "Vientiane Trading", "SUP-001", valueobject.LAK, terms)
	require.NoError(t, err)
	return ref
}

func newServiceForTest(payableRepo *MockPayableRepository, supplierQuery *MockSupplierQueryService, opts ...ReconciliationServiceOption) *ReconciliationService {
	scope := NewNoOpTransactionScope(payableRepo)
	return NewReconciliationService(scope, supplierQuery, zap.NewNop(), opts...)
}

func existingPayable(t *testing.T, supplierID uuid.UUID, total string) *ledger.PayableRecord {
	t.Helper()
	p, err := ledger.NewPayableRecord(supplierID, uuid.New(), valueobject.LAK, "2026-03", nil)
	require.NoError(t, err)
	amount, err := valueobject.NewMoneyFromString(total, valueobject.LAK)
	require.NoError(t, err)
	_, err = p.AttachPurchaseLink(uuid.New(), "PO-EXIST", amount)
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func TestBookPurchase(t *testing.T) {
	supplierID := uuid.New()
	baseID := uuid.New()
	purchaseDate := time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC)

	t.Run("opens a new bucket on first purchase", func(t *testing.T) {
		payableRepo := new(MockPayableRepository)
		supplierQuery := new(MockSupplierQueryService)
		svc := newServiceForTest(payableRepo, supplierQuery)

		supplierQuery.On("GetSupplierReference", mock.Anything, supplierID).
			Return(supplierRef(t, supplierID, ledger.SettlementMonthly, 15), nil)
		payableRepo.On("FindBucketForUpdate", mock.Anything, supplierID, baseID, valueobject.LAK, "2026-03").
			Return(nil, shared.NewDomainError("NOT_FOUND", "no bucket"))
		payableRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.PayableRecord")).Return(nil)
		payableRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*ledger.PayableRecord"), mock.AnythingOfType("int")).Return(nil)

		resp, err := svc.BookPurchase(context.Background(), BookPurchaseRequest{
			PurchaseEntryID: uuid.New(),
			SupplierID:      supplierID,
			BaseID:          baseID,
			OrderNumber:     "PO-500",
			Amount:          decimal.NewFromInt(150000),
			PurchaseDate:    purchaseDate,
		})

		require.NoError(t, err)
		assert.Equal(t, "2026-03", resp.PeriodKey)
		assert.Equal(t, "pending", resp.Status)
		assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(150000)))
		require.NotNil(t, resp.DueDate)
		assert.Equal(t, time.Date(2026, time.April, 15, 0, 0, 0, 0, time.UTC), *resp.DueDate)
		payableRepo.AssertExpectations(t)
	})

	t.Run("accumulates into an existing bucket", func(t *testing.T) {
		payableRepo := new(MockPayableRepository)
		supplierQuery := new(MockSupplierQueryService)
		svc := newServiceForTest(payableRepo, supplierQuery)

		payable := existingPayable(t, supplierID, "100000")
		supplierQuery.On("GetSupplierReference", mock.Anything, supplierID).
			Return(supplierRef(t, supplierID, ledger.SettlementMonthly, 15), nil)
		payableRepo.On("FindBucketForUpdate", mock.Anything, supplierID, baseID, valueobject.LAK, "2026-03").
			Return(payable, nil)
		payableRepo.On("SaveWithLock", mock.Anything, payable, mock.AnythingOfType("int")).Return(nil)

		resp, err := svc.BookPurchase(context.Background(), BookPurchaseRequest{
			PurchaseEntryID: uuid.New(),
			SupplierID:      supplierID,
			BaseID:          baseID,
			Amount:          decimal.NewFromInt(50000),
			PurchaseDate:    purchaseDate,
		})

		require.NoError(t, err)
		assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(150000)))
		payableRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("lost insert race retries onto the winner's bucket", func(t *testing.T) {
		payableRepo := new(MockPayableRepository)
		supplierQuery := new(MockSupplierQueryService)
		cfg := DefaultReconciliationConfig()
		cfg.RetryBackoff = time.Millisecond
		svc := newServiceForTest(payableRepo, supplierQuery, WithReconciliationConfig(cfg))

		winner := existingPayable(t, supplierID, "100000")
		supplierQuery.On("GetSupplierReference", mock.Anything, supplierID).
			Return(supplierRef(t, supplierID, ledger.SettlementMonthly, 15), nil)
		payableRepo.On("FindBucketForUpdate", mock.Anything, supplierID, baseID, valueobject.LAK, "2026-03").
			Return(nil, shared.NewDomainError("NOT_FOUND", "no bucket")).Once()
		payableRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.PayableRecord")).
			Return(shared.NewDomainError("CONCURRENCY_CONFLICT", "the payable bucket was created by another transaction")).Once()
		payableRepo.On("FindBucketForUpdate", mock.Anything, supplierID, baseID, valueobject.LAK, "2026-03").
			Return(winner, nil).Once()
		payableRepo.On("SaveWithLock", mock.Anything, winner, mock.AnythingOfType("int")).Return(nil).Once()

		resp, err := svc.BookPurchase(context.Background(), BookPurchaseRequest{
			PurchaseEntryID: uuid.New(),
			SupplierID:      supplierID,
			BaseID:          baseID,
			OrderNumber:     "PO-501",
			Amount:          decimal.NewFromInt(50000),
			PurchaseDate:    purchaseDate,
		})

		require.NoError(t, err)
		assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(150000)))
		payableRepo.AssertNumberOfCalls(t, "FindBucketForUpdate", 2)
		payableRepo.AssertExpectations(t)
	})

	t.Run("unknown supplier fails", func(t *testing.T) {
		payableRepo := new(MockPayableRepository)
		supplierQuery := new(MockSupplierQueryService)
		svc := newServiceForTest(payableRepo, supplierQuery)

		supplierQuery.On("GetSupplierReference", mock.Anything, supplierID).
			Return(acl.SupplierReference{}, shared.NewDomainError("NOT_FOUND", "supplier not found"))

		_, err := svc.BookPurchase(context.Background(), BookPurchaseRequest{
			PurchaseEntryID: uuid.New(),
			SupplierID:      supplierID,
			BaseID:          baseID,
			Amount:          decimal.NewFromInt(1000),
			PurchaseDate:    purchaseDate,
		})

		require.Error(t, err)
		assertCode(t, err, "NOT_FOUND")
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		payableRepo := new(MockPayableRepository)
		supplierQuery := new(MockSupplierQueryService)
		svc := newServiceForTest(payableRepo, supplierQuery)

		supplierQuery.On("GetSupplierReference", mock.Anything, supplierID).
			Return(supplierRef(t, supplierID, ledger.SettlementImmediate, 0), nil)

		_, err := svc.BookPurchase(context.Background(), BookPurchaseRequest{
			PurchaseEntryID: uuid.New(),
			SupplierID:      supplierID,
			BaseID:          baseID,
			Amount:          decimal.Zero,
			PurchaseDate:    purchaseDate,
		})

		require.Error(t, err)
		assertCode(t, err, "VALIDATION_ERROR")
	})

	t.Run("amount finer than the minor unit rejected", func(t *testing.T) {
		payableRepo := new(MockPayableRepository)
		supplierQuery := new(MockSupplierQueryService)
		svc := newServiceForTest(payableRepo, supplierQuery)

		supplierQuery.On("GetSupplierReference", mock.Anything, supplierID).
			Return(supplierRef(t, supplierID, ledger.SettlementMonthly, 15), nil)

		_, err := svc.BookPurchase(context.Background(), BookPurchaseRequest{
			PurchaseEntryID: uuid.New(),
			SupplierID:      supplierID,
			BaseID:          baseID,
			Amount:          decimal.RequireFromString("1000.005"),
			PurchaseDate:    purchaseDate,
		})

		require.Error(t, err)
		assertCode(t, err, "VALIDATION_ERROR")
		payableRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		payableRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRecordPayment(t *testing.T) {
	supplierID := uuid.New()

	t.Run("applies payment under lock", func(t *testing.T) {
		payableRepo := new(MockPayableRepository)
		supplierQuery := new(MockSupplierQueryService)
		svc := newServiceForTest(payableRepo, supplierQuery)

		payable := existingPayable(t, supplierID, "100000")
		payableRepo.On("FindByIDForUpdate", mock.Anything, payable.ID).Return(payable, nil)
		payableRepo.On("SaveWithLock", mock.Anything, payable, mock.AnythingOfType("int")).Return(nil)

		resp, err := svc.RecordPayment(context.Background(), RecordPaymentRequest{
			PayableID:   payable.ID,
			Amount:      decimal.NewFromInt(40000),
			PaymentDate: time.Now(),
			Method:      "bank_transfer",
		}, "ops")

		require.NoError(t, err)
		assert.Equal(t, "partial", resp.Status)
		assert.True(t, resp.RemainingAmount.Equal(decimal.NewFromInt(60000)))
	})

	t.Run("overpayment surfaces the domain error", func(t *testing.T) {
		payableRepo := new(MockPayableRepository)
		supplierQuery := new(MockSupplierQueryService)
		svc := newServiceForTest(payableRepo, supplierQuery)

		payable := existingPayable(t, supplierID, "100000")
		payableRepo.On("FindByIDForUpdate", mock.Anything, payable.ID).Return(payable, nil)

		_, err := svc.RecordPayment(context.Background(), RecordPaymentRequest{
			PayableID:   payable.ID,
			Amount:      decimal.NewFromInt(200000),
			PaymentDate: time.Now(),
			Method:      "cash",
		}, "ops")

		require.Error(t, err)
		assertCode(t, err, "OVERPAYMENT")
		payableRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("payment finer than the minor unit rejected", func(t *testing.T) {
		payableRepo := new(MockPayableRepository)
		supplierQuery := new(MockSupplierQueryService)
		svc := newServiceForTest(payableRepo, supplierQuery)

		payable := existingPayable(t, supplierID, "100000")
		payableRepo.On("FindByIDForUpdate", mock.Anything, payable.ID).Return(payable, nil)

		_, err := svc.RecordPayment(context.Background(), RecordPaymentRequest{
			PayableID:   payable.ID,
			Amount:      decimal.RequireFromString("33.335"),
			PaymentDate: time.Now(),
			Method:      "cash",
		}, "ops")

		require.Error(t, err)
		assertCode(t, err, "VALIDATION_ERROR")
		assert.True(t, payable.PaidAmount.IsZero())
		payableRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("payment date too far in the future rejected", func(t *testing.T) {
		payableRepo := new(MockPayableRepository)
		supplierQuery := new(MockSupplierQueryService)
		svc := newServiceForTest(payableRepo, supplierQuery)

		_, err := svc.RecordPayment(context.Background(), RecordPaymentRequest{
			PayableID:   uuid.New(),
			Amount:      decimal.NewFromInt(1000),
			PaymentDate: time.Now().Add(72 * time.Hour),
			Method:      "cash",
		}, "ops")

		require.Error(t, err)
		assertCode(t, err, "VALIDATION_ERROR")
	})

	t.Run("repeated write conflicts become STORE_CONFLICT", func(t *testing.T) {
		payableRepo := new(MockPayableRepository)
		supplierQuery := new(MockSupplierQueryService)
		cfg := DefaultReconciliationConfig()
		cfg.MaxRetries = 2
		cfg.RetryBackoff = time.Millisecond
		svc := newServiceForTest(payableRepo, supplierQuery, WithReconciliationConfig(cfg))

		payable := existingPayable(t, supplierID, "100000")
		payableRepo.On("FindByIDForUpdate", mock.Anything, payable.ID).Return(payable, nil)
		payableRepo.On("SaveWithLock", mock.Anything, payable, mock.AnythingOfType("int")).
			Return(shared.NewDomainError("CONCURRENCY_CONFLICT", "version mismatch"))

		_, err := svc.RecordPayment(context.Background(), RecordPaymentRequest{
			PayableID:   payable.ID,
			Amount:      decimal.NewFromInt(1000),
			PaymentDate: time.Now(),
			Method:      "cash",
		}, "ops")

		require.Error(t, err)
		assertCode(t, err, "STORE_CONFLICT")
		payableRepo.AssertNumberOfCalls(t, "SaveWithLock", 3)
	})
}

func TestReversePaymentService(t *testing.T) {
	supplierID := uuid.New()

	t.Run("reversal restores remaining", func(t *testing.T) {
		payableRepo := new(MockPayableRepository)
		supplierQuery := new(MockSupplierQueryService)
		svc := newServiceForTest(payableRepo, supplierQuery)

		payable := existingPayable(t, supplierID, "100000")
		amount, _ := valueobject.NewMoneyFromString("100000", valueobject.LAK)
		payment, err := payable.ApplyPayment(amount, time.Now(), ledger.PaymentMethodCash, "", "", "ops")
		require.NoError(t, err)

		payableRepo.On("FindByIDForUpdate", mock.Anything, payable.ID).Return(payable, nil)
		payableRepo.On("SaveWithLock", mock.Anything, payable, mock.AnythingOfType("int")).Return(nil)

		resp, err := svc.ReversePayment(context.Background(), payable.ID, payment.ID, "ops", "wrong payable")
		require.NoError(t, err)
		assert.Equal(t, "pending", resp.Status)
		assert.True(t, resp.RemainingAmount.Equal(decimal.NewFromInt(100000)))
	})
}

func TestDeletePayableService(t *testing.T) {
	supplierID := uuid.New()

	t.Run("deletes untouched payable", func(t *testing.T) {
		payableRepo := new(MockPayableRepository)
		supplierQuery := new(MockSupplierQueryService)
		svc := newServiceForTest(payableRepo, supplierQuery)

		payable := existingPayable(t, supplierID, "5000")
		payableRepo.On("FindByIDForUpdate", mock.Anything, payable.ID).Return(payable, nil)
		payableRepo.On("Delete", mock.Anything, payable.ID).Return(nil)

		require.NoError(t, svc.DeletePayable(context.Background(), payable.ID))
		payableRepo.AssertExpectations(t)
	})

	t.Run("refuses when payments exist", func(t *testing.T) {
		payableRepo := new(MockPayableRepository)
		supplierQuery := new(MockSupplierQueryService)
		svc := newServiceForTest(payableRepo, supplierQuery)

		payable := existingPayable(t, supplierID, "5000")
		amount, _ := valueobject.NewMoneyFromString("5000", valueobject.LAK)
		_, err := payable.ApplyPayment(amount, time.Now(), ledger.PaymentMethodCash, "", "", "ops")
		require.NoError(t, err)

		payableRepo.On("FindByIDForUpdate", mock.Anything, payable.ID).Return(payable, nil)

		err = svc.DeletePayable(context.Background(), payable.ID)
		require.Error(t, err)
		assertCode(t, err, "HAS_PAYMENTS")
		payableRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestOverrideStatusService(t *testing.T) {
	supplierID := uuid.New()

	t.Run("override persists and reports divergence", func(t *testing.T) {
		payableRepo := new(MockPayableRepository)
		supplierQuery := new(MockSupplierQueryService)
		svc := newServiceForTest(payableRepo, supplierQuery)

		payable := existingPayable(t, supplierID, "5000")
		payableRepo.On("FindByIDForUpdate", mock.Anything, payable.ID).Return(payable, nil)
		payableRepo.On("SaveWithLock", mock.Anything, payable, mock.AnythingOfType("int")).Return(nil)

		resp, err := svc.OverrideStatus(context.Background(), payable.ID, "paid", "admin")
		require.NoError(t, err)
		assert.Equal(t, "paid", resp.Status)
		assert.True(t, resp.StatusOverride)
	})
}

func TestRelinkPurchase(t *testing.T) {
	fromSupplier := uuid.New()
	toSupplier := uuid.New()
	purchaseDate := time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC)

	t.Run("moves a link to the correct supplier bucket", func(t *testing.T) {
		payableRepo := new(MockPayableRepository)
		supplierQuery := new(MockSupplierQueryService)
		svc := newServiceForTest(payableRepo, supplierQuery)

		source, err := ledger.NewPayableRecord(fromSupplier, uuid.New(), valueobject.LAK, "2026-03", nil)
		require.NoError(t, err)
		entryID := uuid.New()
		amount, _ := valueobject.NewMoneyFromString("70000", valueobject.LAK)
		_, err = source.AttachPurchaseLink(entryID, "PO-700", amount)
		require.NoError(t, err)

		supplierQuery.On("GetSupplierReference", mock.Anything, toSupplier).
			Return(supplierRef(t, toSupplier, ledger.SettlementMonthly, 10), nil)
		payableRepo.On("FindByIDForUpdate", mock.Anything, source.ID).Return(source, nil)
		payableRepo.On("FindBucketForUpdate", mock.Anything, toSupplier, source.BaseID, valueobject.LAK, "2026-03").
			Return(nil, shared.NewDomainError("NOT_FOUND", "no bucket"))
		payableRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.PayableRecord")).Return(nil)
		payableRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*ledger.PayableRecord"), mock.AnythingOfType("int")).Return(nil)

		resp, err := svc.RelinkPurchase(context.Background(), RelinkPurchaseRequest{
			PurchaseEntryID: entryID,
			FromPayableID:   source.ID,
			ToSupplierID:    toSupplier,
			PurchaseDate:    purchaseDate,
		})

		require.NoError(t, err)
		assert.Equal(t, toSupplier, resp.SupplierID)
		assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(70000)))
		assert.True(t, source.TotalAmount.IsZero())
	})

	t.Run("refuses to strand paid amounts", func(t *testing.T) {
		payableRepo := new(MockPayableRepository)
		supplierQuery := new(MockSupplierQueryService)
		svc := newServiceForTest(payableRepo, supplierQuery)

		source, err := ledger.NewPayableRecord(fromSupplier, uuid.New(), valueobject.LAK, "2026-03", nil)
		require.NoError(t, err)
		entryID := uuid.New()
		amount, _ := valueobject.NewMoneyFromString("70000", valueobject.LAK)
		_, err = source.AttachPurchaseLink(entryID, "PO-701", amount)
		require.NoError(t, err)
		_, err = source.ApplyPayment(amount, time.Now(), ledger.PaymentMethodCash, "", "", "ops")
		require.NoError(t, err)

		supplierQuery.On("GetSupplierReference", mock.Anything, toSupplier).
			Return(supplierRef(t, toSupplier, ledger.SettlementMonthly, 10), nil)
		payableRepo.On("FindByIDForUpdate", mock.Anything, source.ID).Return(source, nil)

		_, err = svc.RelinkPurchase(context.Background(), RelinkPurchaseRequest{
			PurchaseEntryID: entryID,
			FromPayableID:   source.ID,
			ToSupplierID:    toSupplier,
			PurchaseDate:    purchaseDate,
		})

		require.Error(t, err)
		assertCode(t, err, "INVALID_STATE")
	})
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, code, de.Code)
}
