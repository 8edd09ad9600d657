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

func rateTable(t *testing.T, rows ...valueobject.ExchangeRate) valueobject.RateTable {
	t.Helper()
	table, err := valueobject.NewRateTable(rows)
	require.NoError(t, err)
	return table
}

func paginatedOf(items ...*ledger.PayableRecord) shared.Paginated[*ledger.PayableRecord] {
	return shared.NewPaginated(items, int64(len(items)), 1, 20)
}

func payableWith(t *testing.T, supplierID uuid.UUID, currency valueobject.Currency, total, paid string) *ledger.PayableRecord {
	t.Helper()
	p, err := ledger.NewPayableRecord(supplierID, uuid.New(), currency, "2026-03", nil)
	require.NoError(t, err)
	totalMoney, err := valueobject.NewMoneyFromString(total, currency)
	require.NoError(t, err)
	_, err = p.AttachPurchaseLink(uuid.New(), "PO-R", totalMoney)
	require.NoError(t, err)
	if paid != "0" {
		paidMoney, err := valueobject.NewMoneyFromString(paid, currency)
		require.NoError(t, err)
		_, err = p.ApplyPayment(paidMoney, time.Now(), ledger.PaymentMethodCash, "", "", "ops")
		require.NoError(t, err)
	}
	return p
}

func TestGetSummary(t *testing.T) {
	supplierID := uuid.New()

	t.Run("per-currency buckets with CNY totals", func(t *testing.T) {
		payableRepo := new(MockPayableRepository)
		rateRepo := new(MockExchangeRateRepository)
		supplierQuery := new(MockSupplierQueryService)
		svc := NewReportingService(payableRepo, rateRepo, supplierQuery, zap.NewNop())

		lakRate := decimal.RequireFromString("0.00033")
		thbRate := decimal.RequireFromString("0.2")
		payableRepo.On("FindAll", mock.Anything, mock.AnythingOfType("ledger.PayableFilter")).
			Return(paginatedOf(
				payableWith(t, supplierID, valueobject.LAK, "1000000", "400000"),
				payableWith(t, supplierID, valueobject.LAK, "500000", "0"),
				payableWith(t, supplierID, valueobject.THB, "2000", "2000"),
			), nil)
		rateRepo.On("GetRateTable", mock.Anything).
			Return(rateTable(t,
				valueobject.ExchangeRate{Currency: valueobject.LAK, RateToCNY: lakRate},
				valueobject.ExchangeRate{Currency: valueobject.THB, RateToCNY: thbRate},
			), nil)

		summary, err := svc.GetSummary(context.Background(), PayableListFilter{})
		require.NoError(t, err)

		require.Len(t, summary.Buckets, 2)
		assert.Equal(t, "LAK", summary.Buckets[0].Currency)
		assert.True(t, summary.Buckets[0].RemainingAmount.Equal(decimal.NewFromInt(1100000)))
		assert.Equal(t, 2, summary.Buckets[0].PayableCount)
		require.NotNil(t, summary.Buckets[0].RemainingCNY)
		// 1100000 * 0.00033 = 363.00
		assert.True(t, summary.Buckets[0].RemainingCNY.Equal(decimal.RequireFromString("363")))

		assert.Equal(t, "THB", summary.Buckets[1].Currency)
		assert.True(t, summary.Buckets[1].RemainingAmount.IsZero())

		assert.Equal(t, 1, summary.PendingCount)
		assert.Equal(t, 1, summary.PartialCount)
		assert.Equal(t, 1, summary.PaidCount)
		require.NotNil(t, summary.TotalCNY)
		assert.True(t, summary.TotalCNY.Equal(decimal.RequireFromString("363")))
		assert.Empty(t, summary.MissingRates)
	})

	t.Run("missing rate leaves bucket native-only", func(t *testing.T) {
		payableRepo := new(MockPayableRepository)
		rateRepo := new(MockExchangeRateRepository)
		supplierQuery := new(MockSupplierQueryService)
		svc := NewReportingService(payableRepo, rateRepo, supplierQuery, zap.NewNop())

		payableRepo.On("FindAll", mock.Anything, mock.AnythingOfType("ledger.PayableFilter")).
			Return(paginatedOf(
				payableWith(t, supplierID, valueobject.USD, "900", "0"),
			), nil)
		rateRepo.On("GetRateTable", mock.Anything).Return(rateTable(t), nil)

		summary, err := svc.GetSummary(context.Background(), PayableListFilter{})
		require.NoError(t, err)

		require.Len(t, summary.Buckets, 1)
		assert.Nil(t, summary.Buckets[0].RemainingCNY)
		assert.Nil(t, summary.TotalCNY)
		assert.Equal(t, []string{"USD"}, summary.MissingRates)
	})
}

func TestGetBySupplier(t *testing.T) {
	supplierA := uuid.New()
	supplierB := uuid.New()

	t.Run("aggregates buckets across suppliers", func(t *testing.T) {
		payableRepo := new(MockPayableRepository)
		rateRepo := new(MockExchangeRateRepository)
		supplierQuery := new(MockSupplierQueryService)
		svc := NewReportingService(payableRepo, rateRepo, supplierQuery, zap.NewNop())

		payableRepo.On("FindAll", mock.Anything, mock.AnythingOfType("ledger.PayableFilter")).
			Return(paginatedOf(
				payableWith(t, supplierA, valueobject.LAK, "300000", "100000"),
				payableWith(t, supplierA, valueobject.THB, "1000", "0"),
				payableWith(t, supplierB, valueobject.LAK, "50000", "0"),
			), nil)
		rateRepo.On("GetRateTable", mock.Anything).Return(rateTable(t), nil)

		refA := supplierRef(t, supplierA, ledger.SettlementMonthly, 15)
		supplierQuery.On("GetSupplierReferences", mock.Anything, mock.Anything).
			Return(map[uuid.UUID]acl.SupplierReference{supplierA: refA}, nil)

		aggregates, err := svc.GetBySupplier(context.Background(), PayableListFilter{})
		require.NoError(t, err)

		require.Len(t, aggregates, 2)
		assert.Equal(t, supplierA, aggregates[0].SupplierID)
		require.Len(t, aggregates[0].Buckets, 2)
		assert.Equal(t, "LAK", aggregates[0].Buckets[0].Currency)
		assert.True(t, aggregates[0].Buckets[0].RemainingAmount.Equal(decimal.NewFromInt(200000)))
		assert.Equal(t, supplierB, aggregates[1].SupplierID)
		require.Len(t, aggregates[1].Buckets, 1)
	})

	t.Run("supplier filter narrows the scan to that supplier", func(t *testing.T) {
		payableRepo := new(MockPayableRepository)
		rateRepo := new(MockExchangeRateRepository)
		supplierQuery := new(MockSupplierQueryService)
		svc := NewReportingService(payableRepo, rateRepo, supplierQuery, zap.NewNop())

		payableRepo.On("FindBySupplier", mock.Anything, supplierA, mock.AnythingOfType("ledger.PayableFilter")).
			Return([]*ledger.PayableRecord{
				payableWith(t, supplierA, valueobject.LAK, "300000", "100000"),
				payableWith(t, supplierA, valueobject.LAK, "100000", "0"),
			}, nil)
		rateRepo.On("GetRateTable", mock.Anything).Return(rateTable(t), nil)
		supplierQuery.On("GetSupplierReferences", mock.Anything, mock.Anything).
			Return(map[uuid.UUID]acl.SupplierReference{}, nil)

		aggregates, err := svc.GetBySupplier(context.Background(), PayableListFilter{SupplierID: &supplierA})
		require.NoError(t, err)

		require.Len(t, aggregates, 1)
		assert.Equal(t, supplierA, aggregates[0].SupplierID)
		require.Len(t, aggregates[0].Buckets, 1)
		assert.True(t, aggregates[0].Buckets[0].RemainingAmount.Equal(decimal.NewFromInt(300000)))
		payableRepo.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
	})
}

func TestGetTimelineService(t *testing.T) {
	supplierID := uuid.New()
	payableRepo := new(MockPayableRepository)
	rateRepo := new(MockExchangeRateRepository)
	supplierQuery := new(MockSupplierQueryService)
	svc := NewReportingService(payableRepo, rateRepo, supplierQuery, zap.NewNop())

	payable := payableWith(t, supplierID, valueobject.LAK, "100000", "30000")
	payableRepo.On("FindByID", mock.Anything, payable.ID).Return(payable, nil)

	events, err := svc.GetTimeline(context.Background(), payable.ID)
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, "purchase_linked", events[0].Kind)
	assert.Equal(t, "payment", events[1].Kind)
	assert.True(t, events[1].RunningBalance.Equal(decimal.NewFromInt(70000)))
}

func TestListPayablesFilterValidation(t *testing.T) {
	payableRepo := new(MockPayableRepository)
	rateRepo := new(MockExchangeRateRepository)
	supplierQuery := new(MockSupplierQueryService)
	svc := NewReportingService(payableRepo, rateRepo, supplierQuery, zap.NewNop())

	_, err := svc.ListPayables(context.Background(), PayableListFilter{Status: "cancelled"})
	require.Error(t, err)
	assertCode(t, err, "VALIDATION_ERROR")

	_, err = svc.ListPayables(context.Background(), PayableListFilter{Currency: "EUR"})
	require.Error(t, err)
	assertCode(t, err, "VALIDATION_ERROR")
}
