package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/bizconsole/ledger/internal/domain/shared"
	"github.com/bizconsole/ledger/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestListRates(t *testing.T) {
	updated := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	table, err := valueobject.NewRateTable([]valueobject.ExchangeRate{
		{Currency: valueobject.LAK, RateToCNY: decimal.RequireFromString("0.00033"), UpdatedAt: updated},
		{Currency: valueobject.USD, RateToCNY: decimal.RequireFromString("7.25"), UpdatedAt: updated},
	})
	require.NoError(t, err)

	rateRepo := new(MockExchangeRateRepository)
	rateRepo.On("GetRateTable", mock.Anything).Return(table, nil)
	service := NewRateService(rateRepo, zap.NewNop())

	rows, err := service.ListRates(context.Background())

	require.NoError(t, err)
	// CNY is synthetic at 1; THB has no stored rate and is omitted.
	require.Len(t, rows, 3)
	assert.Equal(t, "CNY", rows[0].Currency)
	assert.True(t, rows[0].RateToCNY.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, "LAK", rows[1].Currency)
	assert.Equal(t, updated, rows[1].UpdatedAt)
	assert.Equal(t, "USD", rows[2].Currency)
}

func TestUpsertRate(t *testing.T) {
	tests := []struct {
		name    string
		req     UpsertRateRequest
		saves   bool
		errCode string
	}{
		{
			name:  "stores a positive LAK rate",
			req:   UpsertRateRequest{Currency: "LAK", RateToCNY: decimal.RequireFromString("0.00034")},
			saves: true,
		},
		{
			name:    "rejects editing the CNY rate",
			req:     UpsertRateRequest{Currency: "CNY", RateToCNY: decimal.NewFromInt(2)},
			errCode: "VALIDATION_ERROR",
		},
		{
			name:    "rejects an unsupported currency",
			req:     UpsertRateRequest{Currency: "EUR", RateToCNY: decimal.NewFromInt(8)},
			errCode: "VALIDATION_ERROR",
		},
		{
			name:    "rejects a non-positive rate",
			req:     UpsertRateRequest{Currency: "THB", RateToCNY: decimal.Zero},
			errCode: "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rateRepo := new(MockExchangeRateRepository)
			if tt.saves {
				rateRepo.On("UpsertRate", mock.Anything, mock.MatchedBy(func(r valueobject.ExchangeRate) bool {
					return r.Currency == valueobject.Currency(tt.req.Currency) && r.RateToCNY.Equal(tt.req.RateToCNY)
				})).Return(nil)
			}
			service := NewRateService(rateRepo, zap.NewNop())

			err := service.UpsertRate(context.Background(), tt.req)

			if tt.errCode != "" {
				var domainErr *shared.DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, tt.errCode, domainErr.Code)
			} else {
				require.NoError(t, err)
			}
			rateRepo.AssertExpectations(t)
		})
	}
}

func TestDeleteRate(t *testing.T) {
	t.Run("removes a stored rate", func(t *testing.T) {
		rateRepo := new(MockExchangeRateRepository)
		rateRepo.On("DeleteRate", mock.Anything, valueobject.THB).Return(nil)
		service := NewRateService(rateRepo, zap.NewNop())

		require.NoError(t, service.DeleteRate(context.Background(), "THB"))
		rateRepo.AssertExpectations(t)
	})

	t.Run("refuses to remove the CNY rate", func(t *testing.T) {
		rateRepo := new(MockExchangeRateRepository)
		service := NewRateService(rateRepo, zap.NewNop())

		err := service.DeleteRate(context.Background(), "CNY")

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
		rateRepo.AssertNotCalled(t, "DeleteRate", mock.Anything, mock.Anything)
	})
}
