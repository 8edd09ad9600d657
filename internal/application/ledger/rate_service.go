package ledger

import (
	"context"
	"time"

	"github.com/bizconsole/ledger/internal/domain/ledger"
	"github.com/bizconsole/ledger/internal/domain/shared"
	"github.com/bizconsole/ledger/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RateService maintains the CNY exchange-rate table used by reporting
type RateService struct {
	rateRepo ledger.ExchangeRateRepository
	logger   *zap.Logger
}

// NewRateService creates a new RateService
func NewRateService(rateRepo ledger.ExchangeRateRepository, logger *zap.Logger) *RateService {
	return &RateService{rateRepo: rateRepo, logger: logger}
}

// ExchangeRateResponse represents one exchange rate in API responses
type ExchangeRateResponse struct {
	Currency  string          `json:"currency"`
	RateToCNY decimal.Decimal `json:"rate_to_cny"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// UpsertRateRequest sets one currency's CNY rate
type UpsertRateRequest struct {
	Currency  string          `json:"currency" binding:"required,ledger_currency"`
	RateToCNY decimal.Decimal `json:"rate_to_cny" binding:"required"`
}

// ListRates returns the current rate table
func (s *RateService) ListRates(ctx context.Context) ([]ExchangeRateResponse, error) {
	table, err := s.rateRepo.GetRateTable(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ExchangeRateResponse, 0)
	for _, currency := range []valueobject.Currency{valueobject.CNY, valueobject.LAK, valueobject.THB, valueobject.USD} {
		rate, ok := table.Rate(currency)
		if !ok {
			continue
		}
		row := ExchangeRateResponse{Currency: currency.String(), RateToCNY: rate}
		if r, found := table.Row(currency); found {
			row.UpdatedAt = r.UpdatedAt
		}
		out = append(out, row)
	}
	return out, nil
}

// UpsertRate creates or replaces one currency's rate. CNY itself is fixed at
// 1 and cannot be edited.
func (s *RateService) UpsertRate(ctx context.Context, req UpsertRateRequest) error {
	currency := valueobject.Currency(req.Currency)
	if !currency.IsValid() {
		return shared.NewDomainError("VALIDATION_ERROR", "unsupported currency")
	}
	if currency == valueobject.CNY {
		return shared.NewDomainError("VALIDATION_ERROR", "the CNY rate is fixed")
	}
	if !req.RateToCNY.IsPositive() {
		return shared.NewDomainError("VALIDATION_ERROR", "rate must be positive")
	}

	err := s.rateRepo.UpsertRate(ctx, valueobject.ExchangeRate{
		Currency:  currency,
		RateToCNY: req.RateToCNY,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	s.logger.Info("exchange rate updated",
		zap.String("currency", req.Currency),
		zap.String("rate_to_cny", req.RateToCNY.String()),
	)
	return nil
}

// DeleteRate removes a currency's rate; reporting then shows that currency
// native-only.
func (s *RateService) DeleteRate(ctx context.Context, currency string) error {
	c := valueobject.Currency(currency)
	if !c.IsValid() {
		return shared.NewDomainError("VALIDATION_ERROR", "unsupported currency")
	}
	if c == valueobject.CNY {
		return shared.NewDomainError("VALIDATION_ERROR", "the CNY rate is fixed")
	}
	if err := s.rateRepo.DeleteRate(ctx, c); err != nil {
		return err
	}
	s.logger.Info("exchange rate removed", zap.String("currency", currency))
	return nil
}
