package valueobject

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is one row of the rate table supplied by the external rate
// collaborator: 1 unit of Currency is worth RateToCNY yuan.
type ExchangeRate struct {
	Currency  Currency        `json:"currency"`
	RateToCNY decimal.Decimal `json:"rate_to_cny"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// RateTable holds the current conversion rates to CNY. It is a read-only
// snapshot; a missing currency means conversion is unavailable for it.
type RateTable struct {
	rates map[Currency]ExchangeRate
}

// NewRateTable builds a rate table from collaborator rows. Rows with a
// non-positive rate are rejected.
func NewRateTable(rows []ExchangeRate) (RateTable, error) {
	rates := make(map[Currency]ExchangeRate, len(rows))
	for _, row := range rows {
		if !row.Currency.IsValid() {
			return RateTable{}, fmt.Errorf("unsupported currency in rate table: %q", row.Currency)
		}
		if !row.RateToCNY.IsPositive() {
			return RateTable{}, fmt.Errorf("rate for %s must be positive, got %s", row.Currency, row.RateToCNY)
		}
		rates[row.Currency] = row
	}
	return RateTable{rates: rates}, nil
}

// Rate returns the CNY rate for a currency and whether one is known.
// CNY always converts at 1.
func (t RateTable) Rate(c Currency) (decimal.Decimal, bool) {
	if c == CNY {
		return decimal.NewFromInt(1), true
	}
	row, ok := t.rates[c]
	if !ok {
		return decimal.Zero, false
	}
	return row.RateToCNY, true
}

// Row returns the full rate row for a currency. CNY yields a synthetic row
// at rate 1.
func (t RateTable) Row(c Currency) (ExchangeRate, bool) {
	if c == CNY {
		return ExchangeRate{Currency: CNY, RateToCNY: decimal.NewFromInt(1)}, true
	}
	row, ok := t.rates[c]
	return row, ok
}

// HasRate reports whether a conversion rate is known for the currency
func (t RateTable) HasRate(c Currency) bool {
	_, ok := t.Rate(c)
	return ok
}

// ConvertToCNY converts m to CNY with banker's rounding to minor units.
// This is the only sanctioned cross-currency operation; it is used by
// reporting, never by invariant-checking code paths.
func (t RateTable) ConvertToCNY(m Money) (Money, error) {
	rate, ok := t.Rate(m.Currency())
	if !ok {
		return Money{}, fmt.Errorf("no CNY rate available for %s", m.Currency())
	}
	converted := m.Amount().Mul(rate).RoundBank(MinorUnitPlaces)
	return NewMoneyCNY(converted), nil
}
