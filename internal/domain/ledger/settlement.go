package ledger

import (
	"fmt"
	"time"

	"github.com/bizconsole/ledger/internal/domain/shared"
)

// SettlementType is the supplier-level policy governing how a due date is
// derived from a purchase date.
type SettlementType string

const (
	SettlementImmediate SettlementType = "immediate" // due on the purchase date
	SettlementMonthly   SettlementType = "monthly"   // due on a fixed day of the following month
	SettlementFlexible  SettlementType = "flexible"  // no fixed due date
)

// IsValid checks if the settlement type is a known value
func (t SettlementType) IsValid() bool {
	switch t {
	case SettlementImmediate, SettlementMonthly, SettlementFlexible:
		return true
	}
	return false
}

// String returns the string representation
func (t SettlementType) String() string {
	return string(t)
}

// SettlementTerms is the value object the ledger reads from the supplier
// catalog. Day is meaningful only for monthly settlement.
type SettlementTerms struct {
	Type SettlementType `json:"type"`
	Day  int            `json:"day"`
}

// NewSettlementTerms validates and builds settlement terms
func NewSettlementTerms(settlementType SettlementType, day int) (SettlementTerms, error) {
	if !settlementType.IsValid() {
		return SettlementTerms{}, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("unknown settlement type %q", settlementType))
	}
	if settlementType == SettlementMonthly && (day < 1 || day > 31) {
		return SettlementTerms{}, shared.NewDomainError("VALIDATION_ERROR", "settlement day must be between 1 and 31 for monthly settlement")
	}
	return SettlementTerms{Type: settlementType, Day: day}, nil
}

// ComputeDueDate derives the payment due date from settlement terms and a
// reference date (the purchase date). It is a pure function:
//
//   - immediate: due on the reference date
//   - monthly:   due on the settlement day of the month following the
//     reference month, clamped to that month's last day
//   - flexible:  nil, meaning no due date; flexible payables are never overdue
func ComputeDueDate(terms SettlementTerms, referenceDate time.Time) *time.Time {
	switch terms.Type {
	case SettlementImmediate:
		due := startOfDay(referenceDate)
		return &due
	case SettlementMonthly:
		year, month, _ := referenceDate.Date()
		// day 0 of month+2 is the last day of month+1
		lastDay := time.Date(year, month+2, 0, 0, 0, 0, 0, referenceDate.Location()).Day()
		day := terms.Day
		if day > lastDay {
			day = lastDay
		}
		due := time.Date(year, month+1, day, 0, 0, 0, 0, referenceDate.Location())
		return &due
	default:
		return nil
	}
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// BucketingPolicy controls how purchases group into payable buckets for
// monthly and flexible suppliers. Immediate suppliers always bucket by day so
// every purchase date settles on its own.
type BucketingPolicy string

const (
	BucketMonthly   BucketingPolicy = "monthly"    // one payable per calendar month
	BucketHalfMonth BucketingPolicy = "half_month" // one payable per half month (1-15, 16-end)
)

// IsValid checks if the bucketing policy is a known value
func (p BucketingPolicy) IsValid() bool {
	return p == BucketMonthly || p == BucketHalfMonth
}

// PeriodKey computes the settlement-period bucket for a purchase. Purchases
// with the same (supplier, base, period key) accumulate into one payable.
func PeriodKey(terms SettlementTerms, policy BucketingPolicy, purchaseDate time.Time) string {
	if terms.Type == SettlementImmediate {
		return purchaseDate.Format("2006-01-02")
	}
	if policy == BucketHalfMonth {
		half := "H1"
		if purchaseDate.Day() > 15 {
			half = "H2"
		}
		return purchaseDate.Format("2006-01") + "-" + half
	}
	return purchaseDate.Format("2006-01")
}
