package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/bizconsole/ledger/internal/domain/ledger"
	"github.com/bizconsole/ledger/internal/domain/ledger/acl"
	"github.com/bizconsole/ledger/internal/domain/shared"
	"github.com/bizconsole/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReportingService serves the read side of the ledger: listings, summaries,
// per-supplier aggregation and timelines. Aggregation happens per currency;
// conversion into CNY is applied only here, at presentation time, using the
// current rate table. Stored amounts are never converted.
type ReportingService struct {
	payableRepo   ledger.PayableRepository
	rateRepo      ledger.ExchangeRateRepository
	supplierQuery acl.SupplierQueryService
	logger        *zap.Logger
	now           func() time.Time
}

// NewReportingService creates a new ReportingService
func NewReportingService(
	payableRepo ledger.PayableRepository,
	rateRepo ledger.ExchangeRateRepository,
	supplierQuery acl.SupplierQueryService,
	logger *zap.Logger,
) *ReportingService {
	return &ReportingService{
		payableRepo:   payableRepo,
		rateRepo:      rateRepo,
		supplierQuery: supplierQuery,
		logger:        logger,
		now:           time.Now,
	}
}

// GetPayable returns one payable with its links and payments
func (s *ReportingService) GetPayable(ctx context.Context, id uuid.UUID) (*PayableResponse, error) {
	payable, err := s.payableRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toPayableResponse(payable, s.now())
	s.fillSupplierNames(ctx, []*PayableResponse{resp})
	return resp, nil
}

// ListPayables lists payables with filtering and pagination
func (s *ReportingService) ListPayables(ctx context.Context, filter PayableListFilter) (shared.Paginated[*PayableResponse], error) {
	domainFilter, err := toDomainFilter(filter, s.now())
	if err != nil {
		return shared.Paginated[*PayableResponse]{}, err
	}

	page, err := s.payableRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[*PayableResponse]{}, err
	}

	responses := make([]*PayableResponse, len(page.Items))
	for i, p := range page.Items {
		responses[i] = toPayableResponse(p, s.now())
	}
	s.fillSupplierNames(ctx, responses)

	return shared.NewPaginated(responses, page.Total, page.Page, page.PageSize), nil
}

// GetTimeline reconstructs the chronological history of one payable
func (s *ReportingService) GetTimeline(ctx context.Context, id uuid.UUID) ([]TimelineEventResponse, error) {
	payable, err := s.payableRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTimelineResponse(ledger.BuildTimeline(payable)), nil
}

// CurrencyBucket aggregates payable amounts for one currency
type CurrencyBucket struct {
	Currency        string          `json:"currency"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	PayableCount    int             `json:"payable_count"`

	// CNY equivalents are present only when the rate table has a rate for
	// the currency; otherwise the bucket stays native-only.
	RemainingCNY *decimal.Decimal `json:"remaining_cny,omitempty"`
}

// LedgerSummary is the dashboard aggregate across all payables
type LedgerSummary struct {
	Buckets      []CurrencyBucket `json:"buckets"`
	PendingCount int              `json:"pending_count"`
	PartialCount int              `json:"partial_count"`
	PaidCount    int              `json:"paid_count"`
	OverdueCount int              `json:"overdue_count"`
	TotalCNY     *decimal.Decimal `json:"total_remaining_cny,omitempty"`
	MissingRates []string         `json:"missing_rates,omitempty"`
	GeneratedAt  time.Time        `json:"generated_at"`
}

// GetSummary aggregates all payables matching the filter into per-currency
// buckets, with a grand CNY total over the buckets that have a rate.
func (s *ReportingService) GetSummary(ctx context.Context, filter PayableListFilter) (*LedgerSummary, error) {
	domainFilter, err := toDomainFilter(filter, s.now())
	if err != nil {
		return nil, err
	}
	domainFilter.Page = 1
	domainFilter.PageSize = 0 // unpaginated aggregate

	page, err := s.payableRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	rates, err := s.rateRepo.GetRateTable(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	byCurrency := make(map[valueobject.Currency]*CurrencyBucket)
	summary := &LedgerSummary{GeneratedAt: now}

	for _, p := range page.Items {
		b, ok := byCurrency[p.Currency]
		if !ok {
			b = &CurrencyBucket{
				Currency:        p.Currency.String(),
				TotalAmount:     decimal.Zero,
				PaidAmount:      decimal.Zero,
				RemainingAmount: decimal.Zero,
			}
			byCurrency[p.Currency] = b
		}
		b.TotalAmount = b.TotalAmount.Add(p.TotalAmount)
		b.PaidAmount = b.PaidAmount.Add(p.PaidAmount)
		b.RemainingAmount = b.RemainingAmount.Add(p.RemainingAmount)
		b.PayableCount++

		switch p.Status {
		case ledger.PayableStatusPending:
			summary.PendingCount++
		case ledger.PayableStatusPartial:
			summary.PartialCount++
		case ledger.PayableStatusPaid:
			summary.PaidCount++
		}
		if p.IsOverdue(now) {
			summary.OverdueCount++
		}
	}

	totalCNY := decimal.Zero
	allConverted := true
	for currency, b := range byCurrency {
		if !rates.HasRate(currency) {
			summary.MissingRates = append(summary.MissingRates, currency.String())
			allConverted = false
			continue
		}
		remaining, _ := valueobject.NewMoney(b.RemainingAmount, currency)
		converted, err := rates.ConvertToCNY(remaining)
		if err != nil {
			return nil, err
		}
		cny := converted.Amount()
		b.RemainingCNY = &cny
		totalCNY = totalCNY.Add(cny)
	}
	if allConverted && len(byCurrency) > 0 {
		summary.TotalCNY = &totalCNY
	}

	for _, b := range byCurrency {
		summary.Buckets = append(summary.Buckets, *b)
	}
	sort.Slice(summary.Buckets, func(i, j int) bool {
		return summary.Buckets[i].Currency < summary.Buckets[j].Currency
	})
	sort.Strings(summary.MissingRates)

	return summary, nil
}

// SupplierAggregate groups payables for one supplier
type SupplierAggregate struct {
	SupplierID   uuid.UUID        `json:"supplier_id"`
	SupplierName string           `json:"supplier_name,omitempty"`
	Buckets      []CurrencyBucket `json:"buckets"`
	OverdueCount int              `json:"overdue_count"`
}

// GetBySupplier aggregates payables per supplier. Each supplier gets
// per-currency buckets; CNY equivalents appear only for currencies with a
// known rate.
func (s *ReportingService) GetBySupplier(ctx context.Context, filter PayableListFilter) ([]SupplierAggregate, error) {
	domainFilter, err := toDomainFilter(filter, s.now())
	if err != nil {
		return nil, err
	}

	var items []*ledger.PayableRecord
	if filter.SupplierID != nil {
		supplierID := *filter.SupplierID
		domainFilter.SupplierID = nil
		items, err = s.payableRepo.FindBySupplier(ctx, supplierID, domainFilter)
		if err != nil {
			return nil, err
		}
	} else {
		domainFilter.Page = 1
		domainFilter.PageSize = 0
		page, err := s.payableRepo.FindAll(ctx, domainFilter)
		if err != nil {
			return nil, err
		}
		items = page.Items
	}

	rates, err := s.rateRepo.GetRateTable(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	type key struct {
		supplier uuid.UUID
		currency valueobject.Currency
	}
	buckets := make(map[key]*CurrencyBucket)
	overdue := make(map[uuid.UUID]int)
	order := make([]uuid.UUID, 0)
	seen := make(map[uuid.UUID]bool)

	for _, p := range items {
		if !seen[p.SupplierID] {
			seen[p.SupplierID] = true
			order = append(order, p.SupplierID)
		}
		k := key{supplier: p.SupplierID, currency: p.Currency}
		b, ok := buckets[k]
		if !ok {
			b = &CurrencyBucket{
				Currency:        p.Currency.String(),
				TotalAmount:     decimal.Zero,
				PaidAmount:      decimal.Zero,
				RemainingAmount: decimal.Zero,
			}
			buckets[k] = b
		}
		b.TotalAmount = b.TotalAmount.Add(p.TotalAmount)
		b.PaidAmount = b.PaidAmount.Add(p.PaidAmount)
		b.RemainingAmount = b.RemainingAmount.Add(p.RemainingAmount)
		b.PayableCount++
		if p.IsOverdue(now) {
			overdue[p.SupplierID]++
		}
	}

	refs, refErr := s.supplierQuery.GetSupplierReferences(ctx, order)
	if refErr != nil {
		s.logger.Warn("supplier name resolution failed", zap.Error(refErr))
		refs = nil
	}

	out := make([]SupplierAggregate, 0, len(order))
	for _, supplierID := range order {
		agg := SupplierAggregate{SupplierID: supplierID, OverdueCount: overdue[supplierID]}
		if ref, ok := refs[supplierID]; ok {
			agg.SupplierName = ref.DisplayName()
		}
		for k, b := range buckets {
			if k.supplier != supplierID {
				continue
			}
			if rates.HasRate(k.currency) {
				remaining, _ := valueobject.NewMoney(b.RemainingAmount, k.currency)
				converted, err := rates.ConvertToCNY(remaining)
				if err != nil {
					return nil, err
				}
				cny := converted.Amount()
				b.RemainingCNY = &cny
			}
			agg.Buckets = append(agg.Buckets, *b)
		}
		sort.Slice(agg.Buckets, func(i, j int) bool {
			return agg.Buckets[i].Currency < agg.Buckets[j].Currency
		})
		out = append(out, agg)
	}

	return out, nil
}

// GetOverdue lists unpaid payables whose due date has passed, most overdue
// first.
func (s *ReportingService) GetOverdue(ctx context.Context, filter PayableListFilter) ([]*PayableResponse, error) {
	domainFilter, err := toDomainFilter(filter, s.now())
	if err != nil {
		return nil, err
	}

	payables, err := s.payableRepo.FindOverdue(ctx, s.now(), domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]*PayableResponse, len(payables))
	for i, p := range payables {
		responses[i] = toPayableResponse(p, s.now())
	}
	s.fillSupplierNames(ctx, responses)

	sort.SliceStable(responses, func(i, j int) bool {
		if responses[i].DueDate == nil || responses[j].DueDate == nil {
			return responses[j].DueDate == nil && responses[i].DueDate != nil
		}
		return responses[i].DueDate.Before(*responses[j].DueDate)
	})

	return responses, nil
}

// fillSupplierNames decorates responses with display names from the partner
// context. Resolution failures degrade to bare IDs rather than failing the
// read.
func (s *ReportingService) fillSupplierNames(ctx context.Context, responses []*PayableResponse) {
	ids := make([]uuid.UUID, 0, len(responses))
	seen := make(map[uuid.UUID]bool)
	for _, r := range responses {
		if !seen[r.SupplierID] {
			seen[r.SupplierID] = true
			ids = append(ids, r.SupplierID)
		}
	}
	if len(ids) == 0 {
		return
	}

	refs, err := s.supplierQuery.GetSupplierReferences(ctx, ids)
	if err != nil {
		s.logger.Warn("supplier name resolution failed", zap.Error(err))
		return
	}
	for _, r := range responses {
		if ref, ok := refs[r.SupplierID]; ok {
			r.SupplierName = ref.DisplayName()
		}
	}
}

func toDomainFilter(filter PayableListFilter, now time.Time) (ledger.PayableFilter, error) {
	domainFilter := ledger.PayableFilter{
		SupplierID: filter.SupplierID,
		BaseID:     filter.BaseID,
		PeriodKey:  filter.PeriodKey,
		FromDate:   filter.FromDate,
		ToDate:     filter.ToDate,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search
	if domainFilter.Page < 1 {
		domainFilter.Page = 1
	}

	if filter.Status != "" {
		status := ledger.PayableStatus(filter.Status)
		if !status.IsValid() {
			return ledger.PayableFilter{}, shared.NewDomainError("VALIDATION_ERROR", "unknown status filter")
		}
		domainFilter.Status = &status
	}
	if filter.Currency != "" {
		currency := valueobject.Currency(filter.Currency)
		if !currency.IsValid() {
			return ledger.PayableFilter{}, shared.NewDomainError("VALIDATION_ERROR", "unknown currency filter")
		}
		domainFilter.Currency = &currency
	}
	if filter.Overdue != nil && *filter.Overdue {
		asOf := now
		domainFilter.OverdueAt = &asOf
	}

	return domainFilter, nil
}
