package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/bizconsole/ledger/internal/domain/ledger"
	"github.com/bizconsole/ledger/internal/domain/ledger/acl"
	"github.com/bizconsole/ledger/internal/domain/shared"
	"github.com/bizconsole/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReconciliationConfig tunes the write path of the ledger
type ReconciliationConfig struct {
	// StoreTimeout bounds every transactional mutation. Exceeding it maps
	// to STORE_TIMEOUT, which callers may retry.
	StoreTimeout time.Duration
	// MaxRetries is how many times a mutation is retried after a
	// concurrency conflict before STORE_CONFLICT is surfaced.
	MaxRetries int
	// RetryBackoff is the base delay between retries, doubled per attempt
	RetryBackoff time.Duration
	// MaxPaymentFutureSkew is how far a payment date may lie in the future
	MaxPaymentFutureSkew time.Duration
	// Bucketing controls how monthly and flexible purchases group into
	// settlement periods.
	Bucketing ledger.BucketingPolicy
}

// DefaultReconciliationConfig returns conservative defaults
func DefaultReconciliationConfig() ReconciliationConfig {
	return ReconciliationConfig{
		StoreTimeout:         5 * time.Second,
		MaxRetries:           3,
		RetryBackoff:         50 * time.Millisecond,
		MaxPaymentFutureSkew: 24 * time.Hour,
		Bucketing:            ledger.BucketMonthly,
	}
}

// ReconciliationService owns every mutation of the payable ledger: booking
// purchases, recording and reversing payments, relinking, deletion and
// status overrides. All writes run inside a transaction with the target
// payable row locked, so concurrent operations on one payable serialize.
type ReconciliationService struct {
	txScope       TransactionScope
	supplierQuery acl.SupplierQueryService
	config        ReconciliationConfig
	logger        *zap.Logger
	now           func() time.Time
}

// ReconciliationServiceOption is a functional option for configuring ReconciliationService
type ReconciliationServiceOption func(*ReconciliationService)

// WithReconciliationConfig overrides the default configuration
func WithReconciliationConfig(cfg ReconciliationConfig) ReconciliationServiceOption {
	return func(s *ReconciliationService) {
		s.config = cfg
	}
}

// WithClock overrides the time source, used by tests
func WithClock(now func() time.Time) ReconciliationServiceOption {
	return func(s *ReconciliationService) {
		s.now = now
	}
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	txScope TransactionScope,
	supplierQuery acl.SupplierQueryService,
	logger *zap.Logger,
	opts ...ReconciliationServiceOption,
) *ReconciliationService {
	s := &ReconciliationService{
		txScope:       txScope,
		supplierQuery: supplierQuery,
		config:        DefaultReconciliationConfig(),
		logger:        logger,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BookPurchaseRequest carries one purchase entry to book onto the ledger
type BookPurchaseRequest struct {
	PurchaseEntryID uuid.UUID       `json:"purchase_entry_id" binding:"required"`
	SupplierID      uuid.UUID       `json:"supplier_id" binding:"required"`
	BaseID          uuid.UUID       `json:"base_id" binding:"required"`
	OrderNumber     string          `json:"order_number"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	PurchaseDate    time.Time       `json:"purchase_date" binding:"required"`
}

// BookPurchase books a purchase entry onto the supplier's payable for the
// settlement period the purchase date falls into, opening the payable if the
// bucket does not exist yet. The due date of a bucket is fixed by its first
// purchase.
func (s *ReconciliationService) BookPurchase(ctx context.Context, req BookPurchaseRequest) (*PayableResponse, error) {
	supplier, err := s.supplierQuery.GetSupplierReference(ctx, req.SupplierID)
	if err != nil {
		return nil, err
	}

	amount, err := valueMoney(req.Amount, supplier.Currency())
	if err != nil {
		return nil, err
	}

	terms := supplier.SettlementTerms()
	periodKey := ledger.PeriodKey(terms, s.config.Bucketing, req.PurchaseDate)
	dueDate := ledger.ComputeDueDate(terms, req.PurchaseDate)

	var result *ledger.PayableRecord
	err = s.withRetry(ctx, "book_purchase", func(ctx context.Context) error {
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			payable, err := repos.PayableRepo().FindBucketForUpdate(ctx, req.SupplierID, req.BaseID, supplier.Currency(), periodKey)
			if err != nil {
				if !isCode(err, "NOT_FOUND") {
					return err
				}
				payable, err = ledger.NewPayableRecord(req.SupplierID, req.BaseID, supplier.Currency(), periodKey, dueDate)
				if err != nil {
					return err
				}
				if err := repos.PayableRepo().Save(ctx, payable); err != nil {
					return err
				}
			}

			if _, err := payable.AttachPurchaseLink(req.PurchaseEntryID, req.OrderNumber, amount); err != nil {
				return err
			}
			if err := repos.PayableRepo().SaveWithLock(ctx, payable, payable.GetVersion()-1); err != nil {
				return err
			}
			result = payable
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase booked",
		zap.String("payable_id", result.ID.String()),
		zap.String("supplier_id", req.SupplierID.String()),
		zap.String("period_key", periodKey),
		zap.String("amount", amount.String()),
	)

	return toPayableResponse(result, s.now()), nil
}

// RecordPaymentRequest carries one payment to apply to a payable
type RecordPaymentRequest struct {
	PayableID       uuid.UUID       `json:"payable_id" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate     time.Time       `json:"payment_date" binding:"required"`
	Method          string          `json:"payment_method" binding:"required,payment_method"`
	ReferenceNumber string          `json:"reference_number"`
	Notes           string          `json:"notes"`
}

// RecordPayment applies a payment against a payable's remaining amount
func (s *ReconciliationService) RecordPayment(ctx context.Context, req RecordPaymentRequest, actor string) (*PayableResponse, error) {
	if req.PaymentDate.After(s.now().Add(s.config.MaxPaymentFutureSkew)) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "payment date lies too far in the future")
	}

	var result *ledger.PayableRecord
	err := s.withRetry(ctx, "record_payment", func(ctx context.Context) error {
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			payable, err := repos.PayableRepo().FindByIDForUpdate(ctx, req.PayableID)
			if err != nil {
				return err
			}

			amount, err := valueMoney(req.Amount, payable.Currency)
			if err != nil {
				return err
			}
			if _, err := payable.ApplyPayment(amount, req.PaymentDate, ledger.PaymentMethod(req.Method), req.ReferenceNumber, req.Notes, actor); err != nil {
				return err
			}
			if err := repos.PayableRepo().SaveWithLock(ctx, payable, payable.GetVersion()-1); err != nil {
				return err
			}
			result = payable
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment recorded",
		zap.String("payable_id", req.PayableID.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("status", result.Status.String()),
		zap.String("actor", actor),
	)

	return toPayableResponse(result, s.now()), nil
}

// ReversePayment appends a compensating reversal for a prior payment
func (s *ReconciliationService) ReversePayment(ctx context.Context, payableID, paymentID uuid.UUID, actor, reason string) (*PayableResponse, error) {
	var result *ledger.PayableRecord
	err := s.withRetry(ctx, "reverse_payment", func(ctx context.Context) error {
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			payable, err := repos.PayableRepo().FindByIDForUpdate(ctx, payableID)
			if err != nil {
				return err
			}
			if _, err := payable.ReversePayment(paymentID, actor, reason); err != nil {
				return err
			}
			if err := repos.PayableRepo().SaveWithLock(ctx, payable, payable.GetVersion()-1); err != nil {
				return err
			}
			result = payable
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment reversed",
		zap.String("payable_id", payableID.String()),
		zap.String("payment_id", paymentID.String()),
		zap.String("actor", actor),
	)

	return toPayableResponse(result, s.now()), nil
}

// RelinkPurchaseRequest moves a purchase link between payables, the
// correction flow for purchases booked against the wrong supplier.
type RelinkPurchaseRequest struct {
	PurchaseEntryID uuid.UUID `json:"purchase_entry_id" binding:"required"`
	FromPayableID   uuid.UUID `json:"from_payable_id" binding:"required"`
	ToSupplierID    uuid.UUID `json:"to_supplier_id" binding:"required"`
	PurchaseDate    time.Time `json:"purchase_date" binding:"required"`
}

// RelinkPurchase detaches a purchase link from one payable and books it onto
// the correct supplier's bucket, both sides inside one transaction.
func (s *ReconciliationService) RelinkPurchase(ctx context.Context, req RelinkPurchaseRequest) (*PayableResponse, error) {
	supplier, err := s.supplierQuery.GetSupplierReference(ctx, req.ToSupplierID)
	if err != nil {
		return nil, err
	}

	terms := supplier.SettlementTerms()
	periodKey := ledger.PeriodKey(terms, s.config.Bucketing, req.PurchaseDate)
	dueDate := ledger.ComputeDueDate(terms, req.PurchaseDate)

	var result *ledger.PayableRecord
	err = s.withRetry(ctx, "relink_purchase", func(ctx context.Context) error {
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			source, err := repos.PayableRepo().FindByIDForUpdate(ctx, req.FromPayableID)
			if err != nil {
				return err
			}
			if source.Currency != supplier.Currency() {
				return shared.NewDomainError("CURRENCY_MISMATCH", "target supplier settles in a different currency")
			}

			link, err := source.DetachPurchaseLink(req.PurchaseEntryID)
			if err != nil {
				return err
			}
			if err := repos.PayableRepo().SaveWithLock(ctx, source, source.GetVersion()-1); err != nil {
				return err
			}

			target, err := repos.PayableRepo().FindBucketForUpdate(ctx, req.ToSupplierID, source.BaseID, supplier.Currency(), periodKey)
			if err != nil {
				if !isCode(err, "NOT_FOUND") {
					return err
				}
				target, err = ledger.NewPayableRecord(req.ToSupplierID, source.BaseID, supplier.Currency(), periodKey, dueDate)
				if err != nil {
					return err
				}
				if err := repos.PayableRepo().Save(ctx, target); err != nil {
					return err
				}
			}

			amount, err := valueMoney(link.Amount, supplier.Currency())
			if err != nil {
				return err
			}
			if _, err := target.AttachPurchaseLink(req.PurchaseEntryID, link.OrderNumber, amount); err != nil {
				return err
			}
			if err := repos.PayableRepo().SaveWithLock(ctx, target, target.GetVersion()-1); err != nil {
				return err
			}
			result = target
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase relinked",
		zap.String("purchase_entry_id", req.PurchaseEntryID.String()),
		zap.String("from_payable_id", req.FromPayableID.String()),
		zap.String("to_payable_id", result.ID.String()),
	)

	return toPayableResponse(result, s.now()), nil
}

// DeletePayable removes a payable that never received a payment
func (s *ReconciliationService) DeletePayable(ctx context.Context, id uuid.UUID) error {
	err := s.withRetry(ctx, "delete_payable", func(ctx context.Context) error {
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			payable, err := repos.PayableRepo().FindByIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if err := payable.CanDelete(); err != nil {
				return err
			}
			return repos.PayableRepo().Delete(ctx, id)
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("payable deleted", zap.String("payable_id", id.String()))
	return nil
}

// OverrideStatus forces a payable's status. When the forced status disagrees
// with the amount-derived one the divergence is flagged and logged; the next
// amount change re-derives.
func (s *ReconciliationService) OverrideStatus(ctx context.Context, id uuid.UUID, status string, actor string) (*PayableResponse, error) {
	var result *ledger.PayableRecord
	var diverged bool
	err := s.withRetry(ctx, "override_status", func(ctx context.Context) error {
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			payable, err := repos.PayableRepo().FindByIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			diverged, err = payable.OverrideStatus(ledger.PayableStatus(status), actor)
			if err != nil {
				return err
			}
			if err := repos.PayableRepo().SaveWithLock(ctx, payable, payable.GetVersion()-1); err != nil {
				return err
			}
			result = payable
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if diverged {
		s.logger.Warn("status override diverges from derived status",
			zap.String("payable_id", id.String()),
			zap.String("status", status),
			zap.String("actor", actor),
		)
	} else {
		s.logger.Info("status override",
			zap.String("payable_id", id.String()),
			zap.String("status", status),
			zap.String("actor", actor),
		)
	}

	return toPayableResponse(result, s.now()), nil
}

// withRetry runs one transactional mutation with a timeout per attempt and a
// bounded retry on concurrency conflicts. The loop retries only optimistic
// lock failures; domain errors surface immediately.
func (s *ReconciliationService) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	backoff := s.config.RetryBackoff

	var err error
	for attempt := 0; ; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, s.config.StoreTimeout)
		err = fn(attemptCtx)
		timedOut := errors.Is(attemptCtx.Err(), context.DeadlineExceeded)
		cancel()

		if err == nil {
			return nil
		}
		if timedOut || errors.Is(err, context.DeadlineExceeded) {
			return shared.NewDomainError("STORE_TIMEOUT", "ledger store operation timed out")
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isCode(err, "CONCURRENCY_CONFLICT") {
			return err
		}
		if attempt >= s.config.MaxRetries {
			s.logger.Warn("giving up after repeated write conflicts",
				zap.String("operation", op),
				zap.Int("attempts", attempt+1),
			)
			return shared.NewDomainError("STORE_CONFLICT", "ledger store operation conflicted with a concurrent write")
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}
}

func isCode(err error, code string) bool {
	var de *shared.DomainError
	return errors.As(err, &de) && de.Code == code
}

func valueMoney(amount decimal.Decimal, currency valueobject.Currency) (valueobject.Money, error) {
	money, err := valueobject.NewMoney(amount, currency)
	if err != nil {
		return valueobject.Money{}, err
	}
	if !money.IsPositive() {
		return valueobject.Money{}, shared.NewDomainError("VALIDATION_ERROR", "amount must be positive")
	}
	// Columns store two decimal places; anything finer would be rounded by
	// the database and the stored totals would drift from the links.
	if !amount.Equal(amount.Truncate(valueobject.MinorUnitPlaces)) {
		return valueobject.Money{}, shared.NewDomainError("VALIDATION_ERROR",
			"amount cannot have more than two decimal places")
	}
	return money, nil
}
