package ledger

import (
	"context"

	"github.com/bizconsole/ledger/internal/domain/ledger"
)

// TransactionScope provides transactional access to ledger repositories.
// Repository calls made through the scoped repositories share one database
// transaction; the function's error decides commit or rollback.
//
// Reconciliation mutations rely on it together with the repository's
// FindByIDForUpdate and FindBucketForUpdate row locks: two writers touching
// the same payable serialize on the row, so amounts never interleave.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories scoped to the current
// transaction.
type TransactionalRepositories interface {
	PayableRepo() ledger.PayableRepository
}

// NoOpTransactionScope runs the function without a real transaction. Used in
// tests where repositories are mocks and transactional behavior is not under
// test.
type NoOpTransactionScope struct {
	payableRepo ledger.PayableRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repository
func NewNoOpTransactionScope(payableRepo ledger.PayableRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{payableRepo: payableRepo}
}

// Execute runs the function directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// PayableRepo returns the payable repository
func (s *NoOpTransactionScope) PayableRepo() ledger.PayableRepository {
	return s.payableRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
