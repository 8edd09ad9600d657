package persistence

import (
	"context"

	appledger "github.com/bizconsole/ledger/internal/application/ledger"
	"github.com/bizconsole/ledger/internal/domain/ledger"
	"gorm.io/gorm"
)

// GormLedgerTransactionScope implements the ledger TransactionScope using
// GORM transactions. All repository calls made through the scoped
// repositories run inside one database transaction.
type GormLedgerTransactionScope struct {
	db *gorm.DB
}

// NewGormLedgerTransactionScope creates a new GormLedgerTransactionScope
func NewGormLedgerTransactionScope(db *gorm.DB) *GormLedgerTransactionScope {
	return &GormLedgerTransactionScope{db: db}
}

// Execute runs the function within a database transaction. An error rolls
// the transaction back, success commits it.
func (s *GormLedgerTransactionScope) Execute(ctx context.Context, fn func(repos appledger.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormLedgerTransactionalRepositories{tx: tx})
	})
}

type gormLedgerTransactionalRepositories struct {
	tx *gorm.DB
}

// PayableRepo returns the payable repository scoped to the current transaction
func (r *gormLedgerTransactionalRepositories) PayableRepo() ledger.PayableRepository {
	return NewGormPayableRepository(r.tx)
}

var _ appledger.TransactionScope = (*GormLedgerTransactionScope)(nil)
var _ appledger.TransactionalRepositories = (*gormLedgerTransactionalRepositories)(nil)
