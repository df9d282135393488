package persistence

import (
	"context"

	apprecurring "github.com/sponsorship/backend/internal/application/recurring"
	"github.com/sponsorship/backend/internal/domain/recurring"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos apprecurring.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Groups returns the contract group repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Groups() recurring.ContractGroupRepository {
	return NewGormContractGroupRepository(r.tx)
}

// Contracts returns the contract repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Contracts() recurring.ContractRepository {
	return NewGormContractRepository(r.tx)
}

// Invoices returns the invoice repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Invoices() recurring.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

// Invoicers returns the invoicer repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Invoicers() recurring.InvoicerRepository {
	return NewGormInvoicerRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ apprecurring.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ apprecurring.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
