package persistence

import (
	"context"

	appchannel "github.com/channelbridge/backend/internal/application/channel"
	"github.com/channelbridge/backend/internal/domain/catalog"
	"github.com/channelbridge/backend/internal/domain/order"
	"github.com/channelbridge/backend/internal/domain/returns"
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
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appchannel.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// OrderRepo returns the order repository scoped to the current transaction.
func (r *gormTransactionalRepositories) OrderRepo() order.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// VariantRepo returns the variant repository scoped to the current transaction.
func (r *gormTransactionalRepositories) VariantRepo() catalog.VariantRepository {
	return NewGormVariantRepository(r.tx)
}

// ReturnAuthorizationRepo returns the RMA repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ReturnAuthorizationRepo() returns.ReturnAuthorizationRepository {
	return NewGormReturnAuthorizationRepository(r.tx)
}

// CustomerReturnRepo returns the receipt repository scoped to the current transaction.
func (r *gormTransactionalRepositories) CustomerReturnRepo() returns.CustomerReturnRepository {
	return NewGormCustomerReturnRepository(r.tx)
}

// ReturnReasonRepo returns the reason repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ReturnReasonRepo() returns.ReturnReasonRepository {
	return NewGormReturnReasonRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appchannel.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appchannel.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
