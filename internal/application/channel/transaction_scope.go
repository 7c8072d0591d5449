package channel

import (
	"context"

	"github.com/channelbridge/backend/internal/domain/catalog"
	"github.com/channelbridge/backend/internal/domain/order"
	"github.com/channelbridge/backend/internal/domain/returns"
)

// TransactionScope provides transactional access to the repositories a
// reconciliation pass touches. When a function is executed within a
// transaction scope, all repository operations will be part of the same
// database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories a
// synchronization pass needs, bound to one transaction.
//
// Aggregate boundary notes:
//   - OrderRepo: the Order aggregate root; line items, shipments,
//     inventory units and adjustments are persisted through it.
//   - ReturnAuthorizationRepo: the ReturnAuthorization aggregate with
//     its return items.
//   - CustomerReturnRepo: receipt records keyed by channel batch number,
//     used for replay detection.
//   - VariantRepo / ReturnReasonRepo: read-mostly catalog lookups.
type TransactionalRepositories interface {
	// OrderRepo returns the order repository scoped to the current transaction
	OrderRepo() order.OrderRepository
	// VariantRepo returns the variant repository scoped to the current transaction
	VariantRepo() catalog.VariantRepository
	// ReturnAuthorizationRepo returns the RMA repository scoped to the current transaction
	ReturnAuthorizationRepo() returns.ReturnAuthorizationRepository
	// CustomerReturnRepo returns the receipt repository scoped to the current transaction
	CustomerReturnRepo() returns.CustomerReturnRepository
	// ReturnReasonRepo returns the reason repository scoped to the current transaction
	ReturnReasonRepo() returns.ReturnReasonRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support
// is not required.
type NoOpTransactionScope struct {
	orderRepo   order.OrderRepository
	variantRepo catalog.VariantRepository
	rmaRepo     returns.ReturnAuthorizationRepository
	receiptRepo returns.CustomerReturnRepository
	reasonRepo  returns.ReturnReasonRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	orderRepo order.OrderRepository,
	variantRepo catalog.VariantRepository,
	rmaRepo returns.ReturnAuthorizationRepository,
	receiptRepo returns.CustomerReturnRepository,
	reasonRepo returns.ReturnReasonRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:   orderRepo,
		variantRepo: variantRepo,
		rmaRepo:     rmaRepo,
		receiptRepo: receiptRepo,
		reasonRepo:  reasonRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OrderRepo returns the order repository.
func (s *NoOpTransactionScope) OrderRepo() order.OrderRepository {
	return s.orderRepo
}

// VariantRepo returns the variant repository.
func (s *NoOpTransactionScope) VariantRepo() catalog.VariantRepository {
	return s.variantRepo
}

// ReturnAuthorizationRepo returns the RMA repository.
func (s *NoOpTransactionScope) ReturnAuthorizationRepo() returns.ReturnAuthorizationRepository {
	return s.rmaRepo
}

// CustomerReturnRepo returns the receipt repository.
func (s *NoOpTransactionScope) CustomerReturnRepo() returns.CustomerReturnRepository {
	return s.receiptRepo
}

// ReturnReasonRepo returns the reason repository.
func (s *NoOpTransactionScope) ReturnReasonRepo() returns.ReturnReasonRepository {
	return s.reasonRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
