package order

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepository provides access to order aggregates
type OrderRepository interface {
	// FindByID retrieves an order with all children by its ID
	// Returns shared.ErrNotFound if the order doesn't exist
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByNumber retrieves an order with all children by its number
	// Returns shared.ErrNotFound if the order doesn't exist
	FindByNumber(ctx context.Context, number string) (*Order, error)

	// FindByNumberForUpdate retrieves an order like FindByNumber but
	// takes a row lock on the order for the current transaction
	FindByNumberForUpdate(ctx context.Context, number string) (*Order, error)

	// FindEligibleForExport lists completed orders awaiting channel pickup,
	// oldest completion first, up to limit
	FindEligibleForExport(ctx context.Context, limit int) ([]Order, error)

	// FilterExportable returns the subset of ids that belong to
	// channel-managed orders (eligible or already acknowledged)
	FilterExportable(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)

	// Save persists the aggregate and reconciles child rows. Returns
	// shared.ErrConcurrencyConflict when the aggregate's version no
	// longer matches the stored row
	Save(ctx context.Context, ord *Order) error
}
