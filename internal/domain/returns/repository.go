package returns

import (
	"context"

	"github.com/google/uuid"
)

// ReturnAuthorizationRepository provides access to return authorizations
type ReturnAuthorizationRepository interface {
	// FindByOrderAndNumber retrieves one RMA of an order by number
	// Returns shared.ErrNotFound if no such RMA exists
	FindByOrderAndNumber(ctx context.Context, orderID uuid.UUID, number string) (*ReturnAuthorization, error)

	// FindByOrder lists all RMAs of an order with their items
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]ReturnAuthorization, error)

	// Save persists the RMA and its items
	Save(ctx context.Context, rma *ReturnAuthorization) error
}

// CustomerReturnRepository provides access to customer return receipts
type CustomerReturnRepository interface {
	// FindByNumber retrieves a receipt by its number
	// Returns shared.ErrNotFound if the receipt doesn't exist
	FindByNumber(ctx context.Context, number string) (*CustomerReturn, error)

	// Save persists a receipt
	Save(ctx context.Context, cr *CustomerReturn) error
}

// ReturnReasonRepository provides access to return reasons
type ReturnReasonRepository interface {
	// FindPreferred returns an active reason whose name contains the
	// keyword, falling back to any active reason
	// Returns shared.ErrNotFound when no active reason exists at all
	FindPreferred(ctx context.Context, keyword string) (*ReturnReason, error)

	// Save persists a return reason
	Save(ctx context.Context, reason *ReturnReason) error
}
