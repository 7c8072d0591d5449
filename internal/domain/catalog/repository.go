package catalog

import (
	"context"

	"github.com/google/uuid"
)

// VariantRepository provides access to catalog variants
type VariantRepository interface {
	// FindByID retrieves a variant by its ID
	// Returns shared.ErrNotFound if the variant doesn't exist
	FindByID(ctx context.Context, id uuid.UUID) (*Variant, error)

	// FindBySKU retrieves a variant by its SKU
	// Returns shared.ErrNotFound if no variant carries the SKU
	FindBySKU(ctx context.Context, sku string) (*Variant, error)

	// Save persists a variant and its stockings
	Save(ctx context.Context, variant *Variant) error
}

// StockLocationRepository provides access to stock locations
type StockLocationRepository interface {
	// FindByID retrieves a stock location by its ID
	// Returns shared.ErrNotFound if the location doesn't exist
	FindByID(ctx context.Context, id uuid.UUID) (*StockLocation, error)

	// Save persists a stock location
	Save(ctx context.Context, location *StockLocation) error
}
