package channel

import (
	"context"

	"github.com/channelbridge/backend/internal/domain/catalog"
)

// VariantResolver maps a channel SKU to a local sellable variant.
// Implementations return shared.ErrNotFound for unknown SKUs; the
// reconciler treats that as a skip signal, never a failure
type VariantResolver interface {
	FindBySKU(ctx context.Context, sku string) (*catalog.Variant, error)
}
