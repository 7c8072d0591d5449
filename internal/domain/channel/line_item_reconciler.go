package channel

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/channelbridge/backend/internal/domain/order"
	"github.com/channelbridge/backend/internal/domain/shared"
)

// LineItemReconciler applies the channel's authoritative line-item state
// to a local order. Hosts with custom line semantics may substitute
// their own implementation
type LineItemReconciler interface {
	// Reconcile diffs records against the order and applies quantity,
	// money and extension changes. Returns whether anything changed and
	// one correlation result per surviving record
	Reconcile(ctx context.Context, ord *order.Order, records []LineItemRecord) (bool, []LineItemResult, error)
}

// ItemReconciler is the default LineItemReconciler
type ItemReconciler struct {
	variants  VariantResolver
	allocator *ShipmentAllocator
	caps      order.LineItemCapabilities
	logger    *zap.Logger
}

// NewItemReconciler creates the default reconciler with full capabilities
func NewItemReconciler(variants VariantResolver, logger *zap.Logger) *ItemReconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItemReconciler{
		variants:  variants,
		allocator: NewShipmentAllocator(),
		caps:      order.DefaultLineItemCapabilities(),
		logger:    logger,
	}
}

// WithCapabilities overrides the capability descriptor
func (r *ItemReconciler) WithCapabilities(caps order.LineItemCapabilities) *ItemReconciler {
	r.caps = caps
	return r
}

var _ LineItemReconciler = (*ItemReconciler)(nil)

// Reconcile processes records in order. Unknown SKUs and duplicate
// variants are skipped; a variant with no stocking location aborts the
// pass. Removed records delete the local line and emit no result
func (r *ItemReconciler) Reconcile(ctx context.Context, ord *order.Order, records []LineItemRecord) (bool, []LineItemResult, error) {
	changed := false
	results := make([]LineItemResult, 0, len(records))
	seen := make(map[uuid.UUID]bool, len(records))

	for _, rec := range records {
		if rec.Quantity <= 0 && !rec.Removed {
			continue
		}

		variant, err := r.variants.FindBySKU(ctx, rec.SKU)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				r.logger.Warn("skipping unknown sku",
					zap.String("order", ord.Number),
					zap.String("sku", rec.SKU))
				continue
			}
			return false, nil, err
		}
		if seen[variant.ID] {
			r.logger.Warn("skipping duplicate variant record",
				zap.String("order", ord.Number),
				zap.String("sku", rec.SKU))
			continue
		}
		seen[variant.ID] = true

		li := ord.FindLineItemByVariant(variant.ID)

		if rec.Removed {
			if ord.RemoveLineItem(variant.ID) {
				changed = true
			}
			continue
		}

		oldQty := 0
		if li != nil {
			oldQty = li.Quantity
		}
		switch {
		case rec.Quantity > oldQty:
			sh, err := r.allocator.Allocate(ord, variant)
			if err != nil {
				return false, nil, err
			}
			li, err = ord.AddQuantity(variant, rec.Quantity-oldQty, sh.ID)
			if err != nil {
				return false, nil, err
			}
			changed = true
		case rec.Quantity < oldQty:
			li, err = ord.RemoveQuantity(variant.ID, oldQty-rec.Quantity)
			if err != nil {
				return false, nil, err
			}
			changed = true
		}
		if li == nil {
			continue
		}

		if rec.EstimatedUnitCost.IsPositive() && !li.CostPrice.Equal(rec.EstimatedUnitCost) {
			li.SetCostPrice(rec.EstimatedUnitCost)
			changed = true
		}
		if rec.UnitPrice != nil && !li.Price.Equal(*rec.UnitPrice) {
			li.SetPrice(*rec.UnitPrice)
			changed = true
		}
		if r.caps.TracksShipDate && rec.EstimatedShipDate > 0 {
			if li.SetEstimatedShipDate(time.Unix(rec.EstimatedShipDate, 0).UTC()) {
				changed = true
			}
		}
		if r.caps.ExtensionWriteback {
			if li.ApplyShipCharges(rec.DirectShipAmt.Round(4), rec.ApportionedShipAmt.Round(4)) {
				changed = true
			}
			if li.MergeExt(rec.Ext) {
				changed = true
			}
		}

		results = append(results, LineItemResult{
			Corr:     rec.Corr,
			Refnum:   li.ID,
			Quantity: li.Quantity,
		})
	}

	return changed, results, nil
}
