package channel

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/channelbridge/backend/internal/domain/order"
)

// AdjustmentRecalculator owns the tax/promotion freeze-thaw dance around
// a reconciliation pass. Open tax is closed before return sync so return
// handling never sees half-computed amounts; after item changes the
// closed adjustments are reopened, the order recomputed, and everything
// reclosed. The ordering is load-bearing
type AdjustmentRecalculator struct {
	pricer ShippingPricer
}

// NewAdjustmentRecalculator creates a recalculator around the given pricer
func NewAdjustmentRecalculator(pricer ShippingPricer) *AdjustmentRecalculator {
	if pricer == nil {
		pricer = NewShipmentCostPricer()
	}
	return &AdjustmentRecalculator{pricer: pricer}
}

// CloseTaxAdjustments freezes every open tax adjustment, order and item
// scoped alike
func (r *AdjustmentRecalculator) CloseTaxAdjustments(ord *order.Order) {
	for _, adj := range ord.TaxAdjustments() {
		if adj.IsOpen() {
			adj.Close()
		}
	}
}

// ApplyShipping settles the order's shipping charge. With authoritative
// shipping the channel total is split into the line-attributed portion
// (already written onto lines) and an order-level remainder; otherwise a
// local price is computed only when items changed. Reports whether the
// stored charge moved
func (r *AdjustmentRecalculator) ApplyShipping(ctx context.Context, ord *order.Order, itemsChanged bool, records []LineItemRecord, amts OrderAmounts, opts SyncOptions) (bool, error) {
	if opts.ChannelAuthoritativeShipping {
		if amts.ShippingAmt == nil {
			return false, nil
		}
		total := *amts.ShippingAmt
		itemLevel := decimal.Zero
		for _, rec := range records {
			itemLevel = itemLevel.Add(rec.DirectShipAmt.Round(4))
		}
		orderLevel := total.Sub(itemLevel)
		return r.pricer.ApplyShipmentPrice(ctx, ord, total, &orderLevel)
	}

	if !itemsChanged {
		return false, nil
	}
	calc, err := r.pricer.CalculateShipPrice(ctx, ord)
	if err != nil {
		return false, err
	}
	if calc == nil {
		return false, nil
	}
	return r.pricer.ApplyShipmentPrice(ctx, ord, *calc, nil)
}

// Finalize recomputes the order after a pass that changed anything.
// Closed tax and order-level promotions are thawed only when line items
// actually changed, then the order recomputes and everything freezes
// again
func (r *AdjustmentRecalculator) Finalize(ord *order.Order, itemsChanged bool) {
	if itemsChanged {
		for _, adj := range ord.TaxAdjustments() {
			adj.Open()
		}
		for _, adj := range ord.OrderLevelPromotions() {
			adj.Open()
		}
	}

	ord.Recalculate()

	for _, adj := range ord.TaxAdjustments() {
		adj.Close()
	}
	for _, adj := range ord.OrderLevelPromotions() {
		adj.Close()
	}
}
