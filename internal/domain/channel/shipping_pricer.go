package channel

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/channelbridge/backend/internal/domain/order"
)

// ShippingPricer computes and applies shipping charges for an order.
// Hosts with carrier integrations substitute their own implementation
type ShippingPricer interface {
	// CalculateShipPrice returns the shipping total the order should
	// carry, or nil when no price can be computed
	CalculateShipPrice(ctx context.Context, ord *order.Order) (*decimal.Decimal, error)

	// ApplyShipmentPrice writes the shipping total onto the order.
	// orderLevel, when set, is the portion not already attributed to
	// lines. Reports whether the stored charge changed
	ApplyShipmentPrice(ctx context.Context, ord *order.Order, total decimal.Decimal, orderLevel *decimal.Decimal) (bool, error)
}

// ShipmentCostPricer is the default pricer: the order's shipping charge
// is the sum of its non-canceled shipment costs
type ShipmentCostPricer struct{}

// NewShipmentCostPricer creates the default pricer
func NewShipmentCostPricer() *ShipmentCostPricer {
	return &ShipmentCostPricer{}
}

var _ ShippingPricer = (*ShipmentCostPricer)(nil)

// CalculateShipPrice sums shipment costs; nil when the order has no shipments
func (p *ShipmentCostPricer) CalculateShipPrice(_ context.Context, ord *order.Order) (*decimal.Decimal, error) {
	if len(ord.Shipments) == 0 {
		return nil, nil
	}
	total := decimal.Zero
	for i := range ord.Shipments {
		if ord.Shipments[i].State == order.ShipmentStateCanceled {
			continue
		}
		total = total.Add(ord.Shipments[i].Cost)
	}
	return &total, nil
}

// ApplyShipmentPrice stores the order-level portion when one is given,
// otherwise the full total
func (p *ShipmentCostPricer) ApplyShipmentPrice(_ context.Context, ord *order.Order, total decimal.Decimal, orderLevel *decimal.Decimal) (bool, error) {
	amount := total
	if orderLevel != nil {
		amount = *orderLevel
	}
	return ord.SetShippingCharge(amount), nil
}
