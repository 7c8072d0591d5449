package channel

import (
	"fmt"

	"github.com/channelbridge/backend/internal/domain/catalog"
	"github.com/channelbridge/backend/internal/domain/order"
	"github.com/channelbridge/backend/internal/domain/shared"
)

// ShipmentAllocator picks the shipment that should receive new units of
// a variant. Preference order: a pending/ready shipment that already
// carries the variant, then a pending/ready shipment at one of the
// variant's stocking locations, then a new ready shipment at the
// variant's first stocking location
type ShipmentAllocator struct{}

// NewShipmentAllocator creates a shipment allocator
func NewShipmentAllocator() *ShipmentAllocator {
	return &ShipmentAllocator{}
}

// Allocate returns the target shipment for the variant, building one on
// the order if needed. A variant stocked nowhere is a hard failure
func (a *ShipmentAllocator) Allocate(ord *order.Order, variant *catalog.Variant) (*order.Shipment, error) {
	for i := range ord.Shipments {
		sh := &ord.Shipments[i]
		if sh.IsEligible() && sh.ContainsVariant(variant.ID) {
			return sh, nil
		}
	}

	locationIDs := variant.StockLocationIDs()
	for i := range ord.Shipments {
		sh := &ord.Shipments[i]
		if !sh.IsEligible() {
			continue
		}
		for _, locID := range locationIDs {
			if sh.StockLocationID == locID {
				return sh, nil
			}
		}
	}

	if len(locationIDs) == 0 {
		return nil, shared.NewDomainError("NO_STOCK_LOCATION",
			fmt.Sprintf("Variant %s is not stocked at any location", variant.SKU))
	}
	return ord.BuildShipment(locationIDs[0], order.ShipmentStateReady), nil
}
