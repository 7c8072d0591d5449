package channel

import (
	"time"

	"github.com/channelbridge/backend/internal/domain/order"
)

// SnapshotBuilder renders full order snapshots for the channel. The
// field sets per entity kind are fixed at construction; nothing is
// discovered or mutated at runtime
type SnapshotBuilder struct {
	orderFields      map[string]func(*order.Order) any
	lineItemFields   map[string]func(*order.LineItem) any
	shipmentFields   map[string]func(*order.Shipment) any
	unitFields       map[string]func(*order.InventoryUnit) any
	adjustmentFields map[string]func(*order.Adjustment) any
}

// NewSnapshotBuilder builds the static snapshot configuration
func NewSnapshotBuilder() *SnapshotBuilder {
	return &SnapshotBuilder{
		orderFields: map[string]func(*order.Order) any{
			"id":               func(o *order.Order) any { return o.ID.String() },
			"number":           func(o *order.Order) any { return o.Number },
			"status":           func(o *order.Order) any { return o.Status.String() },
			"email":            func(o *order.Order) any { return o.Email },
			"currency":         func(o *order.Order) any { return o.Currency },
			"channel_export":   func(o *order.Order) any { return string(o.ChannelExport) },
			"item_total":       func(o *order.Order) any { return o.ItemTotal.String() },
			"shipment_total":   func(o *order.Order) any { return o.ShipmentTotal.String() },
			"adjustment_total": func(o *order.Order) any { return o.AdjustmentTotal.String() },
			"grand_total":      func(o *order.Order) any { return o.GrandTotal.String() },
			"completed_at":     func(o *order.Order) any { return formatTimePtr(o.CompletedAt) },
			"updated_at":       func(o *order.Order) any { return o.UpdatedAt.UTC().Format(time.RFC3339) },
			"line_item_count":  func(o *order.Order) any { return len(o.LineItems) },
		},
		lineItemFields: map[string]func(*order.LineItem) any{
			"id":                   func(li *order.LineItem) any { return li.ID.String() },
			"variant_id":           func(li *order.LineItem) any { return li.VariantID.String() },
			"sku":                  func(li *order.LineItem) any { return li.SKU },
			"quantity":             func(li *order.LineItem) any { return li.Quantity },
			"price":                func(li *order.LineItem) any { return li.Price.String() },
			"cost_price":           func(li *order.LineItem) any { return li.CostPrice.String() },
			"total":                func(li *order.LineItem) any { return li.Total().String() },
			"estimated_ship_date":  func(li *order.LineItem) any { return formatTimePtr(li.EstimatedShipDate) },
			"direct_ship_amt":      func(li *order.LineItem) any { return li.DirectShipAmt.String() },
			"apportioned_ship_amt": func(li *order.LineItem) any { return li.ApportionedShipAmt.String() },
			"ext":                  func(li *order.LineItem) any { return li.Ext },
		},
		shipmentFields: map[string]func(*order.Shipment) any{
			"id":                func(sh *order.Shipment) any { return sh.ID.String() },
			"number":            func(sh *order.Shipment) any { return sh.Number },
			"state":             func(sh *order.Shipment) any { return string(sh.State) },
			"stock_location_id": func(sh *order.Shipment) any { return sh.StockLocationID.String() },
			"cost":              func(sh *order.Shipment) any { return sh.Cost.String() },
			"tracking_number":   func(sh *order.Shipment) any { return sh.TrackingNumber },
			"shipped_at":        func(sh *order.Shipment) any { return formatTimePtr(sh.ShippedAt) },
		},
		unitFields: map[string]func(*order.InventoryUnit) any{
			"id": func(u *order.InventoryUnit) any { return u.ID.String() },
			"line_item_id": func(u *order.InventoryUnit) any {
				if u.LineItemID == nil {
					return nil
				}
				return u.LineItemID.String()
			},
			"variant_id": func(u *order.InventoryUnit) any { return u.VariantID.String() },
			"sku":        func(u *order.InventoryUnit) any { return u.SKU },
			"unit_price": func(u *order.InventoryUnit) any { return u.UnitPrice.String() },
			"state":      func(u *order.InventoryUnit) any { return string(u.State) },
		},
		adjustmentFields: map[string]func(*order.Adjustment) any{
			"id":     func(a *order.Adjustment) any { return a.ID.String() },
			"kind":   func(a *order.Adjustment) any { return string(a.Kind) },
			"scope":  func(a *order.Adjustment) any { return string(a.Scope) },
			"label":  func(a *order.Adjustment) any { return a.Label },
			"rate":   func(a *order.Adjustment) any { return a.Rate.String() },
			"amount": func(a *order.Adjustment) any { return a.Amount.String() },
			"state":  func(a *order.Adjustment) any { return string(a.State) },
		},
	}
}

// BuildOrder renders the order and all its associations
func (b *SnapshotBuilder) BuildOrder(ord *order.Order) map[string]any {
	out := make(map[string]any, len(b.orderFields)+3)
	for name, get := range b.orderFields {
		out[name] = get(ord)
	}

	lineItems := make([]map[string]any, 0, len(ord.LineItems))
	for i := range ord.LineItems {
		lineItems = append(lineItems, b.buildLineItem(&ord.LineItems[i]))
	}
	out["line_items"] = lineItems

	shipments := make([]map[string]any, 0, len(ord.Shipments))
	for i := range ord.Shipments {
		shipments = append(shipments, b.buildShipment(&ord.Shipments[i]))
	}
	out["shipments"] = shipments

	adjustments := make([]map[string]any, 0, len(ord.Adjustments))
	for i := range ord.Adjustments {
		adjustments = append(adjustments, b.buildAdjustment(&ord.Adjustments[i]))
	}
	out["adjustments"] = adjustments

	return out
}

func (b *SnapshotBuilder) buildLineItem(li *order.LineItem) map[string]any {
	out := make(map[string]any, len(b.lineItemFields))
	for name, get := range b.lineItemFields {
		out[name] = get(li)
	}
	return out
}

func (b *SnapshotBuilder) buildShipment(sh *order.Shipment) map[string]any {
	out := make(map[string]any, len(b.shipmentFields)+1)
	for name, get := range b.shipmentFields {
		out[name] = get(sh)
	}
	units := make([]map[string]any, 0, len(sh.InventoryUnits))
	for i := range sh.InventoryUnits {
		units = append(units, b.buildUnit(&sh.InventoryUnits[i]))
	}
	out["inventory_units"] = units
	return out
}

func (b *SnapshotBuilder) buildUnit(u *order.InventoryUnit) map[string]any {
	out := make(map[string]any, len(b.unitFields))
	for name, get := range b.unitFields {
		out[name] = get(u)
	}
	return out
}

func (b *SnapshotBuilder) buildAdjustment(a *order.Adjustment) map[string]any {
	out := make(map[string]any, len(b.adjustmentFields))
	for name, get := range b.adjustmentFields {
		out[name] = get(a)
	}
	return out
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
