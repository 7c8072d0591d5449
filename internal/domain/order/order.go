package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/channelbridge/backend/internal/domain/catalog"
	"github.com/channelbridge/backend/internal/domain/shared"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusComplete OrderStatus = "complete"
	OrderStatusCanceled OrderStatus = "canceled"
)

// IsValid checks if the status is a known value
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusComplete, OrderStatusCanceled:
		return true
	}
	return false
}

// String returns the string representation
func (s OrderStatus) String() string {
	return string(s)
}

// ExportState tracks whether the order has been handed to the channel
type ExportState string

const (
	ExportStateNone         ExportState = "none"
	ExportStateEligible     ExportState = "eligible"
	ExportStateAcknowledged ExportState = "acknowledged"
)

// IsExportable reports whether the order is under channel management
func (s ExportState) IsExportable() bool {
	return s == ExportStateEligible || s == ExportStateAcknowledged
}

// Order is the aggregate root for a customer order
type Order struct {
	shared.BaseAggregateRoot
	Number          string      `gorm:"size:50;uniqueIndex;not null"`
	Status          OrderStatus `gorm:"size:20;not null;default:'pending'"`
	Email           string      `gorm:"size:255"`
	Currency        string      `gorm:"size:3;not null;default:'USD'"`
	ChannelExport   ExportState `gorm:"size:20;not null;default:'none';index"`
	ItemTotal       decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	ShipmentTotal   decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	AdjustmentTotal decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	GrandTotal      decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	CompletedAt     *time.Time
	LineItems       []LineItem
	Shipments       []Shipment
	Adjustments     []Adjustment
}

// NewOrder creates an order with the given number
func NewOrder(number, email string) (*Order, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		Status:            OrderStatusPending,
		Email:             email,
		Currency:          "USD",
		ChannelExport:     ExportStateNone,
	}, nil
}

// Complete marks the order as completed
func (o *Order) Complete() error {
	if o.Status != OrderStatusPending {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			fmt.Sprintf("Cannot complete order in status %s", o.Status))
	}
	now := time.Now()
	o.Status = OrderStatusComplete
	o.CompletedAt = &now
	return nil
}

// IsComplete checks if the order has been completed
func (o *Order) IsComplete() bool {
	return o.Status == OrderStatusComplete
}

// MarkExportEligible flags the order for pickup by the channel
func (o *Order) MarkExportEligible() {
	o.ChannelExport = ExportStateEligible
}

// AcknowledgeExport records that the channel has imported the order.
// Re-acknowledging an already acknowledged order is a no-op so the
// channel can retry its import batches
func (o *Order) AcknowledgeExport() error {
	if !o.ChannelExport.IsExportable() {
		return shared.NewDomainError("NOT_EXPORTABLE", "Order is not managed by the channel")
	}
	if o.ChannelExport == ExportStateAcknowledged {
		return nil
	}
	o.ChannelExport = ExportStateAcknowledged
	o.AddDomainEvent(NewOrderExportedEvent(o.ID, o.Number))
	return nil
}

// FindLineItemByVariant returns the line item for a variant, or nil
func (o *Order) FindLineItemByVariant(variantID uuid.UUID) *LineItem {
	for i := range o.LineItems {
		if o.LineItems[i].VariantID == variantID {
			return &o.LineItems[i]
		}
	}
	return nil
}

// FindShipment returns the shipment with the given ID, or nil
func (o *Order) FindShipment(shipmentID uuid.UUID) *Shipment {
	for i := range o.Shipments {
		if o.Shipments[i].ID == shipmentID {
			return &o.Shipments[i]
		}
	}
	return nil
}

// AddQuantity adds qty units of a variant to the order, creating the line
// item if needed and placing inventory units on the given shipment
func (o *Order) AddQuantity(variant *catalog.Variant, qty int, shipmentID uuid.UUID) (*LineItem, error) {
	if qty <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity to add must be positive")
	}
	sh := o.FindShipment(shipmentID)
	if sh == nil {
		return nil, shared.NewDomainError("SHIPMENT_NOT_FOUND", "Shipment does not belong to this order")
	}

	li := o.FindLineItemByVariant(variant.ID)
	if li == nil {
		o.LineItems = append(o.LineItems, LineItem{
			BaseEntity: shared.NewBaseEntity(),
			OrderID:    o.ID,
			VariantID:  variant.ID,
			SKU:        variant.SKU,
			Price:      variant.Price,
			CostPrice:  variant.CostPrice,
		})
		li = &o.LineItems[len(o.LineItems)-1]
	}
	li.Quantity += qty
	li.UpdatedAt = time.Now()

	state := UnitStateOnHand
	if sh.IsShipped() {
		state = UnitStateShipped
	}
	lineID := li.ID
	for range qty {
		sh.InventoryUnits = append(sh.InventoryUnits, InventoryUnit{
			BaseEntity: shared.NewBaseEntity(),
			ShipmentID: sh.ID,
			LineItemID: &lineID,
			VariantID:  variant.ID,
			SKU:        variant.SKU,
			UnitPrice:  li.Price,
			State:      state,
		})
	}
	return li, nil
}

// RemoveQuantity removes qty units of a variant; the line item is deleted
// when its quantity reaches zero. Returns the surviving line item or nil
func (o *Order) RemoveQuantity(variantID uuid.UUID, qty int) (*LineItem, error) {
	if qty <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity to remove must be positive")
	}
	li := o.FindLineItemByVariant(variantID)
	if li == nil {
		return nil, shared.NewDomainError("LINE_ITEM_NOT_FOUND", "No line item for variant")
	}
	if qty > li.Quantity {
		return nil, shared.NewDomainError("INVALID_QUANTITY",
			fmt.Sprintf("Cannot remove %d units from a line of %d", qty, li.Quantity))
	}

	o.removeOnHandUnits(li.ID, qty)
	li.Quantity -= qty
	li.UpdatedAt = time.Now()
	if li.Quantity == 0 {
		o.deleteLineItem(li.ID)
		return nil, nil
	}
	return li, nil
}

// RemoveLineItem deletes the variant's line entirely along with its
// unshipped inventory units. Shipped units are kept for return handling
// and unlinked from the deleted line
func (o *Order) RemoveLineItem(variantID uuid.UUID) bool {
	li := o.FindLineItemByVariant(variantID)
	if li == nil {
		return false
	}
	lineID := li.ID
	o.removeOnHandUnits(lineID, li.Quantity)
	o.detachUnits(lineID)
	o.deleteLineItem(lineID)
	return true
}

// detachUnits clears the line-item link on units surviving a line
// removal. Their denormalized SKU and price keep return matching alive
func (o *Order) detachUnits(lineItemID uuid.UUID) {
	for i := range o.Shipments {
		for j := range o.Shipments[i].InventoryUnits {
			u := &o.Shipments[i].InventoryUnits[j]
			if u.BelongsToLine(lineItemID) {
				u.LineItemID = nil
			}
		}
	}
}

// deleteLineItem drops the line and any item-scoped adjustments tied
// to it so nothing in the aggregate dangles on a deleted line
func (o *Order) deleteLineItem(lineItemID uuid.UUID) {
	for i := range o.LineItems {
		if o.LineItems[i].ID == lineItemID {
			o.LineItems = append(o.LineItems[:i], o.LineItems[i+1:]...)
			break
		}
	}
	kept := o.Adjustments[:0]
	for _, a := range o.Adjustments {
		if a.Scope == AdjustmentScopeItem && a.LineItemID != nil && *a.LineItemID == lineItemID {
			continue
		}
		kept = append(kept, a)
	}
	o.Adjustments = kept
}

// removeOnHandUnits drops up to qty unshipped units of the line item,
// preferring units on pending/ready shipments
func (o *Order) removeOnHandUnits(lineItemID uuid.UUID, qty int) {
	for i := range o.Shipments {
		sh := &o.Shipments[i]
		if !sh.IsEligible() {
			continue
		}
		kept := sh.InventoryUnits[:0]
		for _, u := range sh.InventoryUnits {
			if qty > 0 && u.BelongsToLine(lineItemID) && u.State == UnitStateOnHand {
				qty--
				continue
			}
			kept = append(kept, u)
		}
		sh.InventoryUnits = kept
	}
}

// BuildShipment appends a new shipment at the stock location and returns it
func (o *Order) BuildShipment(stockLocationID uuid.UUID, state ShipmentState) *Shipment {
	o.Shipments = append(o.Shipments, Shipment{
		BaseEntity:      shared.NewBaseEntity(),
		OrderID:         o.ID,
		Number:          fmt.Sprintf("%s-S%d", o.Number, len(o.Shipments)+1),
		StockLocationID: stockLocationID,
		State:           state,
	})
	return &o.Shipments[len(o.Shipments)-1]
}

// HasShippedShipment reports whether any shipment has shipped
func (o *Order) HasShippedShipment() bool {
	return o.FirstShippedShipment() != nil
}

// FirstShippedShipment returns the earliest shipped shipment, or nil
func (o *Order) FirstShippedShipment() *Shipment {
	for i := range o.Shipments {
		if o.Shipments[i].IsShipped() {
			return &o.Shipments[i]
		}
	}
	return nil
}

// FindReturnableUnit locates a shipped inventory unit for a return line,
// matching first on the local line-item identifier and then on SKU.
// Units whose IDs appear in the used set are skipped
func (o *Order) FindReturnableUnit(lineItemRef, sku string, used map[uuid.UUID]bool) *InventoryUnit {
	if u := o.findShippedUnit(func(u *InventoryUnit) bool {
		return u.LineItemID != nil && u.LineItemID.String() == lineItemRef
	}, used); u != nil {
		return u
	}
	if sku == "" {
		return nil
	}
	return o.findShippedUnit(func(u *InventoryUnit) bool {
		return u.SKU == sku
	}, used)
}

// FindInventoryUnit returns the unit with the given ID from any
// shipment, or nil
func (o *Order) FindInventoryUnit(unitID uuid.UUID) *InventoryUnit {
	for i := range o.Shipments {
		for j := range o.Shipments[i].InventoryUnits {
			if o.Shipments[i].InventoryUnits[j].ID == unitID {
				return &o.Shipments[i].InventoryUnits[j]
			}
		}
	}
	return nil
}

func (o *Order) findShippedUnit(match func(*InventoryUnit) bool, used map[uuid.UUID]bool) *InventoryUnit {
	for i := range o.Shipments {
		sh := &o.Shipments[i]
		if !sh.IsShipped() {
			continue
		}
		for j := range sh.InventoryUnits {
			u := &sh.InventoryUnits[j]
			if u.State == UnitStateShipped && !used[u.ID] && match(u) {
				return u
			}
		}
	}
	return nil
}

// SetShippingCharge replaces the order's shipping total. Reports whether
// the stored value actually changed
func (o *Order) SetShippingCharge(amount decimal.Decimal) bool {
	if o.ShipmentTotal.Equal(amount) {
		return false
	}
	o.ShipmentTotal = amount
	o.UpdatedAt = time.Now()
	return true
}

// TaxAdjustments returns all tax adjustments, order and item scoped
func (o *Order) TaxAdjustments() []*Adjustment {
	return o.adjustmentsOf(func(a *Adjustment) bool { return a.Kind == AdjustmentKindTax })
}

// OrderLevelPromotions returns order-scoped promotion adjustments
func (o *Order) OrderLevelPromotions() []*Adjustment {
	return o.adjustmentsOf(func(a *Adjustment) bool {
		return a.Kind == AdjustmentKindPromotion && a.Scope == AdjustmentScopeOrder
	})
}

func (o *Order) adjustmentsOf(match func(*Adjustment) bool) []*Adjustment {
	var out []*Adjustment
	for i := range o.Adjustments {
		if match(&o.Adjustments[i]) {
			out = append(out, &o.Adjustments[i])
		}
	}
	return out
}

// AddAdjustment attaches an adjustment to the order
func (o *Order) AddAdjustment(adj Adjustment) *Adjustment {
	adj.OrderID = o.ID
	o.Adjustments = append(o.Adjustments, adj)
	return &o.Adjustments[len(o.Adjustments)-1]
}

// Recalculate refreshes the order totals. Open rate-based tax adjustments
// are recomputed against current item totals; closed adjustments keep
// their frozen amounts
func (o *Order) Recalculate() {
	itemTotal := decimal.Zero
	for i := range o.LineItems {
		itemTotal = itemTotal.Add(o.LineItems[i].Total())
	}
	o.ItemTotal = itemTotal

	adjTotal := decimal.Zero
	for i := range o.Adjustments {
		a := &o.Adjustments[i]
		if a.IsOpen() && a.Kind == AdjustmentKindTax && a.Rate.IsPositive() {
			a.Amount = o.taxBase(a).Mul(a.Rate).Round(2)
		}
		adjTotal = adjTotal.Add(a.Amount)
	}
	o.AdjustmentTotal = adjTotal
	o.GrandTotal = itemTotal.Add(o.ShipmentTotal).Add(adjTotal)
	o.UpdatedAt = time.Now()
}

func (o *Order) taxBase(a *Adjustment) decimal.Decimal {
	if a.Scope == AdjustmentScopeItem && a.LineItemID != nil {
		for i := range o.LineItems {
			if o.LineItems[i].ID == *a.LineItemID {
				return o.LineItems[i].Total()
			}
		}
		return decimal.Zero
	}
	return o.ItemTotal
}

// RecordReconciled raises a domain event describing a channel writeback
func (o *Order) RecordReconciled(itemsChanged bool) {
	o.AddDomainEvent(NewOrderReconciledEvent(o.ID, o.Number, itemsChanged))
}
