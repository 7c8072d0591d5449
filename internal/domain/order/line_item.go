package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/channelbridge/backend/internal/domain/shared"
)

// LineItem is one variant position on an order
type LineItem struct {
	shared.BaseEntity
	OrderID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	VariantID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	SKU                string          `gorm:"size:100;not null"`
	Quantity           int             `gorm:"not null;default:0"`
	Price              decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	CostPrice          decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	EstimatedShipDate  *time.Time
	DirectShipAmt      decimal.Decimal   `gorm:"type:decimal(12,4);not null;default:0"`
	ApportionedShipAmt decimal.Decimal   `gorm:"type:decimal(12,4);not null;default:0"`
	Ext                map[string]string `gorm:"serializer:json"`
}

// Total returns quantity times unit price
func (li *LineItem) Total() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// SetPrice updates the unit price
func (li *LineItem) SetPrice(price decimal.Decimal) {
	li.Price = price
	li.UpdatedAt = time.Now()
}

// SetCostPrice updates the unit cost
func (li *LineItem) SetCostPrice(cost decimal.Decimal) {
	li.CostPrice = cost
	li.UpdatedAt = time.Now()
}

// SetEstimatedShipDate updates the expected ship date. Reports whether
// the stored value changed
func (li *LineItem) SetEstimatedShipDate(at time.Time) bool {
	if li.EstimatedShipDate != nil && li.EstimatedShipDate.Equal(at) {
		return false
	}
	li.EstimatedShipDate = &at
	li.UpdatedAt = time.Now()
	return true
}

// ApplyShipCharges writes the carrier's per-line shipping amounts.
// Reports whether either stored amount changed
func (li *LineItem) ApplyShipCharges(direct, apportioned decimal.Decimal) bool {
	changed := false
	if !li.DirectShipAmt.Equal(direct) {
		li.DirectShipAmt = direct
		changed = true
	}
	if !li.ApportionedShipAmt.Equal(apportioned) {
		li.ApportionedShipAmt = apportioned
		changed = true
	}
	if changed {
		li.UpdatedAt = time.Now()
	}
	return changed
}

// MergeExt folds extension key/values into the line. Reports whether any
// value was added or replaced
func (li *LineItem) MergeExt(ext map[string]string) bool {
	if len(ext) == 0 {
		return false
	}
	changed := false
	if li.Ext == nil {
		li.Ext = make(map[string]string, len(ext))
	}
	for k, v := range ext {
		if cur, ok := li.Ext[k]; !ok || cur != v {
			li.Ext[k] = v
			changed = true
		}
	}
	if changed {
		li.UpdatedAt = time.Now()
	}
	return changed
}

// LineItemCapabilities declares which optional line-item behaviors the
// host order system supports. The reconciler consults this once; it never
// probes at runtime
type LineItemCapabilities struct {
	TracksShipDate     bool
	ExtensionWriteback bool
}

// DefaultLineItemCapabilities enables everything this schema carries
func DefaultLineItemCapabilities() LineItemCapabilities {
	return LineItemCapabilities{
		TracksShipDate:     true,
		ExtensionWriteback: true,
	}
}
