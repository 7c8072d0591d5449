package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/channelbridge/backend/internal/domain/shared"
)

// UnitState represents the physical state of one inventory unit
type UnitState string

const (
	UnitStateOnHand   UnitState = "on_hand"
	UnitStateShipped  UnitState = "shipped"
	UnitStateReturned UnitState = "returned"
)

// InventoryUnit is a single physical unit on a shipment. SKU and unit
// price are denormalized so returns survive line-item removal; a unit
// whose line item was removed keeps a nil LineItemID
type InventoryUnit struct {
	shared.BaseEntity
	ShipmentID uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineItemID *uuid.UUID      `gorm:"type:uuid;index"`
	VariantID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	SKU        string          `gorm:"size:100;not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	State      UnitState       `gorm:"size:20;not null;default:'on_hand'"`
}

// BelongsToLine reports whether the unit is linked to the line item
func (u *InventoryUnit) BelongsToLine(lineItemID uuid.UUID) bool {
	return u.LineItemID != nil && *u.LineItemID == lineItemID
}

// MarkReturned records the unit as physically returned
func (u *InventoryUnit) MarkReturned() {
	u.State = UnitStateReturned
}
