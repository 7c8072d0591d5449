package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/channelbridge/backend/internal/domain/shared"
)

// AdjustmentKind classifies what produced an adjustment
type AdjustmentKind string

const (
	AdjustmentKindTax       AdjustmentKind = "tax"
	AdjustmentKindPromotion AdjustmentKind = "promotion"
)

// AdjustmentScope says what an adjustment applies to
type AdjustmentScope string

const (
	AdjustmentScopeOrder AdjustmentScope = "order"
	AdjustmentScopeItem  AdjustmentScope = "item"
)

// AdjustmentState controls whether recalculation may touch the amount
type AdjustmentState string

const (
	AdjustmentStateOpen   AdjustmentState = "open"
	AdjustmentStateClosed AdjustmentState = "closed"
)

// Adjustment is a tax or promotion amount on an order or line item.
// Closed adjustments are frozen: recalculation never rewrites them
type Adjustment struct {
	shared.BaseEntity
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineItemID *uuid.UUID      `gorm:"type:uuid;index"`
	Kind       AdjustmentKind  `gorm:"size:20;not null"`
	Scope      AdjustmentScope `gorm:"size:20;not null;default:'order'"`
	Label      string          `gorm:"size:255"`
	Rate       decimal.Decimal `gorm:"type:decimal(8,5);not null;default:0"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	State      AdjustmentState `gorm:"size:20;not null;default:'open'"`
}

// NewTaxAdjustment builds an open rate-based tax adjustment
func NewTaxAdjustment(label string, rate decimal.Decimal, scope AdjustmentScope, lineItemID *uuid.UUID) Adjustment {
	return Adjustment{
		BaseEntity: shared.NewBaseEntity(),
		LineItemID: lineItemID,
		Kind:       AdjustmentKindTax,
		Scope:      scope,
		Label:      label,
		Rate:       rate,
		State:      AdjustmentStateOpen,
	}
}

// NewPromotionAdjustment builds an open fixed-amount promotion adjustment
func NewPromotionAdjustment(label string, amount decimal.Decimal) Adjustment {
	return Adjustment{
		BaseEntity: shared.NewBaseEntity(),
		Kind:       AdjustmentKindPromotion,
		Scope:      AdjustmentScopeOrder,
		Label:      label,
		Amount:     amount,
		State:      AdjustmentStateOpen,
	}
}

// IsOpen reports whether recalculation may rewrite the amount
func (a *Adjustment) IsOpen() bool {
	return a.State == AdjustmentStateOpen
}

// IsClosed reports whether the amount is frozen
func (a *Adjustment) IsClosed() bool {
	return a.State == AdjustmentStateClosed
}

// Open unfreezes the adjustment
func (a *Adjustment) Open() {
	a.State = AdjustmentStateOpen
}

// Close freezes the adjustment at its current amount
func (a *Adjustment) Close() {
	a.State = AdjustmentStateClosed
}
