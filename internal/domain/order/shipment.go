package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/channelbridge/backend/internal/domain/shared"
)

// ShipmentState represents the lifecycle state of a shipment
type ShipmentState string

const (
	ShipmentStatePending  ShipmentState = "pending"
	ShipmentStateReady    ShipmentState = "ready"
	ShipmentStateShipped  ShipmentState = "shipped"
	ShipmentStateCanceled ShipmentState = "canceled"
)

// IsValid checks if the state is a known value
func (s ShipmentState) IsValid() bool {
	switch s {
	case ShipmentStatePending, ShipmentStateReady, ShipmentStateShipped, ShipmentStateCanceled:
		return true
	}
	return false
}

// Shipment groups inventory units leaving one stock location
type Shipment struct {
	shared.BaseEntity
	OrderID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Number          string          `gorm:"size:50;not null"`
	StockLocationID uuid.UUID       `gorm:"type:uuid;not null"`
	State           ShipmentState   `gorm:"size:20;not null;default:'pending'"`
	Cost            decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	TrackingNumber  string          `gorm:"size:100"`
	ShippedAt       *time.Time
	InventoryUnits  []InventoryUnit
}

// IsEligible reports whether new units may still be placed on the shipment
func (s *Shipment) IsEligible() bool {
	return s.State == ShipmentStatePending || s.State == ShipmentStateReady
}

// IsShipped reports whether the shipment has left the stock location
func (s *Shipment) IsShipped() bool {
	return s.State == ShipmentStateShipped
}

// ContainsVariant reports whether any unit of the variant sits on the shipment
func (s *Shipment) ContainsVariant(variantID uuid.UUID) bool {
	for i := range s.InventoryUnits {
		if s.InventoryUnits[i].VariantID == variantID {
			return true
		}
	}
	return false
}

// Ship marks the shipment and all its units as shipped
func (s *Shipment) Ship(trackingNumber string) error {
	if !s.IsEligible() {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			"Only pending or ready shipments can ship")
	}
	now := time.Now()
	s.State = ShipmentStateShipped
	s.TrackingNumber = trackingNumber
	s.ShippedAt = &now
	for i := range s.InventoryUnits {
		s.InventoryUnits[i].State = UnitStateShipped
	}
	return nil
}
