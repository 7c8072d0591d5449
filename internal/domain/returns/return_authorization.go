package returns

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/channelbridge/backend/internal/domain/shared"
)

// ReceptionStatus tracks whether a return item has physically come back
type ReceptionStatus string

const (
	ReceptionStatusAwaiting ReceptionStatus = "awaiting"
	ReceptionStatusReceived ReceptionStatus = "received"
)

// ReturnAuthorization is the aggregate root for one authorized return.
// Channel-originated RMAs carry a channel-derived number so replays of
// the same channel record land on the same local aggregate
type ReturnAuthorization struct {
	shared.BaseAggregateRoot
	OrderID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	Number          string     `gorm:"size:50;uniqueIndex;not null"`
	StockLocationID uuid.UUID  `gorm:"type:uuid;not null"`
	ReasonID        *uuid.UUID `gorm:"type:uuid"`
	Memo            string     `gorm:"size:500"`
	State           string     `gorm:"size:20;not null;default:'authorized'"`
	Items           []ReturnItem
}

// ReturnItem authorizes the return of one inventory unit
type ReturnItem struct {
	shared.BaseEntity
	ReturnAuthorizationID uuid.UUID       `gorm:"type:uuid;not null;index"`
	InventoryUnitID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	PreTaxAmount          decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	ReceptionStatus       ReceptionStatus `gorm:"size:20;not null;default:'awaiting'"`
	CustomerReturnID      *uuid.UUID      `gorm:"type:uuid;index"`
	ManualIntervention    bool            `gorm:"not null;default:false"`
}

// NewReturnAuthorization creates an RMA for an order
func NewReturnAuthorization(orderID uuid.UUID, number string, stockLocationID uuid.UUID, reasonID *uuid.UUID) (*ReturnAuthorization, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewDomainError("INVALID_RMA_NUMBER", "Return authorization number cannot be empty")
	}
	if stockLocationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STOCK_LOCATION", "Return authorization needs a stock location")
	}
	return &ReturnAuthorization{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		Number:            number,
		StockLocationID:   stockLocationID,
		ReasonID:          reasonID,
		State:             "authorized",
	}, nil
}

// HasUnitItem reports whether the unit is already authorized on this RMA
func (r *ReturnAuthorization) HasUnitItem(inventoryUnitID uuid.UUID) bool {
	return r.ItemForUnit(inventoryUnitID) != nil
}

// ItemForUnit returns the item authorizing the unit, or nil
func (r *ReturnAuthorization) ItemForUnit(inventoryUnitID uuid.UUID) *ReturnItem {
	for i := range r.Items {
		if r.Items[i].InventoryUnitID == inventoryUnitID {
			return &r.Items[i]
		}
	}
	return nil
}

// AddItem authorizes one inventory unit for return
func (r *ReturnAuthorization) AddItem(inventoryUnitID uuid.UUID, preTaxAmount decimal.Decimal) (*ReturnItem, error) {
	if r.HasUnitItem(inventoryUnitID) {
		return nil, shared.NewDomainError("UNIT_ALREADY_AUTHORIZED", "Inventory unit already on this return authorization")
	}
	r.Items = append(r.Items, ReturnItem{
		BaseEntity:            shared.NewBaseEntity(),
		ReturnAuthorizationID: r.ID,
		InventoryUnitID:       inventoryUnitID,
		PreTaxAmount:          preTaxAmount,
		ReceptionStatus:       ReceptionStatusAwaiting,
	})
	return &r.Items[len(r.Items)-1], nil
}

// AllItemsReceived reports whether the RMA has items and all came back
func (r *ReturnAuthorization) AllItemsReceived() bool {
	if len(r.Items) == 0 {
		return false
	}
	for i := range r.Items {
		if r.Items[i].ReceptionStatus != ReceptionStatusReceived {
			return false
		}
	}
	return true
}

// AwaitingItemForUnit returns the not-yet-received item for the unit, or nil
func (r *ReturnAuthorization) AwaitingItemForUnit(inventoryUnitID uuid.UUID) *ReturnItem {
	item := r.ItemForUnit(inventoryUnitID)
	if item == nil || item.ReceptionStatus != ReceptionStatusAwaiting {
		return nil
	}
	return item
}

// MarkReceived records the item as physically returned under a customer return
func (i *ReturnItem) MarkReceived(customerReturnID uuid.UUID) error {
	if i.ReceptionStatus == ReceptionStatusReceived {
		return shared.NewDomainError("ALREADY_RECEIVED", "Return item was already received")
	}
	i.ReceptionStatus = ReceptionStatusReceived
	i.CustomerReturnID = &customerReturnID
	return nil
}

// FlagManualIntervention marks the item for operator review
func (i *ReturnItem) FlagManualIntervention() {
	i.ManualIntervention = true
}
