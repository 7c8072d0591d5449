package returns

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/channelbridge/backend/internal/domain/shared"
)

// CustomerReturn records one physical receipt of returned units at a
// stock location. Channel-originated receipts carry a channel-derived
// number for replay detection
type CustomerReturn struct {
	shared.BaseAggregateRoot
	Number          string    `gorm:"size:50;uniqueIndex;not null"`
	StockLocationID uuid.UUID `gorm:"type:uuid;not null"`
	ReceivedAt      time.Time `gorm:"not null"`
	ItemCount       int       `gorm:"not null;default:0"`
}

// NewCustomerReturn creates a customer return receipt
func NewCustomerReturn(number string, stockLocationID uuid.UUID) (*CustomerReturn, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewDomainError("INVALID_RETURN_NUMBER", "Customer return number cannot be empty")
	}
	return &CustomerReturn{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		StockLocationID:   stockLocationID,
		ReceivedAt:        time.Now(),
	}, nil
}

// RecordItem counts one received return item against this receipt
func (c *CustomerReturn) RecordItem() {
	c.ItemCount++
}
