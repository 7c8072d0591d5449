package catalog

import (
	"strings"

	"github.com/channelbridge/backend/internal/domain/shared"
)

// StockLocation is a warehouse or store that can hold and ship stock
type StockLocation struct {
	shared.BaseEntity
	Name   string `gorm:"size:255;not null"`
	Code   string `gorm:"size:50;uniqueIndex"`
	Active bool   `gorm:"not null;default:true"`
}

// NewStockLocation creates a stock location
func NewStockLocation(name, code string) (*StockLocation, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Stock location name cannot be empty")
	}
	return &StockLocation{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Code:       code,
		Active:     true,
	}, nil
}
