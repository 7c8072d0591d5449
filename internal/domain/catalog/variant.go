package catalog

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/channelbridge/backend/internal/domain/shared"
)

// Variant is a sellable SKU in the local catalog
type Variant struct {
	shared.BaseEntity
	SKU       string          `gorm:"size:100;uniqueIndex;not null"`
	Name      string          `gorm:"size:255"`
	Price     decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	CostPrice decimal.Decimal `gorm:"type:decimal(12,4)"`
	Active    bool            `gorm:"not null;default:true"`
	Stockings []VariantStocking
}

// VariantStocking places a variant at a stock location; Position orders
// the locations by preference
type VariantStocking struct {
	shared.BaseEntity
	VariantID       uuid.UUID `gorm:"type:uuid;not null;index"`
	StockLocationID uuid.UUID `gorm:"type:uuid;not null;index"`
	Position        int       `gorm:"not null;default:0"`
}

// NewVariant creates a catalog variant
func NewVariant(sku, name string, price decimal.Decimal) (*Variant, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	return &Variant{
		BaseEntity: shared.NewBaseEntity(),
		SKU:        sku,
		Name:       name,
		Price:      price,
		Active:     true,
	}, nil
}

// AddStocking places the variant at a stock location
func (v *Variant) AddStocking(stockLocationID uuid.UUID, position int) {
	for _, s := range v.Stockings {
		if s.StockLocationID == stockLocationID {
			return
		}
	}
	v.Stockings = append(v.Stockings, VariantStocking{
		BaseEntity:      shared.NewBaseEntity(),
		VariantID:       v.ID,
		StockLocationID: stockLocationID,
		Position:        position,
	})
}

// StockLocationIDs returns the variant's stocking locations in preference order
func (v *Variant) StockLocationIDs() []uuid.UUID {
	stockings := make([]VariantStocking, len(v.Stockings))
	copy(stockings, v.Stockings)
	sort.SliceStable(stockings, func(i, j int) bool {
		return stockings[i].Position < stockings[j].Position
	})
	ids := make([]uuid.UUID, 0, len(stockings))
	for _, s := range stockings {
		ids = append(ids, s.StockLocationID)
	}
	return ids
}

// StocksAt reports whether the variant is stocked at the given location
func (v *Variant) StocksAt(stockLocationID uuid.UUID) bool {
	for _, s := range v.Stockings {
		if s.StockLocationID == stockLocationID {
			return true
		}
	}
	return false
}
