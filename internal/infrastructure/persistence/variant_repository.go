package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/channelbridge/backend/internal/domain/catalog"
	"github.com/channelbridge/backend/internal/domain/shared"
)

// GormVariantRepository implements VariantRepository using GORM
type GormVariantRepository struct {
	db *gorm.DB
}

// NewGormVariantRepository creates a new GormVariantRepository
func NewGormVariantRepository(db *gorm.DB) *GormVariantRepository {
	return &GormVariantRepository{db: db}
}

var _ catalog.VariantRepository = (*GormVariantRepository)(nil)

// FindByID finds a variant by its ID
func (r *GormVariantRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Variant, error) {
	var v catalog.Variant
	if err := r.db.WithContext(ctx).
		Preload("Stockings", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&v, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// FindBySKU finds a variant by its SKU
func (r *GormVariantRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Variant, error) {
	var v catalog.Variant
	if err := r.db.WithContext(ctx).
		Preload("Stockings", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("sku = ?", sku).
		First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// Save creates or updates a variant with its stockings
func (r *GormVariantRepository) Save(ctx context.Context, v *catalog.Variant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(v).Error; err != nil {
			return err
		}
		kept := make([]uuid.UUID, len(v.Stockings))
		for i := range v.Stockings {
			kept[i] = v.Stockings[i].ID
		}
		if err := deleteOrphans(tx, &catalog.VariantStocking{}, "variant_id = ?", v.ID, kept); err != nil {
			return err
		}
		for i := range v.Stockings {
			v.Stockings[i].VariantID = v.ID
			if err := tx.Save(&v.Stockings[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GormStockLocationRepository implements StockLocationRepository using GORM
type GormStockLocationRepository struct {
	db *gorm.DB
}

// NewGormStockLocationRepository creates a new GormStockLocationRepository
func NewGormStockLocationRepository(db *gorm.DB) *GormStockLocationRepository {
	return &GormStockLocationRepository{db: db}
}

var _ catalog.StockLocationRepository = (*GormStockLocationRepository)(nil)

// FindByID finds a stock location by its ID
func (r *GormStockLocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.StockLocation, error) {
	var loc catalog.StockLocation
	if err := r.db.WithContext(ctx).First(&loc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &loc, nil
}

// Save creates or updates a stock location
func (r *GormStockLocationRepository) Save(ctx context.Context, loc *catalog.StockLocation) error {
	return r.db.WithContext(ctx).Save(loc).Error
}
