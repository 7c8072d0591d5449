package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/channelbridge/backend/internal/domain/order"
	"github.com/channelbridge/backend/internal/domain/shared"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

var _ order.OrderRepository = (*GormOrderRepository)(nil)

func (r *GormOrderRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("LineItems").
		Preload("Shipments").
		Preload("Shipments.InventoryUnits").
		Preload("Adjustments")
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var ord order.Order
	if err := r.preloaded(ctx).First(&ord, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ord, nil
}

// FindByNumber finds an order by its number
func (r *GormOrderRepository) FindByNumber(ctx context.Context, number string) (*order.Order, error) {
	var ord order.Order
	if err := r.preloaded(ctx).Where("number = ?", number).First(&ord).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ord, nil
}

// FindByNumberForUpdate finds an order by number holding a row lock for
// the duration of the surrounding transaction
func (r *GormOrderRepository) FindByNumberForUpdate(ctx context.Context, number string) (*order.Order, error) {
	var ord order.Order
	if err := r.preloaded(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("number = ?", number).
		First(&ord).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ord, nil
}

// FindEligibleForExport returns completed orders awaiting channel pickup, oldest first
func (r *GormOrderRepository) FindEligibleForExport(ctx context.Context, limit int) ([]order.Order, error) {
	var orders []order.Order
	if err := r.preloaded(ctx).
		Where("status = ? AND channel_export = ?", order.OrderStatusComplete, order.ExportStateEligible).
		Order("completed_at ASC").
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FilterExportable returns the subset of ids naming channel-managed orders
func (r *GormOrderRepository) FilterExportable(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	var matched []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("id IN ? AND channel_export IN ?", ids,
			[]order.ExportState{order.ExportStateEligible, order.ExportStateAcknowledged}).
		Pluck("id", &matched).Error; err != nil {
		return nil, err
	}
	return matched, nil
}

// Save creates or updates an order with its line items, shipments,
// inventory units and adjustments. Children dropped from the aggregate
// are deleted. Updates are version guarded; a stale aggregate fails
// with shared.ErrConcurrencyConflict and nothing is written
func (r *GormOrderRepository) Save(ctx context.Context, ord *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.saveRoot(tx, ord); err != nil {
			return err
		}

		if err := r.saveLineItems(tx, ord); err != nil {
			return err
		}
		if err := r.saveShipments(tx, ord); err != nil {
			return err
		}
		return r.saveAdjustments(tx, ord)
	})
}

func (r *GormOrderRepository) saveRoot(tx *gorm.DB, ord *order.Order) error {
	var count int64
	if err := tx.Model(&order.Order{}).Where("id = ?", ord.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return tx.Omit(clause.Associations).Create(ord).Error
	}

	currentVersion := ord.Version
	ord.IncrementVersion()
	result := tx.Model(&order.Order{}).
		Where("id = ? AND version = ?", ord.ID, currentVersion).
		Select("*").
		Omit(clause.Associations).
		Updates(ord)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		ord.Version = currentVersion
		return shared.ErrConcurrencyConflict
	}
	return nil
}

func (r *GormOrderRepository) saveLineItems(tx *gorm.DB, ord *order.Order) error {
	kept := make([]uuid.UUID, len(ord.LineItems))
	for i := range ord.LineItems {
		kept[i] = ord.LineItems[i].ID
	}
	if err := deleteOrphans(tx, &order.LineItem{}, "order_id = ?", ord.ID, kept); err != nil {
		return err
	}
	for i := range ord.LineItems {
		ord.LineItems[i].OrderID = ord.ID
		if err := tx.Save(&ord.LineItems[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *GormOrderRepository) saveShipments(tx *gorm.DB, ord *order.Order) error {
	keptShipments := make([]uuid.UUID, len(ord.Shipments))
	var keptUnits []uuid.UUID
	for i := range ord.Shipments {
		keptShipments[i] = ord.Shipments[i].ID
		for j := range ord.Shipments[i].InventoryUnits {
			keptUnits = append(keptUnits, ord.Shipments[i].InventoryUnits[j].ID)
		}
	}

	// Units go first so removed shipments do not leave orphans behind
	unitScope := tx.Model(&order.Shipment{}).Select("id").Where("order_id = ?", ord.ID)
	unitQuery := tx.Where("shipment_id IN (?)", unitScope)
	if len(keptUnits) > 0 {
		unitQuery = unitQuery.Where("id NOT IN ?", keptUnits)
	}
	if err := unitQuery.Delete(&order.InventoryUnit{}).Error; err != nil {
		return err
	}

	if err := deleteOrphans(tx, &order.Shipment{}, "order_id = ?", ord.ID, keptShipments); err != nil {
		return err
	}

	for i := range ord.Shipments {
		ord.Shipments[i].OrderID = ord.ID
		if err := tx.Omit(clause.Associations).Save(&ord.Shipments[i]).Error; err != nil {
			return err
		}
		for j := range ord.Shipments[i].InventoryUnits {
			ord.Shipments[i].InventoryUnits[j].ShipmentID = ord.Shipments[i].ID
			if err := tx.Save(&ord.Shipments[i].InventoryUnits[j]).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *GormOrderRepository) saveAdjustments(tx *gorm.DB, ord *order.Order) error {
	kept := make([]uuid.UUID, len(ord.Adjustments))
	for i := range ord.Adjustments {
		kept[i] = ord.Adjustments[i].ID
	}
	if err := deleteOrphans(tx, &order.Adjustment{}, "order_id = ?", ord.ID, kept); err != nil {
		return err
	}
	for i := range ord.Adjustments {
		ord.Adjustments[i].OrderID = ord.ID
		if err := tx.Save(&ord.Adjustments[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// deleteOrphans deletes child rows of the parent that are no longer part
// of the aggregate
func deleteOrphans(tx *gorm.DB, model any, parentCond string, parentID uuid.UUID, kept []uuid.UUID) error {
	query := tx.Where(parentCond, parentID)
	if len(kept) > 0 {
		query = query.Where("id NOT IN ?", kept)
	}
	return query.Delete(model).Error
}
