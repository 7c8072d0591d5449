package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/channelbridge/backend/internal/domain/returns"
	"github.com/channelbridge/backend/internal/domain/shared"
)

// GormReturnAuthorizationRepository implements ReturnAuthorizationRepository using GORM
type GormReturnAuthorizationRepository struct {
	db *gorm.DB
}

// NewGormReturnAuthorizationRepository creates a new GormReturnAuthorizationRepository
func NewGormReturnAuthorizationRepository(db *gorm.DB) *GormReturnAuthorizationRepository {
	return &GormReturnAuthorizationRepository{db: db}
}

var _ returns.ReturnAuthorizationRepository = (*GormReturnAuthorizationRepository)(nil)

// FindByOrderAndNumber retrieves one RMA of an order by number
func (r *GormReturnAuthorizationRepository) FindByOrderAndNumber(ctx context.Context, orderID uuid.UUID, number string) (*returns.ReturnAuthorization, error) {
	var rma returns.ReturnAuthorization
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_id = ? AND number = ?", orderID, number).
		First(&rma).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rma, nil
}

// FindByOrder lists all RMAs of an order with their items
func (r *GormReturnAuthorizationRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]returns.ReturnAuthorization, error) {
	var rmas []returns.ReturnAuthorization
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_id = ?", orderID).
		Order("number ASC").
		Find(&rmas).Error; err != nil {
		return nil, err
	}
	return rmas, nil
}

// Save persists the RMA and its items
func (r *GormReturnAuthorizationRepository) Save(ctx context.Context, rma *returns.ReturnAuthorization) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(rma).Error; err != nil {
			return err
		}
		kept := make([]uuid.UUID, len(rma.Items))
		for i := range rma.Items {
			kept[i] = rma.Items[i].ID
		}
		if err := deleteOrphans(tx, &returns.ReturnItem{}, "return_authorization_id = ?", rma.ID, kept); err != nil {
			return err
		}
		for i := range rma.Items {
			rma.Items[i].ReturnAuthorizationID = rma.ID
			if err := tx.Save(&rma.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GormCustomerReturnRepository implements CustomerReturnRepository using GORM
type GormCustomerReturnRepository struct {
	db *gorm.DB
}

// NewGormCustomerReturnRepository creates a new GormCustomerReturnRepository
func NewGormCustomerReturnRepository(db *gorm.DB) *GormCustomerReturnRepository {
	return &GormCustomerReturnRepository{db: db}
}

var _ returns.CustomerReturnRepository = (*GormCustomerReturnRepository)(nil)

// FindByNumber retrieves a receipt by its number
func (r *GormCustomerReturnRepository) FindByNumber(ctx context.Context, number string) (*returns.CustomerReturn, error) {
	var cr returns.CustomerReturn
	if err := r.db.WithContext(ctx).Where("number = ?", number).First(&cr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &cr, nil
}

// Save persists a receipt
func (r *GormCustomerReturnRepository) Save(ctx context.Context, cr *returns.CustomerReturn) error {
	return r.db.WithContext(ctx).Save(cr).Error
}

// GormReturnReasonRepository implements ReturnReasonRepository using GORM
type GormReturnReasonRepository struct {
	db *gorm.DB
}

// NewGormReturnReasonRepository creates a new GormReturnReasonRepository
func NewGormReturnReasonRepository(db *gorm.DB) *GormReturnReasonRepository {
	return &GormReturnReasonRepository{db: db}
}

var _ returns.ReturnReasonRepository = (*GormReturnReasonRepository)(nil)

// FindPreferred returns an active reason whose name contains the keyword,
// falling back to any active reason
func (r *GormReturnReasonRepository) FindPreferred(ctx context.Context, keyword string) (*returns.ReturnReason, error) {
	var reason returns.ReturnReason
	err := r.db.WithContext(ctx).
		Where("active = ? AND LOWER(name) LIKE ?", true, "%"+strings.ToLower(keyword)+"%").
		Order("name ASC").
		First(&reason).Error
	if err == nil {
		return &reason, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC").
		First(&reason).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &reason, nil
}

// Save persists a return reason
func (r *GormReturnReasonRepository) Save(ctx context.Context, reason *returns.ReturnReason) error {
	return r.db.WithContext(ctx).Save(reason).Error
}
