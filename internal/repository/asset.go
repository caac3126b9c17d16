package repository

import (
	"context"
	"time"

	"github.com/rwa-lab/backend/internal/entity"
	"github.com/rwa-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type GetListAssetFilter struct {
	Status   []entity.AssetStatus
	Category string
	OwnerID  string
	Offset   int
	Limit    int
}

type AssetRepository interface {
	Create(ctx context.Context, data *entity.Asset) error
	GetByID(ctx context.Context, id int64) (*entity.Asset, error)
	GetByIDs(ctx context.Context, ids []int64) ([]entity.Asset, error)
	GetList(ctx context.Context, filter GetListAssetFilter) ([]entity.Asset, error)
	GetActivatable(ctx context.Context, now time.Time) ([]entity.Asset, error)
	UpdateByID(ctx context.Context, id, version int64, data map[string]any) error
	UpdateStatus(ctx context.Context, id int64, from []entity.AssetStatus, to entity.AssetStatus) error
	UpdateSupply(ctx context.Context, id, version, available int64, status entity.AssetStatus) error
	DeleteByID(ctx context.Context, id int64) error
}

type assetRepository struct{}

func NewAssetRepository() *assetRepository {
	return &assetRepository{}
}

func (r *assetRepository) Create(ctx context.Context, data *entity.Asset) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *assetRepository) GetByID(ctx context.Context, id int64) (*entity.Asset, error) {
	var result entity.Asset
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *assetRepository) GetByIDs(ctx context.Context, ids []int64) ([]entity.Asset, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var result []entity.Asset
	if err := xcontext.DB(ctx).Where("id IN (?)", ids).Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *assetRepository) GetList(ctx context.Context, filter GetListAssetFilter) ([]entity.Asset, error) {
	tx := xcontext.DB(ctx).Model(&entity.Asset{})
	if len(filter.Status) > 0 {
		tx = tx.Where("status IN (?)", filter.Status)
	}

	if filter.Category != "" {
		tx = tx.Where("category=?", filter.Category)
	}

	if filter.OwnerID != "" {
		tx = tx.Where("owner_id=?", filter.OwnerID)
	}

	var result []entity.Asset
	err := tx.Order("id ASC").Offset(filter.Offset).Limit(filter.Limit).Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *assetRepository) GetActivatable(ctx context.Context, now time.Time) ([]entity.Asset, error) {
	var result []entity.Asset
	err := xcontext.DB(ctx).
		Where("status=? AND launch_date>? AND launch_date<=?", entity.AssetApproved, time.Time{}, now).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *assetRepository) UpdateByID(ctx context.Context, id, version int64, data map[string]any) error {
	data["version"] = gorm.Expr("version+1")
	tx := xcontext.DB(ctx).
		Model(&entity.Asset{}).
		Where("id=? AND version=?", id, version).
		Updates(data)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return ErrStaleVersion
	}

	return nil
}

func (r *assetRepository) UpdateStatus(
	ctx context.Context, id int64, from []entity.AssetStatus, to entity.AssetStatus,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Asset{}).
		Where("id=? AND status IN (?)", id, from).
		Updates(map[string]any{
			"status":  to,
			"version": gorm.Expr("version+1"),
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// UpdateSupply sets the available supply and status of an asset read at the
// given version. The available_tokens guard keeps the supply inside
// [0, total_tokens] even if the caller computed it from a stale record.
func (r *assetRepository) UpdateSupply(
	ctx context.Context, id, version, available int64, status entity.AssetStatus,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Asset{}).
		Where("id=? AND version=? AND ? >= 0 AND ? <= total_tokens", id, version, available, available).
		Updates(map[string]any{
			"available_tokens": available,
			"status":           status,
			"version":          gorm.Expr("version+1"),
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return ErrStaleVersion
	}

	return nil
}

func (r *assetRepository) DeleteByID(ctx context.Context, id int64) error {
	tx := xcontext.DB(ctx).Delete(&entity.Asset{}, "id=?", id)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
