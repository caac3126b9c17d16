package repository

import (
	"context"

	"github.com/rwa-lab/backend/internal/entity"
	"github.com/rwa-lab/backend/pkg/xcontext"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TokenHoldingRepository interface {
	Create(ctx context.Context, data *entity.TokenHolding) error
	Get(ctx context.Context, userID string, assetID int64) (*entity.TokenHolding, error)
	GetByID(ctx context.Context, id int64) (*entity.TokenHolding, error)
	GetListByUserID(ctx context.Context, userID string) ([]entity.TokenHolding, error)
	GetListByAssetID(ctx context.Context, assetID int64) ([]entity.TokenHolding, error)
	SumByAssetID(ctx context.Context, assetID int64) (int64, error)
	Increase(ctx context.Context, holding *entity.TokenHolding, amount int64, invested decimal.Decimal) error
	Decrease(ctx context.Context, holding *entity.TokenHolding, amount int64, invested decimal.Decimal) error
}

type tokenHoldingRepository struct{}

func NewTokenHoldingRepository() *tokenHoldingRepository {
	return &tokenHoldingRepository{}
}

func (r *tokenHoldingRepository) Create(ctx context.Context, data *entity.TokenHolding) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *tokenHoldingRepository) Get(ctx context.Context, userID string, assetID int64) (*entity.TokenHolding, error) {
	var result entity.TokenHolding
	err := xcontext.DB(ctx).Where("user_id=? AND asset_id=?", userID, assetID).Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *tokenHoldingRepository) GetByID(ctx context.Context, id int64) (*entity.TokenHolding, error) {
	var result entity.TokenHolding
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *tokenHoldingRepository) GetListByUserID(ctx context.Context, userID string) ([]entity.TokenHolding, error) {
	var result []entity.TokenHolding
	err := xcontext.DB(ctx).
		Where("user_id=? AND amount>0", userID).
		Order("asset_id ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *tokenHoldingRepository) GetListByAssetID(ctx context.Context, assetID int64) ([]entity.TokenHolding, error) {
	var result []entity.TokenHolding
	err := xcontext.DB(ctx).
		Where("asset_id=? AND amount>0", assetID).
		Order("amount DESC, user_id ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *tokenHoldingRepository) SumByAssetID(ctx context.Context, assetID int64) (int64, error) {
	var sum int64
	err := xcontext.DB(ctx).
		Model(&entity.TokenHolding{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("asset_id=?", assetID).
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}

	return sum, nil
}

// Increase adds amount to the holding and sets its cost basis, guarded by the
// version the holding was read at.
func (r *tokenHoldingRepository) Increase(
	ctx context.Context, holding *entity.TokenHolding, amount int64, invested decimal.Decimal,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.TokenHolding{}).
		Where("id=? AND version=?", holding.ID, holding.Version).
		Updates(map[string]any{
			"amount":          gorm.Expr("amount+?", amount),
			"invested_amount": invested,
			"version":         gorm.Expr("version+1"),
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return ErrStaleVersion
	}

	return nil
}

// Decrease removes amount from the holding. The amount guard makes a negative
// balance impossible even when the version guard is bypassed by a stale read.
func (r *tokenHoldingRepository) Decrease(
	ctx context.Context, holding *entity.TokenHolding, amount int64, invested decimal.Decimal,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.TokenHolding{}).
		Where("id=? AND version=? AND amount>=?", holding.ID, holding.Version, amount).
		Updates(map[string]any{
			"amount":          gorm.Expr("amount-?", amount),
			"invested_amount": invested,
			"version":         gorm.Expr("version+1"),
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return ErrStaleVersion
	}

	return nil
}
