package repository

import (
	"context"

	"github.com/rwa-lab/backend/internal/entity"
	"github.com/rwa-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type GetListTradeFilter struct {
	UserID  string
	AssetID int64
	Status  []entity.TradeStatus
	Offset  int
	Limit   int
}

type TradeRepository interface {
	Create(ctx context.Context, data *entity.Trade) error
	GetByID(ctx context.Context, id int64) (*entity.Trade, error)
	GetList(ctx context.Context, filter GetListTradeFilter) ([]entity.Trade, error)
	UpdateFilled(ctx context.Context, id, fromFilled, filled int64, status entity.TradeStatus) error
	UpdateStatus(ctx context.Context, id int64, from []entity.TradeStatus, to entity.TradeStatus) error
}

type tradeRepository struct{}

func NewTradeRepository() *tradeRepository {
	return &tradeRepository{}
}

func (r *tradeRepository) Create(ctx context.Context, data *entity.Trade) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *tradeRepository) GetByID(ctx context.Context, id int64) (*entity.Trade, error) {
	var result entity.Trade
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *tradeRepository) GetList(ctx context.Context, filter GetListTradeFilter) ([]entity.Trade, error) {
	tx := xcontext.DB(ctx).Model(&entity.Trade{})
	if filter.UserID != "" {
		tx = tx.Where("(buyer_id=? OR seller_id=?)", filter.UserID, filter.UserID)
	}

	if filter.AssetID != 0 {
		tx = tx.Where("asset_id=?", filter.AssetID)
	}

	if len(filter.Status) > 0 {
		tx = tx.Where("status IN (?)", filter.Status)
	}

	var result []entity.Trade
	err := tx.Order("created_at DESC, id DESC").Offset(filter.Offset).Limit(filter.Limit).Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// UpdateFilled advances the filled quantity of an open trade from fromFilled.
func (r *tradeRepository) UpdateFilled(
	ctx context.Context, id, fromFilled, filled int64, status entity.TradeStatus,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Trade{}).
		Where("id=? AND filled=? AND status IN (?)", id, fromFilled,
			[]entity.TradeStatus{entity.TradePending, entity.TradePartiallyFilled}).
		Updates(map[string]any{
			"filled": filled,
			"status": status,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return ErrStaleVersion
	}

	return nil
}

func (r *tradeRepository) UpdateStatus(
	ctx context.Context, id int64, from []entity.TradeStatus, to entity.TradeStatus,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Trade{}).
		Where("id=? AND status IN (?)", id, from).
		Update("status", to)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
