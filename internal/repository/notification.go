package repository

import (
	"context"

	"github.com/rwa-lab/backend/internal/entity"
	"github.com/rwa-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, data *entity.Notification) error
	GetByID(ctx context.Context, id int64) (*entity.Notification, error)
	GetListByUserID(ctx context.Context, userID string, offset, limit int) ([]entity.Notification, error)
	GetList(ctx context.Context, offset, limit int) ([]entity.Notification, error)
	MarkRead(ctx context.Context, id int64) error
}

type notificationRepository struct{}

func NewNotificationRepository() *notificationRepository {
	return &notificationRepository{}
}

func (r *notificationRepository) Create(ctx context.Context, data *entity.Notification) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *notificationRepository) GetByID(ctx context.Context, id int64) (*entity.Notification, error) {
	var result entity.Notification
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *notificationRepository) GetListByUserID(
	ctx context.Context, userID string, offset, limit int,
) ([]entity.Notification, error) {
	var result []entity.Notification
	err := xcontext.DB(ctx).
		Where("user_id=?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *notificationRepository) GetList(ctx context.Context, offset, limit int) ([]entity.Notification, error) {
	var result []entity.Notification
	err := xcontext.DB(ctx).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id int64) error {
	tx := xcontext.DB(ctx).Model(&entity.Notification{}).Where("id=?", id).Update("is_read", true)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
