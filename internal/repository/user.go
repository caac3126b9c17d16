package repository

import (
	"context"

	"github.com/rwa-lab/backend/internal/entity"
	"github.com/rwa-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, data *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.User, error)
	GetList(ctx context.Context, offset, limit int) ([]entity.User, error)
	UpdateProfile(ctx context.Context, id string, profile entity.UserProfile) error
	UpdateKYCStatus(ctx context.Context, id string, from []entity.KYCStatus, to entity.KYCStatus) error
	UpdateRole(ctx context.Context, id string, role entity.Role) error
	CountByRole(ctx context.Context, role entity.Role) (int64, error)
}

type userRepository struct{}

func NewUserRepository() *userRepository {
	return &userRepository{}
}

func (r *userRepository) Create(ctx context.Context, data *entity.User) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var record entity.User
	if err := xcontext.DB(ctx).Where("id=?", id).Take(&record).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var result []entity.User
	if err := xcontext.DB(ctx).Where("id IN (?)", ids).Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *userRepository) GetList(ctx context.Context, offset, limit int) ([]entity.User, error) {
	var result []entity.User
	err := xcontext.DB(ctx).
		Order("created_at ASC, id ASC").
		Offset(offset).Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id string, profile entity.UserProfile) error {
	tx := xcontext.DB(ctx).
		Model(&entity.User{}).
		Where("id=?", id).
		Update("profile", entity.JSON[entity.UserProfile]{Data: profile})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// UpdateKYCStatus moves the user to the new status only if the current status
// is one of from. An empty from accepts any current status.
func (r *userRepository) UpdateKYCStatus(
	ctx context.Context, id string, from []entity.KYCStatus, to entity.KYCStatus,
) error {
	tx := xcontext.DB(ctx).Model(&entity.User{}).Where("id=?", id)
	if len(from) > 0 {
		tx = tx.Where("kyc_status IN (?)", from)
	}

	tx = tx.Update("kyc_status", to)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *userRepository) UpdateRole(ctx context.Context, id string, role entity.Role) error {
	tx := xcontext.DB(ctx).Model(&entity.User{}).Where("id=?", id).Update("role", role)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *userRepository) CountByRole(ctx context.Context, role entity.Role) (int64, error) {
	var count int64
	if err := xcontext.DB(ctx).Model(&entity.User{}).Where("role=?", role).Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}
