package repository

import (
	"context"

	"github.com/xbooster/backend/internal/entity"
	"github.com/xbooster/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type BoostRepository interface {
	Create(ctx context.Context, data *entity.Boost) error
	GetByUserID(ctx context.Context, userID string) ([]entity.Boost, error)
	GetActiveList(ctx context.Context) ([]entity.Boost, error)
	UpdateProgress(ctx context.Context, id string, current int, status entity.BoostStatus) error
}

type boostRepository struct{}

func NewBoostRepository() *boostRepository {
	return &boostRepository{}
}

func (r *boostRepository) Create(ctx context.Context, data *entity.Boost) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *boostRepository) GetByUserID(ctx context.Context, userID string) ([]entity.Boost, error) {
	var records []entity.Boost
	err := xcontext.DB(ctx).
		Where("user_id=?", userID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *boostRepository) GetActiveList(ctx context.Context) ([]entity.Boost, error) {
	var records []entity.Boost
	err := xcontext.DB(ctx).Where("status=?", entity.BoostActive).Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}

// UpdateProgress only touches boosts that are still active, so a completed
// boost never changes again.
func (r *boostRepository) UpdateProgress(
	ctx context.Context, id string, current int, status entity.BoostStatus,
) error {
	tx := xcontext.DB(ctx).Model(&entity.Boost{}).
		Where("id=? AND status=?", id, entity.BoostActive).
		Updates(map[string]any{
			"current_count": current,
			"status":        status,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
