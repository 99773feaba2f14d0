package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xbooster/backend/internal/entity"
	"github.com/xbooster/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, data *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.User, error)
	GetByServiceUserID(ctx context.Context, service, serviceUserID string) (*entity.User, error)
	GetBatch(ctx context.Context, excludeID string, limit int) ([]entity.User, error)
	Update(ctx context.Context, id string, updateMap map[string]any) error
	RecordCheckIn(ctx context.Context, id, day string, updateMap map[string]any) error
	AddScore(ctx context.Context, id string, delta int64) error
	IncreaseFollowing(ctx context.Context, id string, delta int) error
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

	var records []entity.User
	if err := xcontext.DB(ctx).Where("id IN (?)", ids).Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (r *userRepository) GetByServiceUserID(
	ctx context.Context, service, serviceUserID string,
) (*entity.User, error) {
	var record entity.User
	err := xcontext.DB(ctx).
		Model(&entity.User{}).
		Where("oauth2.service=? AND oauth2.service_user_id=?", service, serviceUserID).
		Joins("join oauth2 on users.id=oauth2.user_id").
		Take(&record).Error
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// GetBatch returns a page of follow candidates, newest accounts first.
func (r *userRepository) GetBatch(ctx context.Context, excludeID string, limit int) ([]entity.User, error) {
	var records []entity.User
	err := xcontext.DB(ctx).
		Where("id != ?", excludeID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *userRepository) Update(ctx context.Context, id string, updateMap map[string]any) error {
	if len(updateMap) == 0 {
		return nil
	}

	tx := xcontext.DB(ctx).Model(&entity.User{}).Where("id=?", id).Updates(updateMap)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// RecordCheckIn stamps the check-in day along with updateMap. The guard
// rejects a row already stamped with day as record-not-found, so two racing
// check-ins can never both award.
func (r *userRepository) RecordCheckIn(
	ctx context.Context, id, day string, updateMap map[string]any,
) error {
	updateMap["last_check_in"] = sql.NullString{Valid: true, String: day}
	tx := xcontext.DB(ctx).Model(&entity.User{}).
		Where("id=? AND (last_check_in IS NULL OR last_check_in != ?)", id, day).
		Updates(updateMap)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// AddScore changes the score by delta. The guard keeps the score from ever
// going negative; a rejected debit reports as record-not-found.
func (r *userRepository) AddScore(ctx context.Context, id string, delta int64) error {
	tx := xcontext.DB(ctx).Model(&entity.User{}).
		Where("id=? AND score + ? >= 0", id, delta).
		Update("score", gorm.Expr("score + ?", delta))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	if tx.RowsAffected > 1 {
		return errors.New("the number of rows effected is invalid")
	}

	return nil
}

func (r *userRepository) IncreaseFollowing(ctx context.Context, id string, delta int) error {
	return xcontext.DB(ctx).Model(&entity.User{}).
		Where("id=?", id).
		Update("following", gorm.Expr("following + ?", delta)).Error
}
