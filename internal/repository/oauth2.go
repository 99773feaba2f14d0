package repository

import (
	"context"

	"github.com/xbooster/backend/internal/entity"
	"github.com/xbooster/backend/pkg/xcontext"
)

type OAuth2Repository interface {
	Create(ctx context.Context, data *entity.OAuth2) error
	GetByUserID(ctx context.Context, userID string) ([]entity.OAuth2, error)
}

type oauth2Repository struct{}

func NewOAuth2Repository() *oauth2Repository {
	return &oauth2Repository{}
}

func (r *oauth2Repository) Create(ctx context.Context, data *entity.OAuth2) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *oauth2Repository) GetByUserID(ctx context.Context, userID string) ([]entity.OAuth2, error) {
	var records []entity.OAuth2
	if err := xcontext.DB(ctx).Where("user_id=?", userID).Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}
