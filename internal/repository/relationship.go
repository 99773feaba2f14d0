package repository

import (
	"context"
	"errors"

	"github.com/xbooster/backend/internal/entity"
	"github.com/xbooster/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type RelationshipRepository interface {
	Create(ctx context.Context, data *entity.Relationship) error
	Exists(ctx context.Context, followerID, followedID string) (bool, error)
	GetFollowerIDs(ctx context.Context, userID string) ([]string, error)
	GetFollowingIDs(ctx context.Context, userID string) ([]string, error)
}

type relationshipRepository struct{}

func NewRelationshipRepository() *relationshipRepository {
	return &relationshipRepository{}
}

// Create inserts the follow edge if it doesn't exist yet. Replaying the
// same edge is not an error.
func (r *relationshipRepository) Create(ctx context.Context, data *entity.Relationship) error {
	return xcontext.DB(ctx).
		Where("follower_id=? AND followed_id=?", data.FollowerID, data.FollowedID).
		FirstOrCreate(data).Error
}

func (r *relationshipRepository) Exists(ctx context.Context, followerID, followedID string) (bool, error) {
	err := xcontext.DB(ctx).
		Where("follower_id=? AND followed_id=?", followerID, followedID).
		Take(&entity.Relationship{}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (r *relationshipRepository) GetFollowerIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := xcontext.DB(ctx).Model(&entity.Relationship{}).
		Where("followed_id=?", userID).
		Order("created_at ASC").
		Pluck("follower_id", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *relationshipRepository) GetFollowingIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := xcontext.DB(ctx).Model(&entity.Relationship{}).
		Where("follower_id=?", userID).
		Order("created_at ASC").
		Pluck("followed_id", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}
