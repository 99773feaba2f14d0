package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/xbooster/backend/config"
	"github.com/xbooster/backend/internal/common"
	"github.com/xbooster/backend/internal/entity"
	"github.com/xbooster/backend/internal/model"
	"github.com/xbooster/backend/internal/repository"
	"github.com/xbooster/backend/pkg/errorx"
	"github.com/xbooster/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type BoostDomain interface {
	BuyBoost(ctx context.Context, req *model.BuyBoostRequest) (*model.BuyBoostResponse, error)
	GetBoosts(ctx context.Context, req *model.GetBoostsRequest) (*model.GetBoostsResponse, error)
}

type boostDomain struct {
	userRepo    repository.UserRepository
	boostRepo   repository.BoostRepository
	idGenerator *snowflake.Node
}

func NewBoostDomain(
	userRepo repository.UserRepository,
	boostRepo repository.BoostRepository,
	idGenerator *snowflake.Node,
) *boostDomain {
	return &boostDomain{
		userRepo:    userRepo,
		boostRepo:   boostRepo,
		idGenerator: idGenerator,
	}
}

// BuyBoost debits the boost price and opens an active boost. An
// insufficient balance rejects the purchase without touching anything.
func (d *boostDomain) BuyBoost(
	ctx context.Context, req *model.BuyBoostRequest,
) (*model.BuyBoostResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	game := xcontext.Configs(ctx).Game

	option, ok := boostOptionByFollowers(game.BoostOptions, req.Followers)
	if !ok {
		return nil, errorx.New(errorx.BadRequest, "Unknown boost option")
	}

	// The read, balance check, debit, and history push share one
	// transaction, and the guarded debit rejects a concurrent spend that
	// slipped between the read and the write.
	var resp *model.BuyBoostResponse
	err := xcontext.WithDBTransaction(ctx, func(ctx context.Context) error {
		user, err := d.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		if user.Score < option.Price {
			return errorx.New(errorx.Unavailable,
				"You need %d points to buy this boost", option.Price)
		}

		if err := d.userRepo.AddScore(ctx, userID, -option.Price); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errorx.New(errorx.Unavailable,
					"You need %d points to buy this boost", option.Price)
			}
			return err
		}

		boost := &entity.Boost{
			ID:          uuid.NewString(),
			UserID:      userID,
			TargetCount: option.Followers,
			Status:      entity.BoostActive,
		}
		if err := d.boostRepo.Create(ctx, boost); err != nil {
			return err
		}

		entry := common.NewHistoryEntry(
			d.idGenerator, entity.HistoryTypeBoost,
			fmt.Sprintf("Boost: +%d followers", option.Followers), -option.Price, "")

		err = d.userRepo.Update(ctx, userID, map[string]any{
			"history": common.PushHistory(user.History, entry, game.HistoryLimit),
		})
		if err != nil {
			return err
		}

		resp = &model.BuyBoostResponse{
			Boost: model.ConvertBoost(boost),
			Score: user.Score - option.Price,
		}
		return nil
	})
	if err != nil {
		var errx errorx.Error
		if errors.As(err, &errx) {
			return nil, errx
		}

		xcontext.Logger(ctx).Errorf("Cannot buy boost: %v", err)
		return nil, errorx.Unknown
	}

	return resp, nil
}

func (d *boostDomain) GetBoosts(
	ctx context.Context, req *model.GetBoostsRequest,
) (*model.GetBoostsResponse, error) {
	boosts, err := d.boostRepo.GetByUserID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get boosts: %v", err)
		return nil, errorx.Unknown
	}

	clientBoosts := []model.Boost{}
	for i := range boosts {
		clientBoosts = append(clientBoosts, model.ConvertBoost(&boosts[i]))
	}

	options := []model.BoostOption{}
	for _, option := range xcontext.Configs(ctx).Game.BoostOptions {
		options = append(options, model.BoostOption{
			Followers: option.Followers,
			Price:     option.Price,
			Best:      option.Best,
		})
	}

	return &model.GetBoostsResponse{Boosts: clientBoosts, Options: options}, nil
}

func boostOptionByFollowers(options []config.BoostOption, followers int) (config.BoostOption, bool) {
	for _, option := range options {
		if option.Followers == followers {
			return option, true
		}
	}

	return config.BoostOption{}, false
}
