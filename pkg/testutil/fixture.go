package testutil

import (
	"context"

	"github.com/xbooster/backend/internal/entity"
	"github.com/xbooster/backend/internal/repository"
)

var (
	User1 = entity.User{
		Base:      entity.Base{ID: "user1"},
		Name:      "User One",
		Handle:    "user_one",
		AvatarURL: "https://picsum.photos/100/100?random=101",
		Score:     500,
	}

	User2 = entity.User{
		Base:      entity.Base{ID: "user2"},
		Name:      "User Two",
		Handle:    "user_two",
		AvatarURL: "https://picsum.photos/100/100?random=102",
		Score:     1200,
		IsOnline:  true,
	}

	User3 = entity.User{
		Base:      entity.Base{ID: "user3"},
		Name:      "User Three",
		Handle:    "user_three",
		AvatarURL: "https://picsum.photos/100/100?random=103",
		Score:     80,
	}
)

// CreateFixtureDb seeds users plus one follow edge, user2 -> user1.
func CreateFixtureDb(ctx context.Context) {
	userRepo := repository.NewUserRepository()
	for _, user := range []entity.User{User1, User2, User3} {
		user := user
		if err := userRepo.Create(ctx, &user); err != nil {
			panic(err)
		}
	}

	relationshipRepo := repository.NewRelationshipRepository()
	err := relationshipRepo.Create(ctx, &entity.Relationship{
		FollowerID: User2.ID,
		FollowedID: User1.ID,
	})
	if err != nil {
		panic(err)
	}
}
