package entity

import (
	"context"

	"github.com/xbooster/backend/pkg/xcontext"
)

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&User{},
		&OAuth2{},
		&RefreshToken{},
		&Relationship{},
		&Boost{},
	)
}
