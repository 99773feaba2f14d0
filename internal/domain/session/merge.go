package session

import (
	"database/sql"
	"strings"

	"github.com/xbooster/backend/config"
	"github.com/xbooster/backend/internal/entity"
)

const (
	DefaultName      = "User"
	DefaultHandle    = "user"
	DefaultAvatarURL = "https://picsum.photos/100/100"
)

// Identity is the profile the oauth2 service vouches for.
type Identity struct {
	UserID    string
	Name      string
	Handle    string
	AvatarURL string
}

// CachedProfile is the last snapshot written to redis. Numeric fields are
// pointers so an absent field never shadows a zero value.
type CachedProfile struct {
	Name      string  `json:"name"`
	Handle    string  `json:"handle"`
	AvatarURL string  `json:"avatar_url"`
	Score     *int64  `json:"score"`
	Streak    *int    `json:"streak"`
	CheckIn   *string `json:"check_in"`
}

// NormalizeAvatarURL rewrites thumbnail avatar links to their full-size
// variant. Applying it twice gives the same result.
func NormalizeAvatarURL(url string) string {
	return strings.ReplaceAll(url, "_normal", "")
}

// Merge combines profile sources with a fixed precedence per field: the
// stored row wins, then the cached snapshot, then the verified identity,
// then defaults. Missing fields fall through instead of dragging the whole
// source along.
func Merge(
	identity Identity, remote *entity.User, cached *CachedProfile, game config.GameConfigs,
) entity.User {
	merged := entity.User{
		Base:   entity.Base{ID: identity.UserID},
		Name:   DefaultName,
		Handle: DefaultHandle,
		Score:  game.DefaultScore,
	}

	if identity.Name != "" {
		merged.Name = identity.Name
	}
	if identity.Handle != "" {
		merged.Handle = identity.Handle
	}
	avatar := identity.AvatarURL

	if cached != nil {
		if cached.Name != "" {
			merged.Name = cached.Name
		}
		if cached.Handle != "" {
			merged.Handle = cached.Handle
		}
		if cached.AvatarURL != "" {
			avatar = cached.AvatarURL
		}
		if cached.Score != nil {
			merged.Score = *cached.Score
		}
		if cached.Streak != nil {
			merged.Streak = *cached.Streak
		}
		if cached.CheckIn != nil {
			merged.LastCheckIn = sql.NullString{Valid: true, String: *cached.CheckIn}
		}
	}

	if remote != nil {
		merged.Base = remote.Base
		if remote.Name != "" {
			merged.Name = remote.Name
		}
		if remote.Handle != "" {
			merged.Handle = remote.Handle
		}
		if remote.AvatarURL != "" {
			avatar = remote.AvatarURL
		}
		merged.Score = remote.Score
		merged.Streak = remote.Streak
		merged.LastCheckIn = remote.LastCheckIn
		merged.Followers = remote.Followers
		merged.Following = remote.Following
		merged.WalletAddress = remote.WalletAddress
		merged.History = remote.History
		merged.CompletedTasks = remote.CompletedTasks
	}

	if avatar == "" {
		avatar = DefaultAvatarURL
	}
	merged.AvatarURL = NormalizeAvatarURL(avatar)

	return merged
}

func snapshotOf(user *entity.User) CachedProfile {
	snapshot := CachedProfile{
		Name:      user.Name,
		Handle:    user.Handle,
		AvatarURL: user.AvatarURL,
		Score:     &user.Score,
		Streak:    &user.Streak,
	}

	if user.LastCheckIn.Valid {
		checkIn := user.LastCheckIn.String
		snapshot.CheckIn = &checkIn
	}

	return snapshot
}
