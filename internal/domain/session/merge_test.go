package session_test

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xbooster/backend/config"
	"github.com/xbooster/backend/internal/domain/session"
	"github.com/xbooster/backend/internal/entity"
)

var game = config.GameConfigs{DefaultScore: 500}

func TestMergeDefaults(t *testing.T) {
	merged := session.Merge(session.Identity{UserID: "user1"}, nil, nil, game)

	require.Equal(t, "user1", merged.ID)
	require.Equal(t, session.DefaultName, merged.Name)
	require.Equal(t, session.DefaultHandle, merged.Handle)
	require.Equal(t, session.DefaultAvatarURL, merged.AvatarURL)
	require.Equal(t, int64(500), merged.Score)
	require.Equal(t, 0, merged.Streak)
	require.False(t, merged.LastCheckIn.Valid)
}

func TestMergeIdentityOverDefaults(t *testing.T) {
	identity := session.Identity{
		UserID:    "user1",
		Name:      "Fresh User",
		Handle:    "fresh",
		AvatarURL: "https://example.com/a_normal.jpg",
	}

	merged := session.Merge(identity, nil, nil, game)
	require.Equal(t, "Fresh User", merged.Name)
	require.Equal(t, "fresh", merged.Handle)
	require.Equal(t, "https://example.com/a.jpg", merged.AvatarURL)
	require.Equal(t, int64(500), merged.Score)
}

func TestMergeCachedOverIdentity(t *testing.T) {
	score := int64(1200)
	streak := 3
	checkIn := "2024-03-01"
	cached := &session.CachedProfile{
		Name:    "Cached User",
		Score:   &score,
		Streak:  &streak,
		CheckIn: &checkIn,
	}

	merged := session.Merge(session.Identity{UserID: "user1", Name: "Fresh"}, nil, cached, game)
	require.Equal(t, "Cached User", merged.Name)
	require.Equal(t, int64(1200), merged.Score)
	require.Equal(t, 3, merged.Streak)
	require.Equal(t, "2024-03-01", merged.LastCheckIn.String)
}

func TestMergeRemoteWinsEverything(t *testing.T) {
	score := int64(9999)
	cached := &session.CachedProfile{Name: "Cached User", Score: &score}
	remote := &entity.User{
		Base:        entity.Base{ID: "user1"},
		Name:        "Remote User",
		Handle:      "remote",
		AvatarURL:   "https://example.com/r_normal.jpg",
		Score:       700,
		Streak:      5,
		LastCheckIn: sql.NullString{Valid: true, String: "2024-03-02"},
	}

	merged := session.Merge(session.Identity{UserID: "user1", Name: "Fresh"}, remote, cached, game)
	require.Equal(t, "Remote User", merged.Name)
	require.Equal(t, "remote", merged.Handle)
	require.Equal(t, "https://example.com/r.jpg", merged.AvatarURL)
	require.Equal(t, int64(700), merged.Score)
	require.Equal(t, 5, merged.Streak)
	require.Equal(t, "2024-03-02", merged.LastCheckIn.String)
}

func TestMergeRemoteZeroScoreWins(t *testing.T) {
	// A zero stored score is a real value, not a gap to fill.
	cachedScore := int64(800)
	cached := &session.CachedProfile{Score: &cachedScore}
	remote := &entity.User{Base: entity.Base{ID: "user1"}, Name: "Remote", Score: 0}

	merged := session.Merge(session.Identity{UserID: "user1"}, remote, cached, game)
	require.Equal(t, int64(0), merged.Score)
}

func TestNormalizeAvatarURLIdempotent(t *testing.T) {
	url := "https://pbs.twimg.com/profile_images/1/x_normal.jpg"
	once := session.NormalizeAvatarURL(url)
	require.Equal(t, "https://pbs.twimg.com/profile_images/1/x.jpg", once)
	require.Equal(t, once, session.NormalizeAvatarURL(once))
}
