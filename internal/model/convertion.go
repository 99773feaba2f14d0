package model

import (
	"time"

	"github.com/xbooster/backend/internal/entity"
	"github.com/xbooster/backend/pkg/dateutil"
)

const DefaultTimeLayout string = time.RFC3339Nano

// Rank thresholds mirror the dashboard badges.
func RankOf(score int64) string {
	switch {
	case score >= 20000:
		return "Titan"
	case score >= 10000:
		return "Whale"
	case score >= 5000:
		return "Alpha"
	case score >= 1000:
		return "Influencer"
	case score >= 500:
		return "Resident"
	default:
		return "Tourist"
	}
}

func LevelOf(score int64) int {
	return int(score/500) + 1
}

func ConvertUser(user *entity.User) User {
	if user == nil {
		return User{}
	}

	return User{
		ID:            user.ID,
		Name:          user.Name,
		Handle:        user.Handle,
		AvatarURL:     user.AvatarURL,
		Score:         user.Score,
		Streak:        user.Streak,
		Rank:          RankOf(user.Score),
		Level:         LevelOf(user.Score),
		CheckedIn:     user.LastCheckIn.Valid && dateutil.IsToday(user.LastCheckIn.String),
		IsOnline:      user.IsOnline,
		Followers:     user.Followers,
		Following:     user.Following,
		WalletAddress: user.WalletAddress.String,
	}
}

func ConvertHistory(entries []entity.HistoryEntry) []HistoryEntry {
	converted := []HistoryEntry{}
	for _, e := range entries {
		converted = append(converted, HistoryEntry{
			ID:          e.ID,
			Type:        string(e.Type),
			Description: e.Description,
			Points:      e.Points,
			CreatedAt:   e.CreatedAt.Format(DefaultTimeLayout),
			Link:        e.Link,
		})
	}
	return converted
}

func ConvertBoost(boost *entity.Boost) Boost {
	if boost == nil {
		return Boost{}
	}

	return Boost{
		ID:           boost.ID,
		TargetCount:  boost.TargetCount,
		CurrentCount: boost.CurrentCount,
		Status:       string(boost.Status),
		CreatedAt:    boost.CreatedAt.Format(DefaultTimeLayout),
	}
}
