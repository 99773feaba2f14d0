package model

type LeaderboardEntry struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Handle    string `json:"handle"`
	AvatarURL string `json:"avatar_url"`
	Score     int64  `json:"score"`
	Position  int    `json:"position"`
}

type GetLeaderboardRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type GetLeaderboardResponse struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`

	// Requester's position, zero when not ranked yet.
	MyPosition int `json:"my_position"`
}
