package model

type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Handle    string `json:"handle"`
	AvatarURL string `json:"avatar_url"`

	Score     int64  `json:"score"`
	Streak    int    `json:"streak"`
	Rank      string `json:"rank"`
	Level     int    `json:"level"`
	CheckedIn bool   `json:"checked_in"`

	IsOnline  bool `json:"is_online"`
	Followers int  `json:"followers"`
	Following int  `json:"following"`

	WalletAddress string `json:"wallet_address,omitempty"`
}

type Task struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Handle       string `json:"handle"`
	AvatarURL    string `json:"avatar_url"`
	IsOnline     bool   `json:"is_online"`
	Price        int64  `json:"price"`
	IsFollowBack bool   `json:"is_follow_back"`
}

type HistoryEntry struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Points      int64  `json:"points"`
	CreatedAt   string `json:"created_at"`
	Link        string `json:"link,omitempty"`
}

type GetMeRequest struct{}

type GetMeResponse struct {
	User User `json:"user"`
}

type GetTasksRequest struct{}

type GetTasksResponse struct {
	FollowBack []Task `json:"follow_back"`
	Explore    []Task `json:"explore"`
}

type FollowRequest struct {
	TaskID string `json:"task_id"`
}

type FollowResponse struct {
	// The verification outcome arrives later; pending means the timer
	// has been registered.
	Pending bool `json:"pending"`
}

type CheckInRequest struct{}

type CheckInResponse struct {
	Streak int   `json:"streak"`
	Reward int64 `json:"reward"`
	Score  int64 `json:"score"`
}

type GetHistoryRequest struct{}

type GetHistoryResponse struct {
	History []HistoryEntry `json:"history"`
}

type LinkWalletRequest struct {
	Address string `json:"address"`
}

type LinkWalletResponse struct{}

type UnlinkWalletRequest struct{}

type UnlinkWalletResponse struct{}
