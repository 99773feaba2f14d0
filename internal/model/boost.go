package model

type Boost struct {
	ID           string `json:"id"`
	TargetCount  int    `json:"target_count"`
	CurrentCount int    `json:"current_count"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}

type BoostOption struct {
	Followers int   `json:"followers"`
	Price     int64 `json:"price"`
	Best      bool  `json:"best"`
}

type BuyBoostRequest struct {
	Followers int `json:"followers"`
}

type BuyBoostResponse struct {
	Boost Boost `json:"boost"`
	Score int64 `json:"score"`
}

type GetBoostsRequest struct{}

type GetBoostsResponse struct {
	Boosts  []Boost       `json:"boosts"`
	Options []BoostOption `json:"options"`
}
