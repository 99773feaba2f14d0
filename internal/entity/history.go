package entity

import "time"

type HistoryType string

const (
	HistoryTypeEarn    = HistoryType("earn")
	HistoryTypeCheckIn = HistoryType("checkin")
	HistoryTypeBoost   = HistoryType("boost")
)

type HistoryEntry struct {
	ID          int64       `json:"id"`
	Type        HistoryType `json:"type"`
	Description string      `json:"description"`
	Points      int64       `json:"points"`
	CreatedAt   time.Time   `json:"created_at"`
	Link        string      `json:"link,omitempty"`
}
