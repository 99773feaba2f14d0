package entity

import (
	"database/sql"
	"time"
)

type User struct {
	Base

	Name      string
	Handle    string
	AvatarURL string

	Score  int64
	Streak int

	// Calendar day (UTC) of the last successful check-in.
	LastCheckIn sql.NullString

	IsOnline bool
	LastSeen time.Time

	Followers int
	Following int

	WalletAddress sql.NullString

	// Newest-first activity entries, capped.
	History Array[HistoryEntry] `gorm:"type:text"`

	// Durable copy of the completed-task set, merged with the session
	// cache at reconcile time.
	CompletedTasks Array[string] `gorm:"type:text"`
}
