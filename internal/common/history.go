package common

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/xbooster/backend/internal/entity"
)

// PushHistory prepends entry and drops the oldest entries past limit, so
// the list stays newest-first and bounded.
func PushHistory(
	history entity.Array[entity.HistoryEntry], entry entity.HistoryEntry, limit int,
) entity.Array[entity.HistoryEntry] {
	result := make(entity.Array[entity.HistoryEntry], 0, len(history)+1)
	result = append(result, entry)
	result = append(result, history...)
	if len(result) > limit {
		result = result[:limit]
	}

	return result
}

func NewHistoryEntry(
	generator *snowflake.Node,
	historyType entity.HistoryType,
	description string,
	points int64,
	link string,
) entity.HistoryEntry {
	return entity.HistoryEntry{
		ID:          generator.Generate().Int64(),
		Type:        historyType,
		Description: description,
		Points:      points,
		CreatedAt:   time.Now(),
		Link:        link,
	}
}

// DailyFollowCounter tracks rewarded follows per calendar day. A stored
// date other than today means the counter has expired.
type DailyFollowCounter struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
