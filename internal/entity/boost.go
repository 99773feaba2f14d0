package entity

import (
	"time"
)

type BoostStatus string

const (
	BoostActive    = BoostStatus("active")
	BoostCompleted = BoostStatus("completed")
)

type Boost struct {
	ID        string `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	UserID string `gorm:"index"`

	TargetCount  int
	CurrentCount int
	Status       BoostStatus `gorm:"default:active"`
}
