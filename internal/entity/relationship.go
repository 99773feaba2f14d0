package entity

import "time"

// Relationship records a follow edge. FollowedID may reference an account
// outside of our user table, so no foreign key is declared.
type Relationship struct {
	FollowerID string `gorm:"primaryKey"`
	FollowedID string `gorm:"primaryKey"`

	CreatedAt time.Time
}
