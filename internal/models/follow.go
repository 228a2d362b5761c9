package models

import "time"

// Follow is one directed edge: FollowerID follows FollowedID.
// Both sides of the relationship are read from this single row.
type Follow struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	FollowerID uint      `json:"follower_id" gorm:"not null;index;uniqueIndex:idx_follower_followed"`
	FollowedID uint      `json:"followed_id" gorm:"not null;index;uniqueIndex:idx_follower_followed"`
	CreatedAt  time.Time `json:"created_at"`
}

// FollowResult carries both sides of an edge after a follow or unfollow.
type FollowResult struct {
	Following []uint `json:"following"` // actor's following list
	Followers []uint `json:"followers"` // target's followers list
}
