package models

import "time"

// Bookmark represents a post saved by a user
type Bookmark struct {
	ID      uint      `json:"id" gorm:"primaryKey"`
	UserID  uint      `json:"user_id" gorm:"not null;index;uniqueIndex:idx_user_post_bookmark"`
	PostID  string    `json:"post_id" gorm:"not null;size:24;index;uniqueIndex:idx_user_post_bookmark"` // MongoDB ObjectID hex
	AddedAt time.Time `json:"added_at" gorm:"index"`
}
