package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:64;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash *string   `json:"-" gorm:"size:255"`                       // nil for federated-only accounts
	FirebaseUID  *string   `json:"firebase_uid,omitempty" gorm:"uniqueIndex"` // nil avoids duplicate '' on the unique index
	DisplayName  string    `json:"display_name" gorm:"size:100"`
	AvatarURL    string    `json:"avatar_url" gorm:"size:512"`
	Bio          string    `json:"bio" gorm:"size:500"`
	IsAdmin      bool      `json:"is_admin" gorm:"default:false;index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserCompact is the display shape embedded in notifications and posts.
type UserCompact struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// UserSummary is returned by follower/following listings.
type UserSummary struct {
	ID          uint   `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	Bio         string `json:"bio"`
}

// Name returns the display name, falling back to the username.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.Name(),
		AvatarURL:   u.AvatarURL,
	}
}

func (u *User) ToSummary() UserSummary {
	return UserSummary{
		ID:          u.ID,
		DisplayName: u.Name(),
		AvatarURL:   u.AvatarURL,
		Bio:         u.Bio,
	}
}

type CreateLocalUserRequest struct {
	Username    string `json:"username" validate:"required,alphanum,min=3,max=64"`
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"omitempty,max=100"`
	Password    string `json:"password" validate:"required,min=8"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest has no admin flag: IsAdmin is only changed through the admin API.
type UpdateUserRequest struct {
	DisplayName string `json:"display_name,omitempty" validate:"omitempty,min=1,max=100"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	AvatarURL   string `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Bio         string `json:"bio,omitempty" validate:"omitempty,max=500"`
}

// SetAdminRequest promotes or demotes a user.
type SetAdminRequest struct {
	IsAdmin *bool `json:"is_admin" validate:"required"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}
