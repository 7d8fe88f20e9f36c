package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type User struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Email       string     `json:"email" gorm:"uniqueIndex;not null"`
	Password    string     `json:"-"` // bcrypt hash, never serialized
	Name        string     `json:"name"`
	AvatarURL   string     `json:"avatar_url,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Bio         string     `json:"bio,omitempty"`
	Location    string     `json:"location,omitempty"`
	FirebaseUID *string    `json:"firebase_uid,omitempty" gorm:"uniqueIndex"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// UserCompact is the author summary embedded in posts, comments and follow lists.
type UserCompact struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL}
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=2,max=50"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	Email       string     `json:"email,omitempty" validate:"omitempty,email"`
	Name        string     `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Bio         string     `json:"bio,omitempty" validate:"omitempty,max=300"`
	Location    string     `json:"location,omitempty" validate:"omitempty,max=100"`
}

// UserProfile is a user as seen by another authenticated user.
type UserProfile struct {
	User
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
	IsFollowing    bool  `json:"is_following"`
}

// CurrentUser is the caller's own profile with both sides of the follow graph.
type CurrentUser struct {
	User
	Followers      []UserCompact `json:"followers"`
	Following      []UserCompact `json:"following"`
	FollowersCount int64         `json:"followers_count"`
	FollowingCount int64         `json:"following_count"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
