package models

import "time"

// Like represents a like on a post
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"not null;index;uniqueIndex:idx_like_post_user"` // MongoDB ObjectID as hex
	UserID    uint      `json:"user_id" gorm:"not null;index;uniqueIndex:idx_like_post_user"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateLikeRequest defines the request body for liking a post
type CreateLikeRequest struct {
	PostID string `json:"postId" validate:"required"`
}
