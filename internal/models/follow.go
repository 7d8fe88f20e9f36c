package models

import "time"

// Follow is a directed edge: FollowerID follows FollowingID.
// The composite unique index keeps at most one edge per ordered pair.
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  uint      `json:"follower_id" gorm:"not null;index;uniqueIndex:idx_follower_following"`
	FollowingID uint      `json:"following_id" gorm:"not null;index;uniqueIndex:idx_follower_following"`
	Follower    *User     `json:"-" gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Following   *User     `json:"-" gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time `json:"created_at"`
}

type FollowRequest struct {
	FollowingID uint `json:"followingId" validate:"required"`
}

// FollowCounts is the size of both sides of a user's follow graph.
type FollowCounts struct {
	UserID    uint  `json:"user_id"`
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}
