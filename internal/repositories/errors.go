package repositories

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrFollowNotFound   = errors.New("follow relationship not found")
	ErrAlreadyFollowing = errors.New("already following")
	ErrLikeNotFound     = errors.New("like not found")
	ErrAlreadyLiked     = errors.New("post already liked")
	ErrPostNotFound     = errors.New("post not found")
)

// isUniqueViolation reports whether err is a unique-constraint violation.
// The connection must be opened with gorm.Config{TranslateError: true}.
func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
