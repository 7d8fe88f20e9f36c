package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/socialnet/backend/internal/i18n"
	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/anonto42/socialnet/backend/internal/repositories"
	"github.com/anonto42/socialnet/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likeRepository         repositories.LikeRepository
	postRepository         repositories.PostRepository
	notificationRepository repositories.NotificationRepository
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likeRepo repositories.LikeRepository, postRepo repositories.PostRepository, notifRepo repositories.NotificationRepository) *LikeHandler {
	return &LikeHandler{
		likeRepository:         likeRepo,
		postRepository:         postRepo,
		notificationRepository: notifRepo,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/likes", h.LikePost)
	g.DELETE("/likes/:id", h.UnlikePost)
}

// LikePost likes body.postId. The unique (post, user) index backs the
// duplicate check.
func (h *LikeHandler) LikePost(c echo.Context) error {
	callerID, err := requireCaller(c)
	if err != nil {
		return err
	}

	var req models.CreateLikeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, req.PostID)
	if err != nil {
		return postError(c, err)
	}
	postID := post.ID.Hex()

	hasLiked, err := h.likeRepository.HasUserLikedPost(ctx, postID, callerID)
	if err != nil {
		return internalError(c, err)
	}
	if hasLiked {
		return echo.NewHTTPError(http.StatusBadRequest, tr(c, i18n.LikeExists))
	}

	like := &models.Like{PostID: postID, UserID: callerID}
	if err := h.likeRepository.CreateLike(ctx, like); err != nil {
		if errors.Is(err, repositories.ErrAlreadyLiked) {
			return echo.NewHTTPError(http.StatusBadRequest, tr(c, i18n.LikeExists))
		}
		return internalError(c, err)
	}

	l := logger.Ctx(ctx)
	if err := h.postRepository.IncrementLikesCount(ctx, postID, 1); err != nil {
		l.Warn().Err(err).Str("post_id", postID).Msg("failed to increment likes count")
	}
	if post.AuthorID != callerID {
		notif := &models.Notification{
			Type:        models.NotificationLike,
			ActorID:     callerID,
			RecipientID: post.AuthorID,
			TargetID:    postID,
			Message:     "liked your post",
		}
		if err := h.notificationRepository.CreateNotification(ctx, notif); err != nil {
			l.Warn().Err(err).Str("post_id", postID).Msg("failed to create like notification")
		}
	}

	return c.JSON(http.StatusCreated, like)
}

// UnlikePost removes the caller's like from the post in the path
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	callerID, err := requireCaller(c)
	if err != nil {
		return err
	}
	postID := c.Param("id")
	ctx := c.Request().Context()

	if err := h.likeRepository.DeleteLike(ctx, postID, callerID); err != nil {
		if errors.Is(err, repositories.ErrLikeNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, tr(c, i18n.LikeMissing))
		}
		return internalError(c, err)
	}

	if err := h.postRepository.IncrementLikesCount(ctx, postID, -1); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("post_id", postID).Msg("failed to decrement likes count")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": tr(c, i18n.LikeRemoved)})
}
