package handlers

import (
	"net/http"

	"github.com/anonto42/socialnet/backend/internal/i18n"
	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/anonto42/socialnet/backend/internal/repositories"
	"github.com/anonto42/socialnet/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository      repositories.CommentRepository
	postRepository         repositories.PostRepository
	notificationRepository repositories.NotificationRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, notifRepo repositories.NotificationRepository) *CommentHandler {
	return &CommentHandler{
		commentRepository:      commentRepo,
		postRepository:         postRepo,
		notificationRepository: notifRepo,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/comments", h.CreateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// CreateComment creates a new comment on a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	callerID, err := requireCaller(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, req.PostID)
	if err != nil {
		return postError(c, err)
	}

	comment := &models.Comment{
		PostID:  post.ID.Hex(),
		UserID:  callerID,
		Content: req.Content,
	}
	if err := h.commentRepository.CreateComment(ctx, comment); err != nil {
		return internalError(c, err)
	}

	l := logger.Ctx(ctx)
	if err := h.postRepository.IncrementCommentsCount(ctx, comment.PostID, 1); err != nil {
		l.Warn().Err(err).Str("post_id", comment.PostID).Msg("failed to increment comments count")
	}
	if post.AuthorID != callerID {
		notif := &models.Notification{
			Type:        models.NotificationComment,
			ActorID:     callerID,
			RecipientID: post.AuthorID,
			TargetID:    comment.PostID,
			Message:     "commented on your post",
		}
		if err := h.notificationRepository.CreateNotification(ctx, notif); err != nil {
			l.Warn().Err(err).Str("post_id", comment.PostID).Msg("failed to create comment notification")
		}
	}

	return c.JSON(http.StatusCreated, comment)
}

// DeleteComment deletes one of the caller's comments
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	callerID, err := requireCaller(c)
	if err != nil {
		return err
	}
	commentID, ok := parseUintParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, tr(c, i18n.InvalidCommentID))
	}
	ctx := c.Request().Context()

	comment, err := h.commentRepository.GetCommentByID(ctx, commentID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, tr(c, i18n.CommentNotFound))
		}
		return internalError(c, err)
	}

	if comment.UserID != callerID {
		return echo.NewHTTPError(http.StatusForbidden, tr(c, i18n.Forbidden))
	}

	if err := h.commentRepository.DeleteComment(ctx, commentID); err != nil {
		return internalError(c, err)
	}
	if err := h.postRepository.IncrementCommentsCount(ctx, comment.PostID, -1); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("post_id", comment.PostID).Msg("failed to decrement comments count")
	}

	return c.JSON(http.StatusOK, comment)
}
