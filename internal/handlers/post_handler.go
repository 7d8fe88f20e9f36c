package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/anonto42/socialnet/backend/internal/i18n"
	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/anonto42/socialnet/backend/internal/repositories"
	"github.com/anonto42/socialnet/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository    repositories.PostRepository
	userRepository    repositories.UserRepository
	likeRepository    repositories.LikeRepository
	commentRepository repositories.CommentRepository
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	likeRepo repositories.LikeRepository,
	commentRepo repositories.CommentRepository,
) *PostHandler {
	return &PostHandler{
		postRepository:    postRepo,
		userRepository:    userRepo,
		likeRepository:    likeRepo,
		commentRepository: commentRepo,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts", h.GetAllPosts)
	g.GET("/posts/:id", h.GetPostByID)
	g.DELETE("/posts/:id", h.DeletePost)
}

func (h *PostHandler) CreatePost(c echo.Context) error {
	callerID, err := requireCaller(c)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post := &models.Post{AuthorID: callerID, Content: req.Content}
	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusCreated, post)
}

// GetAllPosts returns the newest posts enriched with author and like state.
func (h *PostHandler) GetAllPosts(c echo.Context) error {
	callerID, err := requireCaller(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	page, limit := pagination(c)

	posts, err := h.postRepository.GetAllPosts(ctx, int64((page-1)*limit), int64(limit))
	if err != nil {
		return internalError(c, err)
	}
	total, err := h.postRepository.CountPosts(ctx)
	if err != nil {
		return internalError(c, err)
	}

	enriched, err := h.enrich(ctx, callerID, posts)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"posts": enriched,
		"meta":  pageMeta(page, limit, total),
	})
}

// GetPostByID returns one post with its comments.
func (h *PostHandler) GetPostByID(c echo.Context) error {
	callerID, err := requireCaller(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, c.Param("id"))
	if err != nil {
		return postError(c, err)
	}

	enriched, err := h.enrich(ctx, callerID, []models.Post{*post})
	if err != nil {
		return internalError(c, err)
	}
	result := enriched[0]

	comments, err := h.commentRepository.GetCommentsByPostID(ctx, post.ID.Hex())
	if err != nil {
		return internalError(c, err)
	}
	authorIDs := make([]uint, len(comments))
	for i, cm := range comments {
		authorIDs[i] = cm.UserID
	}
	authors, err := h.userRepository.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return internalError(c, err)
	}
	result.Comments = make([]models.CommentWithAuthor, len(comments))
	for i, cm := range comments {
		author := authors[cm.UserID]
		result.Comments[i] = models.CommentWithAuthor{Comment: cm, Author: author.ToCompact()}
	}

	return c.JSON(http.StatusOK, result)
}

// DeletePost deletes the caller's post together with its comments and likes.
func (h *PostHandler) DeletePost(c echo.Context) error {
	callerID, err := requireCaller(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, c.Param("id"))
	if err != nil {
		return postError(c, err)
	}
	if post.AuthorID != callerID {
		return echo.NewHTTPError(http.StatusForbidden, tr(c, i18n.Forbidden))
	}

	postID := post.ID.Hex()
	if err := h.postRepository.DeletePost(ctx, postID); err != nil {
		return postError(c, err)
	}
	if err := h.commentRepository.DeleteCommentsByPostID(ctx, postID); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("post_id", postID).Msg("failed to delete comments of deleted post")
	}
	if err := h.likeRepository.DeleteLikesByPostID(ctx, postID); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("post_id", postID).Msg("failed to delete likes of deleted post")
	}

	return c.JSON(http.StatusOK, post)
}

func (h *PostHandler) enrich(ctx context.Context, callerID uint, posts []models.Post) ([]models.EnrichedPost, error) {
	authorIDs := make([]uint, 0, len(posts))
	postIDs := make([]string, len(posts))
	for i, p := range posts {
		authorIDs = append(authorIDs, p.AuthorID)
		postIDs[i] = p.ID.Hex()
	}

	authors, err := h.userRepository.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	liked, err := h.likeRepository.GetLikedPostIDs(ctx, callerID, postIDs)
	if err != nil {
		return nil, err
	}

	enriched := make([]models.EnrichedPost, len(posts))
	for i, p := range posts {
		author := authors[p.AuthorID]
		enriched[i] = models.EnrichedPost{
			Post:        p,
			Author:      author.ToCompact(),
			LikedByUser: liked[postIDs[i]],
		}
	}
	return enriched, nil
}

func postError(c echo.Context, err error) error {
	if errors.Is(err, repositories.ErrPostNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, tr(c, i18n.PostNotFound))
	}
	return internalError(c, err)
}
