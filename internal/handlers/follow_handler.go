package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/anonto42/socialnet/backend/internal/i18n"
	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/anonto42/socialnet/backend/internal/repositories"
	"github.com/anonto42/socialnet/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowManager is the follow-graph service used by the HTTP layer.
type FollowManager interface {
	Follow(ctx context.Context, callerID, targetID uint) (*models.Follow, error)
	Unfollow(ctx context.Context, callerID, targetID uint) error
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
	Followers(ctx context.Context, userID uint) ([]models.User, error)
	Following(ctx context.Context, userID uint) ([]models.User, error)
	Counts(ctx context.Context, userID uint) (models.FollowCounts, error)
}

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	follows        FollowManager
	userRepository repositories.UserRepository
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(follows FollowManager, userRepo repositories.UserRepository) *FollowHandler {
	return &FollowHandler{follows: follows, userRepository: userRepo}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/follow", h.FollowUser)
	g.DELETE("/follow", h.UnfollowUser)
	g.DELETE("/follow/:id", h.UnfollowUser)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
	g.GET("/users/:id/follow-counts", h.GetFollowCounts)
}

// FollowUser makes the caller follow body.followingId.
func (h *FollowHandler) FollowUser(c echo.Context) error {
	callerID, err := requireCaller(c)
	if err != nil {
		return err
	}

	var req models.FollowRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if req.FollowingID != callerID {
		if err := h.ensureUserExists(c, req.FollowingID); err != nil {
			return err
		}
	}

	if _, err := h.follows.Follow(c.Request().Context(), callerID, req.FollowingID); err != nil {
		return h.followError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": tr(c, i18n.FollowCreated)})
}

// UnfollowUser removes the caller's edge to the user in the path. On the
// parameterless route the target comes from the body as followingId.
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	callerID, err := requireCaller(c)
	if err != nil {
		return err
	}

	var targetID uint
	if c.Param("id") != "" {
		id, ok := parseUintParam(c, "id")
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, tr(c, i18n.InvalidUserID))
		}
		targetID = id
	} else {
		var req models.FollowRequest
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
		targetID = req.FollowingID
	}

	if err := h.follows.Unfollow(c.Request().Context(), callerID, targetID); err != nil {
		return h.followError(c, err)
	}
	// 201 is what existing clients of this endpoint expect
	return c.JSON(http.StatusCreated, echo.Map{"message": tr(c, i18n.FollowRemoved)})
}

func (h *FollowHandler) GetFollowers(c echo.Context) error {
	return h.listUsers(c, h.follows.Followers)
}

func (h *FollowHandler) GetFollowing(c echo.Context) error {
	return h.listUsers(c, h.follows.Following)
}

func (h *FollowHandler) GetFollowCounts(c echo.Context) error {
	userID, ok := parseUintParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, tr(c, i18n.InvalidUserID))
	}
	counts, err := h.follows.Counts(c.Request().Context(), userID)
	if err != nil {
		return h.followError(c, err)
	}
	return c.JSON(http.StatusOK, counts)
}

func (h *FollowHandler) listUsers(c echo.Context, list func(context.Context, uint) ([]models.User, error)) error {
	userID, ok := parseUintParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, tr(c, i18n.InvalidUserID))
	}
	if err := h.ensureUserExists(c, userID); err != nil {
		return err
	}
	users, err := list(c.Request().Context(), userID)
	if err != nil {
		return h.followError(c, err)
	}
	compact := make([]models.UserCompact, len(users))
	for i := range users {
		compact[i] = users[i].ToCompact()
	}
	return c.JSON(http.StatusOK, compact)
}

func (h *FollowHandler) ensureUserExists(c echo.Context, id uint) error {
	if _, err := h.userRepository.GetUserByID(c.Request().Context(), id); err != nil {
		if repositories.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, tr(c, i18n.UserNotFound))
		}
		return internalError(c, err)
	}
	return nil
}

// followError maps follow-graph errors to HTTP statuses. Self-follow keeps
// the 500 that existing clients already handle.
func (h *FollowHandler) followError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, services.ErrSelfFollow):
		return echo.NewHTTPError(http.StatusInternalServerError, tr(c, i18n.FollowSelf))
	case errors.Is(err, services.ErrAlreadyFollowing):
		return echo.NewHTTPError(http.StatusBadRequest, tr(c, i18n.FollowExists))
	case errors.Is(err, services.ErrNotFollowing):
		return echo.NewHTTPError(http.StatusNotFound, tr(c, i18n.FollowMissing))
	case errors.Is(err, services.ErrTimeout):
		return echo.NewHTTPError(http.StatusGatewayTimeout, tr(c, i18n.StoreTimeout)).SetInternal(err)
	default:
		return internalError(c, err)
	}
}
