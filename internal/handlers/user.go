package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/socialnet/backend/internal/i18n"
	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/anonto42/socialnet/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository repositories.UserRepository
	follows        FollowManager
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, follows FollowManager) *UserHandler {
	return &UserHandler{userRepository: userRepo, follows: follows}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/current", h.CurrentUser)
	g.GET("/users/:id", h.GetUser)
	g.PUT("/users/:id", h.UpdateUser)
}

// CurrentUser returns the caller's profile with both sides of the follow graph.
func (h *UserHandler) CurrentUser(c echo.Context) error {
	callerID, err := requireCaller(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByID(ctx, callerID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, tr(c, i18n.UserNotFound))
		}
		return internalError(c, err)
	}

	followers, err := h.follows.Followers(ctx, callerID)
	if err != nil {
		return internalError(c, err)
	}
	following, err := h.follows.Following(ctx, callerID)
	if err != nil {
		return internalError(c, err)
	}

	resp := models.CurrentUser{
		User:           *user,
		Followers:      make([]models.UserCompact, len(followers)),
		Following:      make([]models.UserCompact, len(following)),
		FollowersCount: int64(len(followers)),
		FollowingCount: int64(len(following)),
	}
	for i := range followers {
		resp.Followers[i] = followers[i].ToCompact()
	}
	for i := range following {
		resp.Following[i] = following[i].ToCompact()
	}
	return c.JSON(http.StatusOK, resp)
}

// GetUser returns another user's profile and whether the caller follows them.
func (h *UserHandler) GetUser(c echo.Context) error {
	callerID, err := requireCaller(c)
	if err != nil {
		return err
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, tr(c, i18n.InvalidUserID))
	}
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, tr(c, i18n.UserNotFound))
		}
		return internalError(c, err)
	}

	isFollowing, err := h.follows.IsFollowing(ctx, callerID, id)
	if err != nil {
		return internalError(c, err)
	}
	counts, err := h.follows.Counts(ctx, id)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(http.StatusOK, models.UserProfile{
		User:           *user,
		FollowersCount: counts.Followers,
		FollowingCount: counts.Following,
		IsFollowing:    isFollowing,
	})
}

// UpdateUser updates the caller's own profile
func (h *UserHandler) UpdateUser(c echo.Context) error {
	callerID, err := requireCaller(c)
	if err != nil {
		return err
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, tr(c, i18n.InvalidUserID))
	}
	if id != callerID {
		return echo.NewHTTPError(http.StatusForbidden, tr(c, i18n.Forbidden))
	}

	var req models.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, tr(c, i18n.UserNotFound))
		}
		return internalError(c, err)
	}

	if req.Email != "" && req.Email != user.Email {
		existing, err := h.userRepository.GetUserByEmail(ctx, req.Email)
		if err == nil && existing.ID != id {
			return echo.NewHTTPError(http.StatusBadRequest, tr(c, i18n.EmailTaken))
		}
		if err != nil && !repositories.IsNotFound(err) {
			return internalError(c, err)
		}
		user.Email = req.Email
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.DateOfBirth != nil {
		user.DateOfBirth = req.DateOfBirth
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if req.Location != "" {
		user.Location = req.Location
	}

	if err := h.userRepository.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return echo.NewHTTPError(http.StatusBadRequest, tr(c, i18n.EmailTaken))
		}
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
