package handlers

import (
	"net/http"

	"github.com/anonto42/socialnet/backend/internal/i18n"
	"github.com/anonto42/socialnet/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// NotificationHandler serves the caller's notifications
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
}

func NewNotificationHandler(notifRepo repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notificationRepository: notifRepo}
}

func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
}

func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	callerID, err := requireCaller(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	page, limit := pagination(c)

	notifications, total, err := h.notificationRepository.GetByRecipientID(ctx, callerID, page, limit)
	if err != nil {
		return internalError(c, err)
	}
	unread, err := h.notificationRepository.GetUnreadCount(ctx, callerID)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"notifications": notifications,
		"unread_count":  unread,
		"meta":          pageMeta(page, limit, total),
	})
}

func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	callerID, err := requireCaller(c)
	if err != nil {
		return err
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, tr(c, i18n.InvalidNotificationID))
	}

	if err := h.notificationRepository.MarkAsRead(c.Request().Context(), callerID, id); err != nil {
		if repositories.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, tr(c, i18n.NotificationNotFound))
		}
		return internalError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	callerID, err := requireCaller(c)
	if err != nil {
		return err
	}
	if err := h.notificationRepository.MarkAllAsRead(c.Request().Context(), callerID); err != nil {
		return internalError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
