package handlers

import (
	"net/http"

	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	engine *services.NotificationEngine
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(engine *services.NotificationEngine) *NotificationHandler {
	return &NotificationHandler{engine: engine}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.POST("/notifications", h.CreateNotification)
	g.GET("/notifications/grouped", h.GetGroupedNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.DELETE("/notifications/:id", h.DeleteNotification)
}

// GetNotifications returns paginated notifications visible to the caller
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	page, limit := pageParams(c)
	list, p, err := h.engine.ListFor(c.Request().Context(), id, page, limit)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"notifications": list},
		"meta":    pageMeta(p),
	})
}

// CreateNotification creates a notification from the caller. Class recipients
// are admin-only; a self-addressed action is skipped rather than stored.
func (h *NotificationHandler) CreateNotification(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	var req models.CreateNotificationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	res, err := h.engine.Create(c.Request().Context(), id, &req)
	if err != nil {
		return respondError(err)
	}
	if res.Skipped {
		return ok(c, http.StatusOK, res)
	}
	return ok(c, http.StatusCreated, res)
}

// GetGroupedNotifications returns notifications grouped by time period
func (h *NotificationHandler) GetGroupedNotifications(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	grouped, err := h.engine.Grouped(ctx, id)
	if err != nil {
		return respondError(err)
	}
	unread, err := h.engine.UnreadCount(ctx, id)
	if err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusOK, echo.Map{
		"today":       grouped.Today,
		"yesterday":   grouped.Yesterday,
		"this_week":   grouped.ThisWeek,
		"older":       grouped.Older,
		"unreadCount": unread,
	})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	count, err := h.engine.UnreadCount(c.Request().Context(), id)
	if err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"count": count})
}

// MarkAsRead marks a single notification as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	notifID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.engine.MarkRead(c.Request().Context(), id, notifID); err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Notification marked as read"})
}

// MarkAllAsRead marks every notification visible to the caller as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	count, err := h.engine.MarkAllRead(c.Request().Context(), id)
	if err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "All notifications marked as read", "count": count})
}

// DeleteNotification deletes a notification addressed to the caller
func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	notifID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.engine.Delete(c.Request().Context(), id, notifID); err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Notification deleted"})
}
