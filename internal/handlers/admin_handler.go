package handlers

import (
	"net/http"

	"github.com/anonto42/quill/backend/internal/middleware"
	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AdminHandler serves the admin panel endpoints.
type AdminHandler struct {
	engine   *services.NotificationEngine
	accounts *services.AccountService
}

func NewAdminHandler(engine *services.NotificationEngine, accounts *services.AccountService) *AdminHandler {
	return &AdminHandler{engine: engine, accounts: accounts}
}

// RegisterAdminRoutes mounts admin routes on g. The caller must already have
// applied JWT authentication to g.
func (h *AdminHandler) RegisterAdminRoutes(g *echo.Group) {
	g.Use(middleware.AdminOnly())

	g.POST("/notifications", h.Broadcast)
	g.GET("/notifications", h.ListNotifications)
	g.GET("/notifications/stats", h.Stats)
	g.PUT("/notifications/read-all", h.MarkAllRead)
	g.PUT("/notifications/:id/read", h.MarkRead)
	g.DELETE("/notifications/:id", h.DeleteNotification)

	g.DELETE("/users/:id", h.DeleteUser)
	g.PUT("/users/:id/admin", h.SetAdmin)
}

// Broadcast sends a notification to a class ("all", "admins") or a single user.
func (h *AdminHandler) Broadcast(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	var req models.BroadcastRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	n, err := h.engine.Broadcast(c.Request().Context(), id, models.NotificationType(req.Type), req.Message, req.Recipient)
	if err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusCreated, n)
}

func (h *AdminHandler) ListNotifications(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	page, limit := pageParams(c)
	list, p, err := h.engine.ListAll(c.Request().Context(), id, page, limit)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"notifications": list},
		"meta":    pageMeta(p),
	})
}

func (h *AdminHandler) Stats(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	stats, err := h.engine.Stats(c.Request().Context(), id)
	if err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusOK, stats)
}

// MarkAllRead takes ?scope=all|admins|<user id>, defaulting to all.
func (h *AdminHandler) MarkAllRead(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	scope := c.QueryParam("scope")
	if scope == "" {
		scope = string(models.ClassAll)
	}
	count, err := h.engine.AdminMarkAllRead(c.Request().Context(), id, scope)
	if err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"count": count})
}

func (h *AdminHandler) MarkRead(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	notifID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.engine.AdminMarkRead(c.Request().Context(), id, notifID); err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Notification marked as read"})
}

func (h *AdminHandler) DeleteNotification(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	notifID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.engine.AdminDelete(c.Request().Context(), id, notifID); err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Notification deleted"})
}

// DeleteUser removes a user and every record that references them.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	userID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.accounts.DeleteUser(c.Request().Context(), id, userID); err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "User deleted"})
}

func (h *AdminHandler) SetAdmin(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	userID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var req models.SetAdminRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.accounts.SetAdmin(c.Request().Context(), id, userID, *req.IsAdmin)
	if err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusOK, user)
}
