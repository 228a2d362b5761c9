package handlers

import (
	"net/http"

	"github.com/anonto42/quill/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	graph *services.SocialGraph
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(graph *services.SocialGraph) *FollowHandler {
	return &FollowHandler{graph: graph}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
}

// FollowUser follows a user
func (h *FollowHandler) FollowUser(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	targetID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	res, err := h.graph.Follow(c.Request().Context(), id.UserID, targetID)
	if err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusOK, echo.Map{
		"message":   "Successfully followed user",
		"following": res.Following,
		"followers": res.Followers,
	})
}

// UnfollowUser unfollows a user
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	targetID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	res, err := h.graph.Unfollow(c.Request().Context(), id.UserID, targetID)
	if err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusOK, echo.Map{
		"message":   "Successfully unfollowed user",
		"following": res.Following,
		"followers": res.Followers,
	})
}

// GetFollowers lists the users following :id
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	userID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	users, err := h.graph.Followers(c.Request().Context(), userID)
	if err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"followers": users})
}

// GetFollowing lists the users :id follows
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	userID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	users, err := h.graph.Following(c.Request().Context(), userID)
	if err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"following": users})
}
