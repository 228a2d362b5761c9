package handlers

import (
	"net/http"

	"github.com/anonto42/quill/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles like HTTP requests
type LikeHandler struct {
	content *services.ContentService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(content *services.ContentService) *LikeHandler {
	return &LikeHandler{content: content}
}

// RegisterLikeRoutes registers like routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.ToggleLike)
	g.GET("/posts/:id/likes", h.GetLikeStatus)
}

// ToggleLike likes the post, or unlikes it when the caller already liked it
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	res, err := h.content.ToggleLike(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusOK, res)
}

// GetLikeStatus returns the like count and whether the caller liked the post
func (h *LikeHandler) GetLikeStatus(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	post, err := h.content.GetPost(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"liked": post.Liked, "likes_count": post.LikesCount})
}
