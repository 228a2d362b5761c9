package handlers

import (
	"net/http"

	"github.com/anonto42/quill/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// BookmarkHandler handles bookmark HTTP requests
type BookmarkHandler struct {
	graph *services.SocialGraph
}

// NewBookmarkHandler creates a new BookmarkHandler
func NewBookmarkHandler(graph *services.SocialGraph) *BookmarkHandler {
	return &BookmarkHandler{graph: graph}
}

// RegisterBookmarkRoutes registers bookmark routes
func (h *BookmarkHandler) RegisterBookmarkRoutes(g *echo.Group) {
	g.POST("/posts/:id/bookmark", h.AddBookmark)
	g.DELETE("/posts/:id/bookmark", h.RemoveBookmark)
	g.GET("/bookmarks", h.GetBookmarks)
}

func (h *BookmarkHandler) toggle(c echo.Context, add bool, message string) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	list, err := h.graph.ToggleBookmark(c.Request().Context(), id.UserID, c.Param("id"), add)
	if err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": message, "bookmarks": list})
}

// AddBookmark bookmarks a post
func (h *BookmarkHandler) AddBookmark(c echo.Context) error {
	return h.toggle(c, true, "Post bookmarked")
}

// RemoveBookmark removes a bookmark
func (h *BookmarkHandler) RemoveBookmark(c echo.Context) error {
	return h.toggle(c, false, "Bookmark removed")
}

// GetBookmarks lists the current user's bookmarks, most recent first
func (h *BookmarkHandler) GetBookmarks(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	list, err := h.graph.Bookmarks(c.Request().Context(), id.UserID)
	if err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"bookmarks": list})
}
