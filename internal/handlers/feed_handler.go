package handlers

import (
	"net/http"

	"github.com/anonto42/quill/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler serves the home feed
type FeedHandler struct {
	content *services.ContentService
}

func NewFeedHandler(content *services.ContentService) *FeedHandler {
	return &FeedHandler{content: content}
}

// RegisterFeedRoutes registers feed routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed returns posts by followed authors and the caller, newest first
func (h *FeedHandler) GetFeed(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	page, limit := pageParams(c)
	posts, err := h.content.Feed(c.Request().Context(), id, page, limit)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"posts": posts},
		"meta": echo.Map{
			"currentPage":     page,
			"itemsPerPage":    limit,
			"hasNextPage":     len(posts) == limit,
			"hasPreviousPage": page > 1,
		},
	})
}
