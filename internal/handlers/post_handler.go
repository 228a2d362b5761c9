package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	content *services.ContentService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(content *services.ContentService) *PostHandler {
	return &PostHandler{content: content}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.GET("/posts", h.GetPosts) // Get all posts or posts by user (with query param)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	post, err := h.content.CreatePost(c.Request().Context(), id, &req)
	if err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusCreated, post)
}

// GetPost retrieves a single post
func (h *PostHandler) GetPost(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	post, err := h.content.GetPost(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusOK, post)
}

// GetPosts lists posts, optionally filtered by ?author_id=
func (h *PostHandler) GetPosts(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	var authorID uint
	if v := c.QueryParam("author_id"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid author_id")
		}
		authorID = uint(parsed)
	}
	page, limit := pageParams(c)
	posts, err := h.content.ListPosts(c.Request().Context(), id, authorID, page, limit)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"posts": posts},
		"meta":    echo.Map{"currentPage": page, "itemsPerPage": limit, "hasNextPage": len(posts) == limit},
	})
}

// UpdatePost updates a post owned by the caller (or any post, for admins)
func (h *PostHandler) UpdatePost(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	post, err := h.content.UpdatePost(c.Request().Context(), id, c.Param("id"), &req)
	if err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusOK, post)
}

// DeletePost deletes a post owned by the caller (or any post, for admins)
func (h *PostHandler) DeletePost(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	if err := h.content.DeletePost(c.Request().Context(), id, c.Param("id")); err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Post deleted"})
}
