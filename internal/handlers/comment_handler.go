package handlers

import (
	"net/http"

	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles comment HTTP requests
type CommentHandler struct {
	content *services.ContentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(content *services.ContentService) *CommentHandler {
	return &CommentHandler{content: content}
}

// RegisterCommentRoutes registers comment routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:id/comments", h.CreateComment)
	g.GET("/posts/:id/comments", h.GetComments)
	g.DELETE("/posts/:id/comments/:comment_id", h.DeleteComment)
}

// CreateComment adds a comment to a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	comment, err := h.content.AddComment(c.Request().Context(), id, c.Param("id"), req.Text)
	if err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusCreated, comment)
}

// GetComments returns a post's comments in order
func (h *CommentHandler) GetComments(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	post, err := h.content.GetPost(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"comments": post.Comments})
}

// DeleteComment removes a comment
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	if err := h.content.DeleteComment(c.Request().Context(), id, c.Param("id"), c.Param("comment_id")); err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Comment deleted"})
}
