package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	accounts *services.AccountService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(accounts *services.AccountService) *UserHandler {
	return &UserHandler{accounts: accounts}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)       // Get own profile
	g.PUT("/profile", h.UpdateProfile)    // Update own profile
	g.DELETE("/profile", h.DeleteProfile) // Delete own account
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/:id", h.GetUser) // Get other user's profile by ID
}

func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	userID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	profile, err := h.accounts.Profile(c.Request().Context(), id.UserID, userID)
	if err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusOK, profile)
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	profile, err := h.accounts.Profile(c.Request().Context(), id.UserID, id.UserID)
	if err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusOK, profile)
}

// UpdateProfile updates the authenticated user's profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	var req models.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.accounts.UpdateProfile(c.Request().Context(), id, &req)
	if err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusOK, user)
}

// DeleteProfile removes the authenticated user's account and everything it authored
func (h *UserHandler) DeleteProfile(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	if err := h.accounts.DeleteUser(c.Request().Context(), id, id.UserID); err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Account deleted"})
}

// SearchUsers searches users by username, display name or email
func (h *UserHandler) SearchUsers(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return ok(c, http.StatusOK, echo.Map{"users": []models.UserSummary{}})
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	users, err := h.accounts.Search(c.Request().Context(), q, limit)
	if err != nil {
		return respondError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"users": users})
}
