package handlers

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/quill/backend/internal/apperrors"
	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenIssuer signs local bearer tokens.
type TokenIssuer interface {
	Issue(user *models.User) (string, error)
}

// FirebaseVerifier verifies Firebase ID tokens. *auth.Client satisfies it.
type FirebaseVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	tokens         TokenIssuer
	firebaseAuth   FirebaseVerifier
}

// NewAuthHandler creates a new AuthHandler. firebaseAuth may be nil, which
// disables federated login.
func NewAuthHandler(userRepo repositories.UserRepository, tokens TokenIssuer, firebaseAuth FirebaseVerifier) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		tokens:         tokens,
		firebaseAuth:   firebaseAuth,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
	g.POST("/firebase-login", h.FirebaseLogin)
}

func (h *AuthHandler) respondWithToken(c echo.Context, status int, user *models.User) error {
	token, err := h.tokens.Issue(user)
	if err != nil {
		return respondError(err)
	}
	return ok(c, status, echo.Map{"token": token, "user": user})
}

// Signup handles local user registration with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.CreateLocalUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	email := strings.ToLower(strings.TrimSpace(req.Email))

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fail(http.StatusInternalServerError, apperrors.KindInternal, "Failed to hash password")
	}
	hash := string(hashedPassword)

	user := &models.User{
		Username:     req.Username,
		Email:        email,
		DisplayName:  req.DisplayName,
		PasswordHash: &hash,
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fail(http.StatusConflict, apperrors.KindValidationFailed, "Username or email already registered")
		}
		return fail(http.StatusInternalServerError, apperrors.KindInternal, "Failed to create user")
	}

	return h.respondWithToken(c, http.StatusCreated, user)
}

// SignIn handles local user authentication with email and password
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SignInRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByEmail(c.Request().Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(http.StatusUnauthorized, apperrors.KindInvalid, "Invalid email or password")
		}
		return fail(http.StatusInternalServerError, apperrors.KindInternal, "Database error")
	}

	// Federated-only accounts have no password.
	if user.PasswordHash == nil {
		return fail(http.StatusUnauthorized, apperrors.KindInvalid, "Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return fail(http.StatusUnauthorized, apperrors.KindInvalid, "Invalid email or password")
	}

	return h.respondWithToken(c, http.StatusOK, user)
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

var usernameUnsafe = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// federatedUsername derives a unique-enough username from the email and UID.
func federatedUsername(email, uid string) string {
	local := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		local = email[:i]
	}
	local = usernameUnsafe.ReplaceAllString(local, "")
	if len(local) > 40 {
		local = local[:40]
	}
	suffix := usernameUnsafe.ReplaceAllString(uid, "")
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return strings.ToLower(local + suffix)
}

// FirebaseLogin verifies a Firebase ID token and issues a local JWT, linking or
// creating the local account.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	if h.firebaseAuth == nil {
		return fail(http.StatusServiceUnavailable, apperrors.KindInternal, "Federated login is not configured")
	}
	var req FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	// Verify Firebase ID token
	token, err := h.firebaseAuth.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return fail(http.StatusUnauthorized, apperrors.KindInvalid, "Invalid Firebase ID token")
	}

	firebaseUID := token.UID
	email, _ := token.Claims["email"].(string)
	if email == "" {
		return fail(http.StatusBadRequest, apperrors.KindValidationFailed, "Firebase account has no email")
	}
	email = strings.ToLower(email)
	name, _ := token.Claims["name"].(string)
	picture, _ := token.Claims["picture"].(string)

	// Try to find user by Firebase UID, then by email
	user, err := h.userRepository.GetUserByFirebaseUID(ctx, firebaseUID)
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		user, err = h.userRepository.GetUserByEmail(ctx, email)
		switch {
		case err == nil:
			// Existing local account: link it.
			user.FirebaseUID = &firebaseUID
			if err := h.userRepository.UpdateUser(ctx, user); err != nil {
				return fail(http.StatusInternalServerError, apperrors.KindInternal, "Failed to link Firebase account")
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = &models.User{
				Username:    federatedUsername(email, firebaseUID),
				Email:       email,
				DisplayName: name,
				AvatarURL:   picture,
				FirebaseUID: &firebaseUID,
			}
			if err := h.userRepository.CreateUser(ctx, user); err != nil {
				return fail(http.StatusInternalServerError, apperrors.KindInternal, "Failed to create user")
			}
		default:
			return fail(http.StatusInternalServerError, apperrors.KindInternal, "Database error")
		}
	default:
		return fail(http.StatusInternalServerError, apperrors.KindInternal, "Database error")
	}

	return h.respondWithToken(c, http.StatusOK, user)
}
