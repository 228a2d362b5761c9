package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/anonto42/quill/backend/internal/apperrors"
	"github.com/anonto42/quill/backend/internal/services"
	"github.com/labstack/echo/v4"
)

const identityKey = "identity"

// TokenResolver resolves a bearer token to an identity.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*services.Identity, error)
}

func authError(status int, kind apperrors.Kind, message string) *echo.HTTPError {
	return echo.NewHTTPError(status, echo.Map{"success": false, "kind": kind, "message": message})
}

// JWTAuthMiddleware resolves the bearer token and stores the identity in the context.
// Missing, malformed, expired and invalid tokens each get their own 401 message.
func JWTAuthMiddleware(guard TokenResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return authError(http.StatusUnauthorized, apperrors.KindUnauthenticated, "Missing Authorization header")
			}

			// Expecting "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
				return authError(http.StatusUnauthorized, apperrors.KindUnauthenticated, "Invalid Authorization header format")
			}

			id, err := guard.Resolve(c.Request().Context(), parts[1])
			if err != nil {
				switch kind := apperrors.KindOf(err); kind {
				case apperrors.KindUnauthenticated:
					return authError(http.StatusUnauthorized, kind, "Malformed token")
				case apperrors.KindExpired:
					return authError(http.StatusUnauthorized, kind, "Token has expired")
				case apperrors.KindInvalid:
					return authError(http.StatusUnauthorized, kind, "Invalid token")
				default:
					return authError(http.StatusInternalServerError, apperrors.KindInternal, "Could not verify token")
				}
			}

			c.Set(identityKey, id)
			return next(c)
		}
	}
}

// AdminOnly rejects identities without the admin capability. Must run after JWTAuthMiddleware.
func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := services.RequireAdmin(CurrentIdentity(c)); err != nil {
				return authError(http.StatusForbidden, apperrors.KindForbidden, "Admin access required")
			}
			return next(c)
		}
	}
}

// CurrentIdentity returns the identity stored by JWTAuthMiddleware, or nil.
func CurrentIdentity(c echo.Context) *services.Identity {
	id, _ := c.Get(identityKey).(*services.Identity)
	return id
}
