package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/anonto42/quill/backend/internal/apperrors"
	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/repositories"
	"github.com/anonto42/quill/backend/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// Identity is a resolved bearer credential. IsAdmin comes from the stored
// user, so promotion and demotion apply to tokens already issued.
type Identity struct {
	UserID  uint
	IsAdmin bool
	User    *models.User
}

// Audience is the notification visibility scope for this identity.
func (id *Identity) Audience() repositories.Audience {
	return repositories.Audience{UserID: id.UserID, IsAdmin: id.IsAdmin}
}

// AuthGuard issues and resolves HS256 bearer tokens.
type AuthGuard struct {
	cfg   config.JWTConfig
	users repositories.UserRepository
	now   func() time.Time
}

func NewAuthGuard(cfg config.JWTConfig, users repositories.UserRepository) *AuthGuard {
	return &AuthGuard{cfg: cfg, users: users, now: time.Now}
}

// Issue signs a token for user.
func (g *AuthGuard) Issue(user *models.User) (string, error) {
	now := g.now()
	claims := &models.JwtCustomClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    g.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.cfg.Expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(g.cfg.Secret))
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindInternal, err, "could not sign token")
	}
	return signed, nil
}

// Resolve validates tokenString and loads the user it refers to.
func (g *AuthGuard) Resolve(ctx context.Context, tokenString string) (*Identity, error) {
	if tokenString == "" {
		return nil, apperrors.New(apperrors.KindUnauthenticated, "missing bearer token")
	}

	claims := &models.JwtCustomClaims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(g.now),
		jwt.WithExpirationRequired(),
	}
	if g.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(g.cfg.Issuer))
	}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(g.cfg.Secret), nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, apperrors.Wrap(apperrors.KindUnauthenticated, err, "malformed bearer token")
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, apperrors.Wrap(apperrors.KindExpired, err, "token has expired")
		default:
			return nil, apperrors.Wrap(apperrors.KindInvalid, err, "invalid token")
		}
	}
	if claims.UserID == 0 {
		return nil, apperrors.New(apperrors.KindInvalid, "token carries no user")
	}

	user, err := g.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindInvalid, "token user no longer exists")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "could not load token user")
	}
	return &Identity{UserID: user.ID, IsAdmin: user.IsAdmin, User: user}, nil
}

// RequireAdmin fails with Forbidden unless id has the admin capability.
func RequireAdmin(id *Identity) error {
	if id == nil || !id.IsAdmin {
		return apperrors.Forbidden("admin access required")
	}
	return nil
}
