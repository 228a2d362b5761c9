package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/repositories"
	"github.com/anonto42/quill/backend/internal/testutil"
	"github.com/anonto42/quill/backend/pkg/config"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db            *gorm.DB
	users         repositories.UserRepository
	follows       repositories.FollowRepository
	bookmarks     repositories.BookmarkRepository
	notifications repositories.NotificationRepository
	posts         *testutil.MemPosts

	guard    *AuthGuard
	engine   *NotificationEngine
	graph    *SocialGraph
	content  *ContentService
	accounts *AccountService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.OpenTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f := &fixture{
		db:            db,
		users:         repositories.NewPostgresUserRepository(db),
		follows:       repositories.NewPostgresFollowRepository(db),
		bookmarks:     repositories.NewPostgresBookmarkRepository(db),
		notifications: repositories.NewPostgresNotificationRepository(db),
		posts:         testutil.NewMemPosts(),
	}
	f.guard = NewAuthGuard(config.JWTConfig{Secret: "test-secret", Issuer: "quill-test", Expiry: time.Hour}, f.users)
	f.engine = NewNotificationEngine(f.notifications, f.users, logger)
	f.graph = NewSocialGraph(f.users, f.follows, f.bookmarks, f.posts, f.engine, logger)
	f.content = NewContentService(f.posts, f.users, f.follows, f.bookmarks, f.engine, logger)
	f.accounts = NewAccountService(f.users, f.follows, f.bookmarks, f.notifications, f.posts, logger)
	return f
}

func (f *fixture) user(t *testing.T, name string, admin bool) *Identity {
	t.Helper()
	u := testutil.CreateUser(t, f.db, name, admin)
	return &Identity{UserID: u.ID, IsAdmin: u.IsAdmin, User: u}
}

func (f *fixture) post(t *testing.T, author *Identity, title string) string {
	t.Helper()
	v, err := f.content.CreatePost(context.Background(), author, &models.CreatePostRequest{Title: title, Content: "body"})
	require.NoError(t, err)
	return v.ID.Hex()
}

func (f *fixture) countNotifications(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Notification{}).Count(&n).Error)
	return n
}
