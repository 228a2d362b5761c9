package repositories_test

import (
	"context"
	"testing"

	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/repositories"
	"github.com/anonto42/quill/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedNotification(t *testing.T, repo repositories.NotificationRepository, sender uint, r models.Recipient, typ models.NotificationType) *models.Notification {
	t.Helper()
	n := &models.Notification{Type: typ, SenderID: sender}
	if typ.RequiresMessage() {
		n.Message = "hello"
	}
	n.SetRecipient(r)
	require.NoError(t, repo.CreateNotification(context.Background(), n))
	return n
}

func ids(list []models.Notification) []uint {
	out := make([]uint, 0, len(list))
	for _, n := range list {
		out = append(out, n.ID)
	}
	return out
}

func TestNotificationRepository_VisibilityPredicate(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repositories.NewPostgresNotificationRepository(db)
	ctx := context.Background()

	admin := testutil.CreateUser(t, db, "admin", true)
	reader := testutil.CreateUser(t, db, "reader", false)
	other := testutil.CreateUser(t, db, "other", false)

	n1 := seedNotification(t, repo, admin.ID, models.UserRecipient{ID: reader.ID}, models.TypeMessage)
	n2 := seedNotification(t, repo, admin.ID, models.ClassRecipient{Class: models.ClassAll}, models.TypeAnnouncement)
	n3 := seedNotification(t, repo, admin.ID, models.ClassRecipient{Class: models.ClassAdmins}, models.TypeAlert)
	seedNotification(t, repo, admin.ID, models.UserRecipient{ID: other.ID}, models.TypeMessage)

	tests := []struct {
		name     string
		audience repositories.Audience
		want     []uint
	}{
		{"regular user", repositories.Audience{UserID: reader.ID}, []uint{n2.ID, n1.ID}},
		{"promoted to admin", repositories.Audience{UserID: reader.ID, IsAdmin: true}, []uint{n3.ID, n2.ID, n1.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, total, err := repo.ListFor(ctx, tt.audience, 1, 20)
			require.NoError(t, err)
			assert.EqualValues(t, len(tt.want), total)
			assert.ElementsMatch(t, tt.want, ids(list))

			unread, err := repo.CountUnreadFor(ctx, tt.audience)
			require.NoError(t, err)
			assert.Equal(t, total, unread, "unread count uses the listing predicate")
		})
	}
}

func TestNotificationRepository_ListNewestFirstAndPaginated(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repositories.NewPostgresNotificationRepository(db)
	ctx := context.Background()

	sender := testutil.CreateUser(t, db, "sender", false)
	reader := testutil.CreateUser(t, db, "reader", false)

	var created []uint
	for i := 0; i < 5; i++ {
		created = append(created, seedNotification(t, repo, sender.ID, models.UserRecipient{ID: reader.ID}, models.TypeFollow).ID)
	}

	page1, total, err := repo.ListFor(ctx, repositories.Audience{UserID: reader.ID}, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Equal(t, []uint{created[4], created[3]}, ids(page1))

	page3, _, err := repo.ListFor(ctx, repositories.Audience{UserID: reader.ID}, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint{created[0]}, ids(page3))
}

func TestNotificationRepository_MarkRead(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repositories.NewPostgresNotificationRepository(db)
	ctx := context.Background()

	admin := testutil.CreateUser(t, db, "admin", true)
	reader := testutil.CreateUser(t, db, "reader", false)
	aud := repositories.Audience{UserID: reader.ID}

	n1 := seedNotification(t, repo, admin.ID, models.UserRecipient{ID: reader.ID}, models.TypeFollow)
	seedNotification(t, repo, admin.ID, models.ClassRecipient{Class: models.ClassAll}, models.TypeUpdate)
	adminsOnly := seedNotification(t, repo, admin.ID, models.ClassRecipient{Class: models.ClassAdmins}, models.TypeAlert)

	require.NoError(t, repo.MarkAsRead(ctx, n1.ID))
	require.NoError(t, repo.MarkAsRead(ctx, n1.ID))

	got, err := repo.GetByID(ctx, n1.ID)
	require.NoError(t, err)
	assert.True(t, got.Read)

	unread, err := repo.CountUnreadFor(ctx, aud)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	n, err := repo.MarkAllReadFor(ctx, aud)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.MarkAllReadFor(ctx, aud)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	// Admin-only broadcast is outside the regular user's predicate.
	got, err = repo.GetByID(ctx, adminsOnly.ID)
	require.NoError(t, err)
	assert.False(t, got.Read)

	n, err = repo.MarkAllReadByClass(ctx, models.ClassAdmins)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestNotificationRepository_MarkAllReadByUser(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repositories.NewPostgresNotificationRepository(db)
	ctx := context.Background()

	admin := testutil.CreateUser(t, db, "admin", true)
	reader := testutil.CreateUser(t, db, "reader", false)

	seedNotification(t, repo, admin.ID, models.UserRecipient{ID: reader.ID}, models.TypeFollow)
	seedNotification(t, repo, admin.ID, models.UserRecipient{ID: reader.ID}, models.TypeMessage)
	broadcast := seedNotification(t, repo, admin.ID, models.ClassRecipient{Class: models.ClassAll}, models.TypeUpdate)

	n, err := repo.MarkAllReadByUser(ctx, reader.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	got, err := repo.GetByID(ctx, broadcast.ID)
	require.NoError(t, err)
	assert.False(t, got.Read, "broadcasts are not part of a user scope")
}

func TestNotificationRepository_RejectsMissingRecipient(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repositories.NewPostgresNotificationRepository(db)
	sender := testutil.CreateUser(t, db, "sender", false)

	err := repo.CreateNotification(context.Background(), &models.Notification{Type: models.TypeFollow, SenderID: sender.ID})
	assert.Error(t, err)
}

func TestNotificationRepository_CheckConstraint(t *testing.T) {
	db := testutil.OpenTestDB(t)
	sender := testutil.CreateUser(t, db, "sender", false)

	uid := sender.ID
	class := string(models.ClassAll)
	both := &models.Notification{Type: models.TypeUpdate, SenderID: sender.ID, RecipientUserID: &uid, RecipientClass: &class, Message: "x"}
	assert.Error(t, db.Create(both).Error)

	neither := &models.Notification{Type: models.TypeUpdate, SenderID: sender.ID, Message: "x"}
	assert.Error(t, db.Create(neither).Error)
}

func TestNotificationRepository_DeleteAndCascade(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repositories.NewPostgresNotificationRepository(db)
	ctx := context.Background()

	admin := testutil.CreateUser(t, db, "admin", true)
	doomed := testutil.CreateUser(t, db, "doomed", false)
	other := testutil.CreateUser(t, db, "other", false)

	seedNotification(t, repo, doomed.ID, models.UserRecipient{ID: other.ID}, models.TypeFollow)
	seedNotification(t, repo, other.ID, models.UserRecipient{ID: doomed.ID}, models.TypeFollow)
	keep := seedNotification(t, repo, admin.ID, models.ClassRecipient{Class: models.ClassAll}, models.TypeAnnouncement)
	keep2 := seedNotification(t, repo, admin.ID, models.UserRecipient{ID: other.ID}, models.TypeMessage)

	n, err := repo.DeleteBySenderOrRecipient(ctx, doomed.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	all, total, err := repo.ListAll(ctx, 1, 50)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.ElementsMatch(t, []uint{keep.ID, keep2.ID}, ids(all))

	deleted, err := repo.Delete(ctx, keep.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, keep.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = repo.GetByID(ctx, keep.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestNotificationRepository_Stats(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repositories.NewPostgresNotificationRepository(db)
	ctx := context.Background()

	admin := testutil.CreateUser(t, db, "admin", true)
	reader := testutil.CreateUser(t, db, "reader", false)

	read := seedNotification(t, repo, admin.ID, models.UserRecipient{ID: reader.ID}, models.TypeFollow)
	seedNotification(t, repo, admin.ID, models.UserRecipient{ID: reader.ID}, models.TypeFollow)
	seedNotification(t, repo, admin.ID, models.ClassRecipient{Class: models.ClassAll}, models.TypeAnnouncement)
	seedNotification(t, repo, admin.ID, models.ClassRecipient{Class: models.ClassAdmins}, models.TypeAlert)
	require.NoError(t, repo.MarkAsRead(ctx, read.ID))

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.Total)
	assert.EqualValues(t, 3, stats.Unread)
	assert.Len(t, stats.ByType, len(models.NotificationTypes))
	assert.EqualValues(t, 2, stats.ByType[models.TypeFollow])
	assert.EqualValues(t, 1, stats.ByType[models.TypeAnnouncement])
	assert.EqualValues(t, 0, stats.ByType[models.TypeLike])
	assert.Equal(t, models.RecipientStats{All: 1, Admins: 1, User: 2}, stats.ByRecipient)
}
