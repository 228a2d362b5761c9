package services

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/quill/backend/internal/apperrors"
	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDeleteUser_Cascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", true)
	doomed := f.user(t, "doomed", false)
	other := f.user(t, "other", false)

	doomedPost := f.post(t, doomed, "going away")
	otherPost := f.post(t, other, "staying")

	_, err := f.content.AddComment(ctx, other, doomedPost, "on doomed post")
	require.NoError(t, err)
	_, err = f.content.AddComment(ctx, doomed, otherPost, "standalone")
	require.NoError(t, err)
	keptComment, err := f.content.AddComment(ctx, other, otherPost, "mine")
	require.NoError(t, err)
	_, err = f.content.ToggleLike(ctx, doomed, otherPost)
	require.NoError(t, err)

	_, err = f.graph.Follow(ctx, doomed.UserID, other.UserID)
	require.NoError(t, err)
	_, err = f.graph.Follow(ctx, other.UserID, doomed.UserID)
	require.NoError(t, err)
	_, err = f.graph.ToggleBookmark(ctx, other.UserID, doomedPost, true)
	require.NoError(t, err)
	_, err = f.graph.ToggleBookmark(ctx, other.UserID, otherPost, true)
	require.NoError(t, err)
	_, err = f.graph.ToggleBookmark(ctx, doomed.UserID, otherPost, true)
	require.NoError(t, err)

	broadcast, err := f.engine.Broadcast(ctx, admin, models.TypeAnnouncement, "hello all", "all")
	require.NoError(t, err)
	unrelated, err := f.engine.Broadcast(ctx, admin, models.TypeMessage, "hi other", spec(other))
	require.NoError(t, err)

	require.NoError(t, f.accounts.DeleteUser(ctx, admin, doomed.UserID))

	_, err = f.users.GetUserByID(ctx, doomed.UserID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = f.posts.GetPostByID(ctx, doomedPost)
	assert.ErrorIs(t, err, repositories.ErrPostNotFound)

	kept, err := f.posts.GetPostByID(ctx, otherPost)
	require.NoError(t, err)
	require.Len(t, kept.Comments, 1)
	assert.Equal(t, keptComment.ID, kept.Comments[0].ID)
	assert.Empty(t, kept.Likes)

	var remaining []models.Notification
	require.NoError(t, f.db.Order("id").Find(&remaining).Error)
	var ids []uint
	for _, n := range remaining {
		assert.NotEqual(t, doomed.UserID, n.SenderID)
		assert.False(t, n.IsFor(doomed.UserID))
		ids = append(ids, n.ID)
	}
	assert.Contains(t, ids, broadcast.ID)
	assert.Contains(t, ids, unrelated.ID)

	otherFollowers, err := f.follows.GetFollowerIDs(ctx, other.UserID)
	require.NoError(t, err)
	assert.Empty(t, otherFollowers)
	otherFollowing, err := f.follows.GetFollowingIDs(ctx, other.UserID)
	require.NoError(t, err)
	assert.Empty(t, otherFollowing)

	bookmarks, err := f.graph.Bookmarks(ctx, other.UserID)
	require.NoError(t, err)
	assert.Equal(t, []string{otherPost}, bookmarkIDs(bookmarks))
	own, err := f.bookmarks.ListBookmarks(ctx, doomed.UserID)
	require.NoError(t, err)
	assert.Empty(t, own)
}

func TestDeleteUser_CannotDeleteAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", true)
	other := f.user(t, "other", true)
	postID := f.post(t, other, "admin post")

	err := f.accounts.DeleteUser(ctx, admin, other.UserID)
	assert.ErrorIs(t, err, apperrors.ErrCannotDeleteAdmin)

	_, err = f.users.GetUserByID(ctx, other.UserID)
	require.NoError(t, err)
	_, err = f.posts.GetPostByID(ctx, postID)
	require.NoError(t, err)
}

func TestDeleteUser_Authorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice", false)
	bob := f.user(t, "bob", false)

	assert.ErrorIs(t, f.accounts.DeleteUser(ctx, alice, bob.UserID), apperrors.ErrForbidden)
	require.NoError(t, f.accounts.DeleteUser(ctx, alice, alice.UserID))
	assert.ErrorIs(t, f.accounts.DeleteUser(ctx, bob, 9999), apperrors.ErrForbidden)
}

func TestDeleteUser_FailedStepLeavesUserAndIsRetryable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", true)
	doomed := f.user(t, "doomed", false)
	f.post(t, doomed, "post")

	f.posts.Fail["DeletePostsByAuthor"] = errors.New("mongo unavailable")
	err := f.accounts.DeleteUser(ctx, admin, doomed.UserID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "authored_posts")

	_, err = f.users.GetUserByID(ctx, doomed.UserID)
	require.NoError(t, err, "user row survives a failed deletion")

	delete(f.posts.Fail, "DeletePostsByAuthor")
	require.NoError(t, f.accounts.DeleteUser(ctx, admin, doomed.UserID))
	_, err = f.users.GetUserByID(ctx, doomed.UserID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSetAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", true)
	alice := f.user(t, "alice", false)

	_, err := f.accounts.SetAdmin(ctx, alice, alice.UserID, true)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	u, err := f.accounts.SetAdmin(ctx, admin, alice.UserID, true)
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)

	_, err = f.accounts.SetAdmin(ctx, admin, 9999, true)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProfileAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice", false)
	bob := f.user(t, "bob", false)

	_, err := f.graph.Follow(ctx, bob.UserID, alice.UserID)
	require.NoError(t, err)

	p, err := f.accounts.Profile(ctx, bob.UserID, alice.UserID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, p.FollowersCount)
	assert.EqualValues(t, 0, p.FollowingCount)
	assert.True(t, p.IsFollowing)

	u, err := f.accounts.UpdateProfile(ctx, alice, &models.UpdateUserRequest{DisplayName: "Alice A", Bio: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "Alice A", u.DisplayName)
	assert.False(t, u.IsAdmin)

	_, err = f.accounts.UpdateProfile(ctx, alice, &models.UpdateUserRequest{Email: "bob@example.com"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}
