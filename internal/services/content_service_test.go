package services

import (
	"context"
	"testing"

	"github.com/anonto42/quill/backend/internal/apperrors"
	"github.com/anonto42/quill/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLike_NotifiesAuthorOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author", false)
	sender := f.user(t, "sender", false)
	postID := f.post(t, author, "hello")

	res, err := f.content.ToggleLike(ctx, sender, postID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, 1, res.LikesCount)

	list, _, err := f.engine.ListFor(ctx, author, 1, 20)
	require.NoError(t, err)
	require.Len(t, list, 1)
	n := list[0]
	assert.Equal(t, models.TypeLike, n.Type)
	assert.Equal(t, sender.UserID, n.SenderID)
	assert.Equal(t, models.UserRecipient{ID: author.UserID}, n.Recipient())
	assert.Equal(t, postID, n.PostID)
	assert.False(t, n.Read)

	res, err = f.content.ToggleLike(ctx, sender, postID)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, 0, res.LikesCount)
	assert.Nil(t, res.Notify)
	assert.EqualValues(t, 1, f.countNotifications(t), "unlike creates no notification")
}

func TestToggleLike_OwnPostIsSuppressed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author", false)
	postID := f.post(t, author, "mine")

	res, err := f.content.ToggleLike(ctx, author, postID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	require.NotNil(t, res.Notify)
	assert.True(t, res.Notify.Skipped)
	assert.EqualValues(t, 0, f.countNotifications(t))
}

func TestToggleLike_MissingPost(t *testing.T) {
	f := newFixture(t)
	sender := f.user(t, "sender", false)

	_, err := f.content.ToggleLike(context.Background(), sender, "64b7f0c2a1b2c3d4e5f6ffff")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAddComment_NotifiesAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author", false)
	sender := f.user(t, "sender", false)
	postID := f.post(t, author, "hello")

	_, err := f.content.AddComment(ctx, sender, postID, "   ")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	c, err := f.content.AddComment(ctx, sender, postID, "nice post")
	require.NoError(t, err)
	assert.Equal(t, sender.UserID, c.UserID)

	list, _, err := f.engine.ListFor(ctx, author, 1, 20)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.TypeComment, list[0].Type)
	assert.Equal(t, c.ID.Hex(), list[0].CommentID)

	view, err := f.content.GetPost(ctx, author, postID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.CommentsCount)
	assert.Equal(t, "author", view.Author.Username)
}

func TestDeleteComment_Permissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author", false)
	commenter := f.user(t, "commenter", false)
	stranger := f.user(t, "stranger", false)
	admin := f.user(t, "admin", true)
	postID := f.post(t, author, "hello")

	c1, err := f.content.AddComment(ctx, commenter, postID, "first")
	require.NoError(t, err)
	c2, err := f.content.AddComment(ctx, commenter, postID, "second")
	require.NoError(t, err)
	c3, err := f.content.AddComment(ctx, commenter, postID, "third")
	require.NoError(t, err)

	assert.ErrorIs(t, f.content.DeleteComment(ctx, stranger, postID, c1.ID.Hex()), apperrors.ErrForbidden)
	require.NoError(t, f.content.DeleteComment(ctx, commenter, postID, c1.ID.Hex()))
	require.NoError(t, f.content.DeleteComment(ctx, author, postID, c2.ID.Hex()))
	require.NoError(t, f.content.DeleteComment(ctx, admin, postID, c3.ID.Hex()))
	assert.ErrorIs(t, f.content.DeleteComment(ctx, admin, postID, c3.ID.Hex()), apperrors.ErrNotFound)
}

func TestPosts_UpdateDeleteAndFeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice", false)
	bob := f.user(t, "bob", false)
	carol := f.user(t, "carol", false)

	mine := f.post(t, alice, "mine")
	bobs := f.post(t, bob, "bobs")
	f.post(t, carol, "carols")

	_, err := f.graph.Follow(ctx, alice.UserID, bob.UserID)
	require.NoError(t, err)
	_, err = f.graph.ToggleBookmark(ctx, alice.UserID, bobs, true)
	require.NoError(t, err)

	feed, err := f.content.Feed(ctx, alice, 1, 20)
	require.NoError(t, err)
	got := map[string]models.PostView{}
	for _, v := range feed {
		got[v.ID.Hex()] = v
	}
	assert.Len(t, got, 2)
	assert.Contains(t, got, mine)
	assert.True(t, got[bobs].Bookmarked)

	_, err = f.content.UpdatePost(ctx, alice, bobs, &models.UpdatePostRequest{Title: "hijack"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	updated, err := f.content.UpdatePost(ctx, bob, bobs, &models.UpdatePostRequest{Title: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Title)

	assert.ErrorIs(t, f.content.DeletePost(ctx, alice, bobs), apperrors.ErrForbidden)
	require.NoError(t, f.content.DeletePost(ctx, bob, bobs))

	bookmarks, err := f.graph.Bookmarks(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Empty(t, bookmarks, "deleting a post removes its bookmarks")

	_, err = f.content.GetPost(ctx, alice, bobs)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
