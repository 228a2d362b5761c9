package repositories_test

import (
	"context"
	"testing"

	"github.com/anonto42/quill/backend/internal/repositories"
	"github.com/anonto42/quill/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	postA = "64b7f0c2a1b2c3d4e5f60001"
	postB = "64b7f0c2a1b2c3d4e5f60002"
	postC = "64b7f0c2a1b2c3d4e5f60003"
)

func bookmarkedPosts(t *testing.T, repo repositories.BookmarkRepository, userID uint) []string {
	t.Helper()
	list, err := repo.ListBookmarks(context.Background(), userID)
	require.NoError(t, err)
	ids := make([]string, 0, len(list))
	for _, b := range list {
		ids = append(ids, b.PostID)
	}
	return ids
}

func TestBookmarkRepository_AddRemove(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repositories.NewPostgresBookmarkRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice", false)

	_, err := repo.AddBookmark(ctx, alice.ID, postA)
	require.NoError(t, err)
	_, err = repo.AddBookmark(ctx, alice.ID, postB)
	require.NoError(t, err)

	_, err = repo.AddBookmark(ctx, alice.ID, postA)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// Most recent first.
	assert.Equal(t, []string{postB, postA}, bookmarkedPosts(t, repo, alice.ID))

	ok, err := repo.IsBookmarked(ctx, alice.ID, postA)
	require.NoError(t, err)
	assert.True(t, ok)

	removed, err := repo.RemoveBookmark(ctx, alice.ID, postA)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.RemoveBookmark(ctx, alice.ID, postA)
	require.NoError(t, err)
	assert.False(t, removed)

	assert.Equal(t, []string{postB}, bookmarkedPosts(t, repo, alice.ID))
}

func TestBookmarkRepository_BulkDeletes(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repositories.NewPostgresBookmarkRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice", false)
	bob := testutil.CreateUser(t, db, "bob", false)

	for _, p := range []string{postA, postB, postC} {
		_, err := repo.AddBookmark(ctx, alice.ID, p)
		require.NoError(t, err)
	}
	_, err := repo.AddBookmark(ctx, bob.ID, postA)
	require.NoError(t, err)

	marked, err := repo.GetBookmarkedPostIDs(ctx, bob.ID, []string{postA, postB})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{postA: true}, marked)

	n, err := repo.DeleteByPostIDs(ctx, []string{postA})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = repo.DeleteByPostIDs(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	n, err = repo.DeleteByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	assert.Empty(t, bookmarkedPosts(t, repo, alice.ID))
	assert.Empty(t, bookmarkedPosts(t, repo, bob.ID))
}
