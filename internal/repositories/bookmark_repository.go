package repositories

import (
	"context"
	"time"

	"github.com/anonto42/quill/backend/internal/models"
	"gorm.io/gorm"
)

// BookmarkRepository defines the interface for bookmark operations
type BookmarkRepository interface {
	// AddBookmark inserts the bookmark. A duplicate returns gorm.ErrDuplicatedKey.
	AddBookmark(ctx context.Context, userID uint, postID string) (*models.Bookmark, error)
	// RemoveBookmark deletes the bookmark and reports whether it existed.
	RemoveBookmark(ctx context.Context, userID uint, postID string) (bool, error)
	IsBookmarked(ctx context.Context, userID uint, postID string) (bool, error)
	// ListBookmarks returns the user's bookmarks, most recent first.
	ListBookmarks(ctx context.Context, userID uint) ([]models.Bookmark, error)
	GetBookmarkedPostIDs(ctx context.Context, userID uint, postIDs []string) (map[string]bool, error)
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
	DeleteByPostIDs(ctx context.Context, postIDs []string) (int64, error)
}

// PostgresBookmarkRepository implements BookmarkRepository
type PostgresBookmarkRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPostgresBookmarkRepository(db *gorm.DB) *PostgresBookmarkRepository {
	return &PostgresBookmarkRepository{db: db, now: time.Now}
}

func (r *PostgresBookmarkRepository) AddBookmark(ctx context.Context, userID uint, postID string) (*models.Bookmark, error) {
	b := &models.Bookmark{UserID: userID, PostID: postID, AddedAt: r.now()}
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		return nil, err
	}
	return b, nil
}

func (r *PostgresBookmarkRepository) RemoveBookmark(ctx context.Context, userID uint, postID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Bookmark{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresBookmarkRepository) IsBookmarked(ctx context.Context, userID uint, postID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Bookmark{}).Where("user_id = ? AND post_id = ?", userID, postID).Count(&count).Error
	return count > 0, err
}

func (r *PostgresBookmarkRepository) ListBookmarks(ctx context.Context, userID uint) ([]models.Bookmark, error) {
	bookmarks := []models.Bookmark{}
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("added_at DESC, id DESC").Find(&bookmarks).Error
	return bookmarks, err
}

func (r *PostgresBookmarkRepository) GetBookmarkedPostIDs(ctx context.Context, userID uint, postIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(postIDs) == 0 {
		return result, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Bookmark{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

func (r *PostgresBookmarkRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Bookmark{})
	return res.RowsAffected, res.Error
}

func (r *PostgresBookmarkRepository) DeleteByPostIDs(ctx context.Context, postIDs []string) (int64, error) {
	if len(postIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("post_id IN ?", postIDs).Delete(&models.Bookmark{})
	return res.RowsAffected, res.Error
}
