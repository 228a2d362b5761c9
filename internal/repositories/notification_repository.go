package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/quill/backend/internal/models"
	"gorm.io/gorm"
)

// Audience identifies who is reading notifications. Every per-user query is
// built from the same visibility predicate over it.
type Audience struct {
	UserID  uint
	IsAdmin bool
}

// Classes returns the broadcast classes visible to the audience.
func (a Audience) Classes() []string {
	if a.IsAdmin {
		return []string{string(models.ClassAll), string(models.ClassAdmins)}
	}
	return []string{string(models.ClassAll)}
}

// NotificationBuckets groups an audience's notifications by age.
type NotificationBuckets struct {
	Today     []models.Notification
	Yesterday []models.Notification
	ThisWeek  []models.Notification
	Older     []models.Notification
}

var errMissingRecipient = errors.New("notification has no recipient")

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id uint) (*models.Notification, error)
	ListFor(ctx context.Context, a Audience, page, limit int) ([]models.Notification, int64, error)
	GroupedFor(ctx context.Context, a Audience, now time.Time) (*NotificationBuckets, error)
	CountUnreadFor(ctx context.Context, a Audience) (int64, error)
	MarkAsRead(ctx context.Context, id uint) error
	MarkAllReadFor(ctx context.Context, a Audience) (int64, error)
	MarkAllReadByClass(ctx context.Context, class models.RecipientClass) (int64, error)
	MarkAllReadByUser(ctx context.Context, userID uint) (int64, error)
	Delete(ctx context.Context, id uint) (bool, error)
	ListAll(ctx context.Context, page, limit int) ([]models.Notification, int64, error)
	DeleteBySenderOrRecipient(ctx context.Context, userID uint) (int64, error)
	Stats(ctx context.Context) (*models.NotificationStats, error)
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

// visibleTo matches notifications addressed to the user directly or to any
// broadcast class the user belongs to.
func visibleTo(a Audience) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("(recipient_user_id = ? OR recipient_class IN ?)", a.UserID, a.Classes())
	}
}

func unread(db *gorm.DB) *gorm.DB {
	return db.Where("is_read = ?", false)
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}

func (r *postgresNotificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.Recipient() == nil {
		return errMissingRecipient
	}
	n.Read = false
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *postgresNotificationRepository) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *postgresNotificationRepository) ListFor(ctx context.Context, a Audience, page, limit int) ([]models.Notification, int64, error) {
	return r.paginate(ctx, r.db.WithContext(ctx).Model(&models.Notification{}).Scopes(visibleTo(a)), page, limit)
}

func (r *postgresNotificationRepository) ListAll(ctx context.Context, page, limit int) ([]models.Notification, int64, error) {
	return r.paginate(ctx, r.db.WithContext(ctx).Model(&models.Notification{}), page, limit)
}

func (r *postgresNotificationRepository) paginate(ctx context.Context, q *gorm.DB, page, limit int) ([]models.Notification, int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	notifications := []models.Notification{}
	offset := (page - 1) * limit
	err := q.Session(&gorm.Session{}).Scopes(newestFirst).
		Offset(offset).Limit(limit).
		Find(&notifications).Error
	return notifications, total, err
}

func (r *postgresNotificationRepository) GroupedFor(ctx context.Context, a Audience, now time.Time) (*NotificationBuckets, error) {
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	weekStart := todayStart.AddDate(0, 0, -7)

	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Scopes(visibleTo(a), newestFirst)
	}
	b := &NotificationBuckets{}

	// Today
	if err := base().Where("created_at >= ?", todayStart).Find(&b.Today).Error; err != nil {
		return nil, err
	}

	// Yesterday
	if err := base().Where("created_at >= ? AND created_at < ?", yesterdayStart, todayStart).Find(&b.Yesterday).Error; err != nil {
		return nil, err
	}

	// This week (excluding today and yesterday)
	if err := base().Where("created_at >= ? AND created_at < ?", weekStart, yesterdayStart).Find(&b.ThisWeek).Error; err != nil {
		return nil, err
	}

	// Older
	if err := base().Where("created_at < ?", weekStart).Limit(50).Find(&b.Older).Error; err != nil {
		return nil, err
	}

	return b, nil
}

func (r *postgresNotificationRepository) CountUnreadFor(ctx context.Context, a Audience) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).Scopes(visibleTo(a), unread).Count(&count).Error
	return count, err
}

// MarkAsRead sets the read flag. Marking an already-read notification is a no-op.
func (r *postgresNotificationRepository) MarkAsRead(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id).Update("is_read", true).Error
}

func (r *postgresNotificationRepository) MarkAllReadFor(ctx context.Context, a Audience) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).Scopes(visibleTo(a), unread).Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *postgresNotificationRepository) MarkAllReadByClass(ctx context.Context, class models.RecipientClass) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_class = ?", string(class)).Scopes(unread).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *postgresNotificationRepository) MarkAllReadByUser(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_user_id = ?", userID).Scopes(unread).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *postgresNotificationRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Notification{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteBySenderOrRecipient removes notifications the user sent or that are
// addressed to the user directly. Class broadcasts addressed to others survive.
func (r *postgresNotificationRepository) DeleteBySenderOrRecipient(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("(sender_id = ? OR recipient_user_id = ?)", userID, userID).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

func (r *postgresNotificationRepository) Stats(ctx context.Context) (*models.NotificationStats, error) {
	db := r.db.WithContext(ctx).Model(&models.Notification{})
	stats := &models.NotificationStats{ByType: make(map[models.NotificationType]int64, len(models.NotificationTypes))}

	if err := db.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := db.Session(&gorm.Session{}).Scopes(unread).Count(&stats.Unread).Error; err != nil {
		return nil, err
	}

	var rows []struct {
		Type  models.NotificationType
		Count int64
	}
	if err := db.Session(&gorm.Session{}).Select("type, COUNT(*) AS count").Group("type").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, t := range models.NotificationTypes {
		stats.ByType[t] = 0
	}
	for _, row := range rows {
		stats.ByType[row.Type] = row.Count
	}

	if err := db.Session(&gorm.Session{}).Where("recipient_class = ?", string(models.ClassAll)).Count(&stats.ByRecipient.All).Error; err != nil {
		return nil, err
	}
	if err := db.Session(&gorm.Session{}).Where("recipient_class = ?", string(models.ClassAdmins)).Count(&stats.ByRecipient.Admins).Error; err != nil {
		return nil, err
	}
	if err := db.Session(&gorm.Session{}).Where("recipient_user_id IS NOT NULL").Count(&stats.ByRecipient.User).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
