package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/anonto42/quill/backend/internal/apperrors"
	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/repositories"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

// Payload is the optional content attached to an action-triggered notification.
type Payload struct {
	PostID    string
	CommentID string
	Message   string
}

// NotifyResult is the outcome of a create. Skipped is set when self-notification
// suppression turned the create into a no-op; Notification is nil then.
type NotifyResult struct {
	Notification *models.NotificationView `json:"notification,omitempty"`
	Skipped      bool                     `json:"skipped"`
}

// GroupedNotifications buckets a user's notifications by age.
type GroupedNotifications struct {
	Today     []models.NotificationView `json:"today"`
	Yesterday []models.NotificationView `json:"yesterday"`
	ThisWeek  []models.NotificationView `json:"this_week"`
	Older     []models.NotificationView `json:"older"`
}

// Page describes a paginated listing.
type Page struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func newPage(page, limit int, total int64) Page {
	return Page{Page: page, Limit: limit, Total: total, TotalPages: (total + int64(limit) - 1) / int64(limit)}
}

// NormalizePage clamps pagination input to the supported range.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

// NotificationEngine creates notifications and serves their read paths.
type NotificationEngine struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	log           *slog.Logger
	now           func() time.Time
}

func NewNotificationEngine(notifications repositories.NotificationRepository, users repositories.UserRepository, logger *slog.Logger) *NotificationEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationEngine{
		notifications: notifications,
		users:         users,
		log:           logger.With("component", "notifications"),
		now:           time.Now,
	}
}

// validateActionPayload checks the type enum and the type-dependent payload rules.
func validateActionPayload(typ models.NotificationType, p Payload) error {
	if !typ.Valid() {
		return apperrors.Validation("unknown notification type %q", typ)
	}
	hasMessage := strings.TrimSpace(p.Message) != ""
	if typ.RequiresMessage() && !hasMessage {
		return apperrors.Validation("a message is required for %s notifications", typ)
	}
	if !typ.RequiresMessage() && hasMessage {
		return apperrors.Validation("%s notifications do not carry a message", typ)
	}
	if typ.RequiresPost() && p.PostID == "" {
		return apperrors.Validation("%s notifications must reference a post", typ)
	}
	if p.CommentID != "" && typ != models.TypeComment {
		return apperrors.Validation("only comment notifications reference a comment")
	}
	return nil
}

func (e *NotificationEngine) ensureRecipientExists(ctx context.Context, r models.Recipient) error {
	u, ok := r.(models.UserRecipient)
	if !ok {
		return nil
	}
	if _, err := e.users.GetUserByID(ctx, u.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("recipient user %d not found", u.ID)
		}
		return storeErr(err, "user")
	}
	return nil
}

// Notify is the action-triggered path used by likes, comments and follows.
// A concrete recipient equal to the sender is suppressed and reported as skipped.
func (e *NotificationEngine) Notify(ctx context.Context, senderID uint, r models.Recipient, typ models.NotificationType, p Payload) (*NotifyResult, error) {
	if err := validateActionPayload(typ, p); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, apperrors.New(apperrors.KindInvalidRecipient, "a recipient user or recipient class is required")
	}
	if u, ok := r.(models.UserRecipient); ok && u.ID == senderID {
		return &NotifyResult{Skipped: true}, nil
	}
	if err := e.ensureRecipientExists(ctx, r); err != nil {
		return nil, err
	}

	n := &models.Notification{
		Type:      typ,
		SenderID:  senderID,
		PostID:    p.PostID,
		CommentID: p.CommentID,
		Message:   strings.TrimSpace(p.Message),
	}
	n.SetRecipient(r)
	if err := e.notifications.CreateNotification(ctx, n); err != nil {
		return nil, storeErr(err, "notification")
	}

	views, err := e.denormalize(ctx, []models.Notification{*n})
	if err != nil {
		return nil, err
	}
	return &NotifyResult{Notification: &views[0]}, nil
}

// Create is the user-facing create API. Class recipients need the admin capability.
func (e *NotificationEngine) Create(ctx context.Context, id *Identity, req *models.CreateNotificationRequest) (*NotifyResult, error) {
	r, err := models.NewRecipient(req.RecipientUserID, req.RecipientClass)
	if err != nil {
		return nil, err
	}
	if _, ok := r.(models.ClassRecipient); ok && !id.IsAdmin {
		return nil, apperrors.Forbidden("only admins can address a recipient class")
	}
	return e.Notify(ctx, id.UserID, r, models.NotificationType(req.Type), Payload{
		PostID:    req.PostID,
		CommentID: req.CommentID,
		Message:   req.Message,
	})
}

// Broadcast is the admin path. Self-suppression does not apply, and any type
// may be sent as long as a message is present.
func (e *NotificationEngine) Broadcast(ctx context.Context, admin *Identity, typ models.NotificationType, message, recipientSpec string) (*models.NotificationView, error) {
	if err := RequireAdmin(admin); err != nil {
		return nil, err
	}
	if typ == "" {
		return nil, apperrors.Validation("type is required")
	}
	if !typ.Valid() {
		return nil, apperrors.Validation("unknown notification type %q", typ)
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.Validation("message is required")
	}
	r, err := models.ParseRecipientSpec(recipientSpec)
	if err != nil {
		return nil, err
	}
	if err := e.ensureRecipientExists(ctx, r); err != nil {
		return nil, err
	}

	n := &models.Notification{Type: typ, SenderID: admin.UserID, Message: message}
	n.SetRecipient(r)
	if err := e.notifications.CreateNotification(ctx, n); err != nil {
		return nil, storeErr(err, "notification")
	}

	stored, err := e.notifications.GetByID(ctx, n.ID)
	if err != nil {
		return nil, storeErr(err, "notification")
	}
	views, err := e.denormalize(ctx, []models.Notification{*stored})
	if err != nil {
		return nil, err
	}
	e.log.Info("broadcast created", "id", stored.ID, "admin", admin.UserID, "type", typ, "recipient", r.String())
	return &views[0], nil
}

// ListFor returns the notifications visible to id, newest first.
func (e *NotificationEngine) ListFor(ctx context.Context, id *Identity, page, limit int) ([]models.NotificationView, Page, error) {
	page, limit = NormalizePage(page, limit)
	list, total, err := e.notifications.ListFor(ctx, id.Audience(), page, limit)
	if err != nil {
		return nil, Page{}, storeErr(err, "notification")
	}
	views, err := e.denormalize(ctx, list)
	if err != nil {
		return nil, Page{}, err
	}
	return views, newPage(page, limit, total), nil
}

// Grouped returns the visible notifications bucketed by age.
func (e *NotificationEngine) Grouped(ctx context.Context, id *Identity) (*GroupedNotifications, error) {
	b, err := e.notifications.GroupedFor(ctx, id.Audience(), e.now())
	if err != nil {
		return nil, storeErr(err, "notification")
	}

	all := make([]models.Notification, 0, len(b.Today)+len(b.Yesterday)+len(b.ThisWeek)+len(b.Older))
	all = append(all, b.Today...)
	all = append(all, b.Yesterday...)
	all = append(all, b.ThisWeek...)
	all = append(all, b.Older...)
	views, err := e.denormalize(ctx, all)
	if err != nil {
		return nil, err
	}

	g := &GroupedNotifications{}
	i := 0
	take := func(n int) []models.NotificationView {
		out := views[i : i+n : i+n]
		i += n
		return out
	}
	g.Today = take(len(b.Today))
	g.Yesterday = take(len(b.Yesterday))
	g.ThisWeek = take(len(b.ThisWeek))
	g.Older = take(len(b.Older))
	return g, nil
}

// UnreadCount counts the unread notifications in the listing predicate.
func (e *NotificationEngine) UnreadCount(ctx context.Context, id *Identity) (int64, error) {
	n, err := e.notifications.CountUnreadFor(ctx, id.Audience())
	return n, storeErr(err, "notification")
}

func (e *NotificationEngine) load(ctx context.Context, notificationID uint) (*models.Notification, error) {
	n, err := e.notifications.GetByID(ctx, notificationID)
	if err != nil {
		return nil, storeErr(err, "notification")
	}
	return n, nil
}

// visible reports whether n is in id's listing predicate.
func visible(n *models.Notification, id *Identity) bool {
	switch r := n.Recipient().(type) {
	case models.UserRecipient:
		return r.ID == id.UserID
	case models.ClassRecipient:
		return r.Class == models.ClassAll || (r.Class == models.ClassAdmins && id.IsAdmin)
	}
	return false
}

// MarkRead sets the read flag on a notification visible to id. Read state is
// stored on the notification, so marking a broadcast read marks it for everyone.
func (e *NotificationEngine) MarkRead(ctx context.Context, id *Identity, notificationID uint) error {
	n, err := e.load(ctx, notificationID)
	if err != nil {
		return err
	}
	if !visible(n, id) {
		return apperrors.Forbidden("notification %d belongs to another user", notificationID)
	}
	if n.Read {
		return nil
	}
	return storeErr(e.notifications.MarkAsRead(ctx, n.ID), "notification")
}

// MarkAllRead marks every unread notification in id's listing predicate and
// returns how many changed.
func (e *NotificationEngine) MarkAllRead(ctx context.Context, id *Identity) (int64, error) {
	n, err := e.notifications.MarkAllReadFor(ctx, id.Audience())
	return n, storeErr(err, "notification")
}

// Delete removes a notification. Non-admins may only delete notifications
// addressed to them directly.
func (e *NotificationEngine) Delete(ctx context.Context, id *Identity, notificationID uint) error {
	n, err := e.load(ctx, notificationID)
	if err != nil {
		return err
	}
	if !id.IsAdmin && !n.IsFor(id.UserID) {
		return apperrors.Forbidden("cannot delete notification %d", notificationID)
	}
	if _, err := e.notifications.Delete(ctx, n.ID); err != nil {
		return storeErr(err, "notification")
	}
	return nil
}

// ListAll returns every notification for the admin panel.
func (e *NotificationEngine) ListAll(ctx context.Context, admin *Identity, page, limit int) ([]models.NotificationView, Page, error) {
	if err := RequireAdmin(admin); err != nil {
		return nil, Page{}, err
	}
	page, limit = NormalizePage(page, limit)
	list, total, err := e.notifications.ListAll(ctx, page, limit)
	if err != nil {
		return nil, Page{}, storeErr(err, "notification")
	}
	views, err := e.denormalize(ctx, list)
	if err != nil {
		return nil, Page{}, err
	}
	return views, newPage(page, limit, total), nil
}

func (e *NotificationEngine) AdminDelete(ctx context.Context, admin *Identity, notificationID uint) error {
	if err := RequireAdmin(admin); err != nil {
		return err
	}
	return e.Delete(ctx, admin, notificationID)
}

// AdminMarkRead marks any notification read.
func (e *NotificationEngine) AdminMarkRead(ctx context.Context, admin *Identity, notificationID uint) error {
	if err := RequireAdmin(admin); err != nil {
		return err
	}
	n, err := e.load(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.Read {
		return nil
	}
	return storeErr(e.notifications.MarkAsRead(ctx, n.ID), "notification")
}

// AdminMarkAllRead marks notifications read by scope: "all", "admins" or a
// user id. A user scope only touches notifications addressed to that user.
func (e *NotificationEngine) AdminMarkAllRead(ctx context.Context, admin *Identity, scope string) (int64, error) {
	if err := RequireAdmin(admin); err != nil {
		return 0, err
	}
	r, err := models.ParseRecipientSpec(scope)
	if err != nil {
		return 0, err
	}

	var n int64
	switch v := r.(type) {
	case models.ClassRecipient:
		n, err = e.notifications.MarkAllReadByClass(ctx, v.Class)
	case models.UserRecipient:
		if err := e.ensureRecipientExists(ctx, v); err != nil {
			return 0, err
		}
		n, err = e.notifications.MarkAllReadByUser(ctx, v.ID)
		if err == nil {
			e.log.Info("admin marked user notifications read", "admin", admin.UserID, "user", v.ID, "count", n)
		}
	}
	return n, storeErr(err, "notification")
}

// Stats aggregates the notification table for the admin panel.
func (e *NotificationEngine) Stats(ctx context.Context, admin *Identity) (*models.NotificationStats, error) {
	if err := RequireAdmin(admin); err != nil {
		return nil, err
	}
	s, err := e.notifications.Stats(ctx)
	if err != nil {
		return nil, storeErr(err, "notification")
	}
	return s, nil
}

// denormalize attaches sender and concrete recipient summaries with one user lookup.
func (e *NotificationEngine) denormalize(ctx context.Context, list []models.Notification) ([]models.NotificationView, error) {
	views := make([]models.NotificationView, 0, len(list))
	if len(list) == 0 {
		return views, nil
	}

	seen := make(map[uint]struct{})
	var userIDs []uint
	add := func(id uint) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			userIDs = append(userIDs, id)
		}
	}
	for _, n := range list {
		add(n.SenderID)
		if n.RecipientUserID != nil {
			add(*n.RecipientUserID)
		}
	}

	users, err := e.users.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	// Senders that no longer exist keep only their id.
	compact := func(id uint) models.UserCompact {
		if u, ok := users[id]; ok {
			return u.ToCompact()
		}
		return models.UserCompact{ID: id}
	}

	for _, n := range list {
		v := models.NotificationView{Notification: n, Sender: compact(n.SenderID)}
		if n.RecipientUserID != nil {
			r := compact(*n.RecipientUserID)
			v.RecipientUser = &r
		}
		views = append(views, v)
	}
	return views, nil
}
