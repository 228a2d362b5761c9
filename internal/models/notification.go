package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/anonto42/quill/backend/internal/apperrors"
)

// NotificationType enumerates the allowed notification kinds.
type NotificationType string

const (
	TypeLike         NotificationType = "like"
	TypeComment      NotificationType = "comment"
	TypeFollow       NotificationType = "follow"
	TypeAnnouncement NotificationType = "announcement"
	TypeAlert        NotificationType = "alert"
	TypeUpdate       NotificationType = "update"
	TypeMessage      NotificationType = "message"
)

// NotificationTypes lists every member of the type enum, in display order.
var NotificationTypes = []NotificationType{
	TypeLike, TypeComment, TypeFollow, TypeAnnouncement, TypeAlert, TypeUpdate, TypeMessage,
}

func (t NotificationType) Valid() bool {
	for _, v := range NotificationTypes {
		if t == v {
			return true
		}
	}
	return false
}

// RequiresMessage reports whether notifications of this type must carry a message.
func (t NotificationType) RequiresMessage() bool {
	switch t {
	case TypeAnnouncement, TypeAlert, TypeUpdate, TypeMessage:
		return true
	}
	return false
}

// RequiresPost reports whether notifications of this type reference a post.
func (t NotificationType) RequiresPost() bool {
	return t == TypeLike || t == TypeComment
}

// RecipientClass is a broadcast target.
type RecipientClass string

const (
	ClassAll    RecipientClass = "all"
	ClassAdmins RecipientClass = "admins"
)

func (c RecipientClass) Valid() bool {
	return c == ClassAll || c == ClassAdmins
}

// Recipient is either a UserRecipient or a ClassRecipient, never both.
type Recipient interface {
	isRecipient()
	String() string
}

// UserRecipient targets one concrete user.
type UserRecipient struct {
	ID uint
}

// ClassRecipient targets a broadcast class.
type ClassRecipient struct {
	Class RecipientClass
}

func (UserRecipient) isRecipient()  {}
func (ClassRecipient) isRecipient() {}

func (r UserRecipient) String() string  { return strconv.FormatUint(uint64(r.ID), 10) }
func (r ClassRecipient) String() string { return string(r.Class) }

// NewRecipient builds a Recipient from the two wire fields. Exactly one must be set.
func NewRecipient(userID *uint, class string) (Recipient, error) {
	class = strings.TrimSpace(class)
	switch {
	case userID != nil && class != "":
		return nil, apperrors.Validation("recipient user and recipient class are mutually exclusive")
	case userID == nil && class == "":
		return nil, apperrors.Validation("a recipient user or recipient class is required")
	case userID != nil:
		if *userID == 0 {
			return nil, apperrors.New(apperrors.KindInvalidRecipient, "recipient user id must be positive")
		}
		return UserRecipient{ID: *userID}, nil
	}
	c := RecipientClass(class)
	if !c.Valid() {
		return nil, apperrors.New(apperrors.KindInvalidRecipient, "unknown recipient class %q", class)
	}
	return ClassRecipient{Class: c}, nil
}

// ParseRecipientSpec parses "all", "admins" or a numeric user id.
func ParseRecipientSpec(spec string) (Recipient, error) {
	spec = strings.TrimSpace(spec)
	if c := RecipientClass(spec); c.Valid() {
		return ClassRecipient{Class: c}, nil
	}
	id, err := strconv.ParseUint(spec, 10, 64)
	if err != nil || id == 0 {
		return nil, apperrors.New(apperrors.KindInvalidRecipient, "recipient must be \"all\", \"admins\" or a user id")
	}
	return UserRecipient{ID: uint(id)}, nil
}

// Notification is the persisted row. Exactly one of RecipientUserID and
// RecipientClass is set; the check constraint enforces it in the database and
// SetRecipient is the only writer.
type Notification struct {
	ID              uint             `json:"id" gorm:"primaryKey"`
	Type            NotificationType `json:"type" gorm:"size:20;not null;index"`
	SenderID        uint             `json:"sender_id" gorm:"not null;index"`
	RecipientUserID *uint            `json:"recipient_user_id,omitempty" gorm:"index;check:chk_notification_recipient,(recipient_user_id IS NULL) <> (recipient_class IS NULL)"`
	RecipientClass  *string          `json:"recipient_class,omitempty" gorm:"size:10;index"`
	PostID          string           `json:"post_id,omitempty" gorm:"size:24;index"`
	CommentID       string           `json:"comment_id,omitempty" gorm:"size:24"`
	Message         string           `json:"message,omitempty" gorm:"type:text"`
	Read            bool             `json:"read" gorm:"column:is_read;default:false;index"`
	CreatedAt       time.Time        `json:"created_at" gorm:"index"`
}

// SetRecipient writes the recipient columns from r, clearing the other variant.
func (n *Notification) SetRecipient(r Recipient) {
	n.RecipientUserID = nil
	n.RecipientClass = nil
	switch v := r.(type) {
	case UserRecipient:
		id := v.ID
		n.RecipientUserID = &id
	case ClassRecipient:
		c := string(v.Class)
		n.RecipientClass = &c
	}
}

// Recipient reads the recipient columns back into the tagged form.
func (n *Notification) Recipient() Recipient {
	if n.RecipientUserID != nil {
		return UserRecipient{ID: *n.RecipientUserID}
	}
	if n.RecipientClass != nil {
		return ClassRecipient{Class: RecipientClass(*n.RecipientClass)}
	}
	return nil
}

// IsFor reports whether n is addressed to the concrete user userID.
func (n *Notification) IsFor(userID uint) bool {
	return n.RecipientUserID != nil && *n.RecipientUserID == userID
}

// NotificationView is a notification with its sender and concrete recipient denormalized.
type NotificationView struct {
	Notification
	Sender        UserCompact  `json:"sender"`
	RecipientUser *UserCompact `json:"recipient,omitempty"`
}

// NotificationStats is the admin aggregation over all notifications.
type NotificationStats struct {
	Total       int64                      `json:"total"`
	Unread      int64                      `json:"unread"`
	ByType      map[NotificationType]int64 `json:"by_type"`
	ByRecipient RecipientStats             `json:"by_recipient"`
}

type RecipientStats struct {
	All    int64 `json:"all"`
	Admins int64 `json:"admins"`
	User   int64 `json:"user"`
}

// CreateNotificationRequest is the body of the user-facing create endpoint.
type CreateNotificationRequest struct {
	RecipientUserID *uint  `json:"recipient_user_id,omitempty"`
	RecipientClass  string `json:"recipient_class,omitempty" validate:"omitempty,oneof=all admins"`
	Type            string `json:"type" validate:"required,notification_type"`
	PostID          string `json:"post_id,omitempty" validate:"omitempty,len=24,hexadecimal"`
	CommentID       string `json:"comment_id,omitempty" validate:"omitempty,len=24,hexadecimal"`
	Message         string `json:"message,omitempty" validate:"omitempty,max=2000"`
}

// BroadcastRequest is the body of the admin create endpoint.
type BroadcastRequest struct {
	Type      string `json:"type" validate:"required,notification_type"`
	Message   string `json:"message" validate:"required,max=2000"`
	Recipient string `json:"recipient" validate:"required"` // "all", "admins" or a user id
}
