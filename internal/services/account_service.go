package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/anonto42/quill/backend/internal/apperrors"
	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/repositories"
	"gorm.io/gorm"
)

// Profile is a user with follow counts.
type Profile struct {
	User           *models.User `json:"user"`
	FollowersCount int64        `json:"followers_count"`
	FollowingCount int64        `json:"following_count"`
	IsFollowing    bool         `json:"is_following"`
}

// AccountService handles profile edits, admin promotion and account removal.
type AccountService struct {
	users         repositories.UserRepository
	follows       repositories.FollowRepository
	bookmarks     repositories.BookmarkRepository
	notifications repositories.NotificationRepository
	posts         repositories.PostRepository
	log           *slog.Logger
}

func NewAccountService(
	users repositories.UserRepository,
	follows repositories.FollowRepository,
	bookmarks repositories.BookmarkRepository,
	notifications repositories.NotificationRepository,
	posts repositories.PostRepository,
	logger *slog.Logger,
) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		users:         users,
		follows:       follows,
		bookmarks:     bookmarks,
		notifications: notifications,
		posts:         posts,
		log:           logger.With("component", "accounts"),
	}
}

// Profile loads userID with follow counts as seen by viewerID.
func (s *AccountService) Profile(ctx context.Context, viewerID, userID uint) (*Profile, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	p := &Profile{User: u}
	if p.FollowersCount, err = s.follows.CountFollowers(ctx, userID); err != nil {
		return nil, storeErr(err, "follow")
	}
	if p.FollowingCount, err = s.follows.CountFollowing(ctx, userID); err != nil {
		return nil, storeErr(err, "follow")
	}
	if viewerID != 0 && viewerID != userID {
		if p.IsFollowing, err = s.follows.IsFollowing(ctx, viewerID, userID); err != nil {
			return nil, storeErr(err, "follow")
		}
	}
	return p, nil
}

// UpdateProfile applies the non-empty fields of req. The admin flag is not editable here.
func (s *AccountService) UpdateProfile(ctx context.Context, actor *Identity, req *models.UpdateUserRequest) (*models.User, error) {
	u, err := s.users.GetUserByID(ctx, actor.UserID)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	if req.DisplayName != "" {
		u.DisplayName = strings.TrimSpace(req.DisplayName)
	}
	if req.Email != "" {
		u.Email = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if req.AvatarURL != "" {
		u.AvatarURL = req.AvatarURL
	}
	if req.Bio != "" {
		u.Bio = req.Bio
	}
	if err := s.users.UpdateUser(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Validation("email already in use")
		}
		return nil, storeErr(err, "user")
	}
	return u, nil
}

func (s *AccountService) Search(ctx context.Context, query string, limit int) ([]models.UserSummary, error) {
	_, limit = NormalizePage(1, limit)
	users, err := s.users.SearchUsers(ctx, strings.TrimSpace(query), limit)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	return summaries(users), nil
}

// SetAdmin promotes or demotes userID.
func (s *AccountService) SetAdmin(ctx context.Context, admin *Identity, userID uint, isAdmin bool) (*models.User, error) {
	if err := RequireAdmin(admin); err != nil {
		return nil, err
	}
	if err := s.users.SetAdmin(ctx, userID, isAdmin); err != nil {
		return nil, storeErr(err, "user")
	}
	s.log.Info("admin flag changed", "admin", admin.UserID, "user", userID, "is_admin", isAdmin)
	u, err := s.users.GetUserByID(ctx, userID)
	return u, storeErr(err, "user")
}

// deletionStep is one idempotent step of account removal.
type deletionStep struct {
	name string
	run  func(ctx context.Context, userID uint) (int64, error)
}

func (s *AccountService) deletionSteps() []deletionStep {
	return []deletionStep{
		{"bookmarks_of_authored_posts", func(ctx context.Context, userID uint) (int64, error) {
			ids, err := s.posts.ListPostIDsByAuthor(ctx, userID)
			if err != nil {
				return 0, err
			}
			return s.bookmarks.DeleteByPostIDs(ctx, ids)
		}},
		{"authored_posts", s.posts.DeletePostsByAuthor},
		{"comments_on_other_posts", s.posts.PullCommentsByUser},
		{"likes_on_other_posts", s.posts.PullLikesByUser},
		{"notifications", s.notifications.DeleteBySenderOrRecipient},
		{"follow_edges", s.follows.DeleteAllForUser},
		{"own_bookmarks", s.bookmarks.DeleteByUser},
		{"user", func(ctx context.Context, userID uint) (int64, error) {
			return 1, s.users.DeleteUser(ctx, userID)
		}},
	}
}

// DeleteUser removes a user and everything that references them. Admins may
// delete any non-admin user; a user may delete their own account. Steps run in
// order and each is safe to re-run, so a failed deletion can be retried. The
// user row goes last.
func (s *AccountService) DeleteUser(ctx context.Context, actor *Identity, userID uint) error {
	if !actor.IsAdmin && actor.UserID != userID {
		return apperrors.Forbidden("you can only delete your own account")
	}
	target, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return storeErr(err, "user")
	}
	if target.IsAdmin {
		return apperrors.ErrCannotDeleteAdmin
	}

	log := s.log.With("user", userID, "actor", actor.UserID)
	for _, step := range s.deletionSteps() {
		n, err := step.run(ctx, userID)
		if err != nil {
			log.Error("account deletion step failed", "step", step.name, "error", err)
			return apperrors.Wrap(apperrors.KindInternal, err, "delete user %d: step %s failed", userID, step.name)
		}
		log.Debug("account deletion step done", "step", step.name, "affected", n)
	}
	log.Info("account deleted", "username", target.Username)
	return nil
}
