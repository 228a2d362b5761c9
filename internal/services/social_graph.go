package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/anonto42/quill/backend/internal/apperrors"
	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/repositories"
	"gorm.io/gorm"
)

// SocialGraph manages follow edges and bookmarks.
type SocialGraph struct {
	users     repositories.UserRepository
	follows   repositories.FollowRepository
	bookmarks repositories.BookmarkRepository
	posts     repositories.PostRepository
	notifier  *NotificationEngine
	log       *slog.Logger
}

func NewSocialGraph(
	users repositories.UserRepository,
	follows repositories.FollowRepository,
	bookmarks repositories.BookmarkRepository,
	posts repositories.PostRepository,
	notifier *NotificationEngine,
	logger *slog.Logger,
) *SocialGraph {
	if logger == nil {
		logger = slog.Default()
	}
	return &SocialGraph{
		users:     users,
		follows:   follows,
		bookmarks: bookmarks,
		posts:     posts,
		notifier:  notifier,
		log:       logger.With("component", "social_graph"),
	}
}

func (s *SocialGraph) requireUser(ctx context.Context, userID uint) (*models.User, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	return u, nil
}

func (s *SocialGraph) result(ctx context.Context, actorID, targetID uint) (*models.FollowResult, error) {
	following, err := s.follows.GetFollowingIDs(ctx, actorID)
	if err != nil {
		return nil, storeErr(err, "follow")
	}
	followers, err := s.follows.GetFollowerIDs(ctx, targetID)
	if err != nil {
		return nil, storeErr(err, "follow")
	}
	return &models.FollowResult{Following: following, Followers: followers}, nil
}

// Follow adds the edge actor -> target as a single insert and notifies the target.
func (s *SocialGraph) Follow(ctx context.Context, actorID, targetID uint) (*models.FollowResult, error) {
	if actorID == targetID {
		return nil, apperrors.ErrSelfFollow
	}
	if _, err := s.requireUser(ctx, targetID); err != nil {
		return nil, err
	}

	if err := s.follows.CreateFollow(ctx, actorID, targetID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrAlreadyFollowing
		}
		return nil, storeErr(err, "follow")
	}

	if s.notifier != nil {
		if _, err := s.notifier.Notify(ctx, actorID, models.UserRecipient{ID: targetID}, models.TypeFollow, Payload{}); err != nil {
			s.log.Warn("follow notification failed", "follower", actorID, "followed", targetID, "error", err)
		}
	}
	return s.result(ctx, actorID, targetID)
}

// Unfollow removes the edge actor -> target.
func (s *SocialGraph) Unfollow(ctx context.Context, actorID, targetID uint) (*models.FollowResult, error) {
	if actorID == targetID {
		return nil, apperrors.ErrSelfFollow
	}
	if _, err := s.requireUser(ctx, targetID); err != nil {
		return nil, err
	}

	removed, err := s.follows.DeleteFollow(ctx, actorID, targetID)
	if err != nil {
		return nil, storeErr(err, "follow")
	}
	if !removed {
		return nil, apperrors.ErrNotFollowing
	}
	return s.result(ctx, actorID, targetID)
}

func (s *SocialGraph) IsFollowing(ctx context.Context, actorID, targetID uint) (bool, error) {
	ok, err := s.follows.IsFollowing(ctx, actorID, targetID)
	return ok, storeErr(err, "follow")
}

func summaries(users []models.User) []models.UserSummary {
	out := make([]models.UserSummary, 0, len(users))
	for i := range users {
		out = append(out, users[i].ToSummary())
	}
	return out
}

// Followers lists the users following userID.
func (s *SocialGraph) Followers(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	users, err := s.follows.GetFollowers(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "follow")
	}
	return summaries(users), nil
}

// Following lists the users userID follows.
func (s *SocialGraph) Following(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	users, err := s.follows.GetFollowing(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "follow")
	}
	return summaries(users), nil
}

// ToggleBookmark adds or removes postID from the actor's bookmarks. Adding an
// existing bookmark and removing a missing one are both errors.
func (s *SocialGraph) ToggleBookmark(ctx context.Context, actorID uint, postID string, add bool) ([]models.Bookmark, error) {
	if add {
		exists, err := s.posts.PostExists(ctx, postID)
		if err != nil {
			return nil, storeErr(err, "post")
		}
		if !exists {
			return nil, apperrors.NotFound("post not found")
		}
		if _, err := s.bookmarks.AddBookmark(ctx, actorID, postID); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperrors.ErrAlreadyBookmarked
			}
			return nil, storeErr(err, "bookmark")
		}
	} else {
		removed, err := s.bookmarks.RemoveBookmark(ctx, actorID, postID)
		if err != nil {
			return nil, storeErr(err, "bookmark")
		}
		if !removed {
			return nil, apperrors.ErrNotBookmarked
		}
	}
	return s.Bookmarks(ctx, actorID)
}

// Bookmarks returns the actor's bookmarks, most recent first.
func (s *SocialGraph) Bookmarks(ctx context.Context, actorID uint) ([]models.Bookmark, error) {
	list, err := s.bookmarks.ListBookmarks(ctx, actorID)
	if err != nil {
		return nil, storeErr(err, "bookmark")
	}
	return list, nil
}
