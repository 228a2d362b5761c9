package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/anonto42/quill/backend/internal/apperrors"
	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/repositories"
)

// LikeResult is the state of a post's like list after a toggle.
type LikeResult struct {
	Liked      bool          `json:"liked"`
	LikesCount int           `json:"likes_count"`
	Notify     *NotifyResult `json:"notification,omitempty"`
}

// ContentService owns posts and their embedded likes and comments, and
// triggers like and comment notifications.
type ContentService struct {
	posts     repositories.PostRepository
	users     repositories.UserRepository
	follows   repositories.FollowRepository
	bookmarks repositories.BookmarkRepository
	notifier  *NotificationEngine
	log       *slog.Logger
}

func NewContentService(
	posts repositories.PostRepository,
	users repositories.UserRepository,
	follows repositories.FollowRepository,
	bookmarks repositories.BookmarkRepository,
	notifier *NotificationEngine,
	logger *slog.Logger,
) *ContentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentService{
		posts:     posts,
		users:     users,
		follows:   follows,
		bookmarks: bookmarks,
		notifier:  notifier,
		log:       logger.With("component", "content"),
	}
}

func (s *ContentService) load(ctx context.Context, postID string) (*models.Post, error) {
	p, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, storeErr(err, "post")
	}
	return p, nil
}

func canModify(id *Identity, ownerID uint) bool {
	return id.IsAdmin || id.UserID == ownerID
}

func (s *ContentService) CreatePost(ctx context.Context, actor *Identity, req *models.CreatePostRequest) (*models.PostView, error) {
	p := &models.Post{
		AuthorID:  actor.UserID,
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
		ImageURLs: req.ImageURLs,
	}
	if err := s.posts.CreatePost(ctx, p); err != nil {
		return nil, storeErr(err, "post")
	}
	views, err := s.views(ctx, actor, []models.Post{*p})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *ContentService) GetPost(ctx context.Context, actor *Identity, postID string) (*models.PostView, error) {
	p, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, actor, []models.Post{*p})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListPosts lists all posts, or one author's posts when authorID is non-zero.
func (s *ContentService) ListPosts(ctx context.Context, actor *Identity, authorID uint, page, limit int) ([]models.PostView, error) {
	page, limit = NormalizePage(page, limit)
	skip := int64((page - 1) * limit)

	var (
		posts []models.Post
		err   error
	)
	if authorID != 0 {
		posts, err = s.posts.GetPostsByAuthors(ctx, []uint{authorID}, skip, int64(limit))
	} else {
		posts, err = s.posts.GetAllPosts(ctx, skip, int64(limit))
	}
	if err != nil {
		return nil, storeErr(err, "post")
	}
	return s.views(ctx, actor, posts)
}

// Feed lists posts by the authors the actor follows and the actor's own posts.
func (s *ContentService) Feed(ctx context.Context, actor *Identity, page, limit int) ([]models.PostView, error) {
	page, limit = NormalizePage(page, limit)
	authors, err := s.follows.GetFollowingIDs(ctx, actor.UserID)
	if err != nil {
		return nil, storeErr(err, "follow")
	}
	authors = append(authors, actor.UserID)

	posts, err := s.posts.GetPostsByAuthors(ctx, authors, int64((page-1)*limit), int64(limit))
	if err != nil {
		return nil, storeErr(err, "post")
	}
	return s.views(ctx, actor, posts)
}

func (s *ContentService) UpdatePost(ctx context.Context, actor *Identity, postID string, req *models.UpdatePostRequest) (*models.PostView, error) {
	p, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !canModify(actor, p.AuthorID) {
		return nil, apperrors.Forbidden("you can only edit your own posts")
	}

	if req.Title != "" {
		p.Title = strings.TrimSpace(req.Title)
	}
	if req.Content != "" {
		p.Content = req.Content
	}
	if req.ImageURLs != nil {
		p.ImageURLs = req.ImageURLs
	}
	if err := s.posts.UpdatePost(ctx, p); err != nil {
		return nil, storeErr(err, "post")
	}
	views, err := s.views(ctx, actor, []models.Post{*p})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// DeletePost removes a post, its embedded comments and likes, and every bookmark of it.
func (s *ContentService) DeletePost(ctx context.Context, actor *Identity, postID string) error {
	p, err := s.load(ctx, postID)
	if err != nil {
		return err
	}
	if !canModify(actor, p.AuthorID) {
		return apperrors.Forbidden("you can only delete your own posts")
	}
	if _, err := s.bookmarks.DeleteByPostIDs(ctx, []string{postID}); err != nil {
		return storeErr(err, "bookmark")
	}
	return storeErr(s.posts.DeletePost(ctx, postID), "post")
}

// ToggleLike likes the post, or removes the actor's like if present. Only a new
// like notifies the author.
func (s *ContentService) ToggleLike(ctx context.Context, actor *Identity, postID string) (*LikeResult, error) {
	p, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}

	res := &LikeResult{}
	if p.LikedBy(actor.UserID) {
		if _, err := s.posts.RemoveLike(ctx, postID, actor.UserID); err != nil {
			return nil, storeErr(err, "post")
		}
		res.LikesCount = len(p.Likes) - 1
		return res, nil
	}

	added, err := s.posts.AddLike(ctx, postID, actor.UserID)
	if err != nil {
		return nil, storeErr(err, "post")
	}
	res.Liked = true
	res.LikesCount = len(p.Likes)
	if !added {
		// A concurrent request liked it first.
		return res, nil
	}
	res.LikesCount++

	res.Notify, err = s.notifier.Notify(ctx, actor.UserID, models.UserRecipient{ID: p.AuthorID}, models.TypeLike, Payload{PostID: postID})
	if err != nil {
		s.log.Warn("like notification failed", "post", postID, "user", actor.UserID, "error", err)
		res.Notify = nil
	}
	return res, nil
}

// AddComment appends a comment and notifies the post's author.
func (s *ContentService) AddComment(ctx context.Context, actor *Identity, postID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.Validation("comment text is required")
	}
	p, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}

	c := &models.Comment{UserID: actor.UserID, Text: text}
	if err := s.posts.AddComment(ctx, postID, c); err != nil {
		return nil, storeErr(err, "post")
	}

	payload := Payload{PostID: postID, CommentID: c.ID.Hex()}
	if _, err := s.notifier.Notify(ctx, actor.UserID, models.UserRecipient{ID: p.AuthorID}, models.TypeComment, payload); err != nil {
		s.log.Warn("comment notification failed", "post", postID, "user", actor.UserID, "error", err)
	}
	return c, nil
}

// DeleteComment removes a comment. Allowed for the comment author, the post author and admins.
func (s *ContentService) DeleteComment(ctx context.Context, actor *Identity, postID, commentID string) error {
	p, err := s.load(ctx, postID)
	if err != nil {
		return err
	}
	c := p.FindComment(commentID)
	if c == nil {
		return apperrors.NotFound("comment not found")
	}
	if !canModify(actor, c.UserID) && actor.UserID != p.AuthorID {
		return apperrors.Forbidden("you can only delete your own comments")
	}
	removed, err := s.posts.RemoveComment(ctx, postID, commentID)
	if err != nil {
		return storeErr(err, "post")
	}
	if !removed {
		return apperrors.NotFound("comment not found")
	}
	return nil
}

// views attaches authors and the viewer's like/bookmark flags.
func (s *ContentService) views(ctx context.Context, actor *Identity, posts []models.Post) ([]models.PostView, error) {
	out := make([]models.PostView, 0, len(posts))
	if len(posts) == 0 {
		return out, nil
	}

	authorIDs := make([]uint, 0, len(posts))
	postIDs := make([]string, 0, len(posts))
	for _, p := range posts {
		authorIDs = append(authorIDs, p.AuthorID)
		postIDs = append(postIDs, p.ID.Hex())
	}
	authors, err := s.users.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	bookmarked := map[string]bool{}
	if actor != nil {
		bookmarked, err = s.bookmarks.GetBookmarkedPostIDs(ctx, actor.UserID, postIDs)
		if err != nil {
			return nil, storeErr(err, "bookmark")
		}
	}

	for _, p := range posts {
		v := models.PostView{
			Post:          p,
			Author:        models.UserCompact{ID: p.AuthorID},
			LikesCount:    len(p.Likes),
			CommentsCount: len(p.Comments),
			Bookmarked:    bookmarked[p.ID.Hex()],
		}
		if a, ok := authors[p.AuthorID]; ok {
			v.Author = a.ToCompact()
		}
		if actor != nil {
			v.Liked = p.LikedBy(actor.UserID)
		}
		out = append(out, v)
	}
	return out, nil
}
