package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemPosts is an in-memory PostRepository. Fail forces an error from the
// named method.
type MemPosts struct {
	mu    sync.Mutex
	posts map[string]*models.Post
	Fail  map[string]error
}

func NewMemPosts() *MemPosts {
	return &MemPosts{posts: map[string]*models.Post{}, Fail: map[string]error{}}
}

func (m *MemPosts) get(id string) (*models.Post, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, repositories.ErrInvalidPostID
	}
	p, ok := m.posts[id]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	return p, nil
}

func clonePost(p *models.Post) models.Post {
	c := *p
	c.Likes = append([]models.Like{}, p.Likes...)
	c.Comments = append([]models.Comment{}, p.Comments...)
	return c
}

func (m *MemPosts) CreatePost(_ context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	c := clonePost(post)
	m.posts[post.ID.Hex()] = &c
	return nil
}

func (m *MemPosts) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.get(id)
	if err != nil {
		return nil, err
	}
	c := clonePost(p)
	return &c, nil
}

func (m *MemPosts) list(match func(*models.Post) bool, skip, limit int64) []models.Post {
	var out []models.Post
	for _, p := range m.posts {
		if match(p) {
			out = append(out, clonePost(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if skip >= int64(len(out)) {
		return []models.Post{}
	}
	out = out[skip:]
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out
}

func (m *MemPosts) GetPostsByAuthors(_ context.Context, authorIDs []uint, skip, limit int64) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := map[uint]bool{}
	for _, id := range authorIDs {
		set[id] = true
	}
	return m.list(func(p *models.Post) bool { return set[p.AuthorID] }, skip, limit), nil
}

func (m *MemPosts) GetAllPosts(_ context.Context, skip, limit int64) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list(func(*models.Post) bool { return true }, skip, limit), nil
}

func (m *MemPosts) UpdatePost(_ context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.get(post.ID.Hex())
	if err != nil {
		return err
	}
	p.Title, p.Content, p.ImageURLs, p.UpdatedAt = post.Title, post.Content, post.ImageURLs, time.Now()
	return nil
}

func (m *MemPosts) DeletePost(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.get(id); err != nil {
		return err
	}
	delete(m.posts, id)
	return nil
}

func (m *MemPosts) PostExists(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := m.get(id)
	if err == repositories.ErrPostNotFound {
		return false, nil
	}
	return err == nil, err
}

func (m *MemPosts) AddLike(_ context.Context, postID string, userID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.get(postID)
	if err != nil {
		return false, err
	}
	if p.LikedBy(userID) {
		return false, nil
	}
	p.Likes = append(p.Likes, models.Like{UserID: userID, Date: time.Now()})
	return true, nil
}

func (m *MemPosts) RemoveLike(_ context.Context, postID string, userID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.get(postID)
	if err != nil {
		return false, err
	}
	n := len(p.Likes)
	p.Likes = pullLikes(p.Likes, userID)
	return len(p.Likes) != n, nil
}

func pullLikes(likes []models.Like, userID uint) []models.Like {
	out := likes[:0]
	for _, l := range likes {
		if l.UserID != userID {
			out = append(out, l)
		}
	}
	return out
}

func (m *MemPosts) AddComment(_ context.Context, postID string, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.get(postID)
	if err != nil {
		return err
	}
	comment.ID = primitive.NewObjectID()
	comment.Date = time.Now()
	p.Comments = append(p.Comments, *comment)
	return nil
}

func (m *MemPosts) RemoveComment(_ context.Context, postID, commentID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.get(postID)
	if err != nil {
		return false, err
	}
	for i, c := range p.Comments {
		if c.ID.Hex() == commentID {
			p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *MemPosts) ListPostIDsByAuthor(_ context.Context, authorID uint) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, p := range m.posts {
		if p.AuthorID == authorID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *MemPosts) DeletePostsByAuthor(_ context.Context, authorID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.Fail["DeletePostsByAuthor"]; err != nil {
		return 0, err
	}
	var n int64
	for id, p := range m.posts {
		if p.AuthorID == authorID {
			delete(m.posts, id)
			n++
		}
	}
	return n, nil
}

func (m *MemPosts) PullCommentsByUser(_ context.Context, userID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.posts {
		before := len(p.Comments)
		kept := p.Comments[:0]
		for _, c := range p.Comments {
			if c.UserID != userID {
				kept = append(kept, c)
			}
		}
		p.Comments = kept
		if len(kept) != before {
			n++
		}
	}
	return n, nil
}

func (m *MemPosts) PullLikesByUser(_ context.Context, userID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.posts {
		before := len(p.Likes)
		p.Likes = pullLikes(p.Likes, userID)
		if len(p.Likes) != before {
			n++
		}
	}
	return n, nil
}

var _ repositories.PostRepository = (*MemPosts)(nil)
