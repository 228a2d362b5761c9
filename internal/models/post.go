package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a blog post stored in MongoDB. Likes and comments are embedded.
type Post struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID  uint               `json:"author_id" bson:"author_id"`
	Title     string             `json:"title" bson:"title"`
	Content   string             `json:"content" bson:"content"`
	ImageURLs []string           `json:"image_urls,omitempty" bson:"image_urls,omitempty"`
	Likes     []Like             `json:"likes" bson:"likes"`
	Comments  []Comment          `json:"comments" bson:"comments"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// Like is an entry in a post's like list
type Like struct {
	UserID uint      `json:"user_id" bson:"user_id"`
	Date   time.Time `json:"date" bson:"date"`
}

// Comment is an entry in a post's ordered comment list
type Comment struct {
	ID     primitive.ObjectID `json:"id" bson:"_id"`
	UserID uint               `json:"user_id" bson:"user_id"`
	Text   string             `json:"text" bson:"text"`
	Date   time.Time          `json:"date" bson:"date"`
}

// LikedBy reports whether userID is in the like list.
func (p *Post) LikedBy(userID uint) bool {
	for _, l := range p.Likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}

// FindComment returns the comment with the given hex id, or nil.
func (p *Post) FindComment(commentID string) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID.Hex() == commentID {
			return &p.Comments[i]
		}
	}
	return nil
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Title     string   `json:"title" validate:"required,min=1,max=200"`
	Content   string   `json:"content" validate:"required,min=1"`
	ImageURLs []string `json:"image_urls,omitempty" validate:"omitempty,dive,url"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Title     string   `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Content   string   `json:"content,omitempty" validate:"omitempty,min=1"`
	ImageURLs []string `json:"image_urls,omitempty" validate:"omitempty,dive,url"`
}

// CreateCommentRequest defines the request body for commenting on a post
type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=1000"`
}

// PostView is a post with its author and the viewer's like/bookmark state.
type PostView struct {
	Post
	Author        UserCompact `json:"author"`
	LikesCount    int         `json:"likes_count"`
	CommentsCount int         `json:"comments_count"`
	Liked         bool        `json:"liked"`
	Bookmarked    bool        `json:"bookmarked"`
}
