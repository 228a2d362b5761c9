package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/quill/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrInvalidPostID = errors.New("invalid post ID format")
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostsByAuthors(ctx context.Context, authorIDs []uint, skip, limit int64) ([]models.Post, error)
	GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id string) error
	PostExists(ctx context.Context, id string) (bool, error)

	// AddLike appends a like unless userID already liked the post. It reports whether a like was added.
	AddLike(ctx context.Context, postID string, userID uint) (bool, error)
	// RemoveLike pulls userID's like and reports whether one was removed.
	RemoveLike(ctx context.Context, postID string, userID uint) (bool, error)
	AddComment(ctx context.Context, postID string, comment *models.Comment) error
	RemoveComment(ctx context.Context, postID, commentID string) (bool, error)

	ListPostIDsByAuthor(ctx context.Context, authorID uint) ([]string, error)
	DeletePostsByAuthor(ctx context.Context, authorID uint) (int64, error)
	PullCommentsByUser(ctx context.Context, userID uint) (int64, error)
	PullLikesByUser(ctx context.Context, userID uint) (int64, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// EnsureIndexes creates the indexes the feed and cascade queries rely on.
func (r *MongoPostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "comments.user_id", Value: 1}}},
		{Keys: bson.D{{Key: "likes.user_id", Value: 1}}},
	})
	return err
}

func objectID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", ErrInvalidPostID, id)
	}
	return objID, nil
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	now := time.Now()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Likes == nil {
		post.Likes = []models.Like{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *MongoPostRepository) PostExists(ctx context.Context, id string) (bool, error) {
	objID, err := objectID(id)
	if err != nil {
		return false, err
	}
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": objID}, options.Count().SetLimit(1))
	return n > 0, err
}

func (r *MongoPostRepository) find(ctx context.Context, filter interface{}, skip, limit int64) ([]models.Post, error) {
	posts := []models.Post{}
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPostsByAuthors retrieves posts written by any of the given users, newest first
func (r *MongoPostRepository) GetPostsByAuthors(ctx context.Context, authorIDs []uint, skip, limit int64) ([]models.Post, error) {
	if len(authorIDs) == 0 {
		return []models.Post{}, nil
	}
	return r.find(ctx, bson.M{"author_id": bson.M{"$in": authorIDs}}, skip, limit)
}

// GetAllPosts retrieves all posts from MongoDB with pagination
func (r *MongoPostRepository) GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	return r.find(ctx, bson.D{}, skip, limit)
}

// UpdatePost writes the editable fields of an existing post
func (r *MongoPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"title":      post.Title,
			"content":    post.Content,
			"image_urls": post.ImageURLs,
			"updated_at": post.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": post.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := objectID(id)
	if err != nil {
		return err
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *MongoPostRepository) AddLike(ctx context.Context, postID string, userID uint) (bool, error) {
	objID, err := objectID(postID)
	if err != nil {
		return false, err
	}
	filter := bson.M{"_id": objID, "likes.user_id": bson.M{"$ne": userID}}
	update := bson.M{"$push": bson.M{"likes": models.Like{UserID: userID, Date: time.Now()}}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *MongoPostRepository) RemoveLike(ctx context.Context, postID string, userID uint) (bool, error) {
	objID, err := objectID(postID)
	if err != nil {
		return false, err
	}
	update := bson.M{"$pull": bson.M{"likes": bson.M{"user_id": userID}}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, ErrPostNotFound
	}
	return res.ModifiedCount > 0, nil
}

func (r *MongoPostRepository) AddComment(ctx context.Context, postID string, comment *models.Comment) error {
	objID, err := objectID(postID)
	if err != nil {
		return err
	}
	comment.ID = primitive.NewObjectID()
	comment.Date = time.Now()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$push": bson.M{"comments": comment}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *MongoPostRepository) RemoveComment(ctx context.Context, postID, commentID string) (bool, error) {
	objID, err := objectID(postID)
	if err != nil {
		return false, err
	}
	cID, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return false, nil
	}
	update := bson.M{"$pull": bson.M{"comments": bson.M{"_id": cID}}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, ErrPostNotFound
	}
	return res.ModifiedCount > 0, nil
}

func (r *MongoPostRepository) ListPostIDsByAuthor(ctx context.Context, authorID uint) ([]string, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"author_id": authorID}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID.Hex())
	}
	return ids, nil
}

// DeletePostsByAuthor removes every post by authorID together with its embedded comments and likes.
func (r *MongoPostRepository) DeletePostsByAuthor(ctx context.Context, authorID uint) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"author_id": authorID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// PullCommentsByUser removes userID's comments from every post. Returns the number of posts modified.
func (r *MongoPostRepository) PullCommentsByUser(ctx context.Context, userID uint) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"comments.user_id": userID},
		bson.M{"$pull": bson.M{"comments": bson.M{"user_id": userID}}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// PullLikesByUser removes userID's likes from every post. Returns the number of posts modified.
func (r *MongoPostRepository) PullLikesByUser(ctx context.Context, userID uint) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"likes.user_id": userID},
		bson.M{"$pull": bson.M{"likes": bson.M{"user_id": userID}}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
