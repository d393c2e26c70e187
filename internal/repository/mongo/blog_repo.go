package mongo

import (
	"context"
	"errors"

	"tubecraft/contentops-app/internal/domain"
	"tubecraft/contentops-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const blogCollectionName = "blog_posts"

// mongoBlogRepository implements repository.BlogRepository
type mongoBlogRepository struct {
	collection *mongo.Collection
}

// NewMongoBlogRepository creates a blog post repository backed by MongoDB.
func NewMongoBlogRepository(db *mongo.Database) repository.BlogRepository {
	return &mongoBlogRepository{
		collection: db.Collection(blogCollectionName),
	}
}

// List retrieves all posts, newest first.
func (r *mongoBlogRepository) List(ctx context.Context) ([]domain.BlogPost, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []domain.BlogPost
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

// GetBySlug retrieves a single post by its slug.
func (r *mongoBlogRepository) GetBySlug(ctx context.Context, slug string) (*domain.BlogPost, error) {
	var post domain.BlogPost
	err := r.collection.FindOne(ctx, bson.M{"slug": slug}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// EnsureBlogIndexes creates necessary indexes for the blog_posts collection.
func EnsureBlogIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
