package mongo

import (
	"context"
	"errors"
	"time"

	"tubecraft/contentops-app/internal/domain"
	"tubecraft/contentops-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const videoCollectionName = "ai_videos"

// mongoVideoRepository implements repository.VideoRepository
type mongoVideoRepository struct {
	collection *mongo.Collection
}

// NewMongoVideoRepository creates a new AI video repository backed by MongoDB.
func NewMongoVideoRepository(db *mongo.Database) repository.VideoRepository {
	return &mongoVideoRepository{
		collection: db.Collection(videoCollectionName),
	}
}

// Create inserts a new video into the pool.
func (r *mongoVideoRepository) Create(ctx context.Context, video *domain.AiVideo) (primitive.ObjectID, error) {
	if video.Title == "" || video.Topic == "" {
		return primitive.NilObjectID, errors.New("video title and topic are required")
	}

	video.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	video.CreatedAt = now
	video.UpdatedAt = now
	if video.Status == "" {
		video.Status = domain.VideoAvailable
	}

	result, err := r.collection.InsertOne(ctx, video)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted video ID")
	}

	return insertedID, nil
}

// GetByID retrieves a video by its ID.
func (r *mongoVideoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.AiVideo, error) {
	var video domain.AiVideo
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &video, nil
}

// List retrieves all videos, newest first.
func (r *mongoVideoRepository) List(ctx context.Context) ([]domain.AiVideo, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var videos []domain.AiVideo
	if err = cursor.All(ctx, &videos); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return videos, nil
}

// Delete removes a video document.
func (r *mongoVideoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// FindAvailable retrieves the unassigned pool in natural retrieval order.
func (r *mongoVideoRepository) FindAvailable(ctx context.Context) ([]domain.AiVideo, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"status": domain.VideoAvailable})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var videos []domain.AiVideo
	if err = cursor.All(ctx, &videos); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return videos, nil
}

// AssignedUserIDs returns the distinct users currently holding an Assigned video.
func (r *mongoVideoRepository) AssignedUserIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	filter := bson.M{"status": domain.VideoAssigned, "assignedTo": bson.M{"$ne": nil}}

	raw, err := r.collection.Distinct(ctx, "assignedTo", filter)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ClaimForUser performs the Available->Assigned transition for one specific
// video as a single conditional update. A video already claimed by a
// concurrent allocation run no longer matches the filter, so the second
// writer gets ErrNotFound and the video is never double-assigned.
func (r *mongoVideoRepository) ClaimForUser(ctx context.Context, videoID, userID primitive.ObjectID) (*domain.AiVideo, error) {
	filter := bson.M{"_id": videoID, "status": domain.VideoAvailable}
	return r.claim(ctx, filter, userID)
}

// ClaimAvailableByTopic claims any one Available video with the given topic.
func (r *mongoVideoRepository) ClaimAvailableByTopic(ctx context.Context, topic string, userID primitive.ObjectID) (*domain.AiVideo, error) {
	filter := bson.M{"status": domain.VideoAvailable, "topic": topic}
	return r.claim(ctx, filter, userID)
}

func (r *mongoVideoRepository) claim(ctx context.Context, filter bson.M, userID primitive.ObjectID) (*domain.AiVideo, error) {
	update := bson.M{
		"$set": bson.M{
			"status":     domain.VideoAssigned,
			"assignedTo": userID,
			"updatedAt":  time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var video domain.AiVideo
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &video, nil
}

// FindByAssignee retrieves the user's video in the given lifecycle status,
// most recently touched first.
func (r *mongoVideoRepository) FindByAssignee(ctx context.Context, userID primitive.ObjectID, status domain.VideoStatus) (*domain.AiVideo, error) {
	filter := bson.M{"assignedTo": userID, "status": status}
	opts := options.FindOne().SetSort(bson.D{{Key: "updatedAt", Value: -1}})

	var video domain.AiVideo
	err := r.collection.FindOne(ctx, filter, opts).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &video, nil
}

// MarkDownloaded performs the Assigned->Downloaded transition, restricted to
// the assignee. Forward-only: a Downloaded video never matches again.
func (r *mongoVideoRepository) MarkDownloaded(ctx context.Context, videoID, userID primitive.ObjectID) error {
	filter := bson.M{
		"_id":        videoID,
		"assignedTo": userID,
		"status":     domain.VideoAssigned,
	}
	update := bson.M{
		"$set": bson.M{
			"status":    domain.VideoDownloaded,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureVideoIndexes creates necessary indexes for the ai_videos collection.
func EnsureVideoIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Backs FindAvailable and topic-scoped claims
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "topic", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "assignedTo", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetSparse(true),
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
