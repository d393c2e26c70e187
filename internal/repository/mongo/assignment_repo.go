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

const assignmentCollectionName = "user_assignments"

// mongoAssignmentRepository implements repository.AssignmentRepository
type mongoAssignmentRepository struct {
	collection *mongo.Collection
}

// NewMongoAssignmentRepository creates a new assignment repository backed by MongoDB.
func NewMongoAssignmentRepository(db *mongo.Database) repository.AssignmentRepository {
	return &mongoAssignmentRepository{
		collection: db.Collection(assignmentCollectionName),
	}
}

// Upsert creates or fully replaces the (user, date) assignment document in a
// single atomic FindOneAndUpdate. Re-assigning a day deliberately discards the
// prior link list and completion history. Concurrent upserts for the same key
// cannot produce duplicate documents thanks to the unique (user, date) index;
// a duplicate-key race that slips through the upsert window is surfaced as
// ErrConflict so the caller can retry.
func (r *mongoAssignmentRepository) Upsert(ctx context.Context, userID primitive.ObjectID, date domain.Day, links []domain.TaskLink) (*domain.TaskAssignment, error) {
	if userID == primitive.NilObjectID || date == "" {
		return nil, errors.New("assignment requires user and date")
	}

	now := time.Now().UTC()
	filter := bson.M{"user": userID, "date": date}
	update := bson.M{
		"$set": bson.M{
			"links":          links,
			"totalTasks":     len(links),
			"status":         domain.StatusInProgress,
			"completedTasks": []domain.TaskCompletion{},
			"updatedAt":      now,
		},
		"$setOnInsert": bson.M{
			"user":      userID,
			"date":      date,
			"createdAt": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var assignment domain.TaskAssignment
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&assignment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return &assignment, nil
}

// GetByUserAndDate retrieves the assignment for one user on one calendar day.
func (r *mongoAssignmentRepository) GetByUserAndDate(ctx context.Context, userID primitive.ObjectID, date domain.Day) (*domain.TaskAssignment, error) {
	var assignment domain.TaskAssignment
	filter := bson.M{"user": userID, "date": date}

	err := r.collection.FindOne(ctx, filter).Decode(&assignment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

// ListByUser retrieves a user's assignments, newest date first. Passing a
// non-empty date narrows the result to that day.
func (r *mongoAssignmentRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, date domain.Day) ([]domain.TaskAssignment, error) {
	filter := bson.M{"user": userID}
	if date != "" {
		filter["date"] = date
	}
	// Date strings sort lexicographically in chronological order.
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assignments []domain.TaskAssignment
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return assignments, nil
}

// AddCompletion appends {link, at} to completedTasks only when the link is
// absent, as one conditional update. Two concurrent completions of different
// links both land (each matches the guard for its own link); a duplicate of
// the same link matches nothing and reports added=false.
func (r *mongoAssignmentRepository) AddCompletion(ctx context.Context, userID primitive.ObjectID, date domain.Day, link string, at time.Time) (bool, error) {
	filter := bson.M{
		"user":                userID,
		"date":                date,
		"completedTasks.link": bson.M{"$ne": link},
	}
	update := bson.M{
		"$push": bson.M{"completedTasks": domain.TaskCompletion{Link: link, CompletedAt: at}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

// MarkCompleted flips status to Completed only while it is still InProgress,
// so exactly one caller observes the transition.
func (r *mongoAssignmentRepository) MarkCompleted(ctx context.Context, userID primitive.ObjectID, date domain.Day) (bool, error) {
	filter := bson.M{
		"user":   userID,
		"date":   date,
		"status": domain.StatusInProgress,
	}
	update := bson.M{
		"$set": bson.M{
			"status":    domain.StatusCompleted,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

// HasInProgress reports whether the user has any assignment, on any date,
// still in progress.
func (r *mongoAssignmentRepository) HasInProgress(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	filter := bson.M{"user": userID, "status": domain.StatusInProgress}
	opts := options.Count().SetLimit(1)

	count, err := r.collection.CountDocuments(ctx, filter, opts)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// EnsureAssignmentIndexes creates necessary indexes for the user_assignments
// collection. The unique (user, date) index is load-bearing: Upsert relies on
// it to keep one document per user per day under concurrent writes.
func EnsureAssignmentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Backs the HasInProgress pending-assignment probe
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
