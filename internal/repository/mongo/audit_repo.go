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

const (
	complianceCollectionName = "compliance_records"
	activityCollectionName   = "activity_logs"
)

// mongoComplianceRepository implements repository.ComplianceRepository
type mongoComplianceRepository struct {
	collection *mongo.Collection
}

// NewMongoComplianceRepository creates a compliance record repository backed by MongoDB.
func NewMongoComplianceRepository(db *mongo.Database) repository.ComplianceRepository {
	return &mongoComplianceRepository{
		collection: db.Collection(complianceCollectionName),
	}
}

// Create inserts a new compliance record.
func (r *mongoComplianceRepository) Create(ctx context.Context, record *domain.ComplianceRecord) (primitive.ObjectID, error) {
	record.ID = primitive.NewObjectID()
	record.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted compliance record ID")
	}
	return insertedID, nil
}

// mongoActivityLogRepository implements repository.ActivityLogRepository
type mongoActivityLogRepository struct {
	collection *mongo.Collection
}

// NewMongoActivityLogRepository creates an activity log repository backed by MongoDB.
func NewMongoActivityLogRepository(db *mongo.Database) repository.ActivityLogRepository {
	return &mongoActivityLogRepository{
		collection: db.Collection(activityCollectionName),
	}
}

// Create inserts a new activity log entry.
func (r *mongoActivityLogRepository) Create(ctx context.Context, entry *domain.ActivityLog) (primitive.ObjectID, error) {
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted activity log ID")
	}
	return insertedID, nil
}

// EnsureAuditIndexes creates indexes for both audit collections.
func EnsureAuditIndexes(ctx context.Context, compliance, activity *mongo.Collection) {
	complianceIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	activityIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "actor", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "actionType", Value: 1}},
			Options: options.Index(),
		},
	}

	if _, err := compliance.Indexes().CreateMany(ctx, complianceIndexes); err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", compliance.Name(), err)
	}
	if _, err := activity.Indexes().CreateMany(ctx, activityIndexes); err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", activity.Name(), err)
	}
}
