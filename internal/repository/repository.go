package repository

import (
	"context"
	"time"

	"tubecraft/contentops-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrConflict     = RepositoryError("conflict")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	// FindAllocationCandidates returns approved, verified end users with a
	// selected topic, excluding the given IDs, in stable insertion order.
	FindAllocationCandidates(ctx context.Context, exclude []primitive.ObjectID) ([]domain.User, error)
	CountReferredBy(ctx context.Context, id primitive.ObjectID) (int64, error)
}

// AssignmentRepository defines the interface for interacting with daily task
// assignments. One document exists per (user, date); the implementation must
// enforce that uniqueness at the storage layer.
type AssignmentRepository interface {
	// Upsert atomically creates or fully replaces the (user, date) assignment:
	// new links, totalTasks reset to len(links), status back to InProgress and
	// completion history cleared.
	Upsert(ctx context.Context, userID primitive.ObjectID, date domain.Day, links []domain.TaskLink) (*domain.TaskAssignment, error)
	GetByUserAndDate(ctx context.Context, userID primitive.ObjectID, date domain.Day) (*domain.TaskAssignment, error)
	// ListByUser returns a user's assignments newest-date first. A non-empty
	// date narrows the result to that single day.
	ListByUser(ctx context.Context, userID primitive.ObjectID, date domain.Day) ([]domain.TaskAssignment, error)
	// AddCompletion appends a completion event for link if and only if no
	// completion with the same link exists yet (atomic append-if-absent).
	// Returns false when the link was already completed or no assignment
	// matched; callers distinguish the two via GetByUserAndDate.
	AddCompletion(ctx context.Context, userID primitive.ObjectID, date domain.Day, link string, at time.Time) (bool, error)
	// MarkCompleted transitions the assignment from InProgress to Completed.
	// Returns true only for the caller that performed the transition.
	MarkCompleted(ctx context.Context, userID primitive.ObjectID, date domain.Day) (bool, error)
	HasInProgress(ctx context.Context, userID primitive.ObjectID) (bool, error)
}

// VideoRepository defines the interface for interacting with the AI video pool.
type VideoRepository interface {
	Create(ctx context.Context, video *domain.AiVideo) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.AiVideo, error)
	List(ctx context.Context) ([]domain.AiVideo, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindAvailable(ctx context.Context) ([]domain.AiVideo, error)
	// AssignedUserIDs returns the distinct users currently holding an Assigned
	// video.
	AssignedUserIDs(ctx context.Context) ([]primitive.ObjectID, error)
	// ClaimForUser atomically moves one specific Available video to Assigned
	// for the user. ErrNotFound when the video no longer exists or was claimed
	// by a concurrent run (first writer wins).
	ClaimForUser(ctx context.Context, videoID, userID primitive.ObjectID) (*domain.AiVideo, error)
	// ClaimAvailableByTopic atomically claims any one Available video with the
	// given topic for the user. ErrNotFound when none matches.
	ClaimAvailableByTopic(ctx context.Context, topic string, userID primitive.ObjectID) (*domain.AiVideo, error)
	FindByAssignee(ctx context.Context, userID primitive.ObjectID, status domain.VideoStatus) (*domain.AiVideo, error)
	// MarkDownloaded transitions the user's Assigned video to Downloaded.
	MarkDownloaded(ctx context.Context, videoID, userID primitive.ObjectID) error
}

// ComplianceRepository persists compliance audit records.
type ComplianceRepository interface {
	Create(ctx context.Context, record *domain.ComplianceRecord) (primitive.ObjectID, error)
}

// ActivityLogRepository persists administrative activity entries.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *domain.ActivityLog) (primitive.ObjectID, error)
}

// BlogRepository defines read access to public blog content.
type BlogRepository interface {
	List(ctx context.Context) ([]domain.BlogPost, error)
	GetBySlug(ctx context.Context, slug string) (*domain.BlogPost, error)
}
