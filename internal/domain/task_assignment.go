package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignmentStatus type for the daily assignment lifecycle
type AssignmentStatus string

const (
	StatusInProgress AssignmentStatus = "InProgress"
	StatusCompleted  AssignmentStatus = "Completed" // Terminal; never reverts
)

// LinkKind distinguishes the two task link formats.
type LinkKind string

const (
	LinkShort LinkKind = "Short"
	LinkLong  LinkKind = "Long"
)

// TaskLink is one link a user must complete.
type TaskLink struct {
	URL  string   `bson:"url" json:"url"`
	Kind LinkKind `bson:"kind" json:"kind"`
}

// TaskCompletion records one completion event. Physically appended to a list,
// but logically a set keyed by Link: duplicates by URL collapse.
type TaskCompletion struct {
	Link        string    `bson:"link" json:"link"`
	CompletedAt time.Time `bson:"completedAt" json:"completedAt"`
}

// TaskAssignment is the set of tasks given to one user for one calendar day.
// Uniquely keyed by (UserID, Date) at the storage layer.
type TaskAssignment struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"user" json:"userId"`
	Date           Day                `bson:"date" json:"date"`
	Links          []TaskLink         `bson:"links" json:"links"`
	CompletedTasks []TaskCompletion   `bson:"completedTasks" json:"completedTasks"`
	// TotalTasks is a snapshot of len(Links) taken at creation/replacement time.
	TotalTasks int              `bson:"totalTasks" json:"totalTasks"`
	Status     AssignmentStatus `bson:"status" json:"status"`
	CreatedAt  time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time        `bson:"updatedAt" json:"updatedAt"`
}

// CompletionSet maps each completed link URL to its first completion time.
type CompletionSet map[string]time.Time

// Completions collapses the completion list into a set keyed by URL. The first
// recorded timestamp wins for a duplicated URL.
func (a *TaskAssignment) Completions() CompletionSet {
	set := make(CompletionSet, len(a.CompletedTasks))
	for _, c := range a.CompletedTasks {
		if _, seen := set[c.Link]; !seen {
			set[c.Link] = c.CompletedAt
		}
	}
	return set
}

// DistinctCompletedCount is the number of unique completed link URLs. Full
// completion compares this, never len(CompletedTasks), against TotalTasks.
func (a *TaskAssignment) DistinctCompletedCount() int {
	return len(a.Completions())
}

// FullyCompleted reports whether every distinct task link has been completed.
func (a *TaskAssignment) FullyCompleted() bool {
	return a.DistinctCompletedCount() == a.TotalTasks
}
