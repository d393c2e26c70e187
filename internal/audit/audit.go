package audit

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ComplianceEvent is emitted by core services when a user passes or fails a
// compliance checkpoint.
type ComplianceEvent struct {
	UserID   primitive.ObjectID
	Type     string
	Status   string
	Severity string
	Details  string
}

// ActivityEvent records an administrative action.
type ActivityEvent struct {
	ActorID    primitive.ObjectID
	ActorEmail string
	ActionType string
	TargetUser string
	Details    string
	Status     string
}

// Recorder consumes audit events. Implementations are best-effort: a sink
// failure must never fail the operation that emitted the event, so neither
// method returns an error.
type Recorder interface {
	RecordCompliance(ctx context.Context, event ComplianceEvent)
	LogActivity(ctx context.Context, event ActivityEvent)
}

// Discard is a Recorder that drops every event. Useful in tests.
type Discard struct{}

func (Discard) RecordCompliance(context.Context, ComplianceEvent) {}

func (Discard) LogActivity(context.Context, ActivityEvent) {}
