package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ComplianceRecord is an audit entry written when a user passes or fails a
// compliance checkpoint (e.g. finishing a full daily assignment).
type ComplianceRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user" json:"userId"`
	Type      string             `bson:"type" json:"type"`
	Status    string             `bson:"status" json:"status"`     // "Pass" / "Fail"
	Severity  string             `bson:"severity" json:"severity"` // "info" / "warning" / "critical"
	Details   string             `bson:"details" json:"details"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// ActivityLog records an administrative action for the audit trail.
type ActivityLog struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ActorID    primitive.ObjectID `bson:"actor" json:"actorId"`
	ActorEmail string             `bson:"actorEmail" json:"actorEmail"`
	ActionType string             `bson:"actionType" json:"actionType"`
	TargetUser string             `bson:"targetUser,omitempty" json:"targetUser,omitempty"`
	Details    string             `bson:"details" json:"details"`
	Status     string             `bson:"status" json:"status"` // "success" / "warning" / "failure"
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
