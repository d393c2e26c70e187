package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VideoStatus type for the AI video lifecycle. Progression is forward only:
// Available -> Assigned -> Downloaded.
type VideoStatus string

const (
	VideoAvailable  VideoStatus = "Available"
	VideoAssigned   VideoStatus = "Assigned"
	VideoDownloaded VideoStatus = "Downloaded"
)

// AiVideo is a generated video asset waiting in the pool until it is matched
// to a user whose selected topic equals its Topic tag.
type AiVideo struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title      string              `bson:"title" json:"title"`
	Topic      string              `bson:"topic" json:"topic"`
	Type       string              `bson:"type" json:"type"` // e.g. "Short", "Long"
	FileURL    string              `bson:"fileUrl" json:"fileUrl"`
	FileName   string              `bson:"fileName" json:"-"` // Object key in the S3 bucket
	Status     VideoStatus         `bson:"status" json:"status"`
	AssignedTo *primitive.ObjectID `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time           `bson:"updatedAt" json:"updatedAt"`
}
