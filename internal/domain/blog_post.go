package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BlogPost is public marketing/help content, addressed by slug.
type BlogPost struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title         string             `bson:"title" json:"title"`
	Slug          string             `bson:"slug" json:"slug"` // Should be unique
	Content       string             `bson:"content" json:"content"`
	CoverImageURL string             `bson:"coverImageUrl,omitempty" json:"coverImageUrl,omitempty"`
	Author        string             `bson:"author,omitempty" json:"author,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
