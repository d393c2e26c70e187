package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleUser       Role = "user"
	RoleTechnician Role = "technician"
	RoleSuperAdmin Role = "super_admin"
)

// ApprovalStatus tracks account review by an admin.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "Pending"
	ApprovalApproved ApprovalStatus = "Approved"
	ApprovalRejected ApprovalStatus = "Rejected"
)

// ChannelStatus tracks external channel verification.
type ChannelStatus string

const (
	ChannelPending  ChannelStatus = "Pending"
	ChannelVerified ChannelStatus = "Verified"
)

// User represents a platform member (end user, technician or super admin).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName     string             `bson:"fullName" json:"fullName"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	Status       ApprovalStatus     `bson:"status" json:"status"`

	// --- End-user specific ---
	YoutubeStatus ChannelStatus `bson:"youtubeStatus,omitempty" json:"youtubeStatus,omitempty"`
	SelectedTopic string        `bson:"selectedTopic,omitempty" json:"selectedTopic,omitempty"`
	ChannelName   string        `bson:"channelName,omitempty" json:"channelName,omitempty"`

	// Referral chain. ReferralID is this user's shareable code; ReferredBy is the
	// user who recruited them (pointer, as most users have none).
	ReferralID string              `bson:"referralId,omitempty" json:"referralId,omitempty"`
	ReferredBy *primitive.ObjectID `bson:"referredBy,omitempty" json:"referredBy,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsEndUser() bool {
	return u.Role == RoleUser
}

func (u *User) IsStaff() bool {
	return u.Role == RoleTechnician || u.Role == RoleSuperAdmin
}

// EligibleForAllocation reports whether this user qualifies to receive an AI
// video: approved end user, verified channel, and a selected topic. Holding an
// already-assigned video is checked against the video pool, not here.
func (u *User) EligibleForAllocation() bool {
	return u.IsEndUser() &&
		u.Status == ApprovalApproved &&
		u.YoutubeStatus == ChannelVerified &&
		u.SelectedTopic != ""
}
