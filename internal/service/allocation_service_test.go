package service

import (
	"context"
	"testing"

	"tubecraft/contentops-app/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func eligibleUser(email, topic string) *domain.User {
	return &domain.User{
		ID:            primitive.NewObjectID(),
		Email:         email,
		Role:          domain.RoleUser,
		Status:        domain.ApprovalApproved,
		YoutubeStatus: domain.ChannelVerified,
		SelectedTopic: topic,
	}
}

func availableVideo(title, topic string) *domain.AiVideo {
	return &domain.AiVideo{
		ID:     primitive.NewObjectID(),
		Title:  title,
		Topic:  topic,
		Status: domain.VideoAvailable,
	}
}

func TestMatchVideosToUsersTopicFIFO(t *testing.T) {
	userA := eligibleUser("a@example.com", "Tech")
	userB := eligibleUser("b@example.com", "Tech")
	userC := eligibleUser("c@example.com", "Cooking")

	v1 := availableVideo("v1", "Tech")
	v2 := availableVideo("v2", "Tech")
	v3 := availableVideo("v3", "Gardening")

	matches := matchVideosToUsers(
		[]domain.AiVideo{*v1, *v2, *v3},
		[]domain.User{*userA, *userB, *userC},
	)

	// Two Tech videos go to the two Tech users in insertion order; the
	// Gardening video has no taker and the Cooking user no video.
	require.Equal(t, []videoMatch{
		{VideoID: v1.ID, UserID: userA.ID},
		{VideoID: v2.ID, UserID: userB.ID},
	}, matches)
}

func TestMatchVideosToUsersOneVideoPerUser(t *testing.T) {
	user := eligibleUser("a@example.com", "Tech")
	v1 := availableVideo("v1", "Tech")
	v2 := availableVideo("v2", "Tech")

	matches := matchVideosToUsers(
		[]domain.AiVideo{*v1, *v2},
		[]domain.User{*user},
	)
	require.Equal(t, []videoMatch{{VideoID: v1.ID, UserID: user.ID}}, matches)
}

func TestAllocateByTopicAssignsMatchedVideos(t *testing.T) {
	ctx := context.Background()
	users := &fakeUserRepo{}
	videos := &fakeVideoRepo{}
	audits := &recordingAudit{}

	userA := eligibleUser("a@example.com", "Tech")
	userB := eligibleUser("b@example.com", "Cooking")
	users.users = append(users.users, userA, userB)

	vTech := availableVideo("tech-1", "Tech")
	vCooking := availableVideo("cooking-1", "Cooking")
	vGardening := availableVideo("gardening-1", "Gardening")
	videos.videos = append(videos.videos, vTech, vCooking, vGardening)

	actor := &domain.User{ID: primitive.NewObjectID(), Email: "admin@example.com", Role: domain.RoleSuperAdmin}
	svc := NewAllocationService(videos, users, audits, zerolog.Nop())

	count, err := svc.AllocateByTopic(ctx, actor)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	require.Equal(t, domain.VideoAssigned, vTech.Status)
	require.Equal(t, userA.ID, *vTech.AssignedTo)
	require.Equal(t, domain.VideoAssigned, vCooking.Status)
	require.Equal(t, userB.ID, *vCooking.AssignedTo)
	require.Equal(t, domain.VideoAvailable, vGardening.Status)

	require.Len(t, audits.activity, 1)
	require.Equal(t, "AIVideoAllocated", audits.activity[0].ActionType)
}

func TestAllocateByTopicExcludesUsersHoldingVideo(t *testing.T) {
	ctx := context.Background()
	users := &fakeUserRepo{}
	videos := &fakeVideoRepo{}

	userA := eligibleUser("a@example.com", "Tech")
	userB := eligibleUser("b@example.com", "Tech")
	users.users = append(users.users, userA, userB)

	held := availableVideo("held", "Tech")
	held.Status = domain.VideoAssigned
	held.AssignedTo = &userA.ID
	fresh := availableVideo("fresh", "Tech")
	videos.videos = append(videos.videos, held, fresh)

	svc := NewAllocationService(videos, users, &recordingAudit{}, zerolog.Nop())

	count, err := svc.AllocateByTopic(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.Equal(t, userB.ID, *fresh.AssignedTo)
}

func TestAllocateByTopicNoAvailableVideos(t *testing.T) {
	users := &fakeUserRepo{}
	users.users = append(users.users, eligibleUser("a@example.com", "Tech"))
	svc := NewAllocationService(&fakeVideoRepo{}, users, &recordingAudit{}, zerolog.Nop())

	_, err := svc.AllocateByTopic(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoAvailableVideos)
}

func TestAllocateByTopicNoEligibleUsers(t *testing.T) {
	videos := &fakeVideoRepo{}
	videos.videos = append(videos.videos, availableVideo("v1", "Tech"))

	users := &fakeUserRepo{}
	// Pending approval, so never a candidate.
	pending := eligibleUser("a@example.com", "Tech")
	pending.Status = domain.ApprovalPending
	users.users = append(users.users, pending)

	svc := NewAllocationService(videos, users, &recordingAudit{}, zerolog.Nop())

	_, err := svc.AllocateByTopic(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoEligibleUsers)
}
