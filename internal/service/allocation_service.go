package service

import (
	"context"
	"errors"
	"fmt"

	"tubecraft/contentops-app/internal/audit"
	"tubecraft/contentops-app/internal/domain"
	"tubecraft/contentops-app/internal/repository"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrNoAvailableVideos = errors.New("no available videos to allocate")
	ErrNoEligibleUsers   = errors.New("no eligible users need a video assignment right now")
)

// AllocationService matches the Available video pool to eligible users.
type AllocationService interface {
	// AllocateByTopic runs one greedy matching pass: every Available video
	// whose topic bucket still holds an eligible user is claimed for the
	// earliest-eligible user of that topic. Returns the number of successful
	// allocations.
	AllocateByTopic(ctx context.Context, actor *domain.User) (int, error)
}

// allocationService implements the AllocationService interface.
type allocationService struct {
	videoRepo repository.VideoRepository
	userRepo  repository.UserRepository
	audits    audit.Recorder
	logger    zerolog.Logger
}

// NewAllocationService creates a new instance of allocationService.
func NewAllocationService(
	videoRepo repository.VideoRepository,
	userRepo repository.UserRepository,
	audits audit.Recorder,
	logger zerolog.Logger,
) AllocationService {
	return &allocationService{
		videoRepo: videoRepo,
		userRepo:  userRepo,
		audits:    audits,
		logger:    logger,
	}
}

// videoMatch pairs one video with the user it should be claimed for.
type videoMatch struct {
	VideoID primitive.ObjectID
	UserID  primitive.ObjectID
}

// matchVideosToUsers performs the pure greedy matching over explicit inputs:
// users are partitioned into per-topic FIFO buckets in slice order, then each
// video in slice order pops the first remaining user of its topic. A user
// receives at most one video; videos with an empty bucket stay unmatched.
// Deterministic and side-effect free; persistence is the caller's concern.
func matchVideosToUsers(videos []domain.AiVideo, users []domain.User) []videoMatch {
	buckets := make(map[string][]primitive.ObjectID)
	for _, u := range users {
		buckets[u.SelectedTopic] = append(buckets[u.SelectedTopic], u.ID)
	}

	var matches []videoMatch
	for _, v := range videos {
		queue := buckets[v.Topic]
		if len(queue) == 0 {
			continue
		}
		matches = append(matches, videoMatch{VideoID: v.ID, UserID: queue[0]})
		if len(queue) == 1 {
			delete(buckets, v.Topic)
		} else {
			buckets[v.Topic] = queue[1:]
		}
	}
	return matches
}

func (s *allocationService) AllocateByTopic(ctx context.Context, actor *domain.User) (int, error) {
	videos, err := s.videoRepo.FindAvailable(ctx)
	if err != nil {
		return 0, err
	}
	if len(videos) == 0 {
		return 0, ErrNoAvailableVideos
	}

	// Users already holding an Assigned video are excluded from this round.
	assigned, err := s.videoRepo.AssignedUserIDs(ctx)
	if err != nil {
		return 0, err
	}
	users, err := s.userRepo.FindAllocationCandidates(ctx, assigned)
	if err != nil {
		return 0, err
	}
	if len(users) == 0 {
		return 0, ErrNoEligibleUsers
	}

	matches := matchVideosToUsers(videos, users)

	// Claims are independent per video; one lost to a concurrent run is
	// skipped, not counted, and re-running allocation remains safe.
	count := 0
	for _, m := range matches {
		if _, err := s.videoRepo.ClaimForUser(ctx, m.VideoID, m.UserID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				s.logger.Debug().
					Str("video", m.VideoID.Hex()).
					Msg("video claimed by a concurrent allocation run, skipping")
				continue
			}
			return count, err
		}
		count++
	}

	if actor != nil {
		s.audits.LogActivity(ctx, audit.ActivityEvent{
			ActorID:    actor.ID,
			ActorEmail: actor.Email,
			ActionType: "AIVideoAllocated",
			Details:    fmt.Sprintf("Allocated %d videos to users based on topic preference.", count),
			Status:     "success",
		})
	}

	return count, nil
}
