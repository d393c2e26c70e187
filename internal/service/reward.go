package service

import (
	"context"
	"errors"
	"time"

	"tubecraft/contentops-app/internal/domain"
	"tubecraft/contentops-app/internal/repository"

	"github.com/rs/zerolog"
)

// RewardEvaluator decides whether a freshly fully-completed user unlocks an
// AI video. Invoked only from the task-completion path, after the caller has
// verified the user holds no other pending assignment.
type RewardEvaluator interface {
	Evaluate(ctx context.Context, user *domain.User, now time.Time) (*RewardResult, error)
}

type rewardEvaluator struct {
	videoRepo repository.VideoRepository
	logger    zerolog.Logger
}

// NewRewardEvaluator creates the standard odd-day reward evaluator.
func NewRewardEvaluator(videoRepo repository.VideoRepository, logger zerolog.Logger) RewardEvaluator {
	return &rewardEvaluator{videoRepo: videoRepo, logger: logger}
}

// Evaluate applies the fixed cadence gate: rewards are only considered on an
// odd calendar day of the month. On odd days it claims one Available video
// matching the user's selected topic; the claim is atomic, so a concurrent
// allocation run can never hand the same video to two users.
func (e *rewardEvaluator) Evaluate(ctx context.Context, user *domain.User, now time.Time) (*RewardResult, error) {
	reward := &RewardResult{}

	if !domain.DayOf(now).OddDayOfMonth() {
		// Even days never grant a reward; no video lookup occurs.
		return reward, nil
	}

	video, err := e.videoRepo.ClaimAvailableByTopic(ctx, user.SelectedTopic, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return reward, nil
		}
		return nil, err
	}

	e.logger.Info().
		Str("user", user.ID.Hex()).
		Str("video", video.ID.Hex()).
		Str("topic", video.Topic).
		Msg("AI video unlocked as completion reward")

	reward.AiVideoUnlocked = true
	reward.AssignedVideo = video
	return reward, nil
}
