package service

import (
	"context"
	"errors"

	"tubecraft/contentops-app/internal/domain"
	"tubecraft/contentops-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Dashboard aggregates a user's daily progress, video state and referral
// figures for the home screen.
type Dashboard struct {
	UserProfile     DashboardProfile    `json:"userProfile"`
	DailyAssignment DashboardAssignment `json:"dailyAssignment"`
	AiVideo         DashboardVideo      `json:"aiVideo"`
	Referral        DashboardReferral   `json:"referral"`
}

type DashboardProfile struct {
	FullName      string               `json:"fullName"`
	YoutubeStatus domain.ChannelStatus `json:"youtubeStatus"`
	SelectedTopic string               `json:"selectedTopic"`
	ChannelName   string               `json:"channelName"`
}

// DashboardAssignment counts today's progress. Pending includes the backlog
// carried over from yesterday's unfinished assignment.
type DashboardAssignment struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Pending   int `json:"pending"`
}

type DashboardVideo struct {
	Current        *domain.AiVideo `json:"current"`
	LastDownloaded *domain.AiVideo `json:"lastDownloaded"`
}

type DashboardReferral struct {
	ReferralID      string `json:"referralId"`
	DirectReferrals int64  `json:"directReferrals"`
}

// DashboardService builds the per-user dashboard aggregate.
type DashboardService interface {
	GetDashboard(ctx context.Context, userID primitive.ObjectID) (*Dashboard, error)
}

// dashboardService implements the DashboardService interface.
type dashboardService struct {
	userRepo       repository.UserRepository
	assignmentRepo repository.AssignmentRepository
	videoRepo      repository.VideoRepository
	clock          Clock
}

// NewDashboardService creates a new instance of dashboardService.
func NewDashboardService(
	userRepo repository.UserRepository,
	assignmentRepo repository.AssignmentRepository,
	videoRepo repository.VideoRepository,
	clock Clock,
) DashboardService {
	if clock == nil {
		clock = SystemClock()
	}
	return &dashboardService{
		userRepo:       userRepo,
		assignmentRepo: assignmentRepo,
		videoRepo:      videoRepo,
		clock:          clock,
	}
}

func (s *dashboardService) GetDashboard(ctx context.Context, userID primitive.ObjectID) (*Dashboard, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	today := domain.DayOf(s.clock.Now())
	yesterday := today.Prev()

	dash := &Dashboard{
		UserProfile: DashboardProfile{
			FullName:      user.FullName,
			YoutubeStatus: user.YoutubeStatus,
			SelectedTopic: user.SelectedTopic,
			ChannelName:   user.ChannelName,
		},
	}

	todays, err := s.assignmentRepo.GetByUserAndDate(ctx, userID, today)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if todays != nil {
		dash.DailyAssignment.Total = todays.TotalTasks
		dash.DailyAssignment.Completed = todays.DistinctCompletedCount()
	}

	pendingFromYesterday := 0
	yesterdays, err := s.assignmentRepo.GetByUserAndDate(ctx, userID, yesterday)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if yesterdays != nil && yesterdays.Status == domain.StatusInProgress {
		pendingFromYesterday = yesterdays.TotalTasks - yesterdays.DistinctCompletedCount()
	}
	dash.DailyAssignment.Pending = (dash.DailyAssignment.Total - dash.DailyAssignment.Completed) + pendingFromYesterday

	current, err := s.videoRepo.FindByAssignee(ctx, userID, domain.VideoAssigned)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	dash.AiVideo.Current = current

	lastDownloaded, err := s.videoRepo.FindByAssignee(ctx, userID, domain.VideoDownloaded)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	dash.AiVideo.LastDownloaded = lastDownloaded

	referrals, err := s.userRepo.CountReferredBy(ctx, userID)
	if err != nil {
		return nil, err
	}
	dash.Referral = DashboardReferral{
		ReferralID:      user.ReferralID,
		DirectReferrals: referrals,
	}

	return dash, nil
}
