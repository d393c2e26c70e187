package service

import (
	"context"
	"testing"
	"time"

	"tubecraft/contentops-app/internal/domain"
	"tubecraft/contentops-app/internal/importer"
	"tubecraft/contentops-app/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// oddDay falls on an odd day of the month, evenDay on an even one.
var (
	oddDay  = time.Date(2025, 4, 17, 10, 0, 0, 0, time.UTC)
	evenDay = time.Date(2025, 4, 16, 10, 0, 0, 0, time.UTC)
)

type taskFixture struct {
	service     TaskService
	assignments *fakeAssignmentRepo
	users       *fakeUserRepo
	videos      *fakeVideoRepo
	audits      *recordingAudit
}

func newTaskFixture(now time.Time) *taskFixture {
	assignments := newFakeAssignmentRepo()
	users := &fakeUserRepo{}
	videos := &fakeVideoRepo{}
	audits := &recordingAudit{}
	rewards := NewRewardEvaluator(videos, zerolog.Nop())
	return &taskFixture{
		service:     NewTaskService(assignments, users, rewards, audits, fixedClock{t: now}),
		assignments: assignments,
		users:       users,
		videos:      videos,
		audits:      audits,
	}
}

func (f *taskFixture) addUser(t *testing.T, topic string) *domain.User {
	t.Helper()
	user := &domain.User{
		ID:            primitive.NewObjectID(),
		FullName:      "Test User",
		Email:         "user@example.com",
		Role:          domain.RoleUser,
		Status:        domain.ApprovalApproved,
		YoutubeStatus: domain.ChannelVerified,
		SelectedTopic: topic,
	}
	_, err := f.users.Create(context.Background(), user)
	require.NoError(t, err)
	return user
}

func TestAssignLinksShortLinksFirst(t *testing.T) {
	f := newTaskFixture(oddDay)
	user := f.addUser(t, "Tech")
	actor := &domain.User{ID: primitive.NewObjectID(), Email: "admin@example.com", Role: domain.RoleTechnician}

	assignment, err := f.service.AssignLinks(context.Background(), actor, user.ID, "2025-04-17",
		[]string{"https://yt/s1", "https://yt/s2"},
		[]string{"https://yt/l1"},
	)
	require.NoError(t, err)

	require.Equal(t, 3, assignment.TotalTasks)
	require.Equal(t, domain.StatusInProgress, assignment.Status)
	require.Equal(t, []domain.TaskLink{
		{URL: "https://yt/s1", Kind: domain.LinkShort},
		{URL: "https://yt/s2", Kind: domain.LinkShort},
		{URL: "https://yt/l1", Kind: domain.LinkLong},
	}, assignment.Links)

	require.Len(t, f.audits.activity, 1)
	require.Equal(t, "UserAssignmentCreated", f.audits.activity[0].ActionType)
	require.Equal(t, user.Email, f.audits.activity[0].TargetUser)
}

func TestAssignLinksValidation(t *testing.T) {
	f := newTaskFixture(oddDay)
	user := f.addUser(t, "Tech")

	_, err := f.service.AssignLinks(context.Background(), nil, primitive.NilObjectID, "2025-04-17", []string{"https://yt/a"}, nil)
	require.ErrorIs(t, err, ErrAssignmentInputMissing)

	_, err = f.service.AssignLinks(context.Background(), nil, user.ID, "", []string{"https://yt/a"}, nil)
	require.ErrorIs(t, err, ErrAssignmentInputMissing)

	_, err = f.service.AssignLinks(context.Background(), nil, user.ID, "2025-04-17", nil, nil)
	require.ErrorIs(t, err, ErrNoLinks)

	_, err = f.service.AssignLinks(context.Background(), nil, primitive.NewObjectID(), "2025-04-17", []string{"https://yt/a"}, nil)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestAssignLinksReplacesDayAndClearsCompletions(t *testing.T) {
	f := newTaskFixture(oddDay)
	user := f.addUser(t, "Tech")
	ctx := context.Background()

	first, err := f.service.AssignLinks(ctx, nil, user.ID, "2025-04-17", []string{"https://yt/a", "https://yt/b"}, nil)
	require.NoError(t, err)

	added, err := f.assignments.AddCompletion(ctx, user.ID, "2025-04-17", "https://yt/a", oddDay)
	require.NoError(t, err)
	require.True(t, added)

	second, err := f.service.AssignLinks(ctx, nil, user.ID, "2025-04-17", []string{"https://yt/c"}, nil)
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Empty(t, second.CompletedTasks)
	require.Equal(t, 1, second.TotalTasks)
	require.Equal(t, domain.StatusInProgress, second.Status)
}

// conflictingAssignmentRepo simulates losing the unique-index upsert race.
type conflictingAssignmentRepo struct {
	*fakeAssignmentRepo
}

func (r conflictingAssignmentRepo) Upsert(context.Context, primitive.ObjectID, domain.Day, []domain.TaskLink) (*domain.TaskAssignment, error) {
	return nil, repository.ErrConflict
}

func TestAssignLinksSurfacesUpsertConflict(t *testing.T) {
	f := newTaskFixture(oddDay)
	user := f.addUser(t, "Tech")

	svc := NewTaskService(
		conflictingAssignmentRepo{f.assignments},
		f.users,
		NewRewardEvaluator(f.videos, zerolog.Nop()),
		f.audits,
		fixedClock{t: oddDay},
	)

	_, err := svc.AssignLinks(context.Background(), nil, user.ID, "2025-04-17", []string{"https://yt/a"}, nil)
	require.ErrorIs(t, err, ErrAssignmentConflict)
}

func TestAssignLinksFromImportFiltersInvalidRows(t *testing.T) {
	f := newTaskFixture(oddDay)
	user := f.addUser(t, "Tech")

	rows := []importer.Row{
		{URL: "  https://yt/good  ", Kind: " Short "},
		{URL: "ftp://yt/bad-scheme", Kind: "Short"},
		{URL: "https://yt/bad-kind", Kind: "Medium"},
		{URL: "", Kind: "Long"},
	}
	assignment, err := f.service.AssignLinksFromImport(context.Background(), nil, user.ID, "2025-04-17", rows)
	require.NoError(t, err)
	require.Equal(t, []domain.TaskLink{
		{URL: "https://yt/good", Kind: domain.LinkShort},
	}, assignment.Links)

	_, err = f.service.AssignLinksFromImport(context.Background(), nil, user.ID, "2025-04-17", []importer.Row{
		{URL: "notaurl", Kind: "Short"},
	})
	require.ErrorIs(t, err, ErrNoValidRows)
}

func TestGetTodaysBoardAllPending(t *testing.T) {
	f := newTaskFixture(oddDay)
	user := f.addUser(t, "Tech")
	ctx := context.Background()

	_, err := f.service.AssignLinks(ctx, nil, user.ID, "2025-04-17", []string{"https://yt/a"}, []string{"https://yt/b"})
	require.NoError(t, err)

	board, err := f.service.GetTodaysBoard(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, 2, board.TotalCount)
	require.Equal(t, 0, board.CompletedCount)
	for _, task := range board.Tasks {
		require.Equal(t, TaskPending, task.Status)
		require.False(t, task.IsCarryOver)
	}
}

func TestGetTodaysBoardCarriesOverUncompletedTasks(t *testing.T) {
	f := newTaskFixture(oddDay)
	user := f.addUser(t, "Tech")
	ctx := context.Background()

	// Yesterday: three tasks, one already done, never fully completed.
	_, err := f.service.AssignLinks(ctx, nil, user.ID, "2025-04-16",
		[]string{"https://yt/y1", "https://yt/y2", "https://yt/y3"}, nil)
	require.NoError(t, err)
	added, err := f.assignments.AddCompletion(ctx, user.ID, "2025-04-16", "https://yt/y2", evenDay)
	require.NoError(t, err)
	require.True(t, added)

	_, err = f.service.AssignLinks(ctx, nil, user.ID, "2025-04-17", []string{"https://yt/t1"}, nil)
	require.NoError(t, err)

	board, err := f.service.GetTodaysBoard(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, 3, board.TotalCount)
	require.Equal(t, 0, board.CompletedCount)

	// Carry-over tasks come first and preserve yesterday's link order.
	require.True(t, board.Tasks[0].IsCarryOver)
	require.Equal(t, "https://yt/y1", board.Tasks[0].URL)
	require.True(t, board.Tasks[1].IsCarryOver)
	require.Equal(t, "https://yt/y3", board.Tasks[1].URL)
	require.False(t, board.Tasks[2].IsCarryOver)
	require.Equal(t, "https://yt/t1", board.Tasks[2].URL)
}

func TestGetTodaysBoardSkipsCompletedYesterday(t *testing.T) {
	f := newTaskFixture(oddDay)
	user := f.addUser(t, "Tech")
	ctx := context.Background()

	_, err := f.service.AssignLinks(ctx, nil, user.ID, "2025-04-16", []string{"https://yt/y1"}, nil)
	require.NoError(t, err)
	_, err = f.assignments.AddCompletion(ctx, user.ID, "2025-04-16", "https://yt/y1", evenDay)
	require.NoError(t, err)
	_, err = f.assignments.MarkCompleted(ctx, user.ID, "2025-04-16")
	require.NoError(t, err)

	board, err := f.service.GetTodaysBoard(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, board.Tasks)
}

func TestCompleteTaskValidation(t *testing.T) {
	f := newTaskFixture(oddDay)
	user := f.addUser(t, "Tech")

	_, err := f.service.CompleteTask(context.Background(), user.ID, "", false)
	require.ErrorIs(t, err, ErrLinkRequired)

	_, err = f.service.CompleteTask(context.Background(), user.ID, "https://yt/a", false)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestCompleteTaskIdempotent(t *testing.T) {
	f := newTaskFixture(oddDay)
	user := f.addUser(t, "Tech")
	ctx := context.Background()

	_, err := f.service.AssignLinks(ctx, nil, user.ID, "2025-04-17", []string{"https://yt/a", "https://yt/b"}, nil)
	require.NoError(t, err)

	first, err := f.service.CompleteTask(ctx, user.ID, "https://yt/a", false)
	require.NoError(t, err)
	require.Nil(t, first.Reward)

	// Repeating the same link is a success no-op with no reward evaluation.
	second, err := f.service.CompleteTask(ctx, user.ID, "https://yt/a", false)
	require.NoError(t, err)
	require.Nil(t, second.Reward)

	assignment, err := f.assignments.GetByUserAndDate(ctx, user.ID, "2025-04-17")
	require.NoError(t, err)
	require.Equal(t, 1, assignment.DistinctCompletedCount())
	require.Equal(t, domain.StatusInProgress, assignment.Status)
	require.Empty(t, f.audits.compliance)
}

func TestCompleteTaskFullCompletionUnlocksVideoOnOddDay(t *testing.T) {
	f := newTaskFixture(oddDay)
	user := f.addUser(t, "Tech")
	ctx := context.Background()

	video := &domain.AiVideo{Title: "Intro to Go", Topic: "Tech", Status: domain.VideoAvailable}
	_, err := f.videos.Create(ctx, video)
	require.NoError(t, err)

	_, err = f.service.AssignLinks(ctx, nil, user.ID, "2025-04-17", []string{"https://yt/a"}, nil)
	require.NoError(t, err)

	result, err := f.service.CompleteTask(ctx, user.ID, "https://yt/a", false)
	require.NoError(t, err)
	require.NotNil(t, result.Reward)
	require.True(t, result.Reward.AiVideoUnlocked)
	require.NotNil(t, result.Reward.AssignedVideo)
	require.Equal(t, video.ID, result.Reward.AssignedVideo.ID)

	require.Equal(t, domain.VideoAssigned, video.Status)
	require.NotNil(t, video.AssignedTo)
	require.Equal(t, user.ID, *video.AssignedTo)

	assignment, err := f.assignments.GetByUserAndDate(ctx, user.ID, "2025-04-17")
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, assignment.Status)

	require.Len(t, f.audits.compliance, 1)
	require.Equal(t, "Pass", f.audits.compliance[0].Status)
	require.Equal(t, user.ID, f.audits.compliance[0].UserID)
}

func TestCompleteTaskNoRewardOnEvenDay(t *testing.T) {
	f := newTaskFixture(evenDay)
	user := f.addUser(t, "Tech")
	ctx := context.Background()

	video := &domain.AiVideo{Title: "Intro to Go", Topic: "Tech", Status: domain.VideoAvailable}
	_, err := f.videos.Create(ctx, video)
	require.NoError(t, err)

	_, err = f.service.AssignLinks(ctx, nil, user.ID, "2025-04-16", []string{"https://yt/a"}, nil)
	require.NoError(t, err)

	result, err := f.service.CompleteTask(ctx, user.ID, "https://yt/a", false)
	require.NoError(t, err)
	require.NotNil(t, result.Reward)
	require.False(t, result.Reward.AiVideoUnlocked)
	require.Nil(t, result.Reward.AssignedVideo)

	// The pool is never touched on an even day.
	require.Equal(t, domain.VideoAvailable, video.Status)
	require.Len(t, f.audits.compliance, 1)
}

func TestCompleteTaskNoRewardWithNoMatchingVideo(t *testing.T) {
	f := newTaskFixture(oddDay)
	user := f.addUser(t, "Tech")
	ctx := context.Background()

	video := &domain.AiVideo{Title: "Sourdough Basics", Topic: "Cooking", Status: domain.VideoAvailable}
	_, err := f.videos.Create(ctx, video)
	require.NoError(t, err)

	_, err = f.service.AssignLinks(ctx, nil, user.ID, "2025-04-17", []string{"https://yt/a"}, nil)
	require.NoError(t, err)

	result, err := f.service.CompleteTask(ctx, user.ID, "https://yt/a", false)
	require.NoError(t, err)
	require.NotNil(t, result.Reward)
	require.False(t, result.Reward.AiVideoUnlocked)
	require.Equal(t, domain.VideoAvailable, video.Status)
}

func TestCompleteTaskNoRewardWhileAnotherAssignmentPending(t *testing.T) {
	f := newTaskFixture(oddDay)
	user := f.addUser(t, "Tech")
	ctx := context.Background()

	video := &domain.AiVideo{Title: "Intro to Go", Topic: "Tech", Status: domain.VideoAvailable}
	_, err := f.videos.Create(ctx, video)
	require.NoError(t, err)

	// Yesterday stays InProgress, blocking the unlock.
	_, err = f.service.AssignLinks(ctx, nil, user.ID, "2025-04-16", []string{"https://yt/y1"}, nil)
	require.NoError(t, err)
	_, err = f.service.AssignLinks(ctx, nil, user.ID, "2025-04-17", []string{"https://yt/a"}, nil)
	require.NoError(t, err)

	result, err := f.service.CompleteTask(ctx, user.ID, "https://yt/a", false)
	require.NoError(t, err)
	require.Nil(t, result.Reward)
	require.Equal(t, domain.VideoAvailable, video.Status)

	// The completion itself is still recorded as compliant.
	require.Len(t, f.audits.compliance, 1)

	// Clearing the carried-over task now triggers the unlock.
	result, err = f.service.CompleteTask(ctx, user.ID, "https://yt/y1", true)
	require.NoError(t, err)
	require.NotNil(t, result.Reward)
	require.True(t, result.Reward.AiVideoUnlocked)
	require.Equal(t, domain.VideoAssigned, video.Status)
}

func TestCompleteTaskCarryOverTargetsYesterday(t *testing.T) {
	f := newTaskFixture(oddDay)
	user := f.addUser(t, "Tech")
	ctx := context.Background()

	_, err := f.service.AssignLinks(ctx, nil, user.ID, "2025-04-16", []string{"https://yt/y1", "https://yt/y2"}, nil)
	require.NoError(t, err)

	result, err := f.service.CompleteTask(ctx, user.ID, "https://yt/y1", true)
	require.NoError(t, err)
	require.Nil(t, result.Reward)

	yesterdays, err := f.assignments.GetByUserAndDate(ctx, user.ID, "2025-04-16")
	require.NoError(t, err)
	require.Equal(t, 1, yesterdays.DistinctCompletedCount())
	require.Equal(t, domain.StatusInProgress, yesterdays.Status)
}
