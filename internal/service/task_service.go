package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tubecraft/contentops-app/internal/audit"
	"tubecraft/contentops-app/internal/domain"
	"tubecraft/contentops-app/internal/importer"
	"tubecraft/contentops-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrAssignmentInputMissing = errors.New("user and date are required")
	ErrNoLinks                = errors.New("at least one link is required for assignment")
	ErrNoValidRows            = errors.New("no valid urls with kinds found in the import source")
	ErrLinkRequired           = errors.New("link is required")
	ErrUserNotFound           = errors.New("user not found")
	ErrAssignmentNotFound     = errors.New("assignment not found for the specified date")
	ErrAssignmentConflict     = errors.New("assignment was modified concurrently, please retry")
)

// TaskStatus is the presentation state of a single task in the daily board.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

// TaskView is one task as presented to the user, either from today's
// assignment or carried over from yesterday's unfinished one.
type TaskView struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	URL         string          `json:"youtubeUrl"`
	Kind        domain.LinkKind `json:"type"`
	Status      TaskStatus      `json:"status"`
	IsCarryOver bool            `json:"isCarryOver"`
}

// TaskBoard is the combined daily view: carry-over tasks first, then today's.
type TaskBoard struct {
	Tasks          []TaskView `json:"assignments"`
	CompletedCount int        `json:"completedCount"`
	TotalCount     int        `json:"totalCount"`
}

// RewardResult reports the outcome of the video-unlock evaluation.
type RewardResult struct {
	AiVideoUnlocked bool            `json:"aiVideoUnlocked"`
	AssignedVideo   *domain.AiVideo `json:"assignedVideo"`
}

// CompletionResult is returned by CompleteTask. Reward is nil when the
// unlock evaluation never ran (not fully complete, duplicate completion, or
// another assignment still pending).
type CompletionResult struct {
	Link   string        `json:"link"`
	Reward *RewardResult `json:"reward"`
}

// TaskService owns the daily task-assignment lifecycle.
type TaskService interface {
	// AssignLinks creates or fully replaces the user's assignment for the
	// given day. Short links come first, then long links, each preserving
	// input order. Replacing a day discards its prior completion history.
	AssignLinks(ctx context.Context, actor *domain.User, userID primitive.ObjectID, date domain.Day, shortLinks, longLinks []string) (*domain.TaskAssignment, error)
	// AssignLinksFromImport performs the same destructive upsert from raw
	// import rows, silently discarding invalid ones.
	AssignLinksFromImport(ctx context.Context, actor *domain.User, userID primitive.ObjectID, date domain.Day, rows []importer.Row) (*domain.TaskAssignment, error)
	// ListAssignments returns a user's assignments newest first, optionally
	// narrowed to one day.
	ListAssignments(ctx context.Context, userID primitive.ObjectID, date domain.Day) ([]domain.TaskAssignment, error)
	// GetTodaysBoard builds the user's daily view: yesterday's uncompleted
	// tasks carried over, then today's tasks with their completion state.
	GetTodaysBoard(ctx context.Context, userID primitive.ObjectID) (*TaskBoard, error)
	// CompleteTask records one link completion. Repeating a link is a no-op
	// success. Completing the last distinct link transitions the assignment
	// to Completed and, when no other assignment is pending, evaluates the
	// video reward.
	CompleteTask(ctx context.Context, userID primitive.ObjectID, link string, isCarryOver bool) (*CompletionResult, error)
}

// taskService implements the TaskService interface.
type taskService struct {
	assignmentRepo repository.AssignmentRepository
	userRepo       repository.UserRepository
	rewards        RewardEvaluator
	audits         audit.Recorder
	clock          Clock
}

// NewTaskService creates a new instance of taskService.
func NewTaskService(
	assignmentRepo repository.AssignmentRepository,
	userRepo repository.UserRepository,
	rewards RewardEvaluator,
	audits audit.Recorder,
	clock Clock,
) TaskService {
	if clock == nil {
		clock = SystemClock()
	}
	return &taskService{
		assignmentRepo: assignmentRepo,
		userRepo:       userRepo,
		rewards:        rewards,
		audits:         audits,
		clock:          clock,
	}
}

// === Assignment creation ===

func (s *taskService) AssignLinks(ctx context.Context, actor *domain.User, userID primitive.ObjectID, date domain.Day, shortLinks, longLinks []string) (*domain.TaskAssignment, error) {
	if userID == primitive.NilObjectID || date == "" {
		return nil, ErrAssignmentInputMissing
	}

	links := make([]domain.TaskLink, 0, len(shortLinks)+len(longLinks))
	for _, url := range shortLinks {
		links = append(links, domain.TaskLink{URL: url, Kind: domain.LinkShort})
	}
	for _, url := range longLinks {
		links = append(links, domain.TaskLink{URL: url, Kind: domain.LinkLong})
	}
	if len(links) == 0 {
		return nil, ErrNoLinks
	}

	return s.upsertAssignment(ctx, actor, userID, date, links, "UserAssignmentCreated")
}

func (s *taskService) AssignLinksFromImport(ctx context.Context, actor *domain.User, userID primitive.ObjectID, date domain.Day, rows []importer.Row) (*domain.TaskAssignment, error) {
	if userID == primitive.NilObjectID || date == "" {
		return nil, ErrAssignmentInputMissing
	}

	// Invalid rows are dropped silently; only structurally valid (url, kind)
	// pairs survive, in their original order.
	var links []domain.TaskLink
	for _, row := range rows {
		url := strings.TrimSpace(row.URL)
		kind := domain.LinkKind(strings.TrimSpace(row.Kind))
		if url == "" || !strings.HasPrefix(url, "http") {
			continue
		}
		if kind != domain.LinkShort && kind != domain.LinkLong {
			continue
		}
		links = append(links, domain.TaskLink{URL: url, Kind: kind})
	}
	if len(links) == 0 {
		return nil, ErrNoValidRows
	}

	return s.upsertAssignment(ctx, actor, userID, date, links, "UserAssignmentImported")
}

func (s *taskService) upsertAssignment(ctx context.Context, actor *domain.User, userID primitive.ObjectID, date domain.Day, links []domain.TaskLink, actionType string) (*domain.TaskAssignment, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	assignment, err := s.assignmentRepo.Upsert(ctx, userID, date, links)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAssignmentConflict
		}
		return nil, err
	}

	if actor != nil {
		s.audits.LogActivity(ctx, audit.ActivityEvent{
			ActorID:    actor.ID,
			ActorEmail: actor.Email,
			ActionType: actionType,
			TargetUser: user.Email,
			Details:    fmt.Sprintf("Assigned %d links to %s for date %s.", len(links), user.Email, date),
			Status:     "success",
		})
	}

	return assignment, nil
}

// === Viewing ===

func (s *taskService) ListAssignments(ctx context.Context, userID primitive.ObjectID, date domain.Day) ([]domain.TaskAssignment, error) {
	if userID == primitive.NilObjectID {
		return nil, ErrAssignmentInputMissing
	}
	return s.assignmentRepo.ListByUser(ctx, userID, date)
}

func (s *taskService) GetTodaysBoard(ctx context.Context, userID primitive.ObjectID) (*TaskBoard, error) {
	today := domain.DayOf(s.clock.Now())
	yesterday := today.Prev()

	board := &TaskBoard{Tasks: []TaskView{}}

	// Carry-over: yesterday's assignment, never fully completed, contributes
	// its uncompleted links in list order. These stay pending in the view;
	// they complete only through CompleteTask with isCarryOver=true.
	yesterdays, err := s.assignmentRepo.GetByUserAndDate(ctx, userID, yesterday)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if yesterdays != nil && yesterdays.Status == domain.StatusInProgress {
		done := yesterdays.Completions()
		idx := 0
		for _, link := range yesterdays.Links {
			if _, ok := done[link.URL]; ok {
				continue
			}
			idx++
			board.Tasks = append(board.Tasks, TaskView{
				ID:          fmt.Sprintf("carryover-%s-%d", yesterdays.ID.Hex(), idx),
				Title:       fmt.Sprintf("Carried Over Task #%d", idx),
				URL:         link.URL,
				Kind:        link.Kind,
				Status:      TaskPending,
				IsCarryOver: true,
			})
		}
	}

	todays, err := s.assignmentRepo.GetByUserAndDate(ctx, userID, today)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if todays != nil {
		done := todays.Completions()
		for i, link := range todays.Links {
			status := TaskPending
			if _, ok := done[link.URL]; ok {
				status = TaskCompleted
			}
			board.Tasks = append(board.Tasks, TaskView{
				ID:          fmt.Sprintf("%s-%d", todays.ID.Hex(), i+1),
				Title:       fmt.Sprintf("Today's Task #%d", i+1),
				URL:         link.URL,
				Kind:        link.Kind,
				Status:      status,
				IsCarryOver: false,
			})
		}
	}

	for _, t := range board.Tasks {
		if t.Status == TaskCompleted {
			board.CompletedCount++
		}
	}
	board.TotalCount = len(board.Tasks)

	return board, nil
}

// === Completion ===

func (s *taskService) CompleteTask(ctx context.Context, userID primitive.ObjectID, link string, isCarryOver bool) (*CompletionResult, error) {
	if link == "" {
		return nil, ErrLinkRequired
	}

	now := s.clock.Now()
	target := domain.DayOf(now)
	if isCarryOver {
		target = target.Prev()
	}

	assignment, err := s.assignmentRepo.GetByUserAndDate(ctx, userID, target)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	result := &CompletionResult{Link: link}

	// Repeat completion of the same link is a success no-op, never an error.
	if _, done := assignment.Completions()[link]; done {
		return result, nil
	}

	added, err := s.assignmentRepo.AddCompletion(ctx, userID, target, link, now)
	if err != nil {
		return nil, err
	}
	if !added {
		// A concurrent submission of the same link won the append.
		return result, nil
	}

	updated, err := s.assignmentRepo.GetByUserAndDate(ctx, userID, target)
	if err != nil {
		return nil, err
	}
	if !updated.FullyCompleted() {
		return result, nil
	}

	// Only the caller that performs the InProgress->Completed transition
	// records the compliance event and evaluates the reward.
	transitioned, err := s.assignmentRepo.MarkCompleted(ctx, userID, target)
	if err != nil {
		return nil, err
	}
	if !transitioned {
		return result, nil
	}

	s.audits.RecordCompliance(ctx, audit.ComplianceEvent{
		UserID:   userID,
		Type:     "Daily Assignment",
		Status:   "Pass",
		Severity: "info",
		Details:  fmt.Sprintf("Successfully completed all tasks for %s.", updated.Date),
	})

	// Unlocking requires the user to have cleared every outstanding daily
	// assignment, not just this one.
	hasPending, err := s.assignmentRepo.HasInProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	if hasPending {
		return result, nil
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	reward, err := s.rewards.Evaluate(ctx, user, now)
	if err != nil {
		return nil, err
	}
	result.Reward = reward

	return result, nil
}
