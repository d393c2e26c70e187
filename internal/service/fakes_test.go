package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"tubecraft/contentops-app/internal/audit"
	"tubecraft/contentops-app/internal/domain"
	"tubecraft/contentops-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fixedClock pins Now() so day-boundary behavior is deterministic.
type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// recordingAudit captures emitted events for assertions.
type recordingAudit struct {
	compliance []audit.ComplianceEvent
	activity   []audit.ActivityEvent
}

func (r *recordingAudit) RecordCompliance(_ context.Context, e audit.ComplianceEvent) {
	r.compliance = append(r.compliance, e)
}

func (r *recordingAudit) LogActivity(_ context.Context, e audit.ActivityEvent) {
	r.activity = append(r.activity, e)
}

// --- user repository fake ---

type fakeUserRepo struct {
	users []*domain.User
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	for _, u := range f.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	f.users = append(f.users, user)
	return user.ID, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) FindAllocationCandidates(_ context.Context, exclude []primitive.ObjectID) ([]domain.User, error) {
	excluded := make(map[primitive.ObjectID]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}
	var out []domain.User
	for _, u := range f.users {
		if _, skip := excluded[u.ID]; skip {
			continue
		}
		if u.EligibleForAllocation() {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) CountReferredBy(_ context.Context, id primitive.ObjectID) (int64, error) {
	var n int64
	for _, u := range f.users {
		if u.ReferredBy != nil && *u.ReferredBy == id {
			n++
		}
	}
	return n, nil
}

// --- assignment repository fake ---

type fakeAssignmentRepo struct {
	assignments map[string]*domain.TaskAssignment
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: make(map[string]*domain.TaskAssignment)}
}

func assignmentKey(userID primitive.ObjectID, date domain.Day) string {
	return fmt.Sprintf("%s/%s", userID.Hex(), date)
}

func (f *fakeAssignmentRepo) Upsert(_ context.Context, userID primitive.ObjectID, date domain.Day, links []domain.TaskLink) (*domain.TaskAssignment, error) {
	key := assignmentKey(userID, date)
	now := time.Now().UTC()
	existing, ok := f.assignments[key]
	if !ok {
		existing = &domain.TaskAssignment{
			ID:        primitive.NewObjectID(),
			UserID:    userID,
			Date:      date,
			CreatedAt: now,
		}
		f.assignments[key] = existing
	}
	existing.Links = links
	existing.TotalTasks = len(links)
	existing.Status = domain.StatusInProgress
	existing.CompletedTasks = nil
	existing.UpdatedAt = now
	return existing, nil
}

func (f *fakeAssignmentRepo) GetByUserAndDate(_ context.Context, userID primitive.ObjectID, date domain.Day) (*domain.TaskAssignment, error) {
	if a, ok := f.assignments[assignmentKey(userID, date)]; ok {
		return a, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAssignmentRepo) ListByUser(_ context.Context, userID primitive.ObjectID, date domain.Day) ([]domain.TaskAssignment, error) {
	var out []domain.TaskAssignment
	for _, a := range f.assignments {
		if a.UserID != userID {
			continue
		}
		if date != "" && a.Date != date {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (f *fakeAssignmentRepo) AddCompletion(_ context.Context, userID primitive.ObjectID, date domain.Day, link string, at time.Time) (bool, error) {
	a, ok := f.assignments[assignmentKey(userID, date)]
	if !ok {
		return false, nil
	}
	for _, c := range a.CompletedTasks {
		if c.Link == link {
			return false, nil
		}
	}
	a.CompletedTasks = append(a.CompletedTasks, domain.TaskCompletion{Link: link, CompletedAt: at})
	return true, nil
}

func (f *fakeAssignmentRepo) MarkCompleted(_ context.Context, userID primitive.ObjectID, date domain.Day) (bool, error) {
	a, ok := f.assignments[assignmentKey(userID, date)]
	if !ok || a.Status != domain.StatusInProgress {
		return false, nil
	}
	a.Status = domain.StatusCompleted
	return true, nil
}

func (f *fakeAssignmentRepo) HasInProgress(_ context.Context, userID primitive.ObjectID) (bool, error) {
	for _, a := range f.assignments {
		if a.UserID == userID && a.Status == domain.StatusInProgress {
			return true, nil
		}
	}
	return false, nil
}

// --- video repository fake ---

type fakeVideoRepo struct {
	videos []*domain.AiVideo
}

func (f *fakeVideoRepo) Create(_ context.Context, video *domain.AiVideo) (primitive.ObjectID, error) {
	if video.ID.IsZero() {
		video.ID = primitive.NewObjectID()
	}
	f.videos = append(f.videos, video)
	return video.ID, nil
}

func (f *fakeVideoRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.AiVideo, error) {
	for _, v := range f.videos {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeVideoRepo) List(_ context.Context) ([]domain.AiVideo, error) {
	out := make([]domain.AiVideo, 0, len(f.videos))
	for _, v := range f.videos {
		out = append(out, *v)
	}
	return out, nil
}

func (f *fakeVideoRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	for i, v := range f.videos {
		if v.ID == id {
			f.videos = append(f.videos[:i], f.videos[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeVideoRepo) FindAvailable(_ context.Context) ([]domain.AiVideo, error) {
	var out []domain.AiVideo
	for _, v := range f.videos {
		if v.Status == domain.VideoAvailable {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *fakeVideoRepo) AssignedUserIDs(_ context.Context) ([]primitive.ObjectID, error) {
	seen := make(map[primitive.ObjectID]struct{})
	var out []primitive.ObjectID
	for _, v := range f.videos {
		if v.Status == domain.VideoAssigned && v.AssignedTo != nil {
			if _, ok := seen[*v.AssignedTo]; !ok {
				seen[*v.AssignedTo] = struct{}{}
				out = append(out, *v.AssignedTo)
			}
		}
	}
	return out, nil
}

func (f *fakeVideoRepo) ClaimForUser(_ context.Context, videoID, userID primitive.ObjectID) (*domain.AiVideo, error) {
	for _, v := range f.videos {
		if v.ID == videoID && v.Status == domain.VideoAvailable {
			uid := userID
			v.Status = domain.VideoAssigned
			v.AssignedTo = &uid
			claimed := *v
			return &claimed, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeVideoRepo) ClaimAvailableByTopic(_ context.Context, topic string, userID primitive.ObjectID) (*domain.AiVideo, error) {
	for _, v := range f.videos {
		if v.Status == domain.VideoAvailable && v.Topic == topic {
			uid := userID
			v.Status = domain.VideoAssigned
			v.AssignedTo = &uid
			claimed := *v
			return &claimed, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeVideoRepo) FindByAssignee(_ context.Context, userID primitive.ObjectID, status domain.VideoStatus) (*domain.AiVideo, error) {
	for _, v := range f.videos {
		if v.AssignedTo != nil && *v.AssignedTo == userID && v.Status == status {
			found := *v
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeVideoRepo) MarkDownloaded(_ context.Context, videoID, userID primitive.ObjectID) error {
	for _, v := range f.videos {
		if v.ID == videoID && v.AssignedTo != nil && *v.AssignedTo == userID && v.Status == domain.VideoAssigned {
			v.Status = domain.VideoDownloaded
			return nil
		}
	}
	return repository.ErrNotFound
}
