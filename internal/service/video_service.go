package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"tubecraft/contentops-app/internal/audit"
	"tubecraft/contentops-app/internal/domain"
	"tubecraft/contentops-app/internal/repository"
	"tubecraft/contentops-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrVideoNotFound        = errors.New("video not found")
	ErrVideoInputMissing    = errors.New("title, topic, and type are required")
	ErrVideoFileRequired    = errors.New("video file is required")
	ErrNoCurrentVideo       = errors.New("no video is currently assigned to this user")
	ErrVideoNotDownloadable = errors.New("video is not assigned to this user")
)

// VideoService manages the AI video pool: ingestion by staff, and the
// assignee-facing download flow.
type VideoService interface {
	Upload(ctx context.Context, actor *domain.User, title, topic, videoType, fileName, contentType string, body io.Reader) (*domain.AiVideo, error)
	List(ctx context.Context) ([]domain.AiVideo, error)
	Delete(ctx context.Context, actor *domain.User, videoID primitive.ObjectID) error

	// CurrentForUser returns the user's Assigned video, ErrNoCurrentVideo if none.
	CurrentForUser(ctx context.Context, userID primitive.ObjectID) (*domain.AiVideo, error)
	// DownloadURL returns a temporary URL for the user's own assigned video.
	DownloadURL(ctx context.Context, userID, videoID primitive.ObjectID) (string, error)
	// MarkDownloaded records that the assignee has fetched the video
	// (Assigned -> Downloaded, forward only).
	MarkDownloaded(ctx context.Context, userID, videoID primitive.ObjectID) error
}

// videoService implements the VideoService interface.
type videoService struct {
	videoRepo   repository.VideoRepository
	fileStorage storage.FileStorage
	audits      audit.Recorder
}

// NewVideoService creates a new instance of videoService.
func NewVideoService(
	videoRepo repository.VideoRepository,
	fileStorage storage.FileStorage,
	audits audit.Recorder,
) VideoService {
	return &videoService{
		videoRepo:   videoRepo,
		fileStorage: fileStorage,
		audits:      audits,
	}
}

// === Staff operations ===

func (s *videoService) Upload(ctx context.Context, actor *domain.User, title, topic, videoType, fileName, contentType string, body io.Reader) (*domain.AiVideo, error) {
	if title == "" || topic == "" || videoType == "" {
		return nil, ErrVideoInputMissing
	}
	if body == nil {
		return nil, ErrVideoFileRequired
	}

	objectKey := path.Join("ai-videos", fmt.Sprintf("%s%s", uuid.NewString(), fileExtension(fileName, contentType)))
	fileURL, err := s.fileStorage.Upload(ctx, objectKey, contentType, body)
	if err != nil {
		return nil, err
	}

	video := &domain.AiVideo{
		Title:    title,
		Topic:    topic,
		Type:     videoType,
		FileURL:  fileURL,
		FileName: objectKey,
		Status:   domain.VideoAvailable,
	}
	videoID, err := s.videoRepo.Create(ctx, video)
	if err != nil {
		// Orphaned object; best effort cleanup.
		_ = s.fileStorage.DeleteObject(ctx, objectKey)
		return nil, err
	}
	video.ID = videoID

	if actor != nil {
		s.audits.LogActivity(ctx, audit.ActivityEvent{
			ActorID:    actor.ID,
			ActorEmail: actor.Email,
			ActionType: "AIVideoUploaded",
			Details:    fmt.Sprintf("Uploaded video: %s", title),
			Status:     "success",
		})
	}

	return video, nil
}

func (s *videoService) List(ctx context.Context) ([]domain.AiVideo, error) {
	return s.videoRepo.List(ctx)
}

func (s *videoService) Delete(ctx context.Context, actor *domain.User, videoID primitive.ObjectID) error {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrVideoNotFound
		}
		return err
	}

	if err := s.fileStorage.DeleteObject(ctx, video.FileName); err != nil {
		return err
	}
	if err := s.videoRepo.Delete(ctx, videoID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrVideoNotFound
		}
		return err
	}

	if actor != nil {
		s.audits.LogActivity(ctx, audit.ActivityEvent{
			ActorID:    actor.ID,
			ActorEmail: actor.Email,
			ActionType: "AIVideoDeleted",
			Details:    fmt.Sprintf("Deleted video: %s", video.Title),
			Status:     "warning",
		})
	}

	return nil
}

// === Assignee operations ===

func (s *videoService) CurrentForUser(ctx context.Context, userID primitive.ObjectID) (*domain.AiVideo, error) {
	video, err := s.videoRepo.FindByAssignee(ctx, userID, domain.VideoAssigned)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoCurrentVideo
		}
		return nil, err
	}
	return video, nil
}

func (s *videoService) DownloadURL(ctx context.Context, userID, videoID primitive.ObjectID) (string, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrVideoNotFound
		}
		return "", err
	}
	if video.AssignedTo == nil || *video.AssignedTo != userID {
		return "", ErrVideoNotDownloadable
	}

	return s.fileStorage.GeneratePresignedDownloadURL(ctx, video.FileName, storage.DefaultPresignedURLExpiry)
}

func (s *videoService) MarkDownloaded(ctx context.Context, userID, videoID primitive.ObjectID) error {
	err := s.videoRepo.MarkDownloaded(ctx, videoID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrVideoNotDownloadable
	}
	return err
}

func fileExtension(fileName, contentType string) string {
	if ext := path.Ext(fileName); ext != "" {
		return ext
	}
	if parts := strings.Split(contentType, "/"); len(parts) == 2 && parts[1] != "" {
		return "." + parts[1]
	}
	return ""
}
