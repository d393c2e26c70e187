package api

import (
	"errors"
	"net/http"

	"tubecraft/contentops-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserHandler serves the end-user surface: the daily task board, task
// completion, the dashboard and the assigned-video flow.
type UserHandler struct {
	taskService      service.TaskService
	videoService     service.VideoService
	dashboardService service.DashboardService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(
	taskService service.TaskService,
	videoService service.VideoService,
	dashboardService service.DashboardService,
) *UserHandler {
	return &UserHandler{
		taskService:      taskService,
		videoService:     videoService,
		dashboardService: dashboardService,
	}
}

// --- DTOs ---

type CompleteTaskRequest struct {
	Link        string `json:"link" binding:"required"`
	IsCarryOver bool   `json:"isCarryOver"`
}

// --- Handler Methods ---

// GetTodaysAssignments returns the combined daily board: carry-over tasks
// from yesterday's unfinished assignment followed by today's tasks.
func (h *UserHandler) GetTodaysAssignments(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	board, err := h.taskService.GetTodaysBoard(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch assignments.")
		return
	}

	c.JSON(http.StatusOK, board)
}

// CompleteTask marks one link as completed on today's (or, for carry-over
// tasks, yesterday's) assignment.
func (h *UserHandler) CompleteTask(c *gin.Context) {
	var req CompleteTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Link is required.")
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.taskService.CompleteTask(c.Request.Context(), userID, req.Link, req.IsCarryOver)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLinkRequired):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrAssignmentNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to complete task.")
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetDashboard returns the per-user aggregate view.
func (h *UserHandler) GetDashboard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	dashboard, err := h.dashboardService.GetDashboard(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch dashboard data.")
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// GetCurrentVideo returns the user's currently assigned AI video.
func (h *UserHandler) GetCurrentVideo(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	video, err := h.videoService.CurrentForUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNoCurrentVideo) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch assigned video.")
		return
	}

	c.JSON(http.StatusOK, video)
}

// GetVideoDownloadURL returns a temporary download URL for the user's own
// assigned video.
func (h *UserHandler) GetVideoDownloadURL(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	videoID, err := primitive.ObjectIDFromHex(c.Param("videoId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid video ID format.")
		return
	}

	url, err := h.videoService.DownloadURL(c.Request.Context(), userID, videoID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVideoNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrVideoNotDownloadable):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to generate download URL.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"downloadUrl": url})
}

// MarkVideoDownloaded records that the user fetched their assigned video.
func (h *UserHandler) MarkVideoDownloaded(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	videoID, err := primitive.ObjectIDFromHex(c.Param("videoId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid video ID format.")
		return
	}

	if err := h.videoService.MarkDownloaded(c.Request.Context(), userID, videoID); err != nil {
		if errors.Is(err, service.ErrVideoNotDownloadable) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to mark video as downloaded.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": videoID.Hex(), "status": "Downloaded"})
}

// currentUserID extracts and parses the authenticated user's ID, aborting
// the request on failure.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format in token.")
		return primitive.NilObjectID, false
	}
	return id, true
}
