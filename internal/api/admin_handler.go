package api

import (
	"errors"
	"net/http"

	"tubecraft/contentops-app/internal/domain"
	"tubecraft/contentops-app/internal/importer"
	"tubecraft/contentops-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminHandler serves the technician surface: AI video management, video
// allocation and daily link assignment.
type AdminHandler struct {
	taskService       service.TaskService
	videoService      service.VideoService
	allocationService service.AllocationService
	userService       service.UserService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	taskService service.TaskService,
	videoService service.VideoService,
	allocationService service.AllocationService,
	userService service.UserService,
) *AdminHandler {
	return &AdminHandler{
		taskService:       taskService,
		videoService:      videoService,
		allocationService: allocationService,
		userService:       userService,
	}
}

// --- DTOs ---

type AssignLinksRequest struct {
	UserID     string   `json:"userId" binding:"required"`
	Date       string   `json:"date" binding:"required"`
	ShortLinks []string `json:"shortLinks"`
	LongLinks  []string `json:"longLinks"`
}

// --- Video management ---

func (h *AdminHandler) GetAiVideos(c *gin.Context) {
	videos, err := h.videoService.List(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch AI videos.")
		return
	}
	if videos == nil {
		videos = []domain.AiVideo{}
	}
	c.JSON(http.StatusOK, videos)
}

func (h *AdminHandler) UploadAiVideo(c *gin.Context) {
	actor, ok := h.currentActor(c)
	if !ok {
		return
	}

	title := c.PostForm("title")
	topic := c.PostForm("topic")
	videoType := c.PostForm("type")

	fileHeader, err := c.FormFile("videoFile")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Video file is required.")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Could not read video file.")
		return
	}
	defer file.Close()

	video, err := h.videoService.Upload(
		c.Request.Context(), actor,
		title, topic, videoType,
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file,
	)
	if err != nil {
		if errors.Is(err, service.ErrVideoInputMissing) || errors.Is(err, service.ErrVideoFileRequired) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to upload AI video.")
		return
	}

	c.JSON(http.StatusCreated, video)
}

func (h *AdminHandler) DeleteAiVideo(c *gin.Context) {
	actor, ok := h.currentActor(c)
	if !ok {
		return
	}
	videoID, err := primitive.ObjectIDFromHex(c.Param("videoId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid video ID format.")
		return
	}

	if err := h.videoService.Delete(c.Request.Context(), actor, videoID); err != nil {
		if errors.Is(err, service.ErrVideoNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to delete AI video.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": videoID.Hex()})
}

func (h *AdminHandler) AllocateAiVideos(c *gin.Context) {
	actor, ok := h.currentActor(c)
	if !ok {
		return
	}

	count, err := h.allocationService.AllocateByTopic(c.Request.Context(), actor)
	if err != nil {
		if errors.Is(err, service.ErrNoAvailableVideos) || errors.Is(err, service.ErrNoEligibleUsers) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to allocate AI videos.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"allocationCount": count})
}

// --- Assignment administration ---

func (h *AdminHandler) AssignLinks(c *gin.Context) {
	var req AssignLinksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "User ID and date are required.")
		return
	}

	actor, ok := h.currentActor(c)
	if !ok {
		return
	}
	userID, date, ok := parseAssignmentKey(c, req.UserID, req.Date)
	if !ok {
		return
	}

	assignment, err := h.taskService.AssignLinks(c.Request.Context(), actor, userID, date, req.ShortLinks, req.LongLinks)
	if err != nil {
		h.abortAssignError(c, err)
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

func (h *AdminHandler) AssignLinksCSV(c *gin.Context) {
	actor, ok := h.currentActor(c)
	if !ok {
		return
	}
	userID, date, ok := parseAssignmentKey(c, c.PostForm("userId"), c.PostForm("date"))
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("csvFile")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "CSV file is required.")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Could not read CSV file.")
		return
	}
	defer file.Close()

	rows, err := importer.ReadCSV(file)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Malformed CSV file.")
		return
	}

	assignment, err := h.taskService.AssignLinksFromImport(c.Request.Context(), actor, userID, date, rows)
	if err != nil {
		h.abortAssignError(c, err)
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

func (h *AdminHandler) GetAssignmentsForUser(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format.")
		return
	}

	var date domain.Day
	if raw := c.Query("date"); raw != "" {
		date, err = domain.ParseDay(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid date format, expected yyyy-MM-dd.")
			return
		}
	}

	assignments, err := h.taskService.ListAssignments(c.Request.Context(), userID, date)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch user assignments.")
		return
	}
	if assignments == nil {
		assignments = []domain.TaskAssignment{}
	}

	c.JSON(http.StatusOK, assignments)
}

// --- Helpers ---

func (h *AdminHandler) abortAssignError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentInputMissing),
		errors.Is(err, service.ErrNoLinks),
		errors.Is(err, service.ErrNoValidRows):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAssignmentConflict):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to create assignment.")
	}
}

// currentActor loads the acting staff user for activity logging.
func (h *AdminHandler) currentActor(c *gin.Context) (*domain.User, bool) {
	actorID, ok := currentUserID(c)
	if !ok {
		return nil, false
	}
	actor, err := h.userService.GetByID(c.Request.Context(), actorID)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to resolve acting user.")
		return nil, false
	}
	return actor, true
}

func parseAssignmentKey(c *gin.Context, rawUserID, rawDate string) (primitive.ObjectID, domain.Day, bool) {
	if rawUserID == "" || rawDate == "" {
		abortWithError(c, http.StatusBadRequest, "User ID and date are required.")
		return primitive.NilObjectID, "", false
	}
	userID, err := primitive.ObjectIDFromHex(rawUserID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format.")
		return primitive.NilObjectID, "", false
	}
	date, err := domain.ParseDay(rawDate)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid date format, expected yyyy-MM-dd.")
		return primitive.NilObjectID, "", false
	}
	return userID, date, true
}
