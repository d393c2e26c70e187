package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"tubecraft/contentops-app/internal/domain"
	"tubecraft/contentops-app/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	FullName      string `json:"fullName" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=8"`
	ChannelName   string `json:"channelName"`
	SelectedTopic string `json:"selectedTopic"`
}

// UserResponse excludes sensitive info like password hash
type UserResponse struct {
	ID            string                `json:"id"`
	FullName      string                `json:"fullName"`
	Email         string                `json:"email"`
	Role          domain.Role           `json:"role"`
	Status        domain.ApprovalStatus `json:"status"`
	YoutubeStatus domain.ChannelStatus  `json:"youtubeStatus,omitempty"`
	SelectedTopic string                `json:"selectedTopic,omitempty"`
	ChannelName   string                `json:"channelName,omitempty"`
	ReferralID    string                `json:"referralId,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// --- Handler Methods ---

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.FullName, req.Email, req.Password, req.ChannelName, req.SelectedTopic)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else if errors.Is(err, service.ErrHashingFailed) {
			abortWithError(c, http.StatusInternalServerError, "Could not process registration")
		} else {
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during registration")
		}
		return
	}

	c.JSON(http.StatusCreated, MapUserToResponse(user))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAuthenticationFailed) {
			abortWithError(c, http.StatusUnauthorized, err.Error())
		} else if errors.Is(err, service.ErrTokenGeneration) {
			abortWithError(c, http.StatusInternalServerError, "Could not process login")
		} else {
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during login")
		}
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token: token,
		User:  MapUserToResponse(user),
	})
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
func MapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{
		ID:            user.ID.Hex(),
		FullName:      user.FullName,
		Email:         user.Email,
		Role:          user.Role,
		Status:        user.Status,
		YoutubeStatus: user.YoutubeStatus,
		SelectedTopic: user.SelectedTopic,
		ChannelName:   user.ChannelName,
		ReferralID:    user.ReferralID,
		CreatedAt:     user.CreatedAt,
	}
}
