package api

import (
	"net/http"

	"tubecraft/contentops-app/internal/domain"
	"tubecraft/contentops-app/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires all handlers into the gin engine.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	taskService service.TaskService,
	videoService service.VideoService,
	allocationService service.AllocationService,
	dashboardService service.DashboardService,
	blogService service.BlogService,
	userService service.UserService,
) {
	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(taskService, videoService, dashboardService)
	adminHandler := NewAdminHandler(taskService, videoService, allocationService, userService)
	blogHandler := NewBlogHandler(blogService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		// Public blog content
		blogGroup := apiV1.Group("/blogs")
		{
			blogGroup.GET("", blogHandler.ListPosts)
			blogGroup.GET("/:slug", blogHandler.GetPostBySlug)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		// --- End-user routes ---
		userGroup := protected.Group("/user")
		userGroup.Use(RoleMiddleware(domain.RoleUser))
		{
			userGroup.GET("/assignments/today", userHandler.GetTodaysAssignments)
			userGroup.POST("/assignments/complete", userHandler.CompleteTask)
			userGroup.GET("/dashboard", userHandler.GetDashboard)
			userGroup.GET("/videos/current", userHandler.GetCurrentVideo)
			userGroup.GET("/videos/:videoId/download-url", userHandler.GetVideoDownloadURL)
			userGroup.POST("/videos/:videoId/downloaded", userHandler.MarkVideoDownloaded)
		}

		// --- Technician routes ---
		adminGroup := protected.Group("/admin/technician")
		adminGroup.Use(RoleMiddleware(domain.RoleSuperAdmin, domain.RoleTechnician))
		{
			adminGroup.GET("/ai-videos", adminHandler.GetAiVideos)
			adminGroup.POST("/ai-videos/upload", adminHandler.UploadAiVideo)
			adminGroup.POST("/ai-videos/allocate", adminHandler.AllocateAiVideos)
			adminGroup.DELETE("/ai-videos/:videoId", adminHandler.DeleteAiVideo)

			adminGroup.POST("/assignments/assign", adminHandler.AssignLinks)
			adminGroup.POST("/assignments/assign-csv", adminHandler.AssignLinksCSV)
			adminGroup.GET("/assignments/:userId", adminHandler.GetAssignmentsForUser)
		}
	}
}
