package router

import (
	"time"

	"github.com/collabdeck-dev/collabdeck/internal/handlers"
	"github.com/collabdeck-dev/collabdeck/internal/middleware"
	"github.com/collabdeck-dev/collabdeck/internal/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws/:project_id", middleware.AuthMiddleware(), handlers.ActivityFeed)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.CreateUser)
			auth.POST("/login", handlers.LoginUser)
			auth.POST("/logout", handlers.LogoutUser)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
			auth.PATCH("/me", middleware.AuthMiddleware(), handlers.UpdateUser)
			auth.DELETE("/me", middleware.AuthMiddleware(), handlers.DeleteUser)
		}

		profile := api.Group("/profile", middleware.AuthMiddleware())
		{
			profile.GET("", handlers.GetMyProfile)
			profile.PUT("", handlers.UpdateMyProfile)
			profile.PUT("/skills", handlers.SetMySkills)
			profile.PUT("/interests", handlers.SetMyInterests)
			profile.POST("/experiences", handlers.CreateWorkExperience)
			profile.PUT("/experiences/:experience_id", handlers.UpdateWorkExperience)
			profile.DELETE("/experiences/:experience_id", handlers.DeleteWorkExperience)
			profile.POST("/portfolio", handlers.CreatePortfolioProject)
			profile.PUT("/portfolio/:portfolio_id", handlers.UpdatePortfolioProject)
			profile.DELETE("/portfolio/:portfolio_id", handlers.DeletePortfolioProject)
		}

		api.GET("/users/:user_id/profile", middleware.AuthMiddleware(), handlers.GetUserProfile)
		api.GET("/skills", middleware.AuthMiddleware(), handlers.ListSkills)
		api.GET("/interests", middleware.AuthMiddleware(), handlers.ListInterests)

		projects := api.Group("/projects", middleware.AuthMiddleware())
		{
			projects.POST("", handlers.CreateProject)
			projects.GET("", handlers.ListProjects)
			projects.GET("/:project_id", handlers.GetProject)
			projects.PATCH("/:project_id", handlers.UpdateProject)
			projects.DELETE("/:project_id", handlers.DeleteProject)

			// Membership endpoints
			projects.GET("/:project_id/members", handlers.GetProjectMembers)
			projects.PATCH("/:project_id/members/:user_id", handlers.UpdateMemberRole)
			projects.DELETE("/:project_id/members/:user_id", handlers.RemoveMember)
			projects.POST("/:project_id/transfer-ownership", handlers.TransferOwnership)

			// Milestone endpoints
			projects.POST("/:project_id/milestones", handlers.CreateMilestone)
			projects.GET("/:project_id/milestones", handlers.ListMilestones)
			projects.PATCH("/:project_id/milestones/:milestone_id", handlers.UpdateMilestone)
			projects.POST("/:project_id/milestones/:milestone_id/activate", handlers.ActivateMilestone)
			projects.DELETE("/:project_id/milestones/:milestone_id", handlers.DeleteMilestone)

			// Task endpoints
			projects.POST("/:project_id/tasks", handlers.CreateTask)
			projects.GET("/:project_id/tasks", handlers.ListTasks)
			projects.PATCH("/:project_id/tasks/:task_id", handlers.UpdateTask)
			projects.DELETE("/:project_id/tasks/:task_id", handlers.DeleteTask)

			// Application endpoints
			projects.POST("/:project_id/applications", handlers.ApplyToProject)
			projects.GET("/:project_id/applications", handlers.ListProjectApplications)
			projects.POST("/:project_id/invitations", handlers.InviteToProject)
		}

		applications := api.Group("/applications", middleware.AuthMiddleware())
		{
			applications.GET("", handlers.ListMyApplications)
			applications.PATCH("/:application_id", handlers.ResolveApplication)
		}

		bookmarks := api.Group("/bookmarks", middleware.AuthMiddleware())
		{
			bookmarks.POST("", handlers.CreateBookmark)
			bookmarks.GET("", handlers.ListBookmarks)
			bookmarks.DELETE("/:project_id", handlers.DeleteBookmark)
		}

		recommendations := api.Group("/recommendations", middleware.AuthMiddleware())
		{
			recommendations.GET("", handlers.GetRecommendations)
			recommendations.POST("", handlers.GenerateRecommendations)
		}
	}

	return r
}
