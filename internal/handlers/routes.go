package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workforce-portal/internal/middleware"
	"github.com/yukikurage/workforce-portal/internal/services"
)

// Services bundles what the API routes call into.
type Services struct {
	Auth      *services.AuthService
	Users     *services.UserService
	Directory *services.DirectoryService
	Tasks     *services.TaskService
	Imports   *services.ImportService
	Notices   *services.NoticeService
	Chat      *services.ChatService
	Reports   *services.ReportService
}

// RegisterRoutes mounts the API under api. Session middleware must already
// be installed on the engine.
func RegisterRoutes(api *gin.RouterGroup, svc Services) {
	authHandler := NewAuthHandler(svc.Auth)
	userHandler := NewUserHandler(svc.Users)
	directoryHandler := NewDirectoryHandler(svc.Directory)
	taskHandler := NewTaskHandler(svc.Tasks, svc.Imports)
	noticeHandler := NewNoticeHandler(svc.Notices)
	chatHandler := NewChatHandler(svc.Chat)
	reportHandler := NewReportHandler(svc.Reports)

	authenticated := []gin.HandlerFunc{middleware.RequireAuth(), middleware.LoadActor(svc.Auth)}

	// Auth routes (public)
	auth := api.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/director-login", authHandler.DirectorLogin)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", append(authenticated, authHandler.GetCurrentUser)...)
	}

	// User management (admin or director)
	users := api.Group("/users")
	users.Use(authenticated...)
	users.Use(middleware.RequireAdminOrDirector())
	{
		users.GET("", userHandler.ListUsers)
		users.POST("/directors", userHandler.CreateDirector)
		users.PATCH("/:username/director", userHandler.SetDirector)
		users.DELETE("/:username", userHandler.DeleteUser)
		users.GET("/:username/tasks", userHandler.UserTasks)
	}

	// Org directory; lists are public so the signup form can use them
	api.GET("/departments", directoryHandler.ListDepartments)
	api.GET("/designations", directoryHandler.ListDesignations)
	directory := api.Group("")
	directory.Use(authenticated...)
	directory.Use(middleware.RequireAdminOrDirector())
	{
		directory.POST("/departments", directoryHandler.AddDepartment)
		directory.DELETE("/departments/:id", directoryHandler.DeleteDepartment)
		directory.POST("/designations", directoryHandler.AddDesignation)
		directory.DELETE("/designations/:id", directoryHandler.DeleteDesignation)
	}

	// Task routes (protected)
	tasks := api.Group("/tasks")
	tasks.Use(authenticated...)
	{
		tasks.GET("", taskHandler.ListTasks)
		tasks.POST("", taskHandler.CreateTask)
		tasks.GET("/department", taskHandler.DepartmentOverview)
		tasks.POST("/import", taskHandler.ImportTasks)
		tasks.GET("/:id", middleware.RequireTaskAccess(svc.Tasks), taskHandler.GetTask)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
		tasks.PATCH("/:id/status", taskHandler.UpdateStatus)
		tasks.PATCH("/:id/priority", taskHandler.UpdatePriority)
		tasks.GET("/:id/attachments/:attachment_id", taskHandler.DownloadAttachment)
	}

	notices := api.Group("/notices")
	notices.Use(authenticated...)
	{
		notices.GET("", noticeHandler.ListNotices)
		notices.POST("", noticeHandler.CreateNotice)
		notices.PUT("/:id", noticeHandler.UpdateNotice)
		notices.PATCH("/:id/active", noticeHandler.SetActive)
		notices.DELETE("/:id", noticeHandler.DeleteNotice)
		notices.GET("/attachments/:attachment_id", noticeHandler.DownloadAttachment)
	}

	chats := api.Group("/chats")
	chats.Use(authenticated...)
	{
		chats.GET("", chatHandler.ListConversations)
		chats.POST("/individual", chatHandler.StartIndividual)
		chats.POST("/groups", chatHandler.CreateGroup)
		chats.POST("/join", chatHandler.JoinGroup)
		chats.GET("/attachments/:attachment_id", chatHandler.DownloadAttachment)
		chats.GET("/:id/messages", chatHandler.ListMessages)
		chats.POST("/:id/messages", chatHandler.SendMessage)
		chats.POST("/:id/clear", chatHandler.ClearChat)
		chats.POST("/:id/activate", chatHandler.Activate)
	}

	reports := api.Group("/reports")
	reports.Use(authenticated...)
	{
		reports.GET("/directors", reportHandler.Directors)
		reports.GET("/tasks", reportHandler.AllTasks)
		reports.GET("/overview", reportHandler.Overview)
		reports.GET("/department", reportHandler.Department)
	}
}
