package main

import (
	"github.com/gin-gonic/gin"
	"github.com/projecthub/backend/internal/handlers"
	"github.com/projecthub/backend/internal/middleware"
	"github.com/projecthub/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Slow down credential guessing on the public auth routes
	authLimiter := middleware.NewRateLimiter(5, 10)

	r.GET("/health", handlers.Health)

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authLimiter.Middleware(), svc.authHandler.Register)
			auth.POST("/login", authLimiter.Middleware(), svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
		}

		// Relay channel (public route with internal token validation,
		// the browser WebSocket API cannot set an Authorization header)
		api.GET("/ws", svc.wsHandler.Serve)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.PUT("/auth/profile", svc.authHandler.UpdateProfile)
			protected.PUT("/auth/password", svc.authHandler.ChangePassword)

			// Users (member picker)
			protected.GET("/users", svc.authHandler.ListUsers)

			// Projects
			protected.GET("/projects", svc.projectHandler.List)
			protected.GET("/projects/:id", svc.projectHandler.GetByID)
			protected.POST("/projects", svc.projectHandler.Create)
			protected.PUT("/projects/:id", svc.projectHandler.Update)
			protected.DELETE("/projects/:id", svc.projectHandler.Delete)
			protected.POST("/projects/:id/members", svc.projectHandler.AddMember)
			protected.DELETE("/projects/:id/members/:userId", svc.projectHandler.RemoveMember)

			// Tasks
			protected.POST("/tasks", svc.taskHandler.Create)
			protected.GET("/tasks/project/:projectId", svc.taskHandler.ListByProject)
			protected.GET("/tasks/:id", svc.taskHandler.GetByID)
			protected.PUT("/tasks/:id", svc.taskHandler.Update)
			protected.PATCH("/tasks/:id/status", svc.taskHandler.UpdateStatus)
			protected.DELETE("/tasks/:id", svc.taskHandler.Delete)

			// Comments
			protected.POST("/comments", svc.commentHandler.Create)
			protected.GET("/comments/task/:taskId", svc.commentHandler.ListByTask)
			protected.PUT("/comments/:id", svc.commentHandler.Update)
			protected.DELETE("/comments/:id", svc.commentHandler.Delete)

			// Notifications
			protected.GET("/notifications", svc.notifHandler.List)
			protected.PUT("/notifications/read-all", svc.notifHandler.MarkAllRead)
			protected.PATCH("/notifications/:id/read", svc.notifHandler.MarkRead)
			protected.DELETE("/notifications/:id", svc.notifHandler.Delete)

			// System logs (operators)
			protected.GET("/system-logs", svc.systemLogHandler.List)
		}
	}
}
