package main

import (
	"github.com/projecthub/backend/internal/config"
	"github.com/projecthub/backend/internal/handlers"
	"github.com/projecthub/backend/internal/models"
	"github.com/projecthub/backend/internal/services"
	"github.com/projecthub/backend/internal/utils"
	"github.com/projecthub/backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// appServices holds all initialized services and handlers needed by the
// application.
type appServices struct {
	hub              *services.RelayHub
	logCleanup       *cron.Cron
	authHandler      *handlers.AuthHandler
	projectHandler   *handlers.ProjectHandler
	taskHandler      *handlers.TaskHandler
	commentHandler   *handlers.CommentHandler
	notifHandler     *handlers.NotificationHandler
	systemLogHandler *handlers.SystemLogHandler
	wsHandler        *handlers.WSHandler
}

// bootstrap initializes all application dependencies: database,
// services, relay hub, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	db := models.GetDB()
	services.InitSystemLogger(db)
	logCleanup := services.StartLogCleanupScheduler(db, cfg.Log.RetentionDays)

	// The relay hub is shared by every service that publishes events;
	// it is passed explicitly rather than reached through a global.
	hub := services.NewRelayHub()

	notificationService := services.NewNotificationService(db, hub)
	authService := services.NewAuthService(db, &cfg.JWT)
	projectService := services.NewProjectService(db, notificationService)
	taskService := services.NewTaskService(db, hub, notificationService)
	commentService := services.NewCommentService(db, hub, notificationService)
	systemLogService := services.NewSystemLogService(db)

	return &appServices{
		hub:              hub,
		logCleanup:       logCleanup,
		authHandler:      handlers.NewAuthHandler(authService),
		projectHandler:   handlers.NewProjectHandler(projectService),
		taskHandler:      handlers.NewTaskHandler(taskService),
		commentHandler:   handlers.NewCommentHandler(commentService),
		notifHandler:     handlers.NewNotificationHandler(notificationService),
		systemLogHandler: handlers.NewSystemLogHandler(systemLogService),
		wsHandler:        handlers.NewWSHandler(hub, projectService),
	}
}

// shutdown gracefully stops background schedulers.
func (s *appServices) shutdown() {
	if s.logCleanup != nil {
		s.logCleanup.Stop()
	}
	logger.Info().Msg("schedulers stopped")
}
