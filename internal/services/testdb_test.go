package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/projecthub/backend/internal/models"
	"github.com/projecthub/backend/internal/utils"
	"github.com/projecthub/backend/pkg/response"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	utils.SetJWTSecret("test-secret-for-service-testing")
}

// newTestDB opens a per-test in-memory sqlite database with the full
// schema migrated. The shared cache keeps every pooled connection on
// the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Task{},
		&models.Comment{},
		&models.Notification{},
		&models.RefreshToken{},
		&models.SystemLog{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()

	user := &models.User{Name: name, Email: email, Password: "unused"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", email, err)
	}
	return user
}

// newTestServices wires the command services against one database and a
// shared hub, the same way bootstrap does in production.
func newTestServices(db *gorm.DB) (*ProjectService, *TaskService, *CommentService, *NotificationService, *RelayHub) {
	hub := NewRelayHub()
	notifications := NewNotificationService(db, hub)
	projects := NewProjectService(db, notifications)
	tasks := NewTaskService(db, hub, notifications)
	comments := NewCommentService(db, hub, notifications)
	return projects, tasks, comments, notifications, hub
}

func assertAppError(t *testing.T, err error, wantStatus int) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error with HTTP status %d, got nil", wantStatus)
	}
	var appErr *response.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.HTTPStatus != wantStatus {
		t.Errorf("HTTPStatus = %d, expected %d (message %q)", appErr.HTTPStatus, wantStatus, appErr.Message)
	}
}

func countNotifications(t *testing.T, db *gorm.DB, userID uint, ntype string) int64 {
	t.Helper()

	var count int64
	if err := db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", userID, ntype).
		Count(&count).Error; err != nil {
		t.Fatalf("failed to count notifications: %v", err)
	}
	return count
}
