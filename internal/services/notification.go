package services

import (
	"errors"
	"unicode/utf8"

	"github.com/projecthub/backend/internal/models"
	"github.com/projecthub/backend/pkg/logger"
	"github.com/projecthub/backend/pkg/response"
	"gorm.io/gorm"
)

// notificationWindow caps how many notifications the list endpoint
// returns. Older entries stay in storage until the recipient deletes
// them but are not served.
const notificationWindow = 50

type NotificationService struct {
	db  *gorm.DB
	hub *RelayHub
}

func NewNotificationService(db *gorm.DB, hub *RelayHub) *NotificationService {
	return &NotificationService{db: db, hub: hub}
}

// Notify persists a notification and pushes it to the recipient's
// personal channel. It is a best-effort side effect: callers log the
// returned error and continue, they never roll back the primary command.
func (s *NotificationService) Notify(userID uint, ntype, message, link string, taskID, projectID *uint) error {
	notification := models.Notification{
		UserID:    userID,
		Type:      ntype,
		Message:   truncate(message, 200),
		Link:      link,
		TaskID:    taskID,
		ProjectID: projectID,
	}
	if err := s.db.Create(&notification).Error; err != nil {
		return err
	}

	s.hub.PublishNotification(userID, &notification)
	return nil
}

// notifyBestEffort wraps Notify with the log-and-continue policy.
func (s *NotificationService) notifyBestEffort(userID uint, ntype, message, link string, taskID, projectID *uint) {
	if err := s.Notify(userID, ntype, message, link, taskID, projectID); err != nil {
		logger.Error().Err(err).Uint("recipient", userID).Str("type", ntype).Msg("notification side effect failed")
		LogError("notification", "create", "failed to create "+ntype+" notification", &userID, "")
	}
}

// List returns the recipient's notifications, newest first, capped at
// the bounded window.
func (s *NotificationService) List(userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(notificationWindow).
		Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// UnreadCount returns the number of unread notifications for the user.
func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead flips a notification to read. Marking an already-read
// notification is a no-op success.
func (s *NotificationService) MarkRead(userID, id uint) (*models.Notification, error) {
	var notification models.Notification
	if err := s.db.First(&notification, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("notification not found")
		}
		return nil, err
	}

	if !CanMutateNotification(userID, &notification) {
		return nil, response.NewForbidden("not authorized to update this notification")
	}

	if !notification.Read {
		notification.Read = true
		if err := s.db.Save(&notification).Error; err != nil {
			return nil, err
		}
	}

	return &notification, nil
}

// MarkAllRead marks every unread notification of the caller as read.
// Other users' notifications are untouched.
func (s *NotificationService) MarkAllRead(userID uint) error {
	return s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
}

// Delete removes a notification; recipient only.
func (s *NotificationService) Delete(userID, id uint) error {
	var notification models.Notification
	if err := s.db.First(&notification, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("notification not found")
		}
		return err
	}

	if !CanMutateNotification(userID, &notification) {
		return response.NewForbidden("not authorized to delete this notification")
	}

	return s.db.Delete(&notification).Error
}

// truncate caps s at max bytes without splitting a multi-byte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
