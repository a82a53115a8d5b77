package models

import "time"

// Notification types.
const (
	NotificationTaskAssigned  = "task_assigned"
	NotificationTaskUpdated   = "task_updated"
	NotificationCommentAdded  = "comment_added"
	NotificationTaskCompleted = "task_completed"
	NotificationProjectInvite = "project_invite"
	NotificationMention       = "mention"
)

// Notification is created only as a side effect of other commands and is
// owned by its recipient. Task/project references are not cascaded on
// delete of the referenced entity; readers must tolerate stale ids.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Type      string    `gorm:"size:50;not null" json:"type"`
	Message   string    `gorm:"size:200;not null" json:"message"`
	Link      string    `gorm:"size:500" json:"link,omitempty"`
	TaskID    *uint     `json:"task_id,omitempty"`
	ProjectID *uint     `json:"project_id,omitempty"`
	Read      bool      `gorm:"default:false" json:"read"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Notification) TableName() string { return "notifications" }
