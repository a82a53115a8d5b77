package models

import (
	"time"

	"gorm.io/gorm"
)

// Project status values. Status is a manually managed flag; the display
// status returned by the list endpoint is derived from task state and
// only falls back to this field when the project has no tasks.
const (
	ProjectStatusActive     = "active"
	ProjectStatusInProgress = "in-progress"
	ProjectStatusCompleted  = "completed"
	ProjectStatusArchived   = "archived"
)

// Project groups tasks and a member set. The owner is always a member;
// membership is maintained through the project_members join table.
type Project struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:200;not null" json:"title"`
	Description string         `gorm:"size:2000" json:"description"`
	Status      string         `gorm:"size:50;default:active" json:"status"`
	OwnerID     uint           `gorm:"index;not null" json:"owner_id"`
	Owner       *User          `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Members     []User         `gorm:"many2many:project_members" json:"members,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Project) TableName() string { return "projects" }

// HasMember reports whether the user is in the loaded member set or is
// the owner. Members must be preloaded.
func (p *Project) HasMember(userID uint) bool {
	if p.OwnerID == userID {
		return true
	}
	for _, m := range p.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// TaskStats is the aggregate snapshot attached to each project in list
// responses.
type TaskStats struct {
	Total      int64 `json:"total"`
	Completed  int64 `json:"completed"`
	InProgress int64 `json:"in_progress"`
	Todo       int64 `json:"todo"`
}

// DisplayStatus derives the status shown to clients: completed when all
// tasks are done, in-progress when any task exists, otherwise the stored
// status.
func (p *Project) DisplayStatus(stats TaskStats) string {
	if stats.Total == 0 {
		return p.Status
	}
	if stats.Completed == stats.Total {
		return ProjectStatusCompleted
	}
	return ProjectStatusInProgress
}
