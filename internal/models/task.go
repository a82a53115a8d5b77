package models

import (
	"time"

	"gorm.io/gorm"
)

// Task status values (kanban columns). Transitions are unrestricted;
// any member may move a task between columns in either direction.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in-progress"
	TaskStatusDone       = "done"
)

// Task priority values.
const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
)

// Task belongs to exactly one project; the project reference is fixed at
// creation. Position orders tasks within a status column.
type Task struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:200;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	ProjectID   uint           `gorm:"index;not null" json:"project_id"`
	Project     *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Status      string         `gorm:"size:50;default:todo" json:"status"`
	Priority    string         `gorm:"size:50;default:medium" json:"priority"`
	AssignedTo  *uint          `gorm:"index" json:"assigned_to"`
	Assignee    *User          `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	CreatedBy   uint           `gorm:"index;not null" json:"created_by"`
	Creator     *User          `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	DueDate     *time.Time     `json:"due_date"`
	Position    int            `gorm:"default:0" json:"position"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Task) TableName() string { return "tasks" }

// ValidTaskStatus reports whether s is a known kanban column.
func ValidTaskStatus(s string) bool {
	return s == TaskStatusTodo || s == TaskStatusInProgress || s == TaskStatusDone
}

// ValidTaskPriority reports whether p is a known priority.
func ValidTaskPriority(p string) bool {
	return p == TaskPriorityLow || p == TaskPriorityMedium || p == TaskPriorityHigh
}
