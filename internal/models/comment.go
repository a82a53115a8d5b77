package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment is free text attached to a task. Only the author may edit it;
// the author or the project owner may delete it.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Content   string         `gorm:"size:1000;not null" json:"content"`
	TaskID    uint           `gorm:"index;not null" json:"task_id"`
	Task      *Task          `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	User      *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Comment) TableName() string { return "comments" }
