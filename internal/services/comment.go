package services

import (
	"errors"
	"fmt"

	"github.com/projecthub/backend/internal/models"
	"github.com/projecthub/backend/pkg/response"
	"gorm.io/gorm"
)

type CommentService struct {
	db            *gorm.DB
	hub           *RelayHub
	notifications *NotificationService
}

func NewCommentService(db *gorm.DB, hub *RelayHub, notifications *NotificationService) *CommentService {
	return &CommentService{db: db, hub: hub, notifications: notifications}
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,max=1000"`
	TaskID  uint   `json:"task_id" binding:"required"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required,max=1000"`
}

// Create adds a comment to a task; members of the task's project only.
// The assignee and the creator of the task are notified, de-duplicated
// against the commenter (at most two notifications).
func (s *CommentService) Create(userID uint, actorName string, req *CreateCommentRequest) (*models.Comment, error) {
	task, project, err := s.loadTaskWithProject(req.TaskID)
	if err != nil {
		return nil, err
	}

	if !CanAccessProject(userID, project) {
		return nil, response.NewForbidden("not authorized to comment on this task")
	}

	comment := models.Comment{
		Content: req.Content,
		TaskID:  req.TaskID,
		UserID:  userID,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}

	link := fmt.Sprintf("/project/%d", project.ID)

	if task.AssignedTo != nil && *task.AssignedTo != userID {
		s.notifications.notifyBestEffort(*task.AssignedTo, models.NotificationCommentAdded,
			fmt.Sprintf("%s commented on your task: %s", actorName, task.Title),
			link, &task.ID, &project.ID)
	}

	if task.CreatedBy != userID &&
		(task.AssignedTo == nil || task.CreatedBy != *task.AssignedTo) {
		s.notifications.notifyBestEffort(task.CreatedBy, models.NotificationCommentAdded,
			fmt.Sprintf("%s commented on task: %s", actorName, task.Title),
			link, &task.ID, &project.ID)
	}

	loaded, err := s.load(comment.ID)
	if err != nil {
		return nil, err
	}

	s.hub.PublishCommentCreated(project.ID, loaded)
	return loaded, nil
}

// ListByTask returns a task's comments, newest first; members only.
func (s *CommentService) ListByTask(userID, taskID uint) ([]models.Comment, error) {
	_, project, err := s.loadTaskWithProject(taskID)
	if err != nil {
		return nil, err
	}

	if !CanAccessProject(userID, project) {
		return nil, response.NewForbidden("not authorized to view comments")
	}

	var comments []models.Comment
	if err := s.db.
		Preload("User").
		Where("task_id = ?", taskID).
		Order("created_at DESC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// Update edits the comment text; author only.
func (s *CommentService) Update(userID, id uint, req *UpdateCommentRequest) (*models.Comment, error) {
	comment, err := s.load(id)
	if err != nil {
		return nil, err
	}

	if !CanMutateComment(userID, comment) {
		return nil, response.NewForbidden("not authorized to update this comment")
	}

	if err := s.db.Model(comment).Update("content", req.Content).Error; err != nil {
		return nil, err
	}

	return s.load(id)
}

// Delete removes a comment; the author or the project owner only.
func (s *CommentService) Delete(userID, id uint) error {
	comment, err := s.load(id)
	if err != nil {
		return err
	}

	_, project, err := s.loadTaskWithProject(comment.TaskID)
	if err != nil {
		return err
	}

	if !CanDeleteComment(userID, comment, project) {
		return response.NewForbidden("not authorized to delete this comment")
	}

	return s.db.Delete(comment).Error
}

func (s *CommentService) load(id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.Preload("User").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("comment not found")
		}
		return nil, err
	}
	return &comment, nil
}

func (s *CommentService) loadTaskWithProject(taskID uint) (*models.Task, *models.Project, error) {
	var task models.Task
	if err := s.db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, response.NewNotFound("task not found")
		}
		return nil, nil, err
	}

	var project models.Project
	if err := s.db.Preload("Members").First(&project, task.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, response.NewNotFound("project not found")
		}
		return nil, nil, err
	}

	return &task, &project, nil
}
