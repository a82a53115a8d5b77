package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/projecthub/backend/internal/models"
	"github.com/projecthub/backend/pkg/response"
	"gorm.io/gorm"
)

type TaskService struct {
	db            *gorm.DB
	hub           *RelayHub
	notifications *NotificationService
}

func NewTaskService(db *gorm.DB, hub *RelayHub, notifications *NotificationService) *TaskService {
	return &TaskService{db: db, hub: hub, notifications: notifications}
}

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Description string     `json:"description"`
	ProjectID   uint       `json:"project_id" binding:"required"`
	AssignedTo  *uint      `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high"`
}

type UpdateTaskRequest struct {
	Title          string     `json:"title" binding:"omitempty,max=200"`
	Description    *string    `json:"description"`
	Status         string     `json:"status" binding:"omitempty,oneof=todo in-progress done"`
	Priority       string     `json:"priority" binding:"omitempty,oneof=low medium high"`
	AssignedTo     *uint      `json:"assigned_to"`
	RemoveAssignee bool       `json:"remove_assignee"`
	DueDate        *time.Time `json:"due_date"`
	Position       *int       `json:"position"`
}

type UpdateTaskStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=todo in-progress done"`
}

// Create adds a task to a project; any member may create. The task is
// appended after existing tasks in its status column. Assigning someone
// other than the creator emits a task_assigned notification.
func (s *TaskService) Create(userID uint, actorName string, req *CreateTaskRequest) (*models.Task, error) {
	project, err := s.loadProject(req.ProjectID)
	if err != nil {
		return nil, err
	}

	if !CanAccessProject(userID, project) {
		return nil, response.NewForbidden("not authorized to add tasks to this project")
	}

	if req.AssignedTo != nil && !project.HasMember(*req.AssignedTo) {
		return nil, response.NewBadRequest("assignee must be a project member")
	}

	priority := req.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}

	task := models.Task{
		Title:       req.Title,
		Description: req.Description,
		ProjectID:   req.ProjectID,
		Status:      models.TaskStatusTodo,
		Priority:    priority,
		AssignedTo:  req.AssignedTo,
		CreatedBy:   userID,
		DueDate:     req.DueDate,
		Position:    s.nextPosition(req.ProjectID, models.TaskStatusTodo),
	}
	if err := s.db.Create(&task).Error; err != nil {
		return nil, err
	}

	if task.AssignedTo != nil && *task.AssignedTo != userID {
		s.notifications.notifyBestEffort(*task.AssignedTo, models.NotificationTaskAssigned,
			fmt.Sprintf("%s assigned you a task: %s", actorName, task.Title),
			fmt.Sprintf("/project/%d", project.ID), &task.ID, &project.ID)
	}

	loaded, err := s.load(task.ID)
	if err != nil {
		return nil, err
	}

	s.hub.PublishTaskChanged(project.ID, loaded)
	return loaded, nil
}

// nextPosition appends after the last task in the project's status
// column.
func (s *TaskService) nextPosition(projectID uint, status string) int {
	var max *int
	s.db.Model(&models.Task{}).
		Where("project_id = ? AND status = ?", projectID, status).
		Select("MAX(position)").Scan(&max)
	if max == nil {
		return 0
	}
	return *max + 1
}

// ListByProject returns a project's tasks ordered by position; members
// only. Column grouping is a client concern layered on this base order.
func (s *TaskService) ListByProject(userID, projectID uint) ([]models.Task, error) {
	project, err := s.loadProject(projectID)
	if err != nil {
		return nil, err
	}

	if !CanAccessProject(userID, project) {
		return nil, response.NewForbidden("not authorized to view tasks")
	}

	var tasks []models.Task
	if err := s.db.
		Preload("Assignee").
		Preload("Creator").
		Where("project_id = ?", projectID).
		Order("position ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetByID returns one task; members of its project only.
func (s *TaskService) GetByID(userID, id uint) (*models.Task, error) {
	task, err := s.load(id)
	if err != nil {
		return nil, err
	}

	project, err := s.loadProject(task.ProjectID)
	if err != nil {
		return nil, err
	}
	if !CanAccessProject(userID, project) {
		return nil, response.NewForbidden("not authorized to view this task")
	}

	return task, nil
}

// Update applies a partial update; any project member may edit
// (intentionally looser than project mutation). Reassignment to a new,
// non-self assignee emits a task_assigned notification. Last write wins
// on concurrent edits.
func (s *TaskService) Update(userID uint, actorName string, id uint, req *UpdateTaskRequest) (*models.Task, error) {
	task, err := s.load(id)
	if err != nil {
		return nil, err
	}

	project, err := s.loadProject(task.ProjectID)
	if err != nil {
		return nil, err
	}
	if !CanAccessProject(userID, project) {
		return nil, response.NewForbidden("not authorized to update this task")
	}

	previousAssignee := task.AssignedTo

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if req.Priority != "" {
		updates["priority"] = req.Priority
	}
	if req.RemoveAssignee {
		updates["assigned_to"] = nil
	} else if req.AssignedTo != nil {
		if !project.HasMember(*req.AssignedTo) {
			return nil, response.NewBadRequest("assignee must be a project member")
		}
		updates["assigned_to"] = *req.AssignedTo
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}
	if req.Position != nil {
		updates["position"] = *req.Position
	}

	if len(updates) > 0 {
		// Update through a bare model: the loaded task carries preloaded
		// associations, and GORM's association save would re-apply the
		// old Assignee ID over an explicit NULL when unassigning.
		if err := s.db.Model(&models.Task{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	loaded, err := s.load(id)
	if err != nil {
		return nil, err
	}

	if loaded.AssignedTo != nil && *loaded.AssignedTo != userID &&
		(previousAssignee == nil || *previousAssignee != *loaded.AssignedTo) {
		s.notifications.notifyBestEffort(*loaded.AssignedTo, models.NotificationTaskAssigned,
			fmt.Sprintf("%s assigned you a task: %s", actorName, loaded.Title),
			fmt.Sprintf("/project/%d", project.ID), &loaded.ID, &project.ID)
	}

	s.hub.PublishTaskChanged(project.ID, loaded)
	return loaded, nil
}

// UpdateStatus moves a task between columns (drag and drop). It emits
// only the relay event, no persisted notification.
func (s *TaskService) UpdateStatus(userID, id uint, req *UpdateTaskStatusRequest) (*models.Task, error) {
	task, err := s.load(id)
	if err != nil {
		return nil, err
	}

	project, err := s.loadProject(task.ProjectID)
	if err != nil {
		return nil, err
	}
	if !CanAccessProject(userID, project) {
		return nil, response.NewForbidden("not authorized to update this task")
	}

	if err := s.db.Model(&models.Task{}).Where("id = ?", id).Update("status", req.Status).Error; err != nil {
		return nil, err
	}

	s.hub.PublishTaskStatus(project.ID, task.ID, req.Status)
	return s.load(id)
}

// Delete removes a task and its comments; any project member may
// delete. Notifications referencing the task are kept; readers resolve
// them as "related item no longer available".
func (s *TaskService) Delete(userID, id uint) error {
	task, err := s.load(id)
	if err != nil {
		return err
	}

	project, err := s.loadProject(task.ProjectID)
	if err != nil {
		return err
	}
	if !CanAccessProject(userID, project) {
		return response.NewForbidden("not authorized to delete this task")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(task).Error
	})
	if err != nil {
		return err
	}

	LogInfo("task", "delete", fmt.Sprintf("task %d deleted from project %d", id, project.ID), &userID, "")
	s.hub.PublishTaskChanged(project.ID, map[string]interface{}{"id": id, "deleted": true})
	return nil
}

func (s *TaskService) load(id uint) (*models.Task, error) {
	var task models.Task
	if err := s.db.Preload("Assignee").Preload("Creator").First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("task not found")
		}
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) loadProject(id uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.Preload("Members").First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}
	return &project, nil
}
