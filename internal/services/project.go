package services

import (
	"errors"
	"fmt"

	"github.com/projecthub/backend/internal/models"
	"github.com/projecthub/backend/pkg/response"
	"gorm.io/gorm"
)

type ProjectService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewProjectService(db *gorm.DB, notifications *NotificationService) *ProjectService {
	return &ProjectService{db: db, notifications: notifications}
}

type CreateProjectRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"max=2000"`
	Status      string `json:"status" binding:"omitempty,oneof=active in-progress completed archived"`
}

type UpdateProjectRequest struct {
	Title       string  `json:"title" binding:"omitempty,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Status      string  `json:"status" binding:"omitempty,oneof=active in-progress completed archived"`
}

type AddMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ProjectWithStats is the list item: the project plus its derived task
// aggregate and display status.
type ProjectWithStats struct {
	models.Project
	TaskStats      models.TaskStats `json:"task_stats"`
	RealTimeStatus string           `json:"real_time_status"`
}

// Create makes a project owned by the creator, with the creator as the
// only member.
func (s *ProjectService) Create(userID uint, req *CreateProjectRequest) (*models.Project, error) {
	status := req.Status
	if status == "" {
		status = models.ProjectStatusActive
	}

	var creator models.User
	if err := s.db.First(&creator, userID).Error; err != nil {
		return nil, response.NewNotFound("user not found")
	}

	project := models.Project{
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		OwnerID:     userID,
		Members:     []models.User{creator},
	}
	if err := s.db.Create(&project).Error; err != nil {
		return nil, err
	}

	return s.load(project.ID)
}

// List returns every project the user owns or belongs to, newest first,
// each with the task aggregate snapshot and derived display status.
func (s *ProjectService) List(userID uint) ([]ProjectWithStats, error) {
	var projects []models.Project
	if err := s.db.
		Preload("Owner").
		Preload("Members").
		Where("owner_id = ? OR id IN (?)", userID,
			s.db.Table("project_members").Select("project_id").Where("user_id = ?", userID)).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return nil, err
	}

	items := make([]ProjectWithStats, 0, len(projects))
	for i := range projects {
		stats, err := s.taskStats(projects[i].ID)
		if err != nil {
			return nil, err
		}
		items = append(items, ProjectWithStats{
			Project:        projects[i],
			TaskStats:      stats,
			RealTimeStatus: projects[i].DisplayStatus(stats),
		})
	}
	return items, nil
}

func (s *ProjectService) taskStats(projectID uint) (models.TaskStats, error) {
	var stats models.TaskStats
	base := s.db.Model(&models.Task{}).Where("project_id = ?", projectID)

	if err := base.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return stats, err
	}
	if err := base.Session(&gorm.Session{}).Where("status = ?", models.TaskStatusDone).Count(&stats.Completed).Error; err != nil {
		return stats, err
	}
	if err := base.Session(&gorm.Session{}).Where("status = ?", models.TaskStatusInProgress).Count(&stats.InProgress).Error; err != nil {
		return stats, err
	}
	if err := base.Session(&gorm.Session{}).Where("status = ?", models.TaskStatusTodo).Count(&stats.Todo).Error; err != nil {
		return stats, err
	}
	return stats, nil
}

// GetByID returns a project for a member; non-members get Forbidden.
func (s *ProjectService) GetByID(userID, id uint) (*models.Project, error) {
	project, err := s.load(id)
	if err != nil {
		return nil, err
	}

	if !CanAccessProject(userID, project) {
		return nil, response.NewForbidden("not authorized to view this project")
	}

	return project, nil
}

// Update applies a partial update; owner only.
func (s *ProjectService) Update(userID, id uint, req *UpdateProjectRequest) (*models.Project, error) {
	project, err := s.load(id)
	if err != nil {
		return nil, err
	}

	if !CanMutateProject(userID, project) {
		return nil, response.NewForbidden("not authorized to update this project")
	}

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

	if len(updates) > 0 {
		if err := s.db.Model(project).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return s.load(id)
}

// Delete removes a project and cascades to its tasks and their comments
// in one transaction; owner only. Notifications referencing the project
// are left in place and resolved lazily by readers.
func (s *ProjectService) Delete(userID, id uint) error {
	project, err := s.load(id)
	if err != nil {
		return err
	}

	if !CanMutateProject(userID, project) {
		return response.NewForbidden("not authorized to delete this project")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var taskIDs []uint
		if err := tx.Model(&models.Task{}).Where("project_id = ?", id).Pluck("id", &taskIDs).Error; err != nil {
			return err
		}
		if len(taskIDs) > 0 {
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(project).Association("Members").Clear(); err != nil {
			return err
		}
		return tx.Delete(project).Error
	})
	if err != nil {
		return err
	}

	LogInfo("project", "delete", fmt.Sprintf("project %d deleted", id), &userID, "")
	return nil
}

// AddMember resolves a user by email and appends them to the member
// set; owner only. Adding an existing member is a conflict.
func (s *ProjectService) AddMember(userID, id uint, req *AddMemberRequest) (*models.Project, error) {
	project, err := s.load(id)
	if err != nil {
		return nil, err
	}

	if !CanMutateProject(userID, project) {
		return nil, response.NewForbidden("not authorized to add members")
	}

	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}

	if project.HasMember(user.ID) {
		return nil, response.NewConflict("user already a member")
	}

	if err := s.db.Model(project).Association("Members").Append(&user); err != nil {
		return nil, err
	}

	s.notifications.notifyBestEffort(user.ID, models.NotificationProjectInvite,
		fmt.Sprintf("You were added to project: %s", project.Title),
		fmt.Sprintf("/project/%d", project.ID), nil, &project.ID)

	return s.load(id)
}

// RemoveMember drops a member from the project; owner only. The owner
// cannot be removed.
func (s *ProjectService) RemoveMember(userID, id, memberID uint) (*models.Project, error) {
	project, err := s.load(id)
	if err != nil {
		return nil, err
	}

	if !CanMutateProject(userID, project) {
		return nil, response.NewForbidden("not authorized to remove members")
	}

	if memberID == project.OwnerID {
		return nil, response.NewBadRequest("project owner cannot be removed")
	}

	if !project.HasMember(memberID) {
		return nil, response.NewNotFound("user is not a member of this project")
	}

	if err := s.db.Model(project).Association("Members").Delete(&models.User{ID: memberID}); err != nil {
		return nil, err
	}

	return s.load(id)
}

func (s *ProjectService) load(id uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.Preload("Owner").Preload("Members").First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}
	return &project, nil
}
