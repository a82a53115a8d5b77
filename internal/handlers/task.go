package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/projecthub/backend/internal/middleware"
	"github.com/projecthub/backend/internal/services"
	"github.com/projecthub/backend/pkg/response"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// Create creates a task in a project (members only)
// POST /api/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req services.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.Create(middleware.GetUserID(c), middleware.GetUserName(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, task)
}

// ListByProject returns a project's tasks ordered by position
// GET /api/tasks/project/:projectId
func (h *TaskHandler) ListByProject(c *gin.Context) {
	projectID, err := parseID(c, "projectId")
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	tasks, err := h.taskService.ListByProject(middleware.GetUserID(c), projectID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"count": len(tasks), "tasks": tasks})
}

// GetByID returns one task
// GET /api/tasks/:id
func (h *TaskHandler) GetByID(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}

	task, err := h.taskService.GetByID(middleware.GetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, task)
}

// Update applies a partial update to a task (members only)
// PUT /api/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}

	var req services.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.Update(middleware.GetUserID(c), middleware.GetUserName(c), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, task)
}

// UpdateStatus moves a task between kanban columns
// PATCH /api/tasks/:id/status
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}

	var req services.UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.UpdateStatus(middleware.GetUserID(c), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, task)
}

// Delete removes a task and its comments (members only)
// DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}

	if err := h.taskService.Delete(middleware.GetUserID(c), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "task deleted"})
}
