package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/projecthub/backend/internal/middleware"
	"github.com/projecthub/backend/internal/services"
	"github.com/projecthub/backend/pkg/response"
)

type CommentHandler struct {
	commentService *services.CommentService
}

func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// Create adds a comment to a task (members only)
// POST /api/comments
func (h *CommentHandler) Create(c *gin.Context) {
	var req services.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	comment, err := h.commentService.Create(middleware.GetUserID(c), middleware.GetUserName(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, comment)
}

// ListByTask returns a task's comments, newest first
// GET /api/comments/task/:taskId
func (h *CommentHandler) ListByTask(c *gin.Context) {
	taskID, err := parseID(c, "taskId")
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}

	comments, err := h.commentService.ListByTask(middleware.GetUserID(c), taskID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"count": len(comments), "comments": comments})
}

// Update edits a comment (author only)
// PUT /api/comments/:id
func (h *CommentHandler) Update(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.BadRequest(c, "invalid comment id")
		return
	}

	var req services.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	comment, err := h.commentService.Update(middleware.GetUserID(c), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, comment)
}

// Delete removes a comment (author or project owner)
// DELETE /api/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.BadRequest(c, "invalid comment id")
		return
	}

	if err := h.commentService.Delete(middleware.GetUserID(c), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "comment deleted"})
}
