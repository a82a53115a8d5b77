package services

import "github.com/projecthub/backend/internal/models"

// Authorization predicates. All are total: they never error, they only
// answer yes or no for an already-loaded entity. Handlers translate a
// false answer into a 403.

// CanAccessProject reports whether the principal may read the project
// and everything under it (tasks, comments). Owner counts as a member.
func CanAccessProject(userID uint, project *models.Project) bool {
	if project == nil {
		return false
	}
	return project.HasMember(userID)
}

// CanMutateProject reports whether the principal may update or delete
// the project or manage its members. Owner only.
func CanMutateProject(userID uint, project *models.Project) bool {
	if project == nil {
		return false
	}
	return project.OwnerID == userID
}

// CanMutateComment reports whether the principal may edit the comment.
// Author only.
func CanMutateComment(userID uint, comment *models.Comment) bool {
	if comment == nil {
		return false
	}
	return comment.UserID == userID
}

// CanDeleteComment reports whether the principal may delete the comment:
// the author, or the owner of the project the comment lives in.
func CanDeleteComment(userID uint, comment *models.Comment, project *models.Project) bool {
	if comment == nil {
		return false
	}
	if comment.UserID == userID {
		return true
	}
	return project != nil && project.OwnerID == userID
}

// CanMutateNotification reports whether the principal may mark or delete
// the notification. Recipient only.
func CanMutateNotification(userID uint, notification *models.Notification) bool {
	if notification == nil {
		return false
	}
	return notification.UserID == userID
}
