package services

import (
	"testing"

	"github.com/projecthub/backend/internal/models"
)

func TestCanAccessProject(t *testing.T) {
	project := &models.Project{
		ID:      1,
		OwnerID: 1,
		Members: []models.User{{ID: 1}, {ID: 2}},
	}

	tests := []struct {
		name    string
		userID  uint
		project *models.Project
		want    bool
	}{
		{"owner", 1, project, true},
		{"member", 2, project, true},
		{"non-member", 3, project, false},
		{"nil project", 1, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAccessProject(tt.userID, tt.project); got != tt.want {
				t.Errorf("CanAccessProject(%d) = %v, expected %v", tt.userID, got, tt.want)
			}
		})
	}
}

func TestCanAccessProject_OwnerWithoutMemberRow(t *testing.T) {
	// The owner stays authorized even if the join table row is missing.
	project := &models.Project{ID: 1, OwnerID: 5, Members: nil}

	if !CanAccessProject(5, project) {
		t.Error("owner should always have access")
	}
}

func TestCanMutateProject(t *testing.T) {
	project := &models.Project{
		ID:      1,
		OwnerID: 1,
		Members: []models.User{{ID: 1}, {ID: 2}},
	}

	if !CanMutateProject(1, project) {
		t.Error("owner should be allowed to mutate")
	}
	if CanMutateProject(2, project) {
		t.Error("plain member should not be allowed to mutate")
	}
	if CanMutateProject(1, nil) {
		t.Error("nil project should never be mutable")
	}
}

func TestCanMutateComment(t *testing.T) {
	comment := &models.Comment{ID: 1, UserID: 2}

	if !CanMutateComment(2, comment) {
		t.Error("author should be allowed to edit")
	}
	if CanMutateComment(1, comment) {
		t.Error("non-author should not be allowed to edit")
	}
	if CanMutateComment(2, nil) {
		t.Error("nil comment should never be editable")
	}
}

func TestCanDeleteComment(t *testing.T) {
	comment := &models.Comment{ID: 1, UserID: 2}
	project := &models.Project{ID: 1, OwnerID: 1}

	tests := []struct {
		name   string
		userID uint
		want   bool
	}{
		{"author", 2, true},
		{"project owner", 1, true},
		{"other member", 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanDeleteComment(tt.userID, comment, project); got != tt.want {
				t.Errorf("CanDeleteComment(%d) = %v, expected %v", tt.userID, got, tt.want)
			}
		})
	}

	if CanDeleteComment(1, nil, project) {
		t.Error("nil comment should never be deletable")
	}
	if !CanDeleteComment(2, comment, nil) {
		t.Error("author can delete even without a loaded project")
	}
}

func TestCanMutateNotification(t *testing.T) {
	notification := &models.Notification{ID: 1, UserID: 4}

	if !CanMutateNotification(4, notification) {
		t.Error("recipient should be allowed")
	}
	if CanMutateNotification(5, notification) {
		t.Error("non-recipient should not be allowed")
	}
	if CanMutateNotification(4, nil) {
		t.Error("nil notification should never be mutable")
	}
}
