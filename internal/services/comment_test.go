package services

import (
	"net/http"
	"testing"

	"github.com/projecthub/backend/internal/models"
	"gorm.io/gorm"
)

func commentFixture(t *testing.T) (*gorm.DB, *CommentService, *TaskService, *models.Project, *models.User, *models.User, *models.User) {
	t.Helper()

	db := newTestDB(t)
	projects, tasks, comments, _, _ := newTestServices(db)
	owner := seedUser(t, db, "Alice", "alice@example.com")
	assignee := seedUser(t, db, "Bob", "bob@example.com")
	other := seedUser(t, db, "Carol", "carol@example.com")

	project, err := projects.Create(owner.ID, &CreateProjectRequest{Title: "Board"})
	if err != nil {
		t.Fatalf("project Create() error = %v", err)
	}
	for _, u := range []*models.User{assignee, other} {
		if _, err := projects.AddMember(owner.ID, project.ID, &AddMemberRequest{Email: u.Email}); err != nil {
			t.Fatalf("AddMember(%s) error = %v", u.Email, err)
		}
	}

	return db, comments, tasks, project, owner, assignee, other
}

func TestCommentService_Create_NotifiesAssigneeAndCreator(t *testing.T) {
	db, comments, tasks, project, owner, assignee, other := commentFixture(t)

	task, err := tasks.Create(owner.ID, owner.Name, &CreateTaskRequest{
		Title:      "Discussed",
		ProjectID:  project.ID,
		AssignedTo: &assignee.ID,
	})
	if err != nil {
		t.Fatalf("task Create() error = %v", err)
	}

	// A third member comments: both the assignee and the creator hear.
	if _, err := comments.Create(other.ID, other.Name, &CreateCommentRequest{Content: "thoughts?", TaskID: task.ID}); err != nil {
		t.Fatalf("comment Create() error = %v", err)
	}

	if got := countNotifications(t, db, assignee.ID, models.NotificationCommentAdded); got != 1 {
		t.Errorf("assignee comment_added notifications = %d, expected 1", got)
	}
	if got := countNotifications(t, db, owner.ID, models.NotificationCommentAdded); got != 1 {
		t.Errorf("creator comment_added notifications = %d, expected 1", got)
	}
	if got := countNotifications(t, db, other.ID, models.NotificationCommentAdded); got != 0 {
		t.Errorf("commenter should not notify themselves, got %d", got)
	}
}

func TestCommentService_Create_CommenterIsAssignee(t *testing.T) {
	db, comments, tasks, project, owner, assignee, _ := commentFixture(t)

	task, _ := tasks.Create(owner.ID, owner.Name, &CreateTaskRequest{
		Title:      "Mine",
		ProjectID:  project.ID,
		AssignedTo: &assignee.ID,
	})

	// The assignee comments: only the creator hears.
	if _, err := comments.Create(assignee.ID, assignee.Name, &CreateCommentRequest{Content: "on it", TaskID: task.ID}); err != nil {
		t.Fatalf("comment Create() error = %v", err)
	}

	if got := countNotifications(t, db, assignee.ID, models.NotificationCommentAdded); got != 0 {
		t.Errorf("assignee-commenter should not be notified, got %d", got)
	}
	if got := countNotifications(t, db, owner.ID, models.NotificationCommentAdded); got != 1 {
		t.Errorf("creator comment_added notifications = %d, expected 1", got)
	}
}

func TestCommentService_Create_CreatorIsAssignee(t *testing.T) {
	db, comments, tasks, project, owner, _, other := commentFixture(t)

	// Creator assigned the task to themselves.
	task, _ := tasks.Create(owner.ID, owner.Name, &CreateTaskRequest{
		Title:      "Self-assigned",
		ProjectID:  project.ID,
		AssignedTo: &owner.ID,
	})

	// One person fills both roles; they get a single notification.
	if _, err := comments.Create(other.ID, other.Name, &CreateCommentRequest{Content: "ping", TaskID: task.ID}); err != nil {
		t.Fatalf("comment Create() error = %v", err)
	}

	if got := countNotifications(t, db, owner.ID, models.NotificationCommentAdded); got != 1 {
		t.Errorf("creator-assignee should get exactly 1 notification, got %d", got)
	}
}

func TestCommentService_Create_NonMemberForbidden(t *testing.T) {
	db, comments, tasks, project, owner, _, _ := commentFixture(t)
	stranger := seedUser(t, db, "Eve", "eve@example.com")

	task, _ := tasks.Create(owner.ID, owner.Name, &CreateTaskRequest{Title: "Private", ProjectID: project.ID})

	_, err := comments.Create(stranger.ID, stranger.Name, &CreateCommentRequest{Content: "hi", TaskID: task.ID})
	assertAppError(t, err, http.StatusForbidden)
}

func TestCommentService_ListByTask_NewestFirst(t *testing.T) {
	_, comments, tasks, project, owner, _, _ := commentFixture(t)

	task, _ := tasks.Create(owner.ID, owner.Name, &CreateTaskRequest{Title: "Thread", ProjectID: project.ID})

	for _, content := range []string{"first", "second", "third"} {
		if _, err := comments.Create(owner.ID, owner.Name, &CreateCommentRequest{Content: content, TaskID: task.ID}); err != nil {
			t.Fatalf("comment Create(%q) error = %v", content, err)
		}
	}

	list, err := comments.ListByTask(owner.ID, task.ID)
	if err != nil {
		t.Fatalf("ListByTask() error = %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 comments, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].CreatedAt.Before(list[i].CreatedAt) {
			t.Errorf("comments should be newest first")
		}
	}
}

func TestCommentService_Update_AuthorOnly(t *testing.T) {
	_, comments, tasks, project, owner, assignee, _ := commentFixture(t)

	task, _ := tasks.Create(owner.ID, owner.Name, &CreateTaskRequest{Title: "Thread", ProjectID: project.ID})
	comment, err := comments.Create(assignee.ID, assignee.Name, &CreateCommentRequest{Content: "draft", TaskID: task.ID})
	if err != nil {
		t.Fatalf("comment Create() error = %v", err)
	}

	// Even the project owner cannot edit someone else's comment.
	_, err = comments.Update(owner.ID, comment.ID, &UpdateCommentRequest{Content: "edited by owner"})
	assertAppError(t, err, http.StatusForbidden)

	updated, err := comments.Update(assignee.ID, comment.ID, &UpdateCommentRequest{Content: "final"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Content != "final" {
		t.Errorf("Content = %q, expected %q", updated.Content, "final")
	}
}

func TestCommentService_Delete_AuthorOrProjectOwner(t *testing.T) {
	_, comments, tasks, project, owner, assignee, other := commentFixture(t)

	task, _ := tasks.Create(owner.ID, owner.Name, &CreateTaskRequest{Title: "Thread", ProjectID: project.ID})

	byAssignee, _ := comments.Create(assignee.ID, assignee.Name, &CreateCommentRequest{Content: "one", TaskID: task.ID})
	byOther, _ := comments.Create(other.ID, other.Name, &CreateCommentRequest{Content: "two", TaskID: task.ID})

	// A plain member cannot delete someone else's comment.
	err := comments.Delete(other.ID, byAssignee.ID)
	assertAppError(t, err, http.StatusForbidden)

	// The author can.
	if err := comments.Delete(assignee.ID, byAssignee.ID); err != nil {
		t.Errorf("author Delete() error = %v", err)
	}

	// The project owner can moderate any comment.
	if err := comments.Delete(owner.ID, byOther.ID); err != nil {
		t.Errorf("owner Delete() error = %v", err)
	}

	list, err := comments.ListByTask(owner.ID, task.ID)
	if err != nil {
		t.Fatalf("ListByTask() error = %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected 0 comments after deletes, got %d", len(list))
	}
}
