package services

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/projecthub/backend/internal/models"
)

func TestNotificationService_ListCapsAtWindow(t *testing.T) {
	db := newTestDB(t)
	service := NewNotificationService(db, nil)
	user := seedUser(t, db, "Alice", "alice@example.com")

	// Insert past the window with distinct timestamps, oldest first.
	base := time.Now().Add(-time.Hour)
	for i := 0; i < notificationWindow+10; i++ {
		n := models.Notification{
			UserID:    user.ID,
			Type:      models.NotificationTaskAssigned,
			Message:   fmt.Sprintf("notification %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := db.Create(&n).Error; err != nil {
			t.Fatalf("failed to insert notification %d: %v", i, err)
		}
	}

	list, err := service.List(user.ID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != notificationWindow {
		t.Fatalf("expected %d notifications, got %d", notificationWindow, len(list))
	}

	// Newest first: the most recent insert leads the window.
	if list[0].Message != fmt.Sprintf("notification %d", notificationWindow+9) {
		t.Errorf("first item = %q, expected the newest", list[0].Message)
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].CreatedAt.Before(list[i].CreatedAt) {
			t.Errorf("notifications should be newest first")
		}
	}
}

func TestNotificationService_Notify_TruncatesMessage(t *testing.T) {
	db := newTestDB(t)
	service := NewNotificationService(db, nil)
	user := seedUser(t, db, "Alice", "alice@example.com")

	long := strings.Repeat("x", 300)
	if err := service.Notify(user.ID, models.NotificationTaskAssigned, long, "", nil, nil); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	list, err := service.List(user.ID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(list))
	}
	if len(list[0].Message) != 200 {
		t.Errorf("message length = %d, expected 200", len(list[0].Message))
	}
}

func TestNotificationService_Notify_TruncatesOnRuneBoundary(t *testing.T) {
	db := newTestDB(t)
	service := NewNotificationService(db, nil)
	user := seedUser(t, db, "Alice", "alice@example.com")

	// Three-byte runes: 200 is not a multiple of 3, so a byte-index cut
	// would leave a partial rune at the end.
	long := strings.Repeat("项", 100)
	if err := service.Notify(user.ID, models.NotificationTaskAssigned, long, "", nil, nil); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	list, err := service.List(user.ID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(list))
	}
	if got := len(list[0].Message); got > 200 {
		t.Errorf("message length = %d, expected at most 200", got)
	}
	if !utf8.ValidString(list[0].Message) {
		t.Error("truncated message is not valid UTF-8")
	}
}

func TestNotificationService_MarkRead_Idempotent(t *testing.T) {
	db := newTestDB(t)
	service := NewNotificationService(db, nil)
	user := seedUser(t, db, "Alice", "alice@example.com")

	if err := service.Notify(user.ID, models.NotificationCommentAdded, "hello", "", nil, nil); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	list, _ := service.List(user.ID)
	id := list[0].ID

	count, err := service.UnreadCount(user.ID)
	if err != nil {
		t.Fatalf("UnreadCount() error = %v", err)
	}
	if count != 1 {
		t.Fatalf("UnreadCount = %d, expected 1", count)
	}

	first, err := service.MarkRead(user.ID, id)
	if err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	if !first.Read {
		t.Error("notification should be read after MarkRead")
	}

	// Marking again succeeds and changes nothing.
	second, err := service.MarkRead(user.ID, id)
	if err != nil {
		t.Fatalf("second MarkRead() error = %v", err)
	}
	if !second.Read {
		t.Error("notification should stay read")
	}

	count, _ = service.UnreadCount(user.ID)
	if count != 0 {
		t.Errorf("UnreadCount after MarkRead = %d, expected 0", count)
	}
}

func TestNotificationService_MarkRead_RecipientOnly(t *testing.T) {
	db := newTestDB(t)
	service := NewNotificationService(db, nil)
	alice := seedUser(t, db, "Alice", "alice@example.com")
	bob := seedUser(t, db, "Bob", "bob@example.com")

	service.Notify(alice.ID, models.NotificationCommentAdded, "for alice", "", nil, nil)
	list, _ := service.List(alice.ID)

	_, err := service.MarkRead(bob.ID, list[0].ID)
	assertAppError(t, err, http.StatusForbidden)

	_, err = service.MarkRead(alice.ID, 9999)
	assertAppError(t, err, http.StatusNotFound)
}

func TestNotificationService_MarkAllRead_UserIsolation(t *testing.T) {
	db := newTestDB(t)
	service := NewNotificationService(db, nil)
	alice := seedUser(t, db, "Alice", "alice@example.com")
	bob := seedUser(t, db, "Bob", "bob@example.com")

	for i := 0; i < 3; i++ {
		service.Notify(alice.ID, models.NotificationTaskAssigned, "a", "", nil, nil)
		service.Notify(bob.ID, models.NotificationTaskAssigned, "b", "", nil, nil)
	}

	if err := service.MarkAllRead(alice.ID); err != nil {
		t.Fatalf("MarkAllRead() error = %v", err)
	}

	aliceUnread, _ := service.UnreadCount(alice.ID)
	bobUnread, _ := service.UnreadCount(bob.ID)
	if aliceUnread != 0 {
		t.Errorf("alice unread = %d, expected 0", aliceUnread)
	}
	if bobUnread != 3 {
		t.Errorf("bob unread = %d, expected 3 (untouched)", bobUnread)
	}
}

func TestNotificationService_Delete_RecipientOnly(t *testing.T) {
	db := newTestDB(t)
	service := NewNotificationService(db, nil)
	alice := seedUser(t, db, "Alice", "alice@example.com")
	bob := seedUser(t, db, "Bob", "bob@example.com")

	service.Notify(alice.ID, models.NotificationProjectInvite, "invited", "", nil, nil)
	list, _ := service.List(alice.ID)
	id := list[0].ID

	err := service.Delete(bob.ID, id)
	assertAppError(t, err, http.StatusForbidden)

	if err := service.Delete(alice.ID, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	remaining, _ := service.List(alice.ID)
	if len(remaining) != 0 {
		t.Errorf("expected 0 notifications after delete, got %d", len(remaining))
	}

	err = service.Delete(alice.ID, id)
	assertAppError(t, err, http.StatusNotFound)
}

func TestNotificationService_Notify_PushesToPersonalChannel(t *testing.T) {
	db := newTestDB(t)
	hub := NewRelayHub()
	service := NewNotificationService(db, hub)
	user := seedUser(t, db, "Alice", "alice@example.com")

	ch := hub.Register("client1")
	hub.Join("client1", UserChannel(user.ID))

	if err := service.Notify(user.ID, models.NotificationTaskAssigned, "live", "", nil, nil); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	select {
	case event := <-ch:
		if event.Type != EventNotificationCreated {
			t.Errorf("Type = %q, expected %q", event.Type, EventNotificationCreated)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timed out waiting for relay event")
	}
}
