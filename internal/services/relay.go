package services

import (
	"fmt"
	"sync"
)

// Relay event types delivered to live subscribers. Delivery is
// at-most-once and best effort: there is no replay, a reconnecting
// client re-fetches state through the list endpoints.
const (
	EventNotificationCreated = "notification-created"
	EventTaskChanged         = "task-changed"
	EventTaskStatusChanged   = "task-status-changed"
	EventCommentCreated      = "comment-created"
	EventUserTyping          = "user-typing"
	EventUserStoppedTyping   = "user-stopped-typing"
)

// RelayEvent is the wire shape pushed to subscribers.
type RelayEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// UserChannel names the personal channel for a user.
func UserChannel(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

// ProjectChannel names the collaborative channel for a project.
func ProjectChannel(projectID uint) string {
	return fmt.Sprintf("project:%d", projectID)
}

type relayClient struct {
	ch    chan RelayEvent
	rooms map[string]struct{}
}

// RelayHub fans out entity-changed events to subscribed clients grouped
// by channel. It holds no business state and is passed explicitly to
// the services that publish through it.
type RelayHub struct {
	mu      sync.RWMutex
	clients map[string]*relayClient
	rooms   map[string]map[string]struct{} // channel -> client ids
}

// NewRelayHub creates an empty hub.
func NewRelayHub() *RelayHub {
	return &RelayHub{
		clients: make(map[string]*relayClient),
		rooms:   make(map[string]map[string]struct{}),
	}
}

// Register adds a client and returns its event channel. The channel is
// buffered; a client that falls behind loses events rather than
// blocking the dispatcher.
func (h *RelayHub) Register(clientID string) <-chan RelayEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := &relayClient{
		ch:    make(chan RelayEvent, 100),
		rooms: make(map[string]struct{}),
	}
	h.clients[clientID] = c
	return c.ch
}

// Unregister removes a client from every channel and closes its event
// channel.
func (h *RelayHub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[clientID]
	if !ok {
		return
	}
	for room := range c.rooms {
		h.leaveLocked(clientID, room)
	}
	close(c.ch)
	delete(h.clients, clientID)
}

// Join subscribes a registered client to a channel.
func (h *RelayHub) Join(clientID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[clientID]
	if !ok {
		return
	}
	c.rooms[room] = struct{}{}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]struct{})
	}
	h.rooms[room][clientID] = struct{}{}
}

// Leave unsubscribes a client from a channel.
func (h *RelayHub) Leave(clientID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[clientID]; ok {
		delete(c.rooms, room)
	}
	h.leaveLocked(clientID, room)
}

func (h *RelayHub) leaveLocked(clientID, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, clientID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Publish delivers an event to every subscriber of the channel. With no
// subscribers the event is dropped. The send is non-blocking: a full
// client buffer drops the event for that client only. A nil hub is a
// no-op so services can run without a live relay (tests, scripts).
func (h *RelayHub) Publish(room string, event RelayEvent) {
	if h == nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for clientID := range h.rooms[room] {
		c, ok := h.clients[clientID]
		if !ok {
			continue
		}
		select {
		case c.ch <- event:
		default:
			// Client is slow, skip this event
		}
	}
}

// ClientCount returns the number of registered clients.
func (h *RelayHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomSize returns the number of subscribers of a channel.
func (h *RelayHub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// --- Typed publish helpers used by the command services ---

// PublishNotification pushes a freshly created notification to its
// recipient's personal channel.
func (h *RelayHub) PublishNotification(userID uint, notification interface{}) {
	h.Publish(UserChannel(userID), RelayEvent{Type: EventNotificationCreated, Payload: notification})
}

// PublishTaskChanged pushes a created/updated/deleted task to the
// project channel.
func (h *RelayHub) PublishTaskChanged(projectID uint, task interface{}) {
	h.Publish(ProjectChannel(projectID), RelayEvent{Type: EventTaskChanged, Payload: task})
}

// PublishTaskStatus pushes a column move to the project channel.
func (h *RelayHub) PublishTaskStatus(projectID, taskID uint, newStatus string) {
	h.Publish(ProjectChannel(projectID), RelayEvent{
		Type: EventTaskStatusChanged,
		Payload: map[string]interface{}{
			"task_id":    taskID,
			"new_status": newStatus,
		},
	})
}

// PublishCommentCreated pushes a new comment to the project channel.
func (h *RelayHub) PublishCommentCreated(projectID uint, comment interface{}) {
	h.Publish(ProjectChannel(projectID), RelayEvent{Type: EventCommentCreated, Payload: comment})
}
