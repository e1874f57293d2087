package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
)

const (
	EventNotification = "notification"
	EventUnreadCount  = "unread_count"
	EventPing         = "ping"

	bufferSize = 16
)

// Event is one server-sent event addressed to an employee.
type Event struct {
	ID         string
	EmployeeID string
	Event      string
	Data       any
}

// WriteTo encodes the event in text/event-stream framing.
func (e Event) WriteTo(w io.Writer) (int64, error) {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return 0, fmt.Errorf("failed to encode sse data: %w", err)
	}
	n, err := fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", e.ID, e.Event, payload)
	return int64(n), err
}

// Hub fans events out to the open streams of each employee.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe returns the event channel and a cleanup func that must be called once.
func (h *Hub) Subscribe(employeeID string) (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, bufferSize)

	if h.subscribers[employeeID] == nil {
		h.subscribers[employeeID] = make(map[chan Event]struct{})
	}
	h.subscribers[employeeID][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[employeeID], ch)
			close(ch)
			if len(h.subscribers[employeeID]) == 0 {
				delete(h.subscribers, employeeID)
			}
		})
	}

	return ch, cleanup
}

// Publish delivers to every stream of one employee. Full buffers drop the event.
func (h *Hub) Publish(employeeID string, event Event) int {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	event.EmployeeID = employeeID

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for ch := range h.subscribers[employeeID] {
		select {
		case ch <- event:
			delivered++
		default:
		}
	}
	return delivered
}

func (h *Hub) PublishToMany(employeeIDs []string, event Event) int {
	delivered := 0
	for _, id := range employeeIDs {
		delivered += h.Publish(id, event)
	}
	return delivered
}

func (h *Hub) SubscriberCount(employeeID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[employeeID])
}

func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}
