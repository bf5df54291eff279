package notifications

import (
	"strings"
	"sync"
	"time"
)

const (
	EventExpensesChanged    = "expenses_changed"
	EventBudgetsChanged     = "budgets_changed"
	EventCategoriesChanged  = "categories_changed"
	EventPreferencesChanged = "preferences_changed"
)

type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Hub рассылает события изменений всем открытым потокам пользователя.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	now         func() time.Time
}

// NewHub создает хаб для SSE-подписок.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
		now:         time.Now,
	}
}

// Subscribe подписывает пользователя на события и возвращает канал и функцию отписки.
func (h *Hub) Subscribe(email string) (<-chan Event, func()) {
	key := subscriberKey(email)
	ch := make(chan Event, 10)

	h.mu.Lock()
	defer h.mu.Unlock()

	userSubs, ok := h.subscribers[key]
	if !ok {
		userSubs = make(map[chan Event]struct{})
		h.subscribers[key] = userSubs
	}
	userSubs[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			if subs, exists := h.subscribers[key]; exists {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(h.subscribers, key)
				}
			}
			close(ch)
		})
	}
}

// Publish отправляет событие всем подписчикам пользователя.
// Медленный подписчик с заполненным буфером пропускает событие.
func (h *Hub) Publish(email string, event Event) {
	event.Timestamp = h.now().UTC()

	h.mu.RLock()
	defer h.mu.RUnlock()

	subs, ok := h.subscribers[subscriberKey(email)]
	if !ok {
		return
	}

	for ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribers возвращает число открытых потоков пользователя.
func (h *Hub) Subscribers(email string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[subscriberKey(email)])
}

func subscriberKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
