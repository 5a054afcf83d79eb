// Package notify implements the alert channel: a synchronous multicast hub
// and the board that collects alerts for rendering.
package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/simp-lee/partsweb/internal/domain"
)

// Subscriber receives every alert published after it subscribed.
type Subscriber func(domain.Alert)

type subscription struct {
	id uint64
	fn Subscriber
}

// Hub multicasts alerts to its current subscribers. Publish runs every
// subscriber before returning; alerts published with no subscribers are dropped.
type Hub struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
	logger *slog.Logger
}

// NewHub creates an empty hub. A nil logger falls back to slog.Default().
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{logger: logger}
}

// Subscribe registers fn and returns the function that removes it.
// The returned function is safe to call more than once.
func (h *Hub) Subscribe(fn Subscriber) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs = append(h.subs, subscription{id: id, fn: fn})
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { h.remove(id) })
	}
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, s := range h.subs {
		if s.id == id {
			h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
			return
		}
	}
}

// Subscribers returns the number of active subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Publish delivers alert to every subscriber in subscription order.
// A panicking subscriber is logged and does not stop delivery to the others.
func (h *Hub) Publish(alert domain.Alert) {
	h.mu.RLock()
	subs := make([]subscription, len(h.subs))
	copy(subs, h.subs)
	h.mu.RUnlock()

	for _, s := range subs {
		h.dispatch(s, alert)
	}
}

func (h *Hub) dispatch(s subscription, alert domain.Alert) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("alert subscriber panicked",
				slog.Uint64("subscriber", s.id),
				slog.String("type", string(alert.Type)),
				slog.Any("panic", r),
			)
		}
	}()
	s.fn(alert)
}

// ShowSuccess publishes a success alert. Timeout defaults to 5000 ms.
func (h *Hub) ShowSuccess(message string, timeout ...time.Duration) {
	h.show(domain.AlertSuccess, message, timeout)
}

// ShowError publishes a danger alert.
func (h *Hub) ShowError(message string, timeout ...time.Duration) {
	h.show(domain.AlertDanger, message, timeout)
}

// ShowInfo publishes an info alert.
func (h *Hub) ShowInfo(message string, timeout ...time.Duration) {
	h.show(domain.AlertInfo, message, timeout)
}

// ShowWarning publishes a warning alert.
func (h *Hub) ShowWarning(message string, timeout ...time.Duration) {
	h.show(domain.AlertWarning, message, timeout)
}

func (h *Hub) show(typ domain.AlertType, message string, timeout []time.Duration) {
	d := domain.DefaultAlertTimeout
	if len(timeout) > 0 && timeout[0] >= 0 {
		d = timeout[0]
	}
	h.Publish(domain.Alert{Type: typ, Message: message, Timeout: d})
}
