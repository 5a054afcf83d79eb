package notify

import (
	"sync"
	"time"

	"github.com/simp-lee/partsweb/internal/domain"
)

type pending struct {
	id    uint64
	alert domain.Alert
	timer *time.Timer
}

// Board collects the alerts published on a hub until a page renders them.
// Alerts with a timeout are dropped when it elapses, rendered or not.
type Board struct {
	mu          sync.Mutex
	alerts      []*pending
	nextID      uint64
	closed      bool
	unsubscribe func()
}

// NewBoard subscribes a new board to hub.
func NewBoard(hub *Hub) *Board {
	b := &Board{}
	b.unsubscribe = hub.Subscribe(b.add)
	return b
}

func (b *Board) add(alert domain.Alert) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.nextID++
	p := &pending{id: b.nextID, alert: alert}
	if alert.Timeout > 0 {
		id := p.id
		p.timer = time.AfterFunc(alert.Timeout, func() { b.expire(id) })
	}
	b.alerts = append(b.alerts, p)
}

func (b *Board) expire(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, p := range b.alerts {
		if p.id == id {
			b.alerts = append(b.alerts[:i:i], b.alerts[i+1:]...)
			return
		}
	}
}

// Take returns the pending alerts in arrival order and clears the board.
func (b *Board) Take() []domain.Alert {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.alerts) == 0 {
		return nil
	}
	out := make([]domain.Alert, len(b.alerts))
	for i, p := range b.alerts {
		if p.timer != nil {
			p.timer.Stop()
		}
		out[i] = p.alert
	}
	b.alerts = nil
	return out
}

// Len returns the number of pending alerts.
func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.alerts)
}

// Close unsubscribes the board and stops its timers. Pending alerts are discarded.
func (b *Board) Close() {
	b.unsubscribe()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, p := range b.alerts {
		if p.timer != nil {
			p.timer.Stop()
		}
	}
	b.alerts = nil
}
