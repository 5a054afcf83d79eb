package notify

import (
	"context"
	"testing"
	"time"

	"github.com/simp-lee/partsweb/internal/domain"
)

func TestHub_PublishMulticast(t *testing.T) {
	hub := NewHub(nil)

	var first, second []domain.Alert
	unsubFirst := hub.Subscribe(func(a domain.Alert) { first = append(first, a) })
	hub.Subscribe(func(a domain.Alert) { second = append(second, a) })

	hub.ShowSuccess("saved")
	unsubFirst()
	hub.ShowInfo("later")

	if len(first) != 1 || first[0].Message != "saved" {
		t.Fatalf("first subscriber got %+v", first)
	}
	if len(second) != 2 || second[1].Type != domain.AlertInfo {
		t.Fatalf("second subscriber got %+v", second)
	}
}

func TestHub_LateSubscriberMissesEarlierAlerts(t *testing.T) {
	hub := NewHub(nil)
	hub.ShowError("nobody listening")

	var got []domain.Alert
	hub.Subscribe(func(a domain.Alert) { got = append(got, a) })
	if len(got) != 0 {
		t.Fatalf("late subscriber received %+v", got)
	}
}

func TestHub_ShowHelpers(t *testing.T) {
	tests := []struct {
		name    string
		show    func(h *Hub)
		typ     domain.AlertType
		timeout time.Duration
	}{
		{"success default", func(h *Hub) { h.ShowSuccess("m") }, domain.AlertSuccess, 5000 * time.Millisecond},
		{"error default", func(h *Hub) { h.ShowError("m") }, domain.AlertDanger, 5000 * time.Millisecond},
		{"info custom", func(h *Hub) { h.ShowInfo("m", time.Second) }, domain.AlertInfo, time.Second},
		{"warning sticky", func(h *Hub) { h.ShowWarning("m", 0) }, domain.AlertWarning, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := NewHub(nil)
			var got domain.Alert
			hub.Subscribe(func(a domain.Alert) { got = a })
			tt.show(hub)
			if got.Type != tt.typ || got.Timeout != tt.timeout || got.Message != "m" {
				t.Errorf("got %+v; want type %s timeout %s", got, tt.typ, tt.timeout)
			}
		})
	}
}

func TestHub_PanickingSubscriber(t *testing.T) {
	hub := NewHub(nil)
	hub.Subscribe(func(domain.Alert) { panic("boom") })

	delivered := false
	hub.Subscribe(func(domain.Alert) { delivered = true })

	hub.ShowWarning("still delivered")
	if !delivered {
		t.Fatal("subscriber after a panicking one should still receive the alert")
	}
}

func TestHub_UnsubscribeTwice(t *testing.T) {
	hub := NewHub(nil)
	unsub := hub.Subscribe(func(domain.Alert) {})
	hub.Subscribe(func(domain.Alert) {})

	unsub()
	unsub()
	if n := hub.Subscribers(); n != 1 {
		t.Fatalf("Subscribers() = %d; want 1", n)
	}
}

func TestContext(t *testing.T) {
	if FromContext(context.Background()) != nil {
		t.Fatal("empty context should carry no hub")
	}
	hub := NewHub(nil)
	if FromContext(WithHub(context.Background(), hub)) != hub {
		t.Fatal("FromContext should return the hub stored by WithHub")
	}
}
