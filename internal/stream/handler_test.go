package stream

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rickgao/delivery-planner/internal/model"
)

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHandler_WatchReceivesPlans(t *testing.T) {
	hub := NewHub(8, nil)
	defer hub.Close()

	server := httptest.NewServer(Handler(hub, Config{PingInterval: 50 * time.Millisecond, WriteTimeout: time.Second}, nil))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *model.DeliveryPlan, 2)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, wsURL(server), func(p *model.DeliveryPlan) error {
			received <- p
			return nil
		})
	}()

	waitFor(t, "subscriber", func() bool { return hub.Stats().Subscribers == 1 })

	first, second := newPlan("A1"), newPlan("A2")
	hub.Publish(first)
	hub.Publish(second)

	for _, want := range []*model.DeliveryPlan{first, second} {
		select {
		case got := <-received:
			if got.ID != want.ID || got.AgentID != want.AgentID {
				t.Errorf("received %s/%s, want %s/%s", got.ID, got.AgentID, want.ID, want.AgentID)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for plan")
		}
	}

	// Let a few pings go by before hanging up
	time.Sleep(150 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}

	waitFor(t, "handler exit", func() bool { return hub.Stats().Subscribers == 0 })
}

func TestHandler_HubCloseEndsWatch(t *testing.T) {
	hub := NewHub(8, nil)
	server := httptest.NewServer(Handler(hub, DefaultConfig(), nil))
	defer server.Close()

	done := make(chan error, 1)
	go func() {
		done <- Watch(context.Background(), wsURL(server), func(*model.DeliveryPlan) error { return nil })
	}()

	waitFor(t, "subscriber", func() bool { return hub.Stats().Subscribers == 1 })
	hub.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v, want nil on normal close", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after hub close")
	}
}

func TestWatch_CallbackErrorStops(t *testing.T) {
	hub := NewHub(8, nil)
	defer hub.Close()

	server := httptest.NewServer(Handler(hub, DefaultConfig(), nil))
	defer server.Close()

	errStop := errors.New("stop")
	done := make(chan error, 1)
	go func() {
		done <- Watch(context.Background(), wsURL(server), func(*model.DeliveryPlan) error { return errStop })
	}()

	waitFor(t, "subscriber", func() bool { return hub.Stats().Subscribers == 1 })
	hub.Publish(newPlan("A1"))

	select {
	case err := <-done:
		if !errors.Is(err, errStop) {
			t.Errorf("Watch() error = %v, want %v", err, errStop)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after callback error")
	}

	waitFor(t, "handler exit", func() bool { return hub.Stats().Subscribers == 0 })
}

func TestHandler_ClosedHubRejects(t *testing.T) {
	hub := NewHub(1, nil)
	hub.Close()

	server := httptest.NewServer(Handler(hub, DefaultConfig(), nil))
	defer server.Close()

	err := Watch(context.Background(), wsURL(server), func(*model.DeliveryPlan) error { return nil })
	if err == nil {
		t.Fatal("Watch() expected dial error against closed hub")
	}
}

func TestWatch_DialError(t *testing.T) {
	err := Watch(context.Background(), "ws://127.0.0.1:1/v1/plans/stream", func(*model.DeliveryPlan) error { return nil })
	if err == nil || !strings.Contains(err.Error(), "dial") {
		t.Errorf("Watch() error = %v, want dial error", err)
	}
}

func TestHandler_IdleFeedSurvivesPongWait(t *testing.T) {
	hub := NewHub(8, nil)
	defer hub.Close()

	server := httptest.NewServer(Handler(hub, Config{PingInterval: 20 * time.Millisecond, WriteTimeout: time.Second}, nil))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *model.DeliveryPlan, 1)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, wsURL(server), func(p *model.DeliveryPlan) error {
			received <- p
			return nil
		})
	}()

	waitFor(t, "subscriber", func() bool { return hub.Stats().Subscribers == 1 })

	// Several pong windows with no plans
	time.Sleep(200 * time.Millisecond)
	if got := hub.Stats().Subscribers; got != 1 {
		t.Fatalf("Subscribers = %d after idle period, want 1", got)
	}

	want := newPlan("A1")
	hub.Publish(want)
	select {
	case got := <-received:
		if got.ID != want.ID {
			t.Errorf("received %s, want %s", got.ID, want.ID)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for plan")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch() error = %v, want nil after cancel", err)
	}
	waitFor(t, "handler exit", func() bool { return hub.Stats().Subscribers == 0 })
}
