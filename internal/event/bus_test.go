package event

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/Iron-Ham/clawteam/internal/logging"
)

func TestBus_Subscribe(t *testing.T) {
	bus := NewBus(nil)

	called := false
	id := bus.Subscribe(TypeTaskAdded, func(e Event) {
		called = true
	})

	if id == "" {
		t.Error("Subscribe should return a non-empty ID")
	}
	if bus.SubscriptionCount() != 1 {
		t.Errorf("SubscriptionCount() = %d, want 1", bus.SubscriptionCount())
	}
	if called {
		t.Error("Handler should not be called until an event is published")
	}
}

func TestBus_Publish(t *testing.T) {
	bus := NewBus(nil)

	var received Event
	bus.Subscribe(TypeTaskClaimed, func(e Event) {
		received = e
	})

	bus.Publish(NewTaskClaimedEvent("alpha", "T001", "developer", "in_progress"))

	if received == nil {
		t.Fatal("Handler should have received the event")
	}
	if received.EventType() != TypeTaskClaimed {
		t.Errorf("EventType() = %q, want %q", received.EventType(), TypeTaskClaimed)
	}
	if received.TeamName() != "alpha" {
		t.Errorf("TeamName() = %q, want %q", received.TeamName(), "alpha")
	}
	claimed, ok := received.(TaskClaimedEvent)
	if !ok {
		t.Fatalf("event type = %T, want TaskClaimedEvent", received)
	}
	if claimed.TaskID != "T001" || claimed.Agent != "developer" {
		t.Errorf("claimed = %+v", claimed)
	}
}

func TestBus_PublishNoMatchingHandlers(t *testing.T) {
	bus := NewBus(nil)

	bus.Subscribe(TypeTeamClosed, func(e Event) {
		t.Error("Handler should not be called for non-matching event type")
	})

	bus.Publish(newBaseEvent(TypeTeamCreated, "alpha"))
}

func TestBus_SubscribeAll(t *testing.T) {
	bus := NewBus(nil)

	var events []string
	bus.SubscribeAll(func(e Event) {
		events = append(events, e.EventType())
	})

	bus.Publish(NewTeamCreatedEvent("alpha", []string{"developer"}, "developer"))
	bus.Publish(NewTaskAddedEvent("alpha", "T001", "Draft", "unassigned", nil))
	bus.Publish(NewMessageSentEvent("alpha", "Mabc", "a", "b", "hi"))

	expected := []string{TypeTeamCreated, TypeTaskAdded, TypeMessageSent}
	if len(events) != len(expected) {
		t.Fatalf("got %d events, want %d", len(events), len(expected))
	}
	for i, e := range expected {
		if events[i] != e {
			t.Errorf("events[%d] = %q, want %q", i, events[i], e)
		}
	}
}

func TestBus_SpecificBeforeWildcard(t *testing.T) {
	bus := NewBus(nil)

	var order []string
	bus.SubscribeAll(func(e Event) { order = append(order, "wildcard") })
	bus.Subscribe(TypeTeamClosed, func(e Event) { order = append(order, "specific") })

	bus.Publish(newBaseEvent(TypeTeamClosed, "alpha"))

	if strings.Join(order, ",") != "specific,wildcard" {
		t.Errorf("order = %v, want [specific wildcard]", order)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)

	calls := make(map[string]int)
	id1 := bus.Subscribe(TypeTaskUpdated, func(e Event) { calls["one"]++ })
	bus.Subscribe(TypeTaskUpdated, func(e Event) { calls["two"]++ })

	if !bus.Unsubscribe(id1) {
		t.Error("Unsubscribe should return true when subscription exists")
	}
	if bus.Unsubscribe(id1) {
		t.Error("Unsubscribe should return false the second time")
	}

	bus.Publish(newBaseEvent(TypeTaskUpdated, "alpha"))

	if calls["one"] != 0 {
		t.Error("unsubscribed handler should not be called")
	}
	if calls["two"] != 1 {
		t.Error("remaining handler should still be called")
	}
}

func TestBus_SubscriptionCount(t *testing.T) {
	bus := NewBus(nil)

	bus.Subscribe(TypeTeamCreated, func(e Event) {})
	bus.Subscribe(TypeTeamClosed, func(e Event) {})
	id := bus.SubscribeAll(func(e Event) {})

	if bus.SubscriptionCount() != 3 {
		t.Errorf("SubscriptionCount() = %d, want 3", bus.SubscriptionCount())
	}
	bus.Unsubscribe(id)
	if bus.SubscriptionCount() != 2 {
		t.Errorf("SubscriptionCount() after Unsubscribe = %d, want 2", bus.SubscriptionCount())
	}
}

func TestBus_HandlerPanicRecovery(t *testing.T) {
	var buf bytes.Buffer
	bus := NewBus(logging.NewWriterLogger(&buf, logging.LevelError))

	calls := 0
	bus.Subscribe(TypeMessageSent, func(e Event) {
		calls++
		panic("handler panic")
	})
	bus.Subscribe(TypeMessageSent, func(e Event) {
		calls++
	})

	bus.Publish(newBaseEvent(TypeMessageSent, "alpha"))

	if calls != 2 {
		t.Errorf("expected both handlers to be called despite panic, got %d calls", calls)
	}
	if !strings.Contains(buf.String(), "event handler panicked") {
		t.Errorf("expected panic to be logged, got %q", buf.String())
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus(nil)

	var mu sync.Mutex
	calls := 0
	bus.Subscribe(TypeTaskAdded, func(e Event) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for range 100 {
		wg.Go(func() {
			bus.Publish(newBaseEvent(TypeTaskAdded, "alpha"))
		})
	}
	wg.Wait()

	if calls != 100 {
		t.Errorf("expected 100 calls, got %d", calls)
	}
}

func TestBus_ConcurrentSubscribeUnsubscribe(t *testing.T) {
	bus := NewBus(nil)

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			id := bus.Subscribe(TypeTaskAdded, func(e Event) {})
			bus.Unsubscribe(id)
		})
	}
	wg.Wait()

	if bus.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", bus.SubscriptionCount())
	}
}

func TestBus_UniqueIDs(t *testing.T) {
	bus := NewBus(nil)

	ids := make(map[string]bool)
	for range 1000 {
		id := bus.Subscribe(TypeTaskAdded, func(e Event) {})
		if ids[id] {
			t.Fatalf("duplicate subscription ID: %s", id)
		}
		ids[id] = true
	}
}
