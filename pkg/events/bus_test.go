package events

import (
	"sync"
	"testing"

	"github.com/crystal-mush/gosoul/pkg/soul"
)

// mockSubscriber implements Subscriber for testing.
type mockSubscriber struct {
	mu       sync.Mutex
	events   []Event
	isClosed bool
}

func (m *mockSubscriber) Receive(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

func (m *mockSubscriber) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isClosed
}

func (m *mockSubscriber) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]Event, len(m.events))
	copy(cp, m.events)
	return cp
}

// mockRoster maps room names to occupants.
type mockRoster map[string][]soul.EntityID

func (r mockRoster) Occupants(room string) []soul.EntityID { return r[room] }

func TestBusEmitTo(t *testing.T) {
	bus := NewBus()
	sub := &mockSubscriber{}

	bob := soul.EntityID(1)
	bus.Subscribe(bob, sub)
	bus.EmitTo(bob, Event{Type: EvEmote, Source: 2, Text: "Julie smiles at you."})

	events := sub.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Text != "Julie smiles at you." {
		t.Errorf("expected text %q, got %q", "Julie smiles at you.", events[0].Text)
	}
	if events[0].Observer != bob || events[0].Type != EvEmote {
		t.Errorf("unexpected event %+v", events[0])
	}
}

func TestBusGlobalSubscriber(t *testing.T) {
	bus := NewBus()
	global := &mockSubscriber{}
	bus.SubscribeGlobal(global)

	bus.Emit(Event{Type: EvNotice, Observer: 5, Text: "(By 'him', it is assumed you mean Bob.)"})

	events := global.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 global event, got %d", len(events))
	}
	if events[0].Observer != 5 {
		t.Errorf("expected observer 5, got %d", events[0].Observer)
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()
	sub := &mockSubscriber{}
	other := &mockSubscriber{}
	id := soul.EntityID(1)

	bus.Subscribe(id, sub)
	bus.Subscribe(id, other)
	bus.Unsubscribe(id, sub)

	bus.Emit(Event{Type: EvText, Observer: id, Text: "only other"})

	if len(sub.Events()) != 0 {
		t.Error("expected no events after unsubscribe")
	}
	if len(other.Events()) != 1 {
		t.Error("remaining subscriber lost its event")
	}
}

func TestBusClosedSubscriberSkipped(t *testing.T) {
	bus := NewBus()
	sub := &mockSubscriber{isClosed: true}
	id := soul.EntityID(1)

	bus.Subscribe(id, sub)
	bus.Emit(Event{Type: EvText, Observer: id, Text: "no delivery"})

	if len(sub.Events()) != 0 {
		t.Error("closed subscriber should not receive events")
	}
}

func TestBusEmitToRoom(t *testing.T) {
	roster := mockRoster{"hall": {1, 2, 2}}
	bus := NewBus()
	sub1 := &mockSubscriber{}
	sub2 := &mockSubscriber{}
	global := &mockSubscriber{}
	bus.Subscribe(1, sub1)
	bus.Subscribe(2, sub2)
	bus.SubscribeGlobal(global)

	bus.EmitToRoom(roster, "hall", Event{Type: EvText, Source: 1, Text: "A bell rings."})

	if len(sub1.Events()) != 1 {
		t.Errorf("observer 1: expected 1 event, got %d", len(sub1.Events()))
	}
	if evs := sub2.Events(); len(evs) != 1 || evs[0].Room != "hall" || evs[0].Observer != 2 {
		t.Errorf("observer 2: got %+v", evs)
	}
	if evs := global.Events(); len(evs) != 1 || evs[0].Observer != soul.NoEntity {
		t.Errorf("global: got %+v", evs)
	}
}

func TestBusEmitToRoomExcept(t *testing.T) {
	roster := mockRoster{"hall": {1, 2}}
	bus := NewBus()
	sub1 := &mockSubscriber{}
	sub2 := &mockSubscriber{}
	bus.Subscribe(1, sub1)
	bus.Subscribe(2, sub2)

	bus.EmitToRoomExcept(roster, "hall", 1, Event{Type: EvText, Source: 1, Text: "Hello others"})

	if len(sub1.Events()) != 0 {
		t.Errorf("observer 1 (excluded): expected 0 events, got %d", len(sub1.Events()))
	}
	if len(sub2.Events()) != 1 {
		t.Errorf("observer 2: expected 1 event, got %d", len(sub2.Events()))
	}
}

func TestBusEmitRendered(t *testing.T) {
	julie := soul.Entity{ID: 1, Name: "julie", Title: "Julie", Kind: soul.KindPlayer, Gender: soul.GenderFemale}
	bob := soul.Entity{ID: 2, Name: "bob", Title: "Bob", Kind: soul.KindPlayer, Gender: soul.GenderMale}
	res := &soul.RenderResult{
		Action: &soul.Action{Verb: "smile", Actor: julie, Adverb: "happily"},
		Messages: []soul.Message{
			{Observer: julie, Role: soul.ObserverActor, Text: "You smile happily at Bob."},
			{Observer: bob, Role: soul.ObserverTarget, Text: "Julie smiles happily at you."},
		},
	}
	bus := NewBus()
	sub := &mockSubscriber{}
	global := &mockSubscriber{}
	bus.Subscribe(bob.ID, sub)
	bus.SubscribeGlobal(global)

	bus.EmitRendered("hall", res)

	evs := sub.Events()
	if len(evs) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evs))
	}
	ev := evs[0]
	if ev.Type != EvEmote || ev.Verb != "smile" || ev.Role != "target" || ev.Source != julie.ID {
		t.Errorf("unexpected event %+v", ev)
	}
	if ev.Data["adverb"] != "happily" {
		t.Errorf("data = %v", ev.Data)
	}
	if n := len(global.Events()); n != 2 {
		t.Errorf("global: expected 2 events, got %d", n)
	}
}

func TestBusCleanup(t *testing.T) {
	bus := NewBus()
	active := &mockSubscriber{}
	closed := &mockSubscriber{isClosed: true}
	id := soul.EntityID(1)

	bus.Subscribe(id, active)
	bus.Subscribe(id, closed)
	bus.SubscribeGlobal(&mockSubscriber{isClosed: true})

	bus.Cleanup()

	if bus.Subscribers(id) != 1 {
		t.Errorf("expected 1 active subscriber, got %d", bus.Subscribers(id))
	}
}

func TestEventTypeString(t *testing.T) {
	tests := []struct {
		t    EventType
		want string
	}{
		{EvText, "text"},
		{EvEmote, "emote"},
		{EvNotice, "notice"},
		{EvError, "error"},
		{EventType(999), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("EventType(%d).String() = %q, want %q", tt.t, got, tt.want)
		}
	}
}
