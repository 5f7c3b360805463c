package events

import (
	"sync"

	"github.com/crystal-mush/gosoul/pkg/soul"
)

// Subscriber receives events from the bus.
type Subscriber interface {
	Receive(ev Event)
	Closed() bool
}

// Roster lists the entities present in a room.
type Roster interface {
	Occupants(room string) []soul.EntityID
}

// Bus is a per-observer pub/sub event bus with support for global
// subscribers. The dispatcher emits one event per observer; each subscriber
// (console session, scrollback writer, logger) encodes it for its transport.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[soul.EntityID][]Subscriber
	global      []Subscriber
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[soul.EntityID][]Subscriber),
	}
}

// Subscribe registers a subscriber for one observer's events.
func (b *Bus) Subscribe(id soul.EntityID, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[id] = append(b.subscribers[id], sub)
}

// Unsubscribe removes a subscriber of an observer.
func (b *Bus) Unsubscribe(id soul.EntityID, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subscribers[id]
	for i, s := range subs {
		if s == sub {
			b.subscribers[id] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subscribers[id]) == 0 {
		delete(b.subscribers, id)
	}
}

// SubscribeGlobal registers a subscriber that receives all events.
func (b *Bus) SubscribeGlobal(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.global = append(b.global, sub)
}

// Emit sends an event to ev.Observer and all global subscribers.
func (b *Bus) Emit(ev Event) {
	b.mu.RLock()
	subs := b.subscribers[ev.Observer]
	globals := b.global
	b.mu.RUnlock()

	deliver(subs, ev)
	deliver(globals, ev)
}

// EmitTo sends an event to a specific observer (overriding ev.Observer).
func (b *Bus) EmitTo(id soul.EntityID, ev Event) {
	ev.Observer = id
	b.Emit(ev)
}

// EmitToRoom sends ev to every occupant of room. Global subscribers get a
// single copy with Observer set to soul.NoEntity.
func (b *Bus) EmitToRoom(r Roster, room string, ev Event) {
	b.EmitToRoomExcept(r, room, soul.NoEntity, ev)
}

// EmitToRoomExcept sends ev to every occupant of room except one.
func (b *Bus) EmitToRoomExcept(r Roster, room string, except soul.EntityID, ev Event) {
	ev.Room = room
	seen := make(map[soul.EntityID]bool)
	for _, id := range r.Occupants(room) {
		if id == except || seen[id] {
			continue
		}
		seen[id] = true
		b.mu.RLock()
		subs := b.subscribers[id]
		b.mu.RUnlock()

		occupantEv := ev
		occupantEv.Observer = id
		deliver(subs, occupantEv)
	}

	b.mu.RLock()
	globals := b.global
	b.mu.RUnlock()
	ev.Observer = soul.NoEntity
	deliver(globals, ev)
}

// EmitRendered delivers every message of a rendered action as an EvEmote
// event to its observer.
func (b *Bus) EmitRendered(room string, res *soul.RenderResult) {
	a := res.Action
	for _, m := range res.Messages {
		b.Emit(Event{
			Type:     EvEmote,
			Observer: m.Observer.ID,
			Source:   a.Actor.ID,
			Room:     room,
			Verb:     a.Verb,
			Role:     m.Role.String(),
			Text:     m.Text,
			Data: map[string]any{
				"adverb":    a.Adverb,
				"bodypart":  a.Bodypart,
				"qualifier": a.Qualifier,
				"degraded":  res.Degraded,
				"hostile":   a.Hostile(),
			},
		})
	}
}

func deliver(subs []Subscriber, ev Event) {
	for _, s := range subs {
		if !s.Closed() {
			s.Receive(ev)
		}
	}
}

// Subscribers returns the number of subscribers of an observer.
func (b *Bus) Subscribers(id soul.EntityID) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[id])
}

// Cleanup removes closed subscribers from all lists.
func (b *Bus) Cleanup() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, subs := range b.subscribers {
		var active []Subscriber
		for _, s := range subs {
			if !s.Closed() {
				active = append(active, s)
			}
		}
		if len(active) == 0 {
			delete(b.subscribers, id)
		} else {
			b.subscribers[id] = active
		}
	}

	var activeGlobal []Subscriber
	for _, s := range b.global {
		if !s.Closed() {
			activeGlobal = append(activeGlobal, s)
		}
	}
	b.global = activeGlobal
}
