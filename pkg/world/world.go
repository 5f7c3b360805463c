// Package world is a small in-memory room model that supplies the soul with
// resolution contexts and the event bus with room rosters.
package world

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/crystal-mush/gosoul/pkg/lang"
	"github.com/crystal-mush/gosoul/pkg/soul"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownEntity = errors.New("no such entity")
	ErrUnknownRoom   = errors.New("no such room")
	ErrNoExit        = errors.New("you can't go that way")
)

// Room is a location. Contents keeps arrival order, which is also the order
// candidates are offered to the soul.
type Room struct {
	Name        string
	Title       string
	Description string
	Exits       map[string]string // exit name -> destination room
	contents    []soul.EntityID
	exitIDs     map[string]soul.EntityID
}

// Thing is an entity placed in the world.
type Thing struct {
	soul.Entity
	Description string
	Room        string
}

// World holds rooms and things behind a read/write lock.
type World struct {
	mu        sync.RWMutex
	rooms     map[string]*Room
	roomOrder []string
	things    map[soul.EntityID]*Thing
	nextExit  soul.EntityID
}

// New returns an empty world.
func New() *World {
	return &World{
		rooms:    make(map[string]*Room),
		things:   make(map[soul.EntityID]*Thing),
		nextExit: 1 << 20,
	}
}

// AddRoom adds a room. Exits may name rooms that are added later.
func (w *World) AddRoom(name, title, desc string, exits map[string]string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	name = strings.ToLower(name)
	if _, dup := w.rooms[name]; dup {
		return fmt.Errorf("world: duplicate room %q", name)
	}
	r := &Room{Name: name, Title: title, Description: desc, Exits: make(map[string]string), exitIDs: make(map[string]soul.EntityID)}
	if r.Title == "" {
		r.Title = lang.Capital(name)
	}
	w.rooms[name] = r
	w.roomOrder = append(w.roomOrder, name)

	names := make([]string, 0, len(exits))
	for exit := range exits {
		names = append(names, exit)
	}
	sort.Strings(names)
	for _, exit := range names {
		key := strings.ToLower(exit)
		r.Exits[key] = strings.ToLower(exits[exit])
		id := w.nextExit
		w.nextExit++
		w.things[id] = &Thing{
			Entity: soul.Entity{ID: id, Name: key, Title: key, Kind: soul.KindExit, Gender: soul.GenderNeuter},
			Room:   name,
		}
		r.exitIDs[key] = id
	}
	return nil
}

// Add places an entity in a room.
func (w *World) Add(e soul.Entity, room, desc string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, dup := w.things[e.ID]; dup {
		return fmt.Errorf("world: duplicate entity id %d", e.ID)
	}
	r, ok := w.rooms[strings.ToLower(room)]
	if !ok {
		return fmt.Errorf("world: %s: %w", room, ErrUnknownRoom)
	}
	w.things[e.ID] = &Thing{Entity: e, Description: desc, Room: r.Name}
	r.contents = append(r.contents, e.ID)
	return nil
}

// Remove takes an entity out of the world.
func (w *World) Remove(id soul.EntityID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	t, ok := w.things[id]
	if !ok || t.Kind == soul.KindExit {
		return ErrUnknownEntity
	}
	w.rooms[t.Room].leave(id)
	delete(w.things, id)
	return nil
}

// Move puts an entity in another room, at the end of its contents.
func (w *World) Move(id soul.EntityID, room string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.move(id, room)
}

func (w *World) move(id soul.EntityID, room string) error {
	t, ok := w.things[id]
	if !ok || t.Kind == soul.KindExit {
		return ErrUnknownEntity
	}
	dst, ok := w.rooms[strings.ToLower(room)]
	if !ok {
		return fmt.Errorf("world: %s: %w", room, ErrUnknownRoom)
	}
	w.rooms[t.Room].leave(id)
	t.Room = dst.Name
	dst.contents = append(dst.contents, id)
	return nil
}

func (r *Room) leave(id soul.EntityID) {
	for i, c := range r.contents {
		if c == id {
			r.contents = append(r.contents[:i:i], r.contents[i+1:]...)
			return
		}
	}
}

// Go moves an entity through the named exit of its room and returns the
// destination.
func (w *World) Go(id soul.EntityID, exit string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	t, ok := w.things[id]
	if !ok {
		return "", ErrUnknownEntity
	}
	dst, ok := w.rooms[t.Room].Exits[strings.ToLower(exit)]
	if !ok {
		return "", ErrNoExit
	}
	if err := w.move(id, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// Entity returns an entity by id.
func (w *World) Entity(id soul.EntityID) (soul.Entity, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	t, ok := w.things[id]
	if !ok {
		return soul.Entity{}, false
	}
	return t.Entity, true
}

// Examine returns the description of an entity, or a stock line when it
// has none.
func (w *World) Examine(id soul.EntityID) (string, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	t, ok := w.things[id]
	if !ok {
		return "", ErrUnknownEntity
	}
	if t.Kind == soul.KindExit {
		r := w.rooms[t.Room]
		return "It leads to " + w.rooms[r.Exits[t.Name]].Title + ".", nil
	}
	if t.Description != "" {
		return t.Description, nil
	}
	if t.Kind.Living() {
		return "You see nothing special about " + lang.Capital(t.DisplayName()) + ".", nil
	}
	return "You see nothing special about the " + t.DisplayName() + ".", nil
}

// RoomOf returns the room an entity is in.
func (w *World) RoomOf(id soul.EntityID) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	t, ok := w.things[id]
	if !ok {
		return "", false
	}
	return t.Room, true
}

// Find returns the entity with the given name, preferring players over
// NPCs over items.
func (w *World) Find(name string) (soul.Entity, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	name = strings.ToLower(strings.TrimSpace(name))
	var found *Thing
	for _, t := range w.things {
		if t.Kind == soul.KindExit || strings.ToLower(t.Name) != name {
			continue
		}
		if found == nil || t.Kind < found.Kind || (t.Kind == found.Kind && t.ID < found.ID) {
			found = t
		}
	}
	if found == nil {
		return soul.Entity{}, false
	}
	return found.Entity, true
}

// Occupants returns the living entities in room, in arrival order.
func (w *World) Occupants(room string) []soul.EntityID {
	w.mu.RLock()
	defer w.mu.RUnlock()
	r, ok := w.rooms[strings.ToLower(room)]
	if !ok {
		return nil
	}
	var out []soul.EntityID
	for _, id := range r.contents {
		if w.things[id].Kind.Living() {
			out = append(out, id)
		}
	}
	return out
}

// Rooms returns the room names in declaration order.
func (w *World) Rooms() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string(nil), w.roomOrder...)
}

// Snapshot builds the resolution context of actor: the actor first, then
// the room's livings and items in arrival order, then its exits. limit caps
// the number of candidates (0 means no cap). Exit names are reported as
// external verbs. Pronoun state is left unbound for the caller to fill.
func (w *World) Snapshot(actor soul.EntityID, limit int) (*soul.Context, error) {
	ctx, _, err := w.SnapshotRoom(actor, limit)
	return ctx, err
}

// SnapshotRoom is Snapshot that also returns the actor's room, taken under
// the same lock.
func (w *World) SnapshotRoom(actor soul.EntityID, limit int) (*soul.Context, string, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	t, ok := w.things[actor]
	if !ok {
		return nil, "", fmt.Errorf("world: actor %d: %w", actor, ErrUnknownEntity)
	}
	r := w.rooms[t.Room]
	ctx := &soul.Context{
		Actor:      t.Entity,
		Candidates: []soul.Entity{t.Entity},
		Pronouns:   soul.NewPronouns(),
		External:   make(map[string]bool),
	}
	full := func() bool { return limit > 0 && len(ctx.Candidates) >= limit }
	for _, living := range []bool{true, false} {
		for _, id := range r.contents {
			c := w.things[id]
			if id == actor || c.Kind.Living() != living || full() {
				continue
			}
			ctx.Candidates = append(ctx.Candidates, c.Entity)
		}
	}
	exits := make([]string, 0, len(r.exitIDs))
	for name := range r.exitIDs {
		exits = append(exits, name)
	}
	sort.Strings(exits)
	for _, name := range exits {
		ctx.External[name] = true
		if !full() {
			ctx.Candidates = append(ctx.Candidates, w.things[r.exitIDs[name]].Entity)
		}
	}
	return ctx, r.Name, nil
}

// Describe renders a room as seen by viewer.
func (w *World) Describe(room string, viewer soul.EntityID) (string, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	r, ok := w.rooms[strings.ToLower(room)]
	if !ok {
		return "", ErrUnknownRoom
	}
	var b strings.Builder
	b.WriteString(r.Title)
	if r.Description != "" {
		b.WriteString("\n" + r.Description)
	}
	var livings, items []string
	for _, id := range r.contents {
		if id == viewer {
			continue
		}
		t := w.things[id]
		if t.Kind.Living() {
			livings = append(livings, lang.Capital(t.DisplayName()))
		} else {
			items = append(items, lang.A(t.DisplayName()))
		}
	}
	if len(livings) > 0 {
		verb := " is here."
		if len(livings) > 1 {
			verb = " are here."
		}
		b.WriteString("\n" + lang.Join(livings, "and") + verb)
	}
	if len(items) > 0 {
		b.WriteString("\nYou see " + lang.Join(items, "and") + ".")
	}
	if len(r.Exits) > 0 {
		exits := make([]string, 0, len(r.Exits))
		for e := range r.Exits {
			exits = append(exits, e)
		}
		sort.Strings(exits)
		b.WriteString("\nExits: " + strings.Join(exits, ", ") + ".")
	}
	return b.String(), nil
}

// File is the YAML form of a world.
type File struct {
	Rooms []struct {
		Name        string            `yaml:"name"`
		Title       string            `yaml:"title"`
		Description string            `yaml:"description"`
		Exits       map[string]string `yaml:"exits"`
	} `yaml:"rooms"`
	Entities []struct {
		ID          int      `yaml:"id"`
		Name        string   `yaml:"name"`
		Title       string   `yaml:"title"`
		Synonyms    []string `yaml:"synonyms"`
		Kind        string   `yaml:"kind"`
		Gender      string   `yaml:"gender"`
		Room        string   `yaml:"room"`
		Description string   `yaml:"description"`
	} `yaml:"entities"`
}

// Parse builds a world from a YAML document.
func Parse(data []byte) (*World, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	w := New()
	for _, r := range f.Rooms {
		if err := w.AddRoom(r.Name, r.Title, r.Description, r.Exits); err != nil {
			return nil, err
		}
	}
	for _, r := range w.rooms {
		for exit, dst := range r.Exits {
			if _, ok := w.rooms[dst]; !ok {
				return nil, fmt.Errorf("world: room %s exit %s: %s: %w", r.Name, exit, dst, ErrUnknownRoom)
			}
		}
	}
	for _, e := range f.Entities {
		kind, err := soul.ParseKind(e.Kind)
		if err != nil {
			return nil, fmt.Errorf("world: entity %s: %w", e.Name, err)
		}
		if kind == soul.KindExit {
			return nil, fmt.Errorf("world: entity %s: exits are declared on rooms", e.Name)
		}
		gender, err := soul.ParseGender(e.Gender)
		if err != nil {
			return nil, fmt.Errorf("world: entity %s: %w", e.Name, err)
		}
		ent := soul.Entity{
			ID:       soul.EntityID(e.ID),
			Name:     strings.ToLower(e.Name),
			Title:    e.Title,
			Synonyms: e.Synonyms,
			Kind:     kind,
			Gender:   gender,
		}
		if err := w.Add(ent, e.Room, e.Description); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Load reads a world file.
func Load(path string) (*World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	w, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return w, nil
}
