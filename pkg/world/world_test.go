package world

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/crystal-mush/gosoul/pkg/soul"
	"github.com/google/go-cmp/cmp"
)

const testWorld = `
rooms:
  - name: hall
    title: The Great Hall
    description: A draughty hall.
    exits: {gate: garden, north: garden}
  - name: garden
    exits: {south: hall}
entities:
  - {id: 1, name: julie, title: Julie, kind: player, gender: f, room: hall}
  - {id: 2, name: bob, title: Bob, kind: player, gender: m, room: hall}
  - {id: 3, name: key, kind: item, room: hall}
  - {id: 4, name: key, kind: item, room: hall}
  - {id: 5, name: kate, title: Kate, synonyms: [katie], kind: npc, gender: f, room: hall}
  - {id: 6, name: brown bird, kind: npc, room: garden}
`

func parseTest(t *testing.T) *World {
	t.Helper()
	w, err := Parse([]byte(testWorld))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return w
}

func candidateIDs(ctx *soul.Context) []soul.EntityID {
	var ids []soul.EntityID
	for _, e := range ctx.Candidates {
		if e.Kind != soul.KindExit {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

func TestSnapshotOrder(t *testing.T) {
	w := parseTest(t)
	ctx, err := w.Snapshot(2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if ctx.Actor.Name != "bob" {
		t.Errorf("actor = %+v", ctx.Actor)
	}
	// Actor first, then livings, then items.
	if diff := cmp.Diff([]soul.EntityID{2, 1, 5, 3, 4}, candidateIDs(ctx)); diff != "" {
		t.Errorf("candidates (-want +got):\n%s", diff)
	}
	if !ctx.External["gate"] || !ctx.External["north"] || ctx.External["south"] {
		t.Errorf("external = %v", ctx.External)
	}
	if n := len(ctx.Candidates); n != 7 {
		t.Errorf("expected 2 exits among %d candidates", n)
	}
}

func TestSnapshotLimit(t *testing.T) {
	w := parseTest(t)
	ctx, err := w.Snapshot(1, 3)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]soul.EntityID{1, 2, 5}, candidateIDs(ctx)); diff != "" {
		t.Errorf("candidates (-want +got):\n%s", diff)
	}
	if _, err := w.Snapshot(99, 0); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("unknown actor: %v", err)
	}
}

func TestMoveAndOccupants(t *testing.T) {
	w := parseTest(t)
	if diff := cmp.Diff([]soul.EntityID{1, 2, 5}, w.Occupants("hall")); diff != "" {
		t.Errorf("hall (-want +got):\n%s", diff)
	}
	dst, err := w.Go(2, "gate")
	if err != nil || dst != "garden" {
		t.Fatalf("Go = %q, %v", dst, err)
	}
	if diff := cmp.Diff([]soul.EntityID{6, 2}, w.Occupants("garden")); diff != "" {
		t.Errorf("garden (-want +got):\n%s", diff)
	}
	if _, err := w.Go(2, "up"); !errors.Is(err, ErrNoExit) {
		t.Errorf("Go up: %v", err)
	}
	if err := w.Move(2, "cellar"); !errors.Is(err, ErrUnknownRoom) {
		t.Errorf("Move to cellar: %v", err)
	}
	if err := w.Remove(6); err != nil {
		t.Fatal(err)
	}
	if room, ok := w.RoomOf(6); ok {
		t.Errorf("removed entity still in %s", room)
	}
}

func TestFind(t *testing.T) {
	w := parseTest(t)
	if e, ok := w.Find("Kate"); !ok || e.ID != 5 {
		t.Errorf("Find(Kate) = %+v, %v", e, ok)
	}
	if e, ok := w.Find("key"); !ok || e.ID != 3 {
		t.Errorf("Find(key) = %+v, %v", e, ok)
	}
	if _, ok := w.Find("gate"); ok {
		t.Error("exits must not be found as actors")
	}
}

func TestDescribe(t *testing.T) {
	w := parseTest(t)
	got, err := w.Describe("hall", 1)
	if err != nil {
		t.Fatal(err)
	}
	want := "The Great Hall\nA draughty hall.\nBob and Kate are here.\nYou see two keys.\nExits: gate, north."
	if got != want {
		t.Errorf("Describe:\n%s\nwant:\n%s", got, want)
	}
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"bad exit":    "rooms: [{name: hall, exits: {north: nowhere}}]",
		"bad room":    "rooms: [{name: hall}]\nentities: [{id: 1, name: x, kind: npc, room: cellar}]",
		"bad kind":    "rooms: [{name: hall}]\nentities: [{id: 1, name: x, kind: dragon, room: hall}]",
		"exit entity": "rooms: [{name: hall}]\nentities: [{id: 1, name: x, kind: exit, room: hall}]",
		"dup id":      "rooms: [{name: hall}]\nentities: [{id: 1, name: x, kind: npc, room: hall}, {id: 1, name: y, kind: npc, room: hall}]",
	}
	for name, src := range tests {
		if _, err := Parse([]byte(src)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}

func TestExamine(t *testing.T) {
	w := parseTest(t)
	tests := []struct {
		id   soul.EntityID
		want string
	}{
		{2, "You see nothing special about Bob."},
		{3, "You see nothing special about the key."},
	}
	for _, tt := range tests {
		got, err := w.Examine(tt.id)
		if err != nil || got != tt.want {
			t.Errorf("Examine(%d) = %q, %v; want %q", tt.id, got, err, tt.want)
		}
	}
	ctx, _ := w.Snapshot(1, 0)
	for _, e := range ctx.Candidates {
		if e.Kind == soul.KindExit && e.Name == "gate" {
			if got, _ := w.Examine(e.ID); got != "It leads to Garden." {
				t.Errorf("Examine(gate) = %q", got)
			}
		}
	}
	if _, err := w.Examine(42); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("Examine(42): %v", err)
	}
}
