package server

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/crystal-mush/gosoul/pkg/boltstore"
	"github.com/crystal-mush/gosoul/pkg/events"
	"github.com/crystal-mush/gosoul/pkg/soul"
	"github.com/crystal-mush/gosoul/pkg/soul/verbdata"
	"github.com/crystal-mush/gosoul/pkg/world"
	"github.com/google/go-cmp/cmp"
)

const testWorld = `
rooms:
  - name: hall
    title: The Great Hall
    exits: {gate: garden}
  - name: garden
    exits: {gate: hall}
entities:
  - {id: 1, name: julie, title: Julie, kind: player, gender: f, room: hall}
  - {id: 2, name: bob, title: Bob, kind: player, gender: m, room: hall}
  - {id: 3, name: kate, title: Kate, kind: npc, gender: f, room: hall}
  - {id: 4, name: lamp, kind: item, room: hall, description: A brass lamp.}
`

const (
	julie soul.EntityID = 1
	bob   soul.EntityID = 2
	kate  soul.EntityID = 3
)

// recorder implements events.Subscriber for testing.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Receive(ev events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) Closed() bool { return false }

// take returns and clears the recorded events.
func (r *recorder) take() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}

func texts(evs []events.Event) []string {
	var out []string
	for _, ev := range evs {
		out = append(out, ev.Text)
	}
	return out
}

type testEnv struct {
	game *Game
	subs map[soul.EntityID]*recorder
}

func newTestEnv(t *testing.T, conf *SoulConf) *testEnv {
	t.Helper()
	w, err := world.Parse([]byte(testWorld))
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	table, err := verbdata.Default().Table(soul.Options{})
	if err != nil {
		t.Fatalf("verbs: %v", err)
	}
	env := &testEnv{game: NewGame(conf, w, table), subs: make(map[soul.EntityID]*recorder)}
	for _, id := range []soul.EntityID{julie, bob, kate} {
		env.subs[id] = &recorder{}
		env.game.Bus.Subscribe(id, env.subs[id])
	}
	return env
}

func (env *testEnv) run(t *testing.T, actor soul.EntityID, input string) {
	t.Helper()
	if err := env.game.Dispatch(actor, input); err != nil {
		t.Fatalf("Dispatch(%q): %v", input, err)
	}
}

func TestDispatchSocial(t *testing.T) {
	env := newTestEnv(t, nil)
	env.run(t, julie, "smile at bob")

	want := map[soul.EntityID]string{
		julie: "You smile at Bob.",
		bob:   "Julie smiles at you.",
		kate:  "Julie smiles at Bob.",
	}
	for id, text := range want {
		evs := env.subs[id].take()
		if len(evs) != 1 {
			t.Fatalf("#%d: expected 1 event, got %+v", id, evs)
		}
		if evs[0].Type != events.EvEmote || evs[0].Text != text || evs[0].Room != "hall" {
			t.Errorf("#%d: got %+v, want %q", id, evs[0], text)
		}
	}
}

func TestDispatchPronounNotice(t *testing.T) {
	env := newTestEnv(t, nil)
	env.run(t, julie, "smile at bob")
	env.subs[julie].take()
	env.subs[bob].take()

	env.run(t, julie, "poke him")
	got := env.subs[julie].take()
	if len(got) != 2 {
		t.Fatalf("expected notice and emote, got %+v", got)
	}
	if got[0].Type != events.EvNotice || got[0].Text != "(By 'him', it is assumed you mean Bob.)" {
		t.Errorf("notice = %+v", got[0])
	}
	if got[1].Text != "You poke Bob in the ribs." {
		t.Errorf("emote = %q", got[1].Text)
	}
	if evs := env.subs[bob].take(); len(evs) != 1 || evs[0].Data["hostile"] != true {
		t.Errorf("bob got %+v", evs)
	}
	p, err := env.game.Pronouns(julie)
	if err != nil || p.He != bob {
		t.Errorf("pronouns = %+v, %v", p, err)
	}
}

func TestDispatchErrors(t *testing.T) {
	conf := DefaultSoulConf()
	conf.MaxInputLen = 40
	env := newTestEnv(t, conf)

	tests := []struct {
		input string
		kind  string
	}{
		{"xyzzy", "unknown_verb"},
		{"", "empty_input"},
		{"smile at nobody", "no_match"},
	}
	for _, tt := range tests {
		env.run(t, julie, tt.input)
		evs := env.subs[julie].take()
		if len(evs) != 1 || evs[0].Type != events.EvError || evs[0].Data["kind"] != tt.kind {
			t.Errorf("%q: got %+v, want %s", tt.input, evs, tt.kind)
		}
		if n := len(env.subs[bob].take()); n != 0 {
			t.Errorf("%q: bob saw %d events", tt.input, n)
		}
	}

	env.run(t, julie, strings.Repeat("smile ", 10))
	if evs := env.subs[julie].take(); len(evs) != 1 || evs[0].Text != "That command is too long." {
		t.Errorf("long input: %+v", evs)
	}

	if err := env.game.Dispatch(99, "smile"); err == nil {
		t.Error("unknown actor accepted")
	}
}

func TestBuiltinCommands(t *testing.T) {
	env := newTestEnv(t, nil)

	env.run(t, julie, "look")
	if diff := cmp.Diff([]string{"The Great Hall\nBob and Kate are here.\nYou see a lamp.\nExits: gate."},
		texts(env.subs[julie].take())); diff != "" {
		t.Errorf("look (-want +got):\n%s", diff)
	}

	env.run(t, julie, "look lamp")
	if diff := cmp.Diff([]string{"A brass lamp."}, texts(env.subs[julie].take())); diff != "" {
		t.Errorf("look lamp (-want +got):\n%s", diff)
	}

	env.run(t, julie, "say Hello there")
	if diff := cmp.Diff([]string{`You say "Hello there"`}, texts(env.subs[julie].take())); diff != "" {
		t.Errorf("say, self (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{`Julie says "Hello there"`}, texts(env.subs[bob].take())); diff != "" {
		t.Errorf("say, room (-want +got):\n%s", diff)
	}
	env.subs[kate].take()

	env.run(t, julie, `say "Hello there!"`)
	if diff := cmp.Diff([]string{`You say "Hello there!"`}, texts(env.subs[julie].take())); diff != "" {
		t.Errorf("quoted say, self (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{`Julie says "Hello there!"`}, texts(env.subs[bob].take())); diff != "" {
		t.Errorf("quoted say, room (-want +got):\n%s", diff)
	}
	env.subs[kate].take()

	env.run(t, julie, `pose "waves."`)
	if diff := cmp.Diff([]string{"Julie waves."}, texts(env.subs[kate].take())); diff != "" {
		t.Errorf("quoted pose (-want +got):\n%s", diff)
	}
	env.subs[julie].take()
	env.subs[bob].take()

	env.run(t, julie, "pose stretches.")
	if diff := cmp.Diff([]string{"Julie stretches."}, texts(env.subs[kate].take())); diff != "" {
		t.Errorf("pose (-want +got):\n%s", diff)
	}
	env.subs[julie].take()
	env.subs[bob].take()

	env.run(t, julie, "gate")
	if room, _ := env.game.World.RoomOf(julie); room != "garden" {
		t.Fatalf("julie is in %s", room)
	}
	if diff := cmp.Diff([]string{"Julie leaves gate."}, texts(env.subs[bob].take())); diff != "" {
		t.Errorf("leave (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Garden\nExits: gate."}, texts(env.subs[julie].take())); diff != "" {
		t.Errorf("arrival look (-want +got):\n%s", diff)
	}

	env.run(t, julie, "go north")
	if diff := cmp.Diff([]string{"You can't go that way."}, texts(env.subs[julie].take())); diff != "" {
		t.Errorf("go north (-want +got):\n%s", diff)
	}

	// Bob is no longer in the room, so he cannot be referred to.
	env.run(t, julie, "smile at bob")
	if evs := env.subs[julie].take(); len(evs) != 1 || evs[0].Type != events.EvError {
		t.Errorf("smile at absent bob: %+v", evs)
	}
}

func TestHelpCommand(t *testing.T) {
	env := newTestEnv(t, nil)

	env.run(t, julie, "help sm")
	got := texts(env.subs[julie].take())
	if len(got) != 1 || !strings.HasPrefix(got[0], "Usage:\n  smile") {
		t.Errorf("help sm = %q", got)
	}

	env.run(t, julie, "help pronouns")
	got = texts(env.subs[julie].take())
	if len(got) != 1 || !strings.Contains(got[0], "\"him\"") {
		t.Errorf("help pronouns = %q", got)
	}

	env.run(t, julie, "help")
	got = texts(env.subs[julie].take())
	if len(got) != 1 || !strings.HasPrefix(got[0], "Social commands") {
		t.Errorf("help = %q", got)
	}

	env.run(t, julie, "adverbs evi")
	got = texts(env.subs[julie].take())
	if len(got) != 1 || got[0] != "1 adverbs:\nevilly" {
		t.Errorf("adverbs evi = %q", got)
	}
}

func TestPronounsPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soul.bolt")
	store, err := boltstore.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	env := newTestEnv(t, nil)
	env.game.Store = store
	env.run(t, julie, "wave at kate")
	store.Close()

	store, err = boltstore.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	env = newTestEnv(t, nil)
	env.game.Store = store
	env.run(t, julie, "nod at her")
	got := texts(env.subs[julie].take())
	want := []string{"(By 'her', it is assumed you mean Kate.)", "You nod at Kate."}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("after reopen (-want +got):\n%s", diff)
	}
}

const reloadVocabulary = `
prepositions: [at]
adverbs: [happily]
verbs:
  - name: beam
    patterns: ["adv [at] who adv", adv]
    msg: "beam{s}[ {how}][ at {who}]"
`

func TestReloadVerbs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verbs.yaml")
	if err := os.WriteFile(path, []byte(reloadVocabulary), 0644); err != nil {
		t.Fatal(err)
	}
	conf := DefaultSoulConf()
	conf.VerbsFile = path
	env := newTestEnv(t, conf)
	env.game.AttachMetrics(NewMetrics(time.Now()))

	if err := env.game.ReloadVerbs(); err != nil {
		t.Fatal(err)
	}
	env.run(t, julie, "beam at bob")
	if diff := cmp.Diff([]string{"You beam at Bob."}, texts(env.subs[julie].take())); diff != "" {
		t.Errorf("beam (-want +got):\n%s", diff)
	}

	if err := os.WriteFile(path, []byte("verbs: [{name: broken}]"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := env.game.ReloadVerbs(); err == nil {
		t.Fatal("broken vocabulary accepted")
	}
	if _, ok := env.game.Soul().Table().Verb("beam"); !ok {
		t.Error("failed reload replaced the table")
	}
}
