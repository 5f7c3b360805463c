package server

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/crystal-mush/gosoul/pkg/events"
	"github.com/google/go-cmp/cmp"
)

func openTestSQL(t *testing.T) *SQLStore {
	t.Helper()
	db, err := OpenSQLStore(filepath.Join(t.TempDir(), "scrollback.db"), 1)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestScrollbackWriter(t *testing.T) {
	env := newTestEnv(t, nil)
	db := openTestSQL(t)
	sw, err := NewScrollbackWriter(db, env.game.Bus)
	if err != nil {
		t.Fatal(err)
	}
	env.game.SQLDB = db

	env.run(t, julie, "smile at bob")
	env.run(t, julie, "xyzzy")

	hist, err := env.game.History(julie, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 1 || hist[0].Kind != "error" || hist[0].Source != julie {
		t.Errorf("julie's last line = %+v", hist)
	}

	env.run(t, bob, "nod")

	hist, err = env.game.History(bob, 0)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, e := range hist {
		got = append(got, e.Kind+": "+e.Text)
	}
	want := []string{"emote: Julie smiles at you.", "emote: You nod."}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("bob's history (-want +got):\n%s", diff)
	}

	// A bystander's emote lands in julie's scrollback too.
	hist, err = env.game.History(julie, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 1 || hist[0].Text != "Bob nods." || hist[0].Source != bob {
		t.Errorf("julie's last line after bob's nod = %+v", hist)
	}

	before, _ := env.game.History(julie, 0)
	sw.Close()
	env.run(t, julie, "smile")
	if after, _ := env.game.History(julie, 0); len(after) != len(before) {
		t.Errorf("closed writer still stored: %d rows, had %d", len(after), len(before))
	}
}

func TestPurgeOldScrollback(t *testing.T) {
	db := openTestSQL(t)
	if err := db.InitScrollbackTables(); err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	ev := events.Event{Type: events.EvText, Observer: julie, Source: bob, Room: "hall", Text: "Bob waves."}
	if err := db.InsertScrollback(ev, now.Add(-2*time.Hour)); err != nil {
		t.Fatal(err)
	}
	ev.Text = "Bob grins."
	if err := db.InsertScrollback(ev, now); err != nil {
		t.Fatal(err)
	}

	n, err := db.PurgeOldScrollback(time.Hour, now)
	if err != nil || n != 1 {
		t.Fatalf("purged %d, %v", n, err)
	}
	hist, err := db.History(julie, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 1 || hist[0].Text != "Bob grins." {
		t.Errorf("remaining = %+v", hist)
	}
}

func TestHistoryWithoutStore(t *testing.T) {
	env := newTestEnv(t, nil)
	if _, err := env.game.History(julie, 5); err == nil {
		t.Error("History without a database succeeded")
	}
}
