package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchVerbs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verbs.yaml")
	if err := os.WriteFile(path, []byte(reloadVocabulary), 0644); err != nil {
		t.Fatal(err)
	}
	conf := DefaultSoulConf()
	conf.VerbsFile = path
	env := newTestEnv(t, conf)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reloads := make(chan error, 4)
	if err := env.game.WatchVerbs(ctx, func(err error) { reloads <- err }); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte(reloadVocabulary), 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-reloads:
		if err != nil {
			t.Fatalf("reload: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after the file changed")
	}
	if _, ok := env.game.Soul().Table().Verb("beam"); !ok {
		t.Error("watched reload did not install the new table")
	}

	// Other files in the directory are ignored.
	if err := os.WriteFile(filepath.Join(filepath.Dir(path), "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-reloads:
		t.Errorf("unrelated write triggered a reload (%v)", err)
	case <-time.After(3 * reloadDelay):
	}
}

func TestWatchVerbsNeedsFile(t *testing.T) {
	env := newTestEnv(t, nil)
	if err := env.game.WatchVerbs(context.Background(), nil); err == nil {
		t.Error("watching the built-in vocabulary succeeded")
	}
}
