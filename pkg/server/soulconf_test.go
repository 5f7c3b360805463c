package server

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConf(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "soul.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSoulConf(t *testing.T) {
	path := writeConf(t, `
verbs_file: data/verbs.yaml
world_file: /srv/world.yaml
sql_path: scroll.db
max_input_len: 200
watch_verbs: false
`)
	sc, err := LoadSoulConf(path)
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Dir(path)
	if want := filepath.Join(dir, "data", "verbs.yaml"); sc.VerbsFile != want {
		t.Errorf("VerbsFile = %q, want %q", sc.VerbsFile, want)
	}
	if sc.WorldFile != "/srv/world.yaml" {
		t.Errorf("WorldFile = %q", sc.WorldFile)
	}
	if want := filepath.Join(dir, "scroll.db"); sc.SQLPath != want {
		t.Errorf("SQLPath = %q, want %q", sc.SQLPath, want)
	}
	if sc.BoltPath != "" {
		t.Errorf("unset BoltPath became %q", sc.BoltPath)
	}
	if sc.MaxInputLen != 200 || sc.WatchVerbs {
		t.Errorf("overrides not applied: %+v", sc)
	}
	// Defaults survive for keys the file leaves out.
	if sc.MaxCandidates != 64 || sc.ScrollbackLimit != 20 {
		t.Errorf("defaults lost: %+v", sc)
	}
}

func TestLoadSoulConfErrors(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{"max_input_len: 0", "max_input_len"},
		{"min_verb_abbrev: 0", "min_verb_abbrev"},
		{"max_candidates: -1", "max_candidates"},
		{"scrollback_limit: 0", "scrollback_limit"},
		{"max_input_len: [", "parsing YAML"},
	}
	for _, tt := range tests {
		_, err := LoadSoulConf(writeConf(t, tt.body))
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%q: err = %v, want mention of %s", tt.body, err, tt.want)
		}
	}

	if _, err := LoadSoulConf(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}
