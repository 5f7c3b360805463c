package server

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleHelp = `preamble is ignored
& look
& l
Looks around.
& lock
Locks a door.

& help
Start here.
`

func TestParseHelp(t *testing.T) {
	hf, err := ParseHelp(strings.NewReader(sampleHelp))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"help", "l", "lock", "look"}, hf.Topics()); diff != "" {
		t.Errorf("topics (-want +got):\n%s", diff)
	}

	tests := []struct {
		topic, want string
	}{
		{"look", "Looks around."},
		{"L", "Looks around."},
		{"loc", "Locks a door."},
		{"lo", "Locks a door."},
		{"", "Start here."},
		{"zebra", ""},
	}
	for _, tt := range tests {
		if got := hf.Lookup(tt.topic); got != tt.want {
			t.Errorf("Lookup(%q) = %q, want %q", tt.topic, got, tt.want)
		}
	}
}

func TestDefaultHelpCoversCommands(t *testing.T) {
	hf := DefaultHelp()
	for name := range InitCommands() {
		if hf.Lookup(name) == "" {
			t.Errorf("no help for command %q", name)
		}
	}
}
