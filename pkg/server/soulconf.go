package server

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SoulConf holds engine configuration.
type SoulConf struct {
	// --- Data files ---
	VerbsFile string `yaml:"verbs_file"` // empty means the built-in vocabulary
	WorldFile string `yaml:"world_file"`
	HelpFile  string `yaml:"help_file"` // empty means the built-in help

	// --- Storage ---
	BoltPath            string `yaml:"bolt_path"`            // pronoun sessions; empty keeps them in memory
	SQLPath             string `yaml:"sql_path"`             // scrollback; empty disables it
	SQLTimeout          int    `yaml:"sql_timeout"`          // seconds
	ScrollbackRetention int    `yaml:"scrollback_retention"` // seconds
	ScrollbackLimit     int    `yaml:"scrollback_limit"`     // rows returned by /history
	PronounRetention    int    `yaml:"pronoun_retention"`    // seconds; 0 keeps pronoun state forever

	// --- Parser limits ---
	MaxInputLen   int `yaml:"max_input_len"`
	MaxCandidates int `yaml:"max_candidates"`
	MinVerbAbbrev int `yaml:"min_verb_abbrev"`

	// --- Runtime ---
	WatchVerbs  bool   `yaml:"watch_verbs"`
	MetricsAddr string `yaml:"metrics_addr"` // empty disables the listener
}

// DefaultSoulConf returns sensible defaults.
func DefaultSoulConf() *SoulConf {
	return &SoulConf{
		SQLTimeout:          5,
		ScrollbackRetention: 86400,
		ScrollbackLimit:     20,
		MaxInputLen:         512,
		MaxCandidates:       64,
		MinVerbAbbrev:       1,
		WatchVerbs:          true,
	}
}

// LoadSoulConf reads a YAML config file over the defaults. Relative data
// file paths are resolved against the directory of the config file.
func LoadSoulConf(path string) (*SoulConf, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	sc := DefaultSoulConf()
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("parsing YAML %s: %w", path, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	baseDir := filepath.Dir(path)
	for _, p := range []*string{&sc.VerbsFile, &sc.WorldFile, &sc.HelpFile, &sc.BoltPath, &sc.SQLPath} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(baseDir, *p)
		}
	}
	return sc, nil
}

// Validate rejects settings the engine cannot run with.
func (sc *SoulConf) Validate() error {
	switch {
	case sc.MaxInputLen <= 0:
		return fmt.Errorf("max_input_len must be positive, got %d", sc.MaxInputLen)
	case sc.MaxCandidates < 0:
		return fmt.Errorf("max_candidates must not be negative, got %d", sc.MaxCandidates)
	case sc.MinVerbAbbrev < 1:
		return fmt.Errorf("min_verb_abbrev must be at least 1, got %d", sc.MinVerbAbbrev)
	case sc.ScrollbackLimit < 1:
		return fmt.Errorf("scrollback_limit must be at least 1, got %d", sc.ScrollbackLimit)
	}
	return nil
}
