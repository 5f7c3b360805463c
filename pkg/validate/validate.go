// Package validate lints soul vocabulary files. It detects definitions that
// load but misbehave (patterns whose arguments never reach a message, verbs
// that cannot be abbreviated, unused words) and definition errors that stop
// the table from loading, with optional auto-fix support for the simple ones.
package validate

import (
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/crystal-mush/gosoul/pkg/soul"
	"github.com/crystal-mush/gosoul/pkg/soul/verbdata"
)

// Category classifies the type of finding.
type Category int

const (
	CatInvalid    Category = iota // Table does not build
	CatDuplicate                  // Word declared twice
	CatUnrendered                 // Pattern argument missing from its messages
	CatReach                      // Verb only reachable by its full name
	CatOverlap                    // Word in several abbreviable categories
	CatUnused                     // Declared word nothing refers to
)

func (c Category) String() string {
	switch c {
	case CatInvalid:
		return "invalid"
	case CatDuplicate:
		return "duplicate"
	case CatUnrendered:
		return "unrendered"
	case CatReach:
		return "reach"
	case CatOverlap:
		return "overlap"
	case CatUnused:
		return "unused"
	default:
		return "unknown"
	}
}

// Severity indicates how serious a finding is.
type Severity int

const (
	SevError   Severity = iota // Vocabulary cannot be loaded
	SevWarning                 // Should be reviewed
	SevInfo                    // Informational only
)

func (s Severity) String() string {
	switch s {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	case SevInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalText lets reports carry readable names.
func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Highlight marks a byte range in Current that should be visually emphasized.
type Highlight struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Finding is a single issue detected in a vocabulary.
type Finding struct {
	ID          string      `json:"id"`
	Category    Category    `json:"category"`
	Severity    Severity    `json:"severity"`
	Verb        string      `json:"verb,omitempty"`
	Line        int         `json:"line,omitempty"`
	Word        string      `json:"word,omitempty"`
	Description string      `json:"description"`
	Current     string      `json:"current,omitempty"`
	CurrentHL   []Highlight `json:"current_hl,omitempty"`
	Effect      string      `json:"effect,omitempty"`
	Fixable     bool        `json:"fixable"`
	Fixed       bool        `json:"fixed"`
	fixFunc     func()
}

// Checker is the interface that each lint check implements. t is nil when
// the vocabulary does not build; checkers that need the table skip then.
type Checker interface {
	Name() string
	Check(f *verbdata.File, t *soul.Table) []Finding
}

// Validator runs all checkers against a vocabulary file.
type Validator struct {
	file     *verbdata.File
	opts     soul.Options
	table    *soul.Table
	checkers []Checker
	findings []Finding
	idSeq    atomic.Int64
}

// New creates a Validator with all built-in checkers registered.
func New(f *verbdata.File, opts soul.Options) *Validator {
	return &Validator{
		file: f,
		opts: opts,
		checkers: []Checker{
			&DuplicateChecker{},
			&UnrenderedChecker{},
			&ReachChecker{},
			&OverlapChecker{},
			&UnusedChecker{},
		},
	}
}

// Run builds the table and executes all checkers. Findings are sorted by
// source line, then by severity.
func (v *Validator) Run() []Finding {
	v.findings = nil
	v.table = nil
	t, err := v.file.Table(v.opts)
	if err != nil {
		f := Finding{
			Category:    CatInvalid,
			Severity:    SevError,
			Description: err.Error(),
		}
		if inv, ok := invalidDefinition(err); ok {
			f.Verb = inv.Verb
			f.Line = v.file.VerbLine(inv.Verb)
			f.Current = inv.Pattern
		}
		v.findings = append(v.findings, f)
	} else {
		v.table = t
	}
	for _, c := range v.checkers {
		for _, f := range c.Check(v.file, v.table) {
			if f.ID == "" {
				f.ID = fmt.Sprintf("%s-%d", c.Name(), v.idSeq.Add(1))
			}
			v.findings = append(v.findings, f)
		}
	}
	for i := range v.findings {
		if v.findings[i].ID == "" {
			v.findings[i].ID = fmt.Sprintf("table-%d", v.idSeq.Add(1))
		}
	}
	sort.SliceStable(v.findings, func(i, j int) bool {
		if v.findings[i].Line != v.findings[j].Line {
			return v.findings[i].Line < v.findings[j].Line
		}
		return v.findings[i].Severity < v.findings[j].Severity
	})
	return v.findings
}

// Table returns the table built by the last Run, or nil if it failed.
func (v *Validator) Table() *soul.Table { return v.table }

// Findings returns the current findings (after Run has been called).
func (v *Validator) Findings() []Finding {
	return v.findings
}

// ApplyFix applies a single fix by finding ID. Returns error if not found or not fixable.
func (v *Validator) ApplyFix(id string) error {
	for i := range v.findings {
		if v.findings[i].ID == id {
			if !v.findings[i].Fixable {
				return fmt.Errorf("finding %s is not fixable", id)
			}
			if v.findings[i].Fixed {
				return fmt.Errorf("finding %s is already fixed", id)
			}
			if v.findings[i].fixFunc != nil {
				v.findings[i].fixFunc()
				v.findings[i].Fixed = true
			}
			return nil
		}
	}
	return fmt.Errorf("finding %s not found", id)
}

// ApplyAll applies all fixable findings in the given category. Returns count of fixes applied.
func (v *Validator) ApplyAll(cat Category) int {
	count := 0
	for i := range v.findings {
		f := &v.findings[i]
		if f.Category == cat && f.Fixable && !f.Fixed && f.fixFunc != nil {
			f.fixFunc()
			f.Fixed = true
			count++
		}
	}
	return count
}

// Summary returns counts of findings per category.
func (v *Validator) Summary() map[Category]int {
	m := make(map[Category]int)
	for _, f := range v.findings {
		m[f.Category]++
	}
	return m
}

// Errors returns the number of unfixed error findings.
func (v *Validator) Errors() int {
	n := 0
	for _, f := range v.findings {
		if f.Severity == SevError && !f.Fixed {
			n++
		}
	}
	return n
}

// truncate returns at most max characters of s, adding "..." if truncated.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// wordSpan returns the highlight of the first whole-word occurrence of word
// in s.
func wordSpan(s, word string) []Highlight {
	for i := 0; i+len(word) <= len(s); i++ {
		if s[i:i+len(word)] != word {
			continue
		}
		before := i == 0 || !isWordByte(s[i-1])
		after := i+len(word) == len(s) || !isWordByte(s[i+len(word)])
		if before && after {
			return []Highlight{{Start: i, End: i + len(word)}}
		}
	}
	return nil
}

func isWordByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
