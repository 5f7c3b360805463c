package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/crystal-mush/gosoul/pkg/soul"
	"github.com/crystal-mush/gosoul/pkg/soul/verbdata"
)

// DuplicateChecker finds words declared more than once. Repeated adverbs,
// bodyparts and prepositions are fixable by keeping the first declaration;
// a verb name or synonym claimed by two verbs needs a human.
type DuplicateChecker struct{}

func (c *DuplicateChecker) Name() string { return "duplicate" }

func (c *DuplicateChecker) Check(f *verbdata.File, _ *soul.Table) []Finding {
	var findings []Finding

	words := func(kind string, sev Severity, list []string, dedupe func(word string)) {
		seen := make(map[string]bool)
		reported := make(map[string]bool)
		for _, w := range list {
			w = norm(w)
			if !seen[w] {
				seen[w] = true
				continue
			}
			if reported[w] {
				continue
			}
			reported[w] = true
			word := w
			findings = append(findings, Finding{
				Category:    CatDuplicate,
				Severity:    sev,
				Word:        word,
				Description: fmt.Sprintf("%s %q is declared more than once", kind, word),
				Effect:      "later declarations are dropped",
				Fixable:     true,
				fixFunc:     func() { dedupe(word) },
			})
		}
	}

	words("adverb", SevError, f.Adverbs, func(w string) { f.Adverbs = keepFirst(f.Adverbs, w) })
	// Repeated prepositions still load.
	words("preposition", SevWarning, f.Prepositions, func(w string) { f.Prepositions = keepFirst(f.Prepositions, w) })
	parts := make([]string, len(f.Bodyparts))
	for i, b := range f.Bodyparts {
		parts[i] = b.Name
	}
	words("bodypart", SevError, parts, func(w string) {
		out := f.Bodyparts[:0:0]
		seen := false
		for _, b := range f.Bodyparts {
			if norm(b.Name) == w {
				if seen {
					continue
				}
				seen = true
			}
			out = append(out, b)
		}
		f.Bodyparts = out
	})

	owner := make(map[string]string)
	for _, v := range f.Verbs {
		name := norm(v.Name)
		for _, w := range append([]string{v.Name}, v.Synonyms...) {
			w = norm(w)
			if w == "" {
				continue
			}
			prev, dup := owner[w]
			if !dup {
				owner[w] = name
				continue
			}
			findings = append(findings, Finding{
				Category:    CatDuplicate,
				Severity:    SevError,
				Verb:        name,
				Line:        v.Line,
				Word:        w,
				Description: fmt.Sprintf("verb %q reuses %q, already taken by %q", name, w, prev),
			})
		}
	}
	return findings
}

// keepFirst drops every occurrence of word after the first.
func keepFirst(list []string, word string) []string {
	out := list[:0:0]
	seen := false
	for _, w := range list {
		if norm(w) == word {
			if seen {
				continue
			}
			seen = true
		}
		out = append(out, w)
	}
	return out
}

func invalidDefinition(err error) (*soul.InvalidVerbDefinitionError, bool) {
	var inv *soul.InvalidVerbDefinitionError
	if errors.As(err, &inv) {
		return inv, true
	}
	return nil, false
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
