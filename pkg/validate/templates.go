package validate

import (
	"fmt"

	"github.com/crystal-mush/gosoul/pkg/soul"
	"github.com/crystal-mush/gosoul/pkg/soul/verbdata"
)

// UnrenderedChecker detects pattern arguments that none of the pattern's
// templates print. The command parses, but what the player typed is
// silently lost ("poke bob" rendering as "You poke.").
type UnrenderedChecker struct{}

func (c *UnrenderedChecker) Name() string { return "unrendered" }

func (c *UnrenderedChecker) Check(f *verbdata.File, t *soul.Table) []Finding {
	if t == nil {
		return nil
	}
	var findings []Finding
	for _, v := range t.Verbs() {
		line := f.VerbLine(v.Name)
		for _, p := range v.Patterns {
			for _, e := range p.Elems {
				names, word := placeholders(e)
				if len(names) == 0 || rendersAny(p, names) {
					continue
				}
				findings = append(findings, Finding{
					Category:    CatUnrendered,
					Severity:    SevWarning,
					Verb:        v.Name,
					Line:        line,
					Word:        word,
					Description: fmt.Sprintf("%s: %q in pattern %q is never rendered; use {%s}", v.Name, word, p.Source, names[0]),
					Current:     truncate(p.Source, 200),
					CurrentHL:   wordSpan(p.Source, word),
				})
			}
		}

		defaults := []struct {
			set   string
			what  string
			names []string
		}{
			{v.DefaultAdverb, "default adverb", []string{"how"}},
			{v.DefaultBodypart, "default bodypart", []string{"where", "part"}},
			{v.DefaultMessage, "default message", []string{"msg", "text"}},
		}
		for _, d := range defaults {
			if d.set == "" || anyPattern(v, d.names) {
				continue
			}
			findings = append(findings, Finding{
				Category:    CatUnrendered,
				Severity:    SevWarning,
				Verb:        v.Name,
				Line:        line,
				Word:        d.set,
				Description: fmt.Sprintf("%s: %s %q is never rendered; use {%s}", v.Name, d.what, d.set, d.names[0]),
			})
		}
	}
	return findings
}

// placeholders returns the template names that print element e, and the
// word e is written as in pattern sources.
func placeholders(e soul.Elem) ([]string, string) {
	switch e.Kind {
	case soul.ElemAdverb:
		return []string{"how"}, "adv"
	case soul.ElemBodypart:
		return []string{"where", "part"}, "part"
	case soul.ElemDirection:
		return []string{"dir", "how"}, "dir"
	case soul.ElemTarget:
		word := "who"
		if e.Filter == soul.FilterItem {
			word = "what"
		}
		if e.Role == soul.RoleIndirect {
			return []string{"whom", "t2"}, word
		}
		return []string{"who", "t1"}, word
	case soul.ElemText:
		return []string{"msg", "text"}, "text"
	case soul.ElemAnchor:
		return nil, e.Word
	}
	return nil, ""
}

func rendersAny(p *soul.Pattern, names []string) bool {
	for _, n := range names {
		if p.Renders(n) {
			return true
		}
	}
	return false
}

func anyPattern(v *soul.Verb, names []string) bool {
	for _, p := range v.Patterns {
		if rendersAny(p, names) {
			return true
		}
	}
	return false
}
