package validate

import (
	"fmt"
	"strings"

	"github.com/crystal-mush/gosoul/pkg/soul"
	"github.com/crystal-mush/gosoul/pkg/soul/verbdata"
)

// ReachChecker reports verbs that no abbreviation reaches first. Such a
// verb only works when typed in full because an earlier verb claims every
// shorter prefix.
type ReachChecker struct{}

func (c *ReachChecker) Name() string { return "reach" }

func (c *ReachChecker) Check(f *verbdata.File, t *soul.Table) []Finding {
	if t == nil {
		return nil
	}
	var findings []Finding
	for _, v := range t.Verbs() {
		if len(v.Name) < 2 {
			continue
		}
		if _, ok := Shortest(t, v); ok {
			continue
		}
		desc := fmt.Sprintf("%s: every abbreviation resolves to another verb", v.Name)
		if cands := t.VerbCandidates(v.Name[:len(v.Name)-1]); len(cands) > 0 {
			first := cands[0].Name
			desc = fmt.Sprintf("%s: every abbreviation resolves to another verb (%q goes to %s)",
				v.Name, v.Name[:len(v.Name)-1], first)
		}
		findings = append(findings, Finding{
			Category:    CatReach,
			Severity:    SevInfo,
			Verb:        v.Name,
			Line:        f.VerbLine(v.Name),
			Description: desc,
			Effect:      "must be typed in full",
		})
	}
	return findings
}

// Shortest returns the shortest proper prefix of a name or synonym of v that
// selects v ahead of every other verb.
func Shortest(t *soul.Table, v *soul.Verb) (string, bool) {
	best := ""
	for _, name := range append([]string{v.Name}, v.Synonyms...) {
		for n := 1; n < len(name); n++ {
			if best != "" && n >= len(best) {
				break
			}
			cands := t.VerbCandidates(name[:n])
			if len(cands) > 0 && cands[0] == v {
				best = name[:n]
				break
			}
		}
	}
	return best, best != ""
}

// OverlapChecker reports words that are complete entries in more than one
// abbreviable category, and verbs named like a qualifier. Position decides
// the reading of an overlapping word, so these are informational; a
// qualifier shadows a verb of the same name whenever more words follow.
type OverlapChecker struct{}

func (c *OverlapChecker) Name() string { return "overlap" }

var overlapCategories = []soul.Category{soul.CatVerb, soul.CatAdverb, soul.CatBodypart, soul.CatDirection}

func (c *OverlapChecker) Check(f *verbdata.File, t *soul.Table) []Finding {
	if t == nil {
		return nil
	}
	var findings []Finding
	lex := t.Lexicon()
	seen := make(map[string]bool)
	for _, cat := range overlapCategories {
		for _, w := range lex.Words(cat) {
			if seen[w] {
				continue
			}
			seen[w] = true
			var names []string
			exact := lex.Classify(w).Exact
			for _, oc := range overlapCategories {
				if exact.Has(oc) {
					names = append(names, oc.String())
				}
			}
			if len(names) < 2 {
				continue
			}
			findings = append(findings, Finding{
				Category:    CatOverlap,
				Severity:    SevInfo,
				Word:        w,
				Description: fmt.Sprintf("%q is a %s", w, strings.Join(names, " and a ")),
			})
		}
	}
	for _, v := range t.Verbs() {
		for _, w := range append([]string{v.Name}, v.Synonyms...) {
			if _, ok := t.Qualifier(w); !ok {
				continue
			}
			findings = append(findings, Finding{
				Category:    CatOverlap,
				Severity:    SevWarning,
				Verb:        v.Name,
				Line:        f.VerbLine(v.Name),
				Word:        w,
				Description: fmt.Sprintf("%s: %q is also a qualifier and only works as a verb on its own", v.Name, w),
			})
		}
	}
	return findings
}
