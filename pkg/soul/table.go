package soul

import (
	"errors"
	"sort"
	"strings"
)

// Verb is a validated social verb.
type Verb struct {
	Name            string
	Synonyms        []string
	Patterns        []*Pattern
	DefaultAdverb   string
	DefaultBodypart string
	DefaultMessage  string
	Hostile         bool
	RequiresTarget  bool
	AllowsAdverb    bool
	AllowsBodypart  bool
	order           int
}

// Usage lists the accepted forms, one per pattern.
func (v *Verb) Usage() []string {
	out := make([]string, len(v.Patterns))
	for i, p := range v.Patterns {
		out[i] = p.Usage(v.Name)
	}
	return out
}

// Qualifier is a validated qualifier ("fail", "don't").
type Qualifier struct {
	Name    string
	Inflect bool
	self    *template
	others  *template
}

type templateSet struct {
	self   *template
	target *template
	others *template
}

// Options tune table construction.
type Options struct {
	// MinVerbAbbrev is the shortest verb abbreviation accepted. Values
	// below 1 mean 1.
	MinVerbAbbrev int
}

// Table is the immutable verb table and lexicon. Build it once with
// NewTable and share it between goroutines.
type Table struct {
	lex    *Lexicon
	verbs  []*Verb
	byName map[string]*Verb
	quals  map[string]*Qualifier
	preps  map[string]bool
}

// NewTable validates v and builds the table. Any integrity problem is an
// *InvalidVerbDefinitionError.
func NewTable(v *Vocabulary, opts Options) (*Table, error) {
	t := &Table{
		lex:    newLexicon(opts.MinVerbAbbrev),
		byName: make(map[string]*Verb),
		quals:  make(map[string]*Qualifier),
		preps:  make(map[string]bool),
	}
	invalid := func(verb, pattern, reason string) error {
		return &InvalidVerbDefinitionError{Verb: verb, Pattern: pattern, Reason: reason}
	}

	for _, p := range v.Prepositions {
		p = norm(p)
		if p == "" || strings.Contains(p, " ") {
			return nil, invalid("", "", "bad preposition "+quote(p))
		}
		t.preps[p] = true
		t.lex.add(Entry{Word: p, Category: CatPreposition, Canonical: p})
	}
	for _, a := range v.Adverbs {
		a = norm(a)
		if a == "" || strings.Contains(a, " ") {
			return nil, invalid("", "", "bad adverb "+quote(a))
		}
		if !t.lex.add(Entry{Word: a, Category: CatAdverb, Canonical: a, Fills: map[string]string{FillHow: a}}) {
			return nil, invalid("", "", "duplicate adverb "+quote(a))
		}
	}
	for _, b := range v.Bodyparts {
		name := norm(b.Name)
		if name == "" || strings.Contains(name, " ") {
			return nil, invalid("", "", "bad bodypart "+quote(name))
		}
		phrase := strings.TrimSpace(b.Phrase)
		if phrase == "" {
			phrase = "on the " + name
		}
		if !t.lex.add(Entry{Word: name, Category: CatBodypart, Canonical: name,
			Fills: map[string]string{FillWhere: phrase, FillPart: name}}) {
			return nil, invalid("", "", "duplicate bodypart "+quote(name))
		}
	}
	for _, d := range v.Directions {
		name := norm(d.Name)
		if name == "" {
			return nil, invalid("", "", "direction without a name")
		}
		fills := map[string]string{FillHow: d.Adverb, FillDir: d.Phrase}
		if fills[FillHow] == "" {
			fills[FillHow] = name + "wards"
		}
		if fills[FillDir] == "" {
			fills[FillDir] = "to the " + name
		}
		for _, w := range append([]string{name}, d.Aliases...) {
			if !t.lex.add(Entry{Word: norm(w), Category: CatDirection, Canonical: name, Fills: fills}) {
				return nil, invalid("", "", "duplicate direction "+quote(w))
			}
		}
	}
	for _, q := range v.Qualifiers {
		name := norm(q.Name)
		self, err := compileTemplate(q.Self, true)
		if err != nil {
			return nil, invalid("", "", "qualifier "+quote(name)+": "+err.Error())
		}
		others, err := compileTemplate(q.Others, true)
		if err != nil {
			return nil, invalid("", "", "qualifier "+quote(name)+": "+err.Error())
		}
		if !self.uses("action") || !others.uses("action") {
			return nil, invalid("", "", "qualifier "+quote(name)+" must use {action}")
		}
		qual := &Qualifier{Name: name, Inflect: q.Inflect, self: self, others: others}
		for _, w := range append([]string{name}, q.Aliases...) {
			w = norm(w)
			t.quals[w] = qual
			t.lex.add(Entry{Word: w, Category: CatQualifier, Canonical: name})
		}
	}

	for i, spec := range v.Verbs {
		verb, err := t.compileVerb(spec, i)
		if err != nil {
			return nil, err
		}
		for _, w := range append([]string{verb.Name}, verb.Synonyms...) {
			if _, dup := t.byName[w]; dup {
				return nil, invalid(verb.Name, "", "duplicate verb name "+quote(w))
			}
			t.byName[w] = verb
			t.lex.add(Entry{Word: w, Category: CatVerb, Canonical: verb.Name})
		}
		t.verbs = append(t.verbs, verb)
	}
	t.lex.finish()
	return t, nil
}

func (t *Table) compileVerb(spec VerbSpec, order int) (*Verb, error) {
	name := norm(spec.Name)
	invalid := func(pattern, reason string) error {
		return &InvalidVerbDefinitionError{Verb: name, Pattern: pattern, Reason: reason}
	}
	if name == "" || strings.Contains(name, " ") {
		return nil, invalid("", "bad verb name")
	}
	if len(spec.Patterns) == 0 {
		return nil, invalid("", "no patterns")
	}
	verb := &Verb{
		Name:           name,
		DefaultMessage: spec.Message,
		Hostile:        spec.Hostile,
		RequiresTarget: true,
		order:          order,
	}
	for _, s := range spec.Synonyms {
		if s = norm(s); s != "" {
			verb.Synonyms = append(verb.Synonyms, s)
		}
	}
	if spec.Adverb != "" {
		if _, ok := t.lex.Lookup(norm(spec.Adverb), CatAdverb); !ok {
			return nil, invalid("", "default adverb "+quote(spec.Adverb)+" is not an adverb")
		}
		verb.DefaultAdverb = norm(spec.Adverb)
	}
	if spec.Bodypart != "" {
		if _, ok := t.lex.Lookup(norm(spec.Bodypart), CatBodypart); !ok {
			return nil, invalid("", "default bodypart "+quote(spec.Bodypart)+" is not a bodypart")
		}
		verb.DefaultBodypart = norm(spec.Bodypart)
	}
	for _, ps := range spec.Patterns {
		p, err := compilePattern(ps.Pattern, t.preps)
		if err != nil {
			return nil, invalid(ps.Pattern, err.Error())
		}
		merged := spec.Templates
		if !ps.Templates.empty() {
			if ps.Templates.Msg != "" {
				merged = Templates{Msg: ps.Templates.Msg}
			}
			if ps.Templates.Self != "" {
				merged.Self = ps.Templates.Self
			}
			if ps.Templates.Target != "" {
				merged.Target = ps.Templates.Target
			}
			if ps.Templates.Others != "" {
				merged.Others = ps.Templates.Others
			}
		}
		tpl, err := buildTemplates(merged)
		if err != nil {
			return nil, invalid(ps.Pattern, err.Error())
		}
		p.tpl = tpl
		verb.Patterns = append(verb.Patterns, p)
		if p.Targets() == 0 {
			verb.RequiresTarget = false
		}
		if p.Has(ElemAdverb) {
			verb.AllowsAdverb = true
		}
		if p.Has(ElemBodypart) {
			verb.AllowsBodypart = true
		}
	}
	return verb, nil
}

func buildTemplates(t Templates) (templateSet, error) {
	self := firstNonEmpty(t.Self, t.Msg)
	target := firstNonEmpty(t.Target, t.Others, t.Msg)
	others := firstNonEmpty(t.Others, t.Msg)
	if self == "" || others == "" {
		return templateSet{}, errMissingTemplate
	}
	var set templateSet
	var err error
	if set.self, err = compileTemplate(self, false); err != nil {
		return set, err
	}
	if set.target, err = compileTemplate(target, false); err != nil {
		return set, err
	}
	if set.others, err = compileTemplate(others, false); err != nil {
		return set, err
	}
	return set, nil
}

var errMissingTemplate = errors.New("no message template")

func firstNonEmpty(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}
	return ""
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func quote(s string) string { return "\"" + s + "\"" }

// Lexicon returns the table's lexicon.
func (t *Table) Lexicon() *Lexicon { return t.lex }

// Verb returns the verb with the given name or synonym.
func (t *Table) Verb(name string) (*Verb, bool) {
	v, ok := t.byName[norm(name)]
	return v, ok
}

// Verbs returns all verbs in declaration order.
func (t *Table) Verbs() []*Verb { return append([]*Verb(nil), t.verbs...) }

// Qualifier returns the qualifier with the given name or alias.
func (t *Table) Qualifier(word string) (*Qualifier, bool) {
	q, ok := t.quals[norm(word)]
	return q, ok
}

// VerbCandidates returns the verbs word may name: the exact verb if there
// is one, otherwise every verb with a name or synonym starting with word,
// in declaration order.
func (t *Table) VerbCandidates(word string) []*Verb {
	word = norm(word)
	if v, ok := t.byName[word]; ok {
		return []*Verb{v}
	}
	if word == "" || len(word) < t.lex.minVerbAbbrev {
		return nil
	}
	seen := make(map[*Verb]bool)
	var out []*Verb
	for _, w := range t.lex.prefixed(word, CatVerb) {
		v := t.byName[w]
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].order < out[j].order })
	return out
}
