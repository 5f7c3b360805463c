package soul

import (
	"sort"
	"strings"
)

// word is a tail token annotated for matching.
type word struct {
	Token
	cls     Class
	nameish bool
}

type span struct{ start, end int }

// binding records which tail tokens each pattern element consumed.
type binding struct {
	adverb  int
	part    int
	dir     int
	targets [2]span
	bound   [2]bool
	text    int

	missing       bool
	missingFilter Filter
}

func newBinding() binding {
	return binding{adverb: -1, part: -1, dir: -1, text: -1}
}

type matcher struct {
	table *Table
	ctx   *Context
	res   *resolver
	toks  *Tokens
	tail  []word
}

// Match parses tokens against the verb table.
func (t *Table) Match(toks *Tokens, ctx *Context) (*Action, error) {
	m := &matcher{table: t, ctx: ctx, res: newResolver(ctx), toks: toks}
	return m.match()
}

func (m *matcher) match() (*Action, error) {
	words := m.toks.Words
	idx := 0
	var qual *Qualifier
	if len(words) > 1 && !words[0].Punct {
		if q, ok := m.table.Qualifier(words[0].Text); ok {
			qual = q
			idx = 1
			if words[1].Text == "to" && len(words) > 2 {
				idx = 2
			}
		}
	}
	verbTok := words[idx]
	for _, w := range words[idx+1:] {
		switch w.Text {
		case "the", "a", "an":
			continue
		}
		m.tail = append(m.tail, word{
			Token:   w,
			cls:     m.table.lex.Classify(w.Text),
			nameish: !w.Punct && m.res.nameish(w.Text),
		})
	}

	if m.ctx.External[verbTok.Text] {
		return m.external(verbTok, qual), nil
	}
	cands := m.table.VerbCandidates(verbTok.Text)
	if verbTok.Punct || len(cands) == 0 {
		return nil, &UnknownVerbError{Word: verbTok.Text, Suggestion: m.suggestVerb(verbTok.Text)}
	}

	conflict := m.conflict()
	for _, v := range cands {
		for _, p := range v.Patterns {
			b, ok := m.bind(p.Elems, 0, 0, newBinding(), false)
			if !ok {
				continue
			}
			return m.build(v, p, qual, b)
		}
	}
	if conflict != nil {
		return nil, conflict
	}
	for _, v := range cands {
		for _, p := range v.Patterns {
			if b, ok := m.bind(p.Elems, 0, 0, newBinding(), true); ok && b.missing {
				return nil, &MissingTargetError{Verb: v.Name, Items: b.missingFilter == FilterItem}
			}
		}
	}
	v := cands[0]
	patterns := make([]string, len(v.Patterns))
	for i, p := range v.Patterns {
		patterns[i] = p.Source
	}
	return nil, &GrammarMismatchError{Verb: v.Name, Patterns: patterns, Usage: v.Usage()}
}

func (m *matcher) suggestVerb(w string) string {
	var pool []string
	for _, v := range m.table.verbs {
		pool = append(pool, v.Name)
		pool = append(pool, v.Synonyms...)
	}
	for ext := range m.ctx.External {
		pool = append(pool, ext)
	}
	return suggest(w, pool)
}

// exactOther reports whether the word is a complete entry of a modifier
// category other than want while only abbreviating want.
func exactOther(c Class, want Category) bool {
	if c.Exact.Has(want) {
		return false
	}
	for _, other := range []Category{CatAdverb, CatBodypart, CatDirection, CatPreposition} {
		if other != want && c.Exact.Has(other) {
			return true
		}
	}
	return false
}

// targetWord reports whether the word is a complete entry of a category
// that only appears inside target phrases. Such words never abbreviate
// modifiers: "her" is a pronoun, not "heroically".
func (w word) targetWord() bool {
	for _, c := range []Category{CatPronoun, CatReflexive, CatQuantifier, CatConjunction, CatOrdinal} {
		if w.cls.Exact.Has(c) {
			return true
		}
	}
	return false
}

func (w word) modifier() bool { return !w.nameish && !w.Punct && !w.targetWord() }

func (w word) canAdverb() bool {
	if !w.modifier() {
		return false
	}
	if w.cls.Exact.Has(CatAdverb) || w.cls.Exact.Has(CatDirection) {
		return true
	}
	if w.cls.Exact.Has(CatBodypart) || w.cls.Exact.Has(CatPreposition) {
		return false
	}
	return w.cls.Prefix.Has(CatAdverb) || w.cls.Prefix.Has(CatDirection)
}

func (w word) canBodypart() bool {
	return w.modifier() && w.cls.Has(CatBodypart) && !exactOther(w.cls, CatBodypart)
}

func (w word) canDirection() bool {
	return w.modifier() && w.cls.Has(CatDirection) && !exactOther(w.cls, CatDirection)
}

func (w word) isPreposition() bool { return !w.Punct && w.cls.Exact.Has(CatPreposition) }

// keyword reports whether the token ends a target run.
func (w word) keyword() bool {
	if w.Punct {
		return w.Text == ":"
	}
	if w.isPreposition() {
		return true
	}
	if !w.modifier() {
		return false
	}
	return w.cls.Has(CatAdverb) || w.cls.Has(CatBodypart) || w.cls.Has(CatDirection)
}

func (w word) joiner() bool { return w.Text == "and" || w.Text == "," }

// bind tries to consume tail[ti:] with elems[ei:], backtracking over
// optional elements and target run lengths. In relaxed mode a target slot
// may bind to nothing, which marks the binding as missing a target.
func (m *matcher) bind(elems []Elem, ei, ti int, b binding, relaxed bool) (binding, bool) {
	n := len(m.tail)
	if ei == len(elems) {
		return b, ti == n
	}
	e := elems[ei]
	switch e.Kind {
	case ElemAdverb:
		if ti < n && b.adverb < 0 && m.tail[ti].canAdverb() {
			nb := b
			nb.adverb = ti
			if r, ok := m.bind(elems, ei+1, ti+1, nb, relaxed); ok {
				return r, true
			}
		}
		return m.bind(elems, ei+1, ti, b, relaxed)

	case ElemBodypart:
		if b.part < 0 {
			if ti+1 < n && m.tail[ti].isPreposition() && m.tail[ti+1].canBodypart() {
				nb := b
				nb.part = ti + 1
				if r, ok := m.bind(elems, ei+1, ti+2, nb, relaxed); ok {
					return r, true
				}
			}
			if ti < n && m.tail[ti].canBodypart() {
				nb := b
				nb.part = ti
				if r, ok := m.bind(elems, ei+1, ti+1, nb, relaxed); ok {
					return r, true
				}
			}
		}
		return m.bind(elems, ei+1, ti, b, relaxed)

	case ElemDirection:
		if ti < n && b.dir < 0 && m.tail[ti].canDirection() {
			nb := b
			nb.dir = ti
			if r, ok := m.bind(elems, ei+1, ti+1, nb, relaxed); ok {
				return r, true
			}
		}
		return m.bind(elems, ei+1, ti, b, relaxed)

	case ElemAnchor:
		if ti < n && m.tail[ti].Text == e.Word {
			if r, ok := m.bind(elems, ei+1, ti+1, b, relaxed); ok {
				return r, true
			}
		}
		if e.Optional {
			return m.bind(elems, ei+1, ti, b, relaxed)
		}
		return b, false

	case ElemTarget:
		limit := ti
		for limit < n && !m.tail[limit].keyword() {
			limit++
		}
		for end := limit; end > ti; end-- {
			if !m.hasName(ti, end) {
				continue
			}
			nb := b
			nb.targets[e.Role] = span{ti, end}
			nb.bound[e.Role] = true
			if r, ok := m.bind(elems, ei+1, end, nb, relaxed); ok {
				return r, true
			}
		}
		if relaxed && !b.missing {
			nb := b
			nb.missing = true
			nb.missingFilter = e.Filter
			return m.bind(elems, ei+1, ti, nb, relaxed)
		}
		return b, false

	case ElemText:
		if ti < n {
			nb := b
			nb.text = ti
			return nb, true
		}
		if len(m.toks.Literals) > 0 {
			return b, true
		}
		return b, false
	}
	return b, false
}

// hasName reports whether tail[start:end] holds something besides joiners.
func (m *matcher) hasName(start, end int) bool {
	for _, w := range m.tail[start:end] {
		if !w.joiner() && !w.Punct {
			return true
		}
	}
	return false
}

// conflict detects two different adverbs or bodyparts in one command.
func (m *matcher) conflict() error {
	var advs, parts []string
	seen := make(map[string]bool)
	for _, w := range m.tail {
		if w.canAdverb() && w.cls.Has(CatAdverb) {
			if e, err := m.table.lex.Resolve(w.Text, CatAdverb); err == nil && !seen["a:"+e.Canonical] {
				seen["a:"+e.Canonical] = true
				advs = append(advs, e.Fill(FillHow))
			}
		}
		if w.canBodypart() {
			if e, err := m.table.lex.Resolve(w.Text, CatBodypart); err == nil && !seen["b:"+e.Canonical] {
				seen["b:"+e.Canonical] = true
				parts = append(parts, e.Fill(FillWhere))
			}
		}
	}
	if len(advs) > 1 {
		return &ConflictError{Category: CatAdverb, Words: advs}
	}
	if len(parts) > 1 {
		return &ConflictError{Category: CatBodypart, Words: parts}
	}
	return nil
}

func (m *matcher) texts(s span) []string {
	out := make([]string, 0, s.end-s.start)
	for _, w := range m.tail[s.start:s.end] {
		out = append(out, w.Text)
	}
	return out
}

func (m *matcher) adverb(w word) (Entry, error) {
	switch {
	case w.cls.Exact.Has(CatAdverb):
		return m.table.lex.Resolve(w.Text, CatAdverb)
	case w.cls.Exact.Has(CatDirection):
		return m.table.lex.Resolve(w.Text, CatDirection)
	case w.cls.Prefix.Has(CatAdverb):
		return m.table.lex.Resolve(w.Text, CatAdverb)
	}
	return m.table.lex.Resolve(w.Text, CatDirection)
}

func (m *matcher) build(v *Verb, p *Pattern, qual *Qualifier, b binding) (*Action, error) {
	a := &Action{
		Verb:    v.Name,
		Pattern: p.Source,
		Actor:   m.ctx.Actor,
		verb:    v,
		pattern: p,
		qual:    qual,
	}
	if qual != nil {
		a.Qualifier = qual.Name
	}
	if b.adverb >= 0 {
		e, err := m.adverb(m.tail[b.adverb])
		if err != nil {
			return nil, err
		}
		a.Adverb = e.Fill(FillHow)
	}
	if b.part >= 0 {
		e, err := m.table.lex.Resolve(m.tail[b.part].Text, CatBodypart)
		if err != nil {
			return nil, err
		}
		a.Bodypart = e.Canonical
		a.where = e.Fill(FillWhere)
	}
	if b.dir >= 0 {
		e, err := m.table.lex.Resolve(m.tail[b.dir].Text, CatDirection)
		if err != nil {
			return nil, err
		}
		a.Direction = e.Canonical
		a.dir = e.Fill(FillDir)
	}

	var all []Entity
	for _, e := range p.Elems {
		if e.Kind != ElemTarget || !b.bound[e.Role] {
			continue
		}
		ents, assumed, err := m.res.resolve(m.texts(b.targets[e.Role]), e.Filter)
		if err != nil {
			return nil, err
		}
		if len(ents) == 0 {
			return nil, &MissingTargetError{Verb: v.Name, Items: e.Filter == FilterItem}
		}
		for _, ent := range ents {
			a.Targets = append(a.Targets, Target{Entity: ent, Role: e.Role})
		}
		a.Assumptions = append(a.Assumptions, assumed...)
		all = append(all, ents...)
	}

	a.Message, a.HasMessage = m.payload(b.text)
	a.Pronouns = m.ctx.Pronouns.bind(m.ctx.Actor.ID, all)
	return a, nil
}

// payload joins the text slot and the quoted literals in input order.
func (m *matcher) payload(text int) (string, bool) {
	type seg struct {
		start int
		s     string
	}
	var segs []seg
	textStart, textEnd := -1, -1
	if text >= 0 {
		textStart = m.tail[text].Start
		textEnd = m.tail[len(m.tail)-1].End
		if end := m.toks.Literals; len(end) > 0 && end[len(end)-1].End > textEnd {
			textEnd = end[len(end)-1].End
		}
		segs = append(segs, seg{textStart, strings.TrimSpace(m.toks.Input[textStart:textEnd])})
	}
	for _, l := range m.toks.Literals {
		if l.Start >= textStart && l.End <= textEnd {
			continue
		}
		segs = append(segs, seg{l.Start, l.Text})
	}
	if len(segs) == 0 {
		return "", false
	}
	sort.Slice(segs, func(i, j int) bool { return segs[i].start < segs[j].start })
	parts := make([]string, 0, len(segs))
	for _, s := range segs {
		if s.s != "" {
			parts = append(parts, s.s)
		}
	}
	return strings.Join(parts, " "), true
}

// external builds a best-effort action for a verb handled by the caller.
func (m *matcher) external(verbTok Token, qual *Qualifier) *Action {
	a := &Action{Verb: verbTok.Text, External: true, Actor: m.ctx.Actor}
	if qual != nil {
		a.Qualifier = qual.Name
		a.qual = qual
	}
	a.Unparsed = strings.TrimSpace(m.toks.Input[verbTok.End:])
	var (
		all  []Entity
		run  []string
		role = RoleDirect
	)
	flush := func() {
		if len(run) == 0 {
			return
		}
		ents, assumed, err := m.res.resolve(run, FilterLiving)
		if err != nil {
			// Salvage what resolves word by word.
			ents, assumed = nil, nil
			for _, w := range run {
				e, as, werr := m.res.resolve([]string{w}, FilterLiving)
				if werr != nil || len(e) == 0 {
					a.Unrecognized = append(a.Unrecognized, w)
					continue
				}
				ents = append(ents, e...)
				assumed = append(assumed, as...)
			}
		}
		if len(ents) > 0 {
			for _, e := range ents {
				a.Targets = append(a.Targets, Target{Entity: e, Role: role})
			}
			a.Assumptions = append(a.Assumptions, assumed...)
			all = append(all, ents...)
			role = RoleIndirect
		}
		run = nil
	}
	for _, w := range m.tail {
		if !w.Punct {
			a.Args = append(a.Args, w.Text)
		}
		if w.keyword() {
			flush()
			continue
		}
		run = append(run, w.Text)
	}
	flush()
	a.Message, a.HasMessage = m.payload(-1)
	a.Pronouns = m.ctx.Pronouns.bind(m.ctx.Actor.ID, all)
	return a
}
