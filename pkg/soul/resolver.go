package soul

import (
	"strings"

	"github.com/crystal-mush/gosoul/pkg/lang"
)

type nameKey struct {
	key string
	idx int
}

// resolver maps name phrases to referents of one context.
type resolver struct {
	ctx   *Context
	pool  []Entity
	keys  []nameKey
	words map[string]bool
}

func newResolver(ctx *Context) *resolver {
	r := &resolver{ctx: ctx, words: make(map[string]bool)}
	r.pool = append(r.pool, ctx.Candidates...)
	if _, ok := r.index(ctx.Actor.ID); !ok {
		r.pool = append(r.pool, ctx.Actor)
	}
	for i, e := range r.pool {
		for _, n := range append([]string{e.Name}, e.Synonyms...) {
			n = strings.Join(strings.Fields(strings.ToLower(n)), " ")
			if n == "" {
				continue
			}
			r.keys = append(r.keys, nameKey{key: n, idx: i})
			for _, w := range strings.Fields(n) {
				r.words[w] = true
			}
		}
	}
	return r
}

func (r *resolver) index(id EntityID) (int, bool) {
	for i, e := range r.pool {
		if e.ID == id {
			return i, true
		}
	}
	return 0, false
}

// nameish reports whether word is part of a name or starts one. Such words
// are never treated as keywords by the matcher.
func (r *resolver) nameish(word string) bool {
	if r.words[word] {
		return true
	}
	for _, k := range r.keys {
		if strings.HasPrefix(k.key, word) {
			return true
		}
	}
	return false
}

// matches returns the distinct pool entries satisfying pred, in pool order.
func (r *resolver) matches(pred func(key string) bool) []Entity {
	hit := make(map[int]bool)
	for _, k := range r.keys {
		if pred(k.key) {
			hit[k.idx] = true
		}
	}
	var out []Entity
	for i, e := range r.pool {
		if hit[i] {
			out = append(out, e)
		}
	}
	return out
}

func (r *resolver) exact(phrase string) []Entity {
	return r.matches(func(k string) bool { return k == phrase })
}

func (r *resolver) prefix(phrase string) []Entity {
	return r.matches(func(k string) bool { return strings.HasPrefix(k, phrase) })
}

// wordMatch matches a single word against the words of multi-word names,
// so "bird" finds "brown bird".
func (r *resolver) wordMatch(phrase string) []Entity {
	if strings.Contains(phrase, " ") {
		return nil
	}
	return r.matches(func(k string) bool {
		for _, w := range strings.Fields(k) {
			if w == phrase {
				return true
			}
		}
		return false
	})
}

// tier returns the matches of the first tier that has any.
func (r *resolver) tier(phrase string) []Entity {
	if m := r.exact(phrase); len(m) > 0 {
		return m
	}
	if m := r.prefix(phrase); len(m) > 0 {
		return m
	}
	return r.wordMatch(phrase)
}

func isAllWord(w string) bool {
	switch w {
	case "all", "everyone", "everybody", "everything":
		return true
	}
	return false
}

func isReflexive(w string) bool {
	switch w {
	case "me", "myself", "self":
		return true
	}
	return false
}

// resolve turns a target phrase into referents, in mention order without
// duplicates. An empty result is not an error here.
func (r *resolver) resolve(words []string, filter Filter) ([]Entity, []Assumption, error) {
	if len(words) >= 2 && isAllWord(words[0]) && (words[1] == "but" || words[1] == "except") {
		base := r.all(words[0], filter)
		excl, assumed, err := r.list(words[2:], filter)
		if err != nil {
			return nil, nil, err
		}
		if len(excl) == 0 {
			return nil, nil, &NoMatchError{Phrase: strings.Join(words, " ")}
		}
		drop := make(map[EntityID]bool)
		for _, e := range excl {
			drop[e.ID] = true
		}
		var out []Entity
		for _, e := range base {
			if !drop[e.ID] {
				out = append(out, e)
			}
		}
		return out, assumed, nil
	}
	return r.list(words, filter)
}

// list resolves groups separated by "and" or ",".
func (r *resolver) list(words []string, filter Filter) ([]Entity, []Assumption, error) {
	var (
		out     []Entity
		assumed []Assumption
		group   []string
		seen    = make(map[EntityID]bool)
	)
	flush := func() error {
		if len(group) == 0 {
			return nil
		}
		ents, as, err := r.group(group, filter)
		if err != nil {
			return err
		}
		for _, e := range ents {
			if !seen[e.ID] {
				seen[e.ID] = true
				out = append(out, e)
			}
		}
		assumed = append(assumed, as...)
		group = group[:0]
		return nil
	}
	for _, w := range words {
		if w == "and" || w == "," {
			if err := flush(); err != nil {
				return nil, nil, err
			}
			continue
		}
		group = append(group, w)
	}
	if err := flush(); err != nil {
		return nil, nil, err
	}
	return out, assumed, nil
}

// group resolves a run without joiners. The whole run is tried as one name
// first; failing that it is split after the longest leading exact name, so
// "bob kate" means both.
func (r *resolver) group(words []string, filter Filter) ([]Entity, []Assumption, error) {
	ents, assumed, err := r.phrase(words, filter)
	if err == nil || len(words) == 1 {
		return ents, assumed, err
	}
	for k := len(words) - 1; k >= 1; k-- {
		if !r.isExact(words[:k]) {
			continue
		}
		head, ha, herr := r.phrase(words[:k], filter)
		if herr != nil {
			return nil, nil, herr
		}
		tail, ta, terr := r.group(words[k:], filter)
		if terr != nil {
			return nil, nil, terr
		}
		return append(head, tail...), append(ha, ta...), nil
	}
	return nil, nil, err
}

func (r *resolver) isExact(words []string) bool {
	if len(words) == 1 {
		w := words[0]
		if isAllWord(w) || isReflexive(w) {
			return true
		}
		if _, ok := pronounSlots[w]; ok {
			return true
		}
	}
	if len(words) > 1 && lang.IsOrdinal(words[0]) {
		words = words[1:]
	}
	return len(r.exact(strings.Join(words, " "))) > 0
}

// phrase resolves a single referent phrase through the tiers.
func (r *resolver) phrase(words []string, filter Filter) ([]Entity, []Assumption, error) {
	text := strings.Join(words, " ")
	if len(words) == 1 {
		w := words[0]
		switch {
		case isReflexive(w):
			return []Entity{r.ctx.Actor}, nil, nil
		case isAllWord(w):
			return r.all(w, filter), nil, nil
		}
		if slot, ok := pronounSlots[w]; ok {
			return r.pronoun(w, slot)
		}
	}
	if n, ok := lang.ParseOrdinal(words[0]); ok && len(words) > 1 {
		m := r.tier(strings.Join(words[1:], " "))
		if n > len(m) {
			return nil, nil, &NoMatchError{Phrase: text}
		}
		return []Entity{m[n-1]}, nil, nil
	}
	for _, find := range []func(string) []Entity{r.exact, r.prefix, r.wordMatch} {
		switch m := find(text); {
		case len(m) == 1:
			return m, nil, nil
		case len(m) > 1:
			return nil, nil, &AmbiguousReferentError{Phrase: text, Candidates: m}
		}
	}
	if base := strings.TrimSpace(strings.TrimRight(text, "0123456789")); base != text && base != "" {
		switch m := r.tier(base); {
		case len(m) == 1:
			return m, nil, nil
		case len(m) > 1:
			return nil, nil, &AmbiguousReferentError{Phrase: text, Candidates: m}
		}
	}
	return nil, nil, &NoMatchError{Phrase: text, Suggestion: r.suggest(text)}
}

func (r *resolver) suggest(text string) string {
	pool := make([]string, 0, len(r.keys))
	for _, k := range r.keys {
		pool = append(pool, k.key)
	}
	return suggest(text, pool)
}

func (r *resolver) pronoun(word string, slot PronounSlot) ([]Entity, []Assumption, error) {
	ids := r.ctx.Pronouns.Get(slot)
	if len(ids) == 0 {
		return nil, nil, &UnboundPronounError{Pronoun: word}
	}
	out := make([]Entity, 0, len(ids))
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		e, ok := r.ctx.Lookup(id)
		if !ok {
			return nil, nil, &UnboundPronounError{Pronoun: word, Gone: true}
		}
		out = append(out, e)
		names = append(names, e.DisplayName())
	}
	return out, []Assumption{{Pronoun: word, Names: names}}, nil
}

// all expands "all", "everyone" and friends. The actor is never included.
func (r *resolver) all(word string, filter Filter) []Entity {
	wantItems := word == "everything" || (word == "all" && filter == FilterItem)
	var out []Entity
	for _, c := range r.ctx.Candidates {
		if c.ID == r.ctx.Actor.ID {
			continue
		}
		if wantItems && c.Kind == KindItem || !wantItems && c.Kind.Living() {
			out = append(out, c)
		}
	}
	return out
}
