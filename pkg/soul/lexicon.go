package soul

import (
	"sort"
	"strings"

	"github.com/crystal-mush/gosoul/pkg/lang"
)

// Template slots a lexicon entry can fill.
const (
	FillHow   = "how"   // adverb text
	FillWhere = "where" // bodypart phrase
	FillPart  = "part"  // bare bodypart noun
	FillDir   = "dir"   // direction phrase
)

// Entry is one word of the lexicon.
type Entry struct {
	Word      string
	Category  Category
	Canonical string
	Fills     map[string]string
}

// Fill returns the form the entry renders as in slot, or "".
func (e Entry) Fill(slot string) string { return e.Fills[slot] }

// Lexicon maps words to categories. It is built once by NewTable and only
// read afterwards, so concurrent lookups need no locking.
type Lexicon struct {
	exact         map[string][]Entry
	sorted        [numCategories][]string
	minVerbAbbrev int
}

func newLexicon(minVerbAbbrev int) *Lexicon {
	if minVerbAbbrev < 1 {
		minVerbAbbrev = 1
	}
	l := &Lexicon{
		exact:         make(map[string][]Entry),
		minVerbAbbrev: minVerbAbbrev,
	}
	for _, w := range []string{"the", "a", "an"} {
		l.add(Entry{Word: w, Category: CatArticle, Canonical: w})
	}
	for _, w := range []string{"and", ","} {
		l.add(Entry{Word: w, Category: CatConjunction, Canonical: "and"})
	}
	for _, w := range []string{"all", "everyone", "everybody", "everything", "but", "except"} {
		l.add(Entry{Word: w, Category: CatQuantifier, Canonical: w})
	}
	for _, w := range []string{"me", "myself", "self"} {
		l.add(Entry{Word: w, Category: CatReflexive, Canonical: "myself"})
	}
	for w, slot := range pronounSlots {
		l.add(Entry{Word: w, Category: CatPronoun, Canonical: slot.String()})
	}
	for _, w := range []string{",", ":"} {
		l.add(Entry{Word: w, Category: CatPunctuation, Canonical: w})
	}
	return l
}

// add registers e. A word can be in several categories but only once per category.
func (l *Lexicon) add(e Entry) bool {
	for _, have := range l.exact[e.Word] {
		if have.Category == e.Category {
			return false
		}
	}
	l.exact[e.Word] = append(l.exact[e.Word], e)
	if e.Category.abbreviable() {
		l.sorted[e.Category] = append(l.sorted[e.Category], e.Word)
	}
	return true
}

func (l *Lexicon) finish() {
	for c := range l.sorted {
		sort.Strings(l.sorted[c])
	}
}

// Classify returns the categories word belongs to, split into complete
// entries and abbreviations.
func (l *Lexicon) Classify(word string) Class {
	var cls Class
	word = strings.ToLower(word)
	for _, e := range l.exact[word] {
		cls.Exact = cls.Exact.With(e.Category)
	}
	if lang.IsOrdinal(word) {
		cls.Exact = cls.Exact.With(CatOrdinal)
	}
	for c := Category(0); c < numCategories; c++ {
		if !c.abbreviable() || cls.Exact.Has(c) {
			continue
		}
		if c == CatVerb && len(word) < l.minVerbAbbrev {
			continue
		}
		if len(l.prefixed(word, c)) > 0 {
			cls.Prefix = cls.Prefix.With(c)
		}
	}
	return cls
}

// Lookup returns the exact entry for word in cat.
func (l *Lexicon) Lookup(word string, cat Category) (Entry, bool) {
	for _, e := range l.exact[strings.ToLower(word)] {
		if e.Category == cat {
			return e, true
		}
	}
	return Entry{}, false
}

// Resolve expands word to its entry in cat. An exact entry wins; otherwise
// the word must abbreviate entries of a single canonical form. Several
// canonical forms fail with AmbiguousWordError, none with ErrNotFound.
func (l *Lexicon) Resolve(word string, cat Category) (Entry, error) {
	word = strings.ToLower(word)
	if e, ok := l.Lookup(word, cat); ok {
		return e, nil
	}
	if !cat.abbreviable() || word == "" || (cat == CatVerb && len(word) < l.minVerbAbbrev) {
		return Entry{}, ErrNotFound
	}
	var canon []string
	byCanon := make(map[string]Entry)
	for _, w := range l.prefixed(word, cat) {
		e, _ := l.Lookup(w, cat)
		prev, seen := byCanon[e.Canonical]
		if !seen {
			canon = append(canon, e.Canonical)
			byCanon[e.Canonical] = e
			continue
		}
		if prev.Word != prev.Canonical && e.Word == e.Canonical {
			byCanon[e.Canonical] = e
		}
	}
	switch len(canon) {
	case 0:
		return Entry{}, ErrNotFound
	case 1:
		return byCanon[canon[0]], nil
	}
	sort.Strings(canon)
	return Entry{}, &AmbiguousWordError{Category: cat, Word: word, Candidates: canon}
}

// prefixed returns the words of cat that start with prefix, sorted.
func (l *Lexicon) prefixed(prefix string, cat Category) []string {
	words := l.sorted[cat]
	i := sort.SearchStrings(words, prefix)
	j := i
	for j < len(words) && strings.HasPrefix(words[j], prefix) {
		j++
	}
	return words[i:j]
}

// Words lists every word of cat, sorted. Only abbreviable categories are indexed.
func (l *Lexicon) Words(cat Category) []string {
	return append([]string(nil), l.sorted[cat]...)
}

// Len returns the number of distinct words.
func (l *Lexicon) Len() int { return len(l.exact) }
