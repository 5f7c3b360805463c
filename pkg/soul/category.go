package soul

import "strings"

// Category classifies a lexicon word.
type Category int

const (
	CatVerb Category = iota
	CatAdverb
	CatPreposition
	CatBodypart
	CatDirection
	CatPronoun
	CatQualifier
	CatArticle
	CatConjunction
	CatQuantifier
	CatOrdinal
	CatReflexive
	CatPunctuation
	numCategories
)

func (c Category) String() string {
	switch c {
	case CatVerb:
		return "verb"
	case CatAdverb:
		return "adverb"
	case CatPreposition:
		return "preposition"
	case CatBodypart:
		return "bodypart"
	case CatDirection:
		return "direction"
	case CatPronoun:
		return "pronoun"
	case CatQualifier:
		return "qualifier"
	case CatArticle:
		return "article"
	case CatConjunction:
		return "conjunction"
	case CatQuantifier:
		return "quantifier"
	case CatOrdinal:
		return "ordinal"
	case CatReflexive:
		return "reflexive"
	case CatPunctuation:
		return "punctuation"
	default:
		return "unknown"
	}
}

// abbreviable reports whether words of this category may be shortened to a prefix.
func (c Category) abbreviable() bool {
	switch c {
	case CatVerb, CatAdverb, CatBodypart, CatDirection:
		return true
	case CatPreposition, CatPronoun, CatQualifier, CatArticle, CatConjunction,
		CatQuantifier, CatOrdinal, CatReflexive, CatPunctuation:
		return false
	}
	return false
}

// CategorySet is a bitset of categories.
type CategorySet uint32

// Has reports whether c is in the set.
func (s CategorySet) Has(c Category) bool { return s&(1<<uint(c)) != 0 }

// With returns the set with c added.
func (s CategorySet) With(c Category) CategorySet { return s | 1<<uint(c) }

// Empty reports whether the set has no members.
func (s CategorySet) Empty() bool { return s == 0 }

// Categories lists the members in enum order.
func (s CategorySet) Categories() []Category {
	var out []Category
	for c := Category(0); c < numCategories; c++ {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

func (s CategorySet) String() string {
	var names []string
	for _, c := range s.Categories() {
		names = append(names, c.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}

// Class is the classification of a single word: the categories where it is
// a complete entry and those where it only abbreviates one.
type Class struct {
	Exact  CategorySet
	Prefix CategorySet
}

// All returns every category the word may belong to.
func (c Class) All() CategorySet { return c.Exact | c.Prefix }

// Has reports whether the word may belong to cat.
func (c Class) Has(cat Category) bool { return c.All().Has(cat) }
