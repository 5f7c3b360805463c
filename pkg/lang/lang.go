// Package lang holds small English helpers used when rendering social
// messages: articles, list joining, possessives, plurals and ordinals.
package lang

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/jinzhu/inflection"
)

// aExceptions overrides the vowel-sound guess for words whose article
// does not follow from their first letter.
var aExceptions = map[string]string{
	"unicorn":    "a",
	"uniform":    "a",
	"unique":     "a",
	"unit":       "a",
	"universe":   "a",
	"university": "a",
	"use":        "a",
	"user":       "a",
	"hour":       "an",
	"honest":     "an",
	"honour":     "an",
	"heir":       "an",
}

// A prefixes word with "a" or "an". Words already carrying one are returned as is.
func A(word string) string {
	if word == "" {
		return ""
	}
	lower := strings.ToLower(word)
	if strings.HasPrefix(lower, "a ") || strings.HasPrefix(lower, "an ") {
		return word
	}
	first := strings.Fields(lower)[0]
	if art, ok := aExceptions[first]; ok {
		return art + " " + word
	}
	if strings.IndexByte("aeiou", first[0]) >= 0 {
		return "an " + word
	}
	return "a " + word
}

// Capital uppercases the first letter of s.
func Capital(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// Fullstop terminates a sentence with punct unless it already ends in
// sentence punctuation. An empty punct means ".".
func Fullstop(s, punct string) string {
	if punct == "" {
		punct = "."
	}
	s = strings.TrimRight(s, " \t")
	if s == "" {
		return s
	}
	switch s[len(s)-1] {
	case '.', '!', '?':
		return s
	}
	return s + punct
}

// Possessive returns the possessive form of a name ("julie's").
// Phrases that already are possessive ("your own", "her") are returned unchanged.
func Possessive(name string) string {
	if name == "" {
		return ""
	}
	switch strings.ToLower(name) {
	case "my", "your", "his", "her", "its", "our", "their":
		return name
	}
	if strings.HasSuffix(name, " own") {
		return name
	}
	return name + "'s"
}

// Join lists words as "a, b, and c". Repeated words are grouped and
// counted: ["a key", "a key"] becomes "two keys".
func Join(words []string, conj string) string {
	if len(words) < 2 {
		return JoinPlain(words, conj)
	}
	type group struct {
		word  string
		bare  string
		count int
	}
	var groups []*group
	index := make(map[string]*group)
	for _, w := range words {
		bare := stripArticle(w)
		if g, ok := index[bare]; ok {
			g.count++
			continue
		}
		g := &group{word: w, bare: bare, count: 1}
		index[bare] = g
		groups = append(groups, g)
	}
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		if g.count == 1 {
			out = append(out, g.word)
			continue
		}
		out = append(out, SpellNumber(g.count)+" "+Pluralize(g.bare, g.count))
	}
	return JoinPlain(out, conj)
}

// JoinPlain lists words without grouping duplicates. conj defaults to "and".
func JoinPlain(words []string, conj string) string {
	if conj == "" {
		conj = "and"
	}
	switch len(words) {
	case 0:
		return ""
	case 1:
		return words[0]
	case 2:
		return words[0] + " " + conj + " " + words[1]
	}
	return strings.Join(words[:len(words)-1], ", ") + ", " + conj + " " + words[len(words)-1]
}

func stripArticle(w string) string {
	for _, art := range []string{"a ", "an ", "the "} {
		if strings.HasPrefix(strings.ToLower(w), art) {
			return w[len(art):]
		}
	}
	return w
}

var numberWords = []string{
	"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
	"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen",
	"seventeen", "eighteen", "nineteen",
}

var tensWords = []string{"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety"}

// SpellNumber writes n in words for -99..99 and in digits otherwise.
func SpellNumber(n int) string {
	if n < 0 {
		return "minus " + SpellNumber(-n)
	}
	if n < 20 {
		return numberWords[n]
	}
	if n < 100 {
		tens, ones := n/10, n%10
		if ones == 0 {
			return tensWords[tens]
		}
		return tensWords[tens] + " " + numberWords[ones]
	}
	return strconv.Itoa(n)
}

// Words the stock inflection rules get wrong for a fantasy setting.
var irregularPlurals = [][2]string{
	{"dwarf", "dwarves"},
	{"foot", "feet"},
	{"gas", "gases"},
	{"goose", "geese"},
	{"hero", "heroes"},
	{"potato", "potatoes"},
	{"tooth", "teeth"},
	{"volcano", "volcanoes"},
}

func init() {
	for _, p := range irregularPlurals {
		inflection.AddIrregular(p[0], p[1])
	}
}

// Pluralize returns the plural of word unless amount is exactly 1.
// Only the last word of a phrase is inflected.
func Pluralize(word string, amount int) string {
	if amount == 1 || word == "" {
		return word
	}
	head, last := "", word
	if i := strings.LastIndexByte(word, ' '); i >= 0 {
		head, last = word[:i+1], word[i+1:]
	}
	return head + inflection.Plural(last)
}

var ordinalWords = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
}

// ParseOrdinal recognises "second" and "2nd" style ordinals.
func ParseOrdinal(word string) (int, bool) {
	if n, ok := ordinalWords[word]; ok {
		return n, true
	}
	if len(word) < 3 {
		return 0, false
	}
	n, err := strconv.Atoi(word[:len(word)-2])
	if err != nil || n <= 0 {
		return 0, false
	}
	if humanize.Ordinal(n) != word {
		return 0, false
	}
	return n, true
}

// IsOrdinal reports whether word is an ordinal.
func IsOrdinal(word string) bool {
	_, ok := ParseOrdinal(word)
	return ok
}
