package soul

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Token is one word or punctuation mark of the input.
type Token struct {
	Text  string // lowercased; the last word also loses trailing . ! ? ;
	Raw   string // as typed
	Start int    // byte offset of Raw in the input
	End   int
	Punct bool // "," or ":"
}

// Literal is a quoted segment of the input.
type Literal struct {
	Text  string // verbatim, trimmed
	Start int    // byte offset of the opening quote
	End   int    // byte offset after the closing quote
}

// Tokens is the tokenized form of one input line.
type Tokens struct {
	Input    string
	Words    []Token
	Literals []Literal
}

// Payload joins the literals with single spaces.
func (t *Tokens) Payload() string {
	parts := make([]string, 0, len(t.Literals))
	for _, l := range t.Literals {
		if l.Text != "" {
			parts = append(parts, l.Text)
		}
	}
	return strings.Join(parts, " ")
}

// Tokenize splits raw into words, punctuation tokens and quoted literals.
func Tokenize(raw string) (*Tokens, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, EmptyInputError{}
	}
	toks := &Tokens{Input: raw}
	i := 0
	for i < len(raw) {
		r, size := utf8.DecodeRuneInString(raw[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}
		if r == '"' || r == '\'' {
			if end := closingQuote(raw, i+1, byte(r)); end >= 0 {
				toks.Literals = append(toks.Literals, Literal{
					Text:  strings.TrimSpace(raw[i+1 : end]),
					Start: i,
					End:   end + 1,
				})
				i = end + 1
				continue
			}
		}
		j := i
		for j < len(raw) {
			r, size := utf8.DecodeRuneInString(raw[j:])
			if unicode.IsSpace(r) {
				break
			}
			j += size
		}
		toks.Words = append(toks.Words, splitWord(raw[i:j], i)...)
		i = j
	}
	toks.trimFinal()
	if len(toks.Words) == 0 {
		return nil, EmptyInputError{}
	}
	return toks, nil
}

// trimFinal drops sentence punctuation from the last word only. A word
// that was nothing but punctuation is removed.
func (t *Tokens) trimFinal() {
	n := len(t.Words)
	if n == 0 || t.Words[n-1].Punct {
		return
	}
	last := &t.Words[n-1]
	last.Text = strings.TrimRight(last.Text, ".!?;")
	if last.Text == "" {
		t.Words = t.Words[:n-1]
	}
}

// closingQuote finds the quote closing a literal opened before from. It must
// be followed by whitespace, punctuation or the end of input, so apostrophes
// inside words ("can't") do not close it.
func closingQuote(raw string, from int, q byte) int {
	for k := from; k < len(raw); k++ {
		if raw[k] != q {
			continue
		}
		if k+1 == len(raw) {
			return k
		}
		next, _ := utf8.DecodeRuneInString(raw[k+1:])
		if unicode.IsSpace(next) || strings.ContainsRune(",.:;!?", next) {
			return k
		}
	}
	return -1
}

// splitWord breaks a whitespace delimited chunk on "," and ":".
func splitWord(chunk string, offset int) []Token {
	var out []Token
	start := 0
	emit := func(end int) {
		if end <= start {
			return
		}
		raw := chunk[start:end]
		out = append(out, Token{Text: strings.ToLower(raw), Raw: raw, Start: offset + start, End: offset + end})
	}
	for k := 0; k < len(chunk); k++ {
		c := chunk[k]
		if c != ',' && c != ':' {
			continue
		}
		emit(k)
		out = append(out, Token{Text: string(c), Raw: string(c), Start: offset + k, End: offset + k + 1, Punct: true})
		start = k + 1
	}
	emit(len(chunk))
	return out
}
