// Package soul parses social commands ("smile at bob", "poke kate in the
// ribs") into structured actions and renders the messages every observer
// sees.
//
// A Table is built once from a Vocabulary and is immutable afterwards, so a
// single Soul can serve any number of actor sessions concurrently. Per-actor
// pronoun state is passed in through the Context and handed back in the
// Action; the soul keeps none of its own.
package soul

// Soul ties the tokenizer, matcher and renderer to one verb table.
type Soul struct {
	table *Table
}

// New returns a soul over t.
func New(t *Table) *Soul {
	return &Soul{table: t}
}

// Table returns the verb table.
func (s *Soul) Table() *Table { return s.table }

// Parse tokenizes and matches raw. On failure the returned error is one of
// the typed errors of this package and no action is produced.
func (s *Soul) Parse(raw string, ctx *Context) (*Action, error) {
	toks, err := Tokenize(raw)
	if err != nil {
		return nil, err
	}
	return s.table.Match(toks, ctx)
}

// Render renders a parsed action against ctx.
func (s *Soul) Render(a *Action, ctx *Context) *RenderResult {
	return s.table.Render(a, ctx)
}

// ParseAndRender parses raw and renders the result.
func (s *Soul) ParseAndRender(raw string, ctx *Context) (*RenderResult, error) {
	a, err := s.Parse(raw, ctx)
	if err != nil {
		return nil, err
	}
	return s.Render(a, ctx), nil
}
