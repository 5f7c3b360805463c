package soul

import (
	"fmt"
	"strings"
)

// ElemKind is the kind of a pattern element.
type ElemKind int

const (
	ElemAdverb ElemKind = iota
	ElemBodypart
	ElemDirection
	ElemAnchor
	ElemTarget
	ElemText
)

func (k ElemKind) String() string {
	switch k {
	case ElemAdverb:
		return "adv"
	case ElemBodypart:
		return "part"
	case ElemDirection:
		return "dir"
	case ElemAnchor:
		return "anchor"
	case ElemTarget:
		return "target"
	case ElemText:
		return "text"
	default:
		return "unknown"
	}
}

// Role is the syntactic role of a target.
type Role int

const (
	RoleDirect Role = iota
	RoleIndirect
)

func (r Role) String() string {
	if r == RoleIndirect {
		return "indirect"
	}
	return "direct"
}

// Filter restricts what "all" expands to in a target slot.
type Filter int

const (
	FilterLiving Filter = iota // who
	FilterItem                 // what
)

// Elem is one element of a compiled pattern.
type Elem struct {
	Kind     ElemKind
	Word     string // anchor word
	Optional bool
	Role     Role
	Filter   Filter
}

// Pattern is one accepted argument shape of a verb.
type Pattern struct {
	Source string
	Elems  []Elem
	tpl    templateSet
}

// Targets returns the number of target slots.
func (p *Pattern) Targets() int {
	n := 0
	for _, e := range p.Elems {
		if e.Kind == ElemTarget {
			n++
		}
	}
	return n
}

// Has reports whether the pattern contains an element of kind k.
func (p *Pattern) Has(k ElemKind) bool {
	for _, e := range p.Elems {
		if e.Kind == k {
			return true
		}
	}
	return false
}

// Renders reports whether any message template of the pattern uses the
// placeholder name.
func (p *Pattern) Renders(name string) bool {
	for _, t := range []*template{p.tpl.self, p.tpl.target, p.tpl.others} {
		if t != nil && t.uses(name) {
			return true
		}
	}
	return false
}

// Usage renders the pattern as help text, e.g. "smile [adverb] [at] <someone>".
func (p *Pattern) Usage(verb string) string {
	parts := []string{verb}
	for _, e := range p.Elems {
		switch e.Kind {
		case ElemAdverb:
			parts = append(parts, "[adverb]")
		case ElemBodypart:
			parts = append(parts, "[bodypart]")
		case ElemDirection:
			parts = append(parts, "[direction]")
		case ElemAnchor:
			if e.Optional {
				parts = append(parts, "["+e.Word+"]")
			} else {
				parts = append(parts, e.Word)
			}
		case ElemTarget:
			if e.Filter == FilterItem {
				parts = append(parts, "<something>")
			} else {
				parts = append(parts, "<someone>")
			}
		case ElemText:
			parts = append(parts, "<message>")
		}
	}
	return strings.Join(parts, " ")
}

// compilePattern parses a pattern source. preps is the set of known prepositions.
func compilePattern(src string, preps map[string]bool) (*Pattern, error) {
	p := &Pattern{Source: src}
	fields := strings.Fields(strings.ToLower(src))
	targets := 0
	for i, f := range fields {
		switch f {
		case "adv":
			p.Elems = append(p.Elems, Elem{Kind: ElemAdverb, Optional: true})
		case "part":
			p.Elems = append(p.Elems, Elem{Kind: ElemBodypart, Optional: true})
		case "dir":
			p.Elems = append(p.Elems, Elem{Kind: ElemDirection, Optional: true})
		case "who", "what":
			if targets == 2 {
				return nil, fmt.Errorf("more than two target slots")
			}
			e := Elem{Kind: ElemTarget, Role: Role(targets)}
			if f == "what" {
				e.Filter = FilterItem
			}
			targets++
			p.Elems = append(p.Elems, e)
		case "text":
			if i != len(fields)-1 {
				return nil, fmt.Errorf("text must be the last element")
			}
			p.Elems = append(p.Elems, Elem{Kind: ElemText})
		case ":":
			p.Elems = append(p.Elems, Elem{Kind: ElemAnchor, Word: ":"})
		default:
			word, optional := f, false
			if strings.HasPrefix(f, "[") && strings.HasSuffix(f, "]") {
				word, optional = f[1:len(f)-1], true
			}
			if !preps[word] {
				return nil, fmt.Errorf("unknown element %q", f)
			}
			p.Elems = append(p.Elems, Elem{Kind: ElemAnchor, Word: word, Optional: optional})
		}
	}
	return p, nil
}
