package soul

import (
	"fmt"
	"strings"
)

type nodeKind int

const (
	nodeText nodeKind = iota
	nodeVar
	nodeAlt
	nodeGroup
)

type node struct {
	kind  nodeKind
	text  string
	name  string
	attr  string
	alt   [2]string
	group []node
}

// template is a compiled message template.
type template struct {
	src   string
	nodes []node
}

var templateAttrs = map[string][]string{
	"actor":  {"", "name", "poss", "subj", "obj", "self"},
	"who":    {"", "poss", "subj", "obj", "is"},
	"whom":   {"", "poss", "subj", "obj", "is"},
	"t1":     {"", "poss", "subj", "obj", "is"},
	"t2":     {"", "poss", "subj", "obj", "is"},
	"how":    {""},
	"where":  {""},
	"part":   {""},
	"dir":    {""},
	"msg":    {""},
	"text":   {""},
	"s":      {""},
	"es":     {""},
	"action": {""},
}

// compileTemplate parses src. {action} is only accepted in qualifier templates.
func compileTemplate(src string, qualifier bool) (*template, error) {
	t := &template{src: src}
	var (
		cur     = &t.nodes
		inGroup bool
		group   []node
		text    strings.Builder
	)
	flush := func() {
		if text.Len() > 0 {
			*cur = append(*cur, node{kind: nodeText, text: text.String()})
			text.Reset()
		}
	}
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch c {
		case '[':
			if inGroup {
				return nil, fmt.Errorf("nested optional group at %d", i)
			}
			flush()
			inGroup = true
			group = nil
			cur = &group
		case ']':
			if !inGroup {
				return nil, fmt.Errorf("unbalanced ']' at %d", i)
			}
			flush()
			inGroup = false
			cur = &t.nodes
			t.nodes = append(t.nodes, node{kind: nodeGroup, group: group})
		case '{':
			end := strings.IndexByte(src[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("unterminated placeholder at %d", i)
			}
			flush()
			n, err := parsePlaceholder(src[i+1:i+end], qualifier)
			if err != nil {
				return nil, err
			}
			*cur = append(*cur, n)
			i += end
		default:
			text.WriteByte(c)
		}
	}
	if inGroup {
		return nil, fmt.Errorf("unterminated optional group")
	}
	flush()
	return t, nil
}

func parsePlaceholder(body string, qualifier bool) (node, error) {
	if a, b, ok := strings.Cut(body, "|"); ok {
		return node{kind: nodeAlt, alt: [2]string{a, b}}, nil
	}
	name, attr, _ := strings.Cut(body, ".")
	attrs, ok := templateAttrs[name]
	if !ok {
		return node{}, fmt.Errorf("unknown placeholder {%s}", body)
	}
	if name == "action" && !qualifier {
		return node{}, fmt.Errorf("{action} is only valid in qualifiers")
	}
	for _, a := range attrs {
		if a == attr {
			return node{kind: nodeVar, name: name, attr: attr}, nil
		}
	}
	return node{}, fmt.Errorf("unknown attribute in {%s}", body)
}

// uses reports whether the template references placeholder name.
func (t *template) uses(name string) bool {
	var walk func([]node) bool
	walk = func(nodes []node) bool {
		for _, n := range nodes {
			if n.kind == nodeVar && n.name == name {
				return true
			}
			if n.kind == nodeGroup && walk(n.group) {
				return true
			}
		}
		return false
	}
	return walk(t.nodes)
}

// expander supplies placeholder values during expansion.
type expander interface {
	value(name, attr string) string
	plain() bool // second person or plural actor: uninflected verb forms
}

func (t *template) expand(x expander) string {
	var (
		b     strings.Builder
		stash []string
	)
	expandNodes(&b, t.nodes, x, &stash)
	out := tidy(b.String())
	for i, v := range stash {
		out = strings.Replace(out, stashMark(i), v, 1)
	}
	return out
}

// Payload text is stashed during tidying so user spacing survives.
func stashMark(i int) string { return fmt.Sprintf("\x00%d\x00", i) }

// expandNodes writes nodes and reports whether every placeholder was non-empty.
func expandNodes(b *strings.Builder, nodes []node, x expander, stash *[]string) bool {
	complete := true
	for _, n := range nodes {
		switch n.kind {
		case nodeText:
			b.WriteString(n.text)
		case nodeAlt:
			if x.plain() {
				b.WriteString(n.alt[0])
			} else {
				b.WriteString(n.alt[1])
			}
		case nodeVar:
			v := x.value(n.name, n.attr)
			if v == "" && n.name != "s" && n.name != "es" {
				complete = false
			}
			if v != "" && (n.name == "msg" || n.name == "text" || n.name == "action") {
				b.WriteString(stashMark(len(*stash)))
				*stash = append(*stash, v)
				continue
			}
			b.WriteString(v)
		case nodeGroup:
			var gb strings.Builder
			mark := len(*stash)
			if expandNodes(&gb, n.group, x, stash) {
				b.WriteString(gb.String())
			} else {
				*stash = (*stash)[:mark]
			}
		}
	}
	return complete
}

// tidy collapses runs of spaces and removes spaces before punctuation.
func tidy(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	for _, p := range []string{",", ".", "!", "?", ":", ";"} {
		s = strings.ReplaceAll(s, " "+p, p)
	}
	return s
}
