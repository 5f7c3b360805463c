// Package verbdata loads soul vocabularies from YAML.
//
// A vocabulary file lists prepositions, adverbs, bodyparts, directions,
// qualifiers and verbs. Bodyparts are an ordered mapping of noun to phrase:
//
//	bodyparts:
//	  nose: on the nose
//	  ribs: in the ribs
//
// A verb pattern is either a plain string or a mapping carrying its own
// templates:
//
//	verbs:
//	  - name: point
//	    patterns:
//	      - pattern: "dir adv"
//	        msg: "point{s}[ {how}][ {dir}]"
//	      - "adv [at] who"
//	    msg: "point{s}[ {how}] at {who}"
//
// A default data set is embedded in the package; Default returns it.
package verbdata

import (
	_ "embed"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/crystal-mush/gosoul/pkg/soul"
	"gopkg.in/yaml.v3"
)

//go:embed verbs.yaml
var defaultData []byte

// File is the decoded form of a vocabulary file.
type File struct {
	Prepositions []string    `yaml:"prepositions"`
	Adverbs      []string    `yaml:"adverbs"`
	Bodyparts    Bodyparts   `yaml:"bodyparts"`
	Directions   []Direction `yaml:"directions"`
	Qualifiers   []Qualifier `yaml:"qualifiers"`
	Verbs        []Verb      `yaml:"verbs"`
}

// Bodyparts keeps the declaration order of the bodyparts mapping.
type Bodyparts []soul.BodypartDef

// UnmarshalYAML accepts a mapping of name to phrase, or a sequence whose
// items are either a bare name or a {name, phrase} mapping.
func (b *Bodyparts) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			var name, phrase string
			if err := n.Content[i].Decode(&name); err != nil {
				return err
			}
			if err := n.Content[i+1].Decode(&phrase); err != nil {
				return err
			}
			*b = append(*b, soul.BodypartDef{Name: name, Phrase: phrase})
		}
		return nil
	case yaml.SequenceNode:
		for _, item := range n.Content {
			if item.Kind == yaml.ScalarNode {
				*b = append(*b, soul.BodypartDef{Name: item.Value})
				continue
			}
			var def struct {
				Name   string `yaml:"name"`
				Phrase string `yaml:"phrase"`
			}
			if err := item.Decode(&def); err != nil {
				return err
			}
			*b = append(*b, soul.BodypartDef{Name: def.Name, Phrase: def.Phrase})
		}
		return nil
	}
	return fmt.Errorf("line %d: bodyparts must be a mapping or a list", n.Line)
}

// Direction is a direction entry.
type Direction struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
	Adverb  string   `yaml:"adverb"`
	Phrase  string   `yaml:"phrase"`
}

// Qualifier is a qualifier entry.
type Qualifier struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
	Self    string   `yaml:"self"`
	Others  string   `yaml:"others"`
	Inflect bool     `yaml:"inflect"`
}

// Templates are the message templates of a verb or pattern.
type Templates struct {
	Msg    string `yaml:"msg"`
	Self   string `yaml:"self"`
	Target string `yaml:"target"`
	Others string `yaml:"others"`
}

func (t Templates) spec() soul.Templates {
	return soul.Templates{Msg: t.Msg, Self: t.Self, Target: t.Target, Others: t.Others}
}

// Verb is a verb entry. Line is the source line of the entry.
type Verb struct {
	Name      string    `yaml:"name"`
	Synonyms  []string  `yaml:"synonyms"`
	Patterns  []Pattern `yaml:"patterns"`
	Templates `yaml:",inline"`
	Adverb    string `yaml:"adverb"`
	Bodypart  string `yaml:"bodypart"`
	Message   string `yaml:"message"`
	Hostile   bool   `yaml:"hostile"`

	Line int `yaml:"-"`
}

func (v *Verb) UnmarshalYAML(n *yaml.Node) error {
	type plain Verb
	if err := n.Decode((*plain)(v)); err != nil {
		return err
	}
	v.Line = n.Line
	return nil
}

// Pattern is one pattern of a verb, with optional templates of its own.
type Pattern struct {
	Pattern   string `yaml:"pattern"`
	Templates `yaml:",inline"`
}

func (p *Pattern) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		p.Pattern = n.Value
		return nil
	}
	type plain Pattern
	return n.Decode((*plain)(p))
}

// Parse decodes a vocabulary document.
func Parse(data []byte) (*File, error) {
	f := &File{}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, err
	}
	if len(f.Verbs) == 0 {
		return nil, errors.New("no verbs defined")
	}
	return f, nil
}

// Load reads and decodes the vocabulary file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

// Default returns a freshly decoded copy of the embedded vocabulary.
func Default() *File {
	f, err := Parse(defaultData)
	if err != nil {
		panic("verbdata: embedded vocabulary: " + err.Error())
	}
	return f
}

// Vocabulary converts the file into the soul's input form.
func (f *File) Vocabulary() *soul.Vocabulary {
	v := &soul.Vocabulary{
		Prepositions: f.Prepositions,
		Adverbs:      f.Adverbs,
		Bodyparts:    []soul.BodypartDef(f.Bodyparts),
	}
	for _, d := range f.Directions {
		v.Directions = append(v.Directions, soul.DirectionDef{
			Name: d.Name, Aliases: d.Aliases, Adverb: d.Adverb, Phrase: d.Phrase,
		})
	}
	for _, q := range f.Qualifiers {
		v.Qualifiers = append(v.Qualifiers, soul.QualifierDef{
			Name: q.Name, Aliases: q.Aliases, Self: q.Self, Others: q.Others, Inflect: q.Inflect,
		})
	}
	for _, vb := range f.Verbs {
		vs := soul.VerbSpec{
			Name:      vb.Name,
			Synonyms:  vb.Synonyms,
			Templates: vb.Templates.spec(),
			Adverb:    vb.Adverb,
			Bodypart:  vb.Bodypart,
			Message:   vb.Message,
			Hostile:   vb.Hostile,
		}
		for _, p := range vb.Patterns {
			vs.Patterns = append(vs.Patterns, soul.PatternSpec{Pattern: p.Pattern, Templates: p.Templates.spec()})
		}
		v.Verbs = append(v.Verbs, vs)
	}
	return v
}

// VerbLine returns the source line of the named verb, or 0.
func (f *File) VerbLine(name string) int {
	for _, v := range f.Verbs {
		if v.Name == name {
			return v.Line
		}
	}
	return 0
}

// Table builds a verb table from the file. Definition errors are annotated
// with the offending verb's source line.
func (f *File) Table(opts soul.Options) (*soul.Table, error) {
	t, err := soul.NewTable(f.Vocabulary(), opts)
	if err != nil {
		var inv *soul.InvalidVerbDefinitionError
		if errors.As(err, &inv) && inv.Verb != "" {
			if line := f.VerbLine(inv.Verb); line > 0 {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		return nil, err
	}
	return t, nil
}

// LoadTable loads the vocabulary at path, or the embedded one when path is
// empty, and builds its table.
func LoadTable(path string, opts soul.Options) (*soul.Table, error) {
	var (
		f   *File
		err error
	)
	if path == "" {
		f, path = Default(), "embedded vocabulary"
	} else if f, err = Load(path); err != nil {
		return nil, err
	}
	t, err := f.Table(opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Printf("verbdata: loaded %d verbs, %d words from %s", len(t.Verbs()), t.Lexicon().Len(), path)
	return t, nil
}
