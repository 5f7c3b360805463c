package soul

// Vocabulary is the raw, unvalidated word and verb data handed over by a
// loader. NewTable validates it and builds the immutable lookup structures.
type Vocabulary struct {
	Prepositions []string
	Adverbs      []string
	Bodyparts    []BodypartDef
	Directions   []DirectionDef
	Qualifiers   []QualifierDef
	Verbs        []VerbSpec
}

// BodypartDef is a bodypart noun and the phrase it renders as.
type BodypartDef struct {
	Name   string // "nose"
	Phrase string // "on the nose"
}

// DirectionDef is a compass or relative direction. Adverb is the form used
// when the direction fills an adverb slot ("westwards"); Phrase fills {dir}.
type DirectionDef struct {
	Name    string
	Aliases []string
	Adverb  string
	Phrase  string
}

// QualifierDef wraps an action. Self and Others contain {action}.
// When Inflect is false observers see the uninflected verb form
// ("Julie doesn't smile").
type QualifierDef struct {
	Name    string
	Aliases []string
	Self    string
	Others  string
	Inflect bool
}

// Templates holds message templates. Msg is shared by every perspective
// unless Self, Target or Others override it.
type Templates struct {
	Msg    string
	Self   string
	Target string
	Others string
}

func (t Templates) empty() bool {
	return t.Msg == "" && t.Self == "" && t.Target == "" && t.Others == ""
}

// PatternSpec is one accepted argument shape of a verb, optionally with its
// own templates.
type PatternSpec struct {
	Pattern   string
	Templates Templates
}

// VerbSpec declares a social verb.
type VerbSpec struct {
	Name     string
	Synonyms []string
	Patterns []PatternSpec
	Templates

	Adverb   string // default adverb
	Bodypart string // default bodypart
	Message  string // default message for {msg} and {text}
	Hostile  bool
}
