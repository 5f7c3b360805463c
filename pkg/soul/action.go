package soul

import (
	"fmt"
	"strings"

	"github.com/crystal-mush/gosoul/pkg/lang"
)

// Target is a resolved referent with its syntactic role.
type Target struct {
	Entity
	Role Role
}

// Assumption records a pronoun that was expanded, so the caller can tell
// the player who was meant.
type Assumption struct {
	Pronoun string
	Names   []string
}

func (a Assumption) String() string {
	return fmt.Sprintf("(By '%s', it is assumed you mean %s.)", a.Pronoun, lang.JoinPlain(a.Names, "and"))
}

// Action is the structured result of a successful parse.
type Action struct {
	Verb      string
	Qualifier string
	Adverb    string // adverb text as rendered, e.g. "westwards" for a direction
	Bodypart  string // canonical bodypart noun
	Direction string // canonical direction
	Targets   []Target
	// Message is the literal payload: quoted segments and text slots.
	Message    string
	HasMessage bool
	Pattern    string
	Actor      Entity
	// Pronouns is the actor's pronoun state after this command.
	Pronouns    Pronouns
	Assumptions []Assumption

	// External is set for verbs handled outside the soul. Args holds the
	// lowercased words after the verb, Unrecognized the words that did not
	// resolve to anything and Unparsed the raw text after the verb.
	External     bool
	Args         []string
	Unrecognized []string
	Unparsed     string

	verb    *Verb
	pattern *Pattern
	qual    *Qualifier
	where   string
	dir     string
}

// Direct returns the direct object targets.
func (a *Action) Direct() []Target { return a.byRole(RoleDirect) }

// Indirect returns the indirect object targets.
func (a *Action) Indirect() []Target { return a.byRole(RoleIndirect) }

func (a *Action) byRole(r Role) []Target {
	var out []Target
	for _, t := range a.Targets {
		if t.Role == r {
			out = append(out, t)
		}
	}
	return out
}

// Hostile reports whether the verb is flagged hostile.
func (a *Action) Hostile() bool { return a.verb != nil && a.verb.Hostile }

// String is a compact debug form.
func (a *Action) String() string {
	var b strings.Builder
	if a.Qualifier != "" {
		b.WriteString(a.Qualifier + " ")
	}
	b.WriteString(a.Verb)
	if a.Adverb != "" {
		b.WriteString(" adv=" + a.Adverb)
	}
	if a.Bodypart != "" {
		b.WriteString(" part=" + a.Bodypart)
	}
	if a.Direction != "" {
		b.WriteString(" dir=" + a.Direction)
	}
	for _, t := range a.Targets {
		fmt.Fprintf(&b, " %s=%s", t.Role, t.DisplayName())
	}
	if a.HasMessage {
		fmt.Fprintf(&b, " msg=%q", a.Message)
	}
	return b.String()
}
