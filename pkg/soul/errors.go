package soul

import (
	"errors"
	"fmt"
	"strings"

	"github.com/crystal-mush/gosoul/pkg/lang"
)

// ErrNotFound is returned by Lexicon.Resolve when no entry matches.
var ErrNotFound = errors.New("soul: word not found")

// EmptyInputError is returned for blank input.
type EmptyInputError struct{}

func (EmptyInputError) Error() string { return "What do you want to do?" }

// AmbiguousWordError is returned when an abbreviation matches several
// lexicon entries of one category.
type AmbiguousWordError struct {
	Category   Category
	Word       string
	Candidates []string
}

func (e *AmbiguousWordError) Error() string {
	return fmt.Sprintf("What %s did you mean: %s?", e.Category, lang.JoinPlain(e.Candidates, "or"))
}

// UnknownVerbError is returned when the command word is not a verb.
type UnknownVerbError struct {
	Word       string
	Suggestion string
}

func (e *UnknownVerbError) Error() string {
	msg := fmt.Sprintf("The word '%s' isn't understood.", e.Word)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" Perhaps you meant '%s'?", e.Suggestion)
	}
	return msg
}

// GrammarMismatchError is returned when no pattern of the verb consumes the
// input. Usage holds the accepted forms, one per pattern.
type GrammarMismatchError struct {
	Verb     string
	Patterns []string
	Usage    []string
}

func (e *GrammarMismatchError) Error() string {
	if len(e.Usage) == 0 {
		return fmt.Sprintf("That doesn't make much sense with %s.", e.Verb)
	}
	return fmt.Sprintf("That doesn't make much sense with %s. Try: %s.", e.Verb, strings.Join(e.Usage, "; "))
}

// MissingTargetError is returned when a pattern needs a target and the
// input names none, or the phrase resolved to nobody.
type MissingTargetError struct {
	Verb  string
	Items bool // the slot wanted objects rather than livings
}

func (e *MissingTargetError) Error() string {
	if e.Items {
		return fmt.Sprintf("The verb %s needs an object.", e.Verb)
	}
	return fmt.Sprintf("The verb %s needs a person.", e.Verb)
}

// NoMatchError is returned when a target phrase names nothing in context.
type NoMatchError struct {
	Phrase     string
	Suggestion string
}

func (e *NoMatchError) Error() string {
	msg := fmt.Sprintf("It's not clear what you mean by '%s'.", e.Phrase)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" Perhaps you meant '%s'?", e.Suggestion)
	}
	return msg
}

// AmbiguousReferentError is returned when a target phrase matches several
// distinct candidates at the same tier. Candidates are in context order.
type AmbiguousReferentError struct {
	Phrase     string
	Candidates []Entity
}

func (e *AmbiguousReferentError) Error() string {
	names := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		names[i] = c.DisplayName()
	}
	return fmt.Sprintf("Which '%s' do you mean: %s?", e.Phrase, lang.JoinPlain(names, "or"))
}

// UnboundPronounError is returned for a pronoun with no referent. Gone is
// set when the pronoun was bound to something no longer in the context.
type UnboundPronounError struct {
	Pronoun string
	Gone    bool
}

func (e *UnboundPronounError) Error() string {
	if e.Gone {
		slot := pronounSlots[e.Pronoun]
		var subj string
		switch slot {
		case SlotHe:
			subj = "He is"
		case SlotShe:
			subj = "She is"
		case SlotIt:
			subj = "It is"
		case SlotThey:
			subj = "They are"
		}
		return subj + " no longer around."
	}
	return fmt.Sprintf("It is not clear who you're referring to with '%s'.", e.Pronoun)
}

// ConflictError is returned when a command carries two different adverbs
// or two different bodyparts.
type ConflictError struct {
	Category Category
	Words    []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("You can't do that both %s.", lang.JoinPlain(e.Words, "and"))
}

// InvalidVerbDefinitionError is a load-time data integrity failure.
type InvalidVerbDefinitionError struct {
	Verb    string
	Pattern string
	Reason  string
}

func (e *InvalidVerbDefinitionError) Error() string {
	if e.Pattern != "" {
		return fmt.Sprintf("soul: verb %q pattern %q: %s", e.Verb, e.Pattern, e.Reason)
	}
	if e.Verb != "" {
		return fmt.Sprintf("soul: verb %q: %s", e.Verb, e.Reason)
	}
	return "soul: " + e.Reason
}

// ErrorKind returns a short label for the error, used for metrics and logs.
func ErrorKind(err error) string {
	var (
		empty    EmptyInputError
		ambWord  *AmbiguousWordError
		unknown  *UnknownVerbError
		mismatch *GrammarMismatchError
		missing  *MissingTargetError
		nomatch  *NoMatchError
		ambRef   *AmbiguousReferentError
		unbound  *UnboundPronounError
		conflict *ConflictError
		invalid  *InvalidVerbDefinitionError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &empty):
		return "empty_input"
	case errors.As(err, &ambWord):
		return "ambiguous_word"
	case errors.As(err, &unknown):
		return "unknown_verb"
	case errors.As(err, &mismatch):
		return "grammar_mismatch"
	case errors.As(err, &missing):
		return "missing_target"
	case errors.As(err, &nomatch):
		return "no_match"
	case errors.As(err, &ambRef):
		return "ambiguous_referent"
	case errors.As(err, &unbound):
		return "unbound_pronoun"
	case errors.As(err, &conflict):
		return "conflict"
	case errors.As(err, &invalid):
		return "invalid_definition"
	}
	return "other"
}
