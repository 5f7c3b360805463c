package soul

import (
	"fmt"
	"strings"
)

// EntityID identifies a referent. The world model assigns them.
type EntityID int

// NoEntity is the zero referent, used for the generic room observer.
const NoEntity EntityID = -1

// Kind is the type tag of a referent.
type Kind int

const (
	KindPlayer Kind = iota
	KindNPC
	KindItem
	KindExit
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindNPC:
		return "npc"
	case KindItem:
		return "item"
	case KindExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Living reports whether referents of this kind observe messages.
func (k Kind) Living() bool { return k == KindPlayer || k == KindNPC }

// ParseKind accepts the names produced by Kind.String.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "player":
		return KindPlayer, nil
	case "npc", "mob", "living":
		return KindNPC, nil
	case "item", "thing", "object":
		return KindItem, nil
	case "exit":
		return KindExit, nil
	}
	return 0, fmt.Errorf("unknown kind %q", s)
}

// Gender drives pronouns and verb agreement. GenderPlural is grammatical
// number rather than gender: "the twins", referred to as "they".
type Gender int

const (
	GenderNeuter Gender = iota
	GenderMale
	GenderFemale
	GenderPlural
)

// ParseGender accepts m/male, f/female, n/neuter/it and p/plural/they.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male":
		return GenderMale, nil
	case "f", "female":
		return GenderFemale, nil
	case "n", "neuter", "it", "":
		return GenderNeuter, nil
	case "p", "plural", "they":
		return GenderPlural, nil
	}
	return 0, fmt.Errorf("unknown gender %q", s)
}

func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	case GenderPlural:
		return "plural"
	default:
		return "neuter"
	}
}

// Subjective returns he/she/it/they.
func (g Gender) Subjective() string {
	switch g {
	case GenderMale:
		return "he"
	case GenderFemale:
		return "she"
	case GenderPlural:
		return "they"
	default:
		return "it"
	}
}

// Objective returns him/her/it/them.
func (g Gender) Objective() string {
	switch g {
	case GenderMale:
		return "him"
	case GenderFemale:
		return "her"
	case GenderPlural:
		return "them"
	default:
		return "it"
	}
}

// Possessive returns his/her/its/their.
func (g Gender) Possessive() string {
	switch g {
	case GenderMale:
		return "his"
	case GenderFemale:
		return "her"
	case GenderPlural:
		return "their"
	default:
		return "its"
	}
}

// Reflexive returns himself/herself/itself/themselves.
func (g Gender) Reflexive() string {
	switch g {
	case GenderMale:
		return "himself"
	case GenderFemale:
		return "herself"
	case GenderPlural:
		return "themselves"
	default:
		return "itself"
	}
}

// Entity is the parser's view of a referent, copied out of the world model.
type Entity struct {
	ID       EntityID
	Name     string   // matched case-insensitively
	Title    string   // display name; Name when empty
	Synonyms []string // alternative names, matched like Name
	Kind     Kind
	Gender   Gender
}

// DisplayName returns the title used in rendered messages.
func (e Entity) DisplayName() string {
	if e.Title != "" {
		return e.Title
	}
	return e.Name
}

// Context is the resolution context of a single parse call: the acting
// entity, the ordered referenceable entities and the actor's pronoun state.
// It must be a consistent snapshot; the parser never mutates it.
type Context struct {
	Actor      Entity
	Candidates []Entity
	Pronouns   Pronouns
	// External holds verbs handled outside the soul (movement, look, ...).
	// They are parsed but not rendered.
	External map[string]bool
}

// Lookup finds a referent by id among the candidates and the actor.
func (c *Context) Lookup(id EntityID) (Entity, bool) {
	if id == c.Actor.ID {
		return c.Actor, true
	}
	for _, e := range c.Candidates {
		if e.ID == id {
			return e, true
		}
	}
	return Entity{}, false
}

// PronounSlot is one of the back-reference slots kept per actor.
type PronounSlot int

const (
	SlotHe PronounSlot = iota
	SlotShe
	SlotIt
	SlotThey
)

func (s PronounSlot) String() string {
	switch s {
	case SlotHe:
		return "he"
	case SlotShe:
		return "she"
	case SlotIt:
		return "it"
	default:
		return "they"
	}
}

var pronounSlots = map[string]PronounSlot{
	"he": SlotHe, "him": SlotHe,
	"she": SlotShe, "her": SlotShe,
	"it":   SlotIt,
	"they": SlotThey, "them": SlotThey,
}

// Pronouns is the per-actor back-reference state. It is a value: a parse
// returns an updated copy and the owner of the actor session stores it.
// A slot refers to something only while its bit is set in Bound, so the
// zero value is fully unbound.
type Pronouns struct {
	He    EntityID
	She   EntityID
	It    EntityID
	They  []EntityID
	Bound SlotSet
}

// SlotSet is a bitset of pronoun slots.
type SlotSet uint8

// Has reports whether slot is in the set.
func (s SlotSet) Has(slot PronounSlot) bool { return s&(1<<slot) != 0 }

func (s SlotSet) with(slot PronounSlot) SlotSet    { return s | 1<<slot }
func (s SlotSet) without(slot PronounSlot) SlotSet { return s &^ (1 << slot) }

// NewPronouns returns an unbound pronoun state.
func NewPronouns() Pronouns {
	return Pronouns{He: NoEntity, She: NoEntity, It: NoEntity}
}

// Get returns the entities bound to slot, or nil when it is unbound.
func (p Pronouns) Get(slot PronounSlot) []EntityID {
	if !p.Bound.Has(slot) {
		return nil
	}
	switch slot {
	case SlotHe:
		return []EntityID{p.He}
	case SlotShe:
		return []EntityID{p.She}
	case SlotIt:
		return []EntityID{p.It}
	}
	return append([]EntityID(nil), p.They...)
}

// With returns the state with slot bound to ids. Binding no ids clears the
// slot. He, she and it keep only the first id.
func (p Pronouns) With(slot PronounSlot, ids ...EntityID) Pronouns {
	next := p
	if len(ids) == 0 {
		next.Bound = p.Bound.without(slot)
		switch slot {
		case SlotHe:
			next.He = NoEntity
		case SlotShe:
			next.She = NoEntity
		case SlotIt:
			next.It = NoEntity
		default:
			next.They = nil
		}
		return next
	}
	next.Bound = p.Bound.with(slot)
	switch slot {
	case SlotHe:
		next.He = ids[0]
	case SlotShe:
		next.She = ids[0]
	case SlotIt:
		next.It = ids[0]
	default:
		next.They = append([]EntityID(nil), ids...)
	}
	return next
}

// bind returns the state after referring to targets. The actor is never bound.
func (p Pronouns) bind(actor EntityID, targets []Entity) Pronouns {
	var distinct []Entity
	seen := make(map[EntityID]bool)
	for _, t := range targets {
		if t.ID == actor || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		distinct = append(distinct, t)
	}
	if len(distinct) == 0 {
		return p
	}
	next := p
	for _, t := range distinct {
		switch t.Gender {
		case GenderMale:
			next = next.With(SlotHe, t.ID)
		case GenderFemale:
			next = next.With(SlotShe, t.ID)
		case GenderNeuter:
			next = next.With(SlotIt, t.ID)
		case GenderPlural:
			next = next.With(SlotThey, t.ID)
		}
	}
	if len(distinct) > 1 {
		ids := make([]EntityID, len(distinct))
		for i, t := range distinct {
			ids[i] = t.ID
		}
		next = next.With(SlotThey, ids...)
	}
	return next
}
