package events

import "github.com/crystal-mush/gosoul/pkg/soul"

// EventType classifies events for transport-specific encoding.
type EventType int

const (
	EvText    EventType = iota // Raw text (universal fallback)
	EvEmote                    // Rendered social action
	EvNotice                   // Pronoun assumption and similar hints to the actor
	EvError                    // Parse failure, sent to the actor only
	EvCommand                  // Output of a built-in command (look, verbs, help)
)

// String returns a human-readable name for the event type.
func (t EventType) String() string {
	switch t {
	case EvText:
		return "text"
	case EvEmote:
		return "emote"
	case EvNotice:
		return "notice"
	case EvError:
		return "error"
	case EvCommand:
		return "command"
	default:
		return "unknown"
	}
}

// Event is one message delivered to one observer.
type Event struct {
	Type     EventType
	Observer soul.EntityID // Recipient
	Source   soul.EntityID // Actor that caused the event
	Room     string        // Room context
	Verb     string        // Social verb (EvEmote)
	Role     string        // actor, target or bystander (EvEmote)
	Text     string
	Data     map[string]any // Structured data for JSON clients
}
