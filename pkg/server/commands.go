package server

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/crystal-mush/gosoul/pkg/events"
	"github.com/crystal-mush/gosoul/pkg/lang"
	"github.com/crystal-mush/gosoul/pkg/soul"
	"github.com/crystal-mush/gosoul/pkg/world"
)

// CommandHandler is the signature for built-in command implementations.
// The soul has already parsed the line: a.Targets holds what resolved and
// a.Unparsed the raw text after the verb.
type CommandHandler func(g *Game, actor soul.Entity, room string, a *soul.Action)

// Command is a non-social command. Its name is passed to the soul as an
// external verb, so it wins over a social verb of the same name.
type Command struct {
	Name    string
	Handler CommandHandler
}

// InitCommands registers the built-in commands.
func InitCommands() map[string]*Command {
	cmds := make(map[string]*Command)

	register := func(name string, handler CommandHandler) {
		cmds[strings.ToLower(name)] = &Command{Name: name, Handler: handler}
	}

	// Communication
	register("say", cmdSay)
	register("pose", cmdPose)
	register("emote", cmdPose)

	// Movement
	register("go", cmdGo)

	// Information
	register("look", cmdLook)
	register("examine", cmdLook)
	register("verbs", cmdVerbs)
	register("adverbs", cmdAdverbs)
	register("help", cmdHelp)

	return cmds
}

// spokenText is the text a say or pose carries. A line that is only a
// quoted literal passes the literal through unchanged; anything else is
// taken as typed.
func spokenText(a *soul.Action) string {
	if a.HasMessage && len(a.Args) == 0 {
		return a.Message
	}
	return a.Unparsed
}

func cmdSay(g *Game, actor soul.Entity, room string, a *soul.Action) {
	msg := spokenText(a)
	if msg == "" {
		g.reply(actor, room, a.Verb, "Say what?")
		return
	}
	name := lang.Capital(actor.DisplayName())
	data := map[string]any{"message": msg, "speaker": name}
	g.Bus.EmitTo(actor.ID, events.Event{
		Type:   events.EvText,
		Source: actor.ID,
		Room:   room,
		Verb:   "say",
		Text:   fmt.Sprintf("You say \"%s\"", msg),
		Data:   data,
	})
	g.Bus.EmitToRoomExcept(g.World, room, actor.ID, events.Event{
		Type:   events.EvText,
		Source: actor.ID,
		Verb:   "say",
		Text:   fmt.Sprintf("%s says \"%s\"", name, msg),
		Data:   data,
	})
}

func cmdPose(g *Game, actor soul.Entity, room string, a *soul.Action) {
	msg := spokenText(a)
	if msg == "" {
		g.reply(actor, room, a.Verb, "Pose what?")
		return
	}
	g.Bus.EmitToRoom(g.World, room, events.Event{
		Type:   events.EvText,
		Source: actor.ID,
		Verb:   "pose",
		Text:   lang.Capital(actor.DisplayName()) + " " + msg,
	})
}

func cmdGo(g *Game, actor soul.Entity, room string, a *soul.Action) {
	if len(a.Args) == 0 {
		g.reply(actor, room, a.Verb, "Go where?")
		return
	}
	g.move(actor, room, a.Args[0])
}

// move walks actor through an exit and shows the new room.
func (g *Game) move(actor soul.Entity, room, exit string) {
	dst, err := g.World.Go(actor.ID, exit)
	if err != nil {
		if errors.Is(err, world.ErrNoExit) {
			g.reply(actor, room, "go", "You can't go that way.")
		} else {
			g.reply(actor, room, "go", "You can't move.")
		}
		return
	}
	name := lang.Capital(actor.DisplayName())
	g.Bus.EmitToRoom(g.World, room, events.Event{
		Type: events.EvText, Source: actor.ID, Verb: "go",
		Text: fmt.Sprintf("%s leaves %s.", name, exit),
	})
	g.Bus.EmitToRoomExcept(g.World, dst, actor.ID, events.Event{
		Type: events.EvText, Source: actor.ID, Verb: "go",
		Text: name + " arrives.",
	})
	g.look(actor, dst)
}

func cmdLook(g *Game, actor soul.Entity, room string, a *soul.Action) {
	if len(a.Targets) > 0 {
		text, err := g.World.Examine(a.Targets[0].ID)
		if err != nil {
			text = "You don't see that here."
		}
		g.reply(actor, room, a.Verb, text)
		return
	}
	if len(a.Unrecognized) > 0 {
		g.reply(actor, room, a.Verb, fmt.Sprintf("You don't see any %s here.", strings.Join(a.Unrecognized, " ")))
		return
	}
	g.look(actor, room)
}

func (g *Game) look(actor soul.Entity, room string) {
	text, err := g.World.Describe(room, actor.ID)
	if err != nil {
		text = "You are nowhere."
	}
	g.reply(actor, room, "look", text)
}

func cmdVerbs(g *Game, actor soul.Entity, room string, a *soul.Action) {
	verbs := g.Soul().Table().Verbs()
	names := make([]string, len(verbs))
	for i, v := range verbs {
		names[i] = v.Name
	}
	sort.Strings(names)
	g.reply(actor, room, a.Verb, fmt.Sprintf("%d verbs:\n%s", len(names), columns(names, 78)))
}

func cmdAdverbs(g *Game, actor soul.Entity, room string, a *soul.Action) {
	prefix := ""
	if len(a.Args) > 0 {
		prefix = a.Args[0]
	}
	var out []string
	for _, w := range g.Soul().Table().Lexicon().Words(soul.CatAdverb) {
		if strings.HasPrefix(w, prefix) {
			out = append(out, w)
		}
	}
	if len(out) == 0 {
		g.reply(actor, room, a.Verb, fmt.Sprintf("No adverbs start with '%s'.", prefix))
		return
	}
	g.reply(actor, room, a.Verb, fmt.Sprintf("%d adverbs:\n%s", len(out), columns(out, 78)))
}

// columns lays words out in fixed-width columns no wider than width.
func columns(words []string, width int) string {
	colw := 0
	for _, w := range words {
		if len(w) > colw {
			colw = len(w)
		}
	}
	colw += 2
	perLine := width / colw
	if perLine < 1 {
		perLine = 1
	}
	var b strings.Builder
	for i, w := range words {
		if i > 0 && i%perLine == 0 {
			b.WriteByte('\n')
		}
		if (i+1)%perLine == 0 || i == len(words)-1 {
			b.WriteString(w)
		} else {
			fmt.Fprintf(&b, "%-*s", colw, w)
		}
	}
	return b.String()
}
