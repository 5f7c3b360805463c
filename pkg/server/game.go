package server

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/crystal-mush/gosoul/pkg/boltstore"
	"github.com/crystal-mush/gosoul/pkg/events"
	"github.com/crystal-mush/gosoul/pkg/soul"
	"github.com/crystal-mush/gosoul/pkg/soul/verbdata"
	"github.com/crystal-mush/gosoul/pkg/world"
)

// Game ties the soul to a world, the event bus and the session stores.
// Store, SQLDB and Metrics are optional.
type Game struct {
	Conf     *SoulConf
	World    *world.World
	Bus      *events.Bus
	Store    *boltstore.Store
	SQLDB    *SQLStore
	Metrics  *Metrics
	Help     *HelpFile
	Commands map[string]*Command

	soul atomic.Pointer[soul.Soul]

	sessMu   sync.Mutex
	sessions map[soul.EntityID]*session
}

// session serializes the commands of one actor and caches its pronouns.
type session struct {
	mu       sync.Mutex
	loaded   bool
	pronouns soul.Pronouns
}

// NewGame creates a game over w using table t.
func NewGame(conf *SoulConf, w *world.World, t *soul.Table) *Game {
	if conf == nil {
		conf = DefaultSoulConf()
	}
	g := &Game{
		Conf:     conf,
		World:    w,
		Bus:      events.NewBus(),
		Help:     DefaultHelp(),
		Commands: InitCommands(),
		sessions: make(map[soul.EntityID]*session),
	}
	g.soul.Store(soul.New(t))
	return g
}

// Soul returns the active soul. Commands already running keep the table
// they started with.
func (g *Game) Soul() *soul.Soul { return g.soul.Load() }

// SetTable swaps in a new verb table.
func (g *Game) SetTable(t *soul.Table) {
	g.soul.Store(soul.New(t))
	if g.Metrics != nil {
		g.Metrics.SetVocabulary(t)
	}
}

// AttachMetrics starts recording into m.
func (g *Game) AttachMetrics(m *Metrics) {
	g.Metrics = m
	m.SetVocabulary(g.Soul().Table())
}

// ReloadVerbs rebuilds the table from the configured vocabulary file. On
// failure the active table is kept.
func (g *Game) ReloadVerbs() error {
	t, err := verbdata.LoadTable(g.Conf.VerbsFile, soul.Options{MinVerbAbbrev: g.Conf.MinVerbAbbrev})
	if g.Metrics != nil {
		g.Metrics.ObserveReload(err)
	}
	if err != nil {
		return err
	}
	g.SetTable(t)
	return nil
}

func (g *Game) session(actor soul.EntityID) *session {
	g.sessMu.Lock()
	defer g.sessMu.Unlock()
	s, ok := g.sessions[actor]
	if !ok {
		s = &session{pronouns: soul.NewPronouns()}
		g.sessions[actor] = s
	}
	return s
}

// Pronouns returns the pronoun state of an actor.
func (g *Game) Pronouns(actor soul.EntityID) (soul.Pronouns, error) {
	s := g.session(actor)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := g.loadPronouns(actor, s); err != nil {
		return soul.Pronouns{}, err
	}
	return s.pronouns, nil
}

func (g *Game) loadPronouns(actor soul.EntityID, s *session) error {
	if s.loaded || g.Store == nil {
		s.loaded = true
		return nil
	}
	p, _, err := g.Store.LoadPronouns(actor)
	if err != nil {
		return err
	}
	s.pronouns = p
	s.loaded = true
	return nil
}

// Logout drops the cached session of an actor. Stored pronoun state stays.
func (g *Game) Logout(actor soul.EntityID) {
	g.sessMu.Lock()
	defer g.sessMu.Unlock()
	delete(g.sessions, actor)
}

// Dispatch runs one line of input for actor. Everything the players see is
// delivered through the bus: the rendered messages, pronoun assumptions as
// notices and parse failures as errors to the actor. The returned error is
// reserved for failures of the engine itself.
func (g *Game) Dispatch(actor soul.EntityID, input string) error {
	start := time.Now()
	if len(input) > g.Conf.MaxInputLen {
		g.Bus.EmitTo(actor, events.Event{Type: events.EvError, Source: actor, Text: "That command is too long."})
		g.observe("too_long", start)
		return nil
	}

	sess := g.session(actor)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	ctx, room, err := g.World.SnapshotRoom(actor, g.Conf.MaxCandidates)
	if err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	for name := range g.Commands {
		ctx.External[name] = true
	}
	if err := g.loadPronouns(actor, sess); err != nil {
		return fmt.Errorf("dispatch: loading pronouns of #%d: %w", actor, err)
	}
	ctx.Pronouns = sess.pronouns

	s := g.Soul()
	a, err := s.Parse(input, ctx)
	if err != nil {
		g.Bus.EmitTo(actor, events.Event{
			Type:   events.EvError,
			Source: actor,
			Room:   room,
			Text:   err.Error(),
			Data:   map[string]any{"kind": soul.ErrorKind(err)},
		})
		g.observe(soul.ErrorKind(err), start)
		return nil
	}

	for _, as := range a.Assumptions {
		g.Bus.EmitTo(actor, events.Event{Type: events.EvNotice, Source: actor, Room: room, Verb: a.Verb, Text: as.String()})
	}
	sess.pronouns = a.Pronouns
	if g.Store != nil {
		if err := g.Store.SavePronouns(actor, a.Pronouns); err != nil {
			log.Printf("dispatch: saving pronouns of #%d: %v", actor, err)
		}
	}

	if a.External {
		g.runExternal(ctx.Actor, room, a)
		g.observe("external", start)
		return nil
	}
	res := s.Render(a, ctx)
	g.Bus.EmitRendered(room, res)
	if g.Metrics != nil {
		g.Metrics.ObserveRender(res)
	}
	g.observe("ok", start)
	return nil
}

func (g *Game) observe(outcome string, start time.Time) {
	if g.Metrics != nil {
		g.Metrics.ObserveCommand(outcome, time.Since(start))
	}
}

func (g *Game) runExternal(actor soul.Entity, room string, a *soul.Action) {
	if cmd, ok := g.Commands[a.Verb]; ok {
		cmd.Handler(g, actor, room, a)
		return
	}
	g.move(actor, room, a.Verb)
}

// reply sends command output to the actor only.
func (g *Game) reply(actor soul.Entity, room, verb, text string) {
	g.Bus.EmitTo(actor.ID, events.Event{Type: events.EvCommand, Source: actor.ID, Room: room, Verb: verb, Text: text})
}

// History returns the last n lines shown to an observer.
func (g *Game) History(observer soul.EntityID, n int) ([]ScrollbackEntry, error) {
	if g.SQLDB == nil {
		return nil, fmt.Errorf("scrollback is not configured")
	}
	if n <= 0 {
		n = g.Conf.ScrollbackLimit
	}
	return g.SQLDB.History(observer, n)
}
