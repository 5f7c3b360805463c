package soul

import (
	"github.com/crystal-mush/gosoul/pkg/lang"
)

// ObserverRole is the perspective a message is rendered for.
type ObserverRole int

const (
	ObserverActor ObserverRole = iota
	ObserverTarget
	ObserverBystander
)

func (r ObserverRole) String() string {
	switch r {
	case ObserverActor:
		return "actor"
	case ObserverTarget:
		return "target"
	default:
		return "bystander"
	}
}

// Message is the text one observer sees.
type Message struct {
	Observer Entity
	Role     ObserverRole
	Text     string
}

// RenderResult holds the rendered messages of an action. Self is the
// actor's text and Room the text for a generic onlooker.
type RenderResult struct {
	Action   *Action
	Self     string
	Room     string
	Messages []Message
	// Degraded is set when a target was no longer in the context at render
	// time and was rendered as "someone".
	Degraded bool
}

// For returns the message rendered for the given observer.
func (r *RenderResult) For(id EntityID) (Message, bool) {
	for _, m := range r.Messages {
		if m.Observer.ID == id {
			return m, true
		}
	}
	return Message{}, false
}

type renderTarget struct {
	Target
	valid bool
}

type renderer struct {
	table   *Table
	a       *Action
	ctx     *Context
	targets [2][]renderTarget
}

// Render expands the action's templates for every observer in ctx. It never
// fails; targets missing from ctx degrade to "someone". External actions
// render nothing.
func (t *Table) Render(a *Action, ctx *Context) *RenderResult {
	res := &RenderResult{Action: a}
	if a.External || a.pattern == nil {
		return res
	}
	r := &renderer{table: t, a: a, ctx: ctx}
	isTarget := make(map[EntityID]bool)
	var notify []Entity
	for _, tg := range a.Targets {
		e, ok := ctx.Lookup(tg.ID)
		if ok {
			tg.Entity = e
		} else {
			res.Degraded = true
		}
		r.targets[tg.Role] = append(r.targets[tg.Role], renderTarget{Target: tg, valid: ok})
		if ok && !isTarget[e.ID] && e.ID != a.Actor.ID && e.Kind.Living() {
			notify = append(notify, e)
		}
		if ok {
			isTarget[e.ID] = true
		}
	}

	tpl := a.pattern.tpl
	res.Self = r.sentence(tpl.self, view{r: r, observer: a.Actor.ID, self: true, second: true})
	res.Messages = append(res.Messages, Message{Observer: a.Actor, Role: ObserverActor, Text: res.Self})
	for _, e := range notify {
		res.Messages = append(res.Messages, Message{
			Observer: e,
			Role:     ObserverTarget,
			Text:     r.sentence(tpl.target, view{r: r, observer: e.ID}),
		})
	}
	for _, e := range ctx.Candidates {
		if e.ID == a.Actor.ID || isTarget[e.ID] || !e.Kind.Living() {
			continue
		}
		res.Messages = append(res.Messages, Message{
			Observer: e,
			Role:     ObserverBystander,
			Text:     r.sentence(tpl.others, view{r: r, observer: e.ID}),
		})
	}
	res.Room = r.sentence(tpl.others, view{r: r, observer: NoEntity})
	return res
}

func (r *renderer) sentence(tpl *template, v view) string {
	action := tpl.expand(v)
	if q := r.a.qual; q != nil {
		wrap := q.others
		if v.self {
			wrap = q.self
		} else if !q.Inflect {
			plain := v
			plain.second = true
			action = r.a.pattern.tpl.self.expand(plain)
		}
		action = wrap.expand(qualView{view: v, action: action})
	}
	subject := r.a.Actor.DisplayName()
	if v.self {
		subject = "You"
	}
	return lang.Fullstop(lang.Capital(subject+" "+action), "")
}

// view renders placeholders from one observer's perspective.
type view struct {
	r        *renderer
	observer EntityID
	self     bool // observer is the actor
	second   bool // verb in second person form
}

func (v view) plain() bool { return v.second || v.r.a.Actor.Gender == GenderPlural }

func (v view) value(name, attr string) string {
	a := v.r.a
	switch name {
	case "actor":
		return v.actor(attr)
	case "who", "t1":
		return v.targetValue(v.r.targets[RoleDirect], attr)
	case "whom", "t2":
		return v.targetValue(v.r.targets[RoleIndirect], attr)
	case "how":
		if a.Adverb != "" {
			return a.Adverb
		}
		return a.verb.DefaultAdverb
	case "where":
		if a.where != "" {
			return a.where
		}
		if e, ok := v.r.table.lex.Lookup(a.verb.DefaultBodypart, CatBodypart); ok && a.verb.DefaultBodypart != "" {
			return e.Fill(FillWhere)
		}
		return ""
	case "part":
		switch {
		case a.Bodypart != "":
			return a.Bodypart
		case a.verb.DefaultBodypart != "":
			return a.verb.DefaultBodypart
		}
		return "body"
	case "dir":
		return a.dir
	case "msg":
		if a.HasMessage {
			return "'" + a.Message + "'"
		}
		return a.verb.DefaultMessage
	case "text":
		if a.HasMessage {
			return a.Message
		}
		return a.verb.DefaultMessage
	case "s":
		if v.plain() {
			return ""
		}
		return "s"
	case "es":
		if v.plain() {
			return ""
		}
		return "es"
	}
	return ""
}

func (v view) actor(attr string) string {
	g := v.r.a.Actor.Gender
	switch attr {
	case "name":
		return v.r.a.Actor.DisplayName()
	case "poss":
		if v.self {
			return "your"
		}
		return g.Possessive()
	case "subj":
		if v.self {
			return "you"
		}
		return g.Subjective()
	case "obj":
		if v.self {
			return "you"
		}
		return g.Objective()
	case "self":
		if v.self {
			return "yourself"
		}
		return g.Reflexive()
	}
	if v.self {
		return "you"
	}
	return v.r.a.Actor.DisplayName()
}

func (v view) name(t renderTarget) string {
	switch {
	case !t.valid:
		return "someone"
	case t.ID == v.r.a.Actor.ID:
		if v.self {
			return "yourself"
		}
		return v.r.a.Actor.Gender.Reflexive()
	case t.ID == v.observer:
		return "you"
	}
	return t.DisplayName()
}

func (v view) possessive(t renderTarget) string {
	switch {
	case !t.valid:
		return "someone's"
	case t.ID == v.r.a.Actor.ID:
		if v.self {
			return "your own"
		}
		return v.r.a.Actor.Gender.Possessive() + " own"
	case t.ID == v.observer:
		return "your"
	}
	return lang.Possessive(t.DisplayName())
}

func (v view) targetValue(ts []renderTarget, attr string) string {
	if len(ts) == 0 {
		return ""
	}
	switch attr {
	case "poss":
		out := make([]string, len(ts))
		for i, t := range ts {
			out[i] = v.possessive(t)
		}
		return lang.JoinPlain(out, "and")
	case "subj", "obj", "is":
		form := v.pronoun(ts, attr == "obj")
		if attr != "is" {
			return form
		}
		if form == "you" || form == "they" {
			return "are"
		}
		return "is"
	}
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = v.name(t)
	}
	return lang.Join(out, "and")
}

func (v view) pronoun(ts []renderTarget, objective bool) string {
	if len(ts) > 1 {
		if objective {
			return "them"
		}
		return "they"
	}
	t := ts[0]
	g := t.Gender
	switch {
	case !t.valid:
		g = GenderPlural
	case t.ID == v.observer:
		return "you"
	case t.ID == v.r.a.Actor.ID && v.self:
		if objective {
			return "yourself"
		}
		return "you"
	}
	if objective {
		return g.Objective()
	}
	return g.Subjective()
}

// qualView exposes the wrapped action to qualifier templates.
type qualView struct {
	view
	action string
}

func (q qualView) value(name, attr string) string {
	if name == "action" {
		return q.action
	}
	return q.view.value(name, attr)
}
