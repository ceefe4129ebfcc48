package player

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/rawlph/floodgame/internal/sim/evolution"
	"github.com/rawlph/floodgame/internal/sim/events"
	"github.com/rawlph/floodgame/internal/sim/model"
)

const (
	// actionRadius is the reach of the contextual action probe.
	actionRadius = 3.0

	// Rate limits for the informational no-op notices.
	nothingNearbyEvery = 5 * time.Second
	sceneNotReadyEvery = 3 * time.Second
)

// World is the per-stage scene collaborator as seen from the player.
// Outside the ordered stage GetNearbyVillage always returns nil; outside
// the first stage the will-to-live methods are no-ops.
type World interface {
	GetNearbyResources(pos model.Vec2, radius float64) []model.Resource
	CollectResource(id string) (int, error)
	GetEnvironmentInteractable(pos model.Vec2, radius float64) *model.Environment
	GetNearbyVillage(pos model.Vec2, radius float64) *model.Village
	GetWillToLiveObject() *model.Vec2
	OnWillToLiveFound()
	InteractEnvironment(env model.Environment, traits evolution.Traits) string
	InteractVillage(v model.Village, traits evolution.Traits) string
}

// Notifier is the debug/notification channel toward the shell. Severity
// is one of "info", "warn", "event".
type Notifier interface {
	Notify(severity, text string)
	ShowEvolutionNotification(title, text string)
}

// VisualSink hears about appearance-affecting changes so the shell can
// rebuild the player's representation.
type VisualSink interface {
	RebuildPlayerVisual()
}

// InteractableKind orders the action-resolution priorities.
type InteractableKind int

const (
	KindNone InteractableKind = iota
	KindAwakening
	KindEventTrigger
	KindResource
	KindEnvironment
	KindVillage
)

// Interactable is the resolved target of a contextual action.
type Interactable struct {
	Kind        InteractableKind
	TriggerID   string
	Resource    model.Resource
	Environment model.Environment
	Village     model.Village
	Pos         model.Vec2
}

// Player owns the mutable trait state and resolves the single
// contextual action command. All methods run on the simulation
// goroutine.
type Player struct {
	log       *log.Logger
	state     *model.GameState
	archetype model.Archetype

	traits evolution.Traits
	phil   map[string]float64

	engine   *events.Engine
	notifier Notifier
	visual   VisualSink

	pos   model.Vec2
	bound float64

	now               func() time.Time
	lastNothingNotice time.Time
	lastNotReadyAt    time.Time
}

// New seeds a player from the archetype's base traits, folding in the
// optional restart bonuses.
func New(gs *model.GameState, archetype model.Archetype, bonuses *evolution.Bonuses, engine *events.Engine, notifier Notifier, visual VisualSink, logger *log.Logger, bound float64) (*Player, error) {
	traits, err := evolution.BaseTraits(archetype)
	if err != nil {
		return nil, err
	}
	if bonuses != nil {
		bonuses.Apply(traits)
	}
	p := &Player{
		log:       logger,
		state:     gs,
		archetype: archetype,
		traits:    traits,
		phil: map[string]float64{
			evolution.PhilCompassion:    0,
			evolution.PhilCuriosity:     0,
			evolution.PhilConsciousness: 0,
			evolution.PhilCooperation:   0,
		},
		engine:   engine,
		notifier: notifier,
		visual:   visual,
		bound:    bound,
		now:      time.Now,
	}
	return p, nil
}

func (p *Player) Archetype() model.Archetype { return p.archetype }

func (p *Player) Pos() model.Vec2 { return p.pos }

func (p *Player) SetPos(v model.Vec2) { p.pos = v.Clamp(p.bound) }

// Traits returns a copy; the player is the only writer.
func (p *Player) Traits() evolution.Traits { return p.traits.Clone() }

// Philosophical returns a copy of the philosophical trait vector.
func (p *Player) Philosophical() map[string]float64 {
	out := make(map[string]float64, len(p.phil))
	for k, v := range p.phil {
		out[k] = v
	}
	return out
}

// Move advances the player along dir scaled by intensity, the speed
// trait and dt seconds.
func (p *Player) Move(dir model.Vec2, intensity, dt float64) {
	if dt <= 0 || (dir.X == 0 && dir.Z == 0) {
		return
	}
	l := dir.Len()
	if l > 1 {
		dir = dir.Scale(1 / l)
	}
	speed := p.traits.Get(evolution.TraitSpeed, 1.0) * 4.0
	p.SetPos(p.pos.Add(dir.Scale(speed * intensity * dt)))
}

// ResolveInteractable probes the world in fixed priority order:
// awakening, event trigger, nearest resource, environment, village.
// The order is a deliberate tie-break so narrative content cannot be
// skipped by standing on a resource at the same time.
func (p *Player) ResolveInteractable(pos model.Vec2, world World) Interactable {
	if world == nil {
		return Interactable{Kind: KindNone}
	}

	if p.state.Stage == model.InitialStage && !p.state.WillToLive {
		if wpos := world.GetWillToLiveObject(); wpos != nil && wpos.Dist(pos) <= actionRadius {
			return Interactable{Kind: KindAwakening, Pos: *wpos}
		}
	}

	if t := p.engine.NearbyTrigger(pos, actionRadius); t != nil {
		return Interactable{Kind: KindEventTrigger, TriggerID: t.ID, Pos: t.Pos}
	}

	if res := nearestResource(world.GetNearbyResources(pos, actionRadius), pos); res != nil {
		return Interactable{Kind: KindResource, Resource: *res, Pos: res.Pos}
	}

	if env := world.GetEnvironmentInteractable(pos, actionRadius); env != nil {
		return Interactable{Kind: KindEnvironment, Environment: *env, Pos: env.Pos}
	}

	if p.state.Stage == model.StageOrdered {
		if v := world.GetNearbyVillage(pos, actionRadius); v != nil {
			return Interactable{Kind: KindVillage, Village: *v, Pos: v.Pos}
		}
	}

	return Interactable{Kind: KindNone}
}

func nearestResource(rs []model.Resource, pos model.Vec2) *model.Resource {
	var best *model.Resource
	bestDist := math.MaxFloat64
	for i := range rs {
		d := rs[i].Pos.Dist(pos)
		if d < bestDist {
			bestDist = d
			best = &rs[i]
		}
	}
	return best
}

// PerformAction resolves and executes the contextual action at the
// player's position. Collaborator panics are contained: the frame loop
// must survive a misbehaving scene, so failures degrade to a warning
// notice and a consistent pause/event state.
func (p *Player) PerformAction(world World) {
	defer func() {
		if r := recover(); r != nil {
			if p.log != nil {
				p.log.Printf("player action: recovered: %v", r)
			}
			p.notify("warn", fmt.Sprintf("action failed: %v", r))
		}
	}()

	if world == nil {
		if t := p.now(); t.Sub(p.lastNotReadyAt) >= sceneNotReadyEvery {
			p.lastNotReadyAt = t
			p.notify("info", "the world is still forming")
		}
		return
	}

	it := p.ResolveInteractable(p.pos, world)
	switch it.Kind {
	case KindNone:
		if t := p.now(); t.Sub(p.lastNothingNotice) >= nothingNearbyEvery {
			p.lastNothingNotice = t
			p.notify("info", "nothing within reach")
		}

	case KindAwakening:
		p.state.WillToLive = true
		world.OnWillToLiveFound()
		if p.visual != nil {
			p.visual.RebuildPlayerVisual()
		}
		if p.notifier != nil {
			p.notifier.ShowEvolutionNotification("Will to Live", "Something stirs. The water is no longer everything.")
		}

	case KindEventTrigger:
		if p.engine.TriggerFromObject(it.TriggerID) {
			p.notify("event", "something demands your attention")
		}
		// An exhausted pool stays silent.

	case KindResource:
		amount, err := world.CollectResource(it.Resource.ID)
		if err != nil {
			p.notify("warn", "the resource slipped away")
			return
		}
		gain := p.traits.Get(evolution.TraitResourceGain, 1.0)
		scaled := int(math.Round(float64(amount) * gain))
		p.state.AddResources(scaled)
		p.engine.OnResourceCollected()
		if scaled > 1 {
			p.notify("info", fmt.Sprintf("+%d resources", scaled))
		}

	case KindEnvironment:
		if msg := world.InteractEnvironment(it.Environment, p.traits.Clone()); msg != "" {
			p.notify("info", msg)
		}

	case KindVillage:
		if msg := world.InteractVillage(it.Village, p.traits.Clone()); msg != "" {
			p.notify("info", msg)
		}
	}
}

func (p *Player) notify(severity, text string) {
	if p.notifier != nil {
		p.notifier.Notify(severity, text)
	}
}
