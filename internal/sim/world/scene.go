package world

import (
	"fmt"
	"log"
	"math/rand"
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/rawlph/floodgame/internal/sim/evolution"
	"github.com/rawlph/floodgame/internal/sim/model"
	"github.com/rawlph/floodgame/internal/sim/stage"
)

const (
	// resourceRespawnDelay keeps a depleted map winnable.
	resourceRespawnDelay = 12.0

	// noiseThreshold picks the dense patches of the noise field for
	// resource placement.
	noiseThreshold = 0.25

	villageRadius = 6.0
)

// FloodSink hears the flood presentation signals so the shell can
// play them. Optional.
type FloodSink interface {
	FloodSignal(kind string)
}

type resourceNode struct {
	res     model.Resource
	present bool
	respawn float64 // seconds until reappearance when absent
}

// Scene is the in-process world for one stage: scattered resources,
// the awakening object in the first stage, environment pieces, and
// villages in the ordered stage. All methods run on the simulation
// goroutine.
type Scene struct {
	log   *log.Logger
	stage model.Stage
	cfg   stage.Config
	bound float64
	rng   *rand.Rand
	sink  FloodSink

	nodes     map[string]*resourceNode
	envs      []model.Environment
	villages  []model.Village
	awakening *model.Vec2

	warnings  int
	survivals int
	failures  int
}

// NewScene builds a deterministic scene for the stage: the same seed
// yields the same layout.
func NewScene(s model.Stage, cfg stage.Config, seed int64, bound float64, sink FloodSink, logger *log.Logger) (*Scene, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown stage %q", s)
	}
	if bound <= 0 {
		bound = 40
	}
	sc := &Scene{
		log:   logger,
		stage: s,
		cfg:   cfg,
		bound: bound,
		rng:   rand.New(rand.NewSource(seed ^ int64(s.Index()+1)*7919)),
		sink:  sink,
		nodes: map[string]*resourceNode{},
	}
	sc.scatterResources(seed)
	sc.placeEnvironment()
	if s == model.InitialStage {
		pos := sc.randomPos(0.5)
		sc.awakening = &pos
	}
	if s.Final() {
		sc.placeVillages()
	}
	return sc, nil
}

// Factory adapts NewScene to the stage manager's factory contract.
func Factory(seed int64, bound float64, sink FloodSink, logger *log.Logger) stage.SceneFactory {
	return func(s model.Stage, cfg stage.Config) (stage.Scene, error) {
		return NewScene(s, cfg, seed, bound, sink, logger)
	}
}

// scatterResources walks a grid over the playfield and drops a node in
// every dense patch of the noise field. Density is tuned so the total
// available amount comfortably exceeds the stage goal.
func (sc *Scene) scatterResources(seed int64) {
	noise := opensimplex.New(seed + int64(sc.stage.Index()))
	step := sc.bound / 8
	n := 0
	for x := -sc.bound + step; x < sc.bound; x += step {
		for z := -sc.bound + step; z < sc.bound; z += step {
			v := noise.Eval2(x/sc.bound*2, z/sc.bound*2)
			if v < noiseThreshold {
				continue
			}
			n++
			jx := (sc.rng.Float64() - 0.5) * step
			jz := (sc.rng.Float64() - 0.5) * step
			pos := model.Vec2{X: x + jx, Z: z + jz}.Clamp(sc.bound - 2)
			amount := 2 + sc.rng.Intn(4)
			id := fmt.Sprintf("res-%s-%d", sc.stage, n)
			sc.nodes[id] = &resourceNode{
				res:     model.Resource{ID: id, Pos: pos, Amount: amount},
				present: true,
			}
		}
	}
	// A barren noise roll still needs a playable floor.
	for n < 6 {
		n++
		id := fmt.Sprintf("res-%s-f%d", sc.stage, n)
		sc.nodes[id] = &resourceNode{
			res: model.Resource{
				ID:     id,
				Pos:    sc.randomPos(0.9),
				Amount: 2 + sc.rng.Intn(4),
			},
			present: true,
		}
	}
}

var stageEnvironments = map[model.Stage][]string{
	model.StagePrimordial:  {"thermal_vent", "drift_current"},
	model.StagePrehistoric: {"fire_pit", "shelter_cave"},
	model.StageOrdered:     {"standing_stone", "flood_marker"},
}

func (sc *Scene) placeEnvironment() {
	for i, kind := range stageEnvironments[sc.stage] {
		sc.envs = append(sc.envs, model.Environment{
			ID:   fmt.Sprintf("env-%s-%d", sc.stage, i),
			Kind: kind,
			Pos:  sc.randomPos(0.8),
		})
	}
}

func (sc *Scene) placeVillages() {
	names := []string{"Reedholm", "Highwater"}
	for i, name := range names {
		sc.villages = append(sc.villages, model.Village{
			ID:   fmt.Sprintf("village-%d", i),
			Name: name,
			Pos:  sc.randomPos(0.7),
		})
	}
}

func (sc *Scene) randomPos(spread float64) model.Vec2 {
	return model.Vec2{
		X: (sc.rng.Float64()*2 - 1) * sc.bound * spread,
		Z: (sc.rng.Float64()*2 - 1) * sc.bound * spread,
	}
}

func (sc *Scene) GetNearbyResources(pos model.Vec2, radius float64) []model.Resource {
	var out []model.Resource
	for _, n := range sc.nodes {
		if n.present && n.res.Pos.Dist(pos) <= radius {
			out = append(out, n.res)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].Pos.Dist(pos), out[j].Pos.Dist(pos)
		if di != dj {
			return di < dj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// CollectResource removes the node and schedules its respawn elsewhere.
func (sc *Scene) CollectResource(id string) (int, error) {
	n, ok := sc.nodes[id]
	if !ok || !n.present {
		return 0, fmt.Errorf("resource %q not available", id)
	}
	n.present = false
	n.respawn = resourceRespawnDelay
	return n.res.Amount, nil
}

func (sc *Scene) GetEnvironmentInteractable(pos model.Vec2, radius float64) *model.Environment {
	var best *model.Environment
	bestDist := radius
	for i := range sc.envs {
		if d := sc.envs[i].Pos.Dist(pos); d <= bestDist {
			best = &sc.envs[i]
			bestDist = d
		}
	}
	if best == nil {
		return nil
	}
	e := *best
	return &e
}

func (sc *Scene) GetNearbyVillage(pos model.Vec2, radius float64) *model.Village {
	for i := range sc.villages {
		if sc.villages[i].Pos.Dist(pos) <= radius {
			v := sc.villages[i]
			return &v
		}
	}
	return nil
}

func (sc *Scene) GetWillToLiveObject() *model.Vec2 {
	if sc.awakening == nil {
		return nil
	}
	p := *sc.awakening
	return &p
}

func (sc *Scene) OnWillToLiveFound() { sc.awakening = nil }

func (sc *Scene) InteractEnvironment(env model.Environment, traits evolution.Traits) string {
	switch env.Kind {
	case "thermal_vent":
		if traits.Get(evolution.TraitAdaptability, 1.0) > 1.1 {
			return "The heat would cook a lesser cell. You drink it in."
		}
		return "Scalding water roils out of the vent. You keep your distance."
	case "drift_current":
		return "The current carries you a while. It knows where it is going."
	case "fire_pit":
		return "Old embers. Something lived here before the water came."
	case "shelter_cave":
		return "Dry, dark, defensible. Worth remembering."
	case "standing_stone":
		if traits.Get(evolution.TraitConsciousness, 0) > 0 {
			return "The carvings show water over the land, three times over."
		}
		return "A carved stone. The marks mean nothing to you. Yet."
	case "flood_marker":
		return "A pole with old water lines, each higher than the last."
	default:
		return "Nothing of note."
	}
}

func (sc *Scene) InteractVillage(v model.Village, traits evolution.Traits) string {
	influence := traits.Get(evolution.TraitVillageInfluence, 0)
	switch {
	case influence > 1.2:
		return fmt.Sprintf("%s opens its gates. The elders ask about the water.", v.Name)
	case influence > 0:
		return fmt.Sprintf("%s trades with you, warily.", v.Name)
	default:
		return fmt.Sprintf("%s watches you from behind its fences.", v.Name)
	}
}

func (sc *Scene) ShowFloodWarning()  { sc.warnings++; sc.signal("warning") }
func (sc *Scene) ShowFloodSurvival() { sc.survivals++; sc.signal("survival") }
func (sc *Scene) ShowFloodFailure()  { sc.failures++; sc.signal("failure") }

func (sc *Scene) signal(kind string) {
	if sc.sink != nil {
		sc.sink.FloodSignal(kind)
	}
	if sc.log != nil {
		sc.log.Printf("[world] flood %s on %s", kind, sc.stage)
	}
}

// Update advances respawn timers. Respawned nodes come back at a new
// spot so farming a single point does not pay.
func (sc *Scene) Update(dt float64) {
	if dt <= 0 {
		return
	}
	for _, n := range sc.nodes {
		if n.present {
			continue
		}
		n.respawn -= dt
		if n.respawn <= 0 {
			n.present = true
			n.res.Pos = sc.randomPos(0.9)
			n.res.Amount = 2 + sc.rng.Intn(4)
		}
	}
}

// Resources returns the live nodes, sorted by id, for the state frame.
func (sc *Scene) Resources() []model.Resource {
	out := make([]model.Resource, 0, len(sc.nodes))
	for _, n := range sc.nodes {
		if n.present {
			out = append(out, n.res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Environments returns the stage's environment pieces.
func (sc *Scene) Environments() []model.Environment {
	out := make([]model.Environment, len(sc.envs))
	copy(out, sc.envs)
	return out
}

// Villages returns the stage's villages, empty outside the ordered
// stage.
func (sc *Scene) Villages() []model.Village {
	out := make([]model.Village, len(sc.villages))
	copy(out, sc.villages)
	return out
}
