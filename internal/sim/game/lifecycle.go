package game

import (
	"fmt"

	"github.com/rawlph/floodgame/internal/persistence/archive"
	"github.com/rawlph/floodgame/internal/sim/evolution"
	"github.com/rawlph/floodgame/internal/sim/model"
	"github.com/rawlph/floodgame/internal/sim/player"
)

// Init prepares a session. On a cold start it adopts the persisted
// record (archetype, restart count, high-water mark); progress is
// write-only across sessions, so play always resumes from the first
// stage. Restarts skip the load, the live state already carries it.
func (g *Game) Init(isRestart bool) {
	if !isRestart && g.store != nil {
		rec, ok, err := g.store.LoadRecord()
		switch {
		case err != nil:
			if g.log != nil {
				g.log.Printf("load progress: %v", err)
			}
		case ok:
			g.state.EvolutionType = rec.EvolutionType
			g.state.Restarts = rec.Restarts
			g.state.HighestResources = rec.HighestResources
			g.state.NewGame = false
		}
	}
	g.state.Stage = model.InitialStage
}

// StartGame begins a fresh run with the chosen archetype.
func (g *Game) StartGame(a model.Archetype) error {
	return g.startRun(a, model.InitialStage)
}

// startRun builds the player with restart bonuses and loads the first
// stage. prevStage feeds the flood-warning bonus: surviving knowledge
// only carries over from a final-stage wipe.
func (g *Game) startRun(a model.Archetype, prevStage model.Stage) error {
	b, err := evolution.RestartBonuses(a, g.state.Restarts, prevStage)
	if err != nil {
		return err
	}
	p, err := player.New(g.state, a, &b, g.engine, g.shell.Notifier, g.shell.Visual, g.log, g.cfg.WorldBound)
	if err != nil {
		return err
	}
	g.player = p
	g.state.EvolutionType = a
	g.state.NewGame = false
	g.manager.SetPlayer(p)

	if err := g.manager.LoadStage(model.InitialStage); err != nil {
		return fmt.Errorf("load first stage: %w", err)
	}
	// LoadStage zeroes the counter synchronously; bonus resources land
	// on top of that.
	if b.StartingResources > 0 {
		g.state.AddResources(b.StartingResources)
	}
	if b.FloodWarning {
		g.notify("info", "You remember the flood. The water will return.")
	}
	g.lastPhase = g.manager.Phase()
	return nil
}

// RestartGame restarts after a failed stage (full=false, keeping the
// archetype and earned bonuses) or wipes back to the archetype choice
// (full=true).
func (g *Game) RestartGame(full bool) error {
	if full {
		g.state.ResetFull()
		// Drop any open event and the old run's triggers before the
		// state frame goes out: an unpaused state must never carry an
		// active event.
		g.engine.OnStageLoad(model.InitialStage)
		g.player = nil
		g.manager.SetPlayer(nil)
		g.publish()
		return nil
	}
	failedIn := g.state.Stage
	a := g.state.EvolutionType
	g.state.ResetForRestart()
	g.Init(true)
	return g.startRun(a, failedIn)
}

func (g *Game) onStageFailed() {
	if err := g.RestartGame(false); err != nil {
		if g.log != nil {
			g.log.Printf("restart: %v", err)
		}
		g.notify("warn", "restart failed: "+err.Error())
	}
}

func (g *Game) onRunComplete(achievements []string) {
	g.archiveEntry(archive.KindRunComplete, achievements)
	g.notify("info", "The flood came, and you stood above it.")
}

func (g *Game) onLoadFailed(s model.Stage, err error) {
	g.notify("warn", fmt.Sprintf("could not enter the %s stage: %v", s, err))
}
