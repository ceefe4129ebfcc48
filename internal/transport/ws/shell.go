package ws

import (
	"encoding/json"

	"github.com/rawlph/floodgame/internal/protocol"
	"github.com/rawlph/floodgame/internal/sim/game"
	"github.com/rawlph/floodgame/internal/sim/model"
	"github.com/rawlph/floodgame/internal/sim/stage"
)

// Shell assembles the collaborator set the game wants. The HUD and
// Controls contracts share a method name with different signatures,
// so they get thin adapter types.
func (s *Server) Shell() game.Shell {
	return game.Shell{
		HUD:      hudAdapter{s},
		Controls: controlsAdapter{s},
		Notifier: s,
		Visual:   s,
		State:    s,
	}
}

// PublishState converts the frame snapshot to the wire shape. Frames
// are latest-wins: an unread one is replaced, never queued.
func (s *Server) PublishState(snap game.Snapshot) {
	sess := s.current()
	if sess == nil {
		return
	}
	s.announceEvent(snap)

	msg := protocol.StateMsg{
		Type:             protocol.TypeState,
		Stage:            string(snap.Stage),
		Phase:            snap.Phase.String(),
		Timer:            snap.Timer,
		Resources:        snap.Resources,
		ResourceGoal:     snap.ResourceGoal,
		Restarts:         snap.Restarts,
		HighestResources: snap.HighestResources,
		EvolutionType:    string(snap.EvolutionType),
		Paused:           snap.Paused,
		NewGame:          snap.NewGame,
		WillToLive:       snap.WillToLive,
		Player:           protocol.Vec{X: snap.PlayerPos.X, Z: snap.PlayerPos.Z},
		Camera:           protocol.Vec{X: snap.CameraTarget.X, Z: snap.CameraTarget.Z},
		Traits:           snap.Traits,
		EventCooldown:    snap.EventCooldown,
	}
	for _, tr := range snap.Triggers {
		msg.Triggers = append(msg.Triggers, protocol.TriggerRef{
			ID:     tr.ID,
			Pos:    protocol.Vec{X: tr.Pos.X, Z: tr.Pos.Z},
			Active: tr.Active,
		})
	}
	if snap.Summary.EventCount > 0 {
		msg.Summary = &protocol.ChoiceSummary{
			Counts:        snap.Summary.Counts,
			DominantTrait: snap.Summary.DominantTrait,
			EventCount:    snap.Summary.EventCount,
		}
	}

	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	for {
		select {
		case sess.state <- b:
			return
		case <-sess.done:
			return
		default:
			select {
			case <-sess.state: // discard the stale frame
			default:
			}
		}
	}
}

// announceEvent sends the EVENT message once per opened event.
func (s *Server) announceEvent(snap game.Snapshot) {
	s.mu.Lock()
	last := s.lastEventID
	if snap.ActiveEvent == nil {
		s.lastEventID = ""
	} else {
		s.lastEventID = snap.ActiveEvent.ID
	}
	s.mu.Unlock()

	if snap.ActiveEvent == nil || snap.ActiveEvent.ID == last {
		return
	}
	choices := make([]string, 0, len(snap.ActiveEvent.Choices))
	for _, c := range snap.ActiveEvent.Choices {
		choices = append(choices, c.Text)
	}
	s.send(protocol.EventMsg{
		Type:        protocol.TypeEvent,
		ID:          snap.ActiveEvent.ID,
		Title:       snap.ActiveEvent.Title,
		Description: snap.ActiveEvent.Description,
		Choices:     choices,
	})
}

// Notify implements the player's notification channel.
func (s *Server) Notify(severity, text string) {
	s.send(protocol.NoticeMsg{Type: protocol.TypeNotice, Severity: severity, Text: text})
}

func (s *Server) ShowEvolutionNotification(title, text string) {
	s.send(protocol.NoticeMsg{Type: protocol.TypeNotice, Severity: "info", Title: title, Text: text})
}

// RebuildPlayerVisual is informational here: the shell derives the
// player's appearance from the traits in every STATE frame.
func (s *Server) RebuildPlayerVisual() {}

// FloodSignal forwards the scene's flood presentation cues.
func (s *Server) FloodSignal(kind string) {
	s.send(protocol.NoticeMsg{Type: protocol.TypeNotice, Severity: "event", Text: "flood:" + kind})
}

type hudAdapter struct{ s *Server }

func (h hudAdapter) ConfigureForStage(st model.Stage, cfg stage.Config) {
	if h.s.log != nil {
		h.s.log.Printf("[ws] hud configured for %s (%ds, goal %d)", st, cfg.TimerSeconds, cfg.ResourceGoal)
	}
}

func (h hudAdapter) ShowFloodWarning(on bool) {
	if on {
		h.s.Notify("warn", "The water is rising.")
	}
}

func (h hudAdapter) ShowEvolutionNotification(title, text string) {
	h.s.ShowEvolutionNotification(title, text)
}

type controlsAdapter struct{ s *Server }

func (c controlsAdapter) ConfigureForStage(st model.Stage) {
	if c.s.log != nil {
		c.s.log.Printf("[ws] controls configured for %s", st)
	}
}
