package ws

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rawlph/floodgame/internal/protocol"
	"github.com/rawlph/floodgame/internal/sim/game"
	"github.com/rawlph/floodgame/internal/sim/model"
)

// Server bridges one browser shell to the simulation. It owns the
// websocket side and doubles as the game's shell collaborators: state
// frames, notices and flood signals all leave through here.
//
// Single-player by contract: a new connection replaces the previous
// one.
type Server struct {
	game *game.Game
	log  *log.Logger

	upgrader websocket.Upgrader

	mu          sync.Mutex
	session     *session
	seq         int
	lastEventID string
}

type session struct {
	id    string
	out   chan []byte   // notices, events, errors; queued
	state chan []byte   // latest frame wins
	done  chan struct{}
}

// NewServer builds the bridge without a game: the game needs the
// shell collaborators at construction, so the two are tied together
// with Bind afterwards.
func NewServer(logger *log.Logger) *Server {
	return &Server{
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Bind attaches the simulation. Must happen before Handler serves.
func (s *Server) Bind(g *game.Game) { s.game = g }

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sess := s.handshake(conn)
		if sess == nil {
			return
		}
		defer s.drop(sess)

		// Writer goroutine: out is drained first, state frames are
		// best-effort latest-wins.
		go func() {
			for {
				var b []byte
				select {
				case <-sess.done:
					return
				case b = <-sess.out:
				case b = <-sess.state:
				}
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					s.closeSession(sess)
					return
				}
			}
		}()

		s.readLoop(conn, sess)
	}
}

func (s *Server) readLoop(conn *websocket.Conn, sess *session) {
	for {
		_ = conn.SetReadDeadline(time.Now().Add(10 * time.Minute))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			s.closeSession(sess)
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil || base.Type != protocol.TypeAct {
			s.sendError(sess, protocol.ErrProtoBadRequest, "expected ACT")
			continue
		}
		var act protocol.ActMsg
		if err := json.Unmarshal(msg, &act); err != nil {
			s.sendError(sess, protocol.ErrProtoBadRequest, "malformed ACT")
			continue
		}
		s.dispatchAct(sess, act)
	}
}

// dispatchAct forwards one shell command onto the simulation
// goroutine. Validation that needs simulation state happens there;
// failures come back as ERROR messages.
func (s *Server) dispatchAct(sess *session, act protocol.ActMsg) {
	g := s.game
	switch act.Verb {
	case protocol.ActMove:
		if act.Move == nil {
			s.sendError(sess, protocol.ErrBadRequest, "move verb without payload")
			return
		}
		mv := *act.Move
		g.Dispatch(func() {
			g.SetMove(model.Vec2{X: mv.X, Z: mv.Z}, clamp01(mv.Intensity))
		})
	case protocol.ActAction:
		g.Dispatch(func() {
			switch {
			case !g.Started():
				s.sendError(sess, protocol.ErrNotStarted, "no run in progress")
			case g.Manager().Scene() == nil:
				s.sendError(sess, protocol.ErrSceneNotReady, "the world is still forming")
			default:
				g.ActionPressed()
			}
		})
	case protocol.ActPause:
		g.Dispatch(g.PauseGame)
	case protocol.ActResume:
		g.Dispatch(g.ResumeGame)
	case protocol.ActStart:
		a := model.Archetype(act.Archetype)
		g.Dispatch(func() {
			if err := g.StartGame(a); err != nil {
				s.sendError(sess, protocol.ErrBadArchetype, err.Error())
			}
		})
	case protocol.ActRestart:
		full := act.Full
		g.Dispatch(func() {
			if err := g.RestartGame(full); err != nil {
				s.sendError(sess, protocol.ErrInternal, err.Error())
			}
		})
	case protocol.ActChoose:
		if act.Choice == nil {
			s.sendError(sess, protocol.ErrBadChoice, "choose verb without index")
			return
		}
		idx := *act.Choice
		g.Dispatch(func() {
			if g.Engine().Active() == nil {
				s.sendError(sess, protocol.ErrNoActiveEvent, "no event awaiting a choice")
				return
			}
			g.ChooseEvent(idx)
		})
	default:
		s.sendError(sess, protocol.ErrBadRequest, "unknown verb "+act.Verb)
	}
}

func (s *Server) handshake(conn *websocket.Conn) *session {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"),
			time.Now().Add(time.Second))
		return nil
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return nil
	}
	if hello.ProtocolVersion != protocol.Version {
		// The error frame names the code before the close frame so
		// the shell can tell a version skew from a transport drop.
		if b, err := json.Marshal(protocol.ErrorMsg{
			Type:    protocol.TypeError,
			Code:    protocol.ErrProtoVersion,
			Message: "unsupported protocol_version " + hello.ProtocolVersion,
		}); err == nil {
			_ = conn.SetWriteDeadline(time.Now().Add(time.Second))
			_ = conn.WriteMessage(websocket.TextMessage, b)
		}
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"),
			time.Now().Add(time.Second))
		return nil
	}

	s.mu.Lock()
	s.seq++
	sess := &session{
		id:    fmt.Sprintf("S%d", s.seq),
		out:   make(chan []byte, 32),
		state: make(chan []byte, 1),
		done:  make(chan struct{}),
	}
	prev := s.session
	s.session = sess
	s.mu.Unlock()
	if prev != nil {
		s.closeSession(prev)
	}

	// The welcome snapshot is taken on the simulation goroutine.
	type welcome struct {
		msg protocol.WelcomeMsg
	}
	respCh := make(chan welcome, 1)
	s.game.Dispatch(func() {
		gs := s.game.State()
		names := make([]string, 0, len(model.Archetypes))
		for _, a := range model.Archetypes {
			names = append(names, string(a))
		}
		respCh <- welcome{msg: protocol.WelcomeMsg{
			Type:            protocol.TypeWelcome,
			ProtocolVersion: protocol.Version,
			SessionID:       sess.id,
			NewGame:         gs.NewGame,
			Stage:           string(gs.Stage),
			Archetypes:      names,
			Restarts:        gs.Restarts,
		}}
	})

	select {
	case resp := <-respCh:
		b, err := json.Marshal(resp.msg)
		if err != nil {
			return nil
		}
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			return nil
		}
	case <-time.After(5 * time.Second):
		return nil
	}
	return sess
}

func (s *Server) closeSession(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-sess.done:
	default:
		close(sess.done)
	}
}

func (s *Server) drop(sess *session) {
	s.closeSession(sess)
	s.mu.Lock()
	if s.session == sess {
		s.session = nil
	}
	s.mu.Unlock()
}

func (s *Server) current() *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

func (s *Server) send(v any) {
	sess := s.current()
	if sess == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		if s.log != nil {
			s.log.Printf("[ws] marshal: %v", err)
		}
		return
	}
	select {
	case sess.out <- b:
	case <-sess.done:
	default:
		// Slow client: drop rather than stall the simulation.
	}
}

func (s *Server) sendError(sess *session, code, message string) {
	b, err := json.Marshal(protocol.ErrorMsg{Type: protocol.TypeError, Code: code, Message: message})
	if err != nil {
		return
	}
	select {
	case sess.out <- b:
	case <-sess.done:
	default:
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
