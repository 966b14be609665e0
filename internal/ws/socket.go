// Package ws wires the socket.io protocol surface to the game registry and
// implements the audience-addressed fan-out on socket.io rooms: the whole
// room shares room <code>, each team additionally joins <code>-team1 or
// <code>-team2.
package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog/log"

	"github.com/parinaz-abbasi/Persianary/internal/game"
	"github.com/parinaz-abbasi/Persianary/internal/wordbank"
)

// ConnCtx is the per-connection state stored on the socket.
type ConnCtx struct {
	Code string
	Name string
	Team game.Team
}

type Server struct {
	io  *socketio.Server
	reg *game.Registry

	mu    sync.RWMutex
	conns map[string]socketio.Conn        // socketID -> Conn
	teams map[string]map[string]game.Team // roomCode -> socketID -> team
}

func New() *Server {
	return &Server{
		conns: make(map[string]socketio.Conn),
		teams: make(map[string]map[string]game.Team),
	}
}

func (srv *Server) SetRegistry(reg *game.Registry) { srv.reg = reg }

// Mount attaches the socket.io server with all game handlers to the Gin engine.
func (srv *Server) Mount(r *gin.Engine) *socketio.Server {
	io := socketio.NewServer(nil)
	srv.io = io

	io.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext(&ConnCtx{})
		srv.addConn(s)
		log.Info().Str("sid", s.ID()).Msg("socket connected")
		return nil
	})

	io.OnEvent("/", "joinRoom", func(s socketio.Conn, payload struct {
		RoomCode   string `json:"roomCode"`
		PlayerName string `json:"playerName"`
	}) {
		srv.handleJoinRoom(s, payload.RoomCode, payload.PlayerName)
	})

	io.OnEvent("/", "updateSettings", func(s socketio.Conn, payload struct {
		RoomCode string        `json:"roomCode"`
		Settings game.Settings `json:"settings"`
	}) {
		room, err := srv.reg.Get(payload.RoomCode)
		if err != nil {
			return
		}
		room.UpdateSettings(payload.Settings)
	})

	io.OnEvent("/", "startGame", func(s socketio.Conn, payload struct {
		RoomCode string          `json:"roomCode"`
		WordBank json.RawMessage `json:"wordBank"`
	}) {
		room, err := srv.reg.Get(payload.RoomCode)
		if err != nil {
			return
		}
		var bank wordbank.Bank
		if len(payload.WordBank) > 0 {
			if bank, err = wordbank.Parse(payload.WordBank); err != nil {
				srv.errTo(s, "Invalid word bank.")
				return
			}
		}
		// too-few-players is a silent no-op; word exhaustion is broadcast by
		// the room itself
		if err := room.Start(bank); err != nil {
			log.Debug().Str("code", room.Code()).Err(err).Msg("startGame rejected")
		}
	})

	io.OnEvent("/", "draw", func(s socketio.Conn, ev game.DrawEvent) {
		room, err := srv.reg.Get(ev.Room)
		if err != nil {
			return
		}
		room.SubmitDrawing(s.ID(), ev)
	})

	io.OnEvent("/", "guess", func(s socketio.Conn, payload struct {
		RoomCode   string `json:"roomCode"`
		Guess      string `json:"guess"`
		PlayerName string `json:"playerName"`
	}) {
		room, err := srv.reg.Get(payload.RoomCode)
		if err != nil {
			return
		}
		room.SubmitGuess(s.ID(), payload.PlayerName, payload.Guess)
	})

	io.OnEvent("/", "endRound", func(s socketio.Conn, payload struct {
		RoomCode string `json:"roomCode"`
	}) {
		room, err := srv.reg.Get(payload.RoomCode)
		if err != nil {
			return
		}
		// non-host requests are silent no-ops
		if err := room.EndRound(s.ID()); err != nil {
			log.Debug().Str("code", room.Code()).Str("sid", s.ID()).Err(err).Msg("endRound rejected")
		}
	})

	io.OnEvent("/", "continueRound", func(s socketio.Conn, payload struct {
		RoomCode string `json:"roomCode"`
	}) {
		room, err := srv.reg.Get(payload.RoomCode)
		if err != nil {
			return
		}
		if err := room.Continue(s.ID()); err != nil {
			log.Debug().Str("code", room.Code()).Str("sid", s.ID()).Err(err).Msg("continueRound rejected")
		}
	})

	io.OnEvent("/", "speedGuess", func(s socketio.Conn, payload struct {
		RoomCode   string `json:"roomCode"`
		Guess      string `json:"guess"`
		PlayerName string `json:"playerName"`
	}) {
		room, err := srv.reg.Get(payload.RoomCode)
		if err != nil {
			return
		}
		room.SpeedGuess(s.ID(), payload.PlayerName, payload.Guess)
	})

	io.OnError("/", func(s socketio.Conn, e error) {
		log.Error().Err(e).Msg("socket error")
	})

	io.OnDisconnect("/", func(s socketio.Conn, reason string) {
		if ctx, ok := s.Context().(*ConnCtx); ok && ctx.Code != "" {
			srv.reg.Leave(ctx.Code, s.ID())
			srv.dropMember(ctx.Code, s.ID())
		}
		srv.removeConn(s.ID())
		log.Info().Str("sid", s.ID()).Str("reason", reason).Msg("socket disconnected")
	})

	go io.Serve()

	r.GET("/socket.io/*any", gin.WrapH(io))
	r.POST("/socket.io/*any", gin.WrapH(io))
	r.OPTIONS("/socket.io/*any", func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Status(http.StatusNoContent)
	})

	return io
}

// handleJoinRoom subscribes the connection to the socket.io room before the
// game-level join runs; the roomUpdate broadcast reflecting this join must
// reach the joiner too, and socket.io only delivers to already-joined conns.
func (srv *Server) handleJoinRoom(s socketio.Conn, roomCode, playerName string) {
	code, err := game.NormalizeCode(roomCode)
	if err != nil {
		// malformed code: drop the event for this connection
		log.Debug().Str("sid", s.ID()).Str("roomCode", roomCode).Err(err).Msg("joinRoom dropped")
		return
	}
	s.Join(code)
	_, player, err := srv.reg.Join(code, s.ID(), playerName)
	if errors.Is(err, game.ErrRoomFull) {
		s.Leave(code)
		s.Emit(game.EventRoomFull)
		return
	}
	if err != nil {
		s.Leave(code)
		return
	}
	s.SetContext(&ConnCtx{Code: code, Name: playerName, Team: player.Team})
	s.Join(teamRoom(code, player.Team))
	srv.trackMember(code, s.ID(), player.Team)
	log.Info().Str("sid", s.ID()).Str("code", code).Str("team", string(player.Team)).Msg("joinRoom")
}

// game.Emitter implementation

func (srv *Server) ToRoom(code, event string, payload any) {
	srv.io.BroadcastToRoom("/", code, event, payload)
}

func (srv *Server) ToTeam(code string, team game.Team, event string, payload any) {
	srv.io.BroadcastToRoom("/", teamRoom(code, team), event, payload)
}

func (srv *Server) ToTeamExcept(code string, team game.Team, exceptID, event string, payload any) {
	srv.mu.RLock()
	defer srv.mu.RUnlock()
	for sid, t := range srv.teams[code] {
		if t != team || sid == exceptID {
			continue
		}
		if c := srv.conns[sid]; c != nil {
			c.Emit(event, payload)
		}
	}
}

func (srv *Server) ToConn(connID, event string, payload any) {
	srv.mu.RLock()
	c := srv.conns[connID]
	srv.mu.RUnlock()
	if c != nil {
		c.Emit(event, payload)
	}
}

func (srv *Server) errTo(s socketio.Conn, message string) {
	s.Emit(game.EventErrorMessage, map[string]any{"message": message})
}

func teamRoom(code string, team game.Team) string {
	return code + "-" + string(team)
}

func (srv *Server) addConn(s socketio.Conn) {
	srv.mu.Lock()
	srv.conns[s.ID()] = s
	srv.mu.Unlock()
}

func (srv *Server) removeConn(sid string) {
	srv.mu.Lock()
	delete(srv.conns, sid)
	srv.mu.Unlock()
}

func (srv *Server) trackMember(code, sid string, team game.Team) {
	srv.mu.Lock()
	if srv.teams[code] == nil {
		srv.teams[code] = make(map[string]game.Team)
	}
	srv.teams[code][sid] = team
	srv.mu.Unlock()
}

func (srv *Server) dropMember(code, sid string) {
	srv.mu.Lock()
	if m := srv.teams[code]; m != nil {
		delete(m, sid)
		if len(m) == 0 {
			delete(srv.teams, code)
		}
	}
	srv.mu.Unlock()
}
