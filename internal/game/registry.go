package game

import (
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/parinaz-abbasi/Persianary/internal/wordbank"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrInvalidRoomCode  = errors.New("invalid room code")
	ErrRoomFull         = errors.New("room full")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrNotHost          = errors.New("not host")
	ErrInvalidPhase     = errors.New("invalid phase for action")
	ErrNoWords          = errors.New("no words available")
)

// errRoomClosed never escapes the registry; a join that hits an emptied-out
// room is retried against a fresh one.
var errRoomClosed = errors.New("room closed")

var roomCodeRe = regexp.MustCompile(`^[A-Z0-9]{4}$`)

// Options configure every room a registry creates.
type Options struct {
	DefaultBank       wordbank.Bank
	AutoAdvance       time.Duration
	SpeedRoundSeconds int
	ExportEnabled     bool
	ExportFile        string
}

// Registry owns the process-wide mapping from room code to room. Rooms are
// created lazily on first join and destroyed the moment they empty out.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[string]*Room
	emitter Emitter
	opts    Options
}

func NewRegistry(emitter Emitter, opts Options) *Registry {
	return &Registry{rooms: make(map[string]*Room), emitter: emitter, opts: opts}
}

// NormalizeCode folds a client-supplied code to its canonical uppercase form.
func NormalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !roomCodeRe.MatchString(code) {
		return "", ErrInvalidRoomCode
	}
	return code, nil
}

// Join resolves or creates the room for code and adds the player to it.
func (reg *Registry) Join(code, connID, name string) (*Room, Player, error) {
	code, err := NormalizeCode(code)
	if err != nil {
		return nil, Player{}, err
	}
	for {
		reg.mu.Lock()
		room := reg.rooms[code]
		if room == nil {
			room = newRoom(code, reg.emitter, reg.opts)
			reg.rooms[code] = room
			log.Info().Str("code", code).Msg("room created")
		}
		reg.mu.Unlock()

		p, err := room.Join(connID, name)
		if errors.Is(err, errRoomClosed) {
			// lost the race against the last player's teardown; drop the
			// stale mapping and go around again
			reg.mu.Lock()
			if reg.rooms[code] == room {
				delete(reg.rooms, code)
			}
			reg.mu.Unlock()
			continue
		}
		if err != nil {
			return nil, Player{}, err
		}
		return room, p, nil
	}
}

func (reg *Registry) Get(code string) (*Room, error) {
	code, err := NormalizeCode(code)
	if err != nil {
		return nil, err
	}
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room := reg.rooms[code]
	if room == nil {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// Leave removes the connection from the room and destroys the room if it is
// now empty. An empty room has closed itself under its own lock, so no join
// can re-populate it between the leave and the delete below.
func (reg *Registry) Leave(code, connID string) {
	room, err := reg.Get(code)
	if err != nil {
		return
	}
	removed, empty := room.Leave(connID)
	if !removed {
		return
	}
	if empty {
		reg.mu.Lock()
		if reg.rooms[room.Code()] == room {
			delete(reg.rooms, room.Code())
		}
		reg.mu.Unlock()
		log.Info().Str("code", room.Code()).Msg("room destroyed")
	}
}

func (reg *Registry) RoomCount() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}
