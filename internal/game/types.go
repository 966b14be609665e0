package game

type Team string

const (
	TeamNone Team = ""
	Team1    Team = "team1"
	Team2    Team = "team2"
)

type Phase string

const (
	PhaseLobby           Phase = "lobby"
	PhaseActiveRound     Phase = "active_round"
	PhaseReveal          Phase = "reveal"
	PhaseSpeedRound      Phase = "speed_round"
	PhaseSpeedRoundEnded Phase = "speed_round_ended"
)

const (
	MaxPlayers         = 10
	MinPlayersToStart  = 4
	DefaultSpeedRound  = 60 // seconds
	DefaultAutoAdvance = 8  // seconds
)

type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
	Team   Team   `json:"team"`
}

// Settings are stored verbatim as sent by the room. Time is the per-round
// limit in seconds, SpeedTime the speed-round limit.
type Settings struct {
	Language  string `json:"language"`
	Category  string `json:"category"`
	Time      int    `json:"time"`
	Rounds    int    `json:"rounds"`
	SpeedTime int    `json:"speedTime,omitempty"`
}

func DefaultSettings() Settings {
	return Settings{Language: "persian", Category: "easy", Time: 60, Rounds: 5}
}

// DrawEvent is an opaque, ordered stroke record. The server never interprets
// it beyond role checks; it is appended to the team log and relayed.
type DrawEvent struct {
	Room  string  `json:"room"`
	Type  string  `json:"type"` // start | draw | stop | clear
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color,omitempty"`
	Size  float64 `json:"size,omitempty"`
}

type GuessEntry struct {
	PlayerName string `json:"playerName"`
	Guess      string `json:"guess"`
}

type TeamRound struct {
	Drawings []DrawEvent  `json:"drawings"`
	Guesses  []GuessEntry `json:"guesses"`
}

type RoundData struct {
	Team1 TeamRound `json:"team1"`
	Team2 TeamRound `json:"team2"`
}

type Scores struct {
	Team1 int `json:"team1"`
	Team2 int `json:"team2"`
}

type Drawers struct {
	Team1 *Player `json:"team1"`
	Team2 *Player `json:"team2"`
}

// DrawerIDs carries the per-team drawer connection ids sent with roundWord.
type DrawerIDs struct {
	Team1 *string `json:"team1"`
	Team2 *string `json:"team2"`
}

// RoundRecord freezes one round at reveal time for history and review.
type RoundRecord struct {
	ID     string    `json:"id"`
	Round  int       `json:"round"`
	Data   RoundData `json:"data"`
	Word   string    `json:"word"`
	Scores Scores    `json:"scores"`
	Winner Team      `json:"winner,omitempty"`
}
