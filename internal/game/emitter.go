package game

// Outbound event names. Inbound names live in the ws package next to their
// handlers.
const (
	EventRoomUpdate       = "roomUpdate"
	EventRoomFull         = "roomFull"
	EventGameStarted      = "gameStarted"
	EventRoundWord        = "roundWord"
	EventYourWord         = "yourWord"
	EventWordHint         = "wordHint"
	EventTimerUpdate      = "timerUpdate"
	EventDraw             = "draw"
	EventNewGuess         = "newGuess"
	EventCorrectGuess     = "correctGuess"
	EventScoreUpdate      = "scoreUpdate"
	EventRevealRound      = "revealRound"
	EventStartSpeedRound  = "startSpeedRound"
	EventSpeedTimerUpdate = "speedTimerUpdate"
	EventSpeedHit         = "speedHit"
	EventSpeedRoundEnd    = "speedRoundEnd"
	EventErrorMessage     = "errorMessage"
)

// Emitter is the fan-out contract: every outbound message is addressed to the
// whole room, one team, one team minus the sender, or a single connection.
// Implementations must not call back into the game package.
type Emitter interface {
	ToRoom(code string, event string, payload any)
	ToTeam(code string, team Team, event string, payload any)
	ToTeamExcept(code string, team Team, exceptID string, event string, payload any)
	ToConn(connID string, event string, payload any)
}

type timerPayload struct {
	Time int `json:"time"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type roomUpdatePayload struct {
	Players  []Player `json:"players"`
	Team1    []Player `json:"team1"`
	Team2    []Player `json:"team2"`
	CanStart bool     `json:"canStart"`
}

type gameStartedPayload struct {
	Settings    Settings `json:"settings"`
	Round       int      `json:"round"`
	Drawers     Drawers  `json:"drawers"`
	TotalRounds int      `json:"totalRounds"`
}

type roundWordPayload struct {
	Word    string    `json:"word"`
	Drawers DrawerIDs `json:"drawers"`
}

type correctGuessPayload struct {
	PlayerName string `json:"playerName"`
	Word       string `json:"word"`
}

type speedRoundPayload struct {
	Words []string `json:"words"`
}

type speedHitPayload struct {
	Team       Team   `json:"team"`
	PlayerName string `json:"playerName"`
	Word       string `json:"word"`
}

type speedEndPayload struct {
	Scores Scores `json:"scores"`
}
