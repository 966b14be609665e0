package game

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/parinaz-abbasi/Persianary/internal/wordbank"
)

// Room is one isolated game session. All mutations go through the mutex;
// handlers run to completion before the next one touches the state, which is
// what keeps the solved-flag/score check race-free.
type Room struct {
	code    string
	emitter Emitter

	mu       sync.Mutex
	closed   bool
	players  []*Player
	team1    []*Player
	team2    []*Player
	settings Settings
	phase    Phase

	bank      wordbank.Bank
	round     int
	drawers   Drawers
	word      wordbank.Entry
	roundData RoundData
	solved    bool
	scores    Scores
	usedWords []string
	history   []RoundRecord

	pendingNext bool
	autoAdvance *time.Timer

	speedWords  []string
	speedActive bool

	// wiring and knobs, fixed at creation
	defaultBank      wordbank.Bank
	tickEvery        time.Duration
	autoAdvanceAfter time.Duration
	speedSeconds     int
	exportEnabled    bool
	exportFile       string

	timer *countdown
}

func newRoom(code string, emitter Emitter, opts Options) *Room {
	r := &Room{
		code:             code,
		emitter:          emitter,
		settings:         DefaultSettings(),
		phase:            PhaseLobby,
		defaultBank:      opts.DefaultBank,
		tickEvery:        time.Second,
		autoAdvanceAfter: opts.AutoAdvance,
		speedSeconds:     opts.SpeedRoundSeconds,
		exportEnabled:    opts.ExportEnabled,
		exportFile:       opts.ExportFile,
	}
	if r.autoAdvanceAfter <= 0 {
		r.autoAdvanceAfter = DefaultAutoAdvance * time.Second
	}
	if r.speedSeconds <= 0 {
		r.speedSeconds = DefaultSpeedRound
	}
	return r
}

func (r *Room) Code() string { return r.code }

func (r *Room) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Join adds a player, balancing toward the smaller team (ties go to team1).
// The first joiner becomes host. Returns a snapshot of the created player so
// the transport can subscribe the connection to its team channel.
func (r *Room) Join(connID, name string) (Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return Player{}, errRoomClosed
	}
	if len(r.players) >= MaxPlayers {
		return Player{}, ErrRoomFull
	}
	p := &Player{ID: connID, Name: name, IsHost: len(r.players) == 0}
	r.players = append(r.players, p)
	if len(r.team1) <= len(r.team2) {
		p.Team = Team1
		r.team1 = append(r.team1, p)
	} else {
		p.Team = Team2
		r.team2 = append(r.team2, p)
	}
	r.broadcastRoomUpdateLocked()
	return *p, nil
}

// UpdateSettings replaces the settings verbatim. Deliberately not host-gated.
func (r *Room) UpdateSettings(s Settings) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = s
}

func (r *Room) Settings() Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings
}

// Start begins round one. A nil bank falls back to the server's default one.
// If no word can be picked the room broadcasts errorMessage and stays in its
// current phase.
func (r *Room) Start(bank wordbank.Bank) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.players) < MinPlayersToStart {
		return ErrNotEnoughPlayers
	}
	if bank == nil {
		bank = r.defaultBank
	}
	word, ok := wordbank.Pick(bank, r.settings.Language, r.settings.Category, nil)
	if !ok {
		r.emitter.ToRoom(r.code, EventErrorMessage, errorPayload{Message: "No words available for selected language/category."})
		return ErrNoWords
	}

	r.phase = PhaseActiveRound
	r.bank = bank
	r.round = 1
	r.scores = Scores{}
	r.history = nil
	r.roundData = RoundData{}
	r.solved = false
	r.pendingNext = false
	r.cancelAutoAdvanceLocked()
	r.speedActive = false
	r.speedWords = nil
	r.drawers = Drawers{Team1: pickDrawer(r.team1), Team2: pickDrawer(r.team2)}
	r.word = word
	r.usedWords = []string{word.Word}

	log.Info().Str("code", r.code).Int("round", r.round).Str("word", word.Word).Msg("game started")
	r.broadcastRoundStartLocked()
	r.startCountdownLocked(r.settings.Time, EventTimerUpdate, (*Room).revealLocked)
	return nil
}

// SubmitDrawing appends a stroke to the drawer's team log and relays it to
// that team only. Events from anyone but the team's current drawer are
// dropped silently; this softens clock-skew races around round ends.
func (r *Room) SubmitDrawing(connID string, ev DrawEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseActiveRound {
		return
	}
	p := r.findPlayerLocked(connID)
	if p == nil || p.Team == TeamNone {
		return
	}
	drawer := r.drawerForLocked(p.Team)
	if drawer == nil || drawer.ID != connID {
		return
	}
	teamLog := r.teamRoundLocked(p.Team)
	teamLog.Drawings = append(teamLog.Drawings, ev)
	r.emitter.ToTeamExcept(r.code, p.Team, connID, EventDraw, ev)
}

// SubmitGuess records a guess on the guesser's team log and relays it
// team-private. The first normalized exact match marks the round solved and
// scores one point; later matches are recorded but never re-score. Guesses
// from the team's drawer are dropped silently.
func (r *Room) SubmitGuess(connID, playerName, guess string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseActiveRound {
		return
	}
	p := r.findPlayerLocked(connID)
	if p == nil || p.Team == TeamNone {
		return
	}
	if drawer := r.drawerForLocked(p.Team); drawer != nil && drawer.ID == connID {
		return
	}

	teamLog := r.teamRoundLocked(p.Team)
	teamLog.Guesses = append(teamLog.Guesses, GuessEntry{PlayerName: playerName, Guess: guess})
	r.emitter.ToTeam(r.code, p.Team, EventNewGuess, GuessEntry{PlayerName: playerName, Guess: guess})

	if r.solved || wordbank.Normalize(guess) != wordbank.Normalize(r.word.Word) {
		return
	}
	r.solved = true
	r.addScoreLocked(p.Team)
	log.Info().Str("code", r.code).Str("team", string(p.Team)).Str("player", playerName).Msg("correct guess")
	r.emitter.ToRoom(r.code, EventScoreUpdate, r.scores)
	r.emitter.ToTeam(r.code, p.Team, EventCorrectGuess, correctGuessPayload{PlayerName: playerName, Word: r.word.Word})
}

// EndRound is the explicit host trigger; timer expiry reaches the same
// reveal transition directly.
func (r *Room) EndRound(connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.findPlayerLocked(connID)
	if p == nil || !p.IsHost {
		return ErrNotHost
	}
	if r.phase != PhaseActiveRound {
		return ErrInvalidPhase
	}
	r.revealLocked()
	return nil
}

// Continue advances out of the reveal state. Host only; the auto-advance
// timer covers a host that disconnects or never clicks.
func (r *Room) Continue(connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.findPlayerLocked(connID)
	if p == nil || !p.IsHost {
		return ErrNotHost
	}
	if r.phase != PhaseReveal || !r.pendingNext {
		return ErrInvalidPhase
	}
	r.advanceLocked(false)
	return nil
}

// SpeedGuess checks a guess against the remaining speed pool. A hit removes
// the word, scores the team and is announced room-wide; emptying the pool
// ends the speed round immediately.
func (r *Room) SpeedGuess(connID, playerName, guess string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.speedActive {
		return
	}
	p := r.findPlayerLocked(connID)
	if p == nil || p.Team == TeamNone {
		return
	}
	norm := wordbank.Normalize(guess)
	for i, w := range r.speedWords {
		if wordbank.Normalize(w) != norm {
			continue
		}
		r.speedWords = append(r.speedWords[:i], r.speedWords[i+1:]...)
		r.addScoreLocked(p.Team)
		r.emitter.ToRoom(r.code, EventSpeedHit, speedHitPayload{Team: p.Team, PlayerName: playerName, Word: w})
		r.emitter.ToRoom(r.code, EventScoreUpdate, r.scores)
		if len(r.speedWords) == 0 {
			r.endSpeedRoundLocked()
		}
		return
	}
}

// Leave removes a player. It promotes the next host in join order, forces a
// reveal if a current drawer left mid-round, and reports whether the room is
// now empty so the registry can destroy it.
func (r *Room) Leave(connID string) (removed bool, empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := -1
	for i, p := range r.players {
		if p.ID == connID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, false
	}
	gone := r.players[idx]
	r.players = append(r.players[:idx], r.players[idx+1:]...)
	r.team1 = withoutPlayer(r.team1, connID)
	r.team2 = withoutPlayer(r.team2, connID)

	if len(r.players) == 0 {
		r.shutdownLocked()
		return true, true
	}
	if gone.IsHost {
		r.players[0].IsHost = true
	}
	if r.phase == PhaseActiveRound && r.isDrawerLocked(connID) {
		log.Info().Str("code", r.code).Str("sid", connID).Msg("drawer left, forcing reveal")
		r.revealLocked()
	}
	r.broadcastRoomUpdateLocked()
	return true, false
}

// revealLocked freezes the round into a record, broadcasts it and arms the
// auto-advance fallback. Shared by host end, timer expiry and drawer loss.
func (r *Room) revealLocked() {
	r.stopCountdownLocked()
	r.phase = PhaseReveal

	winner := TeamNone
	if r.solved {
		switch {
		case r.scores.Team1 > r.scores.Team2:
			winner = Team1
		case r.scores.Team2 > r.scores.Team1:
			winner = Team2
		}
	}
	rec := RoundRecord{
		ID:     uuid.NewString(),
		Round:  r.round,
		Data:   r.roundData,
		Word:   r.word.Word,
		Scores: r.scores,
		Winner: winner,
	}
	r.history = append(r.history, rec)
	r.emitter.ToRoom(r.code, EventRevealRound, rec)
	r.pendingNext = true
	r.armAutoAdvanceLocked()
}

// advanceLocked moves to the next round or into the speed round. Guarded so
// a late auto-advance and an explicit continue cannot both fire.
func (r *Room) advanceLocked(forced bool) {
	if !r.pendingNext && !forced {
		return
	}
	r.cancelAutoAdvanceLocked()
	r.pendingNext = false
	r.round++
	r.roundData = RoundData{}
	r.solved = false

	if r.round > r.settings.Rounds {
		r.startSpeedRoundLocked()
		return
	}

	r.drawers = Drawers{Team1: pickDrawer(r.team1), Team2: pickDrawer(r.team2)}
	word, ok := wordbank.Pick(r.bank, r.settings.Language, r.settings.Category, r.usedWords)
	if !ok {
		// Terminal: without a word the round cannot start, so end the game
		// instead of leaving the room without a running timer.
		log.Warn().Str("code", r.code).Int("round", r.round).Msg("word bank exhausted, ending game")
		r.emitter.ToRoom(r.code, EventErrorMessage, errorPayload{Message: "No more words available."})
		r.phase = PhaseLobby
		return
	}
	r.word = word
	r.usedWords = append(r.usedWords, word.Word)
	r.phase = PhaseActiveRound
	log.Info().Str("code", r.code).Int("round", r.round).Str("word", word.Word).Msg("round advanced")
	r.broadcastRoundStartLocked()
	r.startCountdownLocked(r.settings.Time, EventTimerUpdate, (*Room).revealLocked)
}

func (r *Room) startSpeedRoundLocked() {
	r.phase = PhaseSpeedRound
	r.speedWords = append([]string(nil), r.usedWords...)
	r.speedActive = true
	log.Info().Str("code", r.code).Int("pool", len(r.speedWords)).Msg("speed round started")
	r.emitter.ToRoom(r.code, EventStartSpeedRound, speedRoundPayload{Words: append([]string(nil), r.speedWords...)})

	secs := r.settings.SpeedTime
	if secs <= 0 {
		secs = r.speedSeconds
	}
	r.startCountdownLocked(secs, EventSpeedTimerUpdate, (*Room).endSpeedRoundLocked)
}

func (r *Room) endSpeedRoundLocked() {
	r.speedActive = false
	r.stopCountdownLocked()
	r.phase = PhaseSpeedRoundEnded
	r.emitter.ToRoom(r.code, EventSpeedRoundEnd, speedEndPayload{Scores: r.scores})
	if r.exportEnabled {
		if err := r.exportLocked(r.exportFile); err != nil {
			log.Error().Err(err).Str("code", r.code).Msg("failed to export game results")
		}
	}
}

// shutdownLocked releases timers when the last player leaves. The closed flag
// is set under the room lock, so a join racing the registry teardown cannot
// re-populate a room that is about to be dropped from the map.
func (r *Room) shutdownLocked() {
	r.closed = true
	r.stopCountdownLocked()
	r.cancelAutoAdvanceLocked()
	r.pendingNext = false
	r.speedActive = false
}

func (r *Room) broadcastRoomUpdateLocked() {
	r.emitter.ToRoom(r.code, EventRoomUpdate, roomUpdatePayload{
		Players:  snapshotPlayers(r.players),
		Team1:    snapshotPlayers(r.team1),
		Team2:    snapshotPlayers(r.team2),
		CanStart: len(r.players) >= MinPlayersToStart,
	})
}

// broadcastRoundStartLocked emits the start sequence: metadata for everyone,
// the shared word with drawer ids (both teams see the word — teammates of the
// guessers are the audience), a direct copy for each drawer, and the masked
// hint.
func (r *Room) broadcastRoundStartLocked() {
	r.emitter.ToRoom(r.code, EventGameStarted, gameStartedPayload{
		Settings:    r.settings,
		Round:       r.round,
		Drawers:     r.drawers,
		TotalRounds: r.settings.Rounds,
	})
	r.emitter.ToRoom(r.code, EventRoundWord, roundWordPayload{
		Word:    r.word.Word,
		Drawers: DrawerIDs{Team1: playerID(r.drawers.Team1), Team2: playerID(r.drawers.Team2)},
	})
	if r.drawers.Team1 != nil {
		r.emitter.ToConn(r.drawers.Team1.ID, EventYourWord, r.word.Word)
	}
	if r.drawers.Team2 != nil {
		r.emitter.ToConn(r.drawers.Team2.ID, EventYourWord, r.word.Word)
	}
	r.emitter.ToRoom(r.code, EventWordHint, strings.Repeat("_", len([]rune(r.word.Word))))
}

func (r *Room) findPlayerLocked(connID string) *Player {
	for _, p := range r.players {
		if p.ID == connID {
			return p
		}
	}
	return nil
}

func (r *Room) drawerForLocked(team Team) *Player {
	switch team {
	case Team1:
		return r.drawers.Team1
	case Team2:
		return r.drawers.Team2
	}
	return nil
}

func (r *Room) isDrawerLocked(connID string) bool {
	return (r.drawers.Team1 != nil && r.drawers.Team1.ID == connID) ||
		(r.drawers.Team2 != nil && r.drawers.Team2.ID == connID)
}

func (r *Room) teamRoundLocked(team Team) *TeamRound {
	if team == Team1 {
		return &r.roundData.Team1
	}
	return &r.roundData.Team2
}

func (r *Room) addScoreLocked(team Team) {
	if team == Team1 {
		r.scores.Team1++
	} else {
		r.scores.Team2++
	}
}

func pickDrawer(team []*Player) *Player {
	if len(team) == 0 {
		return nil
	}
	return team[rand.Intn(len(team))]
}

func playerID(p *Player) *string {
	if p == nil {
		return nil
	}
	id := p.ID
	return &id
}

func withoutPlayer(team []*Player, connID string) []*Player {
	kept := team[:0]
	for _, p := range team {
		if p.ID != connID {
			kept = append(kept, p)
		}
	}
	return kept
}

func snapshotPlayers(ps []*Player) []Player {
	out := make([]Player, 0, len(ps))
	for _, p := range ps {
		out = append(out, *p)
	}
	return out
}
