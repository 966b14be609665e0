// Package feed publishes game milestones to Kafka so external consumers
// (stats, moderation, replays) can follow finished rounds without touching
// the game server. Publishing is strictly best-effort: a missing broker
// disables the feed, it never blocks or fails a game.
package feed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/parinaz-abbasi/Persianary/internal/game"
)

type Publisher struct {
	writer *kafka.Writer
}

// New returns nil when endpoint is empty; a nil Publisher is a no-op.
func New(endpoint, topic string) *Publisher {
	if endpoint == "" {
		return nil
	}
	return &Publisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(endpoint),
		Topic:                  topic,
		RequiredAcks:           kafka.RequireAll,
		Async:                  true,
		BatchSize:              1,
		AllowAutoTopicCreation: true,
	}}
}

type envelope struct {
	Room    string    `json:"room"`
	Event   string    `json:"event"`
	Payload any       `json:"payload"`
	At      time.Time `json:"at"`
}

func (p *Publisher) Publish(roomCode, event string, payload any) {
	if p == nil {
		return
	}
	value, err := json.Marshal(envelope{Room: roomCode, Event: event, Payload: payload, At: time.Now().UTC()})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("feed marshal failed")
		return
	}
	if err := p.writer.WriteMessages(context.Background(),
		kafka.Message{Key: []byte(roomCode), Value: value},
	); err != nil {
		log.Error().Err(err).Str("code", roomCode).Str("event", event).Msg("feed publish failed")
	}
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}

// milestones are the room-audience events worth a feed record; per-second
// timer ticks and team-private traffic stay off the wire.
var milestones = map[string]bool{
	game.EventGameStarted:     true,
	game.EventRevealRound:     true,
	game.EventScoreUpdate:     true,
	game.EventStartSpeedRound: true,
	game.EventSpeedRoundEnd:   true,
}

// Tee wraps an emitter and copies milestone room broadcasts to the feed.
type Tee struct {
	next game.Emitter
	pub  *Publisher
}

// NewTee returns next unchanged when the feed is disabled.
func NewTee(next game.Emitter, pub *Publisher) game.Emitter {
	if pub == nil {
		return next
	}
	return &Tee{next: next, pub: pub}
}

func (t *Tee) ToRoom(code, event string, payload any) {
	t.next.ToRoom(code, event, payload)
	if milestones[event] {
		t.pub.Publish(code, event, payload)
	}
}

func (t *Tee) ToTeam(code string, team game.Team, event string, payload any) {
	t.next.ToTeam(code, team, event, payload)
}

func (t *Tee) ToTeamExcept(code string, team game.Team, exceptID, event string, payload any) {
	t.next.ToTeamExcept(code, team, exceptID, event, payload)
}

func (t *Tee) ToConn(connID, event string, payload any) {
	t.next.ToConn(connID, event, payload)
}
