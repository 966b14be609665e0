package ws

import (
	"fmt"
	"testing"

	socketio "github.com/googollee/go-socket.io"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parinaz-abbasi/Persianary/internal/game"
)

// eventSeq records subscription and broadcast steps in the order they happen.
type eventSeq struct {
	entries []string
}

func (q *eventSeq) add(s string) { q.entries = append(q.entries, s) }

func (q *eventSeq) index(s string) int {
	for i, e := range q.entries {
		if e == s {
			return i
		}
	}
	return -1
}

// seqEmitter stands in for the socket.io fan-out behind the registry.
type seqEmitter struct {
	seq *eventSeq
}

func (e *seqEmitter) ToRoom(code, event string, payload any) {
	e.seq.add("broadcast:" + event)
}

func (e *seqEmitter) ToTeam(code string, team game.Team, event string, payload any) {
	e.seq.add("broadcast:" + event)
}

func (e *seqEmitter) ToTeamExcept(code string, team game.Team, exceptID, event string, payload any) {
	e.seq.add("broadcast:" + event)
}

func (e *seqEmitter) ToConn(connID, event string, payload any) {
	e.seq.add("broadcast:" + event)
}

// fakeConn overrides just the socketio.Conn methods the handlers touch;
// anything else panics, which is what we want in a test.
type fakeConn struct {
	socketio.Conn
	id      string
	seq     *eventSeq
	rooms   []string
	emitted []string
	ctx     interface{}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Join(room string) {
	c.rooms = append(c.rooms, room)
	if c.seq != nil {
		c.seq.add("subscribe:" + room)
	}
}

func (c *fakeConn) Leave(room string) {
	kept := c.rooms[:0]
	for _, r := range c.rooms {
		if r != room {
			kept = append(kept, r)
		}
	}
	c.rooms = kept
	if c.seq != nil {
		c.seq.add("unsubscribe:" + room)
	}
}

func (c *fakeConn) Emit(event string, v ...interface{}) {
	c.emitted = append(c.emitted, event)
}

func (c *fakeConn) SetContext(v interface{}) { c.ctx = v }
func (c *fakeConn) Context() interface{}     { return c.ctx }

func newTestServer(seq *eventSeq) *Server {
	srv := New()
	srv.SetRegistry(game.NewRegistry(&seqEmitter{seq: seq}, game.Options{}))
	return srv
}

func TestJoinRoomSubscribesBeforeBroadcast(t *testing.T) {
	seq := &eventSeq{}
	srv := newTestServer(seq)
	c := &fakeConn{id: "sid1", seq: seq}
	srv.addConn(c)

	srv.handleJoinRoom(c, " abcd ", "Alice")

	sub := seq.index("subscribe:ABCD")
	update := seq.index("broadcast:" + game.EventRoomUpdate)
	require.NotEqual(t, -1, sub, "socket must join the room channel")
	require.NotEqual(t, -1, update, "join must broadcast roomUpdate")
	assert.Less(t, sub, update, "the joiner must be subscribed before its own roomUpdate fires")

	assert.Contains(t, c.rooms, "ABCD")
	assert.Contains(t, c.rooms, "ABCD-team1")
	ctx, ok := c.ctx.(*ConnCtx)
	require.True(t, ok)
	assert.Equal(t, "ABCD", ctx.Code)
	assert.Equal(t, game.Team1, ctx.Team)
	assert.Equal(t, game.Team1, srv.teams["ABCD"]["sid1"])
}

func TestJoinRoomInvalidCodeLeavesNoTrace(t *testing.T) {
	seq := &eventSeq{}
	srv := newTestServer(seq)
	c := &fakeConn{id: "sid1", seq: seq}
	srv.addConn(c)

	srv.handleJoinRoom(c, "bad code", "Alice")

	assert.Empty(t, c.rooms, "no channel subscription for a malformed code")
	assert.Empty(t, seq.entries)
	assert.Nil(t, c.ctx)
}

func TestJoinRoomFullUnsubscribesAndRejects(t *testing.T) {
	seq := &eventSeq{}
	srv := newTestServer(seq)
	for i := 0; i < game.MaxPlayers; i++ {
		c := &fakeConn{id: fmt.Sprintf("sid%d", i)}
		srv.addConn(c)
		srv.handleJoinRoom(c, "ABCD", "player")
	}

	late := &fakeConn{id: "late"}
	srv.addConn(late)
	srv.handleJoinRoom(late, "ABCD", "Late")

	assert.Empty(t, late.rooms, "rejected joiner must not stay subscribed")
	assert.Equal(t, []string{game.EventRoomFull}, late.emitted)
	assert.NotContains(t, srv.teams["ABCD"], "late")
}

func TestToTeamExceptFiltersAudience(t *testing.T) {
	srv := New()
	c1 := &fakeConn{id: "sid1"}
	c2 := &fakeConn{id: "sid2"}
	c3 := &fakeConn{id: "sid3"}
	for _, c := range []*fakeConn{c1, c2, c3} {
		srv.addConn(c)
	}
	srv.trackMember("ABCD", "sid1", game.Team1)
	srv.trackMember("ABCD", "sid2", game.Team1)
	srv.trackMember("ABCD", "sid3", game.Team2)

	srv.ToTeamExcept("ABCD", game.Team1, "sid1", game.EventDraw, nil)

	assert.Empty(t, c1.emitted, "the excluded sender must not receive the relay")
	assert.Equal(t, []string{game.EventDraw}, c2.emitted)
	assert.Empty(t, c3.emitted, "the opposing team must not observe drawing events")

	// unknown rooms fan out to nobody
	srv.ToTeamExcept("ZZZZ", game.Team1, "", game.EventDraw, nil)
	assert.Equal(t, []string{game.EventDraw}, c2.emitted)
}

func TestToConnTargetsSingleConnection(t *testing.T) {
	srv := New()
	c1 := &fakeConn{id: "sid1"}
	c2 := &fakeConn{id: "sid2"}
	srv.addConn(c1)
	srv.addConn(c2)

	srv.ToConn("sid2", game.EventYourWord, "کتاب")
	assert.Empty(t, c1.emitted)
	assert.Equal(t, []string{game.EventYourWord}, c2.emitted)

	// unknown connections are a no-op
	srv.ToConn("ghost", game.EventYourWord, "کتاب")
}

func TestTeamRoomNaming(t *testing.T) {
	assert.Equal(t, "ABCD-team1", teamRoom("ABCD", game.Team1))
	assert.Equal(t, "ABCD-team2", teamRoom("ABCD", game.Team2))
}

func TestMembershipTracking(t *testing.T) {
	srv := New()

	srv.trackMember("ABCD", "sid1", game.Team1)
	srv.trackMember("ABCD", "sid2", game.Team2)
	assert.Equal(t, game.Team1, srv.teams["ABCD"]["sid1"])
	assert.Equal(t, game.Team2, srv.teams["ABCD"]["sid2"])

	srv.dropMember("ABCD", "sid1")
	assert.NotContains(t, srv.teams["ABCD"], "sid1")

	// last member leaving clears the room entry entirely
	srv.dropMember("ABCD", "sid2")
	assert.NotContains(t, srv.teams, "ABCD")

	// dropping from unknown rooms is a no-op
	srv.dropMember("ZZZZ", "sid1")
}
