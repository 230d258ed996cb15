package server

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheFkingisback/deep-mine/pkg/game"
	"github.com/TheFkingisback/deep-mine/pkg/store"
)

// reconnectFixture wires a manager, one unstarted shard, and the session
// manager around a mock clock.
func reconnectFixture(t *testing.T) (*ReconnectionManager, *ShardManager, *Shard, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	log := logrus.NewEntry(logrus.New())

	manager := NewShardManager(mock, log, store.NewMemoryStore(), 8)
	shard := NewShard(ShardOptions{
		ID:         "shard-test",
		Seed:       4242,
		MaxPlayers: 8,
		Persist:    store.NewMemoryStore(),
		Clock:      mock,
		Logger:     log,
		OnPlayerRemoved: func(_, playerID string) {
			manager.UnbindPlayer(playerID)
		},
	})
	shard.state = ShardActive

	manager.shards[shard.ID] = shard
	rm := NewReconnectionManager(mock, log, manager)
	return rm, manager, shard, mock
}

func TestReconnectWithinGrace(t *testing.T) {
	rm, manager, shard, mock := reconnectFixture(t)
	seatPlayer(t, shard, mock, "p1", 10, 0)
	manager.BindPlayer("p1", shard.ID)

	rm.OnDisconnect("p1", "One", shard.ID)
	step(shard, mock)
	require.True(t, rm.HasSession("p1"))

	mock.Add(20 * time.Second)

	conn2 := &fakeConn{}
	shardID, ok := rm.TryReconnect("p1", conn2)
	require.True(t, ok, "reconnect inside the grace window succeeds")
	assert.Equal(t, shard.ID, shardID)
	assert.False(t, rm.HasSession("p1"), "a consumed session is cleared")

	step(shard, mock)
	assert.Equal(t, 1, shard.PlayerCount())
}

func TestReconnectAfterGraceFails(t *testing.T) {
	rm, manager, shard, mock := reconnectFixture(t)
	seatPlayer(t, shard, mock, "p1", 10, 0)
	manager.BindPlayer("p1", shard.ID)

	rm.OnDisconnect("p1", "One", shard.ID)
	step(shard, mock)

	mock.Add(31 * time.Second)

	_, ok := rm.TryReconnect("p1", &fakeConn{})
	assert.False(t, ok, "a 31s reconnect is a new session")
	assert.False(t, rm.HasSession("p1"))
}

func TestReconnectUnknownPlayer(t *testing.T) {
	rm, _, _, _ := reconnectFixture(t)
	_, ok := rm.TryReconnect("ghost", &fakeConn{})
	assert.False(t, ok)
}

func TestSweepFinalizesExpiredSessions(t *testing.T) {
	rm, manager, shard, mock := reconnectFixture(t)
	seatPlayer(t, shard, mock, "p1", 10, 0)
	peer, _ := seatPlayer(t, shard, mock, "p2", 12, 0)
	manager.BindPlayer("p1", shard.ID)
	manager.BindPlayer("p2", shard.ID)

	rm.OnDisconnect("p1", "One", shard.ID)
	step(shard, mock)

	mock.Add(game.PlayerDisconnectGrace + time.Second)
	rm.sweep()
	step(shard, mock)

	assert.Equal(t, 1, shard.PlayerCount(), "sweep finalizes the expired seat")
	assert.Nil(t, manager.ShardForPlayer("p1"), "mapping is unlinked")
	assert.NotEmpty(t, peer.ofType("other_player_left"))
}

func TestGraceExpiryIdempotentWithSweep(t *testing.T) {
	// Both the shard's own grace timer and the sweep must converge on
	// "removed" without tripping over each other.
	rm, manager, shard, mock := reconnectFixture(t)
	seatPlayer(t, shard, mock, "p1", 10, 0)
	manager.BindPlayer("p1", shard.ID)

	rm.OnDisconnect("p1", "One", shard.ID)
	step(shard, mock)

	mock.Add(game.PlayerDisconnectGrace + time.Second)
	step(shard, mock) // shard timer fires first
	rm.sweep()        // sweep follows
	step(shard, mock)

	assert.Equal(t, 0, shard.PlayerCount())
	assert.Nil(t, manager.ShardForPlayer("p1"))
}
