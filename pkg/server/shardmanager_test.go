package server

import (
	"strings"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheFkingisback/deep-mine/pkg/game"
	"github.com/TheFkingisback/deep-mine/pkg/store"
)

func newTestManager() *ShardManager {
	return NewShardManager(clock.NewMock(), logrus.NewEntry(logrus.New()), store.NewMemoryStore(), 8)
}

func TestCreateAndDestroyShard(t *testing.T) {
	m := newTestManager()

	s := m.CreateShard(CreateOptions{})
	require.NotNil(t, s)
	assert.Equal(t, ShardActive, s.State())
	assert.Empty(t, s.RoomCode)
	assert.Equal(t, 8, s.MaxPlayers)

	m.BindPlayer("p1", s.ID)
	m.DestroyShard(s.ID)

	assert.Nil(t, m.ShardForPlayer("p1"), "destroy unlinks player mappings")
	assert.Empty(t, m.Shards())
}

func TestPrivateShardRoomCode(t *testing.T) {
	m := newTestManager()
	defer m.StopAll()

	s := m.CreateShard(CreateOptions{MaxPlayers: 4, Private: true})
	require.Len(t, s.RoomCode, game.RoomCodeLength)
	for _, r := range s.RoomCode {
		assert.True(t, strings.ContainsRune(game.RoomCodeAlphabet, r),
			"room code uses the unambiguous alphabet, got %q", r)
	}

	assert.Equal(t, s, m.ByRoomCode(s.RoomCode))
	assert.Nil(t, m.ByRoomCode("NOPE22"))
	assert.True(t, s.Private())
}

func TestQuickPlayScore(t *testing.T) {
	tests := []struct {
		count, want int
	}{
		{0, 1},
		{1, 5},
		{2, 5},
		{3, 10},
		{6, 10},
		{7, 5},
	}
	for _, tt := range tests {
		if got := quickPlayScore(tt.count); got != tt.want {
			t.Errorf("quickPlayScore(%d) = %d, want %d", tt.count, got, tt.want)
		}
	}
}

func TestQuickPlayPrefersPartFilledShard(t *testing.T) {
	m := newTestManager()
	defer m.StopAll()

	empty := m.CreateShard(CreateOptions{})
	busy := m.CreateShard(CreateOptions{})
	for i := 0; i < 3; i++ {
		id := string(rune('a' + i))
		require.True(t, busy.AddPlayer(&fakeConn{}, game.NewPlayerState(id, id)))
	}

	picked := m.QuickPlay()
	assert.Equal(t, busy.ID, picked.ID, "3 players score above 0")
	assert.NotEqual(t, empty.ID, picked.ID)
}

func TestQuickPlaySkipsPrivateAndFull(t *testing.T) {
	m := newTestManager()
	defer m.StopAll()

	private := m.CreateShard(CreateOptions{Private: true})
	full := m.CreateShard(CreateOptions{MaxPlayers: 1})
	require.True(t, full.AddPlayer(&fakeConn{}, game.NewPlayerState("p", "P")))

	picked := m.QuickPlay()
	assert.NotEqual(t, private.ID, picked.ID)
	assert.NotEqual(t, full.ID, picked.ID)
}

func TestQuickPlayCreatesWhenNoneAvailable(t *testing.T) {
	m := newTestManager()
	defer m.StopAll()

	picked := m.QuickPlay()
	require.NotNil(t, picked)
	assert.Len(t, m.Shards(), 1)
}

func TestRoomCodesUnique(t *testing.T) {
	m := newTestManager()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code := m.generateRoomCode()
		assert.False(t, seen[code], "room code %s repeated", code)
		seen[code] = true
		// Reserve it the way CreateShard would.
		m.byRoomCode[code] = nil
	}
}

func TestMatchmakerJoinParty(t *testing.T) {
	m := newTestManager()
	defer m.StopAll()
	mm := NewMatchmaker(m, logrus.NewEntry(logrus.New()))

	host := game.NewPlayerState("host", "Host")
	res := mm.CreateParty(&fakeConn{}, host, 4)
	require.True(t, res.Success)
	require.NotEmpty(t, res.RoomCode)

	guest := game.NewPlayerState("guest", "Guest")
	res2 := mm.JoinParty(&fakeConn{}, guest, strings.ToLower(res.RoomCode))
	require.True(t, res2.Success, "room codes are case-insensitive on join")
	assert.Equal(t, res.ShardID, res2.ShardID)

	assert.Equal(t, res.ShardID, m.ShardForPlayer("guest").ID)
}

func TestMatchmakerJoinUnknownRoom(t *testing.T) {
	m := newTestManager()
	mm := NewMatchmaker(m, logrus.NewEntry(logrus.New()))

	res := mm.JoinParty(&fakeConn{}, game.NewPlayerState("p", "P"), "ZZZZ99")
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}

func TestPlaySoloCreatesSingleSeatShard(t *testing.T) {
	m := newTestManager()
	defer m.StopAll()
	mm := NewMatchmaker(m, logrus.NewEntry(logrus.New()))

	res := mm.PlaySolo(&fakeConn{}, game.NewPlayerState("solo", "Solo"))
	require.True(t, res.Success)

	s := m.ShardForPlayer("solo")
	require.NotNil(t, s)
	assert.Equal(t, 1, s.MaxPlayers)
	assert.True(t, s.IsFull())
}
