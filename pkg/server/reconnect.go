package server

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/TheFkingisback/deep-mine/pkg/game"
)

// Session is one disconnected player's claim on their shard seat.
type Session struct {
	PlayerID       string
	DisplayName    string
	ShardID        string
	DisconnectedAt time.Time
}

// ReconnectionManager preserves sessions for the grace window after a
// disconnect and rebinds authenticated reconnects. Its map has two
// writers, the gateway and the periodic sweep, so every access locks.
type ReconnectionManager struct {
	clock   clock.Clock
	log     *logrus.Entry
	manager *ShardManager

	mu       sync.Mutex
	sessions map[string]Session

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewReconnectionManager creates the manager; call Start to begin the
// sweep.
func NewReconnectionManager(clk clock.Clock, log *logrus.Entry, manager *ShardManager) *ReconnectionManager {
	return &ReconnectionManager{
		clock:    clk,
		log:      log,
		manager:  manager,
		sessions: make(map[string]Session),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the periodic expiry sweep.
func (r *ReconnectionManager) Start() {
	go r.sweepLoop()
}

// Stop halts the sweep.
func (r *ReconnectionManager) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

// OnDisconnect stores the session and starts the shard's grace period.
func (r *ReconnectionManager) OnDisconnect(playerID, displayName, shardID string) {
	r.mu.Lock()
	r.sessions[playerID] = Session{
		PlayerID:       playerID,
		DisplayName:    displayName,
		ShardID:        shardID,
		DisconnectedAt: r.clock.Now(),
	}
	r.mu.Unlock()

	if shard := r.manager.ShardForPlayer(playerID); shard != nil {
		shard.OnPlayerDisconnect(playerID)
	}
	r.log.WithField("player", playerID).Info("session stored for reconnect")
}

// TryReconnect rebinds an authenticated connection to its shard seat.
// Returns the shard id on success; expired or unknown sessions fail and
// the caller falls back to matchmaking.
func (r *ReconnectionManager) TryReconnect(playerID string, conn Conn) (string, bool) {
	r.mu.Lock()
	sess, ok := r.sessions[playerID]
	if !ok {
		r.mu.Unlock()
		return "", false
	}
	if r.clock.Now().Sub(sess.DisconnectedAt) > game.PlayerDisconnectGrace {
		delete(r.sessions, playerID)
		r.mu.Unlock()
		return "", false
	}
	delete(r.sessions, playerID)
	r.mu.Unlock()

	shard := r.manager.ShardForPlayer(playerID)
	if shard == nil || !shard.OnPlayerReconnect(playerID, conn) {
		return "", false
	}
	return shard.ID, true
}

// HasSession reports whether the player holds an unexpired session.
func (r *ReconnectionManager) HasSession(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[playerID]
	return ok && r.clock.Now().Sub(sess.DisconnectedAt) <= game.PlayerDisconnectGrace
}

// sweepLoop drops expired sessions and finalizes their shard seats; the
// shard's own grace timer and this sweep both converge on "removed".
func (r *ReconnectionManager) sweepLoop() {
	defer close(r.doneCh)

	ticker := r.clock.Ticker(game.SessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

func (r *ReconnectionManager) sweep() {
	now := r.clock.Now()

	var expired []string
	r.mu.Lock()
	for id, sess := range r.sessions {
		if now.Sub(sess.DisconnectedAt) > game.PlayerDisconnectGrace {
			expired = append(expired, id)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, id := range expired {
		r.manager.RemovePlayerFromShard(id)
		r.log.WithField("player", id).Info("session expired")
	}
}
