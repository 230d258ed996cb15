package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/TheFkingisback/deep-mine/pkg/chat"
	"github.com/TheFkingisback/deep-mine/pkg/game"
	"github.com/TheFkingisback/deep-mine/pkg/protocol"
	"github.com/TheFkingisback/deep-mine/pkg/store"
)

const readDeadline = 90 * time.Second

// Gateway terminates client connections, authenticates them, and routes
// frames to the matchmaker or the player's shard. It never mutates shard
// state directly; game commands only enqueue.
type Gateway struct {
	cfg     Config
	log     *logrus.Entry
	clock   clock.Clock
	auth    *Authenticator
	persist store.Store

	manager   *ShardManager
	match     *Matchmaker
	reconnect *ReconnectionManager

	upgrader websocket.Upgrader
	server   *http.Server
}

// NewGateway wires the full server stack.
func NewGateway(cfg Config, clk clock.Clock, log *logrus.Entry, persist store.Store) *Gateway {
	manager := NewShardManager(clk, log, persist, cfg.MaxPlayersPerShard)
	g := &Gateway{
		cfg:       cfg,
		log:       log,
		clock:     clk,
		auth:      NewAuthenticator(cfg.Secret),
		persist:   persist,
		manager:   manager,
		match:     NewMatchmaker(manager, log),
		reconnect: NewReconnectionManager(clk, log, manager),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	return g
}

// Start begins serving; non-blocking.
func (g *Gateway) Start() error {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/ws", g.handleWS)
	r.Get("/healthz", g.handleHealthz)
	r.Get("/stats", g.handleStats)

	g.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", g.cfg.Port),
		Handler: r,
	}

	go func() {
		if err := g.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			g.log.WithError(err).Error("gateway listen failed")
		}
	}()

	g.reconnect.Start()
	g.log.WithField("port", g.cfg.Port).Info("gateway listening")
	return nil
}

// Stop shuts everything down: HTTP listener, sweeper, shards.
func (g *Gateway) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if g.server != nil {
		g.server.Shutdown(ctx)
	}
	g.reconnect.Stop()
	g.manager.StopAll()
	g.log.Info("gateway stopped")
}

// Manager exposes the shard manager, mainly for tests and stats.
func (g *Gateway) Manager() *ShardManager { return g.manager }

// client is the per-connection state: the transport handle plus the
// authenticated identity once auth completes.
type client struct {
	conn     *wsConn
	identity *Identity
}

func (g *Gateway) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.WithError(err).Debug("upgrade failed")
		return
	}

	log := g.log.WithField("remote", ws.RemoteAddr().String())
	c := &client{conn: newWSConn(ws, log)}
	defer g.onConnectionClosed(c)

	for {
		ws.SetReadDeadline(time.Now().Add(readDeadline))
		mt, data, err := ws.ReadMessage()
		if err != nil {
			return
		}

		var cmd protocol.Command
		switch mt {
		case websocket.TextMessage:
			cmd, err = protocol.DecodeCommand(data)
		case websocket.BinaryMessage:
			cmd, err = protocol.DecodeBinaryCommand(data)
		default:
			continue
		}
		if err != nil {
			if _, unknown := err.(protocol.ErrUnknownCommand); unknown {
				c.conn.Send(protocol.Errorf(protocol.ErrUnknownType, "%v", err))
				continue
			}
			c.conn.Send(protocol.Errorf(protocol.ErrInvalidMessage, "unparseable frame"))
			c.conn.Close(protocol.CloseGoingAway)
			return
		}

		g.route(c, cmd)
	}
}

// route dispatches one parsed command for a connection.
func (g *Gateway) route(c *client, cmd protocol.Command) {
	if auth, ok := cmd.(*protocol.Auth); ok {
		g.handleAuth(c, auth)
		return
	}

	if c.identity == nil {
		c.conn.Send(protocol.Errorf(protocol.ErrNotAuthenticated, "authenticate first"))
		return
	}

	switch cmd := cmd.(type) {
	case *protocol.JoinQuickPlay:
		g.handleMatchmaking(c, func(st *game.PlayerState) protocol.MatchmakingResult {
			return g.match.QuickPlay(c.conn, st)
		})
	case *protocol.PlaySolo:
		g.handleMatchmaking(c, func(st *game.PlayerState) protocol.MatchmakingResult {
			return g.match.PlaySolo(c.conn, st)
		})
	case *protocol.CreateParty:
		g.handleMatchmaking(c, func(st *game.PlayerState) protocol.MatchmakingResult {
			return g.match.CreateParty(c.conn, st, cmd.MaxPlayers)
		})
	case *protocol.JoinParty:
		g.handleMatchmaking(c, func(st *game.PlayerState) protocol.MatchmakingResult {
			return g.match.JoinParty(c.conn, st, cmd.RoomCode)
		})
	default:
		g.routeGameCommand(c, cmd)
	}
}

// handleAuth validates or mints an identity, attempts session
// reconnection, and answers with a welcome frame.
func (g *Gateway) handleAuth(c *client, cmd *protocol.Auth) {
	var id Identity
	if cmd.Token != "" {
		verified, err := g.auth.VerifyToken(cmd.Token)
		if err != nil {
			g.log.WithError(err).Debug("token rejected, minting guest")
			id = g.auth.MintGuest()
		} else {
			id = verified
		}
	} else {
		id = g.auth.MintGuest()
	}
	// Display names from old tokens are still untrusted input.
	if clean, ok := chat.SanitizeName(id.DisplayName); ok {
		id.DisplayName = clean
	} else {
		id.DisplayName = g.auth.MintGuest().DisplayName
	}
	c.identity = &id

	token, err := g.auth.IssueToken(id)
	if err != nil {
		g.log.WithError(err).Warn("token issue failed")
	}

	welcome := protocol.Welcome{
		PlayerID:    id.PlayerID,
		DisplayName: id.DisplayName,
		Token:       token,
		State:       g.loadOrCreateState(id),
	}

	// A live session rebinds the connection to its shard transparently.
	if _, ok := g.reconnect.TryReconnect(id.PlayerID, c.conn); ok {
		g.log.WithField("player", id.PlayerID).Info("rebound to shard via reconnect")
	}

	c.conn.Send(welcome)
}

// handleMatchmaking resolves the player's state and applies a policy.
func (g *Gateway) handleMatchmaking(c *client, policy func(*game.PlayerState) protocol.MatchmakingResult) {
	if g.manager.ShardForPlayer(c.identity.PlayerID) != nil {
		c.conn.Send(protocol.MatchmakingResult{Error: "already in a shard"})
		return
	}
	res := policy(g.loadOrCreateState(*c.identity))
	c.conn.Send(res)
}

// routeGameCommand forwards a gameplay frame to the bound shard's queue.
func (g *Gateway) routeGameCommand(c *client, cmd protocol.Command) {
	shard := g.manager.ShardForPlayer(c.identity.PlayerID)
	if shard == nil {
		c.conn.Send(protocol.Errorf(protocol.ErrNotInShard, "join a game first"))
		return
	}
	if !shard.EnqueueMessage(c.identity.PlayerID, cmd) {
		c.conn.Send(protocol.Errorf(protocol.ErrRateLimited, "command queue full"))
	}
}

// onConnectionClosed begins the grace period for an in-shard player.
func (g *Gateway) onConnectionClosed(c *client) {
	c.conn.Close(protocol.CloseGoingAway)
	if c.identity == nil {
		return
	}
	if shard := g.manager.ShardForPlayer(c.identity.PlayerID); shard != nil {
		g.reconnect.OnDisconnect(c.identity.PlayerID, c.identity.DisplayName, shard.ID)
	}
}

// loadOrCreateState restores the persisted record or starts fresh.
func (g *Gateway) loadOrCreateState(id Identity) *game.PlayerState {
	if g.persist != nil {
		if rec, err := g.persist.LoadPlayer(context.Background(), id.PlayerID); err == nil && rec != nil {
			return store.StateFromRecord(rec)
		}
	}
	return game.NewPlayerState(id.PlayerID, id.DisplayName)
}

func (g *Gateway) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
