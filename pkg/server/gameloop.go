package server

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/TheFkingisback/deep-mine/pkg/game"
	"github.com/TheFkingisback/deep-mine/pkg/protocol"
)

// QueuedCommand is one client command awaiting its tick.
type QueuedCommand struct {
	PlayerID string
	Cmd      protocol.Command
}

// LoopHandler is implemented by the Shard: command processing plus the
// per-tick housekeeping hook.
type LoopHandler interface {
	HandleCommand(qc QueuedCommand)
	HandleOverLimit(qc QueuedCommand)
	Tick(now time.Time)
}

const commandQueueSize = 1024

// slowTickFraction of the interval that triggers the slow-tick warning.
const slowTickFraction = 0.8

// GameLoop is the fixed-rate simulation driver of one shard. Commands are
// enqueued from the gateway's context and drained atomically each tick on
// the loop's own goroutine; missed ticks are not compensated.
type GameLoop struct {
	clock   clock.Clock
	log     *logrus.Entry
	handler LoopHandler

	digLimit *slidingWindow
	queue    chan QueuedCommand
	stopCh   chan struct{}
	doneCh   chan struct{}

	// onFatal fires when a tick panics; the owner tears the shard down.
	onFatal func(cause any)
}

// NewGameLoop creates a loop bound to the given handler.
func NewGameLoop(clk clock.Clock, log *logrus.Entry, handler LoopHandler) *GameLoop {
	return &GameLoop{
		clock:    clk,
		log:      log,
		handler:  handler,
		digLimit: newSlidingWindow(clk, game.MaxDigRate, time.Second),
		queue:    make(chan QueuedCommand, commandQueueSize),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the tick goroutine.
func (l *GameLoop) Start() {
	go l.run()
}

// Stop halts the loop and waits for the current tick to finish.
func (l *GameLoop) Stop() {
	close(l.stopCh)
	<-l.doneCh
}

// Enqueue adds a command to the next tick's batch. Returns false when the
// queue is full; the caller reports RATE_LIMITED.
func (l *GameLoop) Enqueue(qc QueuedCommand) bool {
	select {
	case l.queue <- qc:
		return true
	default:
		return false
	}
}

// ForgetPlayer clears per-player limiter state.
func (l *GameLoop) ForgetPlayer(playerID string) {
	l.digLimit.Forget(playerID)
}

func (l *GameLoop) run() {
	defer close(l.doneCh)

	ticker := l.clock.Ticker(game.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			start := l.clock.Now()
			l.safeTick(start)
			elapsed := l.clock.Now().Sub(start)
			if elapsed > time.Duration(float64(game.TickInterval)*slowTickFraction) {
				l.log.WithField("elapsed", elapsed).Warn("slow tick")
			}
		}
	}
}

// safeTick keeps a panicking handler from unwinding across the tick
// boundary; the fault escalates to the owner instead.
func (l *GameLoop) safeTick(now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			l.log.WithField("panic", r).Error("tick panicked")
			if l.onFatal != nil {
				l.onFatal(r)
			}
		}
	}()
	l.tick(now)
}

// tick drains the whole current queue, applies rate limits, hands commands
// to the shard, then runs the housekeeping hook.
func (l *GameLoop) tick(now time.Time) {
	// Snapshot the batch size so commands enqueued mid-tick wait for the
	// next tick.
	n := len(l.queue)
	for i := 0; i < n; i++ {
		qc := <-l.queue

		if _, isDig := qc.Cmd.(*protocol.Dig); isDig {
			if !l.digLimit.Allow(qc.PlayerID) {
				l.handler.HandleOverLimit(qc)
				continue
			}
		}
		l.handler.HandleCommand(qc)
	}

	l.handler.Tick(now)
}
