// Load-test harness: spins up N websocket clients that authenticate as
// guests, quick-play into shards, and dig/move at a configurable rate.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/TheFkingisback/deep-mine/pkg/protocol"
)

type counters struct {
	connected uint64
	frames    uint64
	errors    uint64
}

func main() {
	addr := flag.String("addr", "ws://127.0.0.1:8420/ws", "Gateway websocket URL")
	clients := flag.Int("clients", 50, "Number of concurrent clients")
	digRate := flag.Duration("dig-interval", 150*time.Millisecond, "Delay between dig commands per client")
	duration := flag.Duration("duration", 30*time.Second, "How long to run")
	flag.Parse()

	log := logrus.NewEntry(logrus.New())
	var c counters

	var wg sync.WaitGroup
	stop := time.After(*duration)
	stopCh := make(chan struct{})
	go func() {
		<-stop
		close(stopCh)
	}()

	for i := 0; i < *clients; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			runClient(*addr, *digRate, stopCh, &c, log.WithField("client", n))
		}(i)
		time.Sleep(10 * time.Millisecond) // stagger ramp-up
	}

	wg.Wait()
	fmt.Printf("connected=%d frames=%d errors=%d\n",
		atomic.LoadUint64(&c.connected),
		atomic.LoadUint64(&c.frames),
		atomic.LoadUint64(&c.errors))
}

func runClient(addr string, digInterval time.Duration, stopCh <-chan struct{}, c *counters, log *logrus.Entry) {
	var ws *websocket.Conn

	// The gateway may still be coming up; retry the dial with backoff.
	dial := func() error {
		var err error
		ws, _, err = websocket.DefaultDialer.Dial(addr, nil)
		return err
	}
	if err := backoff.Retry(dial, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)); err != nil {
		atomic.AddUint64(&c.errors, 1)
		log.WithError(err).Warn("dial failed")
		return
	}
	defer ws.Close()
	atomic.AddUint64(&c.connected, 1)

	send := func(v any) {
		data, _ := json.Marshal(v)
		if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
			atomic.AddUint64(&c.errors, 1)
		}
	}

	send(map[string]any{"type": protocol.CmdAuth})
	send(map[string]any{"type": protocol.CmdJoinQuickPlay})

	// Drain server frames in the background.
	go func() {
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
			atomic.AddUint64(&c.frames, 1)
		}
	}()

	x, y := rand.Intn(100), 0
	ticker := time.NewTicker(digInterval)
	defer ticker.Stop()

	for seq := 0; ; seq++ {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
		}

		// Walk down one block, then dig the block below.
		y++
		send(map[string]any{"type": protocol.CmdMove, "seq": seq, "x": x, "y": y})
		send(map[string]any{"type": protocol.CmdDig, "seq": seq, "x": x, "y": y + 1, "timestamp": time.Now().UnixMilli()})
	}
}
