package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/TheFkingisback/deep-mine/pkg/server"
	"github.com/TheFkingisback/deep-mine/pkg/store"
)

func main() {
	port := flag.Int("port", 0, "Port to listen on (overrides config)")
	configPath := flag.String("config", "", "Optional YAML config file")
	flag.Parse()

	// Development convenience; a missing .env is not an error.
	godotenv.Load()

	cfg, err := server.LoadConfig(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	if *port != 0 {
		cfg.Port = *port
	}

	logger := logrus.New()
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}
	log := logrus.NewEntry(logger)

	if cfg.Secret == "" {
		log.Warn("no signing secret in environment, using an ephemeral one")
	}

	gw := server.NewGateway(cfg, clock.New(), log, store.NewMemoryStore())
	if err := gw.Start(); err != nil {
		log.WithError(err).Fatal("failed to start gateway")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.WithField("signal", sig.String()).Info("shutting down")

	gw.Stop()
	log.Info("server stopped")
}
