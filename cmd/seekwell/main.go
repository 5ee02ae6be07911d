// cmd/seekwell/main.go
//
// Entry point for the SeekWell assistant.
//
// Flow:
// 1. Load .env and the optional YAML config
// 2. Open the record store and wire the agent
// 3. Resume any parked interview gate, then launch the chat TUI

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/seekwell/seekwell/internal/config"
	"github.com/seekwell/seekwell/internal/graph"
	"github.com/seekwell/seekwell/internal/llm"
	"github.com/seekwell/seekwell/internal/logging"
	"github.com/seekwell/seekwell/internal/store"
	"github.com/seekwell/seekwell/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seekwell: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "seekwell.yaml", "path to the YAML config file")
	flag.Parse()

	// Missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return err
	}

	logger := logging.New()

	s, err := store.OpenSQLite(cfg.StorePath())
	if err != nil {
		return err
	}
	defer s.Close()

	client, err := llm.NewAnthropic(llm.WithModel(cfg.Model))
	if err != nil {
		return err
	}

	agent := graph.New(cfg, s, client, graph.WithLogger(logger))
	atGate, err := agent.Resume()
	if err != nil {
		return err
	}
	if atGate {
		logger.Info("resuming at interview gate", logrus.Fields{"analysts": len(agent.Analysts())})
	}

	return tui.NewApp(agent, logger).Run()
}
