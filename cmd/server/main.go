package main

import (
	"context"
	"flag"

	"github.com/sirupsen/logrus"

	"github.com/knowledge-engine/featurizer/internal/api"
	"github.com/knowledge-engine/featurizer/internal/config"
	"github.com/knowledge-engine/featurizer/internal/engine"
	"github.com/knowledge-engine/featurizer/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "Optional TOML configuration file")
	flag.Parse()

	// Setup Logging
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	entry := logger.WithField("service", "featurizer-api")

	// 1. Config
	cfg := config.Load()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadFile(*configPath); err != nil {
			entry.Fatalf("Failed to load config: %v", err)
		}
	} else if err := cfg.Validate(); err != nil {
		entry.Fatalf("Invalid configuration: %v", err)
	}
	logger.SetLevel(cfg.LogLevel())

	entry.Info("Starting Featurizer API Service")

	// 2. Storage
	store, err := storage.NewFileStorage(cfg.Server.DataDir)
	if err != nil {
		entry.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	// 3. Engine
	eng, err := engine.NewEngine(cfg, entry, store)
	if err != nil {
		entry.Fatalf("Failed to initialize engine: %v", err)
	}
	if _, err := eng.LoadExisting(context.Background()); err != nil {
		entry.WithError(err).Warn("Failed to pre-load stored documents")
	}

	// 4. API Server
	server := api.NewServer(eng, entry)
	if err := server.Start(cfg.Server.Addr); err != nil {
		entry.Fatal(err)
	}
}
