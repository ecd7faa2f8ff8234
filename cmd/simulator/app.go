package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fystack/lottery-simulator/internal/dream"
	"github.com/fystack/lottery-simulator/internal/history"
	"github.com/fystack/lottery-simulator/internal/lottery"
	"github.com/fystack/lottery-simulator/internal/sampler"
	"github.com/fystack/lottery-simulator/internal/session"
	"github.com/fystack/lottery-simulator/pkg/common/config"
	"github.com/fystack/lottery-simulator/pkg/common/logger"
	"github.com/fystack/lottery-simulator/pkg/events"
	"github.com/fystack/lottery-simulator/pkg/infra"
	"github.com/fystack/lottery-simulator/pkg/kvstore"
)

// app holds everything a command needs. Close releases the store and the
// event connection.
type app struct {
	cfg         *config.Config
	kv          infra.KVStore
	emitter     events.Emitter
	interpreter *dream.Client
	session     *session.Session
}

func loadConfig(flags *rootFlags) (*config.Config, error) {
	path := flags.configPath
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		slog.Debug("Config file not found, using defaults", "path", path)
		path = ""
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := logger.ParseLevel(cfg.Log.Level)
	if flags.debug {
		level = slog.LevelDebug
	}
	logger.Init(&logger.Options{
		Level:      level,
		Writer:     os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    cfg.Log.NoColor,
	})
	logger.Debug("Config loaded", "env", cfg.Environment, "kvstore", cfg.KVStore.Type)
	return cfg, nil
}

func newApp(ctx context.Context, flags *rootFlags) (*app, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	catalog, err := lottery.NewCatalog(cfg.Lotteries)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}

	kv, err := kvstore.NewFromConfig(ctx, cfg.KVStore)
	if err != nil {
		return nil, fmt.Errorf("open kvstore: %w", err)
	}

	emitter := events.NewNoopEmitter()
	if cfg.Nats.Enabled {
		nc, err := infra.ConnectNATS(ctx, cfg.Nats)
		if err != nil {
			kv.Close()
			return nil, fmt.Errorf("connect nats: %w", err)
		}
		emitter = events.NewEmitter(infra.NewNATSMessageQueue(nc), cfg.Nats.SubjectPrefix)
		logger.Info("Publishing history events", "url", cfg.Nats.URL, "prefix", cfg.Nats.SubjectPrefix)
	}

	interpreter := dream.NewClient(cfg.Dream, catalog)
	if cfg.Dream.APIKey == "" {
		logger.Warn("Gemini API key not set; dream interpretation is disabled")
	}

	s := session.New(session.Deps{
		Catalog:     catalog,
		Store:       history.NewStore(kv, catalog),
		Sampler:     sampler.New(sampler.DefaultSource()),
		Interpreter: interpreter,
		Emitter:     emitter,
		Capacity:    cfg.History.Capacity,
	})
	if err := s.Start(ctx); err != nil {
		emitter.Close()
		kv.Close()
		return nil, fmt.Errorf("start session: %w", err)
	}

	return &app{
		cfg:         cfg,
		kv:          kv,
		emitter:     emitter,
		interpreter: interpreter,
		session:     s,
	}, nil
}

func (a *app) Close() {
	a.emitter.Close()
	if err := a.kv.Close(); err != nil {
		logger.Error("Close kvstore failed", "error", err)
	}
}
