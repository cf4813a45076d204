package main

import (
	"context"
	"fmt"
	"log"

	"github.com/verte-zerg/morfo/internal/bridge"
	"github.com/verte-zerg/morfo/internal/config"
	"github.com/verte-zerg/morfo/internal/model"
	"github.com/verte-zerg/morfo/internal/remote"
	"github.com/verte-zerg/morfo/internal/store"
	"github.com/verte-zerg/morfo/internal/workflow"
)

// session owns the client, local store and sync worker for one command.
type session struct {
	client *remote.Client
	store  *store.Store
	bridge *bridge.Bridge
	orch   *workflow.Orchestrator
	cancel context.CancelFunc
}

func openSession(ctx context.Context, cfg model.Config, logger *log.Logger) (*session, error) {
	client, err := remote.New(cfg.ServerURL, cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to configure client: %w", err)
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	var mirror bridge.Mirror
	if cfg.Mirror {
		mirror = st
	}
	br := bridge.New(client, mirror, logger)
	workerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	br.Start(workerCtx)

	return &session{
		client: client,
		store:  st,
		bridge: br,
		orch:   workflow.New(client, br, st, logger),
		cancel: cancel,
	}, nil
}

// Close flushes a pending push before releasing the store.
func (s *session) Close() {
	s.bridge.Close()
	s.cancel()
	if err := s.store.Close(); err != nil {
		logErrf("warning: failed to close store: %v\n", err)
	}
}

// loadDictionary pulls the service dictionary, falling back to the mirror.
func (s *session) loadDictionary(ctx context.Context) error {
	err := s.orch.Load(ctx)
	if err == nil {
		return nil
	}
	if rerr := s.orch.Restore(ctx); rerr != nil {
		return fmt.Errorf("failed to load dictionary: %w", err)
	}
	logErrf("warning: %v; showing the local mirror\n", err)
	return nil
}
