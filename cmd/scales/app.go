package main

import (
	"go.uber.org/zap"

	"scales/internal/catalog"
	"scales/internal/progress"
	"scales/internal/session"
	"scales/internal/store"
)

// app bundles the components one command invocation needs.
type app struct {
	registry *catalog.Registry
	tracker  *progress.Tracker
	history  *store.History // nil when disabled or unavailable
	manager  *session.Manager
}

// openApp builds the registry, practice log, optional history and manager from cfg.
func openApp() (*app, error) {
	registry, err := loadRegistry()
	if err != nil {
		return nil, err
	}

	tracker, err := progress.NewTracker(cfg.LogPath())
	if err != nil {
		return nil, err
	}

	a := &app{registry: registry, tracker: tracker}
	if path := cfg.HistoryPath(); path != "" {
		h, err := store.NewHistory(path)
		if err != nil {
			// History is a journal only; the practice log stays authoritative.
			logger.Warn("Session history unavailable", zap.String("path", path), zap.Error(err))
		} else {
			a.history = h
		}
	}

	var recorder session.HistoryRecorder
	if a.history != nil {
		recorder = a.history
	}
	a.manager = session.NewManager(registry, tracker, recorder, session.Config{
		PracticeDir: cfg.PracticeDir,
	})
	return a, nil
}

func loadRegistry() (*catalog.Registry, error) {
	if cfg.CatalogPath != "" {
		logger.Debug("Loading external catalog", zap.String("path", cfg.CatalogPath))
		return catalog.LoadFile(cfg.CatalogPath)
	}
	return catalog.Default()
}

func (a *app) Close() {
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			logger.Warn("Failed to close history", zap.Error(err))
		}
	}
}
