package root

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"questlog/internal/ai"
	"questlog/internal/engine"
	"questlog/internal/storage"
)

func openDB(ctx context.Context) (*sql.DB, func(), error) {
	path, err := storage.ResolveDBPath(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	db, err := storage.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("database opened", zap.String("path", path))
	cleanup := func() {
		_ = db.Close()
	}
	return db, cleanup, nil
}

// openService wires the database, progression table and AI helpers.
func openService(ctx context.Context, rec engine.Recorder) (*engine.Service, func(), error) {
	prog, err := cfg.Progression()
	if err != nil {
		return nil, nil, err
	}

	gen, err := newGenerator(ctx)
	if err != nil {
		return nil, nil, err
	}

	db, cleanup, err := openDB(ctx)
	if err != nil {
		return nil, nil, err
	}

	svc := engine.NewService(db, engine.Options{
		Progression:     prog,
		Architect:       ai.NewArchitect(gen, logger),
		Motivator:       ai.NewMotivator(gen, logger),
		Suggester:       ai.NewSuggester(gen, logger),
		Recorder:        rec,
		Logger:          logger,
		AutoSwitchTheme: cfg.AutoSwitchTheme,
	})
	return svc, cleanup, nil
}

// newGenerator returns nil when no API key is configured.
func newGenerator(ctx context.Context) (ai.Generator, error) {
	g, err := ai.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.AITimeout, logger)
	if errors.Is(err, ai.ErrUnavailable) {
		logger.Debug("ai disabled: GEMINI_API_KEY not set")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}
