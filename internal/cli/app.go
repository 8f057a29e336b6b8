package cli

import (
	"context"
	"errors"
	"fmt"

	"spesetracker/internal/backend"
	"spesetracker/internal/config"
	"spesetracker/internal/core"
	"spesetracker/internal/expenses"
	"spesetracker/internal/log"
)

// App bundles what every command needs: the configured store, the
// repository on top of it and the category set.
type App struct {
	Config     *config.Config
	Logger     *log.Logger
	Repo       *expenses.Repository
	Categories core.Categories

	backend *backend.BackendResult
}

// OpenApp creates the backend and an unloaded repository.
func OpenApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	repo := expenses.NewRepository(res.Store, expenses.Config{
		Key:          cfg.StorageKey,
		WriteTimeout: cfg.PersistTimeout,
		Logger:       logger,
	})

	return &App{
		Config:     cfg,
		Logger:     logger,
		Repo:       repo,
		Categories: cfg.CategorySet(),
		backend:    res,
	}, nil
}

// Load performs the initial repository load and reports problems that left
// the repository empty.
func (a *App) Load(ctx context.Context) expenses.LoadResult {
	res := a.Repo.Load(ctx)
	switch res.Status {
	case expenses.LoadDecodeFailed:
		a.Logger.Warn("Stored expenses could not be decoded; starting with an empty list. The next change will overwrite them.",
			log.FieldError, res.Err)
	case expenses.LoadReadFailed:
		a.Logger.Warn("Stored expenses could not be read; starting with an empty list.",
			log.FieldError, res.Err)
	}
	return res
}

// Close flushes pending writes and releases the backend.
func (a *App) Close(ctx context.Context) error {
	repoErr := a.Repo.Close(ctx)
	backendErr := a.backend.Close(ctx)
	if repoErr != nil || backendErr != nil {
		return fmt.Errorf("close: %w", errors.Join(repoErr, backendErr))
	}
	return nil
}
