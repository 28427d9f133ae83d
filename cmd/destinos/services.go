package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/crisrod14/destinosAI/internal/config"
	"github.com/crisrod14/destinosAI/internal/generate"
	"github.com/crisrod14/destinosAI/internal/home"
	"github.com/crisrod14/destinosAI/internal/llmcall"
	"github.com/crisrod14/destinosAI/internal/metrics"
	"github.com/crisrod14/destinosAI/internal/prompts"
	"github.com/crisrod14/destinosAI/internal/prompts/destino"
	"github.com/crisrod14/destinosAI/internal/providers"
	"github.com/crisrod14/destinosAI/internal/sheets"
	"github.com/crisrod14/destinosAI/internal/store"
	"github.com/crisrod14/destinosAI/internal/svcctx"
	"github.com/crisrod14/destinosAI/internal/syncer"
)

// app is one opened working set: config, store and the orchestrator
// bootstrapped over them.
type app struct {
	*svcctx.Services
	Bootstrap *syncer.BootstrapResult
}

// loadConfig resolves the home directory and loads configuration.
func loadConfig() (*home.Dir, *config.Manager, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, nil, err
	}
	if err := h.EnsureExists(); err != nil {
		return nil, nil, err
	}

	cfgMgr, err := config.NewManager(cfgFile, h.Path())
	if err != nil {
		return nil, nil, err
	}
	cfgMgr.SetLogger(logger)
	if !verbose {
		if level, err := config.ParseLogLevel(cfgMgr.Get().LogLevel); err == nil {
			logLevel.Set(level)
		}
	}
	return h, cfgMgr, nil
}

// openApp builds every service and bootstraps the working set. A mirror
// that cannot be reached at startup leaves the app running local-only.
func openApp(ctx context.Context) (*app, error) {
	h, cfgMgr, err := loadConfig()
	if err != nil {
		return nil, err
	}
	cfg := cfgMgr.Get()

	st, err := store.Open(ctx, config.PathOr(cfg.Store.Path, h.DBPath()), logger)
	if err != nil {
		return nil, err
	}

	resolver := prompts.NewResolver(config.PathOr(cfg.Generation.PromptsDir, h.PromptsDir()), logger)
	destino.RegisterPrompts(resolver)

	registry := providers.NewRegistryFromConfig(ctx, cfg.ToProviderConfig(), logger)
	gen := generate.New(generate.Config{
		Providers: registry,
		Prompts:   resolver,
		Recorder:  llmcall.NewRecorder(st.Generations(), logger),
		Settings:  cfg.ToGenerationSettings(),
		Logger:    logger,
	})

	rec := metrics.NewRecorder()
	ocfg := syncer.Config{
		Store:     st,
		Generator: gen,
		Metrics:   rec,
		Logger:    logger,
	}
	// Assign only a non-nil mirror so the interface stays nil otherwise.
	mirror, err := openMirror(ctx, cfg, h)
	switch {
	case err != nil:
		ocfg.RemoteErr = err
	case mirror != nil:
		ocfg.Remote = mirror
	}
	orch := syncer.New(ocfg)

	boot, err := orch.Bootstrap(ctx)
	switch {
	case errors.Is(err, syncer.ErrCollaboratorUnavailable):
		logger.Warn("could not seed from remote mirror; starting empty", "error", err)
	case err != nil:
		st.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &app{
		Services: &svcctx.Services{
			Orchestrator: orch,
			Store:        st,
			Generator:    gen,
			Registry:     registry,
			Prompts:      resolver,
			Metrics:      rec,
			Config:       cfgMgr,
			Logger:       logger,
			Home:         h,
			LLMCallStore: st.Generations(),
		},
		Bootstrap: boot,
	}, nil
}

// openMirror builds the Sheets mirror. It returns nil, nil when the
// mirror is disabled.
func openMirror(ctx context.Context, cfg *config.Config, h *home.Dir) (*sheets.Mirror, error) {
	if !cfg.Sheets.Enabled {
		logger.Debug("sheets mirror disabled")
		return nil, nil
	}
	mirror, err := sheets.New(ctx, sheets.Config{
		SpreadsheetID: cfg.SpreadsheetID(),
		SheetName:     cfg.Sheets.SheetName,
		Timeout:       cfg.SheetsTimeout(),
		Credentials: sheets.FileCredentials{
			CredentialsFile: config.PathOr(cfg.Sheets.CredentialsFile, h.CredentialsPath()),
			TokenFile:       config.PathOr(cfg.Sheets.TokenFile, h.TokenPath()),
		},
		Logger: logger,
	})
	if err != nil {
		logger.Warn("sheets mirror unavailable; changes stay local", "error", err)
		return nil, fmt.Errorf("sheets mirror: %w", err)
	}
	return mirror, nil
}

// Close releases the store.
func (a *app) Close() error {
	return a.Store.Close()
}

// Context returns ctx carrying the app's services.
func (a *app) Context(ctx context.Context) context.Context {
	return svcctx.WithServices(ctx, a.Services)
}

// withApp opens the app, runs fn and closes it.
func withApp(ctx context.Context, fn func(ctx context.Context, a *app) error) error {
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Warn("failed to close store", "error", err)
		}
	}()
	return fn(a.Context(ctx), a)
}
