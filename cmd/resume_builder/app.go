package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/resume-builder/internal/cache"
	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/content"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/store"
	"github.com/jonathan/resume-builder/internal/types"
)

// app bundles what every command needs after configuration is loaded.
type app struct {
	cfg     *config.Config
	logger  *logrus.Logger
	metrics *observability.Metrics
}

// newApp loads configuration and builds the logger. CLI logs go to stderr
// so command output on stdout stays clean.
func newApp(stderr io.Writer) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	logger := observability.NewLogger(cfg.Log.Level, cfg.Log.Format)
	logger.SetOutput(stderr)
	return &app{cfg: cfg, logger: logger}, nil
}

func (a *app) log(component string) *logrus.Entry {
	return observability.Component(a.logger, component)
}

// openStore connects to PostgreSQL, or returns an empty in-memory store
// when memory is set or no database URL is configured.
func (a *app) openStore(ctx context.Context, memory bool) (store.Store, func(), error) {
	if memory || a.cfg.Database.URL == "" {
		a.log("store").Warn("using in-memory store; data is lost on exit")
		return store.NewMemory(), func() {}, nil
	}
	database, err := db.Connect(ctx, a.cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	return database, database.Close, nil
}

// requireDatabase opens the PostgreSQL store or fails when none is configured.
func (a *app) requireDatabase(ctx context.Context) (*db.DB, error) {
	if a.cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	return db.Connect(ctx, a.cfg.Database.URL)
}

// compiler builds the LaTeX compiler from an override path, the configured
// template, or the embedded default, in that order.
func (a *app) compiler(override string) (*rendering.Compiler, error) {
	path := override
	if path == "" {
		path = a.cfg.Render.Template
	}
	if path == "" {
		return rendering.NewCompiler()
	}
	return rendering.NewCompilerFromFile(path)
}

// renderer wraps the engine in the PDF cache. Redis is used when configured
// and reachable; otherwise an in-process cache.
func (a *app) renderer(ctx context.Context) (rendering.Renderer, func()) {
	engine := &rendering.PDFLatex{Binary: a.cfg.Render.Engine, Timeout: a.cfg.Render.Timeout}
	log := a.log("render")

	var c rendering.Cache = cache.NewMemory()
	closer := func() {}
	if a.cfg.Redis.Addr != "" {
		rc, err := cache.Dial(ctx, a.cfg.Redis.Addr, a.cfg.Redis.Password, a.cfg.Redis.DB)
		if err != nil {
			log.WithError(err).Warn("redis unavailable, falling back to in-memory pdf cache")
		} else {
			c = rc
			closer = func() { _ = rc.Close() }
		}
	}
	return rendering.NewCachedRenderer(engine, c, a.cfg.Redis.TTL, log, a.metrics), closer
}

// loadResume reads a resume tree either from an import document on disk or
// from the database by id. Exactly one source must be given.
func (a *app) loadResume(ctx context.Context, file, resumeID string) (*types.Resume, error) {
	switch {
	case file != "" && resumeID != "":
		return nil, fmt.Errorf("cannot use --file with --resume-id")
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read resume file: %w", err)
		}
		// Import into a scratch store; the snapshot is all we keep.
		svc := content.NewService(store.NewMemory(), a.log("content"))
		return svc.ImportResume(ctx, data)
	case resumeID != "":
		id, err := uuid.Parse(resumeID)
		if err != nil {
			return nil, fmt.Errorf("invalid resume id %q: %w", resumeID, err)
		}
		database, err := a.requireDatabase(ctx)
		if err != nil {
			return nil, err
		}
		defer database.Close()
		return database.Snapshot(ctx, id)
	default:
		return nil, fmt.Errorf("must provide either --file or --resume-id")
	}
}

// writeOutput writes data to path, or to w when path is empty or "-".
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
