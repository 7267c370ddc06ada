package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/content"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/ordering"
	"github.com/jonathan/resume-builder/internal/server"
	"github.com/jonathan/resume-builder/internal/server/ratelimit"
)

var (
	servePort   int
	serveMemory bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server exposing resume editing, LaTeX/PDF output and job posting analysis.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveMemory, "memory", false, "Use the in-memory store instead of PostgreSQL")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.logger.SetOutput(os.Stdout)
	a.metrics = observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := a.openStore(ctx, serveMemory)
	if err != nil {
		return err
	}
	defer closeStore()
	if database, ok := st.(*db.DB); ok {
		if err := database.Migrate(ctx); err != nil {
			return err
		}
	}

	compiler, err := a.compiler("")
	if err != nil {
		return err
	}
	renderer, closeCache := a.renderer(ctx)
	defer closeCache()

	rl := a.cfg.RateLimit
	limiter := ratelimit.NewLimiter(ratelimit.NewConfig(rl.Enabled, rl.DefaultLimit, rl.Window, rl.Whitelist, rl.Blacklist))

	port := a.cfg.Server.Port
	if servePort != 0 {
		port = servePort
	}

	srv, err := server.New(server.Config{
		Port:            port,
		ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
		CORSOrigin:      a.cfg.Server.CORSOrigin,
	}, server.Deps{
		Content:          content.NewService(st, a.log("content")),
		Ordering:         ordering.NewEngine(st, a.log("ordering"), a.metrics),
		Compiler:         compiler,
		Renderer:         renderer,
		Limiter:          limiter,
		Log:              a.log("http"),
		Metrics:          a.metrics,
		MatchConcurrency: a.cfg.Match.Concurrency,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start(ctx)
}
