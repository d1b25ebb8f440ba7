package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/festapp/telao/internal/config"
	"github.com/festapp/telao/internal/database"
	"github.com/festapp/telao/internal/game"
	"github.com/festapp/telao/internal/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return runServe(ctx, os.Stdout)
		},
	}
}

func runServe(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	store, err := server.NewDocStore(db)
	if err != nil {
		return fmt.Errorf("preparing document store: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	// --- Uploads ---
	uploads, err := server.NewUploadDir(cfg.UploadsDir)
	if err != nil {
		return fmt.Errorf("preparing uploads dir: %w", err)
	}

	// --- Game ---
	engine := game.NewEngine(store.Questions(), store.Config(), store.Answers(), logger)
	hub := server.NewHub(engine, logger)

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Engine:  engine,
		Hub:     hub,
		DB:      db,
		Uploads: uploads,
		SPADir:  cfg.SPADir,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return hub.Run(gctx)
	})

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}
