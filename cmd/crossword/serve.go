package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bodul/crosswordmaster/internal/config"
	"github.com/bodul/crosswordmaster/internal/crossword"
	"github.com/bodul/crosswordmaster/internal/gemini"
	"github.com/bodul/crosswordmaster/internal/logging"
	"github.com/bodul/crosswordmaster/internal/puzzle"
	"github.com/bodul/crosswordmaster/internal/server"
	"github.com/bodul/crosswordmaster/internal/store"
)

const shutdownTimeout = 10 * time.Second

var configFile string

func init() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API for authoring, sharing and solving puzzles.

Settings come from the optional TOML file, then .env, then the environment.

Examples:
  crossword serve
  crossword serve --config crossword.toml
  DATABASE_URL=postgres://... crossword serve`,
		RunE: runServe,
	}
	serveCmd.Flags().StringVarP(&configFile, "config", "c", "", "TOML configuration file")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	puzzles, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer puzzles.Close()

	opts := cfg.GeneratorOptions()
	opts.Logger = logger
	gen := crossword.New(opts)

	if cfg.SeedSample {
		if err := seedSample(ctx, puzzles, gen, logger); err != nil {
			return err
		}
	}

	deps := server.Deps{
		Puzzles:   puzzles,
		Sessions:  store.NewSessions(),
		Generator: gen,
		Logger:    logger,
		BaseURL:   cfg.BaseURL,
	}
	if cfg.GCPProjectID != "" {
		client, err := gemini.NewClient(ctx, gemini.Config{
			ProjectID: cfg.GCPProjectID,
			Region:    cfg.GCPRegion,
			Model:     cfg.GeminiModel,
		})
		if err != nil {
			return fmt.Errorf("init gemini: %w", err)
		}
		deps.Importer = client
		logger.Info("image import enabled", "project", cfg.GCPProjectID, "model", client.Model())
	} else {
		logger.Info("GCP_PROJECT_ID not set, image import disabled")
	}

	srv := server.NewServer(deps)
	defer srv.Close()

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server started", "addr", "http://localhost:"+cfg.Port)
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// openStore picks Postgres when a database URL is configured.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (store.PuzzleStore, error) {
	if cfg.DatabaseURL == "" {
		logger.Info("using in-memory store")
		return store.NewMemory(), nil
	}
	pg, err := store.NewPostgres(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return pg, nil
}

// seedSample stores the demonstration puzzle on an empty installation.
func seedSample(ctx context.Context, puzzles store.PuzzleStore, gen *crossword.Generator, logger *slog.Logger) error {
	existing, err := puzzles.ListPuzzles(ctx)
	if err != nil {
		return fmt.Errorf("list puzzles: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	p, err := puzzle.New(puzzle.SampleDraft(), gen)
	if err != nil {
		return fmt.Errorf("build sample puzzle: %w", err)
	}
	p, err = puzzles.SavePuzzle(ctx, p)
	if err != nil {
		return fmt.Errorf("save sample puzzle: %w", err)
	}
	logger.Info("sample puzzle created", "puzzle", p.ID, "title", p.Title)
	return nil
}
