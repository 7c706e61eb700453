package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rajarshidattapy/resumeness/internal/agent"
	"github.com/rajarshidattapy/resumeness/internal/api"
	"github.com/rajarshidattapy/resumeness/internal/artifact"
	"github.com/rajarshidattapy/resumeness/internal/compiler"
	"github.com/rajarshidattapy/resumeness/internal/config"
	"github.com/rajarshidattapy/resumeness/internal/events"
	"github.com/rajarshidattapy/resumeness/internal/jobs"
	"github.com/rajarshidattapy/resumeness/internal/llm"
	"github.com/rajarshidattapy/resumeness/internal/logger"
	"github.com/rajarshidattapy/resumeness/internal/state"
)

func newServeCmd() *cobra.Command {
	var envFile string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API. Configuration comes from the environment; a .env file is
loaded first when present.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// A missing .env file is fine.
			_ = godotenv.Load(envFile)
			return serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	return cmd
}

func serve(parent context.Context) error {
	cfg := config.Load()
	log := logger.New("resumeness", cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		return err
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	// Initialize clients.
	base, err := llm.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("llm provider: %w", err)
	}
	var provider llm.TextCompletionProvider
	var stats *llm.Stats
	if base != nil {
		stats = llm.NewStats(time.Hour)
		provider = llm.Instrument(base, stats)
	} else {
		log.Warn("no llm provider configured, running in demo mode")
	}

	persister, closeStore, err := state.OpenPersister(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open workspace store: %w", err)
	}
	defer closeStore()

	seed, err := state.SeedFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("knowledge seed: %w", err)
	}

	pub, err := events.New(cfg)
	if err != nil {
		return fmt.Errorf("events: %w", err)
	}
	defer pub.Close()

	ws, err := state.New(ctx, persister, state.Options{
		Log:      log.With("component", "state"),
		Seed:     seed,
		OnChange: events.WorkspaceListener(pub, cfg.WorkspaceID, log),
	})
	if err != nil {
		return fmt.Errorf("load workspace: %w", err)
	}

	artifacts, err := artifact.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("artifact store: %w", err)
	}
	comp := compiler.NewClient(cfg.CompilerURL, cfg.CompilerEngine, cfg.CompileTimeout)

	ag := agent.New(ws, provider, agent.Options{
		Log:           log.With("component", "agent"),
		HistoryLimit:  cfg.ChatHistoryLimit,
		SearchTopK:    cfg.SearchTopK,
		MaxConcurrent: cfg.MaxConcurrentRewrite,
		Temperature:   cfg.LLMTemperature,
		MaxTokens:     cfg.LLMMaxTokens,
	})

	// Initialize pipeline.
	orch := jobs.NewOrchestrator(jobs.Deps{
		Workspace:           ws,
		WorkspaceID:         cfg.WorkspaceID,
		Rewriter:            ag,
		Compiler:            comp,
		Artifacts:           artifacts,
		Events:              pub,
		Log:                 log.With("component", "jobs"),
		CompileAfterRewrite: cfg.CompileAfterRewrite,
	}, cfg.WorkerCount, cfg.MaxQueueSize, cfg.JobTTL)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(api.Deps{
		Workspace: ws,
		Agent:     ag,
		Jobs:      orch,
		Compiler:  comp,
		Artifacts: artifacts,
		Stats:     stats,
		Provider:  cfg.LLMProvider,
	}, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigCh:
		case <-ctx.Done():
		}
		log.Info("shutting down...")

		// Drain HTTP first so no rewrite is submitted to a stopped queue.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", "error", err)
		}

		orch.Stop()

		comp.Close()
		closeProvider(base, log)
	}()

	log.Info("starting resumeness",
		"port", cfg.Port,
		"provider", cfg.LLMProvider,
		"store", cfg.StoreBackend,
		"events", cfg.EventsBackend,
		"artifacts", cfg.ArtifactBackend,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		return err
	}
	<-done
	return nil
}

func closeProvider(p llm.TextCompletionProvider, log *slog.Logger) {
	switch c := p.(type) {
	case interface{ Close() }:
		c.Close()
	case interface{ Close() error }:
		if err := c.Close(); err != nil {
			log.Warn("close llm provider", "error", err)
		}
	}
}
