package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sengtan/utm-campus-chatbot/internal/config"
	"github.com/sengtan/utm-campus-chatbot/internal/handler"
	"github.com/sengtan/utm-campus-chatbot/internal/repository"
	"github.com/sengtan/utm-campus-chatbot/internal/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "campus-assistant",
		Short:        "UTM campus assistant API",
		Version:      fmt.Sprintf("%s (built %s, commit %s)", Version, BuildTime, GitCommit),
		SilenceUsage: true,
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context())
		},
	}

	root.AddCommand(serve, newChatCmd(), newClassifyIssueCmd())
	// running the binary with no subcommand starts the server
	root.RunE = serve.RunE
	return root
}

// app bundles what every command needs
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	repo      *repository.FacilityRepository
	assistant *service.Assistant
}

func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := initializeLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	// The assistant keeps answering from the fallback rules when the store is down
	var store service.FacilityStore
	repo, err := repository.NewFacilityRepository(
		cfg.Database.Driver,
		cfg.GetDatabaseDSN(),
		cfg.Database.MaxConnections,
		cfg.Database.MaxIdleConnections,
	)
	if err != nil {
		logger.Error("Failed to connect to facility store, starting without facility context",
			zap.String("driver", cfg.Database.Driver),
			zap.Error(err))
		repo = nil
	} else {
		logger.Info("Connected to facility store", zap.String("driver", cfg.Database.Driver))
		store = repo
	}

	backend := service.NewBackend(&cfg.LLM, logger.Named("llm"))
	assistant := service.NewAssistant(cfg, backend, store, logger)

	return &app{cfg: cfg, logger: logger, repo: repo, assistant: assistant}, nil
}

func (a *app) close() {
	if a.repo != nil {
		if err := a.repo.Close(); err != nil {
			a.logger.Warn("Failed to close facility store", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

func runServer(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	// initial load runs in the background, replies use the fallback rules until it lands
	go a.assistant.RefreshContext(ctx)

	a.logger.Info("Starting campus assistant",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit))

	gin.SetMode(a.cfg.Server.GinMode)
	router := handler.NewRouter(a.cfg, a.assistant, handler.BuildInfo{
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: GitCommit,
	}, a.logger.Named("http"))

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		if err != nil {
			a.logger.Error("HTTP server failed", zap.Error(err))
			return err
		}
		return nil
	case sig := <-quit:
		a.logger.Info("Shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Graceful shutdown failed", zap.Error(err))
		return err
	}

	a.logger.Info("Server stopped")
	return nil
}
