package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/lexai/backend/config"
	"github.com/lexai/backend/handler"
	"github.com/lexai/backend/llm"
	"github.com/lexai/backend/middleware"
	"github.com/lexai/backend/service"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(configPath *string, newProvider llm.Factory) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configPath, cmd.Flags().Changed("config"), newProvider)
		},
	}
}

func runServe(ctx context.Context, configPath string, explicit bool, newProvider llm.Factory) error {
	cfg, err := loadConfig(configPath, explicit)
	if err != nil {
		return err
	}
	initLogger(cfg, os.Stdout)

	slog.Info("configuration loaded",
		"provider", cfg.LLM.Provider,
		"model", cfg.LLM.Model,
		"extractor", cfg.Extractor.Backend,
		"debug", cfg.Debug,
	)

	provider, auditor, err := buildAuditor(ctx, cfg, newProvider)
	if err != nil {
		return err
	}
	defer provider.Close()

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      newRouter(cfg, auditor),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("starting server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server exited gracefully")
	return nil
}

func newRouter(cfg *config.Config, auditor *service.Auditor) *gin.Engine {
	router := gin.New()
	if cfg.Server.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = cfg.Server.MaxUploadBytes
	}

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.CORS.AllowOrigins))
	router.Use(middleware.BodyLimit(cfg.Server.MaxUploadBytes))

	health := handler.NewHealthHandler(cfg.LLM.Model)
	router.GET("/", health.Root)
	router.GET("/health", health.Health)

	router.POST("/audit-contract", handler.NewAuditHandler(auditor, cfg.Server.MaxUploadBytes).AuditContract)
	router.POST("/chat", handler.NewChatHandler(auditor, cfg.Chat.AudioMIME, cfg.Server.MaxUploadBytes).Chat)

	return router
}
