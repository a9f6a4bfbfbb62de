package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/moonheart/banana-slides/internal/api"
	"github.com/moonheart/banana-slides/internal/config"
	"github.com/moonheart/banana-slides/internal/database"
	"github.com/moonheart/banana-slides/internal/repositories"
	"github.com/moonheart/banana-slides/internal/services"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "banana-api",
		Short:   "banana-slides settings API server",
		Version: version,
	}

	var host string
	var port int
	var dbPath string

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if it exists (ignore error if file doesn't exist)
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("db") {
				cfg.DatabasePath = dbPath
			}
			return runServe(cfg)
		},
	}

	f := serve.Flags()
	f.StringVar(&host, "host", "0.0.0.0", "Bind address")
	f.IntVarP(&port, "port", "p", 8080, "HTTP port")
	f.StringVar(&dbPath, "db", "banana.db", "SQLite database path")

	root.AddCommand(serve)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(cfg *config.Config) error {
	logger := newLogger(cfg)

	db, err := database.Init(database.Options{Path: cfg.DatabasePath})
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}

	runtime := config.NewRuntime()
	repo := repositories.NewSettingsRepository(db, cfg)
	settings := services.NewSettingsService(repo, cfg, runtime, logger)

	// First access creates the settings row and primes the runtime mirror.
	if _, err := settings.Get(context.Background()); err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if cfg.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(api.RequestLogger(logger), gin.Recovery())
	api.SetupRoutes(router, settings)

	apiCfg := &api.Config{Host: cfg.Host, Port: cfg.Port, ReleaseMode: cfg.ReleaseMode}
	srv := &api.Server{Router: router, DB: db, Config: apiCfg}

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: router,
	}

	go func() {
		logger.Info("starting banana-api server", "addr", httpSrv.Addr, "version", version)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("close error", "err", err)
	}
	logger.Info("server stopped")
	return nil
}

func newLogger(cfg *config.Config) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})

	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	}

	switch strings.ToLower(cfg.LogFormat) {
	case "json":
		logger.SetFormatter(log.JSONFormatter)
	case "logfmt":
		logger.SetFormatter(log.LogfmtFormatter)
	}

	return logger
}
