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
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"rental-manager/internal/auth"
	"rental-manager/internal/clock"
	"rental-manager/internal/config"
	"rental-manager/internal/database"
	"rental-manager/internal/handlers"
	"rental-manager/internal/ratelimit"
	"rental-manager/internal/scheduler"
	"rental-manager/internal/search"
	"rental-manager/internal/server"
	"rental-manager/internal/upload"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "rental-manager",
		Short:        "Rental property management API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", getEnv("CONFIG_PATH", "config/config.yaml"), "path to the YAML config file")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(configPath)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrate(configPath)
			},
		},
		processCmd(&configPath),
		&cobra.Command{
			Use:   "reindex",
			Short: "Push every property to the search index",
			RunE: func(cmd *cobra.Command, args []string) error {
				return reindex(configPath)
			},
		},
	)
	return root
}

func processCmd(configPath *string) *cobra.Command {
	var userID uint
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Refresh payment statuses and generate notifications once",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			var target *uint
			if userID != 0 {
				target = &userID
			}
			summary, err := scheduler.NewScheduler(a.db.DB(), a.cfg, a.clock).RunNow(target)
			if err != nil {
				return err
			}
			log.WithFields(log.Fields{
				"users":          summary.Users,
				"failed":         summary.Failed,
				"notifications":  summary.Notifications,
				"status_changes": summary.StatusChanges,
			}).Info("Process completed")
			return nil
		},
	}
	cmd.Flags().UintVar(&userID, "user-id", 0, "process a single user (default: every user)")
	return cmd
}

type app struct {
	cfg   *config.Config
	db    *database.GormDB
	clock clock.Clock
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		log.WithError(err).Warn("Failed to close database")
	}
}

// setup loads configuration, configures logging and opens a migrated database
func setup(configPath string) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}
	configureLogging(cfg.Logging)
	log.Infof("Loaded configuration from %s", configPath)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	log.Infof("Using %s database", cfg.Database.Type)
	db, err := database.NewGormDB(cfg.Database, cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	if err := db.InitSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &app{cfg: cfg, db: db, clock: clock.NewSystem(loc)}, nil
}

func configureLogging(cfg config.LoggingConfig) {
	if level, err := log.ParseLevel(cfg.Level); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("Unknown log level %q, using info", cfg.Level)
		log.SetLevel(log.InfoLevel)
	}
	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func migrate(configPath string) error {
	a, err := setup(configPath)
	if err != nil {
		return err
	}
	defer a.close()
	log.Info("Schema is up to date")
	return nil
}

// searchIndex connects to Meilisearch when enabled. A nil client means the
// database fallback serves searches.
func searchIndex(cfg config.SearchConfig) *search.SearchClient {
	if !cfg.Enabled {
		log.Info("Search: disabled, property search uses the database")
		return nil
	}
	client := search.NewSearchClient(cfg.Meilisearch.Host, cfg.Meilisearch.APIKey, cfg.Meilisearch.Index)
	if err := client.InitIndex(); err != nil {
		log.WithError(err).Warn("Search: failed to initialize index")
	}
	return client
}

func reindex(configPath string) error {
	a, err := setup(configPath)
	if err != nil {
		return err
	}
	defer a.close()

	client := searchIndex(a.cfg.Search)
	if client == nil {
		return errors.New("search is disabled in configuration")
	}
	result, err := search.Reindex(a.db.DB(), client, 500)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"total":   result.Total,
		"indexed": result.Indexed,
		"failed":  result.Failed,
	}).Info("Reindex finished")
	return nil
}

func serve(configPath string) error {
	a, err := setup(configPath)
	if err != nil {
		return err
	}
	defer a.close()
	cfg := a.cfg

	if cfg.Auth.Secret == "" {
		return errors.New("auth secret is not configured (set JWT_SECRET)")
	}
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	var index search.Index
	if client := searchIndex(cfg.Search); client != nil {
		breaker := search.NewCircuitBreaker(cfg.Search.BreakerFailures, cfg.Search.GetBreakerReset(), a.clock)
		index = search.NewGuarded(client, breaker)
	}

	limiter := ratelimit.NewRateLimiter(
		cfg.RateLimit.RequestsPerMinute,
		cfg.RateLimit.RequestsPerHour,
		cfg.RateLimit.RequestsPerDay,
		cfg.RateLimit.Enabled,
		a.clock,
	)
	log.Infof("Rate limiter initialized: %d req/min, %d req/hour, %d req/day (enabled: %v)",
		cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.RequestsPerHour, cfg.RateLimit.RequestsPerDay, cfg.RateLimit.Enabled)

	storage := upload.NewStorage(cfg.Upload, a.clock)

	sched := scheduler.NewScheduler(a.db.DB(), cfg, a.clock)
	if err := sched.Start(); err != nil {
		log.WithError(err).Warn("Failed to start scheduler")
	}
	defer sched.Stop()

	router := server.NewRouter(server.Deps{
		Config:   cfg,
		Handler:  handlers.NewHandler(a.db.DB(), cfg, a.clock, storage, index),
		Admin:    handlers.NewAdminHandler(a.db.DB(), a.clock, cfg.Notifications, limiter),
		Storage:  storage,
		Limiter:  limiter,
		Verifier: auth.NewVerifier(cfg.Auth).Middleware(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Server starting on port %s", cfg.Server.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
