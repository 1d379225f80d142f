package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quiz-session-service/internal/analytics"
	"quiz-session-service/internal/app"
	"quiz-session-service/internal/bank"
	"quiz-session-service/internal/config"
	"quiz-session-service/internal/infra/memory"
	pgloader "quiz-session-service/internal/infra/postgres"
	redisinfra "quiz-session-service/internal/infra/redis"
	transport "quiz-session-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz session server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	banks := buildBankRepository(cfg, redisClient, pool)
	registry := buildSinkRegistry(cfg, redisClient)
	registry.Initialize(ctx)

	wsHandler := transport.NewSessionHandler(banks, registry, cfg.Analytics.PageURL)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz session service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildBankRepository picks the question source: built-in banks by
// default, Postgres when configured, fronted by a Redis or in-memory
// TTL cache.
func buildBankRepository(cfg config.Config, redisClient *redis.Client, pool *pgxpool.Pool) app.BankRepository {
	ttl := config.TTLDuration(cfg.Bank.TTL, 10*time.Minute)

	if pool != nil {
		loader := pgloader.NewBankLoader(pool)
		if redisClient != nil {
			return redisinfra.NewBankRepository(redisClient, loader, ttl)
		}
		return memory.NewBankRepository(loader, ttl)
	}
	return memory.NewBankRepository(memory.NewStaticBankLoader(bank.Banks()), ttl)
}

// buildSinkRegistry assembles the analytics fan-out from config. With
// nothing configured the console sink keeps events observable.
func buildSinkRegistry(cfg config.Config, redisClient *redis.Client) *analytics.Registry {
	registry := analytics.NewRegistry()
	if cfg.Analytics.Console {
		registry.Add(analytics.NewConsoleSink())
	}
	if cfg.Analytics.Endpoint != "" {
		registry.Add(analytics.NewHTTPSink(cfg.Analytics.Endpoint, cfg.Analytics.APIKey))
	}
	if redisClient != nil {
		registry.Add(analytics.NewRedisSink(redisClient, cfg.Redis.Stream))
	}
	if registry.Len() == 0 {
		registry.Add(analytics.NewConsoleSink())
	}
	return registry
}
