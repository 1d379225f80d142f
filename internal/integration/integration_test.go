package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"quiz-session-service/internal/analytics"
	"quiz-session-service/internal/app"
	"quiz-session-service/internal/domain"
	pgloader "quiz-session-service/internal/infra/postgres"
	infraredis "quiz-session-service/internal/infra/redis"
	pgmigrations "quiz-session-service/migrations"
)

func TestQuizSessionEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedBank(t, ctx, pgURL, sampleBank())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgloader.NewBankLoader(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	banks := infraredis.NewBankRepository(redisClient, loader, 5*time.Minute)

	sink := analytics.NewRedisSink(redisClient, "analytics:events")
	registry := analytics.NewRegistry(sink)
	registry.Initialize(ctx)
	tracker := analytics.NewTracker(registry, "")
	defer tracker.Close()

	service := app.NewSessionService(banks, tracker)
	if err := service.Init(ctx, domain.LanguageEnglish); err != nil {
		t.Fatalf("init: %v", err)
	}

	service.Answer(1) // correct
	service.Advance()

	state, err := service.State()
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if !state.IsCompleted || state.Score != 1 {
		t.Fatalf("expected completed quiz with score 1, got %+v", state)
	}

	// The stream is fed asynchronously; poll briefly.
	deadline := time.Now().Add(5 * time.Second)
	var entries []goredis.XMessage
	for time.Now().Before(deadline) {
		entries, err = redisClient.XRange(ctx, "analytics:events", "-", "+").Result()
		if err != nil {
			t.Fatalf("xrange: %v", err)
		}
		if len(entries) >= 4 {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	// quiz_started, answer_selected, feedback_viewed, quiz_completed
	seen := map[string]bool{}
	for _, entry := range entries {
		if name, ok := entry.Values["event_name"].(string); ok {
			seen[name] = true
		}
	}
	for _, want := range []string{
		analytics.EventQuizStarted,
		analytics.EventAnswerSelected,
		analytics.EventFeedbackViewed,
		analytics.EventQuizCompleted,
	} {
		if !seen[want] {
			t.Fatalf("expected %s on the stream, saw %v", want, seen)
		}
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedBank(t *testing.T, ctx context.Context, dsn string, bank domain.Bank) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	data, err := json.Marshal(bank)
	if err != nil {
		t.Fatalf("marshal bank: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO question_banks (language, data) VALUES (?, ?::jsonb) ON CONFLICT (language) DO UPDATE SET data=EXCLUDED.data`, string(bank.Language), string(data)); err != nil {
		t.Fatalf("insert bank: %v", err)
	}
}

func sampleBank() domain.Bank {
	return domain.Bank{
		Language: domain.LanguageEnglish,
		Questions: []domain.Question{
			{
				ID:               1,
				Prompt:           "What is 2 + 2?",
				Options:          []string{"3", "4", "5"},
				CorrectAnswer:    1,
				Difficulty:       domain.DifficultyEasy,
				TimeLimitSeconds: 60,
			},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
