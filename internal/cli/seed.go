package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"quiz-session-service/internal/bank"
	"quiz-session-service/internal/config"
)

// NewSeedCmd loads the built-in question banks into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the built-in question banks into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath)
		},
	}
}

func runSeed(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	for language, b := range bank.Banks() {
		data, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("marshal bank %q: %w", language, err)
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO question_banks (language, data) VALUES (?, ?::jsonb)
			 ON CONFLICT (language) DO UPDATE SET data=EXCLUDED.data, updated_at=now()`,
			string(language), string(data),
		); err != nil {
			return fmt.Errorf("seed bank %q: %w", language, err)
		}
		log.Printf("seeded bank %s (%d questions)", language, len(b.Questions))
	}
	return nil
}
