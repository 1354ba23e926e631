package resultmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Adding result indexes...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			stmts := []string{
				`CREATE INDEX IF NOT EXISTS idx_results_event_date ON results (event_id, date, created_at)`,
				`CREATE INDEX IF NOT EXISTS idx_results_round_id ON results (round_id) WHERE round_id IS NOT NULL`,
				`CREATE INDEX IF NOT EXISTS idx_results_event_best ON results (event_id, best) WHERE best > 0`,
				`CREATE INDEX IF NOT EXISTS idx_results_event_average ON results (event_id, average) WHERE average > 0`,
				`CREATE INDEX IF NOT EXISTS idx_results_event_country ON results (event_id, country_code) WHERE country_code IS NOT NULL`,
				`CREATE INDEX IF NOT EXISTS idx_results_event_continent ON results (event_id, continent_code) WHERE continent_code IS NOT NULL`,
			}
			for _, stmt := range stmts {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("failed to add index to results: %w", err)
				}
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Rolling back result indexes...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				DROP INDEX IF EXISTS idx_results_event_date;
				DROP INDEX IF EXISTS idx_results_round_id;
				DROP INDEX IF EXISTS idx_results_event_best;
				DROP INDEX IF EXISTS idx_results_event_average;
				DROP INDEX IF EXISTS idx_results_event_country;
				DROP INDEX IF EXISTS idx_results_event_continent;
			`); err != nil {
				return fmt.Errorf("failed to drop result indexes: %w", err)
			}
			return nil
		})
	})
}
