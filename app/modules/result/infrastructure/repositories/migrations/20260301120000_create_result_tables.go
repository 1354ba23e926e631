package resultmigrations

import (
	"context"
	"fmt"

	resultdb "github.com/Black-And-White-Club/cube-records/app/modules/result/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating rounds and results tables...")

		if _, err := db.NewCreateTable().Model((*resultdb.Round)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*resultdb.Result)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Result tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping rounds and results tables...")

		if _, err := db.NewDropTable().Model((*resultdb.Result)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*resultdb.Round)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Result tables dropped successfully!")
		return nil
	})
}
