package seeder

import (
	"context"
	"fmt"

	"blue-collar-portal/internal/database"
)

var defaultIndustries = []string{
	"Construction",
	"Manufacturing",
	"Logistics & Warehousing",
	"Hospitality & Food Service",
	"Retail",
	"Cleaning & Facilities",
	"Security Services",
	"Agriculture",
	"Automotive & Mechanics",
	"Healthcare Support",
}

type IndustriesSeeder struct{}

func (IndustriesSeeder) Name() string { return "industries" }

func (IndustriesSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "industries", "id", "name", "created_at"); err != nil {
		return err
	}

	return database.WithTx(ctx, db, func(ctx context.Context, tx database.Tx) error {
		for _, name := range defaultIndustries {
			if _, err := tx.Exec(
				ctx,
				`INSERT INTO industries (id, name) VALUES (gen_random_uuid(), $1) ON CONFLICT (name) DO NOTHING`,
				name,
			); err != nil {
				return fmt.Errorf("insert industry %s: %w", name, err)
			}
		}
		return nil
	})
}
