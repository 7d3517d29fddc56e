package repositories

import (
	"context"
	"fmt"

	"github.com/managementproperties/mono-repo/backend/shared/go-utils"
)

// schemaStatements are idempotent and run in order on every start.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS properties (
        id SERIAL PRIMARY KEY,
        title VARCHAR(255) NOT NULL,
        address VARCHAR(500),
        area VARCHAR(100),
        price DECIMAL(10,2) NOT NULL,
        price_unit VARCHAR(10) NOT NULL,
        status VARCHAR(10) NOT NULL,
        beds INTEGER DEFAULT 0,
        baths INTEGER DEFAULT 0,
        featured BOOLEAN DEFAULT false,
        lat DECIMAL(10,7) DEFAULT 0,
        lng DECIMAL(10,7) DEFAULT 0,
        images JSON DEFAULT '[]',
        description VARCHAR(2000),
        active BOOLEAN DEFAULT true,
        created_at TIMESTAMP DEFAULT NOW(),
        updated_at TIMESTAMP DEFAULT NOW()
    )`,
	`ALTER TABLE properties ADD COLUMN IF NOT EXISTS sale_price_unit VARCHAR(20)`,
	`ALTER TABLE properties ADD COLUMN IF NOT EXISTS availability VARCHAR(20)`,
	`ALTER TABLE properties DROP CONSTRAINT IF EXISTS properties_availability_check`,
	`ALTER TABLE properties ADD CONSTRAINT properties_availability_check
        CHECK (availability IN ('LET','SOLD','SALE AGREED') OR availability IS NULL)`,
	`ALTER TABLE properties DROP CONSTRAINT IF EXISTS properties_status_check`,
	`ALTER TABLE properties ADD CONSTRAINT properties_status_check
        CHECK (status IN ('rent','sale','commercial'))`,
	`CREATE INDEX IF NOT EXISTS properties_active_created_at_idx ON properties (active, created_at DESC)`,
}

// EnsureSchema creates the properties table when missing and applies the
// column and constraint migrations.
func EnsureSchema(ctx context.Context, db DB) error {
	for i, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema step %d: %w", i+1, err)
		}
	}
	utils.Logger.Info("Properties schema is up to date")
	return nil
}
