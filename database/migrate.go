package database

import (
	"fmt"

	"gorm.io/gorm"
)

// Harden applies idempotent schema hardening on top of AutoMigrate:
// - Money column types (NUMERIC(12,2))
// - Indexes (items, history, idempotency keys)
// - Foreign key: estimate_items.service_id → services.id
// - Basic CHECK constraints (positive quantity, non-negative prices)
// Postgres-only; AutoMigrate alone is enough for the test database.
func Harden() error {
	return DB.Transaction(func(tx *gorm.DB) error {
		// --- Enforce money columns as NUMERIC(12,2) (idempotent ALTERs) ---
		alters := []string{
			`ALTER TABLE services       ALTER COLUMN base_price      TYPE numeric(12,2)`,
			`ALTER TABLE estimates      ALTER COLUMN total_amount    TYPE numeric(12,2)`,
			`ALTER TABLE estimates      ALTER COLUMN discount_amount TYPE numeric(12,2)`,
			`ALTER TABLE estimates      ALTER COLUMN final_amount    TYPE numeric(12,2)`,
			`ALTER TABLE estimate_items ALTER COLUMN unit_price      TYPE numeric(12,2)`,
			`ALTER TABLE estimate_items ALTER COLUMN total_price     TYPE numeric(12,2)`,
			`ALTER TABLE estimate_items ALTER COLUMN quantity        TYPE numeric(12,3)`,
		}
		for _, stmt := range alters {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("money type migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Composite / helpful indexes (idempotent) ---
		indexes := []string{
			`CREATE INDEX IF NOT EXISTS idx_estimate_items_estimate ON estimate_items (estimate_id)`,
			`CREATE INDEX IF NOT EXISTS idx_estimate_items_service ON estimate_items (service_id)`,
			`CREATE INDEX IF NOT EXISTS idx_estimate_history_estimate_changed ON estimate_histories (estimate_id, changed_at)`,
			`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_idempotency_keys_key ON idempotency_keys (key)`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Foreign key: estimate_items.service_id -> services.id (RESTRICT/RESTRICT) ---
		fk := `
DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1
		FROM pg_constraint
		WHERE conrelid = 'estimate_items'::regclass
		  AND conname  = 'fk_estimate_items_service'
	) THEN
		ALTER TABLE estimate_items
		ADD CONSTRAINT fk_estimate_items_service
		FOREIGN KEY (service_id)
		REFERENCES services(id)
		ON UPDATE RESTRICT
		ON DELETE RESTRICT;
	END IF;
END $$;`
		if err := tx.Exec(fk).Error; err != nil {
			return fmt.Errorf("foreign key migration failed: %w", err)
		}

		// --- Basic CHECK constraints (idempotent) ---
		checks := []string{
			// Non-negative catalog price
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'services'::regclass
					  AND conname  = 'chk_services_base_price_nonneg'
				) THEN
					ALTER TABLE services
					ADD CONSTRAINT chk_services_base_price_nonneg
					CHECK (base_price >= 0);
				END IF;
			END $$;`,
			// Items counted toward totals must have a positive quantity
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'estimate_items'::regclass
					  AND conname  = 'chk_estimate_items_quantity_pos'
				) THEN
					ALTER TABLE estimate_items
					ADD CONSTRAINT chk_estimate_items_quantity_pos
					CHECK (quantity > 0);
				END IF;
			END $$;`,
			// Unit price can be zero but never negative
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'estimate_items'::regclass
					  AND conname  = 'chk_estimate_items_unit_price_nonneg'
				) THEN
					ALTER TABLE estimate_items
					ADD CONSTRAINT chk_estimate_items_unit_price_nonneg
					CHECK (unit_price >= 0);
				END IF;
			END $$;`,
		}
		for _, stmt := range checks {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint migration failed: %w", err)
			}
		}

		return nil
	})
}
