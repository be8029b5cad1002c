package database

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied at startup. Every table is IF NOT EXISTS so repeated
// boots against the same database are harmless.
//
// The CHECK on products.stock_quantity backstops the ledger invariant that
// stock never goes negative; the cascade on transaction_items encodes that
// line items never outlive their transaction.
const schema = `
CREATE TABLE IF NOT EXISTS products (
	id             SERIAL PRIMARY KEY,
	sku            TEXT NOT NULL UNIQUE,
	name           TEXT NOT NULL,
	description    TEXT,
	cost_price     DOUBLE PRECISION NOT NULL DEFAULT 0,
	selling_price  DOUBLE PRECISION NOT NULL DEFAULT 0,
	stock_quantity INTEGER NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
	category       TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS transactions (
	id             BIGSERIAL PRIMARY KEY,
	total_amount   DOUBLE PRECISION NOT NULL,
	payment_method TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS transaction_items (
	id             BIGSERIAL PRIMARY KEY,
	transaction_id BIGINT NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
	product_sku    TEXT NOT NULL REFERENCES products(sku),
	quantity       INTEGER NOT NULL,
	price_at_sale  DOUBLE PRECISION NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transaction_items_sku ON transaction_items (product_sku);

CREATE TABLE IF NOT EXISTS stock_movements (
	id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	product_sku      TEXT NOT NULL,
	movement_type    TEXT NOT NULL,
	quantity_changed INTEGER NOT NULL,
	new_quantity     INTEGER NOT NULL,
	reason           TEXT,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// EnsureSchema applies the schema to the given pool.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}

// InitSchema creates the tables if they do not exist yet.
func InitSchema() {
	if err := EnsureSchema(context.Background(), db); err != nil {
		log.Fatalf("Failed to initialize database schema: %v\n", err)
	}
	log.Println("Database schema ready")
}
