package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// Each aggregate is one row; nested parts (cart lines, order lines, shipping
// address, images) are JSONB documents.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	name TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS products (
	id UUID PRIMARY KEY,
	subcategory_id UUID NOT NULL,
	name TEXT NOT NULL,
	short_description TEXT NOT NULL,
	long_description TEXT NOT NULL DEFAULT '',
	price NUMERIC(12, 2) NOT NULL CHECK (price >= 0),
	discount_price NUMERIC(12, 2),
	stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
	total_sold INTEGER NOT NULL DEFAULT 0 CHECK (total_sold >= 0),
	average_rating DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (average_rating BETWEEN 0 AND 5),
	total_ratings INTEGER NOT NULL DEFAULT 0,
	images JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS carts (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL UNIQUE REFERENCES users (id),
	items JSONB NOT NULL DEFAULT '[]',
	total_amount NUMERIC(14, 2) NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS orders (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES users (id),
	items JSONB NOT NULL,
	shipping_address JSONB NOT NULL,
	total_price NUMERIC(14, 2) NOT NULL,
	payment_method TEXT NOT NULL,
	payment_status TEXT NOT NULL,
	order_status TEXT NOT NULL,
	payment_intent_id TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders (user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_orders_items ON orders USING GIN (items jsonb_path_ops);

CREATE TABLE IF NOT EXISTS reviews (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES users (id),
	product_id UUID NOT NULL REFERENCES products (id) ON DELETE CASCADE,
	rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
	comment TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, product_id)
);

CREATE TABLE IF NOT EXISTS payments (
	id UUID PRIMARY KEY,
	order_id UUID NOT NULL REFERENCES orders (id),
	user_id UUID NOT NULL REFERENCES users (id),
	amount NUMERIC(14, 2) NOT NULL,
	currency TEXT NOT NULL,
	status TEXT NOT NULL,
	stripe_id TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS notifications (
	id UUID PRIMARY KEY,
	type TEXT NOT NULL,
	recipient TEXT NOT NULL,
	subject TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL,
	status TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Migrate creates the tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}
