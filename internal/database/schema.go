package database

import (
	"context"
	"fmt"
)

// Document tables. Each row holds one entity as JSONB; id, slug and
// created_at are lifted into columns for lookups, uniqueness and ordering.
const (
	TableProperties = "properties"
	TableAgents     = "agents"
	TableUsers      = "users"
	TableLeads      = "leads"
	TableBlogPosts  = "blog_posts"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS properties (
		id         TEXT PRIMARY KEY,
		slug       TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		doc        JSONB NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS properties_agent_id_idx ON properties ((doc->>'agentId'))`,

	`CREATE TABLE IF NOT EXISTS agents (
		id         TEXT PRIMARY KEY,
		seq        BIGSERIAL,
		doc        JSONB NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		seq        BIGSERIAL,
		doc        JSONB NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_idx ON users (lower(doc->>'email'))`,

	`CREATE TABLE IF NOT EXISTS leads (
		id         TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		doc        JSONB NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS blog_posts (
		id         TEXT PRIMARY KEY,
		slug       TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		doc        JSONB NOT NULL
	)`,
}

// EnsureSchema creates the document tables if they do not exist.
func (db *Database) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// IsEmpty reports whether the properties table has no rows, which is how
// the server decides to load the demo dataset.
func (db *Database) IsEmpty(ctx context.Context) (bool, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM properties)`).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to inspect properties table: %w", err)
	}
	return !exists, nil
}
