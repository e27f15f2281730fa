// Package repository implements the store contract on PostgreSQL, keeping
// each entity as a JSONB document in a per-kind table.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stwalsh4118/luxeestate/internal/database"
	"github.com/stwalsh4118/luxeestate/internal/models"
	"github.com/stwalsh4118/luxeestate/internal/seed"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

const uniqueViolation = "23505"

// Constraint names created by database.EnsureSchema.
const (
	propertySlugKey = "properties_slug_key"
	blogSlugKey     = "blog_posts_slug_key"
	userEmailKey    = "users_email_idx"
)

// maxInsertAttempts bounds retries after a slug collision that slipped
// past the availability check.
const maxInsertAttempts = 3

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the PostgreSQL implementation of store.Store.
type Store struct {
	db  *database.Database
	now func() time.Time
}

// NewStore creates a Store over an open database.
func NewStore(db *database.Database) *Store {
	return &Store{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Properties returns the property repository.
func (s *Store) Properties() store.PropertyStore { return &propertyRepository{s: s} }

// Agents returns the agent repository.
func (s *Store) Agents() store.AgentStore { return &agentRepository{s: s} }

// Users returns the user repository.
func (s *Store) Users() store.UserStore { return &userRepository{s: s} }

// Leads returns the lead repository.
func (s *Store) Leads() store.LeadStore { return &leadRepository{s: s} }

// Blog returns the blog repository.
func (s *Store) Blog() store.BlogStore { return &blogRepository{s: s} }

// Mode reports postgres mode.
func (s *Store) Mode() store.Mode { return store.ModePostgres }

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error { return s.db.Ping(ctx) }

// PoolStats reports the connection pool counters.
func (s *Store) PoolStats() database.PoolStats { return s.db.PoolStats() }

// Stats counts the dashboard aggregates in one round trip.
func (s *Store) Stats(ctx context.Context) (models.DashboardStats, error) {
	query := `
		SELECT
			(SELECT count(*) FROM properties),
			(SELECT count(*) FROM leads WHERE doc->>'status' = 'NEW'),
			(SELECT count(*) FROM agents WHERE doc->>'status' = 'ACTIVE'),
			(SELECT count(*) FROM users)
	`

	var stats models.DashboardStats
	err := s.db.Pool.QueryRow(ctx, query).Scan(
		&stats.TotalProperties,
		&stats.ActiveLeads,
		&stats.TotalAgents,
		&stats.TotalUsers,
	)
	if err != nil {
		return models.DashboardStats{}, fmt.Errorf("failed to count dashboard stats: %w", err)
	}
	return stats, nil
}

// Seed inserts the demo dataset, skipping records whose id already exists.
func (s *Store) Seed(ctx context.Context, ds *seed.Dataset) error {
	return pgx.BeginFunc(ctx, s.db.Pool, func(tx pgx.Tx) error {
		for _, p := range ds.Properties {
			if err := insertDoc(ctx, tx, `INSERT INTO properties (id, slug, created_at, doc) VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING`,
				p, p.ID, p.Slug, p.CreatedAt); err != nil {
				return err
			}
		}
		for _, a := range ds.Agents {
			a.ListingsCount = 0
			if err := insertDoc(ctx, tx, `INSERT INTO agents (id, doc) VALUES ($1, $2) ON CONFLICT DO NOTHING`, a, a.ID); err != nil {
				return err
			}
		}
		for _, u := range ds.Users {
			if err := insertDoc(ctx, tx, `INSERT INTO users (id, doc) VALUES ($1, $2) ON CONFLICT DO NOTHING`, u, u.ID); err != nil {
				return err
			}
		}
		for _, l := range ds.Leads {
			if err := insertDoc(ctx, tx, `INSERT INTO leads (id, created_at, doc) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
				l, l.ID, l.CreatedAt); err != nil {
				return err
			}
		}
		for _, b := range ds.Blog {
			if err := insertDoc(ctx, tx, `INSERT INTO blog_posts (id, slug, created_at, doc) VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING`,
				b, b.ID, b.Slug, b.CreatedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

// insertDoc encodes doc and appends it as the last query argument.
func insertDoc(ctx context.Context, q querier, sql string, doc any, args ...any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if _, err := q.Exec(ctx, sql, append(args, data)...); err != nil {
		return err
	}
	return nil
}

// scanDoc decodes a single doc column. pgx.ErrNoRows becomes store.ErrNotFound.
func scanDoc[T any](row pgx.Row) (*T, error) {
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return &v, nil
}

// collectDocs decodes every row of a single doc column. The result is
// never nil.
func collectDocs[T any](rows pgx.Rows) ([]T, error) {
	defer rows.Close()

	result := make([]T, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}
	return result, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == constraint
}

// slugTaken checks a slug against table, ignoring the row exceptID.
func slugTaken(ctx context.Context, q querier, table, exceptID string) func(string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE slug = $1 AND id <> $2)`, table)
	return func(candidate string) (bool, error) {
		var exists bool
		if err := q.QueryRow(ctx, query, candidate, exceptID).Scan(&exists); err != nil {
			return false, err
		}
		return exists, nil
	}
}

// whereBuilder accumulates AND-ed predicates with positional arguments.
type whereBuilder struct {
	clauses []string
	args    []any
}

// add appends a predicate; each "?" in clause is replaced by the next
// positional placeholder.
func (w *whereBuilder) add(clause string, args ...any) {
	for _, arg := range args {
		w.args = append(w.args, arg)
		clause = strings.Replace(clause, "?", fmt.Sprintf("$%d", len(w.args)), 1)
	}
	w.clauses = append(w.clauses, clause)
}

func (w *whereBuilder) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}
