package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/stwalsh4118/luxeestate/internal/models"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

// agentColumns selects the document together with the live listing count.
const agentColumns = `a.doc, (SELECT count(*) FROM properties p WHERE p.doc->>'agentId' = a.id)`

type agentRepository struct {
	s *Store
}

func scanAgent(row pgx.Row) (*models.Agent, error) {
	var raw []byte
	var count int
	if err := row.Scan(&raw, &count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	var a models.Agent
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("failed to decode agent: %w", err)
	}
	a.ListingsCount = count
	return &a, nil
}

func (r *agentRepository) List(ctx context.Context, filter store.AgentFilter) ([]models.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents a`
	if !filter.IncludeInactive {
		query += ` WHERE a.doc->>'status' IN ('ACTIVE', 'ON_LEAVE')`
	}
	query += ` ORDER BY a.seq`

	rows, err := r.s.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query agents: %w", err)
	}
	defer rows.Close()

	agents := make([]models.Agent, 0)
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan agent row: %w", err)
		}
		agents = append(agents, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating agent rows: %w", err)
	}
	return agents, nil
}

func (r *agentRepository) Get(ctx context.Context, id string) (*models.Agent, error) {
	a, err := scanAgent(r.s.db.Pool.QueryRow(ctx, `SELECT `+agentColumns+` FROM agents a WHERE a.id = $1`, id))
	if err != nil {
		return nil, wrapLookup(err, "agent", id)
	}
	return a, nil
}

func (r *agentRepository) GetByEmail(ctx context.Context, email string) (*models.Agent, error) {
	a, err := scanAgent(r.s.db.Pool.QueryRow(ctx,
		`SELECT `+agentColumns+` FROM agents a WHERE lower(a.doc->>'email') = lower($1) LIMIT 1`, email))
	if err != nil {
		return nil, wrapLookup(err, "agent", email)
	}
	return a, nil
}

func (r *agentRepository) Create(ctx context.Context, a models.Agent) (*models.Agent, error) {
	a.Normalize()
	a.ListingsCount = 0
	if err := store.Validate(a); err != nil {
		return nil, err
	}

	a.ID = uuid.NewString()
	if err := insertDoc(ctx, r.s.db.Pool, `INSERT INTO agents (id, doc) VALUES ($1, $2)`, a, a.ID); err != nil {
		return nil, fmt.Errorf("failed to insert agent: %w", err)
	}
	return &a, nil
}

func (r *agentRepository) Update(ctx context.Context, id string, patch models.AgentPatch) (*models.Agent, error) {
	var updated *models.Agent
	err := pgx.BeginFunc(ctx, r.s.db.Pool, func(tx pgx.Tx) error {
		a, err := scanAgent(tx.QueryRow(ctx, `SELECT `+agentColumns+` FROM agents a WHERE a.id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}

		patch.Apply(a)
		if err := store.Validate(*a); err != nil {
			return err
		}

		count := a.ListingsCount
		a.ListingsCount = 0
		if err := insertDoc(ctx, tx, `UPDATE agents SET doc = $2 WHERE id = $1`, a, a.ID); err != nil {
			return fmt.Errorf("failed to update agent: %w", err)
		}
		a.ListingsCount = count
		updated = a
		return nil
	})
	if err != nil {
		return nil, wrapLookup(err, "agent", id)
	}
	return updated, nil
}

// Delete counts and deletes in one transaction so a listing created in
// between cannot be orphaned by the guard.
func (r *agentRepository) Delete(ctx context.Context, id string) error {
	err := pgx.BeginFunc(ctx, r.s.db.Pool, func(tx pgx.Tx) error {
		var locked string
		if err := tx.QueryRow(ctx, `SELECT id FROM agents WHERE id = $1 FOR UPDATE`, id).Scan(&locked); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return store.ErrNotFound
			}
			return err
		}

		n, err := countByAgent(ctx, tx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return store.NewAgentConflict(n)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM agents WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete agent %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return wrapLookup(err, "agent", id)
	}
	return nil
}

// Reassign moves every listing of from to to in a single statement inside
// a transaction.
func (r *agentRepository) Reassign(ctx context.Context, from, to string) (int, error) {
	var moved int
	err := pgx.BeginFunc(ctx, r.s.db.Pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE properties SET doc = jsonb_set(doc, '{agentId}', to_jsonb($2::text)) WHERE doc->>'agentId' = $1`,
			from, to)
		if err != nil {
			return fmt.Errorf("failed to reassign listings from %s to %s: %w", from, to, err)
		}
		moved = int(tag.RowsAffected())
		return nil
	})
	if err != nil {
		return 0, err
	}
	return moved, nil
}
