package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/stwalsh4118/luxeestate/internal/database"
	"github.com/stwalsh4118/luxeestate/internal/models"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

type propertyRepository struct {
	s *Store
}

// List translates the filter into SQL over the JSONB document. Search uses
// strpos so user input never needs LIKE escaping.
func (r *propertyRepository) List(ctx context.Context, filter store.PropertyFilter) ([]models.Property, error) {
	var where whereBuilder
	if filter.AgentID != "" {
		where.add(`doc->>'agentId' = ?`, filter.AgentID)
	}
	if filter.Status != "" {
		where.add(`doc->>'status' = ?`, string(filter.Status))
	}
	if filter.MinPrice != nil {
		where.add(`(doc->>'price')::numeric >= ?`, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		where.add(`(doc->>'price')::numeric <= ?`, *filter.MaxPrice)
	}
	if filter.Search != "" {
		where.add(`(strpos(lower(doc->>'title'), lower(?)) > 0
			OR strpos(lower(doc->'location'->>'city'), lower(?)) > 0
			OR strpos(lower(doc->>'type'), lower(?)) > 0)`,
			filter.Search, filter.Search, filter.Search)
	}

	order := ` ORDER BY created_at DESC`
	switch filter.SortBy {
	case store.SortPriceAsc:
		order = ` ORDER BY (doc->>'price')::numeric ASC, created_at DESC`
	case store.SortPriceDesc:
		order = ` ORDER BY (doc->>'price')::numeric DESC, created_at DESC`
	}

	rows, err := r.s.db.Pool.Query(ctx, `SELECT doc FROM properties`+where.String()+order, where.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	return collectDocs[models.Property](rows)
}

func (r *propertyRepository) GetBySlug(ctx context.Context, slug string) (*models.Property, error) {
	p, err := scanDoc[models.Property](r.s.db.Pool.QueryRow(ctx, `SELECT doc FROM properties WHERE slug = $1`, slug))
	if err != nil {
		return nil, wrapLookup(err, "property", slug)
	}
	return p, nil
}

func (r *propertyRepository) Get(ctx context.Context, id string) (*models.Property, error) {
	p, err := scanDoc[models.Property](r.s.db.Pool.QueryRow(ctx, `SELECT doc FROM properties WHERE id = $1`, id))
	if err != nil {
		return nil, wrapLookup(err, "property", id)
	}
	return p, nil
}

func (r *propertyRepository) Create(ctx context.Context, p models.Property) (*models.Property, error) {
	p.Normalize()
	if err := store.Validate(p); err != nil {
		return nil, err
	}

	p.ID = uuid.NewString()
	p.CreatedAt = r.s.now()

	for attempt := 0; ; attempt++ {
		slug, err := store.GenerateSlug(p.Title, slugTaken(ctx, r.s.db.Pool, database.TableProperties, p.ID))
		if err != nil {
			return nil, err
		}
		p.Slug = slug

		err = insertDoc(ctx, r.s.db.Pool,
			`INSERT INTO properties (id, slug, created_at, doc) VALUES ($1, $2, $3, $4)`,
			p, p.ID, p.Slug, p.CreatedAt)
		if err == nil {
			return &p, nil
		}
		if !isUniqueViolation(err, propertySlugKey) || attempt+1 >= maxInsertAttempts {
			return nil, fmt.Errorf("failed to insert property: %w", err)
		}
	}
}

// Update locks the row, merges the patch and writes the document back in
// one transaction.
func (r *propertyRepository) Update(ctx context.Context, id string, patch models.PropertyPatch) (*models.Property, error) {
	var updated *models.Property
	err := pgx.BeginFunc(ctx, r.s.db.Pool, func(tx pgx.Tx) error {
		p, err := scanDoc[models.Property](tx.QueryRow(ctx, `SELECT doc FROM properties WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}

		if patch.Apply(p) {
			slug, err := store.GenerateSlug(p.Title, slugTaken(ctx, tx, database.TableProperties, p.ID))
			if err != nil {
				return err
			}
			p.Slug = slug
		}
		if err := store.Validate(*p); err != nil {
			return err
		}

		if err := insertDoc(ctx, tx, `UPDATE properties SET slug = $2, doc = $3 WHERE id = $1`, p, p.ID, p.Slug); err != nil {
			return fmt.Errorf("failed to update property: %w", err)
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, wrapLookup(err, "property", id)
	}
	return updated, nil
}

func (r *propertyRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.s.db.Pool.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete property %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *propertyRepository) CountByAgent(ctx context.Context, agentID string) (int, error) {
	return countByAgent(ctx, r.s.db.Pool, agentID)
}

func countByAgent(ctx context.Context, q querier, agentID string) (int, error) {
	var n int
	if err := q.QueryRow(ctx, `SELECT count(*) FROM properties WHERE doc->>'agentId' = $1`, agentID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count properties for agent %s: %w", agentID, err)
	}
	return n, nil
}

// wrapLookup passes store errors through and adds context to driver errors.
func wrapLookup(err error, kind, key string) error {
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrValidation) || errors.Is(err, store.ErrConflict) {
		return err
	}
	return fmt.Errorf("failed to load %s %s: %w", kind, key, err)
}
