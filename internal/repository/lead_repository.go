package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/stwalsh4118/luxeestate/internal/models"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

type leadRepository struct {
	s *Store
}

func (r *leadRepository) List(ctx context.Context, filter store.LeadFilter) ([]models.Lead, error) {
	var where whereBuilder
	if filter.Status != "" {
		where.add(`doc->>'status' = ?`, string(filter.Status))
	}
	if filter.PropertyID != "" {
		where.add(`doc->>'propertyId' = ?`, filter.PropertyID)
	}
	if filter.AssignedAgentID != "" {
		where.add(`doc->>'assignedAgentId' = ?`, filter.AssignedAgentID)
	}

	rows, err := r.s.db.Pool.Query(ctx, `SELECT doc FROM leads`+where.String()+` ORDER BY created_at DESC`, where.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	return collectDocs[models.Lead](rows)
}

func (r *leadRepository) Get(ctx context.Context, id string) (*models.Lead, error) {
	l, err := scanDoc[models.Lead](r.s.db.Pool.QueryRow(ctx, `SELECT doc FROM leads WHERE id = $1`, id))
	if err != nil {
		return nil, wrapLookup(err, "lead", id)
	}
	return l, nil
}

func (r *leadRepository) Create(ctx context.Context, l models.Lead) (*models.Lead, error) {
	if l.Status == "" {
		l.Status = models.LeadNew
	}
	if err := store.Validate(l); err != nil {
		return nil, err
	}

	l.ID = uuid.NewString()
	l.CreatedAt = r.s.now()
	if err := insertDoc(ctx, r.s.db.Pool, `INSERT INTO leads (id, created_at, doc) VALUES ($1, $2, $3)`, l, l.ID, l.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert lead: %w", err)
	}
	return &l, nil
}

func (r *leadRepository) Update(ctx context.Context, id string, patch models.LeadPatch) (*models.Lead, error) {
	var updated *models.Lead
	err := pgx.BeginFunc(ctx, r.s.db.Pool, func(tx pgx.Tx) error {
		l, err := scanDoc[models.Lead](tx.QueryRow(ctx, `SELECT doc FROM leads WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}

		patch.Apply(l)
		if err := store.Validate(*l); err != nil {
			return err
		}

		if err := insertDoc(ctx, tx, `UPDATE leads SET doc = $2 WHERE id = $1`, l, l.ID); err != nil {
			return fmt.Errorf("failed to update lead: %w", err)
		}
		updated = l
		return nil
	})
	if err != nil {
		return nil, wrapLookup(err, "lead", id)
	}
	return updated, nil
}

func (r *leadRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.s.db.Pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lead %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
