package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/stwalsh4118/luxeestate/internal/models"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

type userRepository struct {
	s *Store
}

func emailTakenError() error {
	return store.NewValidationError("email", "Email is already registered")
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.s.db.Pool.Query(ctx, `SELECT doc FROM users ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	users, err := collectDocs[models.User](rows)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Normalize()
	}
	return users, nil
}

func (r *userRepository) Get(ctx context.Context, id string) (*models.User, error) {
	u, err := scanDoc[models.User](r.s.db.Pool.QueryRow(ctx, `SELECT doc FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, wrapLookup(err, "user", id)
	}
	u.Normalize()
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanDoc[models.User](r.s.db.Pool.QueryRow(ctx,
		`SELECT doc FROM users WHERE lower(doc->>'email') = lower($1)`, email))
	if err != nil {
		return nil, wrapLookup(err, "user", email)
	}
	u.Normalize()
	return u, nil
}

// Create relies on the unique email index; the violation becomes a
// validation error on the email field.
func (r *userRepository) Create(ctx context.Context, u models.User) (*models.User, error) {
	u.Normalize()
	if err := store.Validate(u); err != nil {
		return nil, err
	}

	u.ID = uuid.NewString()
	if err := insertDoc(ctx, r.s.db.Pool, `INSERT INTO users (id, doc) VALUES ($1, $2)`, u, u.ID); err != nil {
		if isUniqueViolation(err, userEmailKey) {
			return nil, emailTakenError()
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return &u, nil
}

func (r *userRepository) Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	return r.modify(ctx, id, func(u *models.User) error {
		patch.Apply(u)
		return store.Validate(*u)
	})
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.s.db.Pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *userRepository) ToggleBlock(ctx context.Context, id string) (*models.User, error) {
	return r.modify(ctx, id, func(u *models.User) error {
		u.Blocked = !u.Blocked
		return nil
	})
}

// modify loads the user under a row lock, applies fn and stores the result.
func (r *userRepository) modify(ctx context.Context, id string, fn func(*models.User) error) (*models.User, error) {
	var updated *models.User
	err := pgx.BeginFunc(ctx, r.s.db.Pool, func(tx pgx.Tx) error {
		u, err := scanDoc[models.User](tx.QueryRow(ctx, `SELECT doc FROM users WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		u.Normalize()

		if err := fn(u); err != nil {
			return err
		}

		if err := insertDoc(ctx, tx, `UPDATE users SET doc = $2 WHERE id = $1`, u, u.ID); err != nil {
			if isUniqueViolation(err, userEmailKey) {
				return emailTakenError()
			}
			return fmt.Errorf("failed to update user: %w", err)
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, wrapLookup(err, "user", id)
	}
	return updated, nil
}
