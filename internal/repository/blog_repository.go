package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/stwalsh4118/luxeestate/internal/database"
	"github.com/stwalsh4118/luxeestate/internal/models"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

type blogRepository struct {
	s *Store
}

func (r *blogRepository) List(ctx context.Context, filter store.BlogFilter) ([]models.BlogPost, error) {
	var where whereBuilder
	if filter.AuthorID != "" {
		where.add(`doc->>'authorId' = ?`, filter.AuthorID)
	}

	rows, err := r.s.db.Pool.Query(ctx, `SELECT doc FROM blog_posts`+where.String()+` ORDER BY created_at DESC`, where.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query blog posts: %w", err)
	}
	return collectDocs[models.BlogPost](rows)
}

func (r *blogRepository) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	b, err := scanDoc[models.BlogPost](r.s.db.Pool.QueryRow(ctx, `SELECT doc FROM blog_posts WHERE slug = $1`, slug))
	if err != nil {
		return nil, wrapLookup(err, "blog post", slug)
	}
	return b, nil
}

func (r *blogRepository) Get(ctx context.Context, id string) (*models.BlogPost, error) {
	b, err := scanDoc[models.BlogPost](r.s.db.Pool.QueryRow(ctx, `SELECT doc FROM blog_posts WHERE id = $1`, id))
	if err != nil {
		return nil, wrapLookup(err, "blog post", id)
	}
	return b, nil
}

func (r *blogRepository) Create(ctx context.Context, b models.BlogPost) (*models.BlogPost, error) {
	if err := store.Validate(b); err != nil {
		return nil, err
	}

	b.ID = uuid.NewString()
	b.CreatedAt = r.s.now()

	for attempt := 0; ; attempt++ {
		slug, err := store.GenerateSlug(b.Title, slugTaken(ctx, r.s.db.Pool, database.TableBlogPosts, b.ID))
		if err != nil {
			return nil, err
		}
		b.Slug = slug

		err = insertDoc(ctx, r.s.db.Pool,
			`INSERT INTO blog_posts (id, slug, created_at, doc) VALUES ($1, $2, $3, $4)`,
			b, b.ID, b.Slug, b.CreatedAt)
		if err == nil {
			return &b, nil
		}
		if !isUniqueViolation(err, blogSlugKey) || attempt+1 >= maxInsertAttempts {
			return nil, fmt.Errorf("failed to insert blog post: %w", err)
		}
	}
}

func (r *blogRepository) Update(ctx context.Context, id string, patch models.BlogPostPatch) (*models.BlogPost, error) {
	var updated *models.BlogPost
	err := pgx.BeginFunc(ctx, r.s.db.Pool, func(tx pgx.Tx) error {
		b, err := scanDoc[models.BlogPost](tx.QueryRow(ctx, `SELECT doc FROM blog_posts WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}

		if patch.Apply(b) {
			slug, err := store.GenerateSlug(b.Title, slugTaken(ctx, tx, database.TableBlogPosts, b.ID))
			if err != nil {
				return err
			}
			b.Slug = slug
		}
		if err := store.Validate(*b); err != nil {
			return err
		}

		if err := insertDoc(ctx, tx, `UPDATE blog_posts SET slug = $2, doc = $3 WHERE id = $1`, b, b.ID, b.Slug); err != nil {
			return fmt.Errorf("failed to update blog post: %w", err)
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, wrapLookup(err, "blog post", id)
	}
	return updated, nil
}

func (r *blogRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.s.db.Pool.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete blog post %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
