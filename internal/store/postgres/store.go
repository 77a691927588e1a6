package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dyluth/quill/internal/clock"
	"github.com/dyluth/quill/internal/store"
	"github.com/dyluth/quill/pkg/posts"
)

const selectColumns = `id, title, body, excerpt, tags, created_at, updated_at`

// Store is a posts.Store backed by a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
	opts store.Options
}

// New returns a store on pool. Timestamps are truncated to microseconds,
// the resolution of TIMESTAMPTZ, so written and re-read posts compare equal.
func New(pool *pgxpool.Pool, opts store.Options) *Store {
	opts = opts.WithDefaults()
	opts.Clock = clock.Truncated{Clock: opts.Clock, Precision: time.Microsecond}
	return &Store{pool: pool, opts: opts}
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) List(ctx context.Context) ([]posts.Post, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+selectColumns+` FROM posts ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	out := []posts.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (posts.Post, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return posts.Post{}, posts.ErrNotFound
	}
	if err != nil {
		return posts.Post{}, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

func (s *Store) Create(ctx context.Context, in posts.Input) (posts.Post, error) {
	p, err := posts.NewPost(in, s.opts.NewID(), s.opts.Clock.Now())
	if err != nil {
		return posts.Post{}, err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO posts (id, title, body, excerpt, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.Title, p.Body, p.Excerpt, p.Tags, p.CreatedAt, p.UpdatedAt)
	if mapped := constraintError(err); mapped != nil {
		return posts.Post{}, mapped
	}
	if err != nil {
		return posts.Post{}, fmt.Errorf("insert post: %w", err)
	}
	return p, nil
}

func (s *Store) Update(ctx context.Context, id string, in posts.Input) (posts.Post, error) {
	return s.mutate(ctx, id, func(p posts.Post) (posts.Post, error) {
		return posts.ApplyUpdate(p, in, s.opts.Clock.Now())
	})
}

func (s *Store) Patch(ctx context.Context, id string, patch posts.Patch) (posts.Post, error) {
	return s.mutate(ctx, id, func(p posts.Post) (posts.Post, error) {
		return posts.ApplyPatch(p, patch, s.opts.Clock.Now())
	})
}

func (s *Store) Delete(ctx context.Context, id string) (posts.Post, error) {
	row := s.pool.QueryRow(ctx, `DELETE FROM posts WHERE id = $1 RETURNING `+selectColumns, id)
	p, err := scanPost(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return posts.Post{}, posts.ErrNotFound
	}
	if err != nil {
		return posts.Post{}, fmt.Errorf("delete post: %w", err)
	}
	return p, nil
}

// mutate locks the row, applies fn and writes the result back in one
// transaction. An error from fn rolls back without touching the row.
func (s *Store) mutate(ctx context.Context, id string, fn func(posts.Post) (posts.Post, error)) (posts.Post, error) {
	var result posts.Post
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+selectColumns+` FROM posts WHERE id = $1 FOR UPDATE`, id)
		current, err := scanPost(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return posts.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock post: %w", err)
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE posts SET title = $2, body = $3, excerpt = $4, tags = $5, updated_at = $6
			WHERE id = $1`,
			next.ID, next.Title, next.Body, next.Excerpt, next.Tags, next.UpdatedAt)
		if mapped := constraintError(err); mapped != nil {
			return mapped
		}
		if err != nil {
			return fmt.Errorf("update post: %w", err)
		}
		result = next
		return nil
	})
	if err != nil {
		return posts.Post{}, err
	}
	return result, nil
}

func scanPost(row pgx.Row) (posts.Post, error) {
	var p posts.Post
	if err := row.Scan(&p.ID, &p.Title, &p.Body, &p.Excerpt, &p.Tags, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return posts.Post{}, err
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}
