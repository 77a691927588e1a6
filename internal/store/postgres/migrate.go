package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate applies every embedded *.up.sql file in lexical order.
// Migrations are written to be idempotent, so Migrate is safe on every boot.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	ac, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire conn: %w", err)
	}
	defer ac.Release()

	names, err := fs.Glob(migrationFS, "migrations/*.up.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		b, err := migrationFS.ReadFile(name)
		if err != nil {
			return err
		}
		if err := execMulti(ctx, ac.Conn(), string(b)); err != nil {
			return fmt.Errorf("%s: %w", strings.TrimPrefix(name, "migrations/"), err)
		}
	}
	return nil
}

func execMulti(ctx context.Context, conn *pgx.Conn, sql string) error {
	res, err := conn.PgConn().Exec(ctx, sql).ReadAll()
	if err != nil {
		return err
	}
	for _, r := range res {
		if r.Err != nil {
			if pe, ok := r.Err.(*pgconn.PgError); ok {
				return fmt.Errorf("postgres error: %s (%s)", pe.Message, pe.Code)
			}
			return r.Err
		}
	}
	return nil
}
