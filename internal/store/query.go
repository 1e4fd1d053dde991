package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/examiz/internal/exam"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func (c conn) builder() *entsql.DialectBuilder {
	return entsql.Dialect(c.dialect)
}

func (c conn) exec(ctx context.Context, b entsql.Querier) (sql.Result, error) {
	query, args := b.Query()
	return c.q.ExecContext(ctx, query, args...)
}

func (c conn) query(ctx context.Context, b entsql.Querier) (*sql.Rows, error) {
	query, args := b.Query()
	return c.q.QueryContext(ctx, query, args...)
}

func (c conn) queryRow(ctx context.Context, b entsql.Querier) *sql.Row {
	query, args := b.Query()
	return c.q.QueryRowContext(ctx, query, args...)
}

func (c conn) postgres() bool {
	return c.dialect == dialect.Postgres
}

// notFound maps sql.ErrNoRows to exam.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return exam.ErrNotFound
	}
	return err
}

// now returns the current time in UTC with a precision every supported
// database keeps.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func utc(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
