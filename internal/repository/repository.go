// Package repository holds the SQL of the service.
//
// Repositories talk to PostgreSQL through pgx and return domain types from
// internal/model. Missing rows are reported as (nil, nil); callers decide
// what "not found" means. Driver errors are wrapped with github.com/pkg/errors
// and translated into API errors by sqlerr further up.
package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// DB is the part of *pgxpool.Pool the repositories use.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}
