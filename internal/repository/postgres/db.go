package postgresrepo

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/deskgo/internal/repository"
)

//go:embed schema.sql
var schema string

type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool: pool,
	}
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	const op = "postgresrepo.Store.Migrate"

	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Store) RunTx(
	ctx context.Context,
	opts *pgx.TxOptions,
	fn func(ctx context.Context, tx DB) error,
) error {
	txOpts := pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	}

	if opts != nil {
		txOpts.IsoLevel = opts.IsoLevel
		txOpts.AccessMode = opts.AccessMode
		txOpts.DeferrableMode = opts.DeferrableMode
	}

	tx, err := s.pool.BeginTx(ctx, txOpts)
	if err != nil {
		return err
	}

	defer tx.Rollback(ctx)

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// InTx runs fn with repositories bound to a single transaction.
func (s *Store) InTx(
	ctx context.Context,
	opts *pgx.TxOptions,
	fn func(ctx context.Context, repos repository.Repos) error,
) error {
	return s.RunTx(ctx, opts, func(ctx context.Context, tx DB) error {
		return fn(ctx, txRepos{pool: s.pool, db: tx})
	})
}

func (s *Store) Seats() repository.SeatRepository { return &SeatRepo{pool: s.pool} }
func (s *Store) Reservations() repository.ReservationRepository {
	return &ReservationRepo{pool: s.pool}
}

type txRepos struct {
	pool *pgxpool.Pool
	db   DB
}

func (t txRepos) Seats() repository.SeatRepository {
	return (&SeatRepo{pool: t.pool}).With(t.db)
}

func (t txRepos) Reservations() repository.ReservationRepository {
	return (&ReservationRepo{pool: t.pool}).With(t.db)
}
