package uow

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kirinyoku/deskgo/internal/repository"
	postgresrepo "github.com/kirinyoku/deskgo/internal/repository/postgres"
)

const (
	defaultMaxAttempts = 3
	retryBackoff       = 10 * time.Millisecond
)

// AfterCommit is a function that runs after a successful transaction commit.
type AfterCommit func(ctx context.Context)

// Transactor is a store able to run a function against repositories bound to
// one transaction.
type Transactor interface {
	repository.Repos
	InTx(ctx context.Context, opts *pgx.TxOptions, fn func(ctx context.Context, repos repository.Repos) error) error
}

// UoW represents a unit of work.
type UoW struct {
	store       Transactor
	maxAttempts int
}

func NewUoW(store Transactor) *UoW {
	return &UoW{store: store, maxAttempts: defaultMaxAttempts}
}

// Do runs fn inside the transaction. After a successful commit,
// it executes all after-commit hooks.
func (u *UoW) Do(
	ctx context.Context,
	fn func(ctx context.Context, repos repository.Repos, after func(AfterCommit)) error,
) error {
	return u.DoWithOpts(ctx, nil, fn)
}

// DoWithOpts runs fn inside the transaction with the given options. A
// serialization failure replays fn from the start in a fresh transaction, so
// every check inside fn is evaluated again against committed state. After a
// successful commit, it executes all after-commit hooks.
func (u *UoW) DoWithOpts(
	ctx context.Context,
	opts *pgx.TxOptions,
	fn func(ctx context.Context, repos repository.Repos, after func(AfterCommit)) error,
) error {
	var hooks []AfterCommit
	var err error

	for attempt := 1; attempt <= u.maxAttempts; attempt++ {
		hooks = hooks[:0]

		err = u.store.InTx(ctx, opts, func(ctx context.Context, repos repository.Repos) error {
			return fn(ctx, repos, func(h AfterCommit) {
				hooks = append(hooks, h)
			})
		})
		if err == nil || !postgresrepo.IsRetryable(err) {
			break
		}

		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}
	if err != nil {
		return err
	}

	for _, h := range hooks {
		h(ctx)
	}

	return nil
}
