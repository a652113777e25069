package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/port"
)

// withTx executes fn within a transaction if the repository was created with a pool,
// or uses the existing transaction if the repository was created with a transaction
func withTx[T any](ctx context.Context, dbtx db.DBTX, fn func(q *db.Queries) (T, error)) (_ T, txErr error) {
	var zero T

	// Check if we're already in a transaction by trying to cast to pgx.Tx
	if tx, ok := dbtx.(pgx.Tx); ok {
		// Already in a transaction, just use it
		q := db.New(tx)
		return fn(q)
	}

	// Must be a pool, create a new transaction
	pool, ok := dbtx.(*pgxpool.Pool)
	if !ok {
		return zero, fmt.Errorf("dbtx is neither pgx.Tx nor *pgxpool.Pool: %T", dbtx)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return zero, err
	}

	defer rollbackOnError(ctx, tx, &txErr)

	// Create queries with transaction
	qtx := db.New(tx)

	// Execute the function with transaction queries
	result, err := fn(qtx)
	if err != nil {
		return zero, err
	}

	// Commit the transaction
	if err := tx.Commit(ctx); err != nil {
		return zero, err
	}

	return result, nil
}

func rollbackOnError(ctx context.Context, tx pgx.Tx, txErr *error) {
	if *txErr == nil {
		return
	}

	rollbackErr := tx.Rollback(ctx)
	if rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
		*txErr = errors.Join(*txErr, fmt.Errorf("tx.Rollback: %w", rollbackErr))
	}
}

type transactor struct {
	pool *pgxpool.Pool
}

func NewTransactor(pool *pgxpool.Pool) (port.Transactor, error) {
	if pool == nil {
		return nil, errors.New("pool is nil")
	}

	return &transactor{pool: pool}, nil
}

func (t *transactor) WithinTx(ctx context.Context, fn func(repos port.Repositories) error) (txErr error) {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("pool.Begin: %w", err)
	}

	defer rollbackOnError(ctx, tx, &txErr)

	if err := fn(NewRepositoriesWithTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("tx.Commit: %w", err)
	}

	return nil
}

// NewRepositories binds every repository to the pool.
func NewRepositories(pool *pgxpool.Pool) port.Repositories {
	return newRepositories(pool)
}

// NewRepositoriesWithTx binds every repository to the given transaction.
func NewRepositoriesWithTx(tx pgx.Tx) port.Repositories {
	return newRepositories(tx)
}

func newRepositories(dbtx db.DBTX) port.Repositories {
	return port.Repositories{
		Catalog:  &catalogRepository{q: db.New(dbtx), dbtx: dbtx},
		Baskets:  &basketRepository{q: db.New(dbtx), dbtx: dbtx},
		Orders:   &orderRepository{q: db.New(dbtx), dbtx: dbtx},
		Profiles: &profileRepository{q: db.New(dbtx), dbtx: dbtx},
		Users:    &userRepository{q: db.New(dbtx)},
	}
}
