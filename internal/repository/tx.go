package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ledgerLockClass namespaces the advisory locks taken per showtime.
const ledgerLockClass = 7301

func runInTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	var txOptions pgx.TxOptions

	tx, err := db.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}

	err = fn(tx)
	if err == nil {
		return tx.Commit(ctx)
	}

	rollbackErr := tx.Rollback(ctx)
	if rollbackErr != nil {
		return errors.Join(err, rollbackErr)
	}

	return err
}

// lockShowtime serializes ledger writes of one showtime until tx ends.
func lockShowtime(ctx context.Context, tx pgx.Tx, showtimeID int) error {
	_, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1, $2)", ledgerLockClass, showtimeID)
	return err
}
