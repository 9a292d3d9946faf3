package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// WithTx executa fn dentro de uma transação explícita; qualquer erro faz rollback.
func WithTx(ctx context.Context, conn DBTX, fn func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
