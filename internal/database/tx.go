package database

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"
)

type pgxTxKey struct{}

type sqlTxKey struct{}

func withTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, pgxTxKey{}, tx)
}

// TxFromContext returns the pgx transaction started by DB.WithinTx, or nil
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(pgxTxKey{}).(pgx.Tx)
	return tx
}

func withSQLTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, sqlTxKey{}, tx)
}

// SQLTxFromContext returns the database/sql transaction started by
// SQLiteDB.WithinTx, or nil
func SQLTxFromContext(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(sqlTxKey{}).(*sql.Tx)
	return tx
}
