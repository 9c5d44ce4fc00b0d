package sql

import (
	"context"
	"database/sql"
)

// dbExecutor is satisfied by both *sql.DB and *sql.Tx. Repositories only prepare
// statements, so a store bound to a transaction runs every query inside it.
type dbExecutor interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// executor returns txn when the repository is bound to a transaction, otherwise db.
func executor(db *sql.DB, txn *sql.Tx) dbExecutor {
	if txn != nil {
		return txn
	}
	return db
}
