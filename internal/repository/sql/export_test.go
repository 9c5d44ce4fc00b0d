package sql

import "database/sql"

// GetTxFromStore is a test helper to extract the transaction a Store is bound to.
func GetTxFromStore(store *Store) *sql.Tx {
	return store.txn
}

// MapError exposes driver error mapping to tests.
func MapError(err error) error {
	return mapError(err)
}
