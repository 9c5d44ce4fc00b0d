package sql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/iyhunko/inventory-manager/internal/model"
	"github.com/iyhunko/inventory-manager/internal/repository"
	"github.com/iyhunko/inventory-manager/internal/repository/sql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_WithinTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("commits stock change and transaction row together", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		store := sql.NewStore(db)

		mock.ExpectBegin()
		mock.ExpectPrepare("UPDATE products SET stock").
			ExpectQuery().
			WithArgs(-2, sqlmock.AnyArg(), "PROD001").
			WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(8))
		mock.ExpectPrepare("INSERT INTO transactions").
			ExpectExec().
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		err = store.WithinTransaction(ctx, func(tx repository.Store) error {
			txStore, ok := tx.(*sql.Store)
			require.True(t, ok)
			assert.NotNil(t, sql.GetTxFromStore(txStore))

			if _, err := tx.Products().AdjustStock(ctx, "PROD001", -2, time.Now()); err != nil {
				return err
			}
			return tx.Transactions().Create(ctx, &model.Transaction{ID: "TXN001", ProductID: "PROD001", Quantity: 2, Type: model.TransactionTypeSale})
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the callback fails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		store := sql.NewStore(db)

		mock.ExpectBegin()
		mock.ExpectPrepare("UPDATE products SET stock").
			ExpectQuery().
			WillReturnRows(sqlmock.NewRows([]string{"stock"}))
		mock.ExpectRollback()

		err = store.WithinTransaction(ctx, func(tx repository.Store) error {
			_, err := tx.Products().AdjustStock(ctx, "PROD001", -50, time.Now())
			return err
		})

		assert.ErrorIs(t, err, repository.ErrStockConditionFailed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

		called := false
		err = sql.NewStore(db).WithinTransaction(ctx, func(tx repository.Store) error {
			called = true
			return nil
		})

		assert.ErrorContains(t, err, "failed to begin transaction")
		assert.False(t, called)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("commit failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

		err = sql.NewStore(db).WithinTransaction(ctx, func(tx repository.Store) error { return nil })

		assert.ErrorContains(t, err, "failed to commit transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested call reuses the outer transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectCommit()

		err = sql.NewStore(db).WithinTransaction(ctx, func(tx repository.Store) error {
			return tx.WithinTransaction(ctx, func(inner repository.Store) error {
				assert.Same(t, tx, inner)
				return nil
			})
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()

	require.NoError(t, sql.NewStore(db).Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
