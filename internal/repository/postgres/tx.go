package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lending-service/internal/models"
)

type txKey struct{}

// queryer is the subset of *sql.DB and *sql.Tx the repositories use
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// conn returns the transaction carried by ctx, or db when there is none
func conn(ctx context.Context, db *sql.DB) queryer {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

// notFound maps sql.ErrNoRows onto models.ErrNotFound
func notFound(entity string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %w", entity, models.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", entity, err)
}

// checkAffected returns models.ErrNotFound when an update touched no rows
func checkAffected(entity string, result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s %w", entity, models.ErrNotFound)
	}
	return nil
}

// TxManager starts transactions and hands them to repositories through the context
type TxManager struct {
	db *sql.DB
}

// NewTxManager creates a new TxManager
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTx runs fn in a transaction, committing when it returns nil.
// Nested calls join the outer transaction.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
