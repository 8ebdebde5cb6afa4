package common

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SerializableTx задаёт уровень изоляции для структурных изменений дерева.
var SerializableTx = &sql.TxOptions{Isolation: sql.LevelSerializable}

// WithTransaction выполняет функцию внутри транзакции с правильной обработкой ошибок.
// Ошибки fn и коммита проходят через MapError.
func WithTransaction(ctx context.Context, db *sqlx.DB, opts *sql.TxOptions, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			// При панике откатываем транзакцию
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %w, rollback error: %v", MapError(err), rbErr)
		}
		return MapError(err)
	}

	if err := tx.Commit(); err != nil {
		return MapError(fmt.Errorf("commit transaction: %w", err))
	}

	return nil
}
