package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turnaplay/teamreg/internal/domain"
)

// maxTxRetries количество повторов транзакции после serialization failure / deadlock
const maxTxRetries = 1

type txKey struct{}

// querier общий интерфейс pgxpool.Pool и pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// conn возвращает транзакцию из контекста, если она открыта, иначе пул
func conn(ctx context.Context, db *pgxpool.Pool) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return db
}

// Transactor реализует repository.Transactor поверх pgxpool
type Transactor struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewTransactor создает новый экземпляр Transactor
func NewTransactor(db *pgxpool.Pool, logger *slog.Logger) *Transactor {
	return &Transactor{db: db, logger: logger}
}

// WithinTx выполняет fn в транзакции READ COMMITTED.
// Транзакция, проигравшая гонку (40001/40P01), повторяется один раз, затем возвращается ErrConcurrentUpdate.
func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if t.InTx(ctx) {
		return fn(ctx)
	}

	var err error
	for attempt := 0; attempt <= maxTxRetries; attempt++ {
		err = t.run(ctx, fn)
		if !isRetryable(err) {
			return err
		}
		t.logger.Warn("transaction lost a race", "attempt", attempt+1, "error", err)
	}

	return fmt.Errorf("%w: %v", domain.ErrConcurrentUpdate, err)
}

// InTx сообщает, выполняется ли ctx внутри WithinTx
func (t *Transactor) InTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(pgx.Tx)
	return ok
}

func (t *Transactor) run(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := t.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx) // Ignore error as it will fail if transaction was committed
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
}
