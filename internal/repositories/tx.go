package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrInsufficientStock is returned by a conditional stock decrement that
	// matched no row.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrStockChanged is returned by a guarded stock write when the row no
	// longer holds the stock the caller read.
	ErrStockChanged = errors.New("stock changed")
	// ErrDuplicate wraps a unique constraint violation.
	ErrDuplicate = errors.New("duplicate entry")
)

const uniqueViolation = "23505"

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

// TxRepositories are bound to a single transaction.
type TxRepositories struct {
	Carts    CartRepository
	Products ProductRepository
	Orders   OrderRepository
	Reviews  ReviewRepository
}

type UnitOfWork interface {
	// WithinTx runs fn in one transaction. Any error returned by fn rolls the
	// transaction back and is returned unchanged.
	WithinTx(ctx context.Context, fn func(repos TxRepositories) error) error
}

type unitOfWork struct {
	db *sql.DB
}

func NewUnitOfWork(db *sql.DB) UnitOfWork {
	return &unitOfWork{db: db}
}

func (u *unitOfWork) WithinTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	repos := TxRepositories{
		Carts:    NewCartRepo(tx),
		Products: NewProductRepo(tx),
		Orders:   NewOrderRepo(tx),
		Reviews:  NewReviewRepo(tx),
	}

	if err := fn(repos); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}

		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func translateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Constraint)
	}

	return err
}

func offset(page, size int) int {
	if page < 1 {
		page = 1
	}

	return (page - 1) * size
}
