package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"leafloop/internal/service"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// Store implements service.Store on top of a PostgreSQL pool. Each unit of
// work is one database transaction.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

var _ service.Store = (*Store)(nil)

func (s *Store) WithTx(ctx context.Context, fn func(service.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&repositories{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type repositories struct {
	q querier
}

func (r *repositories) Users() service.UserRepository               { return &userRepo{q: r.q} }
func (r *repositories) Items() service.ItemRepository               { return &itemRepo{q: r.q} }
func (r *repositories) Transactions() service.TransactionRepository { return &transactionRepo{q: r.q} }
func (r *repositories) Ratings() service.RatingRepository           { return &ratingRepo{q: r.q} }

// mapError translates driver errors into the service sentinels.
func mapError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return service.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", what, service.ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func expectOneRow(res sql.Result, err error, what string) error {
	if err != nil {
		return mapError(err, what)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n == 0 {
		return service.ErrNotFound
	}
	return nil
}
