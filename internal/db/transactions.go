package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"leafloop/internal/models"
)

type transactionRepo struct {
	q querier
}

const transactionColumns = `id, item_id, buyer_id, seller_id, type, status, start_date, end_date,
	last_modified, buyer_confirmed, seller_confirmed`

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var (
		t       models.Transaction
		endDate sql.NullTime
	)
	err := row.Scan(&t.ID, &t.ItemID, &t.BuyerID, &t.SellerID, &t.Type, &t.Status, &t.StartDate, &endDate,
		&t.LastModified, &t.BuyerConfirmed, &t.SellerConfirmed)
	if err != nil {
		return nil, err
	}
	if endDate.Valid {
		t.EndDate = &endDate.Time
	}
	return &t, nil
}

func (r *transactionRepo) Create(ctx context.Context, tx *models.Transaction) error {
	query := `
		INSERT INTO transactions (item_id, buyer_id, seller_id, type, status, start_date, end_date,
		                          last_modified, buyer_confirmed, seller_confirmed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	err := r.q.QueryRowContext(ctx, query,
		tx.ItemID, tx.BuyerID, tx.SellerID, tx.Type, tx.Status, tx.StartDate, tx.EndDate,
		tx.LastModified, tx.BuyerConfirmed, tx.SellerConfirmed,
	).Scan(&tx.ID)
	return mapError(err, "insert transaction")
}

func (r *transactionRepo) GetByID(ctx context.Context, id int64) (*models.Transaction, error) {
	t, err := scanTransaction(r.q.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
	return t, mapError(err, "select transaction")
}

func (r *transactionRepo) GetForUpdate(ctx context.Context, id int64) (*models.Transaction, error) {
	t, err := scanTransaction(r.q.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id))
	return t, mapError(err, "select transaction for update")
}

func (r *transactionRepo) HasPending(ctx context.Context, itemID, buyerID int64) (bool, error) {
	var exists bool
	err := r.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE item_id = $1 AND buyer_id = $2 AND status = $3)`,
		itemID, buyerID, models.StatusPending,
	).Scan(&exists)
	return exists, mapError(err, "check pending transaction")
}

func (r *transactionRepo) HasOpen(ctx context.Context, itemID int64) (bool, error) {
	var exists bool
	err := r.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE item_id = $1 AND status IN ($2, $3))`,
		itemID, models.StatusPending, models.StatusInProgress,
	).Scan(&exists)
	return exists, mapError(err, "check open transaction")
}

func (r *transactionRepo) List(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error) {
	var (
		where []string
		args  []any
	)
	if filter.UserID != 0 {
		args = append(args, filter.UserID)
		switch filter.Role {
		case "buyer":
			where = append(where, fmt.Sprintf("buyer_id = $%d", len(args)))
		case "seller":
			where = append(where, fmt.Sprintf("seller_id = $%d", len(args)))
		default:
			where = append(where, fmt.Sprintf("(buyer_id = $%d OR seller_id = $%d)", len(args), len(args)))
		}
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY start_date DESC, id DESC`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "select transactions")
	}
	defer rows.Close()

	txs := make([]models.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, mapError(err, "scan transaction")
		}
		txs = append(txs, *t)
	}
	return txs, mapError(rows.Err(), "select transactions")
}

func (r *transactionRepo) Update(ctx context.Context, tx *models.Transaction) error {
	query := `
		UPDATE transactions
		SET status = $1, end_date = $2, last_modified = $3, buyer_confirmed = $4, seller_confirmed = $5
		WHERE id = $6`

	res, err := r.q.ExecContext(ctx, query,
		tx.Status, tx.EndDate, tx.LastModified, tx.BuyerConfirmed, tx.SellerConfirmed, tx.ID)
	return expectOneRow(res, err, "update transaction")
}
