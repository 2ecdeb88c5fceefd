package db

import (
	"context"
	"fmt"
	"strings"

	"leafloop/internal/models"
)

type itemRepo struct {
	q querier
}

const itemColumns = `id, owner_id, title, description, category, condition, exchange_type, price, available, created_at, updated_at`

func scanItem(row rowScanner) (*models.Item, error) {
	var it models.Item
	err := row.Scan(&it.ID, &it.OwnerID, &it.Title, &it.Description, &it.Category, &it.Condition,
		&it.ExchangeType, &it.Price, &it.Available, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *itemRepo) Create(ctx context.Context, item *models.Item) error {
	query := `
		INSERT INTO items (owner_id, title, description, category, condition, exchange_type, price, available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	err := r.q.QueryRowContext(ctx, query,
		item.OwnerID, item.Title, item.Description, item.Category, item.Condition,
		item.ExchangeType, item.Price, item.Available, item.CreatedAt, item.UpdatedAt,
	).Scan(&item.ID)
	return mapError(err, "insert item")
}

func (r *itemRepo) GetByID(ctx context.Context, id int64) (*models.Item, error) {
	it, err := scanItem(r.q.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	return it, mapError(err, "select item")
}

func (r *itemRepo) GetForUpdate(ctx context.Context, id int64) (*models.Item, error) {
	it, err := scanItem(r.q.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, id))
	return it, mapError(err, "select item for update")
}

func (r *itemRepo) List(ctx context.Context, filter models.ItemFilter) ([]models.Item, error) {
	var (
		where []string
		args  []any
	)
	if filter.OwnerID != 0 {
		args = append(args, filter.OwnerID)
		where = append(where, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("LOWER(category) = LOWER($%d)", len(args)))
	}
	if filter.AvailableOnly {
		where = append(where, "available")
	}

	query := `SELECT ` + itemColumns + ` FROM items`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "select items")
	}
	defer rows.Close()

	items := make([]models.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, mapError(err, "scan item")
		}
		items = append(items, *it)
	}
	return items, mapError(rows.Err(), "select items")
}

func (r *itemRepo) Update(ctx context.Context, item *models.Item) error {
	query := `
		UPDATE items
		SET title = $1, description = $2, category = $3, condition = $4, exchange_type = $5,
		    price = $6, available = $7, updated_at = $8
		WHERE id = $9`

	res, err := r.q.ExecContext(ctx, query,
		item.Title, item.Description, item.Category, item.Condition, item.ExchangeType,
		item.Price, item.Available, item.UpdatedAt, item.ID)
	return expectOneRow(res, err, "update item")
}
