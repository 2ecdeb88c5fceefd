package db

import (
	"context"

	"leafloop/internal/models"
)

type userRepo struct {
	q querier
}

const userColumns = `id, name, email, password_hash, role, eco_score, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.EcoScore, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	query := `
		INSERT INTO users (name, email, password_hash, role, eco_score)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.q.QueryRowContext(ctx, query, user.Name, user.Email, user.PasswordHash, user.Role, user.EcoScore).
		Scan(&user.ID, &user.CreatedAt)
	return mapError(err, "insert user")
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	return u, mapError(err, "select user")
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
	return u, mapError(err, "select user")
}

func (r *userRepo) AddEcoScore(ctx context.Context, id int64, delta int) error {
	res, err := r.q.ExecContext(ctx, `UPDATE users SET eco_score = eco_score + $1 WHERE id = $2`, delta, id)
	return expectOneRow(res, err, "update eco score")
}

func (r *userRepo) TopByEcoScore(ctx context.Context, limit int) ([]models.User, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY eco_score DESC, id ASC LIMIT $1`, limit)
	if err != nil {
		return nil, mapError(err, "select leaderboard")
	}
	defer rows.Close()

	users := make([]models.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapError(err, "scan user")
		}
		users = append(users, *u)
	}
	return users, mapError(rows.Err(), "select leaderboard")
}
