package db

import (
	"context"

	"leafloop/internal/models"
)

type ratingRepo struct {
	q querier
}

func (r *ratingRepo) Create(ctx context.Context, rating *models.Rating) error {
	query := `
		INSERT INTO ratings (transaction_id, rater_id, ratee_id, score, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.q.QueryRowContext(ctx, query,
		rating.TransactionID, rating.RaterID, rating.RateeID, rating.Score, rating.Comment, rating.CreatedAt,
	).Scan(&rating.ID)
	return mapError(err, "insert rating")
}

func (r *ratingRepo) ListByRatee(ctx context.Context, userID int64) ([]models.Rating, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, transaction_id, rater_id, ratee_id, score, comment, created_at
		FROM ratings
		WHERE ratee_id = $1
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, mapError(err, "select ratings")
	}
	defer rows.Close()

	ratings := make([]models.Rating, 0)
	for rows.Next() {
		var rt models.Rating
		if err := rows.Scan(&rt.ID, &rt.TransactionID, &rt.RaterID, &rt.RateeID, &rt.Score, &rt.Comment, &rt.CreatedAt); err != nil {
			return nil, mapError(err, "scan rating")
		}
		ratings = append(ratings, rt)
	}
	return ratings, mapError(rows.Err(), "select ratings")
}

func (r *ratingRepo) Summary(ctx context.Context, userID int64) (models.RatingSummary, error) {
	var s models.RatingSummary
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(score), 0)::float8 FROM ratings WHERE ratee_id = $1`, userID,
	).Scan(&s.Count, &s.Average)
	return s, mapError(err, "summarize ratings")
}
