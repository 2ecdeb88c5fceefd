package models

import "time"

type Rating struct {
	ID            int64     `json:"id"`
	TransactionID int64     `json:"transaction_id"`
	RaterID       int64     `json:"rater_id"`
	RateeID       int64     `json:"ratee_id"`
	Score         int       `json:"score"`
	Comment       string    `json:"comment,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type RatingRequest struct {
	Score   int    `json:"score" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

type RatingSummary struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}
