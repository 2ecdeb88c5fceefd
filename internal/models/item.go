package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	ID           int64           `json:"id"`
	OwnerID      int64           `json:"owner_id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Condition    string          `json:"condition"`
	ExchangeType TransactionType `json:"exchange_type"`
	Price        decimal.Decimal `json:"price"`
	Available    bool            `json:"available"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type ItemRequest struct {
	Title        string          `json:"title" validate:"required,max=200"`
	Description  string          `json:"description" validate:"max=4000"`
	Category     string          `json:"category" validate:"required,max=100"`
	Condition    string          `json:"condition" validate:"omitempty,oneof=new like_new good fair worn"`
	ExchangeType TransactionType `json:"exchange_type" validate:"required,oneof=Sale Donation Exchange"`
	Price        decimal.Decimal `json:"price"`
}

type AvailabilityRequest struct {
	Available *bool `json:"available" validate:"required"`
}

type ItemFilter struct {
	OwnerID       int64
	Category      string
	AvailableOnly bool
	Limit         int
	Offset        int
}
