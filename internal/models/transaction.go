package models

import (
	"time"
)

type TransactionStatus string

const (
	StatusPending    TransactionStatus = "Pending"
	StatusInProgress TransactionStatus = "InProgress"
	StatusCompleted  TransactionStatus = "Completed"
	StatusCancelled  TransactionStatus = "Cancelled"
)

// IsTerminal reports whether no further transition is possible.
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type TransactionType string

const (
	TypeSale     TransactionType = "Sale"
	TypeDonation TransactionType = "Donation"
	TypeExchange TransactionType = "Exchange"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TypeSale, TypeDonation, TypeExchange:
		return true
	}
	return false
}

type Transaction struct {
	ID              int64             `json:"id"`
	ItemID          int64             `json:"item_id"`
	BuyerID         int64             `json:"buyer_id"`
	SellerID        int64             `json:"seller_id"`
	Type            TransactionType   `json:"type"`
	Status          TransactionStatus `json:"status"`
	StartDate       time.Time         `json:"start_date"`
	EndDate         *time.Time        `json:"end_date,omitempty"`
	LastModified    time.Time         `json:"last_modified"`
	BuyerConfirmed  bool              `json:"buyer_confirmed"`
	SellerConfirmed bool              `json:"seller_confirmed"`
}

// IsParty reports whether userID is the buyer or the seller.
func (t *Transaction) IsParty(userID int64) bool {
	return userID == t.BuyerID || userID == t.SellerID
}

type InitiateTransactionRequest struct {
	ItemID int64 `json:"item_id" validate:"required,gt=0"`
}

type UpdateStatusRequest struct {
	Status TransactionStatus `json:"status" validate:"required"`
}

type TransactionFilter struct {
	UserID int64
	Status TransactionStatus
	// Role limits results to transactions where the user is "buyer" or "seller".
	Role string
}
