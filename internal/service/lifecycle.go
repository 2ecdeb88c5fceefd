package service

import "leafloop/internal/models"

// statusEdges lists the transitions a party may request directly.
// InProgress -> Completed is only reachable through mutual confirmation.
var statusEdges = map[models.TransactionStatus][]models.TransactionStatus{
	models.StatusPending:    {models.StatusInProgress, models.StatusCancelled},
	models.StatusInProgress: {models.StatusCancelled},
}

// CanTransition reports whether a status update request may move a
// transaction from one status to another.
func CanTransition(from, to models.TransactionStatus) bool {
	for _, next := range statusEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}
