package api

import (
	"net/http"

	"leafloop/internal/middleware"
	"leafloop/internal/models"
	"leafloop/internal/service"
	"leafloop/internal/utils"
)

func actorFrom(claims *models.Claims) service.Actor {
	return service.Actor{UserID: claims.UserID, Admin: claims.Role == models.RoleAdmin}
}

func (s *Server) initiateTransaction(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	var req models.InitiateTransactionRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	tx, err := s.svc.Transactions.Initiate(r.Context(), req.ItemID, claims.UserID)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	txID, err := utils.GetIDFromPath(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid transaction ID")
		return
	}

	tx, err := s.svc.Transactions.Get(r.Context(), txID, actorFrom(claims))
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tx)
}

func (s *Server) updateTransactionStatus(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	txID, err := utils.GetIDFromPath(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid transaction ID")
		return
	}

	var req models.UpdateStatusRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	tx, err := s.svc.Transactions.UpdateStatus(r.Context(), txID, claims.UserID, req.Status)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tx)
}

func (s *Server) confirmTransaction(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	txID, err := utils.GetIDFromPath(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid transaction ID")
		return
	}

	tx, err := s.svc.Transactions.Confirm(r.Context(), txID, claims.UserID)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tx)
}

func (s *Server) rateTransaction(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	txID, err := utils.GetIDFromPath(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid transaction ID")
		return
	}

	var req models.RatingRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	rating, err := s.svc.Ratings.Rate(r.Context(), txID, claims.UserID, req)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, rating)
}

func (s *Server) listMyTransactions(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	s.listTransactions(w, r, claims.UserID)
}

func (s *Server) listUserTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromPath(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	s.listTransactions(w, r, userID)
}

// listAllTransactions is the admin view; user_id narrows it to one user.
func (s *Server) listAllTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.QueryInt(r, "user_id", 0)
	if err != nil || userID < 0 {
		s.writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	s.listTransactions(w, r, int64(userID))
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request, userID int64) {
	q := r.URL.Query()
	txs, err := s.svc.Transactions.List(r.Context(), models.TransactionFilter{
		UserID: userID,
		Status: models.TransactionStatus(q.Get("status")),
		Role:   q.Get("role"),
	})
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, txs)
}
