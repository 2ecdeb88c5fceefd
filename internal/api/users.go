package api

import (
	"net/http"

	"leafloop/internal/middleware"
	"leafloop/internal/models"
	"leafloop/internal/utils"

	"go.uber.org/zap"
)

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := s.svc.Users.Register(r.Context(), req)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, user)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := s.svc.Users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}

	token, err := s.auth.GenerateToken(r.Context(), user.ID, user.Role)
	if err != nil {
		s.logger.Error("generate token", zap.Int64("user_id", user.ID), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Error generating token")
		return
	}

	s.writeJSON(w, http.StatusOK, models.LoginResponse{
		Token:     token,
		Role:      user.Role,
		UserID:    user.ID,
		ExpiresIn: int64(s.auth.TTL().Seconds()),
	})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	if err := s.auth.Revoke(r.Context(), claims); err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	user, err := s.svc.Users.Get(r.Context(), claims.UserID)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, user)
}

func (s *Server) leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := utils.QueryInt(r, "limit", 10)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	entries, err := s.svc.Users.Leaderboard(r.Context(), limit)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromPath(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	profile, err := s.svc.Users.Profile(r.Context(), userID)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, profile)
}

func (s *Server) listRatings(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromPath(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	ratings, err := s.svc.Ratings.ListForUser(r.Context(), userID)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ratings)
}
