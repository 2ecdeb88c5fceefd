package api

import (
	"net/http"
	"strconv"
	"strings"

	"leafloop/internal/middleware"
	"leafloop/internal/models"
	"leafloop/internal/utils"
)

// listItems serves the catalogue. Only available items are listed unless
// the caller passes available=false.
func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.ItemFilter{
		Category:      strings.TrimSpace(q.Get("category")),
		AvailableOnly: true,
	}

	if raw := q.Get("available"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "Invalid available flag")
			return
		}
		filter.AvailableOnly = available
	}

	ownerID, err := utils.QueryInt(r, "owner_id", 0)
	if err != nil || ownerID < 0 {
		s.writeError(w, http.StatusBadRequest, "Invalid owner ID")
		return
	}
	filter.OwnerID = int64(ownerID)

	if filter.Limit, err = utils.QueryInt(r, "limit", 0); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}
	if filter.Offset, err = utils.QueryInt(r, "offset", 0); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid offset")
		return
	}

	items, err := s.svc.Items.List(r.Context(), filter)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := utils.GetIDFromPath(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	item, err := s.svc.Items.Get(r.Context(), itemID)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, item)
}

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	var req models.ItemRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	item, err := s.svc.Items.Create(r.Context(), claims.UserID, req)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, item)
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	itemID, err := utils.GetIDFromPath(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	var req models.ItemRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	item, err := s.svc.Items.Update(r.Context(), itemID, claims.UserID, req)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, item)
}

func (s *Server) setAvailability(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	itemID, err := utils.GetIDFromPath(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	var req models.AvailabilityRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	item, err := s.svc.Items.SetAvailability(r.Context(), itemID, claims.UserID, *req.Available)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, item)
}
