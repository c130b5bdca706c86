package http

import (
	"net/http"
	"strings"

	"bilancio/internal/core"
	"bilancio/internal/services"
)

// queryKind reads an optional kind filter; empty means both kinds.
func queryKind(r *http.Request) (core.Kind, error) {
	k := core.Kind(strings.TrimSpace(r.URL.Query().Get("kind")))
	if k != "" && !k.Valid() {
		return "", core.ErrInvalidKind
	}
	return k, nil
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	kind, err := queryKind(r)
	if err != nil {
		writeError(w, err)
		return
	}
	cats, err := s.categories.ListPresets(r.Context(), kind)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryDTOs(cats))
}

func (s *Server) handleListPrimary(w http.ResponseWriter, r *http.Request) {
	kind, err := queryKind(r)
	if err != nil {
		writeError(w, err)
		return
	}
	cats, err := s.categories.ListPrimary(r.Context(), currentUser(r).ID, kind)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryDTOs(cats))
}

func (s *Server) handleListSecondary(w http.ResponseWriter, r *http.Request) {
	cats, err := s.categories.ListSecondary(r.Context(), currentUser(r).ID, queryID(r, "parent_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryDTOs(cats))
}

type createCategoryRequest struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	ParentID  int64  `json:"parent_id,omitempty"`
	Icon      string `json:"icon"`
	Color     string `json:"color"`
	SortOrder int    `json:"sort_order"`
}

func (s *Server) handleCreatePrimary(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	c, err := s.categories.CreatePrimary(r.Context(), currentUser(r).ID,
		req.Name, core.Kind(req.Kind), req.Icon, req.Color, req.SortOrder)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryDTO(*c))
}

func (s *Server) handleCreateSecondary(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.ParentID < 1 {
		writeError(w, core.ErrInvalidParent)
		return
	}
	c, err := s.categories.CreateSecondary(r.Context(), currentUser(r).ID, req.ParentID,
		req.Name, core.Kind(req.Kind), req.Icon, req.Color, req.SortOrder)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryDTO(*c))
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	c, err := s.categories.Get(r.Context(), currentUser(r).ID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryDTO(*c))
}

type updateCategoryRequest struct {
	Name      *string `json:"name"`
	Icon      *string `json:"icon"`
	Color     *string `json:"color"`
	SortOrder *int    `json:"sort_order"`
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateCategoryRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	patch := services.CategoryPatch{
		Name:      req.Name,
		Icon:      req.Icon,
		Color:     req.Color,
		SortOrder: req.SortOrder,
	}
	c, err := s.categories.Update(r.Context(), currentUser(r).ID, id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryDTO(*c))
}

type deactivateCategoryResponse struct {
	Deactivated int64 `json:"deactivated"`
}

func (s *Server) handleDeactivateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	n, err := s.categories.Deactivate(r.Context(), currentUser(r).ID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deactivateCategoryResponse{Deactivated: n})
}
