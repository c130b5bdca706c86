package http

import (
	"net/http"
	"strings"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/services"
)

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	limit, offset := pagination(r)
	projects, total, err := s.projects.List(r.Context(), currentUser(r).ID, status, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]projectDTO, 0, len(projects))
	for i := range projects {
		out = append(out, toProjectDTO(&projects[i]))
	}
	writeJSON(w, http.StatusOK, listDTO[projectDTO]{Items: out, Total: total})
}

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Budget      string `json:"budget"`
	Status      string `json:"status"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	in := services.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	}
	if req.Budget != "" {
		budget, err := parseAmount(req.Budget)
		if err != nil {
			writeError(w, err)
			return
		}
		in.Budget = budget
	}
	var err error
	if in.StartDate, err = optionalDate(req.StartDate); err != nil {
		writeError(w, err)
		return
	}
	if in.EndDate, err = optionalDate(req.EndDate); err != nil {
		writeError(w, err)
		return
	}
	user := currentUser(r)
	p, err := s.projects.Create(r.Context(), user.ID, user.ID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProjectDTO(p))
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := s.projects.Get(r.Context(), currentUser(r).ID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(p))
}

type updateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Budget      *string `json:"budget"`
	Status      *string `json:"status"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateProjectRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	patch := services.ProjectPatch{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	}
	if req.Budget != nil {
		budget, err := parseAmount(*req.Budget)
		if err != nil {
			writeError(w, err)
			return
		}
		patch.Budget = &budget
	}
	if req.StartDate != nil {
		date, err := parseDate(*req.StartDate)
		if err != nil {
			writeError(w, err)
			return
		}
		patch.StartDate = &date
	}
	if req.EndDate != nil {
		date, err := parseDate(*req.EndDate)
		if err != nil {
			writeError(w, err)
			return
		}
		patch.EndDate = &date
	}
	p, err := s.projects.Update(r.Context(), currentUser(r).ID, id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(p))
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.projects.Delete(r.Context(), currentUser(r).ID, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleProjectStats(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	stats, err := s.projects.Stats(r.Context(), currentUser(r).ID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectStatsDTO(stats))
}

// optionalDate parses an optional YYYY-MM-DD body field.
func optionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := parseDate(s)
	if err != nil {
		return nil, core.ErrInvalidDate
	}
	return &t, nil
}
