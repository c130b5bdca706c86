package http

import (
	"net/http"

	"bilancio/internal/core"
	"bilancio/internal/services"
)

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	kind, err := queryKind(r)
	if err != nil {
		writeError(w, err)
		return
	}
	from, err := queryDate(r, "from")
	if err != nil {
		writeError(w, err)
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		writeError(w, err)
		return
	}
	limit, offset := pagination(r)

	q := core.RecordQuery{
		OwnerID:    currentUser(r).ID,
		Kind:       kind,
		CategoryID: queryID(r, "category_id"),
		ProjectID:  queryID(r, "project_id"),
		From:       from,
		To:         to,
		Limit:      limit,
		Offset:     offset,
	}
	records, total, err := s.records.List(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]recordDTO, 0, len(records))
	for i := range records {
		out = append(out, toRecordDTO(&records[i]))
	}
	writeJSON(w, http.StatusOK, listDTO[recordDTO]{Items: out, Total: total})
}

type createRecordRequest struct {
	CategoryID  int64  `json:"category_id"`
	Amount      string `json:"amount"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Date        string `json:"date"`
	PayerCount  int    `json:"payer_count"`
	Split       bool   `json:"is_split"`
	ProjectID   *int64 `json:"project_id"`
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, err)
		return
	}
	in := services.RecordInput{
		CategoryID:  req.CategoryID,
		Amount:      amount,
		Kind:        core.Kind(req.Kind),
		Description: req.Description,
		Date:        date,
		PayerCount:  req.PayerCount,
		Split:       req.Split,
		ProjectID:   req.ProjectID,
	}
	rec, err := s.records.Create(r.Context(), currentUser(r).ID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecordDTO(rec))
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	rec, err := s.records.Get(r.Context(), currentUser(r).ID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(rec))
}

type updateRecordRequest struct {
	CategoryID  *int64  `json:"category_id"`
	Amount      *string `json:"amount"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	PayerCount  *int    `json:"payer_count"`
	Split       *bool   `json:"is_split"`
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateRecordRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	patch := services.RecordPatch{
		CategoryID:  req.CategoryID,
		Description: req.Description,
		PayerCount:  req.PayerCount,
		Split:       req.Split,
	}
	if req.Amount != nil {
		amount, err := parseAmount(*req.Amount)
		if err != nil {
			writeError(w, err)
			return
		}
		patch.Amount = &amount
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			writeError(w, err)
			return
		}
		patch.Date = &date
	}
	rec, err := s.records.Update(r.Context(), currentUser(r).ID, id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(rec))
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.records.Delete(r.Context(), currentUser(r).ID, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleLinkRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	projectID, err := pathID(r, "projectID")
	if err != nil {
		writeError(w, err)
		return
	}
	rec, err := s.records.LinkProject(r.Context(), currentUser(r).ID, id, projectID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(rec))
}

func (s *Server) handleUnlinkRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	projectID, err := pathID(r, "projectID")
	if err != nil {
		writeError(w, err)
		return
	}
	rec, err := s.records.UnlinkProject(r.Context(), currentUser(r).ID, id, projectID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(rec))
}
