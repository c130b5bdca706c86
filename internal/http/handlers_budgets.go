package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/services"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	budgets, total, err := s.budgets.List(r.Context(), currentUser(r).ID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]budgetDTO, 0, len(budgets))
	for i := range budgets {
		out = append(out, toBudgetDTO(&budgets[i]))
	}
	writeJSON(w, http.StatusOK, listDTO[budgetDTO]{Items: out, Total: total})
}

type createBudgetRequest struct {
	Name           string `json:"name"`
	Amount         string `json:"amount"`
	Period         string `json:"period"`
	CategoryID     *int64 `json:"category_id"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	AlertThreshold int    `json:"alert_threshold"`
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req createBudgetRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		writeError(w, err)
		return
	}
	endDate, err := optionalDate(req.EndDate)
	if err != nil {
		writeError(w, err)
		return
	}
	in := services.BudgetInput{
		Name:           req.Name,
		Amount:         amount,
		Period:         core.BudgetPeriod(req.Period),
		CategoryID:     req.CategoryID,
		StartDate:      startDate,
		EndDate:        endDate,
		AlertThreshold: req.AlertThreshold,
	}
	b, err := s.budgets.Create(r.Context(), currentUser(r).ID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBudgetDTO(b))
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	b, err := s.budgets.Get(r.Context(), currentUser(r).ID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetDTO(b))
}

// updateBudgetRequest keeps the nullable fields as raw JSON so an explicit
// null can be told apart from an absent key: null clears the field, absence
// leaves it alone.
type updateBudgetRequest struct {
	Name           *string         `json:"name"`
	Amount         *string         `json:"amount"`
	Period         *string         `json:"period"`
	CategoryID     json.RawMessage `json:"category_id"`
	StartDate      *string         `json:"start_date"`
	EndDate        json.RawMessage `json:"end_date"`
	AlertThreshold *int            `json:"alert_threshold"`
	Active         *bool           `json:"is_active"`
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateBudgetRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	patch := services.BudgetPatch{
		Name:           req.Name,
		AlertThreshold: req.AlertThreshold,
		Active:         req.Active,
	}
	if req.Amount != nil {
		amount, err := parseAmount(*req.Amount)
		if err != nil {
			writeError(w, err)
			return
		}
		patch.Amount = &amount
	}
	if req.Period != nil {
		period := core.BudgetPeriod(*req.Period)
		patch.Period = &period
	}
	if req.StartDate != nil {
		date, err := parseDate(*req.StartDate)
		if err != nil {
			writeError(w, err)
			return
		}
		patch.StartDate = &date
	}
	if len(req.CategoryID) > 0 {
		if isJSONNull(req.CategoryID) {
			var cleared *int64
			patch.CategoryID = &cleared
		} else {
			var categoryID int64
			if err := json.Unmarshal(req.CategoryID, &categoryID); err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid category_id"})
				return
			}
			ptr := &categoryID
			patch.CategoryID = &ptr
		}
	}
	if len(req.EndDate) > 0 {
		if isJSONNull(req.EndDate) {
			var cleared *time.Time
			patch.EndDate = &cleared
		} else {
			var raw string
			if err := json.Unmarshal(req.EndDate, &raw); err != nil {
				writeError(w, core.ErrInvalidDate)
				return
			}
			date, err := parseDate(raw)
			if err != nil {
				writeError(w, err)
				return
			}
			ptr := &date
			patch.EndDate = &ptr
		}
	}
	b, err := s.budgets.Update(r.Context(), currentUser(r).ID, id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetDTO(b))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.budgets.Delete(r.Context(), currentUser(r).ID, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleBudgetAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.budgets.EvaluateAlerts(r.Context(), currentUser(r).ID, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]alertDTO, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, toAlertDTO(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
