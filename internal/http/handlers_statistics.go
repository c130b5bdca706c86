package http

import (
	"net/http"
	"strings"
	"time"

	"bilancio/internal/core"
)

func (s *Server) handleStatsMonthly(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	year := queryInt(r, "year", now.Year())
	month := queryInt(r, "month", int(now.Month()))
	totals, err := s.statistics.Monthly(r.Context(), currentUser(r).ID, year, month)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTotalsDTO(*totals))
}

func (s *Server) handleStatsRange(w http.ResponseWriter, r *http.Request) {
	from, to, err := requiredRange(r)
	if err != nil {
		writeError(w, err)
		return
	}
	totals, err := s.statistics.Range(r.Context(), currentUser(r).ID, from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTotalsDTO(*totals))
}

func (s *Server) handleStatsByCategory(w http.ResponseWriter, r *http.Request) {
	kind := core.Kind(strings.TrimSpace(r.URL.Query().Get("kind")))
	if kind == "" {
		kind = core.Expense
	}
	from, to, err := requiredRange(r)
	if err != nil {
		writeError(w, err)
		return
	}
	stats, err := s.statistics.ByCategory(r.Context(), currentUser(r).ID, kind, from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryStatDTOs(stats))
}

func (s *Server) handleStatsByProject(w http.ResponseWriter, r *http.Request) {
	stats, err := s.statistics.ByProject(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectStatDTOs(stats))
}

func (s *Server) handleStatsOverview(w http.ResponseWriter, r *http.Request) {
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
	ov, err := s.statistics.Overview(r.Context(), currentUser(r).ID, from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overviewDTO{
		Totals:        toTotalsDTO(ov.Totals),
		TopCategories: toCategoryStatDTOs(ov.TopCategories),
		TopProjects:   toProjectStatDTOs(ov.TopProjects),
	})
}

// requiredRange reads the mandatory from/to query parameters. The range end
// is pushed to the last second of its day so a date-only range stays closed.
func requiredRange(r *http.Request) (time.Time, time.Time, error) {
	from, err := parseDate(r.URL.Query().Get("from"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseDate(r.URL.Query().Get("to"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to = to.Add(24*time.Hour - time.Second)
	return from, to, nil
}
