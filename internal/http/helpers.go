package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bilancio/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errorStatus(err), errorResponse{Error: publicError(err)})
}

// readJSON decodes the body strictly: unknown fields are rejected so typos
// fail loudly instead of silently dropping input.
func readJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

// errorStatus maps domain sentinels onto HTTP status codes. Anything
// unclassified is a 500.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrBadCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrDuplicateName),
		errors.Is(err, core.ErrEmailTaken),
		errors.Is(err, core.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, core.ErrKindMismatch),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidPayerCount),
		errors.Is(err, core.ErrInvalidMonth),
		errors.Is(err, core.ErrInvalidRange),
		errors.Is(err, core.ErrNotLinked),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, core.ErrInvalidLevel),
		errors.Is(err, core.ErrInvalidParent),
		errors.Is(err, core.ErrInvalidCategoryName),
		errors.Is(err, core.ErrInvalidBudgetName),
		errors.Is(err, core.ErrInvalidProjectName),
		errors.Is(err, core.ErrInvalidPeriod),
		errors.Is(err, core.ErrInvalidThreshold),
		errors.Is(err, core.ErrInvalidStatus),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrDescriptionTooLong),
		errors.Is(err, core.ErrCodeInvalid),
		errors.Is(err, core.ErrCodeExpired),
		errors.Is(err, core.ErrCodeExhausted),
		errors.Is(err, core.ErrCodeInactive):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// publicError hides internal details behind a generic message for 500s.
func publicError(err error) string {
	if errorStatus(err) == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id < 1 {
		return 0, core.ErrNotFound
	}
	return id, nil
}

// parseAmount accepts decimal strings like "12.34" or "12,34".
func parseAmount(s string) (core.Money, error) {
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, core.ErrInvalidDate
	}
	return t, nil
}

// queryDate reads an optional YYYY-MM-DD query parameter.
func queryDate(r *http.Request, name string) (*time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil, nil
	}
	t, err := parseDate(v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func queryInt(r *http.Request, name string, defaultValue int) int {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}

func queryID(r *http.Request, name string) *int64 {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id < 1 {
		return nil
	}
	return &id
}

// pagination caps page sizes so one request cannot drain the table.
func pagination(r *http.Request) (limit, offset int) {
	limit = queryInt(r, "limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset = queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
