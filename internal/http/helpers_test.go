package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bilancio/internal/core"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrNotFound, http.StatusNotFound},
		{core.ErrBadCredentials, http.StatusUnauthorized},
		{core.ErrDuplicateName, http.StatusConflict},
		{core.ErrEmailTaken, http.StatusConflict},
		{core.ErrUsernameTaken, http.StatusConflict},
		{core.ErrKindMismatch, http.StatusBadRequest},
		{core.ErrInvalidAmount, http.StatusBadRequest},
		{core.ErrInvalidRange, http.StatusBadRequest},
		{core.ErrCodeExhausted, http.StatusBadRequest},
		{core.ErrCodeExpired, http.StatusBadRequest},
		{core.ErrNotLinked, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", core.ErrNotFound), http.StatusNotFound},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := errorStatus(tt.err); got != tt.want {
			t.Errorf("errorStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestPublicErrorHidesInternals(t *testing.T) {
	if got := publicError(errors.New("dsn=secret broke")); got != "internal error" {
		t.Errorf("publicError() = %q, want %q", got, "internal error")
	}
	if got := publicError(core.ErrNotFound); got != core.ErrNotFound.Error() {
		t.Errorf("publicError() = %q, want sentinel text", got)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{"300", 30000, false},
		{"0.01", 1, false},
		{"", 0, true},
		{"-5", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := parseAmount(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseAmount(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseAmount(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got.Cents != tt.want {
			t.Errorf("parseAmount(%q) = %d cents, want %d", tt.in, got.Cents, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2026-02-14")
	if err != nil {
		t.Fatalf("parseDate: %v", err)
	}
	if d.Year() != 2026 || d.Month() != 2 || d.Day() != 14 {
		t.Errorf("parseDate = %v", d)
	}
	if _, err := parseDate("14/02/2026"); !errors.Is(err, core.ErrInvalidDate) {
		t.Errorf("parseDate wrong format = %v, want ErrInvalidDate", err)
	}
}

func TestPagination(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", 50, 0},
		{"limit=10&offset=20", 10, 20},
		{"limit=0", 50, 0},
		{"limit=9999", 50, 0},
		{"offset=-3", 50, 0},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/api/records?"+tt.query, nil)
		limit, offset := pagination(r)
		if limit != tt.wantLimit || offset != tt.wantOffset {
			t.Errorf("pagination(%q) = (%d, %d), want (%d, %d)",
				tt.query, limit, offset, tt.wantLimit, tt.wantOffset)
		}
	}
}

func TestReadJSONRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/",
		strings.NewReader(`{"email":"a@b.c","bogus":1}`))
	var req loginRequest
	if err := readJSON(r, &req); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestPathIDInvalid(t *testing.T) {
	mux := http.NewServeMux()
	var gotErr error
	mux.HandleFunc("GET /things/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, gotErr = pathID(r, "id")
	})
	for _, raw := range []string{"abc", "0", "-4"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things/"+raw, nil))
		if !errors.Is(gotErr, core.ErrNotFound) {
			t.Errorf("pathID(%q) err = %v, want ErrNotFound", raw, gotErr)
		}
	}
}
