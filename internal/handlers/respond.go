package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/gookit/validate"

	mw "memoryjournal/internal/middleware"
	"memoryjournal/internal/store"
)

const (
	maxBodyBytes = 1 << 20
	maxPageLimit = 100
	// maxPage keeps (page-1)*limit far from integer overflow.
	maxPage = 1_000_000
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

// validateStruct runs the `validate` tag rules and returns the first
// failure as an error.
func validateStruct(v any) error {
	vd := validate.Struct(v)
	if vd.Validate() {
		return nil
	}
	return errors.New(vd.Errors.One())
}

func currentUser(r *http.Request) int {
	id, _ := mw.UserID(r.Context())
	return id
}

func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	return id, err == nil && id > 0
}

// parseTime accepts RFC 3339 timestamps and YYYY-MM-DD dates. A date used as
// an upper bound covers the whole day.
func parseTime(s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return t, nil
}

// dateRange parses startDate and endDate query params. Both must be present
// for the range to apply.
func dateRange(r *http.Request) (start, end *time.Time, err error) {
	q := r.URL.Query()
	s, e := q.Get("startDate"), q.Get("endDate")
	if s == "" || e == "" {
		return nil, nil, nil
	}
	st, err := parseTime(s, false)
	if err != nil {
		return nil, nil, errors.New("invalid startDate")
	}
	et, err := parseTime(e, true)
	if err != nil {
		return nil, nil, errors.New("invalid endDate")
	}
	return &st, &et, nil
}

func boolParam(r *http.Request, name string) (*bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, errors.New("invalid " + name)
	}
	return &b, nil
}

// pageParams reads page and limit. Missing or non-positive values fall back
// to page 1 and defLimit; limit is capped at maxPageLimit.
func pageParams(r *http.Request, defLimit int) (store.Page, error) {
	q := r.URL.Query()
	raw := q.Get("page")
	if _, err := strconv.Atoi(raw); errors.Is(err, strconv.ErrRange) {
		return store.Page{}, errors.New("page out of range")
	}
	page := atoiDefault(raw, 1)
	if page > maxPage {
		return store.Page{}, errors.New("page out of range")
	}
	limit := atoiDefault(q.Get("limit"), defLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return store.Page{Page: page, Limit: limit}, nil
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
