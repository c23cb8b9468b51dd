package shared

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/okean-yachts/okean-cpq/internal/platform/httpx"
)

// RespondError maps catalog sentinel errors onto problem responses.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicate):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrValidation), errors.Is(err, ErrRequiredField), errors.Is(err, ErrInvalidID):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}

// ParseFilters extracts common query filters.
func ParseFilters(r *http.Request) ListFilters {
	q := r.URL.Query()
	filters := ListFilters{
		Page:    DefaultPage,
		Limit:   DefaultLimit,
		Search:  q.Get("search"),
		SortBy:  q.Get("sort_by"),
		SortDir: q.Get("sort_dir"),
	}
	if page := atoiDefault(q.Get("page"), DefaultPage); page > 0 {
		filters.Page = page
	}
	if limit := atoiDefault(q.Get("limit"), DefaultLimit); limit > 0 && limit <= 100 {
		filters.Limit = limit
	}
	if raw := q.Get("is_active"); raw != "" {
		active := raw == "true"
		filters.IsActive = &active
	}
	if v := q.Get("category"); v != "" {
		filters.Category = &v
	}
	if v := q.Get("model_id"); v != "" {
		filters.ModelID = &v
	}
	if v := q.Get("memorial_item_id"); v != "" {
		filters.MemorialItemID = &v
	}
	return filters
}

func atoiDefault(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
