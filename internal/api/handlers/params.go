package handlers

import (
	"net/http"
	"strconv"
)

// pagination reads offset/limit query params with a per-endpoint default
// and cap on limit. Bad values fall back rather than erroring.
func pagination(r *http.Request, defaultLimit, maxLimit int) (offset, limit int) {
	limit = defaultLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v >= 1 {
		limit = v
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	return offset, limit
}
