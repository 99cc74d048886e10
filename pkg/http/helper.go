package http

import (
	"net/http"
	"strconv"

	"fleetbook/pkg/config"
	apperrors "fleetbook/pkg/errors"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	RoleAdmin = "admin"
)

// Identity carries the requester identity set by the authenticating gateway.
// Authentication itself happens upstream; these headers are trusted input here.
type Identity struct {
	UserID  string
	IsAdmin bool
}

func ExtractIdentity(r *http.Request) (Identity, error) {
	userID := r.Header.Get(HeaderUserID)
	if userID == "" {
		return Identity{}, apperrors.Unauthorized("missing " + HeaderUserID + " header")
	}
	return Identity{
		UserID:  userID,
		IsAdmin: r.Header.Get(HeaderUserRole) == RoleAdmin,
	}, nil
}

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = int64(v)
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}
