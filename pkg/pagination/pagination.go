// Copyright (c) 2026 CoPla. All rights reserved.

// Package pagination parses page/limit query parameters and builds the meta
// block of paginated responses, such as the user listing.
package pagination

import (
	"net/http"

	"github.com/copla/copla/pkg/convert"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params is a requested page. Page is 1-based.
type Params struct {
	Page  int
	Limit int
}

// Offset is the SQL OFFSET of the page.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta is the "meta" object of a paginated response.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta derives TotalPages from total and limit.
func NewMeta(page, limit, total int) Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return Meta{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

// FromRequest reads "page" and "limit". Out of range or malformed values fall
// back to [DefaultPage] and [DefaultLimit].
func FromRequest(request *http.Request) Params {
	query := request.URL.Query()
	page := convert.ToIntD(query.Get("page"), DefaultPage)
	limit := convert.ToIntD(query.Get("limit"), DefaultLimit)

	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}

	return Params{Page: page, Limit: limit}
}
