// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination parses page/limit query parameters and builds the
// metadata block returned with every list response.
package pagination

import (
	"net/http"
	"net/url"
	"strconv"
)

const (
	// DefaultPage is the first page; pages are 1-indexed.
	DefaultPage = 1

	// DefaultLimit is used when the client sends no limit or an unusable one.
	DefaultLimit = 20

	// MaxLimit caps a single page.
	MaxLimit = 100
)

// Params is a validated page request.
type Params struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip before this page.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta describes where a page sits within the full result set.
type Meta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

// NewMeta builds the metadata for page of a result set holding total rows.
func NewMeta(page, limit, total int) Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// FromRequest reads "page" and "limit" from the request's query string.
func FromRequest(request *http.Request) Params {
	return Parse(request.URL.Query())
}

// Parse reads "page" and "limit" from query values.
//
// Missing, malformed or non-positive values fall back to [DefaultPage] and
// [DefaultLimit]; a limit above [MaxLimit] is capped at [MaxLimit].
func Parse(query url.Values) Params {
	params := Params{
		Page:  positiveInt(query.Get("page"), DefaultPage),
		Limit: positiveInt(query.Get("limit"), DefaultLimit),
	}

	params.Limit = min(params.Limit, MaxLimit)
	return params
}

func positiveInt(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
