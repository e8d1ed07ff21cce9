// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides shared types and helpers for walking remote,
// 1-indexed paginated listings.
//
// # Overview
//
// Every paginated endpoint of the remote catalog answers with one slice of
// documents plus the total number of pages at the time of the request. The
// total is re-read on every call because the remote listing keeps growing.
package pagination

import (
	"context"
)

const (
	// FirstPage is the first page of any remote listing (1-indexed).
	FirstPage = 1
)

// Page is one page of a remote paginated listing.
type Page[T any] struct {
	Docs  []T `json:"docs"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Total int `json:"total"`
	Limit int `json:"limit"`
}

// FetchFunc fetches a single page of a listing.
type FetchFunc[T any] func(ctx context.Context, page int) (Page[T], error)

// Normalize clamps a requested page number to [FirstPage].
func Normalize(page int) int {
	if page < FirstPage {
		return FirstPage
	}
	return page
}

// Collect walks a listing from [FirstPage] and accumulates every document.
//
// # Termination
//
// At least one page is always requested. Walking stops once the next page
// number exceeds the page count reported by the most recent response, so a
// listing that grows while being walked is followed to its new end.
//
// Any fetch error aborts the walk and no partial result is returned.
func Collect[T any](ctx context.Context, fetch FetchFunc[T]) ([]T, error) {
	var items []T

	page := FirstPage
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := fetch(ctx, page)
		if err != nil {
			return nil, err
		}

		items = append(items, result.Docs...)
		page++

		if page > result.Pages {
			return items, nil
		}
	}
}
