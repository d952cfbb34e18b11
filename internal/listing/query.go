// Copyright (C) 2026 Ioannis Torakis <john.torakis@gmail.com>
// SPDX-License-Identifier: Elastic-2.0
//
// Licensed under the Elastic License 2.0.
// You may obtain a copy of the license at:
// https://www.elastic.co/licensing/elastic-license
//
// Use, modification, and redistribution permitted under the terms of the license,
// except for providing this software as a commercial service or product.

// Package listing is the fetch/filter/sort/paginate pipeline shared by the
// requests table and the roles table.
package listing

import (
	"strings"
	"unicode"

	"github.com/redhatinsights/access-requests-cli/internal/api"
	"github.com/redhatinsights/access-requests-cli/pkg/models"
)

// DefaultPerPage is the page size used when none is configured
const DefaultPerPage = 20

// Query is the UI state that drives one fetch
type Query struct {
	Page         int
	PerPage      int
	SortBy       string
	Desc         bool
	Text         string
	Statuses     []models.Status
	Applications []string
}

// NewQuery returns page one sorted by sortBy
func NewQuery(sortBy string, desc bool) Query {
	return Query{Page: 1, PerPage: DefaultPerPage, SortBy: sortBy, Desc: desc}
}

// Offset is the zero-based index of the first row of the page
func (q Query) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit()
}

// Limit is the page size, falling back to DefaultPerPage
func (q Query) Limit() int {
	if q.PerPage < 1 {
		return DefaultPerPage
	}
	return q.PerPage
}

// OrderBy renders the sort as the backend's order_by value
func (q Query) OrderBy() string {
	if q.SortBy == "" {
		return ""
	}
	col := SnakeCase(q.SortBy)
	if q.Desc {
		return "-" + col
	}
	return col
}

// FiltersDirty reports whether any filter is active
func (q Query) FiltersDirty() bool {
	return strings.TrimSpace(q.Text) != "" || len(q.Statuses) > 0 || len(q.Applications) > 0
}

func (q Query) clone() Query {
	out := q
	out.Statuses = append([]models.Status(nil), q.Statuses...)
	out.Applications = append([]string(nil), q.Applications...)
	return out
}

// SnakeCase converts a camelCase column name to snake_case; snake_case input is unchanged
func SnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Scope decides whether the backend scopes results to the organization or the user
type Scope struct {
	View       models.View
	IsOrgAdmin bool
	Bundle     string
}

// QueryBy returns target_org for the external view and for org admins in the iam
// bundle, user_id otherwise.
func QueryBy(view models.View, isOrgAdmin bool, bundle string) string {
	if view == models.External || (isOrgAdmin && bundle == "iam") {
		return api.QueryByTargetOrg
	}
	return api.QueryByUserID
}

// QueryBy returns the scope's query_by value
func (s Scope) QueryBy() string {
	return QueryBy(s.View, s.IsOrgAdmin, s.Bundle)
}

// RequestParams translates a query into backend list parameters
func RequestParams(q Query, scope Scope) api.ListParams {
	return api.ListParams{
		Offset:   q.Offset(),
		Limit:    q.Limit(),
		OrderBy:  q.OrderBy(),
		Account:  strings.TrimSpace(q.Text),
		Statuses: q.Statuses,
		QueryBy:  scope.QueryBy(),
	}
}

// PageCount is the number of pages needed for total rows
func PageCount(total, perPage int) int {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// Range returns the 1-based positions of the first and last row of the page
func Range(q Query, rows, total int) (int, int) {
	if rows == 0 || total == 0 {
		return 0, 0
	}
	first := q.Offset() + 1
	return first, first + rows - 1
}
