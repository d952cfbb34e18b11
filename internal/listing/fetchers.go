// Copyright (C) 2026 Ioannis Torakis <john.torakis@gmail.com>
// SPDX-License-Identifier: Elastic-2.0
//
// Licensed under the Elastic License 2.0.
// You may obtain a copy of the license at:
// https://www.elastic.co/licensing/elastic-license
//
// Use, modification, and redistribution permitted under the terms of the license,
// except for providing this software as a commercial service or product.

package listing

import (
	"context"
	"sort"
	"strings"

	"github.com/redhatinsights/access-requests-cli/internal/api"
	"github.com/redhatinsights/access-requests-cli/pkg/models"
)

// RequestLister is the part of the API client the requests table needs
type RequestLister interface {
	ListRequests(ctx context.Context, params api.ListParams) (*models.RequestList, error)
}

// RequestFetcher fetches server-side pages of access requests within scope
func RequestFetcher(lister RequestLister, scope Scope) Fetcher[models.AccessRequest] {
	return FetchFunc[models.AccessRequest](func(ctx context.Context, q Query) (Page[models.AccessRequest], error) {
		list, err := lister.ListRequests(ctx, RequestParams(q, scope))
		if err != nil {
			return Page[models.AccessRequest]{}, err
		}
		return Page[models.AccessRequest]{Rows: list.Data, Total: list.Meta.Count}, nil
	})
}

// RoleSource supplies the cached role catalog
type RoleSource interface {
	Roles(ctx context.Context) ([]*models.Role, error)
}

// Role sort keys
const (
	RoleSortName         = "display_name"
	RoleSortDescription  = "description"
	RoleSortPermissions  = "permissions"
	RoleSortApplications = "applications"
)

// RoleSortKeys lists the columns the roles table can sort by
var RoleSortKeys = []string{RoleSortName, RoleSortDescription, RoleSortPermissions, RoleSortApplications}

// RoleFetcher filters, sorts and paginates the cached catalog client-side
func RoleFetcher(src RoleSource) Fetcher[*models.Role] {
	return FetchFunc[*models.Role](func(ctx context.Context, q Query) (Page[*models.Role], error) {
		roles, err := src.Roles(ctx)
		if err != nil {
			return Page[*models.Role]{}, err
		}

		filtered := FilterRoles(roles, q.Text, q.Applications)
		SortRoles(filtered, q.SortBy, q.Desc)

		total := len(filtered)
		start := q.Offset()
		if start > total {
			start = total
		}
		end := start + q.Limit()
		if end > total {
			end = total
		}
		return Page[*models.Role]{Rows: filtered[start:end], Total: total}, nil
	})
}

// FilterRoles keeps roles whose display name contains text (case-insensitive) and
// that belong to any of apps. Empty filters match everything.
func FilterRoles(roles []*models.Role, text string, apps []string) []*models.Role {
	needle := strings.ToLower(strings.TrimSpace(text))
	out := make([]*models.Role, 0, len(roles))
	for _, r := range roles {
		if needle != "" && !strings.Contains(strings.ToLower(r.DisplayName), needle) {
			continue
		}
		if len(apps) > 0 && !r.HasApplication(apps...) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SortRoles orders roles in place by one of RoleSortKeys, ties broken by name
func SortRoles(roles []*models.Role, key string, desc bool) {
	less := func(a, b *models.Role) bool {
		switch SnakeCase(key) {
		case RoleSortDescription:
			if x, y := strings.ToLower(a.Description), strings.ToLower(b.Description); x != y {
				return x < y
			}
		case RoleSortPermissions:
			if a.PermissionCount != b.PermissionCount {
				return a.PermissionCount < b.PermissionCount
			}
		case RoleSortApplications:
			if x, y := strings.Join(a.Applications, ","), strings.Join(b.Applications, ","); x != y {
				return x < y
			}
		}
		return strings.ToLower(a.DisplayName) < strings.ToLower(b.DisplayName)
	}

	sort.SliceStable(roles, func(i, j int) bool {
		if desc {
			return less(roles[j], roles[i])
		}
		return less(roles[i], roles[j])
	})
}
