// Copyright (C) 2026 Ioannis Torakis <john.torakis@gmail.com>
// SPDX-License-Identifier: Elastic-2.0
//
// Licensed under the Elastic License 2.0.
// You may obtain a copy of the license at:
// https://www.elastic.co/licensing/elastic-license
//
// Use, modification, and redistribution permitted under the terms of the license,
// except for providing this software as a commercial service or product.

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/redhatinsights/access-requests-cli/pkg/models"
)

// RoleCatalogLimit is large enough to return the whole catalog in one page
const RoleCatalogLimit = 9999

// ListRoles fetches the complete role catalog, optionally restricted to system roles
func (c *Client) ListRoles(ctx context.Context, system bool) ([]models.Role, error) {
	query := url.Values{}
	query.Set("limit", fmt.Sprint(RoleCatalogLimit))
	query.Set("order_by", "display_name")
	query.Set("add_fields", "groups_in_count")
	if system {
		query.Set("system", "true")
	}

	var list models.RoleList
	if err := c.call(ctx, "list roles", "", http.MethodGet, "/roles/", query, nil, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// GetRoleAccess fetches the permissions of one role
func (c *Client) GetRoleAccess(ctx context.Context, uuid string) ([]models.AccessEntry, error) {
	var detail models.RoleDetail
	path := fmt.Sprintf("/roles/%s/", url.PathEscape(uuid))
	if err := c.call(ctx, "get role", uuid, http.MethodGet, path, nil, nil, &detail); err != nil {
		return nil, err
	}

	entries := make([]models.AccessEntry, 0, len(detail.Access))
	for _, a := range detail.Access {
		entry, err := models.ParsePermission(a.Permission)
		if err != nil {
			c.logger.Warn().Str("role", uuid).Err(err).Msg("skipping permission")
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
