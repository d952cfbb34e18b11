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
	"strconv"
	"strings"

	"github.com/redhatinsights/access-requests-cli/pkg/models"
)

// Query scopes accepted by the query_by parameter
const (
	QueryByTargetOrg = "target_org"
	QueryByUserID    = "user_id"
)

// ListParams are the query parameters of GET cross-account-requests
type ListParams struct {
	Offset   int
	Limit    int
	OrderBy  string
	Account  string
	Statuses []models.Status
	QueryBy  string
}

// Values encodes the parameters, omitting empty filters
func (p ListParams) Values() url.Values {
	v := url.Values{}
	v.Set("offset", strconv.Itoa(p.Offset))
	v.Set("limit", strconv.Itoa(p.Limit))
	if p.OrderBy != "" {
		v.Set("order_by", p.OrderBy)
	}
	if p.Account != "" {
		v.Set("account", p.Account)
	}
	if len(p.Statuses) > 0 {
		statuses := make([]string, len(p.Statuses))
		for i, s := range p.Statuses {
			statuses[i] = string(s)
		}
		v.Set("status", strings.Join(statuses, ","))
	}
	if p.QueryBy != "" {
		v.Set("query_by", p.QueryBy)
	}
	return v
}

// ListRequests fetches one page of access requests
func (c *Client) ListRequests(ctx context.Context, params ListParams) (*models.RequestList, error) {
	var list models.RequestList
	if err := c.call(ctx, "list requests", "", http.MethodGet, "/cross-account-requests/", params.Values(), nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetRequest fetches a single access request
func (c *Client) GetRequest(ctx context.Context, id, queryBy string) (*models.AccessRequest, error) {
	var query url.Values
	if queryBy != "" {
		query = url.Values{"query_by": []string{queryBy}}
	}

	var req models.AccessRequest
	if err := c.call(ctx, "get request", id, http.MethodGet, requestPath(id), query, nil, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// CreateRequest submits a new access request
func (c *Client) CreateRequest(ctx context.Context, payload models.RequestPayload) (*models.AccessRequest, error) {
	var req models.AccessRequest
	if err := c.call(ctx, "create request", "", http.MethodPost, "/cross-account-requests/", nil, payload, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// UpdateRequest replaces a pending access request
func (c *Client) UpdateRequest(ctx context.Context, id string, payload models.RequestPayload) (*models.AccessRequest, error) {
	var req models.AccessRequest
	if err := c.call(ctx, "update request", id, http.MethodPut, requestPath(id), nil, payload, &req); err != nil {
		return nil, err
	}
	if req.RequestID == "" {
		req.RequestID = id
	}
	return &req, nil
}

// UpdateStatus proposes a status transition. The returned record carries the
// status the server accepted, which is the only one callers should display.
func (c *Client) UpdateStatus(ctx context.Context, id string, status models.Status) (*models.AccessRequest, error) {
	var req models.AccessRequest
	if err := c.call(ctx, "update status", id, http.MethodPatch, requestPath(id), nil, models.StatusPayload{Status: status}, &req); err != nil {
		return nil, err
	}
	if req.RequestID == "" {
		req.RequestID = id
	}
	return &req, nil
}

func requestPath(id string) string {
	return fmt.Sprintf("/cross-account-requests/%s/", url.PathEscape(id))
}
