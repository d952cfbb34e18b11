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
	"fmt"
	"strings"

	"github.com/redhatinsights/access-requests-cli/internal/daterange"
	"github.com/redhatinsights/access-requests-cli/pkg/models"
)

// Column describes one table column over rows of type T
type Column[T any] struct {
	Key      string
	Header   string
	Sortable bool
	Cell     func(T) string
}

// Headers returns the column headers in order
func Headers[T any](cols []Column[T]) []string {
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Header
	}
	return headers
}

// Cells renders a row with the given columns
func Cells[T any](cols []Column[T], row T) []string {
	cells := make([]string, len(cols))
	for i, c := range cols {
		cells[i] = c.Cell(row)
	}
	return cells
}

// SortKey validates a user-supplied sort column against the sortable columns.
// camelCase and snake_case spellings are both accepted.
func SortKey[T any](cols []Column[T], key string) (string, error) {
	want := SnakeCase(key)
	var keys []string
	for _, c := range cols {
		if !c.Sortable {
			continue
		}
		if c.Key == want {
			return c.Key, nil
		}
		keys = append(keys, c.Key)
	}
	return "", fmt.Errorf("cannot sort by %q (expected one of: %s)", key, strings.Join(keys, ", "))
}

// DefaultRequestSort is the initial sort of the requests table (newest first)
const DefaultRequestSort = "created"

var (
	requestIDColumn = Column[models.AccessRequest]{
		Key: "request_id", Header: "Request ID",
		Cell: func(r models.AccessRequest) string { return r.RequestID },
	}
	startColumn = Column[models.AccessRequest]{
		Key: "start_date", Header: "Start date", Sortable: true,
		Cell: func(r models.AccessRequest) string { return daterange.FromISO(r.StartDate) },
	}
	endColumn = Column[models.AccessRequest]{
		Key: "end_date", Header: "End date", Sortable: true,
		Cell: func(r models.AccessRequest) string { return daterange.FromISO(r.EndDate) },
	}
	createdColumn = Column[models.AccessRequest]{
		Key: "created", Header: "Created", Sortable: true,
		Cell: func(r models.AccessRequest) string {
			if r.Created.IsZero() {
				return ""
			}
			return r.Created.Local().Format("02 Jan 2006")
		},
	}
	statusColumn = Column[models.AccessRequest]{
		Key: "status", Header: "Status", Sortable: true,
		Cell: func(r models.AccessRequest) string { return string(r.Status) },
	}
)

// RequestColumns returns the requests table columns for a view. The internal view
// shows the target account; the external view shows who asked for access.
func RequestColumns(view models.View) []Column[models.AccessRequest] {
	if view == models.External {
		return []Column[models.AccessRequest]{
			requestIDColumn,
			{Key: "first_name", Header: "First name", Sortable: true, Cell: func(r models.AccessRequest) string { return r.FirstName }},
			{Key: "last_name", Header: "Last name", Sortable: true, Cell: func(r models.AccessRequest) string { return r.LastName }},
			startColumn, endColumn, createdColumn, statusColumn,
		}
	}
	return []Column[models.AccessRequest]{
		requestIDColumn,
		{Key: "target_account", Header: "Account number", Sortable: true, Cell: func(r models.AccessRequest) string { return r.TargetAccount }},
		{Key: "target_org", Header: "Org ID", Sortable: true, Cell: func(r models.AccessRequest) string { return r.TargetOrg }},
		startColumn, endColumn, createdColumn, statusColumn,
	}
}

// RoleColumns returns the roles table columns
func RoleColumns() []Column[*models.Role] {
	return []Column[*models.Role]{
		{Key: RoleSortName, Header: "Role name", Sortable: true, Cell: func(r *models.Role) string { return r.DisplayName }},
		{Key: RoleSortDescription, Header: "Description", Sortable: true, Cell: func(r *models.Role) string { return r.Description }},
		{Key: RoleSortPermissions, Header: "Permissions", Sortable: true, Cell: func(r *models.Role) string { return fmt.Sprint(r.PermissionCount) }},
		{Key: RoleSortApplications, Header: "Applications", Sortable: true, Cell: func(r *models.Role) string { return strings.Join(r.Applications, ", ") }},
	}
}
