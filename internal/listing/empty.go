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
	"github.com/redhatinsights/access-requests-cli/pkg/models"
)

// EmptyKind distinguishes "never had data" from "filtered to nothing"
type EmptyKind int

const (
	EmptyNone EmptyKind = iota
	EmptyNoData
	EmptyNoMatches
)

// Empty-state actions
const (
	ActionCreate       = "Create request"
	ActionClearFilters = "Clear all filters"
)

// EmptyState describes what to show instead of an empty table
type EmptyState struct {
	Kind   EmptyKind
	Title  string
	Body   string
	Action string
}

// SelectEmptyState picks the empty state for the requests table. Zero rows
// without filters is the large "no data" state, which offers creation only in
// the internal view; zero rows with filters is the "no matches" state.
func SelectEmptyState(rows int, filtersDirty bool, view models.View) EmptyState {
	switch {
	case rows > 0:
		return EmptyState{Kind: EmptyNone}
	case filtersDirty:
		return noMatches("requests")
	case view == models.Internal:
		return EmptyState{
			Kind:   EmptyNoData,
			Title:  "No access requests",
			Body:   "Create a request to gain read access to a customer account.",
			Action: ActionCreate,
		}
	default:
		return EmptyState{
			Kind:  EmptyNoData,
			Title: "You have no access requests",
			Body:  "Requests from Red Hat support for access to your account will appear here.",
		}
	}
}

// SelectRoleEmptyState picks the empty state for the roles table
func SelectRoleEmptyState(rows int, filtersDirty bool) EmptyState {
	switch {
	case rows > 0:
		return EmptyState{Kind: EmptyNone}
	case filtersDirty:
		return noMatches("roles")
	}
	return EmptyState{Kind: EmptyNoData, Title: "No roles", Body: "No roles are available."}
}

func noMatches(noun string) EmptyState {
	return EmptyState{
		Kind:   EmptyNoMatches,
		Title:  "No matching " + noun + " found",
		Body:   "No results match the filter criteria. Clear all filters and try again.",
		Action: ActionClearFilters,
	}
}
