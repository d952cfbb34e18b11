// Copyright (C) 2026 Ioannis Torakis <john.torakis@gmail.com>
// SPDX-License-Identifier: Elastic-2.0
//
// Licensed under the Elastic License 2.0.
// You may obtain a copy of the license at:
// https://www.elastic.co/licensing/elastic-license
//
// Use, modification, and redistribution permitted under the terms of the license,
// except for providing this software as a commercial service or product.

package models

import (
	"fmt"
	"time"
)

// Status is the server-authoritative lifecycle state of an access request
type Status string

// Statuses known to the cross-account-requests endpoint
const (
	Pending   Status = "pending"
	Approved  Status = "approved"
	Denied    Status = "denied"
	Cancelled Status = "cancelled"
	Expired   Status = "expired"
)

// AllStatuses lists statuses in the order they are offered as filters
var AllStatuses = []Status{Pending, Approved, Denied, Cancelled, Expired}

func (s Status) String() string {
	return string(s)
}

// Terminal reports whether no further status transition can be proposed
func (s Status) Terminal() bool {
	return s != Pending
}

// ParseStatus validates a user-supplied status string
func ParseStatus(value string) (Status, error) {
	for _, s := range AllStatuses {
		if string(s) == value {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", value)
}

// View is the perspective a caller lists and acts on requests from
type View string

const (
	// Internal is the Red Hat staff view: create, edit, cancel, sees target account identifiers
	Internal View = "internal"
	// External is the customer view: approve or deny, sees requester identity
	External View = "external"
)

// ParseView validates a user-supplied view name
func ParseView(value string) (View, error) {
	switch View(value) {
	case Internal, External:
		return View(value), nil
	}
	return "", fmt.Errorf("unknown view %q (expected internal or external)", value)
}

// AllowedTransitions returns the statuses a client in the given view may propose for a request
// currently in status s. The server remains the authority on the outcome.
func AllowedTransitions(view View, s Status) []Status {
	if s != Pending {
		return nil
	}
	if view == External {
		return []Status{Approved, Denied}
	}
	return []Status{Cancelled}
}

// CanTransition reports whether the transition from one status to another may be proposed
func CanTransition(view View, from, to Status) bool {
	for _, s := range AllowedTransitions(view, from) {
		if s == to {
			return true
		}
	}
	return false
}

// AccessRequest is a grant of read access from one account to another for a bounded time window
type AccessRequest struct {
	RequestID     string    `json:"request_id" yaml:"request_id"`
	TargetAccount string    `json:"target_account,omitempty" yaml:"target_account,omitempty"`
	TargetOrg     string    `json:"target_org,omitempty" yaml:"target_org,omitempty"`
	FirstName     string    `json:"first_name,omitempty" yaml:"first_name,omitempty"`
	LastName      string    `json:"last_name,omitempty" yaml:"last_name,omitempty"`
	UserID        string    `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	StartDate     string    `json:"start_date" yaml:"start_date"`
	EndDate       string    `json:"end_date" yaml:"end_date"`
	Created       time.Time `json:"created" yaml:"created"`
	Status        Status    `json:"status" yaml:"status"`
	Roles         []Role    `json:"roles" yaml:"roles"`
}

// RoleNames returns the display names of the request's roles in order
func (r *AccessRequest) RoleNames() []string {
	names := make([]string, 0, len(r.Roles))
	for _, role := range r.Roles {
		names = append(names, role.DisplayName)
	}
	return names
}

// RequesterName joins the requester's first and last name
func (r *AccessRequest) RequesterName() string {
	switch {
	case r.FirstName == "":
		return r.LastName
	case r.LastName == "":
		return r.FirstName
	}
	return r.FirstName + " " + r.LastName
}

// RequestPayload is the body of POST and PUT on cross-account-requests
type RequestPayload struct {
	TargetAccount string   `json:"target_account"`
	TargetOrg     string   `json:"target_org"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	Roles         []string `json:"roles"`
}

// StatusPayload is the body of PATCH on cross-account-requests
type StatusPayload struct {
	Status Status `json:"status"`
}

// Meta carries list metadata returned by the backend
type Meta struct {
	Count  int `json:"count"`
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// RequestList is the envelope of GET cross-account-requests
type RequestList struct {
	Meta Meta            `json:"meta"`
	Data []AccessRequest `json:"data"`
}
