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

// Identity is the authenticated caller, decoded from the session token
type Identity struct {
	Username      string `json:"username" yaml:"username"`
	Email         string `json:"email,omitempty" yaml:"email,omitempty"`
	FirstName     string `json:"first_name" yaml:"first_name"`
	LastName      string `json:"last_name" yaml:"last_name"`
	AccountNumber string `json:"account_number,omitempty" yaml:"account_number,omitempty"`
	OrgID         string `json:"org_id,omitempty" yaml:"org_id,omitempty"`
	IsInternal    bool   `json:"is_internal" yaml:"is_internal"`
	IsOrgAdmin    bool   `json:"is_org_admin" yaml:"is_org_admin"`
}

// FullName joins first and last name, falling back to the username
func (i *Identity) FullName() string {
	name := i.FirstName
	if i.LastName != "" {
		if name != "" {
			name += " "
		}
		name += i.LastName
	}
	if name == "" {
		return i.Username
	}
	return name
}

// DefaultView picks the view matching the identity
func (i *Identity) DefaultView() View {
	if i.IsInternal {
		return Internal
	}
	return External
}
