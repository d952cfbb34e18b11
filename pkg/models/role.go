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
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Role is a named permission bundle from the read-only role catalog
type Role struct {
	UUID            string        `json:"uuid,omitempty" yaml:"uuid,omitempty"`
	DisplayName     string        `json:"display_name" yaml:"display_name"`
	Description     string        `json:"description,omitempty" yaml:"description,omitempty"`
	Applications    []string      `json:"applications,omitempty" yaml:"applications,omitempty"`
	PermissionCount int           `json:"accessCount,omitempty" yaml:"permission_count,omitempty"`
	GroupsInCount   int           `json:"groups_in_count,omitempty" yaml:"groups_in_count,omitempty"`
	System          bool          `json:"system,omitempty" yaml:"system,omitempty"`
	AccessEntries   []AccessEntry `json:"-" yaml:"access,omitempty"`
	Expanded        bool          `json:"-" yaml:"-"`
}

// roleObject avoids recursion into Role.UnmarshalJSON
type roleObject struct {
	UUID            string   `json:"uuid"`
	Name            string   `json:"name"`
	DisplayName     string   `json:"display_name"`
	Description     string   `json:"description"`
	Applications    []string `json:"applications"`
	PermissionCount int      `json:"accessCount"`
	GroupsInCount   int      `json:"groups_in_count"`
	System          bool     `json:"system"`
}

// UnmarshalJSON normalises role references, which the backend sends either as a bare
// display name or as an object, into a single Role shape.
func (r *Role) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*r = Role{DisplayName: name}
		return nil
	}

	var obj roleObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("invalid role reference: %w", err)
	}
	name := obj.DisplayName
	if name == "" {
		name = obj.Name
	}
	*r = Role{
		UUID:            obj.UUID,
		DisplayName:     name,
		Description:     obj.Description,
		Applications:    obj.Applications,
		PermissionCount: obj.PermissionCount,
		GroupsInCount:   obj.GroupsInCount,
		System:          obj.System,
	}
	return nil
}

// HasApplication reports whether the role grants access within any of the given applications
func (r *Role) HasApplication(apps ...string) bool {
	for _, want := range apps {
		for _, app := range r.Applications {
			if app == want {
				return true
			}
		}
	}
	return false
}

// AccessEntry is one application:resourceType:operation permission triple
type AccessEntry struct {
	Application  string `json:"application" yaml:"application"`
	ResourceType string `json:"resource_type" yaml:"resource_type"`
	Operation    string `json:"operation" yaml:"operation"`
}

func (a AccessEntry) String() string {
	return a.Application + ":" + a.ResourceType + ":" + a.Operation
}

// ParsePermission splits an "app:resource:operation" permission string
func ParsePermission(permission string) (AccessEntry, error) {
	parts := strings.Split(permission, ":")
	if len(parts) != 3 {
		return AccessEntry{}, fmt.Errorf("malformed permission %q", permission)
	}
	return AccessEntry{Application: parts[0], ResourceType: parts[1], Operation: parts[2]}, nil
}

// RoleList is the envelope of GET roles
type RoleList struct {
	Meta Meta   `json:"meta"`
	Data []Role `json:"data"`
}

// RoleDetail is the subset of GET roles/{uuid} used to expand permissions
type RoleDetail struct {
	UUID   string `json:"uuid"`
	Access []struct {
		Permission string `json:"permission"`
	} `json:"access"`
}
