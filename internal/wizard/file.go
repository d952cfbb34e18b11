// Copyright (C) 2026 Ioannis Torakis <john.torakis@gmail.com>
// SPDX-License-Identifier: Elastic-2.0
//
// Licensed under the Elastic License 2.0.
// You may obtain a copy of the license at:
// https://www.elastic.co/licensing/elastic-license
//
// Use, modification, and redistribution permitted under the terms of the license,
// except for providing this software as a commercial service or product.

package wizard

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"gopkg.in/yaml.v3"

	"github.com/redhatinsights/access-requests-cli/internal/daterange"
)

// RequestFile is a request written ahead of time for non-interactive creation.
// Dates may be mm/dd/yyyy or yyyy-mm-dd.
//
//	target_account = "1234567"
//	target_org     = "7654321"
//	start_date     = "03/17/2026"
//	roles          = ["Inventory viewer"]
type RequestFile struct {
	TargetAccount string   `hcl:"target_account,optional" yaml:"target_account"`
	TargetOrg     string   `hcl:"target_org,optional" yaml:"target_org"`
	StartDate     string   `hcl:"start_date,optional" yaml:"start_date"`
	EndDate       string   `hcl:"end_date,optional" yaml:"end_date"`
	Roles         []string `hcl:"roles,optional" yaml:"roles"`
}

// LoadFile reads a request file; the format follows the extension
func LoadFile(path string) (*RequestFile, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read request file: %w", err)
	}
	return ParseFile(filepath.Base(path), src)
}

// ParseFile decodes .hcl with hclsimple and .yaml, .yml or .json with yaml.v3
func ParseFile(filename string, src []byte) (*RequestFile, error) {
	var rf RequestFile

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".hcl":
		if err := hclsimple.Decode(filename, src, nil, &rf); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
		}
	case ".yaml", ".yml", ".json":
		if err := yaml.Unmarshal(src, &rf); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
		}
	default:
		return nil, fmt.Errorf("unsupported request file %q (expected .hcl, .yaml, .yml or .json)", filename)
	}

	rf.StartDate = daterange.FromISO(strings.TrimSpace(rf.StartDate))
	rf.EndDate = daterange.FromISO(strings.TrimSpace(rf.EndDate))
	return &rf, nil
}

// Apply copies the file into a loaded wizard. Empty values keep what the wizard
// already holds, so an edit file may carry only the fields it changes. An empty
// end date is auto-filled from a new start date.
func (rf *RequestFile) Apply(w *Wizard) error {
	if rf.TargetAccount != "" {
		if err := w.SetAccountNumber(rf.TargetAccount); err != nil {
			return err
		}
	}
	if rf.TargetOrg != "" {
		if err := w.SetOrgID(rf.TargetOrg); err != nil {
			return err
		}
	}
	if rf.StartDate != "" {
		if _, err := w.SetStartDate(rf.StartDate); err != nil {
			return err
		}
	}
	if rf.EndDate != "" {
		if err := w.SetEndDate(rf.EndDate); err != nil {
			return err
		}
	}
	if len(rf.Roles) > 0 {
		return w.SetRoles(rf.Roles)
	}
	return nil
}

// Complete advances to the review step, returning the first blocking reason
func Complete(w *Wizard) error {
	for w.Step() != StepReview {
		if err := w.Next(); err != nil {
			if errs, ok := w.DetailErrors(); !ok && w.Step() == StepDetails {
				return fmt.Errorf("%w: %s", err, joinErrors(errs))
			}
			return err
		}
	}
	return nil
}

func joinErrors(errs map[string]string) string {
	order := []string{"AccountNumber", "OrgID", "StartDate", "EndDate"}
	var parts []string
	for _, k := range order {
		if msg, ok := errs[k]; ok {
			parts = append(parts, k+": "+msg)
		}
	}
	return strings.Join(parts, "; ")
}
