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
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redhatinsights/access-requests-cli/pkg/models"
)

func TestParseFile(t *testing.T) {
	tests := []struct {
		name string
		file string
		src  string
	}{
		{
			name: "hcl",
			file: "request.hcl",
			src: `
target_account = "123456789"
target_org     = "987654321"
start_date     = "03/17/2026"
end_date       = "2026-03-24"
roles          = ["Viewer"]
`,
		},
		{
			name: "yaml",
			file: "request.yaml",
			src: `
target_account: "123456789"
target_org: "987654321"
start_date: 03/17/2026
end_date: "2026-03-24"
roles: [Viewer]
`,
		},
		{
			name: "json",
			file: "request.json",
			src:  `{"target_account": "123456789", "target_org": "987654321", "start_date": "03/17/2026", "end_date": "2026-03-24", "roles": ["Viewer"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rf, err := ParseFile(tt.file, []byte(tt.src))
			require.NoError(t, err)
			assert.Equal(t, &RequestFile{
				TargetAccount: "123456789",
				TargetOrg:     "987654321",
				StartDate:     "03/17/2026",
				EndDate:       "03/24/2026",
				Roles:         []string{"Viewer"},
			}, rf)
		})
	}
}

func TestParseFile_Errors(t *testing.T) {
	_, err := ParseFile("request.toml", []byte(""))
	assert.ErrorContains(t, err, "unsupported request file")

	_, err = ParseFile("request.hcl", []byte(`account = "1"`))
	assert.Error(t, err, "unknown attribute")

	_, err = ParseFile("request.hcl", []byte(`target_org = `))
	assert.Error(t, err)
}

func TestLoadFileApplyAndSubmit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "request.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
target_account = "123456789"
target_org     = "987654321"
start_date     = "03/17/2026"
roles          = ["Viewer"]
`), 0o600))

	rf, err := LoadFile(path)
	require.NoError(t, err)

	store := &fakeStore{}
	w, _ := newLoaded(t, store, &closeRecorder{})
	require.NoError(t, rf.Apply(w))
	assert.True(t, w.Form().Dates.EndAutoFilled())

	require.NoError(t, Complete(w))
	require.NoError(t, w.Submit(context.Background()))
	require.Len(t, store.created, 1)
	assert.Equal(t, "2026-03-24", store.created[0].EndDate)
}

func TestComplete_ReportsDetailErrors(t *testing.T) {
	w, _ := newLoaded(t, &fakeStore{}, &closeRecorder{})
	rf := &RequestFile{TargetAccount: "abc", TargetOrg: "1", StartDate: "03/17/2026", Roles: []string{"Viewer"}}
	require.NoError(t, rf.Apply(w))

	err := Complete(w)
	assert.ErrorIs(t, err, ErrStepInvalid)
	assert.ErrorContains(t, err, "AccountNumber: Account number must contain only digits.")
}

func TestApply_PartialEditFile(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		src       string
		wantEnd   string
		wantRoles []string
	}{
		{
			name:      "yaml roles only",
			file:      "edit.yaml",
			src:       "roles: [Viewer, Editor]\n",
			wantEnd:   "03/19/2026",
			wantRoles: []string{"Viewer", "Editor"},
		},
		{
			name:      "hcl roles only",
			file:      "edit.hcl",
			src:       `roles = ["Viewer", "Editor"]`,
			wantEnd:   "03/19/2026",
			wantRoles: []string{"Viewer", "Editor"},
		},
		{
			name:      "hcl end date only",
			file:      "edit.hcl",
			src:       `end_date = "04/01/2026"`,
			wantEnd:   "04/01/2026",
			wantRoles: []string{"Viewer"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{existing: &models.AccessRequest{
				RequestID: "r1", TargetAccount: "111", TargetOrg: "222",
				StartDate: "2026-03-12", EndDate: "2026-03-19", Status: models.Pending,
				Roles: []models.Role{{DisplayName: "Viewer"}},
			}}
			w, _ := newLoaded(t, store, &closeRecorder{}, WithRequestID("r1"))

			rf, err := ParseFile(tt.file, []byte(tt.src))
			require.NoError(t, err)
			require.NoError(t, rf.Apply(w))

			form := w.Form()
			assert.Equal(t, "111", form.AccountNumber)
			assert.Equal(t, "222", form.OrgID)
			assert.Equal(t, "03/12/2026", form.Dates.Start)
			assert.Equal(t, tt.wantEnd, form.Dates.End)
			assert.Equal(t, tt.wantRoles, form.Roles)
		})
	}
}
