// Copyright (C) 2026 Ioannis Torakis <john.torakis@gmail.com>
// SPDX-License-Identifier: Elastic-2.0
//
// Licensed under the Elastic License 2.0.
// You may obtain a copy of the license at:
// https://www.elastic.co/licensing/elastic-license
//
// Use, modification, and redistribution permitted under the terms of the license,
// except for providing this software as a commercial service or product.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redhatinsights/access-requests-cli/internal/api"
	"github.com/redhatinsights/access-requests-cli/internal/config"
	"github.com/redhatinsights/access-requests-cli/internal/notify"
	apierrors "github.com/redhatinsights/access-requests-cli/pkg/errors"
	"github.com/redhatinsights/access-requests-cli/pkg/models"
)

// statusServer serves one pending request and answers a PATCH with patched
func statusServer(t *testing.T, patched models.Status, sent chan<- models.Status) *app {
	t.Helper()
	require.NoError(t, config.InitAt(t.TempDir()))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/rbac/v1/cross-account-requests/r1/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"request_id":"r1","target_account":"540155","status":"pending"}`))
		case http.MethodPatch:
			var body models.StatusPayload
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			sent <- body.Status
			_, _ = w.Write([]byte(`{"request_id":"r1","status":"` + string(patched) + `"}`))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(server.Close)

	client, err := api.NewClient(server.URL)
	require.NoError(t, err)
	return &app{
		client:   client,
		notes:    notify.NewStore(),
		identity: &models.Identity{Username: "jdoe", IsInternal: true},
		view:     models.Internal,
	}
}

func captureColor(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := color.Output
	color.Output = &buf
	t.Cleanup(func() { color.Output = prev })
	return &buf
}

func TestChangeStatus_ReportsConfirmedStatus(t *testing.T) {
	sent := make(chan models.Status, 1)
	a := statusServer(t, models.Cancelled, sent)
	out := captureColor(t)

	require.NoError(t, changeStatus(context.Background(), a, "r1", models.Cancelled, true))
	assert.Equal(t, models.Cancelled, <-sent)
	assert.Contains(t, out.String(), "Request r1 is now cancelled")
}

func TestChangeStatus_ServerKeepsOtherStatus(t *testing.T) {
	sent := make(chan models.Status, 1)
	a := statusServer(t, models.Pending, sent)
	out := captureColor(t)

	require.NoError(t, changeStatus(context.Background(), a, "r1", models.Cancelled, true))
	assert.Equal(t, models.Cancelled, <-sent)
	assert.Contains(t, out.String(), "Request r1 is pending; the server did not accept cancelled")
	assert.NotContains(t, out.String(), "is now cancelled")
}

func TestChangeStatus_RejectsTransitionForView(t *testing.T) {
	sent := make(chan models.Status, 1)
	a := statusServer(t, models.Approved, sent)

	err := changeStatus(context.Background(), a, "r1", models.Approved, true)
	assert.ErrorIs(t, err, apierrors.ErrInvalidTransition)
	assert.Empty(t, sent, "nothing is sent for a transition the view cannot make")
}
