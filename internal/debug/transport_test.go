// Copyright (C) 2026 Ioannis Torakis <john.torakis@gmail.com>
// SPDX-License-Identifier: Elastic-2.0
//
// Licensed under the Elastic License 2.0.
// You may obtain a copy of the license at:
// https://www.elastic.co/licensing/elastic-license
//
// Use, modification, and redistribution permitted under the terms of the license,
// except for providing this software as a commercial service or product.

package debug

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransport_LogsAndPreservesBodies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"status":"cancelled"}`, string(body))
		_, _ = w.Write([]byte(`{"request_id":"abc"}`))
	}))
	defer server.Close()

	var logs bytes.Buffer
	client := &http.Client{Transport: &Transport{Logger: zerolog.New(&logs).Level(zerolog.DebugLevel)}}

	resp, err := client.Post(server.URL, "application/json", strings.NewReader(`{"status":"cancelled"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"request_id":"abc"}`, string(body))
	assert.Contains(t, logs.String(), "http request")
	assert.Contains(t, logs.String(), `\"request_id\":\"abc\"`)
}

func TestTruncate(t *testing.T) {
	long := bytes.Repeat([]byte("a"), maxBody+10)
	assert.Len(t, truncate(long), maxBody+3)
	assert.Equal(t, "short", truncate([]byte("short")))
}
