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

	"github.com/rs/zerolog"
)

// maxBody caps how much of a body is written to the log
const maxBody = 4096

// Transport wraps an http.RoundTripper to log requests and responses
type Transport struct {
	Transport http.RoundTripper
	Logger    zerolog.Logger
}

func (d *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := d.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	event := d.Logger.Debug().Str("method", req.Method).Str("url", req.URL.String())
	if req.Body != nil {
		bodyBytes, _ := io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		event = event.Str("body", truncate(bodyBytes))
	}
	event.Msg("http request")

	resp, err := base.RoundTrip(req)
	if err != nil {
		d.Logger.Debug().Err(err).Str("url", req.URL.String()).Msg("http request failed")
		return resp, err
	}

	event = d.Logger.Debug().Int("status", resp.StatusCode)
	if resp.Body != nil {
		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		event = event.Str("body", truncate(bodyBytes))
	}
	event.Msg("http response")

	return resp, err
}

func truncate(b []byte) string {
	if len(b) > maxBody {
		return string(b[:maxBody]) + "..."
	}
	return string(b)
}
