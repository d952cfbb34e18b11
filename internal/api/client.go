// Copyright (C) 2026 Ioannis Torakis <john.torakis@gmail.com>
// SPDX-License-Identifier: Elastic-2.0
//
// Licensed under the Elastic License 2.0.
// You may obtain a copy of the license at:
// https://www.elastic.co/licensing/elastic-license
//
// Use, modification, and redistribution permitted under the terms of the license,
// except for providing this software as a commercial service or product.

// Package api is the client for the RBAC cross-account-requests and roles endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/redhatinsights/access-requests-cli/internal/debug"
	apierrors "github.com/redhatinsights/access-requests-cli/pkg/errors"
)

// BasePath is the RBAC API prefix appended to the configured server URL
const BasePath = "/api/rbac/v1"

// RequestIDHeader carries a per-call correlation id
const RequestIDHeader = "x-rh-insights-request-id"

// HTTPClient abstracts HTTP calls for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client represents the RBAC API client
type Client struct {
	httpClient HTTPClient
	baseURL    string
	userAgent  string
	source     oauth2.TokenSource
	debug      bool
	logger     zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(hc HTTPClient) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenSource authenticates every call with a bearer token from src
func WithTokenSource(src oauth2.TokenSource) Option {
	return func(c *Client) { c.source = src }
}

// WithLogger sets the client logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithDebug logs request and response bodies
func WithDebug(enabled bool) Option {
	return func(c *Client) { c.debug = enabled }
}

// NewClient creates a new API client for the server at baseURL
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: api url not configured", apierrors.ErrConfigurationError)
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("%w: invalid api url: %v", apierrors.ErrConfigurationError, err)
	}

	c := &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/") + BasePath,
		userAgent: "access-requests-cli",
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "api").Logger()

	if c.httpClient == nil {
		var transport http.RoundTripper = http.DefaultTransport
		if c.debug {
			transport = &debug.Transport{Transport: transport, Logger: c.logger}
		}
		if c.source != nil {
			transport = &oauth2.Transport{Source: c.source, Base: transport}
		}
		c.httpClient = &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		}
	}

	return c, nil
}

// BaseURL returns the API root including the RBAC prefix
func (c *Client) BaseURL() string {
	return c.baseURL
}

// envelope is the error shape any response may carry, including 2xx responses
type envelope struct {
	Errors []struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
		Status  any    `json:"status"`
	} `json:"errors"`
}

func (e envelope) details() []string {
	details := make([]string, 0, len(e.Errors))
	for _, item := range e.Errors {
		switch {
		case item.Detail != "":
			details = append(details, item.Detail)
		case item.Message != "":
			details = append(details, item.Message)
		}
	}
	return details
}

// call runs one request through the interceptor chain: build, send, map status,
// check the error envelope, decode into out.
func (c *Client) call(ctx context.Context, operation, resource, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return apierrors.WrapAPIError(operation, resource, fmt.Errorf("marshal body: %w", err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return apierrors.WrapAPIError(operation, resource, fmt.Errorf("create request: %w", err))
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.logger.With().Str("operation", operation).Str("request_id", requestID).Logger()
	log.Debug().Str("method", method).Str("url", endpoint).Msg("calling api")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Msg("api call failed")
		return apierrors.WrapAPIError(operation, resource, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apierrors.WrapAPIError(operation, resource, fmt.Errorf("read response: %w", err))
	}
	log.Debug().Int("status", resp.StatusCode).Int("bytes", len(data)).Msg("api responded")

	var env envelope
	if len(bytes.TrimSpace(data)) > 0 && bytes.TrimSpace(data)[0] == '{' {
		_ = json.Unmarshal(data, &env)
	}
	details := env.details()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(details) == 0 && len(data) > 0 && env.Errors == nil {
			details = []string{strings.TrimSpace(string(data))}
		}
		return apierrors.NewAPIError(operation, resource, resp.StatusCode, details)
	}

	if len(env.Errors) > 0 {
		return apierrors.NewAPIError(operation, resource, 0, details)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apierrors.WrapAPIError(operation, resource, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
