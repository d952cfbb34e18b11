// Copyright (C) 2026 Ioannis Torakis <john.torakis@gmail.com>
// SPDX-License-Identifier: Elastic-2.0
//
// Licensed under the Elastic License 2.0.
// You may obtain a copy of the license at:
// https://www.elastic.co/licensing/elastic-license
//
// Use, modification, and redistribution permitted under the terms of the license,
// except for providing this software as a commercial service or product.

// Package auth provides the session token and the identity of the caller.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	apierrors "github.com/redhatinsights/access-requests-cli/pkg/errors"
	"github.com/redhatinsights/access-requests-cli/pkg/models"
)

// Credentials describe how to obtain an access token
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ClientID     string
	TokenURL     string
}

// TokenSource returns a source that refreshes the access token from the offline
// refresh token when one is configured, or serves a static access token otherwise.
func TokenSource(ctx context.Context, creds Credentials) (oauth2.TokenSource, error) {
	switch {
	case creds.RefreshToken != "":
		if creds.TokenURL == "" || creds.ClientID == "" {
			return nil, fmt.Errorf("%w: token url and client id are required for refresh tokens", apierrors.ErrConfigurationError)
		}
		cfg := &oauth2.Config{
			ClientID: creds.ClientID,
			Endpoint: oauth2.Endpoint{TokenURL: creds.TokenURL, AuthStyle: oauth2.AuthStyleInParams},
		}
		seed := &oauth2.Token{RefreshToken: creds.RefreshToken}
		// A stored access token is reused only until its exp claim; one without a
		// readable expiry is dropped so the first call refreshes.
		if exp, ok := tokenExpiry(creds.AccessToken); ok {
			seed.AccessToken = strings.TrimSpace(creds.AccessToken)
			seed.Expiry = exp
		}
		return oauth2.ReuseTokenSource(nil, cfg.TokenSource(ctx, seed)), nil
	case creds.AccessToken != "":
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: strings.TrimSpace(creds.AccessToken)}), nil
	}
	return nil, apierrors.ErrNotAuthenticated
}

// tokenExpiry reads the exp claim of an unverified JWT
func tokenExpiry(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	var c jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &c); err != nil {
		return time.Time{}, false
	}
	exp, err := c.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// claims are the identity claims carried by the session token
type claims struct {
	jwt.RegisteredClaims
	Username      string `json:"preferred_username"`
	Email         string `json:"email"`
	FirstName     string `json:"given_name"`
	LastName      string `json:"family_name"`
	AccountNumber string `json:"account_number"`
	OrgID         string `json:"org_id"`
	IsInternal    bool   `json:"is_internal"`
	IsOrgAdmin    bool   `json:"is_org_admin"`
}

// IdentityFromToken decodes the caller's identity from a session token. The
// signature is not verified here; the backend verifies it on every call.
func IdentityFromToken(raw string) (*models.Identity, error) {
	var c claims
	if _, _, err := jwt.NewParser().ParseUnverified(strings.TrimSpace(raw), &c); err != nil {
		return nil, fmt.Errorf("failed to decode session token: %w", err)
	}

	username := c.Username
	if username == "" {
		username = c.Subject
	}
	return &models.Identity{
		Username:      username,
		Email:         c.Email,
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		AccountNumber: c.AccountNumber,
		OrgID:         c.OrgID,
		IsInternal:    c.IsInternal,
		IsOrgAdmin:    c.IsOrgAdmin,
	}, nil
}

// Session resolves the current user from a token source
type Session struct {
	Source oauth2.TokenSource
}

// CurrentUser returns the identity behind the current access token
func (s *Session) CurrentUser(ctx context.Context) (*models.Identity, error) {
	if s == nil || s.Source == nil {
		return nil, apierrors.ErrNotAuthenticated
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tok, err := s.Source.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apierrors.ErrUnauthorized, err)
	}
	return IdentityFromToken(tok.AccessToken)
}
