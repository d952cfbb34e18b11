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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/redhatinsights/access-requests-cli/internal/api"
	"github.com/redhatinsights/access-requests-cli/internal/auth"
	"github.com/redhatinsights/access-requests-cli/internal/catalog"
	"github.com/redhatinsights/access-requests-cli/internal/config"
	"github.com/redhatinsights/access-requests-cli/internal/listing"
	"github.com/redhatinsights/access-requests-cli/internal/notify"
	apierrors "github.com/redhatinsights/access-requests-cli/pkg/errors"
	"github.com/redhatinsights/access-requests-cli/pkg/models"
)

// Output formats
const (
	OutputFormatJSON  = "json"
	OutputFormatYAML  = "yaml"
	OutputFormatTable = "table"
)

// getEffectiveOutputFormat returns the output format to use, checking flag -> config -> default
func getEffectiveOutputFormat() string {
	if outputFormat != "" {
		return outputFormat
	}
	cfg := config.GetConfig()
	if cfg.Defaults.OutputFormat != "" {
		return cfg.Defaults.OutputFormat
	}
	return OutputFormatTable
}

// formatOutput handles the common output formatting logic used across commands
func formatOutput(data any, format string) error {
	switch format {
	case OutputFormatJSON:
		jsonData, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal to JSON: %w", err)
		}
		fmt.Println(string(jsonData))

	case OutputFormatYAML:
		yamlData, err := yaml.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal to YAML: %w", err)
		}
		fmt.Print(string(yamlData))

	default:
		return fmt.Errorf("unsupported output format for generic data: %s", format)
	}
	return nil
}

// app bundles the collaborators a command needs
type app struct {
	client   *api.Client
	session  *auth.Session
	notes    *notify.Store
	catalog  *catalog.Catalog
	identity *models.Identity
	view     models.View
}

// newApp builds the API client from flags and config. Identity is resolved lazily.
func newApp(ctx context.Context) (*app, error) {
	cfg := config.GetConfig()

	creds := auth.Credentials{
		AccessToken:  cfg.API.Token,
		RefreshToken: cfg.API.RefreshToken,
		ClientID:     cfg.Auth.ClientID,
		TokenURL:     cfg.Auth.TokenURL,
	}
	// Command-line flags override config and env vars
	if apiToken != "" {
		creds = auth.Credentials{AccessToken: apiToken}
	}

	source, err := auth.TokenSource(ctx, creds)
	if err != nil {
		if apierrors.Is(err, apierrors.ErrNotAuthenticated) {
			return nil, fmt.Errorf("%w. Run 'access-requests auth login' or pass --token", err)
		}
		return nil, err
	}

	baseURL := cfg.API.URL
	if apiURL != "" {
		baseURL = apiURL
	}

	client, err := api.NewClient(baseURL,
		api.WithTokenSource(source),
		api.WithLogger(logger),
		api.WithDebug(debugHTTP),
		api.WithUserAgent("access-requests-cli/"+Version),
	)
	if err != nil {
		return nil, wrapError("create api client", err)
	}

	return &app{
		client:  client,
		session: &auth.Session{Source: source},
		notes:   notify.NewStore(),
		catalog: catalog.New(client, catalog.WithLogger(logger)),
	}, nil
}

// resolveIdentity loads the signed-in user and picks the view: flag, then config, then identity
func (a *app) resolveIdentity(ctx context.Context) error {
	if a.identity != nil {
		return nil
	}
	identity, err := a.session.CurrentUser(ctx)
	if err != nil {
		return wrapError("resolve current user", err)
	}
	view, err := resolveView(viewFlag, config.GetConfig().Defaults.View, identity)
	if err != nil {
		return err
	}
	a.identity = identity
	a.view = view
	logger.Debug().Str("user", identity.Username).Str("view", string(view)).Msg("resolved identity")
	return nil
}

func resolveView(flag, configured string, identity *models.Identity) (models.View, error) {
	for _, v := range []string{flag, configured} {
		if v != "" {
			return models.ParseView(v)
		}
	}
	return identity.DefaultView(), nil
}

func (a *app) scope() listing.Scope {
	return listing.Scope{
		View:       a.view,
		IsOrgAdmin: a.identity != nil && a.identity.IsOrgAdmin,
		Bundle:     config.GetConfig().Defaults.Bundle,
	}
}

// fail routes err through the notification store, prints what it produced and
// returns an error for cobra
func (a *app) fail(title string, err error) error {
	if !a.notes.Capture(title, err) {
		return nil
	}
	if a.flush() {
		return err
	}
	return errors.New(title)
}

// flush prints the blocking view or pending notifications. It reports whether
// the blocking view was shown.
func (a *app) flush() bool {
	if code, blocked := a.notes.Blocking(); blocked {
		printBlockingView(code)
		a.notes.ClearBlocking()
		a.notes.Clear()
		return true
	}
	printNotifications(a.notes)
	return false
}

// printNotifications drains the store to stderr
func printNotifications(notes *notify.Store) {
	for _, n := range notes.Drain() {
		var paint func(format string, a ...any) string
		switch n.Variant {
		case notify.Success:
			paint = color.GreenString
		case notify.Danger:
			paint = color.RedString
		case notify.Warning:
			paint = color.YellowString
		default:
			paint = color.CyanString
		}
		line := paint("%s", n.Title)
		if n.Description != "" {
			line += ": " + n.Description
		}
		fmt.Fprintln(os.Stderr, line)
	}
}

// printBlockingView replaces normal output when the backend refused access outright
func printBlockingView(code int) {
	switch code {
	case http.StatusForbidden:
		color.Red("You do not have access to Access Requests")
		fmt.Fprintln(os.Stderr, "Contact your organization administrator(s) for more information.")
	default:
		color.Red("Access Requests is currently unavailable")
		fmt.Fprintln(os.Stderr, "The service returned an unexpected error. Try again later.")
	}
}

// isInteractiveMode determines if we should use interactive mode based on flags and TTY
func isInteractiveMode(interactive bool, hasArgs bool, hasRequiredFlags bool) bool {
	return interactive || (!hasArgs && !hasRequiredFlags && term.IsTerminal(int(os.Stdin.Fd())))
}

// printSuccessMessage prints a success message with green checkmark
func printSuccessMessage(message string, args ...any) {
	color.Green("✓ "+message, args...)
}

// printFailedMessage prints a failure message with a red cross
func printFailedMessage(message string, args ...any) {
	color.Red("× "+message, args...)
}

// formatRequestStatus returns a colored string representation of request status
func formatRequestStatus(status models.Status) string {
	label := status.String()
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	switch status {
	case models.Pending:
		return color.YellowString(label)
	case models.Approved:
		return color.GreenString(label)
	case models.Denied:
		return color.RedString(label)
	case models.Cancelled, models.Expired:
		return color.HiBlackString(label)
	default:
		return color.WhiteString(label)
	}
}

// tableOut is where tables are rendered
func tableOut() io.Writer {
	return color.Output
}

// wrapError wraps an error with context information
func wrapError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to %s: %w", operation, err)
}
