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
	"errors"
	"fmt"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"golang.org/x/term"

	"github.com/redhatinsights/access-requests-cli/internal/auth"
	"github.com/redhatinsights/access-requests-cli/internal/config"
	"github.com/redhatinsights/access-requests-cli/pkg/models"
)

const callbackPort = "45450"

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication operations",
		Long:  "Manage authentication with Red Hat SSO",
	}

	cmd.AddCommand(
		authLoginCmd(),
		authStatusCmd(),
		authLogoutCmd(),
	)

	return cmd
}

func authLoginCmd() *cobra.Command {
	var (
		refreshToken string
		web          bool
		skipBrowser  bool
	)

	cmd := &cobra.Command{
		Use:     "login",
		Aliases: []string{"signin"},
		Short:   "Authenticate with Red Hat SSO",
		Long: `Authenticate with Red Hat SSO. By default an offline token is read from the
terminal and refreshed as needed; --web signs in through the browser instead,
and the global --token stores a short-lived access token as is.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.GetConfig()

			var (
				access  string
				refresh string
			)

			switch {
			case apiToken != "":
				access = apiToken

			case web:
				tok, err := performWebLogin(ctx, cfg, skipBrowser)
				if err != nil {
					return fmt.Errorf("browser login failed: %w", err)
				}
				access, refresh = tok.AccessToken, tok.RefreshToken

			default:
				if refreshToken == "" {
					fmt.Print("Enter offline token: ")
					tokenBytes, err := term.ReadPassword(int(syscall.Stdin))
					if err != nil {
						return fmt.Errorf("failed to read token: %w", err)
					}
					fmt.Println()
					refreshToken = strings.TrimSpace(string(tokenBytes))
				}
				source, err := auth.TokenSource(ctx, auth.Credentials{
					RefreshToken: refreshToken,
					ClientID:     cfg.Auth.ClientID,
					TokenURL:     cfg.Auth.TokenURL,
				})
				if err != nil {
					return err
				}
				tok, err := source.Token()
				if err != nil {
					return fmt.Errorf("authentication failed: %w", err)
				}
				access = tok.AccessToken
				refresh = refreshToken
				if tok.RefreshToken != "" {
					refresh = tok.RefreshToken
				}
			}

			identity, err := auth.IdentityFromToken(access)
			if err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}

			if err := config.SetTokens(access, refresh); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			printAuthSuccessMessage(identity)
			return nil
		},
	}

	cmd.Flags().StringVar(&refreshToken, "refresh-token", "", "Offline token (use with caution)")
	cmd.Flags().BoolVar(&web, "web", false, "Sign in through the browser")
	cmd.Flags().BoolVar(&skipBrowser, "skip-browser", false, "With --web, print the URL instead of opening a browser")

	return cmd
}

func authStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Aliases: []string{"whoami"},
		Short:   "Check authentication status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.GetConfig()

			fmt.Printf("API Address: %s\n", cfg.API.URL)

			a, err := newApp(ctx)
			if err != nil {
				printFailedMessage("Not authenticated")
				return nil
			}
			tok, err := a.session.Source.Token()
			if err != nil {
				printFailedMessage("Not authenticated (%s)", err)
				return nil
			}
			if err := a.resolveIdentity(ctx); err != nil {
				printFailedMessage("Not authenticated (%s)", err)
				return nil
			}

			format := getEffectiveOutputFormat()
			if format == OutputFormatJSON || format == OutputFormatYAML {
				return formatOutput(a.identity, format)
			}

			printIdentity(a.identity, a.view)
			if !tok.Expiry.IsZero() {
				fmt.Printf("Token expires: %s\n", tok.Expiry.Local().Format(time.RFC1123))
			}
			printSuccessMessage("Authenticated")
			return nil
		},
	}
}

func authLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "logout",
		Aliases: []string{"signout"},
		Short:   "Clear stored authentication",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ClearTokens(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Println("Logged out successfully")
			return nil
		},
	}
}

// performWebLogin runs the authorization code flow with PKCE against the SSO realm
func performWebLogin(ctx context.Context, cfg *config.Config, skipBrowser bool) (*oauth2.Token, error) {
	oauthCfg := &oauth2.Config{
		ClientID:    cfg.Auth.ClientID,
		RedirectURL: fmt.Sprintf("http://localhost:%s/callback", callbackPort),
		Scopes:      []string{"openid", "offline_access"},
		Endpoint: oauth2.Endpoint{
			AuthURL:   cfg.Auth.AuthURL,
			TokenURL:  cfg.Auth.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	verifier := oauth2.GenerateVerifier()
	state := uuid.NewString()
	authURL := oauthCfg.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))

	var authCode string

	if !skipBrowser {
		server, resultCh := startCallbackServer(callbackPort)
		defer func() {
			_ = server.Shutdown(context.Background())
		}()

		fmt.Printf("Opening browser for Red Hat SSO...\n")
		if err := browser.OpenURL(authURL); err != nil {
			fmt.Printf("Failed to open browser: %v\n", err)
		}
		fmt.Printf("If the browser doesn't open automatically, visit: %s\n", authURL)
		fmt.Printf("Waiting for callback...\n")

		select {
		case result := <-resultCh:
			if result.Error != nil {
				return nil, result.Error
			}
			if result.State != state {
				return nil, errors.New("callback state does not match")
			}
			authCode = result.Code
		case <-time.After(5 * time.Minute):
			return nil, fmt.Errorf("authentication timed out")
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	} else {
		fmt.Printf("Visit this URL in your browser: %s\n", authURL)
		fmt.Print("Enter the authorization code from the callback URL: ")
		if _, err := fmt.Scanln(&authCode); err != nil {
			return nil, fmt.Errorf("failed to read authorization code: %w", err)
		}
	}

	if authCode == "" {
		return nil, fmt.Errorf("no authorization code received")
	}

	exchangeCtx := context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: 30 * time.Second})
	tok, err := oauthCfg.Exchange(exchangeCtx, authCode, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}
	logger.Debug().Bool("refresh_token", tok.RefreshToken != "").Time("expiry", tok.Expiry).Msg("token exchanged")
	return tok, nil
}

type callbackResult struct {
	Code  string
	State string
	Error error
}

func startCallbackServer(port string) (*http.Server, <-chan callbackResult) {
	resultCh := make(chan callbackResult, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if errorParam := query.Get("error"); errorParam != "" {
			msg := "SSO error: " + errorParam
			if desc := query.Get("error_description"); desc != "" {
				msg += " - " + desc
			}
			send(resultCh, callbackResult{Error: errors.New(msg)})
			w.WriteHeader(http.StatusBadRequest)
			_, _ = fmt.Fprintf(w, "<html><body><h1>Authentication Failed</h1><p>%s</p><p>You can close this window.</p></body></html>", msg)
			return
		}

		code := query.Get("code")
		if code == "" {
			send(resultCh, callbackResult{Error: fmt.Errorf("no authorization code received")})
			w.WriteHeader(http.StatusBadRequest)
			_, _ = fmt.Fprint(w, "<html><body><h1>Authentication Failed</h1><p>No authorization code received</p><p>You can close this window.</p></body></html>")
			return
		}

		send(resultCh, callbackResult{Code: code, State: query.Get("state")})
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, "<html><body><h1>Authentication Successful</h1><p>You can close this window and return to the CLI.</p></body></html>")
	})

	server := &http.Server{
		Addr:              "127.0.0.1:" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			send(resultCh, callbackResult{Error: fmt.Errorf("callback server error: %w", err)})
		}
	}()

	return server, resultCh
}

// send delivers the first result; later callbacks are dropped
func send(ch chan<- callbackResult, r callbackResult) {
	select {
	case ch <- r:
	default:
	}
}

// printAuthSuccessMessage prints authentication success with the resolved user
func printAuthSuccessMessage(identity *models.Identity) {
	name := identity.FullName()
	if name == "" {
		printSuccessMessage("Successfully authenticated")
		return
	}
	printSuccessMessage("Successfully authenticated as %s (%s view)", name, identity.DefaultView())
}

func printIdentity(identity *models.Identity, view models.View) {
	if identity.Username != "" {
		fmt.Printf("Authenticated as: %s\n", identity.Username)
	}
	if name := identity.FullName(); name != "" {
		fmt.Printf("Name: %s\n", name)
	}
	if identity.AccountNumber != "" {
		fmt.Printf("Account: %s\n", identity.AccountNumber)
	}
	if identity.OrgID != "" {
		fmt.Printf("Org ID: %s\n", identity.OrgID)
	}
	fmt.Printf("View: %s\n", view)
	if identity.IsOrgAdmin {
		fmt.Println("Organization administrator: yes")
	}
}
