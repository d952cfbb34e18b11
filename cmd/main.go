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
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/redhatinsights/access-requests-cli/internal/config"
	"github.com/redhatinsights/access-requests-cli/internal/logging"
)

var (
	// Version information set by ldflags during build
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"

	apiURL       string
	apiToken     string
	outputFormat string
	viewFlag     string
	logLevel     string
	debugHTTP    bool

	logger = zerolog.Nop()

	rootCmd = &cobra.Command{
		Use:   "access-requests",
		Short: "CLI for Red Hat cross-account access requests",
		Long: `access-requests lets Red Hat support staff request time-limited read access
to customer accounts, and lets customers review, approve, or deny those requests.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.New(logLevel, debugHTTP)
			if err := config.Init(); err != nil {
				logger.Error().Err(err).Msg("failed to initialize config")
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Console API address (default from config)")
	rootCmd.PersistentFlags().StringVarP(&apiToken, "token", "t", "", "Access token, overrides stored credentials")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "Output format (table, json, yaml)")
	rootCmd.PersistentFlags().StringVar(&viewFlag, "view", "", "Force the internal or external view")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&debugHTTP, "debug", false, "Log HTTP requests and responses")

	rootCmd.AddCommand(
		requestsCmd(),
		rolesCmd(),
		authCmd(),
		configCmd(),
		versionCmd(),
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("access-requests %s\n", Version)
			fmt.Printf("Commit: %s\n", CommitHash)
			fmt.Printf("Built: %s\n", BuildDate)
		},
	}
}
