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
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/redhatinsights/access-requests-cli/internal/catalog"
	"github.com/redhatinsights/access-requests-cli/internal/config"
	"github.com/redhatinsights/access-requests-cli/internal/listing"
	"github.com/redhatinsights/access-requests-cli/internal/table"
	"github.com/redhatinsights/access-requests-cli/pkg/models"
)

func rolesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "roles",
		Aliases: []string{"role"},
		Short:   "Browse the role catalog",
		Long:    "List the roles that can be included in an access request and the permissions they grant",
	}

	cmd.AddCommand(
		rolesListCmd(),
		rolesShowCmd(),
		rolesAppsCmd(),
	)

	return cmd
}

func rolesListCmd() *cobra.Command {
	var (
		page    int
		perPage int
		sortBy  string
		desc    bool
		filter  string
		apps    []string
		system  bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls", "l"},
		Short:   "List roles",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			a.catalog = catalog.New(a.client, catalog.WithSystem(system), catalog.WithLogger(logger))

			key, err := listing.SortKey(listing.RoleColumns(), sortBy)
			if err != nil {
				return err
			}
			q := listing.NewQuery(key, desc)
			q.Page = page
			q.PerPage = perPage
			if q.PerPage == 0 {
				q.PerPage = config.GetConfig().Defaults.PageSize
			}
			q.Text = filter
			q.Applications = apps

			pipeline := listing.New[*models.Role](ctx, listing.RoleFetcher(a.catalog), q, listing.Options{Logger: logger})
			defer pipeline.Close()
			pipeline.Refetch()
			if err := pipeline.Settle(ctx); err != nil {
				return err
			}
			state := pipeline.Snapshot()
			if state.Err != nil {
				return a.fail("Could not load roles", state.Err)
			}

			format := getEffectiveOutputFormat()
			if format == OutputFormatJSON || format == OutputFormatYAML {
				return formatOutput(state.Rows, format)
			}

			if empty := listing.SelectRoleEmptyState(len(state.Rows), state.FiltersDirty); empty.Kind != listing.EmptyNone {
				printEmptyState(empty, "--filter and --app")
				return nil
			}

			cols := listing.RoleColumns()
			rows := make([]table.Row, 0, len(state.Rows))
			for _, r := range state.Rows {
				rows = append(rows, listing.Cells(cols, r))
			}
			first, last := listing.Range(state.Query, len(state.Rows), state.TotalCount)
			return table.Render(tableOut(), table.Options{
				Headers: listing.Headers(cols),
				SortBy:  -1,
				GroupBy: -1,
				Footer: []string{fmt.Sprintf("%d-%d of %d (page %d of %d)", first, last, state.TotalCount,
					state.Query.Page, listing.PageCount(state.TotalCount, state.Query.Limit()))},
			}, rows)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "Rows per page (default from config)")
	cmd.Flags().StringVar(&sortBy, "sort", listing.RoleSortName, "Sort column ("+strings.Join(listing.RoleSortKeys, ", ")+")")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	cmd.Flags().StringVar(&filter, "filter", "", "Filter by role name")
	cmd.Flags().StringSliceVar(&apps, "app", nil, "Filter by application (repeatable)")
	cmd.Flags().BoolVar(&system, "system", false, "Only system roles")

	return cmd
}

// roleDetail is the json/yaml shape of an expanded role
type roleDetail struct {
	UUID         string   `json:"uuid" yaml:"uuid"`
	DisplayName  string   `json:"display_name" yaml:"display_name"`
	Description  string   `json:"description" yaml:"description"`
	Applications []string `json:"applications" yaml:"applications"`
	Permissions  []string `json:"permissions" yaml:"permissions"`
}

func rolesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show [role-name-or-uuid]",
		Aliases: []string{"get", "describe"},
		Short:   "Show the permissions a role grants",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}

			role, ok, err := a.catalog.Lookup(ctx, args[0])
			if err != nil {
				return a.fail("Could not load roles", err)
			}
			if !ok {
				return fmt.Errorf("role %q not found", args[0])
			}
			if err := a.catalog.Expand(ctx, role); err != nil {
				return a.fail("Could not load role permissions", err)
			}

			format := getEffectiveOutputFormat()
			if format == OutputFormatJSON || format == OutputFormatYAML {
				permissions := make([]string, len(role.AccessEntries))
				for i, e := range role.AccessEntries {
					permissions[i] = e.String()
				}
				return formatOutput(roleDetail{
					UUID:         role.UUID,
					DisplayName:  role.DisplayName,
					Description:  role.Description,
					Applications: role.Applications,
					Permissions:  permissions,
				}, format)
			}

			fmt.Printf("%s\n", role.DisplayName)
			if role.Description != "" {
				fmt.Println(role.Description)
			}
			fmt.Println()

			rows := make([]table.Row, 0, len(role.AccessEntries))
			for _, e := range role.AccessEntries {
				rows = append(rows, table.Row{e.Application, e.ResourceType, e.Operation})
			}
			if len(rows) == 0 {
				fmt.Println("This role grants no permissions")
				return nil
			}
			return table.Render(tableOut(), table.Options{
				Headers: []string{"Application", "Resource type", "Operation"},
				SortBy:  0,
				GroupBy: 0,
			}, rows)
		},
	}
}

func rolesAppsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "apps",
		Aliases: []string{"applications"},
		Short:   "List the applications roles grant access to",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}

			apps, err := a.catalog.Applications(ctx)
			if err != nil {
				return a.fail("Could not load roles", err)
			}

			format := getEffectiveOutputFormat()
			if format == OutputFormatJSON || format == OutputFormatYAML {
				return formatOutput(apps, format)
			}
			for _, app := range apps {
				fmt.Println(app)
			}
			return nil
		},
	}
}
