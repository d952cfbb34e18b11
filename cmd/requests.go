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
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/manifoldco/promptui"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/redhatinsights/access-requests-cli/internal/config"
	"github.com/redhatinsights/access-requests-cli/internal/daterange"
	"github.com/redhatinsights/access-requests-cli/internal/listing"
	"github.com/redhatinsights/access-requests-cli/internal/table"
	apierrors "github.com/redhatinsights/access-requests-cli/pkg/errors"
	"github.com/redhatinsights/access-requests-cli/pkg/models"
)

func requestsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "requests",
		Aliases: []string{"request", "req", "r"},
		Short:   "Manage access requests",
		Long:    "List, create, edit and act on cross-account access requests",
	}

	cmd.AddCommand(
		requestListCmd(),
		requestBrowseCmd(),
		requestShowCmd(),
		requestOpenCmd(),
		requestCreateCmd(),
		requestEditCmd(),
		requestRenewCmd(),
		requestStatusCmd(models.Cancelled, "cancel", []string{"withdraw"}),
		requestStatusCmd(models.Approved, "approve", []string{"a"}),
		requestStatusCmd(models.Denied, "deny", []string{"reject"}),
	)

	return cmd
}

type listFlags struct {
	page     int
	perPage  int
	sortBy   string
	asc      bool
	statuses []string
	account  string
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.page, "page", 1, "Page number")
	cmd.Flags().IntVar(&f.perPage, "per-page", 0, "Rows per page (default from config)")
	cmd.Flags().StringVar(&f.sortBy, "sort", listing.DefaultRequestSort, "Sort column")
	cmd.Flags().BoolVar(&f.asc, "asc", false, "Sort ascending (default is descending)")
	cmd.Flags().StringSliceVar(&f.statuses, "status", nil, "Filter by status (repeatable: pending, approved, denied, cancelled, expired)")
	cmd.Flags().StringVar(&f.account, "account", "", "Filter by account number")
}

func (f *listFlags) query(view models.View) (listing.Query, error) {
	key, err := listing.SortKey(listing.RequestColumns(view), f.sortBy)
	if err != nil {
		return listing.Query{}, err
	}

	q := listing.NewQuery(key, !f.asc)
	q.Page = f.page
	q.PerPage = f.perPage
	if q.PerPage == 0 {
		q.PerPage = config.GetConfig().Defaults.PageSize
	}
	q.Text = f.account

	for _, s := range f.statuses {
		status, err := models.ParseStatus(strings.ToLower(strings.TrimSpace(s)))
		if err != nil {
			return listing.Query{}, err
		}
		q.Statuses = append(q.Statuses, status)
	}
	return q, nil
}

func requestListCmd() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls", "l"},
		Short:   "List access requests",
		Long:    "List one page of access requests. Staff see the requests they created; customers see requests for their organization.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			if err := a.resolveIdentity(ctx); err != nil {
				return err
			}

			q, err := flags.query(a.view)
			if err != nil {
				return err
			}

			pipeline := newRequestPipeline(ctx, a, q)
			defer pipeline.Close()
			pipeline.Refetch()
			if err := pipeline.Settle(ctx); err != nil {
				return err
			}

			state := pipeline.Snapshot()
			if state.Err != nil {
				return a.fail("Could not load access requests", state.Err)
			}
			return renderRequestPage(a.view, state)
		},
	}

	flags.register(cmd)
	return cmd
}

func newRequestPipeline(ctx context.Context, a *app, q listing.Query) *listing.Pipeline[models.AccessRequest] {
	return listing.New[models.AccessRequest](ctx, listing.RequestFetcher(a.client, a.scope()), q, listing.Options{Logger: logger})
}

// requestPage is the json/yaml shape of a listed page
type requestPage struct {
	Meta models.Meta            `json:"meta" yaml:"meta"`
	Data []models.AccessRequest `json:"data" yaml:"data"`
}

func renderRequestPage(view models.View, state listing.State[models.AccessRequest]) error {
	format := getEffectiveOutputFormat()
	if format == OutputFormatJSON || format == OutputFormatYAML {
		return formatOutput(requestPage{
			Meta: models.Meta{Count: state.TotalCount, Limit: state.Query.Limit(), Offset: state.Query.Offset()},
			Data: state.Rows,
		}, format)
	}

	if empty := listing.SelectEmptyState(len(state.Rows), state.FiltersDirty, view); empty.Kind != listing.EmptyNone {
		printEmptyState(empty, "--status and --account")
		return nil
	}

	cols := listing.RequestColumns(view)
	rows := make([]table.Row, 0, len(state.Rows))
	for _, r := range state.Rows {
		cells := listing.Cells(cols, r)
		cells[len(cells)-1] = formatRequestStatus(r.Status)
		rows = append(rows, cells)
	}

	first, last := listing.Range(state.Query, len(state.Rows), state.TotalCount)
	return table.Render(tableOut(), table.Options{
		Headers: listing.Headers(cols),
		SortBy:  -1,
		GroupBy: -1,
		Footer: []string{fmt.Sprintf("%d-%d of %d (page %d of %d)", first, last, state.TotalCount,
			state.Query.Page, listing.PageCount(state.TotalCount, state.Query.Limit()))},
	}, rows)
}

func printEmptyState(empty listing.EmptyState, filterFlags string) {
	fmt.Println(empty.Title)
	fmt.Println(empty.Body)
	switch empty.Action {
	case listing.ActionCreate:
		fmt.Println("Run 'access-requests requests create' to create one.")
	case listing.ActionClearFilters:
		fmt.Printf("%s: drop %s.\n", listing.ActionClearFilters, filterFlags)
	}
}

func requestShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show [request-id]",
		Aliases: []string{"get", "describe"},
		Short:   "Show an access request",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			if err := a.resolveIdentity(ctx); err != nil {
				return err
			}

			req, err := a.client.GetRequest(ctx, args[0], a.scope().QueryBy())
			if err != nil {
				return a.fail("Could not load access request", err)
			}

			format := getEffectiveOutputFormat()
			if format == OutputFormatJSON || format == OutputFormatYAML {
				return formatOutput(req, format)
			}
			return printRequest(a.view, req)
		},
	}
}

func printRequest(view models.View, req *models.AccessRequest) error {
	fmt.Printf("Request ID:   %s\n", req.RequestID)
	if view == models.External {
		fmt.Printf("Requested by: %s\n", req.RequesterName())
	} else {
		fmt.Printf("Account:      %s\n", req.TargetAccount)
		fmt.Printf("Org ID:       %s\n", req.TargetOrg)
	}
	fmt.Printf("Access:       %s - %s\n", daterange.FromISO(req.StartDate), daterange.FromISO(req.EndDate))
	if !req.Created.IsZero() {
		fmt.Printf("Created:      %s\n", req.Created.Local().Format("02 Jan 2006 15:04"))
	}
	fmt.Printf("Status:       %s\n", formatRequestStatus(req.Status))

	if next := models.AllowedTransitions(view, req.Status); len(next) > 0 {
		verbs := make([]string, len(next))
		for i, s := range next {
			verbs[i] = statusVerbs[s]
		}
		fmt.Printf("Actions:      %s\n", strings.Join(verbs, ", "))
	}

	if len(req.Roles) == 0 {
		return nil
	}
	fmt.Println()
	rows := make([]table.Row, 0, len(req.Roles))
	for _, r := range req.Roles {
		rows = append(rows, table.Row{r.DisplayName, r.Description, strings.Join(r.Applications, ", ")})
	}
	return table.Render(tableOut(), table.Options{
		Headers: []string{"Role", "Description", "Applications"},
		SortBy:  0,
		GroupBy: -1,
	}, rows)
}

func requestOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open [request-id]",
		Short: "Open an access request in the browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			if err := a.resolveIdentity(ctx); err != nil {
				return err
			}

			link := consoleURL(a.view, args[0])
			fmt.Printf("Opening %s\n", link)
			if err := browser.OpenURL(link); err != nil {
				fmt.Printf("Failed to open browser: %v\n", err)
				fmt.Printf("Please visit the URL manually: %s\n", link)
			}
			return nil
		},
	}
}

func consoleURL(view models.View, id string) string {
	base := config.GetConfig().API.URL
	if apiURL != "" {
		base = apiURL
	}
	base = strings.TrimRight(base, "/")
	if view == models.External {
		return base + "/iam/user-access/access-requests/" + id
	}
	return base + "/internal/access-requests/" + id
}

var statusVerbs = map[models.Status]string{
	models.Cancelled: "cancel",
	models.Approved:  "approve",
	models.Denied:    "deny",
}

func requestStatusCmd(target models.Status, verb string, aliases []string) *cobra.Command {
	var (
		yes         bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:     verb + " [request-id]",
		Aliases: aliases,
		Short:   fmt.Sprintf("%s a pending access request", strings.ToUpper(verb[:1])+verb[1:]),
		Long: fmt.Sprintf("%s a pending access request. The status shown afterwards is the one the server accepted. "+
			"Without an id and on a terminal, pick from pending requests.", strings.ToUpper(verb[:1])+verb[1:]),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			if err := a.resolveIdentity(ctx); err != nil {
				return err
			}

			var id string
			if isInteractiveMode(interactive, len(args) > 0, false) {
				id, err = selectPendingRequest(ctx, a, verb)
				if err != nil {
					return err
				}
				if id == "" {
					return nil
				}
			} else {
				if len(args) != 1 {
					return fmt.Errorf("request id is required in non-interactive mode")
				}
				id = args[0]
			}

			return changeStatus(ctx, a, id, target, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Interactive mode")

	return cmd
}

// changeStatus proposes a transition and reports the status the server confirmed
func changeStatus(ctx context.Context, a *app, id string, target models.Status, skipConfirm bool) error {
	verb := statusVerbs[target]

	current, err := a.client.GetRequest(ctx, id, a.scope().QueryBy())
	if err != nil {
		return a.fail("Could not load access request", err)
	}
	if !models.CanTransition(a.view, current.Status, target) {
		return fmt.Errorf("%w: cannot %s a %s request from the %s view", apierrors.ErrInvalidTransition, verb, current.Status, a.view)
	}

	if !skipConfirm && isInteractiveMode(false, false, false) {
		confirm := promptui.Prompt{
			Label:     fmt.Sprintf("%s request %s", strings.ToUpper(verb[:1])+verb[1:], describeRequest(a.view, current)),
			IsConfirm: true,
		}
		if _, err := confirm.Run(); err != nil {
			fmt.Println("Nothing changed")
			return nil
		}
	}

	updated, err := a.client.UpdateStatus(ctx, id, target)
	if err != nil {
		return a.fail(fmt.Sprintf("Could not %s access request", verb), err)
	}

	if updated.Status != target {
		printFailedMessage("Request %s is %s; the server did not accept %s", id, updated.Status, target)
		return nil
	}
	printSuccessMessage("Request %s is now %s", id, updated.Status)
	return nil
}

func describeRequest(view models.View, r *models.AccessRequest) string {
	dates := daterange.FromISO(r.StartDate) + " - " + daterange.FromISO(r.EndDate)
	if view == models.External {
		return fmt.Sprintf("%s from %s (%s)", r.RequestID, r.RequesterName(), dates)
	}
	return fmt.Sprintf("%s for account %s (%s)", r.RequestID, r.TargetAccount, dates)
}

// selectPendingRequest lets the user pick one of the first pending requests
func selectPendingRequest(ctx context.Context, a *app, verb string) (string, error) {
	q := listing.NewQuery(listing.DefaultRequestSort, true)
	q.PerPage = 100
	q.Statuses = []models.Status{models.Pending}

	pipeline := newRequestPipeline(ctx, a, q)
	defer pipeline.Close()
	pipeline.Refetch()
	if err := pipeline.Settle(ctx); err != nil {
		return "", err
	}
	state := pipeline.Snapshot()
	if state.Err != nil {
		return "", a.fail("Could not load access requests", state.Err)
	}

	if len(state.Rows) == 0 {
		printSuccessMessage("All caught up! No pending requests to %s.", verb)
		return "", nil
	}

	items := make([]string, len(state.Rows))
	for i := range state.Rows {
		items[i] = describeRequest(a.view, &state.Rows[i])
	}

	prompt := promptui.Select{
		Label:             fmt.Sprintf("Select request to %s", verb),
		Items:             items,
		Size:              10,
		StartInSearchMode: len(items) > 10,
		Searcher: func(input string, index int) bool {
			return fuzzy.MatchNormalizedFold(input, items[index])
		},
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}?",
			Active:   "▸ {{ . | cyan }}",
			Inactive: "  {{ . }}",
			Selected: "✓ {{ . | green }}",
		},
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("request selection cancelled: %w", err)
	}
	return state.Rows[idx].RequestID, nil
}
