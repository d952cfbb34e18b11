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
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/redhatinsights/access-requests-cli/internal/listing"
	apierrors "github.com/redhatinsights/access-requests-cli/pkg/errors"
	"github.com/redhatinsights/access-requests-cli/pkg/models"
)

// Browse actions
const (
	actionNext    = "Next page"
	actionPrev    = "Previous page"
	actionView    = "View request"
	actionAct     = "Act on a request"
	actionSort    = "Sort"
	actionStatus  = "Filter by status"
	actionAccount = "Filter by account number"
	actionRefresh = "Refresh"
	actionQuit    = "Quit"
)

func requestBrowseCmd() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Page, sort and filter access requests interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isInteractiveMode(false, false, false) {
				return fmt.Errorf("browse needs a terminal; use 'requests list' instead")
			}

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

			return browseLoop(ctx, a, pipeline)
		},
	}

	flags.register(cmd)
	return cmd
}

func browseLoop(ctx context.Context, a *app, p *listing.Pipeline[models.AccessRequest]) error {
	for {
		if err := p.Settle(ctx); err != nil {
			return err
		}
		state := p.Snapshot()

		if state.Err != nil {
			err := a.fail("Could not load access requests", state.Err)
			// authorization and server failures end the session
			if apierrors.Is(state.Err, apierrors.ErrForbidden) || apierrors.Is(state.Err, apierrors.ErrServer) {
				return err
			}
		} else if err := renderBrowsePage(a.view, state); err != nil {
			return err
		}

		actions := browseActions(a.view, state)
		sel := promptui.Select{Label: "Action", Items: actions, Size: len(actions)}
		_, action, err := sel.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return err
		}

		switch action {
		case actionNext:
			p.SetPage(state.Query.Page + 1)
		case actionPrev:
			p.SetPage(state.Query.Page - 1)
		case actionRefresh:
			p.Refetch()
		case actionSort:
			if err := promptSort(a.view, p); err != nil {
				fmt.Println(err)
			}
		case actionStatus:
			if err := promptStatuses(p); err != nil {
				fmt.Println(err)
			}
		case actionAccount:
			text, err := (&promptui.Prompt{Label: "Account number (empty for all)", Default: state.Query.Text, AllowEdit: true}).Run()
			if err == nil {
				p.SetText(text)
			}
		case listing.ActionClearFilters:
			p.ClearFilters()
		case actionView:
			if r, ok := pickRow(a.view, state.Rows); ok {
				if err := printRequest(a.view, &r); err != nil {
					return err
				}
			}
		case actionAct:
			if r, ok := pickRow(a.view, state.Rows); ok {
				if acted := actOnRequest(ctx, a, &r); acted {
					p.Refetch()
				}
			}
		case listing.ActionCreate:
			refresh, err := runInteractiveWizard(ctx, a)
			if err != nil {
				fmt.Println(err)
			}
			if refresh {
				p.Refetch()
			}
		case actionQuit:
			return nil
		}
	}
}

func renderBrowsePage(view models.View, state listing.State[models.AccessRequest]) error {
	if empty := listing.SelectEmptyState(len(state.Rows), state.FiltersDirty, view); empty.Kind != listing.EmptyNone {
		fmt.Println(empty.Title)
		fmt.Println(empty.Body)
		return nil
	}
	return renderRequestPage(view, state)
}

func browseActions(view models.View, state listing.State[models.AccessRequest]) []string {
	var actions []string
	if state.Query.Page < listing.PageCount(state.TotalCount, state.Query.Limit()) {
		actions = append(actions, actionNext)
	}
	if state.Query.Page > 1 {
		actions = append(actions, actionPrev)
	}
	if len(state.Rows) > 0 {
		actions = append(actions, actionView)
		for _, r := range state.Rows {
			if len(models.AllowedTransitions(view, r.Status)) > 0 {
				actions = append(actions, actionAct)
				break
			}
		}
	}
	actions = append(actions, actionSort, actionStatus, actionAccount)

	empty := listing.SelectEmptyState(len(state.Rows), state.FiltersDirty, view)
	if empty.Action != "" {
		actions = append(actions, empty.Action)
	} else if state.FiltersDirty {
		actions = append(actions, listing.ActionClearFilters)
	}
	if view == models.Internal && empty.Action != listing.ActionCreate {
		actions = append(actions, listing.ActionCreate)
	}
	return append(actions, actionRefresh, actionQuit)
}

func promptSort(view models.View, p *listing.Pipeline[models.AccessRequest]) error {
	cols := listing.RequestColumns(view)
	var keys, labels []string
	for _, c := range cols {
		if c.Sortable {
			keys = append(keys, c.Key)
			labels = append(labels, c.Header)
		}
	}

	idx, _, err := (&promptui.Select{Label: "Sort by", Items: labels, Size: len(labels)}).Run()
	if err != nil {
		return fmt.Errorf("sort cancelled")
	}
	dir, _, err := (&promptui.Select{Label: "Direction", Items: []string{"Descending", "Ascending"}}).Run()
	if err != nil {
		return fmt.Errorf("sort cancelled")
	}
	p.SetSort(keys[idx], dir == 0)
	return nil
}

const doneLabel = "Done"

func promptStatuses(p *listing.Pipeline[models.AccessRequest]) error {
	selected := map[models.Status]bool{}
	for _, s := range p.Query().Statuses {
		selected[s] = true
	}

	for {
		items := make([]string, 0, len(models.AllStatuses)+1)
		for _, s := range models.AllStatuses {
			mark := "[ ]"
			if selected[s] {
				mark = "[x]"
			}
			items = append(items, mark+" "+s.String())
		}
		items = append(items, doneLabel)

		idx, _, err := (&promptui.Select{Label: "Toggle statuses", Items: items, Size: len(items)}).Run()
		if err != nil {
			return fmt.Errorf("status filter cancelled")
		}
		if idx == len(models.AllStatuses) {
			break
		}
		s := models.AllStatuses[idx]
		selected[s] = !selected[s]
	}

	var statuses []models.Status
	for _, s := range models.AllStatuses {
		if selected[s] {
			statuses = append(statuses, s)
		}
	}
	p.SetStatuses(statuses...)
	return nil
}

func pickRow(view models.View, rows []models.AccessRequest) (models.AccessRequest, bool) {
	items := make([]string, len(rows))
	for i := range rows {
		items[i] = describeRequest(view, &rows[i])
	}
	idx, _, err := (&promptui.Select{Label: "Request", Items: items, Size: 10}).Run()
	if err != nil {
		return models.AccessRequest{}, false
	}
	return rows[idx], true
}

// actOnRequest offers the transitions the view allows and reports whether one was sent
func actOnRequest(ctx context.Context, a *app, r *models.AccessRequest) bool {
	next := models.AllowedTransitions(a.view, r.Status)
	if len(next) == 0 {
		fmt.Printf("Request %s is %s; no actions are available\n", r.RequestID, r.Status)
		return false
	}

	labels := make([]string, len(next))
	for i, s := range next {
		labels[i] = strings.ToUpper(statusVerbs[s][:1]) + statusVerbs[s][1:]
	}
	idx, _, err := (&promptui.Select{Label: "Action", Items: labels}).Run()
	if err != nil {
		return false
	}
	if err := changeStatus(ctx, a, r.RequestID, next[idx], false); err != nil {
		fmt.Println(err)
	}
	return true
}
