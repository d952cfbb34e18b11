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
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/redhatinsights/access-requests-cli/internal/daterange"
	"github.com/redhatinsights/access-requests-cli/internal/wizard"
	"github.com/redhatinsights/access-requests-cli/pkg/models"
)

func requestCreateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:     "create",
		Aliases: []string{"c", "new", "add"},
		Short:   "Create a new access request",
		Long: `Create an access request for read access to a customer account.
Without --file the request is built step by step: details, roles, review.
A request file may be HCL, YAML or JSON; use '-f -' to read YAML from stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWizardCommand(cmd.Context(), file, nil)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Request file (.hcl, .yaml, .yml, .json)")
	return cmd
}

func requestEditCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "edit [request-id]",
		Short: "Edit a pending access request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWizardCommand(cmd.Context(), file, []wizard.Option{wizard.WithRequestID(args[0])})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "File with the fields to change")
	return cmd
}

func requestRenewCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "renew [request-id]",
		Short: "Create a new request with the account and roles of an existing one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWizardCommand(cmd.Context(), file, []wizard.Option{wizard.WithRenewFrom(args[0])})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "File with the new dates and any other changes")
	return cmd
}

func runWizardCommand(ctx context.Context, file string, opts []wizard.Option) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	if err := a.resolveIdentity(ctx); err != nil {
		return err
	}
	if a.view != models.Internal {
		return fmt.Errorf("access requests are created by Red Hat staff; the %s view can only approve or deny", a.view)
	}

	if file != "" {
		return runFileWizard(ctx, a, file, opts)
	}
	if !isInteractiveMode(false, false, false) {
		return fmt.Errorf("a terminal or --file is required")
	}
	_, err = runWizardSession(ctx, a, opts)
	return err
}

func newWizard(a *app, refresh *bool, opts []wizard.Option) *wizard.Wizard {
	opts = append(opts,
		wizard.WithNotifier(a.notes),
		wizard.WithLogger(logger),
		wizard.OnClose(func(r bool) { *refresh = r }),
	)
	return wizard.New(a.session, a.client, opts...)
}

// runInteractiveWizard creates a request from the browse loop
func runInteractiveWizard(ctx context.Context, a *app) (bool, error) {
	return runWizardSession(ctx, a, nil)
}

// runWizardSession drives the wizard with prompts until it closes. It reports
// whether the caller's list should be refreshed.
func runWizardSession(ctx context.Context, a *app, opts []wizard.Option) (bool, error) {
	var refresh bool
	w := newWizard(a, &refresh, opts)

	if err := w.Load(ctx); err != nil {
		a.flush()
		return false, err
	}

	for {
		switch w.State() {
		case wizard.StateClosed:
			a.flush()
			return refresh, nil

		case wizard.StateCancelConfirm:
			if confirm("Discard this access request? Entered values will be lost") {
				_ = w.ConfirmCancel()
				fmt.Println("Request discarded")
			} else {
				_ = w.DeclineCancel()
			}

		case wizard.StateError:
			handleSubmitFailure(w)

		case wizard.StateEditing:
			err := runStep(ctx, a, w)
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				_ = w.RequestCancel()
				continue
			}
			if err != nil {
				return false, err
			}

		default:
			return false, fmt.Errorf("wizard stopped in state %s", w.State())
		}
	}
}

func runStep(ctx context.Context, a *app, w *wizard.Wizard) error {
	step := w.Step()
	color.Cyan("\nStep %d of 3: %s", int(step)+1, step)

	switch step {
	case wizard.StepDetails:
		return promptDetails(w)
	case wizard.StepRoles:
		return promptRoles(ctx, a, w)
	default:
		return promptReview(ctx, w)
	}
}

func promptDetails(w *wizard.Wizard) error {
	form := w.Form()
	fmt.Printf("Requested by: %s\n", form.RequesterName)

	account, err := (&promptui.Prompt{
		Label:     "Account number",
		Default:   form.AccountNumber,
		AllowEdit: true,
		Validate:  func(s string) error { return w.ValidateField("AccountNumber", s) },
	}).Run()
	if err != nil {
		return err
	}
	_ = w.SetAccountNumber(strings.TrimSpace(account))

	org, err := (&promptui.Prompt{
		Label:     "Organization ID",
		Default:   form.OrgID,
		AllowEdit: true,
		Validate:  func(s string) error { return w.ValidateField("OrgID", s) },
	}).Run()
	if err != nil {
		return err
	}
	_ = w.SetOrgID(strings.TrimSpace(org))

	dates := w.Dates()
	start, err := (&promptui.Prompt{
		Label:     "Start date (mm/dd/yyyy)",
		Default:   form.Dates.Start,
		AllowEdit: true,
		Validate:  func(s string) error { return firstError(dates.Evaluate(s, ""), "start", s) },
	}).Run()
	if err != nil {
		return err
	}
	if filled, _ := w.SetStartDate(strings.TrimSpace(start)); filled {
		fmt.Printf("End date set to %s\n", w.Form().Dates.End)
	}

	current := w.Form().Dates
	end, err := (&promptui.Prompt{
		Label:     "End date (mm/dd/yyyy)",
		Default:   current.End,
		AllowEdit: true,
		Validate:  func(s string) error { return firstError(dates.Evaluate(current.Start, s), "end", s) },
	}).Run()
	if err != nil {
		return err
	}
	if end = strings.TrimSpace(end); end != current.End {
		_ = w.SetEndDate(end)
	}

	printChecklist(w.DateReport())

	if err := w.Next(); err != nil {
		errs, _ := w.DetailErrors()
		for _, field := range []string{"AccountNumber", "OrgID", "StartDate", "EndDate"} {
			if msg, ok := errs[field]; ok {
				printFailedMessage("%s", msg)
			}
		}
	}
	return nil
}

// firstError is the prompt validator: the first failing rule for field, or nil
func firstError(report daterange.Report, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("enter a date")
	}
	if msgs := report.Errors(field); len(msgs) > 0 {
		return errors.New(msgs[0])
	}
	return nil
}

func printChecklist(report daterange.Report) {
	seen := map[string]bool{}
	for _, c := range report.Checklist() {
		if seen[c.Message] && c.Status == daterange.StatusIndeterminate {
			continue
		}
		seen[c.Message] = true
		switch c.Status {
		case daterange.StatusSuccess:
			color.Green("  ✓ %s", c.Message)
		case daterange.StatusError:
			color.Red("  × %s", c.Message)
		default:
			fmt.Printf("  - %s\n", c.Message)
		}
	}
}

const (
	rolesContinue = "Continue"
	rolesBack     = "Back"
	rolesReload   = "Reload roles"

	// rolesFixed is the number of action items above the role list
	rolesFixed = 3
)

func promptRoles(ctx context.Context, a *app, w *wizard.Wizard) error {
	roles, err := a.catalog.Roles(ctx)
	if err != nil {
		_ = a.fail("Could not load roles", err)
		return err
	}

	selected := map[string]bool{}
	for _, name := range w.Form().Roles {
		selected[name] = true
	}

	cursor := 0
	for {
		items := make([]string, 0, len(roles)+rolesFixed)
		items = append(items, fmt.Sprintf("%s (%d selected)", rolesContinue, len(selected)), rolesBack, rolesReload)
		for _, r := range roles {
			mark := "[ ]"
			if selected[r.DisplayName] {
				mark = "[x]"
			}
			items = append(items, fmt.Sprintf("%s %s (%s)", mark, r.DisplayName, strings.Join(r.Applications, ", ")))
		}

		prompt := promptui.Select{
			Label:     "Toggle roles, then continue",
			Items:     items,
			Size:      12,
			CursorPos: cursor,
			Searcher: func(input string, index int) bool {
				if index < rolesFixed {
					return false
				}
				r := roles[index-rolesFixed]
				return fuzzy.MatchNormalizedFold(input, r.DisplayName) ||
					fuzzy.MatchNormalizedFold(input, strings.Join(r.Applications, " "))
			},
		}
		idx, _, err := prompt.Run()
		if err != nil {
			return err
		}
		cursor = idx

		switch idx {
		case 0, 1:
			names := make([]string, 0, len(selected))
			for _, r := range roles {
				if selected[r.DisplayName] {
					names = append(names, r.DisplayName)
				}
			}
			_ = w.SetRoles(names)
			if idx == 1 {
				return w.Back()
			}
			if err := w.Next(); err != nil {
				printFailedMessage("%s", err)
				continue
			}
			return nil
		case 2:
			a.catalog.Invalidate()
			if roles, err = a.catalog.Roles(ctx); err != nil {
				_ = a.fail("Could not load roles", err)
				return err
			}
			cursor = 0
		default:
			name := roles[idx-rolesFixed].DisplayName
			if selected[name] {
				delete(selected, name)
			} else {
				selected[name] = true
			}
		}
	}
}

const (
	reviewSubmit      = "Submit request"
	reviewEditDetails = "Edit request details"
	reviewEditRoles   = "Edit roles"
	reviewCancel      = "Cancel"
)

func promptReview(ctx context.Context, w *wizard.Wizard) error {
	printReview(w.Form())

	label := reviewSubmit
	if w.Mode() == wizard.ModeEdit {
		label = "Save changes"
	}
	items := []string{label, reviewEditDetails, reviewEditRoles, reviewCancel}
	idx, _, err := (&promptui.Select{Label: "Review", Items: items}).Run()
	if err != nil {
		return err
	}

	switch items[idx] {
	case reviewEditDetails:
		return w.GoTo(wizard.StepDetails)
	case reviewEditRoles:
		return w.GoTo(wizard.StepRoles)
	case reviewCancel:
		return w.RequestCancel()
	}
	return submitWithEscape(ctx, w)
}

func printReview(form wizard.Form) {
	fmt.Printf("Requested by:  %s\n", form.RequesterName)
	fmt.Printf("Account:       %s\n", form.AccountNumber)
	fmt.Printf("Org ID:        %s\n", form.OrgID)
	fmt.Printf("Access:        %s - %s\n", form.Dates.Start, form.Dates.End)
	fmt.Printf("Roles:         %s\n", strings.Join(form.Roles, ", "))
}

// submitWithEscape submits and waits. An interrupt while waiting closes the
// wizard and leaves the request in flight.
func submitWithEscape(ctx context.Context, w *wizard.Wizard) error {
	fmt.Println("Submitting... press Ctrl-C to close without waiting")

	done := make(chan error, 1)
	go func() { done <- w.Submit(context.WithoutCancel(ctx)) }()

	select {
	case err := <-done:
		var failure *wizard.Failure
		if errors.As(err, &failure) {
			return nil
		}
		return err
	case <-ctx.Done():
		if err := w.Abandon(); err != nil {
			// the submission finished first
			return ignoreFailure(<-done)
		}
		fmt.Println("Closed. The request will appear in the list once the server accepts it.")
		return nil
	}
}

func ignoreFailure(err error) error {
	var failure *wizard.Failure
	if errors.As(err, &failure) {
		return nil
	}
	return err
}

func handleSubmitFailure(w *wizard.Wizard) {
	f := w.Failure()
	printFailedMessage("%s", f.Title)
	fmt.Println(f.Message)

	var items []string
	switch {
	case f.AccountInvalid:
		items = []string{"Enter a different account number", "Close"}
	case f.CanReturn:
		items = []string{"Return to Step 1", "Close"}
	default:
		items = []string{"Close"}
	}

	idx, _, err := (&promptui.Select{Label: "Next", Items: items}).Run()
	if err != nil || items[idx] == "Close" {
		_ = w.Dismiss()
		return
	}
	_ = w.ReturnToStepOne()
}

func confirm(label string) bool {
	_, err := (&promptui.Prompt{Label: label, IsConfirm: true}).Run()
	return err == nil
}

// runFileWizard fills the wizard from a request file and submits without prompts
func runFileWizard(ctx context.Context, a *app, file string, opts []wizard.Option) error {
	var (
		rf  *wizard.RequestFile
		err error
	)
	if file == "-" {
		src, readErr := io.ReadAll(os.Stdin)
		if readErr != nil {
			return wrapError("read request from stdin", readErr)
		}
		rf, err = wizard.ParseFile("stdin.yaml", src)
	} else {
		rf, err = wizard.LoadFile(file)
	}
	if err != nil {
		return err
	}

	if rf.Roles, err = resolveRoleNames(ctx, a, rf.Roles); err != nil {
		return err
	}

	var refresh bool
	w := newWizard(a, &refresh, opts)
	if err := w.Load(ctx); err != nil {
		a.flush()
		return err
	}
	if err := rf.Apply(w); err != nil {
		return err
	}
	if err := wizard.Complete(w); err != nil {
		return err
	}

	if err := w.Submit(ctx); err != nil {
		var failure *wizard.Failure
		if errors.As(err, &failure) {
			return fmt.Errorf("%s: %s", failure.Title, failure.Message)
		}
		return err
	}

	format := getEffectiveOutputFormat()
	if format == OutputFormatJSON || format == OutputFormatYAML {
		a.notes.Clear()
		return formatOutput(w.Result(), format)
	}
	a.flush()
	return nil
}

// resolveRoleNames maps role uuids or display names to the display names the backend expects
func resolveRoleNames(ctx context.Context, a *app, refs []string) ([]string, error) {
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		role, ok, err := a.catalog.Lookup(ctx, ref)
		if err != nil {
			return nil, a.fail("Could not load roles", err)
		}
		if !ok {
			return nil, fmt.Errorf("unknown role %q", ref)
		}
		names = append(names, role.DisplayName)
	}
	return names, nil
}
