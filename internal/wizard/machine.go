// Copyright (C) 2026 Ioannis Torakis <john.torakis@gmail.com>
// SPDX-License-Identifier: Elastic-2.0
//
// Licensed under the Elastic License 2.0.
// You may obtain a copy of the license at:
// https://www.elastic.co/licensing/elastic-license
//
// Use, modification, and redistribution permitted under the terms of the license,
// except for providing this software as a commercial service or product.

// Package wizard drives the create/edit/renew flow of an access request:
// loading, three gated steps, cancel confirmation, submission and retry.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/redhatinsights/access-requests-cli/internal/api"
	"github.com/redhatinsights/access-requests-cli/internal/daterange"
	"github.com/redhatinsights/access-requests-cli/internal/notify"
	apierrors "github.com/redhatinsights/access-requests-cli/pkg/errors"
	"github.com/redhatinsights/access-requests-cli/pkg/models"
)

// State is the wizard's lifecycle state
type State int

const (
	StateLoading State = iota
	StateEditing
	StateCancelConfirm
	StateSubmitting
	StateError
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateEditing:
		return "editing"
	case StateCancelConfirm:
		return "cancelConfirm"
	case StateSubmitting:
		return "submitting"
	case StateError:
		return "error"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Step is one page of the editing flow
type Step int

const (
	StepDetails Step = iota
	StepRoles
	StepReview
)

func (s Step) String() string {
	switch s {
	case StepDetails:
		return "Request details"
	case StepRoles:
		return "Select roles"
	case StepReview:
		return "Review details"
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

// Mode tells what the submission will do
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
	ModeRenew
)

var (
	ErrWrongState  = errors.New("action not available in the current wizard state")
	ErrStepInvalid = errors.New("current step has invalid fields")
	ErrNoRoles     = errors.New("select at least one role")
	ErrNotEditable = errors.New("only pending requests can be edited")
	ErrForwardGoTo = errors.New("steps can only be revisited, not skipped")
)

// Failure titles
const (
	TitleInvalidAccount = "Invalid Account number"
	TitleSubmitFailed   = "There was an error submitting your request"
)

// Failure describes a rejected submission
type Failure struct {
	Title          string
	Message        string
	AccountInvalid bool
	// CanReturn offers the generic "Return to Step 1" action
	CanReturn bool
	Err       error
}

func (f *Failure) Error() string { return f.Title + ": " + f.Message }

func (f *Failure) Unwrap() error { return f.Err }

// UserSource resolves the signed-in identity
type UserSource interface {
	CurrentUser(ctx context.Context) (*models.Identity, error)
}

// RequestStore is the part of the API client the wizard needs
type RequestStore interface {
	GetRequest(ctx context.Context, id, queryBy string) (*models.AccessRequest, error)
	CreateRequest(ctx context.Context, payload models.RequestPayload) (*models.AccessRequest, error)
	UpdateRequest(ctx context.Context, id string, payload models.RequestPayload) (*models.AccessRequest, error)
}

// Option configures a Wizard
type Option func(*Wizard)

// WithRequestID edits an existing pending request
func WithRequestID(id string) Option {
	return func(w *Wizard) {
		w.requestID = id
		w.mode = ModeEdit
	}
}

// WithRenewFrom starts a new request prefilled from an existing one
func WithRenewFrom(id string) Option {
	return func(w *Wizard) {
		w.requestID = id
		w.mode = ModeRenew
	}
}

// WithValidator sets the date validator (clock and location)
func WithValidator(v daterange.Validator) Option {
	return func(w *Wizard) { w.dates = v }
}

// WithNotifier routes load and submit outcomes to a notification store
func WithNotifier(s *notify.Store) Option {
	return func(w *Wizard) { w.notifier = s }
}

// WithLogger sets the logger
func WithLogger(l zerolog.Logger) Option {
	return func(w *Wizard) { w.logger = l }
}

// OnClose registers the close callback. refresh is true when the caller's list
// should be refetched.
func OnClose(fn func(refresh bool)) Option {
	return func(w *Wizard) { w.onClose = fn }
}

// Wizard is safe for concurrent use; Abandon may be called while Submit blocks.
type Wizard struct {
	users    UserSource
	store    RequestStore
	validate *validator.Validate
	dates    daterange.Validator
	notifier *notify.Store
	logger   zerolog.Logger
	onClose  func(refresh bool)

	requestID string
	mode      Mode

	mu        sync.Mutex
	state     State
	step      Step
	form      Form
	identity  *models.Identity
	failure   *Failure
	result    *models.AccessRequest
	submitGen uint64
}

// New creates a wizard in StateLoading
func New(users UserSource, store RequestStore, opts ...Option) *Wizard {
	w := &Wizard{
		users:    users,
		store:    store,
		validate: validator.New(),
		notifier: notify.NewStore(),
		logger:   zerolog.Nop(),
		onClose:  func(bool) {},
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With().Str("component", "wizard").Logger()
	return w
}

// Load fetches the identity and, when editing or renewing, the existing request.
// On failure a danger notification is raised and the wizard stays in StateLoading.
func (w *Wizard) Load(ctx context.Context) error {
	w.mu.Lock()
	if w.state != StateLoading {
		w.mu.Unlock()
		return ErrWrongState
	}
	w.mu.Unlock()

	identity, err := w.users.CurrentUser(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to load current user")
		w.notifier.Report("Could not load user information", err)
		return err
	}

	form := Form{RequesterName: identity.FullName()}
	dates := w.dates

	if w.requestID != "" {
		existing, err := w.store.GetRequest(ctx, w.requestID, api.QueryByUserID)
		if err != nil {
			w.logger.Error().Err(err).Str("request_id", w.requestID).Msg("failed to load request")
			w.notifier.Report("Could not load access request", err)
			return err
		}
		if w.mode == ModeEdit && existing.Status != models.Pending {
			err := fmt.Errorf("%w: %s is %s", ErrNotEditable, existing.RequestID, existing.Status)
			w.notifier.Danger("Could not edit access request", err.Error())
			return err
		}

		form.AccountNumber = existing.TargetAccount
		form.OrgID = existing.TargetOrg
		form.Roles = existing.RoleNames()
		if w.mode == ModeEdit {
			form.Dates.Start = daterange.FromISO(existing.StartDate)
			form.Dates.SetEnd(daterange.FromISO(existing.EndDate))
			dates.Existing = form.Dates.Start
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateLoading {
		return ErrWrongState
	}
	w.identity = identity
	w.form = form
	w.dates = dates
	w.state = StateEditing
	w.step = StepDetails
	w.logger.Debug().Str("mode", w.modeName()).Msg("wizard ready")
	return nil
}

func (w *Wizard) modeName() string {
	switch w.mode {
	case ModeEdit:
		return "edit"
	case ModeRenew:
		return "renew"
	}
	return "create"
}

// State returns the current state
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Step returns the current step
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Mode returns whether the wizard creates, edits or renews
func (w *Wizard) Mode() Mode {
	return w.mode
}

// Form returns a copy of the entered values
func (w *Wizard) Form() Form {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form.clone()
}

// Identity returns the identity resolved by Load
func (w *Wizard) Identity() *models.Identity {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.identity
}

// Failure returns the last submission failure while in StateError
func (w *Wizard) Failure() *Failure {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.failure
}

// Result returns the request returned by a successful submission
func (w *Wizard) Result() *models.AccessRequest {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

// Dates returns the date validator in effect
func (w *Wizard) Dates() daterange.Validator {
	return w.dates
}

// DateReport evaluates the current date inputs
func (w *Wizard) DateReport() daterange.Report {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form.Dates.Report(w.dates)
}

// DetailErrors validates the details step
func (w *Wizard) DetailErrors() (map[string]string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form.Ok(w.validate, w.dates)
}

// ValidateField checks one details value, for interactive prompts
func (w *Wizard) ValidateField(field, value string) error {
	return ValidateField(w.validate, field, value)
}

func (w *Wizard) edit(fn func(f *Form)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateEditing {
		return ErrWrongState
	}
	fn(&w.form)
	return nil
}

// SetAccountNumber sets the target account
func (w *Wizard) SetAccountNumber(v string) error {
	return w.edit(func(f *Form) { f.AccountNumber = v })
}

// SetOrgID sets the target organization
func (w *Wizard) SetOrgID(v string) error {
	return w.edit(func(f *Form) { f.OrgID = v })
}

// SetStartDate sets the start date. It reports whether the end date was auto-filled.
func (w *Wizard) SetStartDate(v string) (bool, error) {
	var filled bool
	err := w.edit(func(f *Form) { filled = f.Dates.SetStart(w.dates, v) })
	return filled, err
}

// SetEndDate sets the end date explicitly
func (w *Wizard) SetEndDate(v string) error {
	return w.edit(func(f *Form) { f.Dates.SetEnd(v) })
}

// SetRoles replaces the selected role names, dropping duplicates
func (w *Wizard) SetRoles(names []string) error {
	return w.edit(func(f *Form) {
		seen := make(map[string]bool, len(names))
		f.Roles = f.Roles[:0]
		for _, n := range names {
			if n == "" || seen[n] {
				continue
			}
			seen[n] = true
			f.Roles = append(f.Roles, n)
		}
	})
}

// Next advances one step when the current step is valid
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateEditing {
		return ErrWrongState
	}

	switch w.step {
	case StepDetails:
		if errs, ok := w.form.Ok(w.validate, w.dates); !ok {
			return fmt.Errorf("%w: %d field(s)", ErrStepInvalid, len(errs))
		}
	case StepRoles:
		if len(w.form.Roles) == 0 {
			return ErrNoRoles
		}
	default:
		return ErrWrongState
	}
	w.step++
	return nil
}

// Back returns to the previous step; on the first step it does nothing
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateEditing {
		return ErrWrongState
	}
	if w.step > StepDetails {
		w.step--
	}
	return nil
}

// GoTo jumps back to an earlier (or the current) step
func (w *Wizard) GoTo(step Step) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateEditing {
		return ErrWrongState
	}
	if step < StepDetails || step > w.step {
		return ErrForwardGoTo
	}
	w.step = step
	return nil
}

// RequestCancel asks for confirmation before discarding the form
func (w *Wizard) RequestCancel() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateEditing {
		return ErrWrongState
	}
	w.state = StateCancelConfirm
	return nil
}

// ConfirmCancel discards the form and closes without a refresh
func (w *Wizard) ConfirmCancel() error {
	w.mu.Lock()
	if w.state != StateCancelConfirm {
		w.mu.Unlock()
		return ErrWrongState
	}
	w.state = StateClosed
	w.mu.Unlock()

	w.onClose(false)
	return nil
}

// DeclineCancel returns to editing with every value kept
func (w *Wizard) DeclineCancel() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateCancelConfirm {
		return ErrWrongState
	}
	w.state = StateEditing
	return nil
}

// Submit sends the request from the review step. It blocks until the backend
// answers; a result that arrives after Abandon is discarded.
func (w *Wizard) Submit(ctx context.Context) error {
	w.mu.Lock()
	if w.state != StateEditing || w.step != StepReview {
		w.mu.Unlock()
		return ErrWrongState
	}
	payload, err := w.form.Payload()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.state = StateSubmitting
	w.submitGen++
	gen := w.submitGen
	mode := w.mode
	id := w.requestID
	w.mu.Unlock()

	var result *models.AccessRequest
	if mode == ModeEdit {
		result, err = w.store.UpdateRequest(ctx, id, payload)
	} else {
		result, err = w.store.CreateRequest(ctx, payload)
	}

	w.mu.Lock()
	if w.state != StateSubmitting || w.submitGen != gen {
		w.mu.Unlock()
		w.logger.Debug().Err(err).Msg("discarding submission result after close")
		return nil
	}

	if err != nil {
		w.failure = classify(err)
		w.state = StateError
		w.mu.Unlock()
		w.logger.Error().Err(err).Msg("submission failed")
		return w.failure
	}

	w.result = result
	w.state = StateClosed
	w.mu.Unlock()

	if mode == ModeEdit {
		w.notifier.Success("Access request updated", fmt.Sprintf("Request %s was updated.", result.RequestID))
	} else {
		w.notifier.Success("Access request created", fmt.Sprintf("Request %s was created for account %s.", result.RequestID, payload.TargetAccount))
	}
	w.onClose(true)
	return nil
}

func classify(err error) *Failure {
	msg := err.Error()
	var apiErr *apierrors.APIError
	if apierrors.As(err, &apiErr) {
		msg = apiErr.Message()
	}

	if apierrors.IsAccountNotExist(err) {
		return &Failure{
			Title:          TitleInvalidAccount,
			Message:        "The account number you entered does not exist. Return to step 1 and enter a valid account number.",
			AccountInvalid: true,
			Err:            err,
		}
	}
	return &Failure{
		Title:     TitleSubmitFailed,
		Message:   msg,
		CanReturn: true,
		Err:       err,
	}
}

// Abandon closes the wizard while a submission is in flight, assuming it will
// succeed. The caller is told to refresh.
func (w *Wizard) Abandon() error {
	w.mu.Lock()
	if w.state != StateSubmitting {
		w.mu.Unlock()
		return ErrWrongState
	}
	w.state = StateClosed
	w.submitGen++
	w.mu.Unlock()

	w.logger.Info().Msg("closed during submission")
	w.onClose(true)
	return nil
}

// ReturnToStepOne clears a failure and resumes editing at the details step
func (w *Wizard) ReturnToStepOne() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateError {
		return ErrWrongState
	}
	w.failure = nil
	w.state = StateEditing
	w.step = StepDetails
	return nil
}

// Dismiss closes the wizard from the error state without a refresh
func (w *Wizard) Dismiss() error {
	w.mu.Lock()
	if w.state != StateError {
		w.mu.Unlock()
		return ErrWrongState
	}
	w.state = StateClosed
	w.mu.Unlock()

	w.onClose(false)
	return nil
}
