// Copyright (C) 2026 Ioannis Torakis <john.torakis@gmail.com>
// SPDX-License-Identifier: Elastic-2.0
//
// Licensed under the Elastic License 2.0.
// You may obtain a copy of the license at:
// https://www.elastic.co/licensing/elastic-license
//
// Use, modification, and redistribution permitted under the terms of the license,
// except for providing this software as a commercial service or product.

package wizard

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redhatinsights/access-requests-cli/internal/daterange"
	"github.com/redhatinsights/access-requests-cli/internal/notify"
	apierrors "github.com/redhatinsights/access-requests-cli/pkg/errors"
	"github.com/redhatinsights/access-requests-cli/pkg/models"
)

var testNow = time.Date(2026, time.March, 10, 15, 4, 0, 0, time.UTC)

func testDates() daterange.Validator {
	return daterange.Validator{Now: func() time.Time { return testNow }, Location: time.UTC}
}

type fakeUsers struct {
	identity *models.Identity
	err      error
}

func (f *fakeUsers) CurrentUser(context.Context) (*models.Identity, error) {
	return f.identity, f.err
}

type fakeStore struct {
	mu       sync.Mutex
	existing *models.AccessRequest
	getErr   error
	created  []models.RequestPayload
	updated  map[string]models.RequestPayload
	queryBy  string
	submit   error
	// gate, when set, blocks create/update until closed
	gate chan struct{}
}

func (f *fakeStore) GetRequest(_ context.Context, id, queryBy string) (*models.AccessRequest, error) {
	f.queryBy = queryBy
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.existing, nil
}

func (f *fakeStore) CreateRequest(_ context.Context, payload models.RequestPayload) (*models.AccessRequest, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, payload)
	if f.submit != nil {
		return nil, f.submit
	}
	return &models.AccessRequest{RequestID: "new-id", TargetAccount: payload.TargetAccount, Status: models.Pending}, nil
}

func (f *fakeStore) UpdateRequest(_ context.Context, id string, payload models.RequestPayload) (*models.AccessRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updated == nil {
		f.updated = map[string]models.RequestPayload{}
	}
	f.updated[id] = payload
	if f.submit != nil {
		return nil, f.submit
	}
	return &models.AccessRequest{RequestID: id, Status: models.Pending}, nil
}

type closeRecorder struct {
	calls []bool
}

func (c *closeRecorder) fn(refresh bool) { c.calls = append(c.calls, refresh) }

func newLoaded(t *testing.T, store *fakeStore, closed *closeRecorder, opts ...Option) (*Wizard, *notify.Store) {
	t.Helper()
	notes := notify.NewStore()
	users := &fakeUsers{identity: &models.Identity{FirstName: "Jane", LastName: "Doe", IsInternal: true}}
	opts = append([]Option{WithValidator(testDates()), WithNotifier(notes), OnClose(closed.fn)}, opts...)
	w := New(users, store, opts...)
	require.NoError(t, w.Load(context.Background()))
	require.Equal(t, StateEditing, w.State())
	return w, notes
}

func fillDetails(t *testing.T, w *Wizard) {
	t.Helper()
	require.NoError(t, w.SetAccountNumber("123456789"))
	require.NoError(t, w.SetOrgID("987654321"))
	filled, err := w.SetStartDate("03/17/2026")
	require.NoError(t, err)
	require.True(t, filled)
	require.NoError(t, w.SetEndDate("03/24/2026"))
}

func toReview(t *testing.T, w *Wizard) {
	t.Helper()
	fillDetails(t, w)
	require.NoError(t, w.Next())
	require.NoError(t, w.SetRoles([]string{"Viewer"}))
	require.NoError(t, w.Next())
	require.Equal(t, StepReview, w.Step())
}

func TestWizard_SubmitRoundTrip(t *testing.T) {
	store := &fakeStore{}
	closed := &closeRecorder{}
	w, notes := newLoaded(t, store, closed)
	assert.Equal(t, "Jane Doe", w.Form().RequesterName)

	toReview(t, w)
	require.NoError(t, w.Submit(context.Background()))

	require.Len(t, store.created, 1)
	assert.Equal(t, models.RequestPayload{
		TargetAccount: "123456789",
		TargetOrg:     "987654321",
		StartDate:     "2026-03-17",
		EndDate:       "2026-03-24",
		Roles:         []string{"Viewer"},
	}, store.created[0])
	assert.Equal(t, StateClosed, w.State())
	assert.Equal(t, []bool{true}, closed.calls)
	assert.Equal(t, "new-id", w.Result().RequestID)

	list := notes.List()
	require.Len(t, list, 1)
	assert.Equal(t, notify.Success, list[0].Variant)
}

func TestWizard_DetailsGate(t *testing.T) {
	w, _ := newLoaded(t, &fakeStore{}, &closeRecorder{})

	assert.ErrorIs(t, w.Next(), ErrStepInvalid)

	require.NoError(t, w.SetAccountNumber("12ab"))
	require.NoError(t, w.SetOrgID("987654321"))
	_, err := w.SetStartDate("03/17/2026")
	require.NoError(t, err)

	errs, ok := w.DetailErrors()
	assert.False(t, ok)
	assert.Equal(t, "Account number must contain only digits.", errs["AccountNumber"])
	assert.NotContains(t, errs, "EndDate")
	assert.ErrorIs(t, w.Next(), ErrStepInvalid)

	require.NoError(t, w.SetAccountNumber("123456789"))
	require.NoError(t, w.SetEndDate("03/17/2026"))
	errs, _ = w.DetailErrors()
	assert.Equal(t, daterange.MsgEndAfterStart, errs["EndDate"])
	assert.ErrorIs(t, w.Next(), ErrStepInvalid)

	require.NoError(t, w.SetEndDate("03/18/2026"))
	require.NoError(t, w.Next())
	assert.Equal(t, StepRoles, w.Step())
}

func TestWizard_StartDateBoundsGate(t *testing.T) {
	w, _ := newLoaded(t, &fakeStore{}, &closeRecorder{})
	require.NoError(t, w.SetAccountNumber("1"))
	require.NoError(t, w.SetOrgID("2"))

	filled, err := w.SetStartDate("03/09/2026")
	require.NoError(t, err)
	assert.False(t, filled)
	require.NoError(t, w.SetEndDate("03/20/2026"))

	errs, ok := w.DetailErrors()
	assert.False(t, ok)
	assert.Equal(t, daterange.MsgStartNotPast, errs["StartDate"])
}

func TestWizard_RolesGateAndBackNavigation(t *testing.T) {
	w, _ := newLoaded(t, &fakeStore{}, &closeRecorder{})
	fillDetails(t, w)
	require.NoError(t, w.Next())

	assert.ErrorIs(t, w.Next(), ErrNoRoles)
	require.NoError(t, w.SetRoles([]string{"Viewer", "Viewer", ""}))
	assert.Equal(t, []string{"Viewer"}, w.Form().Roles)
	require.NoError(t, w.Next())

	assert.ErrorIs(t, w.Next(), ErrWrongState)
	assert.ErrorIs(t, w.GoTo(StepReview+1), ErrForwardGoTo)

	require.NoError(t, w.GoTo(StepDetails))
	assert.Equal(t, StepDetails, w.Step())
	assert.ErrorIs(t, w.GoTo(StepRoles), ErrForwardGoTo)

	require.NoError(t, w.Back())
	assert.Equal(t, StepDetails, w.Step())
	assert.Equal(t, "123456789", w.Form().AccountNumber)
}

func TestWizard_SubmitOnlyFromReview(t *testing.T) {
	store := &fakeStore{}
	w, _ := newLoaded(t, store, &closeRecorder{})
	fillDetails(t, w)
	assert.ErrorIs(t, w.Submit(context.Background()), ErrWrongState)
	assert.Empty(t, store.created)
}

func TestWizard_CancelConfirm(t *testing.T) {
	closed := &closeRecorder{}
	w, _ := newLoaded(t, &fakeStore{}, closed)
	fillDetails(t, w)
	require.NoError(t, w.Next())

	require.NoError(t, w.RequestCancel())
	assert.Equal(t, StateCancelConfirm, w.State())
	assert.ErrorIs(t, w.Next(), ErrWrongState)

	require.NoError(t, w.DeclineCancel())
	assert.Equal(t, StateEditing, w.State())
	assert.Equal(t, StepRoles, w.Step())
	assert.Equal(t, "03/24/2026", w.Form().Dates.End)
	assert.Empty(t, closed.calls)

	require.NoError(t, w.RequestCancel())
	require.NoError(t, w.ConfirmCancel())
	assert.Equal(t, StateClosed, w.State())
	assert.Equal(t, []bool{false}, closed.calls)
}

func TestWizard_InvalidAccount(t *testing.T) {
	store := &fakeStore{submit: apierrors.NewAPIError("create", "access request", http.StatusBadRequest, []string{"Account 999999999 does not exist."})}
	closed := &closeRecorder{}
	w, _ := newLoaded(t, store, closed)
	toReview(t, w)

	err := w.Submit(context.Background())
	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, TitleInvalidAccount, failure.Title)
	assert.True(t, failure.AccountInvalid)
	assert.False(t, failure.CanReturn)
	assert.Equal(t, StateError, w.State())
	assert.Empty(t, closed.calls)
}

func TestWizard_GenericFailureReturnToStepOne(t *testing.T) {
	store := &fakeStore{submit: apierrors.NewAPIError("create", "access request", http.StatusBadRequest, []string{"roles: Viewer is not a valid role"})}
	w, _ := newLoaded(t, store, &closeRecorder{})
	toReview(t, w)

	err := w.Submit(context.Background())
	require.Error(t, err)
	f := w.Failure()
	require.NotNil(t, f)
	assert.Equal(t, TitleSubmitFailed, f.Title)
	assert.True(t, f.CanReturn)
	assert.Contains(t, f.Message, "not a valid role")

	require.NoError(t, w.ReturnToStepOne())
	assert.Equal(t, StateEditing, w.State())
	assert.Equal(t, StepDetails, w.Step())
	assert.Nil(t, w.Failure())

	form := w.Form()
	assert.Equal(t, "123456789", form.AccountNumber)
	assert.Equal(t, "03/17/2026", form.Dates.Start)
	assert.Equal(t, []string{"Viewer"}, form.Roles)

	store.submit = nil
	require.NoError(t, w.Next())
	require.NoError(t, w.Next())
	require.NoError(t, w.Submit(context.Background()))
	assert.Len(t, store.created, 2)
}

func TestWizard_AbandonDuringSubmit(t *testing.T) {
	store := &fakeStore{gate: make(chan struct{})}
	closed := &closeRecorder{}
	w, notes := newLoaded(t, store, closed)
	toReview(t, w)

	done := make(chan error, 1)
	go func() { done <- w.Submit(context.Background()) }()

	require.Eventually(t, func() bool { return w.State() == StateSubmitting }, time.Second, time.Millisecond)
	require.NoError(t, w.Abandon())
	assert.Equal(t, StateClosed, w.State())

	close(store.gate)
	require.NoError(t, <-done)
	assert.Equal(t, []bool{true}, closed.calls)
	assert.Nil(t, w.Result())
	assert.Empty(t, notes.List())
}

func TestWizard_LoadFailureStaysLoading(t *testing.T) {
	notes := notify.NewStore()
	w := New(&fakeUsers{err: errors.New("session expired")}, &fakeStore{}, WithNotifier(notes))

	require.Error(t, w.Load(context.Background()))
	assert.Equal(t, StateLoading, w.State())
	list := notes.List()
	require.Len(t, list, 1)
	assert.Equal(t, notify.Danger, list[0].Variant)
	assert.ErrorIs(t, w.SetAccountNumber("1"), ErrWrongState)

	store := &fakeStore{getErr: apierrors.NewAPIError("get", "access request", http.StatusNotFound, []string{"Not found."})}
	w = New(&fakeUsers{identity: &models.Identity{}}, store, WithRequestID("r1"), WithNotifier(notes))
	require.Error(t, w.Load(context.Background()))
	assert.Equal(t, StateLoading, w.State())
	assert.Len(t, notes.List(), 2)
}

func TestWizard_LoadForbiddenRaisesNotification(t *testing.T) {
	notes := notify.NewStore()
	store := &fakeStore{getErr: apierrors.NewAPIError("get", "access request", http.StatusForbidden, nil)}
	w := New(&fakeUsers{identity: &models.Identity{}}, store, WithRequestID("r1"), WithNotifier(notes))

	require.Error(t, w.Load(context.Background()))
	assert.Equal(t, StateLoading, w.State())

	_, blocked := notes.Blocking()
	assert.False(t, blocked)
	list := notes.List()
	require.Len(t, list, 1)
	assert.Equal(t, notify.Danger, list[0].Variant)
	assert.Equal(t, "Could not load access request", list[0].Title)
}

func TestWizard_EditUsesPut(t *testing.T) {
	store := &fakeStore{existing: &models.AccessRequest{
		RequestID:     "r1",
		TargetAccount: "111",
		TargetOrg:     "222",
		StartDate:     "2026-03-01",
		EndDate:       "2026-03-20",
		Status:        models.Pending,
		Roles:         []models.Role{{DisplayName: "Viewer"}},
	}}
	closed := &closeRecorder{}
	w, _ := newLoaded(t, store, closed, WithRequestID("r1"))
	assert.Equal(t, ModeEdit, w.Mode())

	form := w.Form()
	assert.Equal(t, "03/01/2026", form.Dates.Start)
	assert.Equal(t, "03/20/2026", form.Dates.End)
	assert.Equal(t, []string{"Viewer"}, form.Roles)

	// the stored start date is in the past but unchanged, so it is accepted
	require.NoError(t, w.Next())
	require.NoError(t, w.Next())
	require.NoError(t, w.Submit(context.Background()))

	assert.Empty(t, store.created)
	require.Contains(t, store.updated, "r1")
	assert.Equal(t, "2026-03-01", store.updated["r1"].StartDate)
	assert.Equal(t, []bool{true}, closed.calls)
}

func TestWizard_EditRejectsTerminalRequest(t *testing.T) {
	store := &fakeStore{existing: &models.AccessRequest{RequestID: "r1", Status: models.Approved}}
	w := New(&fakeUsers{identity: &models.Identity{}}, store, WithRequestID("r1"))
	assert.ErrorIs(t, w.Load(context.Background()), ErrNotEditable)
	assert.Equal(t, StateLoading, w.State())
}

func TestWizard_RenewPrefillsWithoutDates(t *testing.T) {
	store := &fakeStore{existing: &models.AccessRequest{
		RequestID: "r1", TargetAccount: "111", TargetOrg: "222",
		StartDate: "2025-01-01", EndDate: "2025-01-08", Status: models.Expired,
		Roles: []models.Role{{DisplayName: "Viewer"}, {DisplayName: "Editor"}},
	}}
	w, _ := newLoaded(t, store, &closeRecorder{}, WithRenewFrom("r1"))
	assert.Equal(t, ModeRenew, w.Mode())

	form := w.Form()
	assert.Equal(t, "111", form.AccountNumber)
	assert.Empty(t, form.Dates.Start)
	assert.Equal(t, []string{"Viewer", "Editor"}, form.Roles)

	_, err := w.SetStartDate("03/11/2026")
	require.NoError(t, err)
	require.NoError(t, w.Next())
	require.NoError(t, w.Next())
	require.NoError(t, w.Submit(context.Background()))
	require.Len(t, store.created, 1)
	assert.Equal(t, "2026-03-18", store.created[0].EndDate)
}
