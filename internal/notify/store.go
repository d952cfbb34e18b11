// Copyright (C) 2026 Ioannis Torakis <john.torakis@gmail.com>
// SPDX-License-Identifier: Elastic-2.0
//
// Licensed under the Elastic License 2.0.
// You may obtain a copy of the license at:
// https://www.elastic.co/licensing/elastic-license
//
// Use, modification, and redistribution permitted under the terms of the license,
// except for providing this software as a commercial service or product.

// Package notify holds user-facing notifications and the single blocking-error slot.
//
// Errors are routed here explicitly with Capture; the HTTP layer never writes to the store.
package notify

import (
	"net/http"
	"sync"
	"time"

	apierrors "github.com/redhatinsights/access-requests-cli/pkg/errors"
)

// Variant is the severity of a notification
type Variant string

const (
	Success Variant = "success"
	Info    Variant = "info"
	Warning Variant = "warning"
	Danger  Variant = "danger"
)

// Notification is one toast-style message
type Notification struct {
	Variant     Variant
	Title       string
	Description string
	Created     time.Time
}

// Store is a concurrency-safe notification list with a blocking-error slot
type Store struct {
	mu            sync.Mutex
	notifications []Notification
	blocking      int
	now           func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Add appends a notification
func (s *Store) Add(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.Created.IsZero() {
		n.Created = s.now()
	}
	s.notifications = append(s.notifications, n)
}

// Success adds a success notification
func (s *Store) Success(title, description string) {
	s.Add(Notification{Variant: Success, Title: title, Description: description})
}

// Info adds an informational notification
func (s *Store) Info(title, description string) {
	s.Add(Notification{Variant: Info, Title: title, Description: description})
}

// Danger adds an error notification
func (s *Store) Danger(title, description string) {
	s.Add(Notification{Variant: Danger, Title: title, Description: description})
}

// List returns a copy of the pending notifications
func (s *Store) List() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

// Drain returns and removes all pending notifications
func (s *Store) Drain() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notifications
	s.notifications = nil
	return out
}

// Clear removes all notifications
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = nil
}

// SetBlocking occupies the blocking-error slot with an HTTP status code
func (s *Store) SetBlocking(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocking = code
}

// Blocking returns the blocking error code, if any
func (s *Store) Blocking() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blocking, s.blocking != 0
}

// ClearBlocking empties the blocking-error slot
func (s *Store) ClearBlocking() {
	s.SetBlocking(0)
}

// ReauthMessage describes how to recover from an expired or missing session
const ReauthMessage = "Your session has expired. Run 'access-requests auth login' to sign in again."

// Capture routes an error: authorization and server failures take the blocking
// slot, an expired session becomes a danger notification pointing at login, and
// anything else becomes a danger notification titled with title.
// It returns false for a nil error.
func (s *Store) Capture(title string, err error) bool {
	switch {
	case err == nil:
		return false
	case apierrors.Is(err, apierrors.ErrUnauthorized), apierrors.Is(err, apierrors.ErrNotAuthenticated):
		s.Danger(title, ReauthMessage)
	case apierrors.Is(err, apierrors.ErrForbidden):
		s.SetBlocking(http.StatusForbidden)
	case apierrors.Is(err, apierrors.ErrServer):
		s.SetBlocking(http.StatusInternalServerError)
	default:
		s.Danger(title, message(err))
	}
	return true
}

// Report raises a danger notification for err whatever its kind. It returns
// false for a nil error.
func (s *Store) Report(title string, err error) bool {
	if err == nil {
		return false
	}
	if apierrors.Is(err, apierrors.ErrUnauthorized) || apierrors.Is(err, apierrors.ErrNotAuthenticated) {
		s.Danger(title, ReauthMessage)
		return true
	}
	s.Danger(title, message(err))
	return true
}

func message(err error) string {
	var apiErr *apierrors.APIError
	if apierrors.As(err, &apiErr) {
		return apiErr.Message()
	}
	return err.Error()
}
