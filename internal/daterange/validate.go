// Copyright (C) 2026 Ioannis Torakis <john.torakis@gmail.com>
// SPDX-License-Identifier: Elastic-2.0
//
// Licensed under the Elastic License 2.0.
// You may obtain a copy of the license at:
// https://www.elastic.co/licensing/elastic-license
//
// Use, modification, and redistribution permitted under the terms of the license,
// except for providing this software as a commercial service or product.

package daterange

import (
	"time"
)

// Status is the tri-state outcome of a single rule
type Status int

const (
	StatusIndeterminate Status = iota
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "indeterminate"
	}
}

func statusOf(ok bool) Status {
	if ok {
		return StatusSuccess
	}
	return StatusError
}

// Validator evaluates date pairs against today. The zero value uses the wall clock in time.Local.
type Validator struct {
	Now      func() time.Time
	Location *time.Location

	// Existing is the stored start date of a request being edited. While the start
	// date is left unchanged the creation-time bound rules are not re-applied.
	Existing string
}

func (v Validator) location() *time.Location {
	if v.Location != nil {
		return v.Location
	}
	return time.Local
}

// Today returns local midnight of the current day
func (v Validator) Today() time.Time {
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	return Midnight(now(), v.location())
}

// Parse parses a display date in the validator's location
func (v Validator) Parse(value string) (time.Time, bool) {
	return Parse(value, v.location())
}

// Report holds the status of every rule for one start/end pair
type Report struct {
	StartFormat       Status
	EndFormat         Status
	StartNotPast      Status
	StartWithin60Days Status
	EndAfterStart     Status
	MaxOneYear        Status
}

// Evaluate runs all rules. Inputs are never modified.
func (v Validator) Evaluate(start, end string) Report {
	var r Report

	s, startOK := v.Parse(start)
	e, endOK := v.Parse(end)

	if start != "" {
		r.StartFormat = statusOf(startOK)
	}
	if end != "" {
		r.EndFormat = statusOf(endOK)
	}

	if startOK {
		if existing, ok := v.Parse(v.Existing); ok && existing.Equal(s) {
			r.StartNotPast = StatusSuccess
			r.StartWithin60Days = StatusSuccess
		} else {
			today := v.Today()
			r.StartNotPast = statusOf(!s.Before(today))
			r.StartWithin60Days = statusOf(!s.After(today.AddDate(0, 0, MaxStartOffsetDays)))
		}
	}

	if startOK && endOK {
		r.EndAfterStart = statusOf(e.After(s))
		r.MaxOneYear = statusOf(!e.After(s.AddDate(1, 0, 0)))
	}

	return r
}

// StartAccepted reports whether the start date passes the format and bound rules
func (r Report) StartAccepted() bool {
	return r.StartFormat == StatusSuccess &&
		r.StartNotPast == StatusSuccess &&
		r.StartWithin60Days == StatusSuccess
}

// Valid reports whether every rule passed
func (r Report) Valid() bool {
	for _, c := range r.Checklist() {
		if c.Status != StatusSuccess {
			return false
		}
	}
	return true
}

// Check is one line of the rule checklist
type Check struct {
	Field   string
	Message string
	Status  Status
}

// Checklist lists every rule in precedence order
func (r Report) Checklist() []Check {
	return []Check{
		{Field: "start", Message: MsgFormat, Status: r.StartFormat},
		{Field: "end", Message: MsgFormat, Status: r.EndFormat},
		{Field: "start", Message: MsgStartNotPast, Status: r.StartNotPast},
		{Field: "start", Message: MsgStartWithin60, Status: r.StartWithin60Days},
		{Field: "end", Message: MsgEndAfterStart, Status: r.EndAfterStart},
		{Field: "end", Message: MsgMaxOneYear, Status: r.MaxOneYear},
	}
}

// Errors returns the messages of failing rules, optionally restricted to one field
func (r Report) Errors(field string) []string {
	var msgs []string
	for _, c := range r.Checklist() {
		if c.Status == StatusError && (field == "" || c.Field == field) {
			msgs = append(msgs, c.Message)
		}
	}
	return msgs
}

// Fields holds the two date inputs of the wizard and tracks whether the end
// date was filled in automatically.
type Fields struct {
	Start string
	End   string

	endAuto bool
}

// SetStart records a new start value. When the value is an accepted start date
// and the end date is empty or was auto-filled, the end date becomes start + 7 days.
// It returns true when the end date was auto-filled.
func (f *Fields) SetStart(v Validator, value string) bool {
	f.Start = value

	if !v.Evaluate(value, "").StartAccepted() {
		return false
	}
	if f.End != "" && !f.endAuto {
		return false
	}

	start, _ := v.Parse(value)
	f.End = Format(start.AddDate(0, 0, DefaultSpanDays))
	f.endAuto = true
	return true
}

// SetEnd records an explicit end value, which is never overwritten by auto-fill
func (f *Fields) SetEnd(value string) {
	f.End = value
	f.endAuto = false
}

// EndAutoFilled reports whether the current end date came from auto-fill
func (f Fields) EndAutoFilled() bool {
	return f.endAuto
}

// Report evaluates the current inputs
func (f *Fields) Report(v Validator) Report {
	return v.Evaluate(f.Start, f.End)
}
