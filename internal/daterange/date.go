// Copyright (C) 2026 Ioannis Torakis <john.torakis@gmail.com>
// SPDX-License-Identifier: Elastic-2.0
//
// Licensed under the Elastic License 2.0.
// You may obtain a copy of the license at:
// https://www.elastic.co/licensing/elastic-license
//
// Use, modification, and redistribution permitted under the terms of the license,
// except for providing this software as a commercial service or product.

// Package daterange validates the start/end dates of an access request.
//
// Rules are evaluated in precedence order. A rule whose inputs are not yet
// parseable reports StatusIndeterminate instead of an error, so a date typed
// character by character never trips the dependent rules and is never cleared.
package daterange

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layouts used for display and transit
const (
	DisplayLayout = "01/02/2006"
	ISOLayout     = "2006-01-02"
)

// Window constants
const (
	MaxStartOffsetDays = 60
	DefaultSpanDays    = 7
)

// Rule messages
const (
	MsgFormat        = "Date must be in mm/dd/yyyy format."
	MsgStartNotPast  = "Start date must be today or later."
	MsgStartWithin60 = "Start date must be within 60 days of today."
	MsgEndAfterStart = "End date must be after start date."
	MsgMaxOneYear    = "Access duration may not be longer than one year."
)

var datePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)

// Parse reads an M/D/YYYY date at local midnight. It fails on malformed
// strings and on dates that do not exist on the calendar (e.g. 02/30/2026).
func Parse(value string, loc *time.Location) (time.Time, bool) {
	m := datePattern.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return time.Time{}, false
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if loc == nil {
		loc = time.Local
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// Format renders a date as mm/dd/yyyy
func Format(t time.Time) string {
	return t.Format(DisplayLayout)
}

// ToISO converts a display date to the yyyy-mm-dd transit form
func ToISO(value string) (string, bool) {
	t, ok := Parse(value, time.UTC)
	if !ok {
		return "", false
	}
	return t.Format(ISOLayout), true
}

// FromISO converts a transit date (optionally carrying a time component) to the display form
func FromISO(value string) string {
	if len(value) >= len(ISOLayout) {
		if t, err := time.Parse(ISOLayout, value[:len(ISOLayout)]); err == nil {
			return Format(t)
		}
	}
	return value
}

// Midnight truncates t to the start of its calendar day in loc
func Midnight(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
