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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedValidator() Validator {
	return Validator{
		Now:      func() time.Time { return time.Date(2026, time.March, 10, 15, 30, 0, 0, time.UTC) },
		Location: time.UTC,
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"3/10/2026", true},
		{"03/10/2026", true},
		{" 03/10/2026 ", true},
		{"2026-03-10", false},
		{"03/10/26", false},
		{"02/30/2026", false},
		{"13/01/2026", false},
		{"", false},
		{"03/1", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, ok := Parse(tt.in, time.UTC)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestISOConversion(t *testing.T) {
	iso, ok := ToISO("3/9/2026")
	require.True(t, ok)
	assert.Equal(t, "2026-03-09", iso)
	assert.Equal(t, "03/09/2026", FromISO("2026-03-09"))
	assert.Equal(t, "03/09/2026", FromISO("2026-03-09T00:00:00Z"))
	assert.Equal(t, "garbage", FromISO("garbage"))
}

func TestEvaluate_FormatErrorBlocksDownstream(t *testing.T) {
	v := fixedValidator()
	for _, s := range []string{"x", "3/", "2026-03-12", "03/12/26", "99/99/9999"} {
		r := v.Evaluate(s, "")
		assert.Equal(t, StatusError, r.StartFormat, s)
		assert.Equal(t, StatusIndeterminate, r.StartNotPast, s)
		assert.Equal(t, StatusIndeterminate, r.StartWithin60Days, s)
		assert.Equal(t, StatusIndeterminate, r.EndAfterStart, s)
		assert.Equal(t, StatusIndeterminate, r.MaxOneYear, s)
	}

	empty := v.Evaluate("", "")
	assert.Equal(t, StatusIndeterminate, empty.StartFormat)
	assert.False(t, empty.Valid())
}

func TestEvaluate_StartBounds(t *testing.T) {
	v := fixedValidator()

	past := v.Evaluate("03/09/2026", "")
	assert.Equal(t, StatusError, past.StartNotPast)
	assert.Equal(t, StatusSuccess, past.StartWithin60Days)
	assert.Equal(t, []string{MsgStartNotPast}, past.Errors("start"))

	today := v.Evaluate("03/10/2026", "")
	assert.Equal(t, StatusSuccess, today.StartNotPast)
	assert.True(t, today.StartAccepted())

	edge := v.Evaluate("05/09/2026", "") // today + 60 days
	assert.True(t, edge.StartAccepted())

	tooFar := v.Evaluate("05/10/2026", "")
	assert.Equal(t, StatusSuccess, tooFar.StartNotPast)
	assert.Equal(t, StatusError, tooFar.StartWithin60Days)
	assert.Equal(t, []string{MsgStartWithin60}, tooFar.Errors(""))
}

func TestEvaluate_EndRules(t *testing.T) {
	v := fixedValidator()

	same := v.Evaluate("03/12/2026", "03/12/2026")
	assert.Equal(t, StatusError, same.EndAfterStart)

	before := v.Evaluate("03/12/2026", "03/11/2026")
	assert.Equal(t, StatusError, before.EndAfterStart)

	ok := v.Evaluate("03/12/2026", "03/12/2027")
	assert.Equal(t, StatusSuccess, ok.EndAfterStart)
	assert.Equal(t, StatusSuccess, ok.MaxOneYear)
	assert.True(t, ok.Valid())
	assert.Empty(t, ok.Errors(""))

	long := v.Evaluate("03/12/2026", "03/13/2027")
	assert.Equal(t, StatusSuccess, long.EndAfterStart)
	assert.Equal(t, StatusError, long.MaxOneYear)
	assert.Equal(t, []string{MsgMaxOneYear}, long.Errors("end"))
	assert.False(t, long.Valid())
}

func TestEvaluate_ExistingStartSkipsBounds(t *testing.T) {
	v := fixedValidator()
	v.Existing = "01/05/2026"

	r := v.Evaluate("01/05/2026", "02/01/2026")
	assert.True(t, r.Valid())

	moved := v.Evaluate("01/06/2026", "02/01/2026")
	assert.Equal(t, StatusError, moved.StartNotPast)
}

func TestIncrementalTypingNeverClears(t *testing.T) {
	v := fixedValidator()
	var f Fields
	typed := ""
	for _, ch := range "03/15/2026" {
		typed += string(ch)
		f.SetStart(v, typed)
		assert.Equal(t, typed, f.Start, "input must be kept verbatim while typing")

		r := f.Report(v)
		assert.NotEqual(t, StatusError, r.StartNotPast, typed)
		assert.NotEqual(t, StatusError, r.StartWithin60Days, typed)
	}

	// "03/1" style prefixes are incomplete, so only the completed value auto-fills
	assert.Equal(t, "03/15/2026", f.Start)
	assert.Equal(t, "03/22/2026", f.End)
	assert.True(t, f.Report(v).Valid())
}

func TestAutoFill(t *testing.T) {
	v := fixedValidator()

	t.Run("fills empty end", func(t *testing.T) {
		var f Fields
		assert.True(t, f.SetStart(v, "03/20/2026"))
		assert.Equal(t, "03/27/2026", f.End)
		assert.True(t, f.EndAutoFilled())
	})

	t.Run("refreshes a previously auto-filled end", func(t *testing.T) {
		var f Fields
		f.SetStart(v, "03/20/2026")
		assert.True(t, f.SetStart(v, "04/01/2026"))
		assert.Equal(t, "04/08/2026", f.End)
	})

	t.Run("never overwrites a user end", func(t *testing.T) {
		var f Fields
		f.SetEnd("06/01/2026")
		assert.False(t, f.SetStart(v, "03/20/2026"))
		assert.Equal(t, "06/01/2026", f.End)
		assert.False(t, f.EndAutoFilled())
	})

	t.Run("ignores rejected start dates", func(t *testing.T) {
		var f Fields
		assert.False(t, f.SetStart(v, "01/01/2020"))
		assert.Empty(t, f.End)
		assert.False(t, f.SetStart(v, "12/31/2030"))
		assert.Empty(t, f.End)
	})

	t.Run("cleared end is filled again", func(t *testing.T) {
		var f Fields
		f.SetEnd("06/01/2026")
		f.SetEnd("")
		assert.True(t, f.SetStart(v, "03/20/2026"))
		assert.Equal(t, "03/27/2026", f.End)
	})
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "success", StatusSuccess.String())
	assert.Equal(t, "error", StatusError.String())
	assert.Equal(t, "indeterminate", StatusIndeterminate.String())
}
