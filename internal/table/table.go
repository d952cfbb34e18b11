// Copyright (C) 2026 Ioannis Torakis <john.torakis@gmail.com>
// SPDX-License-Identifier: Elastic-2.0
//
// Licensed under the Elastic License 2.0.
// You may obtain a copy of the license at:
// https://www.elastic.co/licensing/elastic-license
//
// Use, modification, and redistribution permitted under the terms of the license,
// except for providing this software as a commercial service or product.

// Package table renders aligned terminal tables for list output.
package table

import (
	"io"
	"sort"
	"strings"

	"github.com/acarl005/stripansi"
	"github.com/olekukonko/tablewriter"
)

// Options configures rendering
type Options struct {
	Headers []string
	SortBy  int // Column index to sort by (0-based), -1 keeps the given order
	GroupBy int // Column index whose repeated values are blanked, -1 for none
	Footer  []string
}

// Row is one table row; cells may carry ANSI colors
type Row []string

// Plain returns options that keep row order and do not group
func Plain(headers ...string) Options {
	return Options{Headers: headers, SortBy: -1, GroupBy: -1}
}

// Render writes rows to w. Nothing is written for an empty row set.
func Render(w io.Writer, opts Options, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	if opts.SortBy >= 0 && opts.SortBy < len(opts.Headers) {
		sortRows(rows, opts.SortBy)
	}
	if opts.GroupBy >= 0 && opts.GroupBy < len(opts.Headers) {
		rows = groupRows(rows, opts.GroupBy)
	}

	t := tablewriter.NewTable(w)
	t.Header(toAny(opts.Headers)...)

	data := make([][]any, len(rows))
	for i, row := range rows {
		data[i] = toAny(row)
	}
	if err := t.Bulk(data); err != nil {
		return err
	}
	if len(opts.Footer) > 0 {
		t.Footer(toAny(opts.Footer)...)
	}
	return t.Render()
}

func toAny(cells []string) []any {
	out := make([]any, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}

// sortRows orders rows case-insensitively on col, ignoring color codes
func sortRows(rows []Row, col int) {
	sort.SliceStable(rows, func(i, j int) bool {
		if col >= len(rows[i]) || col >= len(rows[j]) {
			return false
		}
		a := strings.ToLower(stripansi.Strip(rows[i][col]))
		b := strings.ToLower(stripansi.Strip(rows[j][col]))
		return a < b
	})
}

// groupRows blanks col in every row that repeats the previous row's value
func groupRows(rows []Row, col int) []Row {
	grouped := make([]Row, 0, len(rows))
	var last string

	for i, row := range rows {
		if col >= len(row) {
			grouped = append(grouped, row)
			continue
		}
		value := stripansi.Strip(row[col])
		if i > 0 && value == last {
			dup := make(Row, len(row))
			copy(dup, row)
			dup[col] = ""
			grouped = append(grouped, dup)
			continue
		}
		grouped = append(grouped, row)
		last = value
	}
	return grouped
}
