// Copyright (C) 2026 Ioannis Torakis <john.torakis@gmail.com>
// SPDX-License-Identifier: Elastic-2.0
//
// Licensed under the Elastic License 2.0.
// You may obtain a copy of the license at:
// https://www.elastic.co/licensing/elastic-license
//
// Use, modification, and redistribution permitted under the terms of the license,
// except for providing this software as a commercial service or product.

package table

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupRows(t *testing.T) {
	rows := []Row{
		{"inventory", "hosts", "read"},
		{"\x1b[32minventory\x1b[0m", "hosts", "write"},
		{"cost-management", "cost_model", "read"},
		{"short"},
	}
	grouped := groupRows(rows, 0)
	require.Len(t, grouped, 4)
	assert.Equal(t, "inventory", grouped[0][0])
	assert.Equal(t, "", grouped[1][0])
	assert.Equal(t, "write", grouped[1][2])
	assert.Equal(t, "cost-management", grouped[2][0])
	assert.Equal(t, "\x1b[32minventory\x1b[0m", rows[1][0], "input rows are not modified")
}

func TestSortRows(t *testing.T) {
	rows := []Row{{"b"}, {"\x1b[31mA\x1b[0m"}, {"c"}}
	sortRows(rows, 0)
	assert.Equal(t, "\x1b[31mA\x1b[0m", rows[0][0])
	assert.Equal(t, "c", rows[2][0])
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Plain("ID", "Status"), nil))
	assert.Empty(t, buf.String())

	opts := Options{Headers: []string{"Application", "Permission"}, SortBy: 0, GroupBy: 0}
	require.NoError(t, Render(&buf, opts, []Row{
		{"inventory", "hosts:read"},
		{"approval", "requests:read"},
		{"inventory", "hosts:write"},
	}))
	out := buf.String()
	assert.Contains(t, out, "hosts:write")
	assert.Contains(t, out, "approval")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("approval")), bytes.Index(buf.Bytes(), []byte("inventory")))
}
