// Copyright (C) 2026 Ioannis Torakis <john.torakis@gmail.com>
// SPDX-License-Identifier: Elastic-2.0
//
// Licensed under the Elastic License 2.0.
// You may obtain a copy of the license at:
// https://www.elastic.co/licensing/elastic-license
//
// Use, modification, and redistribution permitted under the terms of the license,
// except for providing this software as a commercial service or product.

package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAPIError_StatusSentinels(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrRequestNotFound},
		{http.StatusInternalServerError, ErrServer},
		{http.StatusBadGateway, ErrServer},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := NewAPIError("list requests", "", tt.status, nil)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.status, StatusCode(err))
		})
	}
}

func TestAPIError_MessagePrefersDetails(t *testing.T) {
	err := NewAPIError("create request", "", http.StatusBadRequest, []string{"first", "second"})
	assert.Equal(t, "first, second", err.Message())
	assert.Equal(t, "failed to create request: first, second", err.Error())

	bare := NewAPIError("get request", "abc", http.StatusNotFound, nil)
	assert.Equal(t, "failed to get request abc: access request not found", bare.Error())
}

func TestWrapAPIError_NoDoubleWrap(t *testing.T) {
	inner := NewAPIError("update status", "abc", http.StatusForbidden, nil)
	wrapped := WrapAPIError("other", "", inner)
	assert.Same(t, inner, wrapped)
	assert.Nil(t, WrapAPIError("x", "", nil))
}

func TestIsAccountNotExist(t *testing.T) {
	assert.True(t, IsAccountNotExist(NewAPIError("create request", "", 400, []string{"Account 999999999 does not exist"})))
	assert.True(t, IsAccountNotExist(fmt.Errorf("wrapped: %w", &APIError{Operation: "create request", Details: []string{"Account 1 does not exist."}})))
	assert.False(t, IsAccountNotExist(NewAPIError("create request", "", 400, []string{"account 1 does not exist"})))
	assert.False(t, IsAccountNotExist(NewAPIError("create request", "", 500, []string{"Internal error"})))
	assert.False(t, IsAccountNotExist(nil))
}
