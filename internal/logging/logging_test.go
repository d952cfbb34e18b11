// Copyright (C) 2026 Ioannis Torakis <john.torakis@gmail.com>
// SPDX-License-Identifier: Elastic-2.0
//
// Licensed under the Elastic License 2.0.
// You may obtain a copy of the license at:
// https://www.elastic.co/licensing/elastic-license
//
// Use, modification, and redistribution permitted under the terms of the license,
// except for providing this software as a commercial service or product.

package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger_Levels(t *testing.T) {
	var buf bytes.Buffer

	assert.Equal(t, zerolog.WarnLevel, newLogger(&buf, false, "", false).GetLevel())
	assert.Equal(t, zerolog.WarnLevel, newLogger(&buf, false, "nonsense", false).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, newLogger(&buf, false, "info", false).GetLevel())
	assert.Equal(t, zerolog.DebugLevel, newLogger(&buf, false, "error", true).GetLevel())
}

func TestNewLogger_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, false, "info", false)
	logger.Info().Str("component", "test").Msg("hello")
	assert.Contains(t, buf.String(), `"component":"test"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}
