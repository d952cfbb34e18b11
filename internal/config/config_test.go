// Copyright (C) 2026 Ioannis Torakis <john.torakis@gmail.com>
// SPDX-License-Identifier: Elastic-2.0
//
// Licensed under the Elastic License 2.0.
// You may obtain a copy of the license at:
// https://www.elastic.co/licensing/elastic-license
//
// Use, modification, and redistribution permitted under the terms of the license,
// except for providing this software as a commercial service or product.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) string {
	t.Helper()
	viper.Reset()
	cfg = nil
	t.Cleanup(func() {
		viper.Reset()
		cfg = nil
	})
	dir := t.TempDir()
	require.NoError(t, InitAt(dir))
	return dir
}

func TestInitAt_WritesDefaults(t *testing.T) {
	dir := setup(t)

	c := GetConfig()
	assert.Equal(t, DefaultAPIURL, c.API.URL)
	assert.Equal(t, DefaultClientID, c.Auth.ClientID)
	assert.Equal(t, "table", c.Defaults.OutputFormat)
	assert.Equal(t, 20, c.Defaults.PageSize)

	info, err := os.Stat(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	assert.Equal(t, filepath.Join(dir, "config.yaml"), Path())
}

func TestInitAt_EnvironmentOverridesFile(t *testing.T) {
	t.Setenv("ACCESS_REQUESTS_API_URL", "http://localhost:8000")
	t.Setenv("ACCESS_REQUESTS_API_TOKEN", "env-token")
	dir := setup(t)

	c := GetConfig()
	assert.Equal(t, "http://localhost:8000", c.API.URL)
	assert.Equal(t, "env-token", c.API.Token)

	raw, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "env-token")
}

func TestSettersPersist(t *testing.T) {
	dir := setup(t)

	require.NoError(t, SetAPIURL("https://console.stage.redhat.com/"))
	require.NoError(t, SetTokens("access", "refresh"))
	require.NoError(t, SetOutputFormat("json"))
	require.Error(t, SetOutputFormat("xml"))
	require.NoError(t, SetPageSize(50))
	require.Error(t, SetPageSize(0))
	require.NoError(t, SetView("external"))
	require.Error(t, SetView("partner"))

	viper.Reset()
	cfg = nil
	require.NoError(t, InitAt(dir))
	c := GetConfig()
	assert.Equal(t, "https://console.stage.redhat.com", c.API.URL)
	assert.Equal(t, "refresh", c.API.RefreshToken)
	assert.Equal(t, "json", c.Defaults.OutputFormat)
	assert.Equal(t, 50, c.Defaults.PageSize)
	assert.Equal(t, "external", c.Defaults.View)

	require.NoError(t, SetView("auto"))
	require.NoError(t, ClearTokens())
	assert.Empty(t, GetConfig().Defaults.View)
	assert.Empty(t, GetConfig().API.Token)
}

func TestUseProfile(t *testing.T) {
	setup(t)
	c := GetConfig()
	c.API.Token = "prod-token"
	c.Profiles = map[string]ProfileConfig{
		"stage": {APIURL: "https://console.stage.redhat.com", View: "internal", Bundle: "iam"},
	}
	require.NoError(t, SaveConfig())

	require.Error(t, UseProfile("missing"))
	require.NoError(t, UseProfile("stage"))
	assert.Equal(t, "https://console.stage.redhat.com", c.API.URL)
	assert.Empty(t, c.API.Token)
	assert.Equal(t, "iam", c.Defaults.Bundle)
	assert.Equal(t, DefaultTokenURL, c.Auth.TokenURL)
}
