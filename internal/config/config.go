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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/redhatinsights/access-requests-cli/internal/listing"
	apierrors "github.com/redhatinsights/access-requests-cli/pkg/errors"
	"github.com/redhatinsights/access-requests-cli/pkg/models"
)

// Defaults for a fresh configuration
const (
	DefaultAPIURL   = "https://console.redhat.com"
	DefaultClientID = "cloud-services"
	DefaultTokenURL = "https://sso.redhat.com/auth/realms/redhat-external/protocol/openid-connect/token"
	DefaultAuthURL  = "https://sso.redhat.com/auth/realms/redhat-external/protocol/openid-connect/auth"
	EnvPrefix       = "ACCESS_REQUESTS"
)

// OutputFormats lists the accepted values of defaults.output_format
var OutputFormats = []string{"table", "json", "yaml"}

// Config represents the main configuration structure for the access-requests CLI
type Config struct {
	API      APIConfig                `mapstructure:"api" yaml:"api"`
	Auth     AuthConfig               `mapstructure:"auth" yaml:"auth"`
	Defaults DefaultsConfig           `mapstructure:"defaults" yaml:"defaults"`
	Profiles map[string]ProfileConfig `mapstructure:"profiles" yaml:"profiles"`
}

// APIConfig contains backend connection settings and stored credentials
type APIConfig struct {
	URL          string `mapstructure:"url" yaml:"url"`
	Token        string `mapstructure:"token" yaml:"token,omitempty"`
	RefreshToken string `mapstructure:"refresh_token" yaml:"refresh_token,omitempty"`
}

// AuthConfig contains the SSO client used to refresh tokens
type AuthConfig struct {
	ClientID string `mapstructure:"client_id" yaml:"client_id"`
	TokenURL string `mapstructure:"token_url" yaml:"token_url"`
	AuthURL  string `mapstructure:"auth_url" yaml:"auth_url"`
}

// DefaultsConfig contains default values for CLI operations
type DefaultsConfig struct {
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`
	PageSize     int    `mapstructure:"page_size" yaml:"page_size"`
	// View forces internal or external; empty derives it from the signed-in identity
	View   string `mapstructure:"view" yaml:"view,omitempty"`
	Bundle string `mapstructure:"bundle" yaml:"bundle,omitempty"`
}

// ProfileConfig contains settings for a specific configuration profile
type ProfileConfig struct {
	APIURL   string `mapstructure:"api_url" yaml:"api_url"`
	TokenURL string `mapstructure:"token_url" yaml:"token_url,omitempty"`
	View     string `mapstructure:"view" yaml:"view,omitempty"`
	Bundle   string `mapstructure:"bundle" yaml:"bundle,omitempty"`
}

var (
	cfg        *Config
	configFile string
)

// Init loads ~/.access-requests/config.yaml, creating it with defaults when missing
func Init() error {
	home, err := homedir.Dir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	return InitAt(filepath.Join(home, ".access-requests"))
}

// InitAt loads the configuration from dir
func InitAt(configDir string) error {
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	configFile = filepath.Join(configDir, "config.yaml")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)

	viper.SetDefault("api.url", DefaultAPIURL)
	viper.SetDefault("auth.client_id", DefaultClientID)
	viper.SetDefault("auth.token_url", DefaultTokenURL)
	viper.SetDefault("auth.auth_url", DefaultAuthURL)
	viper.SetDefault("defaults.output_format", "table")
	viper.SetDefault("defaults.page_size", listing.DefaultPerPage)

	// ACCESS_REQUESTS_API_URL, ACCESS_REQUESTS_API_TOKEN, ...
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range []string{"api.url", "api.token", "api.refresh_token", "defaults.view", "defaults.bundle"} {
		if err := viper.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind %s env: %w", key, err)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("%w: failed to read config file: %v", apierrors.ErrConfigurationError, err)
		}
		// Config file not found; write the defaults (never environment values) and read them back
		if err := writeConfig(configFile, defaultConfig()); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("%w: failed to unmarshal config: %v", apierrors.ErrConfigurationError, err)
	}
	return nil
}

// GetConfig returns the current configuration, initializing it if necessary
func GetConfig() *Config {
	if cfg == nil {
		if err := Init(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize config: %v\n", err)
			cfg = defaultConfig()
		}
	}
	return cfg
}

// Path returns the config file location
func Path() string {
	return configFile
}

func defaultConfig() *Config {
	return &Config{
		API:      APIConfig{URL: DefaultAPIURL},
		Auth:     AuthConfig{ClientID: DefaultClientID, TokenURL: DefaultTokenURL, AuthURL: DefaultAuthURL},
		Defaults: DefaultsConfig{OutputFormat: "table", PageSize: listing.DefaultPerPage},
	}
}

// SaveConfig saves the current configuration to disk
func SaveConfig() error {
	viper.Set("api", cfg.API)
	viper.Set("auth", cfg.Auth)
	viper.Set("defaults", cfg.Defaults)
	viper.Set("profiles", cfg.Profiles)

	if err := viper.WriteConfigAs(configFile); err != nil {
		return err
	}
	return os.Chmod(configFile, 0o600)
}

// writeConfig writes c to path with a private viper instance. The file holds
// tokens and is only readable by the owner.
func writeConfig(path string, c *Config) error {
	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("api", c.API)
	v.Set("auth", c.Auth)
	v.Set("defaults", c.Defaults)
	v.Set("profiles", c.Profiles)

	if err := v.WriteConfigAs(path); err != nil {
		return err
	}
	return os.Chmod(path, 0o600)
}

// SetAPIURL updates the backend address and saves it
func SetAPIURL(url string) error {
	cfg.API.URL = strings.TrimRight(url, "/")
	return SaveConfig()
}

// SetTokens stores the access and refresh tokens and saves them
func SetTokens(access, refresh string) error {
	cfg.API.Token = access
	cfg.API.RefreshToken = refresh
	return SaveConfig()
}

// ClearTokens removes stored credentials
func ClearTokens() error {
	return SetTokens("", "")
}

// SetOutputFormat updates the default output format and saves it
func SetOutputFormat(format string) error {
	for _, f := range OutputFormats {
		if f == format {
			cfg.Defaults.OutputFormat = format
			return SaveConfig()
		}
	}
	return fmt.Errorf("unsupported output format %q (expected one of: %s)", format, strings.Join(OutputFormats, ", "))
}

// SetPageSize updates the default page size and saves it
func SetPageSize(size int) error {
	if size < 1 || size > 100 {
		return fmt.Errorf("page size must be between 1 and 100, got %d", size)
	}
	cfg.Defaults.PageSize = size
	return SaveConfig()
}

// SetView forces a view; "auto" or "" derives it from the identity again
func SetView(view string) error {
	if view == "auto" {
		view = ""
	}
	if view != "" {
		if _, err := models.ParseView(view); err != nil {
			return err
		}
	}
	cfg.Defaults.View = view
	return SaveConfig()
}

// UseProfile switches to the specified configuration profile and saves the changes.
// Stored tokens belong to the previous backend and are cleared when the URL changes.
func UseProfile(profileName string) error {
	profile, ok := cfg.Profiles[profileName]
	if !ok {
		return fmt.Errorf("profile %s not found", profileName)
	}

	if profile.APIURL != "" && profile.APIURL != cfg.API.URL {
		cfg.API.URL = profile.APIURL
		cfg.API.Token = ""
		cfg.API.RefreshToken = ""
	}
	if profile.TokenURL != "" {
		cfg.Auth.TokenURL = profile.TokenURL
	}
	cfg.Defaults.View = profile.View
	cfg.Defaults.Bundle = profile.Bundle

	return SaveConfig()
}
