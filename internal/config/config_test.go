// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestIsLocalhost(t *testing.T) {
	tests := []struct {
		host     string
		expected bool
	}{
		{"", true},
		{"localhost", true},
		{"127.0.0.1", true},
		{"::1", true},
		{"app.localhost", true},
		{"example.com", false},
		{"192.168.1.1", false},
		{"localhost.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsLocalhost(tt.host))
		})
	}
}

func TestBuildBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *Config
		expected string
	}{
		{
			name:     "default port hidden",
			cfg:      &Config{Server: ServerConfig{Host: "localhost", Port: 80}},
			expected: "http://localhost",
		},
		{
			name:     "custom port",
			cfg:      &Config{Server: ServerConfig{Host: "localhost", Port: 8080}},
			expected: "http://localhost:8080",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildBaseURL(tt.cfg))
		})
	}
}

func TestSMTPConfig_Enabled(t *testing.T) {
	assert.False(t, SMTPConfig{}.Enabled())
	assert.False(t, SMTPConfig{Host: "smtp.example.com"}.Enabled())
	assert.True(t, SMTPConfig{Host: "smtp.example.com", From: "noreply@example.com"}.Enabled())
}

func TestReportConfig_Location(t *testing.T) {
	assert.Equal(t, time.UTC, ReportConfig{}.Location())
	assert.Equal(t, time.UTC, ReportConfig{Timezone: "Not/AZone"}.Location())

	loc := ReportConfig{Timezone: "America/Santiago"}.Location()
	assert.Equal(t, "America/Santiago", loc.String())
}

func TestFlags(t *testing.T) {
	flags := Flags()

	assert.NotEmpty(t, flags)

	flagNames := make(map[string]bool)
	for _, f := range flags {
		for _, name := range f.Names() {
			flagNames[name] = true
		}
	}

	for _, name := range []string{
		"host", "port", "base-url", "log-level", "log-format", "database-dsn",
		"session-hash-key", "smtp-host", "recovery-code-ttl", "report-timezone",
	} {
		assert.True(t, flagNames[name], "should have %s flag", name)
	}
}

func TestNewFromCLI_Defaults(t *testing.T) {
	var cfg *Config
	cmd := &cli.Command{
		Name:  "test",
		Flags: Flags(),
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg = NewFromCLI(cmd)
			return nil
		},
	}

	err := cmd.Run(context.Background(), []string{"test"})
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8080", cfg.Server.BaseURL)
	assert.False(t, cfg.Session.Secure)
	assert.Equal(t, 15*time.Minute, cfg.Recovery.CodeTTL)
	assert.Equal(t, 3, cfg.Recovery.RequestBurst)
	assert.Equal(t, "UTC", cfg.Report.Timezone)
	assert.Equal(t, "_recovery", cfg.Session.RecoveryCookieName)
}

func TestNewFromCLI_HTTPSBaseURLMarksCookiesSecure(t *testing.T) {
	var cfg *Config
	cmd := &cli.Command{
		Name:  "test",
		Flags: Flags(),
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg = NewFromCLI(cmd)
			return nil
		},
	}

	err := cmd.Run(context.Background(), []string{"test", "--base-url", "https://fleet.example.com"})
	require.NoError(t, err)

	assert.True(t, cfg.Session.Secure)
	assert.Equal(t, "https://fleet.example.com", cfg.Server.BaseURL)
}
