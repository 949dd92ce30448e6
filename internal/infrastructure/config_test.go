package infra

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requiredArgs(extra ...string) []string {
	return append([]string{
		"--app_id=focus",
		"--database.schema=focus",
		"--security.jwt_secret=secret",
	}, extra...)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(pflag.NewFlagSet("test", pflag.ContinueOnError), requiredArgs())
	require.NoError(t, err)

	assert.Equal(t, "focus", cfg.AppID)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "jwt", cfg.Security.TokenName)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTimeout)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("FOCUS_DATABASE_DRIVER", "mongo")
	t.Setenv("FOCUS_REQUEST_TIMEOUT", "5s")

	cfg, err := LoadConfig(pflag.NewFlagSet("test", pflag.ContinueOnError), requiredArgs("--kafka.brokers=a:9092,b:9092"))
	require.NoError(t, err)

	assert.Equal(t, "mongo", cfg.Database.Driver)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
}

func TestLoadConfigValidation(t *testing.T) {
	_, err := LoadConfig(pflag.NewFlagSet("test", pflag.ContinueOnError), []string{"--env=staging"})
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "app_id is required")
	assert.Contains(t, msg, "env must be one of (development production)")
	assert.Contains(t, msg, "security.jwt_secret is required")
}

func TestLoadConfigRejectsUnknownTimezone(t *testing.T) {
	_, err := LoadConfig(pflag.NewFlagSet("test", pflag.ContinueOnError), requiredArgs("--timezone=Mars/Olympus"))
	require.Error(t, err)
}
