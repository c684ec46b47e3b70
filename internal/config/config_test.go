package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upm-go/upm/internal/config"
)

// setRequired satisfies the required keys and isolates the secrets dir so
// a host /run/secrets cannot leak into tests.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("UPM_USERNAME", "student")
	t.Setenv("UPM_PASSWORD", "hunter2")
	t.Setenv("UPM_SECRETS_DIR", t.TempDir())
}

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "student", cfg.Username)
	assert.Equal(t, 60, cfg.IntervalSeconds)
	assert.Equal(t, "password", cfg.LoginType)
	assert.Equal(t, "upm.db", cfg.DatabaseURL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	assert.False(t, cfg.Notify.Enabled)
	assert.InDelta(t, 10.0, cfg.Notify.Threshold, 0.001)
	assert.Equal(t, 60, cfg.Notify.CooldownMinutes)
	assert.Equal(t, 8, cfg.Notify.HeartbeatHour)
	assert.True(t, cfg.Notify.LoginFailureEnabled)
	assert.True(t, cfg.Notify.FetchFailureEnabled)
	assert.Equal(t, "starttls", cfg.Notify.Email.Encryption)
}

func TestLoad_FromFile(t *testing.T) {
	t.Setenv("UPM_SECRETS_DIR", t.TempDir())
	path := writeConfig(t, `
username: fileuser
password: filepass
interval_seconds: 120
notify:
  enabled: true
  threshold: 15.5
  notify_types: [console, telegram]
  telegram:
    bot_token: "123:abc"
    chat_id: "42"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "fileuser", cfg.Username)
	assert.Equal(t, 120, cfg.IntervalSeconds)
	assert.True(t, cfg.Notify.Enabled)
	assert.InDelta(t, 15.5, cfg.Notify.Threshold, 0.001)
	assert.Equal(t, []string{"console", "telegram"}, cfg.Notify.NotifyTypes)
	assert.Equal(t, "123:abc", cfg.Notify.Telegram.BotToken)
}

func TestLoad_PrecedenceEnvOverSecretOverFile(t *testing.T) {
	secretsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(secretsDir, "username"), []byte("secretuser\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(secretsDir, "password"), []byte("secretpass\n"), 0o600))

	path := writeConfig(t, `
username: fileuser
password: filepass
service_url: https://portal.example.com
`)

	t.Setenv("UPM_SECRETS_DIR", secretsDir)
	t.Setenv("UPM_USERNAME", "envuser")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	// env > secret for username; secret > file for password;
	// file survives for keys set nowhere above it.
	assert.Equal(t, "envuser", cfg.Username)
	assert.Equal(t, "secretpass", cfg.Password)
	assert.Equal(t, "https://portal.example.com", cfg.ServiceURL)
}

func TestLoad_NestedEnvKey(t *testing.T) {
	setRequired(t)
	t.Setenv("UPM_NOTIFY__THRESHOLD", "25.5")
	t.Setenv("UPM_NOTIFY__HEARTBEAT_ENABLED", "true")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.InDelta(t, 25.5, cfg.Notify.Threshold, 0.001)
	assert.True(t, cfg.Notify.HeartbeatEnabled)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("UPM_SECRETS_DIR", t.TempDir())

	_, err := config.Load("")
	require.Error(t, err)

	var cfgErr *config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.MissingRequired, cfgErr.Kind)
	assert.Equal(t, "username", cfgErr.Key)
}

func TestLoad_InvalidNumericValue(t *testing.T) {
	setRequired(t)
	t.Setenv("UPM_NOTIFY__THRESHOLD", "not-a-number")

	_, err := config.Load("")
	require.Error(t, err)

	var cfgErr *config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.InvalidValue, cfgErr.Kind)
	assert.Equal(t, "notify.threshold", cfgErr.Key)
	assert.Equal(t, "not-a-number", cfgErr.Raw)
}

func TestLoad_InvalidBoolValue(t *testing.T) {
	setRequired(t)
	t.Setenv("UPM_NOTIFY__ENABLED", "yes-please")

	_, err := config.Load("")
	var cfgErr *config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.InvalidValue, cfgErr.Kind)
}

func TestLoad_HeartbeatHourRange(t *testing.T) {
	setRequired(t)
	t.Setenv("UPM_NOTIFY__HEARTBEAT_HOUR", "25")

	_, err := config.Load("")
	var cfgErr *config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.InvalidValue, cfgErr.Kind)
	assert.Equal(t, "notify.heartbeat_hour", cfgErr.Key)
}

func TestLoad_LoginTypeEnum(t *testing.T) {
	setRequired(t)
	t.Setenv("UPM_LOGIN_TYPE", "sms")

	_, err := config.Load("")
	var cfgErr *config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "login_type", cfgErr.Key)
}

func TestLoad_MultiChannelListWinsOverLegacyKey(t *testing.T) {
	t.Setenv("UPM_SECRETS_DIR", t.TempDir())
	path := writeConfig(t, `
username: u
password: p
notify:
  notify_type: console
  notify_types: [webhook, ntfy]
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"webhook", "ntfy"}, cfg.Notify.ActiveKinds())
}

func TestLoad_InvalidFile(t *testing.T) {
	t.Setenv("UPM_SECRETS_DIR", t.TempDir())
	path := writeConfig(t, "username: [broken")

	_, err := config.Load(path)
	require.Error(t, err)
	assert.False(t, errors.As(err, new(*config.Error)), "parse failures are not key errors")
}
