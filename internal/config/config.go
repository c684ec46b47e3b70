// Package config resolves the effective configuration from four layered
// sources, highest precedence first: environment variables (prefix UPM_,
// double underscore for nesting), secret files under a secrets directory,
// the configuration file, and built-in defaults. Each key resolves
// independently, first hit wins.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/upm-go/upm/pkg/notify"
)

const (
	envPrefix         = "UPM"
	defaultSecretsDir = "/run/secrets"
)

// secretKeys are the credential-like keys that may arrive as one file per
// key under the secrets directory (Docker secrets convention).
var secretKeys = []string{"username", "password", "service_url", "database_url"}

// Config is the resolved, validated configuration snapshot. It is built
// once at startup and read-only afterwards; there is no hot reload.
type Config struct {
	Username        string        `mapstructure:"username" yaml:"username"`
	Password        string        `mapstructure:"password" yaml:"password"`
	ServiceURL      string        `mapstructure:"service_url" yaml:"service_url"`
	DatabaseURL     string        `mapstructure:"database_url" yaml:"database_url"`
	IntervalSeconds int           `mapstructure:"interval_seconds" yaml:"interval_seconds"`
	LoginType       string        `mapstructure:"login_type" yaml:"login_type"`
	CookieFile      string        `mapstructure:"cookie_file" yaml:"cookie_file"`
	SecretsDir      string        `mapstructure:"secrets_dir" yaml:"secrets_dir"`
	Logging         LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Notify          notify.Config `mapstructure:"notify" yaml:"notify"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Load resolves the effective configuration. cfgFile may be empty, in
// which case config.yaml is searched in the working directory and
// /etc/upm.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/upm")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	// Environment overlay: UPM_NOTIFY__THRESHOLD resolves notify.threshold.
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// Secret files merge above the file layer but below the environment.
	if err := mergeSecrets(v, v.GetString("secrets_dir")); err != nil {
		return nil, err
	}

	if err := checkCoercions(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Every key gets a default so the environment overlay binds to it.
	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("service_url", "")
	v.SetDefault("database_url", "upm.db")
	v.SetDefault("interval_seconds", 60)
	v.SetDefault("login_type", "password")
	v.SetDefault("cookie_file", "")
	v.SetDefault("secrets_dir", defaultSecretsDir)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("notify.enabled", false)
	v.SetDefault("notify.threshold", 10.0)
	v.SetDefault("notify.cooldown_minutes", 60)
	v.SetDefault("notify.heartbeat_enabled", false)
	v.SetDefault("notify.heartbeat_hour", 8)
	v.SetDefault("notify.login_failure_enabled", true)
	v.SetDefault("notify.fetch_failure_enabled", true)
	v.SetDefault("notify.timeout_seconds", 10)
	v.SetDefault("notify.notify_type", "")
	v.SetDefault("notify.notify_types", []string{})

	v.SetDefault("notify.webhook.url", "")
	v.SetDefault("notify.webhook.secret", "")
	v.SetDefault("notify.telegram.bot_token", "")
	v.SetDefault("notify.telegram.chat_id", "")
	v.SetDefault("notify.pushover.api_token", "")
	v.SetDefault("notify.pushover.user_key", "")
	v.SetDefault("notify.pushover.priority", 0)
	v.SetDefault("notify.pushover.retry_seconds", 60)
	v.SetDefault("notify.pushover.expire_seconds", 3600)
	v.SetDefault("notify.ntfy.topic_url", "")
	v.SetDefault("notify.ntfy.token", "")
	v.SetDefault("notify.ntfy.priority", 3)
	v.SetDefault("notify.ntfy.tags", []string{})
	v.SetDefault("notify.ntfy.click_action", "")
	v.SetDefault("notify.ntfy.icon", "")
	v.SetDefault("notify.ntfy.markdown", false)
	v.SetDefault("notify.ntfy.actions", []string{})
	v.SetDefault("notify.email.host", "")
	v.SetDefault("notify.email.port", 0)
	v.SetDefault("notify.email.username", "")
	v.SetDefault("notify.email.password", "")
	v.SetDefault("notify.email.from", "")
	v.SetDefault("notify.email.to", []string{})
	v.SetDefault("notify.email.encryption", "starttls")
}

// coercibleKeys maps keys that may arrive as strings from the environment
// or secret files to their expected scalar type.
var coercibleKeys = map[string]string{
	"interval_seconds":               "int",
	"notify.enabled":                 "bool",
	"notify.threshold":               "float",
	"notify.cooldown_minutes":        "int",
	"notify.heartbeat_enabled":       "bool",
	"notify.heartbeat_hour":          "int",
	"notify.login_failure_enabled":   "bool",
	"notify.fetch_failure_enabled":   "bool",
	"notify.timeout_seconds":         "int",
	"notify.pushover.priority":       "int",
	"notify.pushover.retry_seconds":  "int",
	"notify.pushover.expire_seconds": "int",
	"notify.ntfy.priority":           "int",
	"notify.ntfy.markdown":           "bool",
	"notify.email.port":              "int",
}

// checkCoercions rejects string values that do not parse as the key's
// type, so a typo in an environment variable fails startup instead of
// silently falling back to a default.
func checkCoercions(v *viper.Viper) error {
	for key, kind := range coercibleKeys {
		raw := strings.TrimSpace(v.GetString(key))
		if raw == "" {
			continue
		}
		var err error
		switch kind {
		case "int":
			_, err = strconv.Atoi(raw)
		case "float":
			_, err = strconv.ParseFloat(raw, 64)
		case "bool":
			_, err = strconv.ParseBool(raw)
		}
		if err != nil {
			return invalidValue(key, raw)
		}
	}
	return nil
}

func (c *Config) validate() error {
	if c.Username == "" {
		return missingRequired("username")
	}
	if c.Password == "" {
		return missingRequired("password")
	}
	if c.IntervalSeconds < 10 {
		return invalidValue("interval_seconds", strconv.Itoa(c.IntervalSeconds))
	}
	if c.LoginType != "password" && c.LoginType != "wechat" {
		return invalidValue("login_type", c.LoginType)
	}
	if c.Notify.HeartbeatHour < 0 || c.Notify.HeartbeatHour > 23 {
		return invalidValue("notify.heartbeat_hour", strconv.Itoa(c.Notify.HeartbeatHour))
	}
	if c.Notify.CooldownMinutes < 0 {
		return invalidValue("notify.cooldown_minutes", strconv.Itoa(c.Notify.CooldownMinutes))
	}
	return nil
}
