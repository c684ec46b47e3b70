package notify

import "time"

// Config is the notify block of the effective configuration. One config
// struct per channel kind; each carries only the fields its transport needs.
type Config struct {
	Enabled             bool    `mapstructure:"enabled" yaml:"enabled"`
	Threshold           float64 `mapstructure:"threshold" yaml:"threshold"`
	CooldownMinutes     int     `mapstructure:"cooldown_minutes" yaml:"cooldown_minutes"`
	HeartbeatEnabled    bool    `mapstructure:"heartbeat_enabled" yaml:"heartbeat_enabled"`
	HeartbeatHour       int     `mapstructure:"heartbeat_hour" yaml:"heartbeat_hour"`
	LoginFailureEnabled bool    `mapstructure:"login_failure_enabled" yaml:"login_failure_enabled"`
	FetchFailureEnabled bool    `mapstructure:"fetch_failure_enabled" yaml:"fetch_failure_enabled"`
	TimeoutSeconds      int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`

	// NotifyType is the legacy single-channel key. NotifyTypes wins
	// entirely when both are set.
	NotifyType  string   `mapstructure:"notify_type" yaml:"notify_type"`
	NotifyTypes []string `mapstructure:"notify_types" yaml:"notify_types"`

	Console  ConsoleConfig  `mapstructure:"console" yaml:"console"`
	Webhook  WebhookConfig  `mapstructure:"webhook" yaml:"webhook"`
	Telegram TelegramConfig `mapstructure:"telegram" yaml:"telegram"`
	Pushover PushoverConfig `mapstructure:"pushover" yaml:"pushover"`
	Ntfy     NtfyConfig     `mapstructure:"ntfy" yaml:"ntfy"`
	Email    EmailConfig    `mapstructure:"email" yaml:"email"`
}

// ConsoleConfig has no transport fields; the console channel always works.
type ConsoleConfig struct{}

// WebhookConfig defines a generic JSON webhook target.
type WebhookConfig struct {
	URL    string `mapstructure:"url" yaml:"url"`
	Secret string `mapstructure:"secret" yaml:"secret"`
}

// TelegramConfig defines Bot API message delivery.
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token" yaml:"bot_token"`
	ChatID   string `mapstructure:"chat_id" yaml:"chat_id"`
}

// PushoverConfig defines Pushover API delivery. RetrySeconds and
// ExpireSeconds only apply to emergency-priority sends, where the
// provider itself re-delivers until acknowledged or expired.
type PushoverConfig struct {
	APIToken      string `mapstructure:"api_token" yaml:"api_token"`
	UserKey       string `mapstructure:"user_key" yaml:"user_key"`
	Priority      int    `mapstructure:"priority" yaml:"priority"`
	RetrySeconds  int    `mapstructure:"retry_seconds" yaml:"retry_seconds"`
	ExpireSeconds int    `mapstructure:"expire_seconds" yaml:"expire_seconds"`
}

// NtfyConfig defines ntfy topic delivery.
type NtfyConfig struct {
	TopicURL    string   `mapstructure:"topic_url" yaml:"topic_url"`
	Token       string   `mapstructure:"token" yaml:"token"`
	Priority    int      `mapstructure:"priority" yaml:"priority"`
	Tags        []string `mapstructure:"tags" yaml:"tags"`
	ClickAction string   `mapstructure:"click_action" yaml:"click_action"`
	Icon        string   `mapstructure:"icon" yaml:"icon"`
	Markdown    bool     `mapstructure:"markdown" yaml:"markdown"`
	Actions     []string `mapstructure:"actions" yaml:"actions"`
}

// EmailConfig defines SMTP delivery.
type EmailConfig struct {
	Host       string   `mapstructure:"host" yaml:"host"`
	Port       int      `mapstructure:"port" yaml:"port"`
	Username   string   `mapstructure:"username" yaml:"username"`
	Password   string   `mapstructure:"password" yaml:"password"`
	From       string   `mapstructure:"from" yaml:"from"`
	To         []string `mapstructure:"to" yaml:"to"`
	Encryption string   `mapstructure:"encryption" yaml:"encryption"` // starttls, tls, none
}

// ActiveKinds returns the channel kinds selected by configuration.
// The multi-channel list fully overrides the legacy single key.
func (c Config) ActiveKinds() []string {
	if len(c.NotifyTypes) > 0 {
		return c.NotifyTypes
	}
	if c.NotifyType != "" {
		return []string{c.NotifyType}
	}
	return []string{KindConsole}
}

// Cooldown returns the low-balance cooldown as a duration.
func (c Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownMinutes) * time.Minute
}

// Timeout returns the per-channel send timeout.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
