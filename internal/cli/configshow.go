package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the resolved configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML, secrets redacted",
	RunE:  runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	redacted := *cfg
	redacted.Password = redact(cfg.Password)
	redacted.Notify.Webhook.Secret = redact(cfg.Notify.Webhook.Secret)
	redacted.Notify.Telegram.BotToken = redact(cfg.Notify.Telegram.BotToken)
	redacted.Notify.Pushover.APIToken = redact(cfg.Notify.Pushover.APIToken)
	redacted.Notify.Pushover.UserKey = redact(cfg.Notify.Pushover.UserKey)
	redacted.Notify.Ntfy.Token = redact(cfg.Notify.Ntfy.Token)
	redacted.Notify.Email.Password = redact(cfg.Notify.Email.Password)

	out, err := yaml.Marshal(redacted)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	_, err = os.Stdout.Write(out)
	return err
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "[redacted]"
}
