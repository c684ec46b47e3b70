package cli

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/upm-go/upm/internal/daemon"
	"github.com/upm-go/upm/pkg/alert"
	"github.com/upm-go/upm/pkg/notify"
	"github.com/upm-go/upm/pkg/portal"
	"github.com/upm-go/upm/pkg/storage"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the monitor daemon",
	RunE:  runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validator := notify.NewValidator(cfg.Notify)
	dispatcher, err := notify.NewDispatcher(ctx, cfg.Notify, validator, logger)
	if err != nil {
		return fmt.Errorf("init notification channels: %w", err)
	}

	store, err := storage.NewSQLite(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer store.Close()

	client, err := portal.New(portal.Options{
		BaseURL:    cfg.ServiceURL,
		Username:   cfg.Username,
		Password:   cfg.Password,
		LoginType:  cfg.LoginType,
		CookieFile: cfg.CookieFile,
	})
	if err != nil {
		return fmt.Errorf("init portal client: %w", err)
	}

	machine := alert.NewMachine(alert.Config{
		Enabled:             cfg.Notify.Enabled,
		Threshold:           cfg.Notify.Threshold,
		Cooldown:            time.Duration(cfg.Notify.CooldownMinutes) * time.Minute,
		HeartbeatEnabled:    cfg.Notify.HeartbeatEnabled,
		HeartbeatHour:       cfg.Notify.HeartbeatHour,
		LoginFailureEnabled: cfg.Notify.LoginFailureEnabled,
		FetchFailureEnabled: cfg.Notify.FetchFailureEnabled,
	})

	return daemon.New(cfg, client, store, machine, dispatcher, logger).Run(ctx)
}
