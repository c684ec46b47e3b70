package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/upm-go/upm/pkg/notify"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Resolve the configuration and validate notification channels",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	validator := notify.NewValidator(cfg.Notify)

	active := 0
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "CHANNEL\tSTATUS\tREASON\n")
	for _, kind := range cfg.Notify.ActiveKinds() {
		result := validator.Validate(cmd.Context(), kind)
		if result.Verdict == notify.Valid {
			active++
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", kind, result.Verdict, result.Reason)
	}
	w.Flush()

	if cfg.Notify.Enabled && active == 0 {
		return fmt.Errorf("notifications enabled but no channel survived validation")
	}

	fmt.Printf("\nConfiguration OK: polling every %ds, %d active channel(s)\n", cfg.IntervalSeconds, active)
	return nil
}
