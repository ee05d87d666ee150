package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cmmoran/beanres/internal/validation"
	"github.com/cmmoran/beanres/pkg/action/validate"
)

func init() {
	rootCmd.AddCommand(NewWatchCommand())
}

func NewWatchCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "re-validate whenever units or sources change",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			return validate.Watch(ctx, w, viper.GetDuration(keyWatchDebounce), func(ds []validation.Diagnostic, err error) {
				if err != nil {
					slog.Default().With("error", err).Error("validation failed")
					return
				}
				_, _ = fmt.Fprintf(c.OutOrStdout(), "--- %d diagnostic(s)\n", len(ds))
				if err := report(c, ds, asJSON); err != nil {
					slog.Default().With("error", err).Error("report failed")
				}
			})
		},
	}
	cmd.Flags().Duration("debounce", validate.DefaultDebounce, "quiet period before re-validating")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print diagnostics as JSON")
	_ = viper.BindPFlag(keyWatchDebounce, cmd.Flags().Lookup("debounce"))
	return cmd
}
