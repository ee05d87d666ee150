package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cmmoran/beanres/internal/validation"
	"github.com/cmmoran/beanres/pkg/action/validate"
)

var errInvalid = errors.New("validation failed")

func init() {
	rootCmd.AddCommand(NewValidateCommand())
}

func NewValidateCommand() *cobra.Command {
	var (
		set    string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "validate [unit...]",
		Short: "check bean definitions",
		Long:  "Check every unit, the named units, or the units of a configuration set. Exits 1 when an error is found.",
		RunE: func(c *cobra.Command, args []string) error {
			w, err := openWorkspace(c.Context())
			if err != nil {
				return err
			}
			units := args
			if set != "" {
				s, err := w.Project().ConfigSet(set)
				if err != nil {
					return err
				}
				units = append(units, s.Units...)
			}
			ds, err := validate.Run(w, units...)
			if err != nil {
				return err
			}
			if err := report(c, ds, asJSON); err != nil {
				return err
			}
			if validation.HasErrors(ds) {
				return errInvalid
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&set, "set", "", "validate the units of this configuration set")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print diagnostics as JSON")
	return cmd
}

func report(c *cobra.Command, ds []validation.Diagnostic, asJSON bool) error {
	if asJSON {
		if ds == nil {
			ds = []validation.Diagnostic{}
		}
		return writeJSON(c, ds)
	}
	for _, d := range ds {
		if _, err := fmt.Fprintln(c.OutOrStdout(), d.String()); err != nil {
			return err
		}
	}
	return nil
}
