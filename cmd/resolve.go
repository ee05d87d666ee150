package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cmmoran/beanres/pkg/beans"
)

func init() {
	rootCmd.AddCommand(NewResolveCommand())
}

type resolveResult struct {
	Bean           string             `json:"bean"`
	Unit           string             `json:"unit"`
	EffectiveType  beans.ResolvedType `json:"effectiveType,omitempty"`
	ReachableTypes []string           `json:"reachableTypes"`
}

func NewResolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <unit> <bean>",
		Short: "effective and reachable types of a bean",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			w, err := openWorkspace(c.Context())
			if err != nil {
				return err
			}
			e := w.Engine()
			decl, err := lookup(e, args[0], args[1])
			if err != nil {
				return err
			}
			effective, err := e.ResolveEffectiveType(decl)
			if err != nil {
				return err
			}
			reachable, err := e.CollectReachableTypes(decl)
			if err != nil {
				return err
			}
			return writeJSON(c, resolveResult{
				Bean:           decl.Handle(),
				Unit:           decl.Unit,
				EffectiveType:  effective,
				ReachableTypes: reachable,
			})
		},
	}
}
