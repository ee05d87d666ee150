package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cmmoran/beanres/pkg/beans"
)

func init() {
	rootCmd.AddCommand(NewPathCommand())
}

type pathResult struct {
	Path      string                   `json:"path"`
	Setter    *beans.Member            `json:"setter,omitempty"`
	Setters   []beans.Member           `json:"setters,omitempty"`
	Accessors []beans.PropertyPathStep `json:"accessors,omitempty"`
	Getters   []beans.PropertyPathStep `json:"getters,omitempty"`
}

func NewPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path <unit> <bean> <property-path>",
		Short: "resolve a property path of a bean to its accessors",
		Args:  cobra.ExactArgs(3),
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
			types, err := e.CollectReachableTypes(decl)
			if err != nil {
				return err
			}

			path := beans.SplitPropertyPath(args[2])
			res := pathResult{Path: args[2]}
			if res.Setter, err = e.ResolvePropertyWritePath(path, types); err != nil {
				return err
			}
			if res.Setters, err = e.ResolvePropertyWritePaths(path, types); err != nil {
				return err
			}
			if res.Accessors, err = e.ResolveAccessorChain(path, types); err != nil {
				return err
			}
			if res.Getters, err = e.ResolveReadChain(path, types); err != nil {
				return err
			}
			return writeJSON(c, res)
		},
	}
}
